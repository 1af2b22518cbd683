package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/glazier/pkg/db/pagination"
)

type ListCustomerRequest struct {
	pagination.Pagination
	Name        string
	Email       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type CustomerCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type ListCustomerFilter struct {
	Name        string
	Email       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Cursor      *CustomerCursor
	Limit       int
}

type ListCustomerResponse struct {
	pagination.PageInfo
	Customers []Customer `json:"customers"`
}

type CreateCustomerRequest struct {
	Name             string
	Email            string
	Phone            string
	Address          string
	PersonalIdentity string
	Metadata         map[string]any
}

// UpdateCustomerRequest changes only the fields that are set.
type UpdateCustomerRequest struct {
	ID               string
	Name             *string
	Email            *string
	Phone            *string
	Address          *string
	PersonalIdentity *string
	Metadata         map[string]any
}

type GetCustomerRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	Update(context.Context, UpdateCustomerRequest) (Customer, error)
	List(context.Context, ListCustomerRequest) (ListCustomerResponse, error)
	GetByID(context.Context, GetCustomerRequest) (Customer, error)
}

var (
	ErrInvalidOrganization     = errors.New("invalid_organization")
	ErrInvalidName             = errors.New("invalid_name")
	ErrInvalidEmail            = errors.New("invalid_email")
	ErrInvalidPersonalIdentity = errors.New("invalid_personal_identity")
	ErrInvalidID               = errors.New("invalid_id")
	ErrInvalidPageToken        = errors.New("invalid_page_token")
	ErrNotFound                = errors.New("not_found")
)
