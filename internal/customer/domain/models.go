package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Customer struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID   snowflake.ID `gorm:"not null;index" json:"organization_id"`
	Name    string       `gorm:"not null" json:"name"`
	Email   string       `json:"email,omitempty"`
	Phone   string       `json:"phone,omitempty"`
	Address string       `json:"address,omitempty"`
	// PersonalIdentity is the national identity number the labor deduction
	// is claimed against.
	PersonalIdentity string            `gorm:"column:personal_identity" json:"personal_identity,omitempty"`
	Metadata         datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt        time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"not null" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }
