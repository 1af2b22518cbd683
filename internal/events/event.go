// Package events publishes work-order lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/glazier/pkg/telemetry/correlation"
)

type Type string

const (
	WorkOrderCreated       Type = "work_order.created"
	WorkOrderUpdated       Type = "work_order.updated"
	WorkOrderStatusChanged Type = "work_order.status_changed"
)

// Event is the JSON envelope written to the broker.
type Event struct {
	ID          string            `json:"id"`
	Type        Type              `json:"type"`
	OrgID       string            `json:"organization_id"`
	WorkOrderID string            `json:"work_order_id"`
	Data        json.RawMessage   `json:"data"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

// New builds an envelope around payload. Correlation and trace ids are taken
// from ctx.
func New(ctx context.Context, typ Type, orgID, workOrderID string, payload any, at time.Time) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s payload: %w", typ, err)
	}
	return Event{
		ID:          ulid.Make().String(),
		Type:        typ,
		OrgID:       orgID,
		WorkOrderID: workOrderID,
		Data:        data,
		Metadata:    correlation.Metadata(ctx),
		OccurredAt:  at.UTC(),
	}, nil
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
