// Package notifications provides in-app notifications fed by stock and
// task lifecycle events, with configurable CEL alert rules for stock.
package notifications

import (
	"context"
	"time"

	"aurotex/internal/core/actor"
	"aurotex/internal/core/apperror"
	"aurotex/internal/core/entity"
	"aurotex/internal/core/id"
)

// Type classifies a notification.
type Type string

const (
	TypeStockLow         Type = "STOCK_LOW"
	TypeStockCritical    Type = "STOCK_CRITICAL"
	TypeStockRestocked   Type = "STOCK_RESTOCKED"
	TypeStockReorder     Type = "STOCK_REORDER"
	TypeStockOverstock   Type = "STOCK_OVERSTOCK"
	TypeTaskAssigned     Type = "TASK_ASSIGNED"
	TypeTaskApproved     Type = "TASK_APPROVED"
	TypeTaskRejected     Type = "TASK_REJECTED"
	TypeTaskCompleted    Type = "TASK_COMPLETED"
	TypeOrderStatus      Type = "ORDER_STATUS"
	TypeWorkerRegistered Type = "WORKER_REGISTERED"
)

// Priority orders notifications in the inbox.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Notification is one inbox entry. Recipient targeting is by role:
// every user holding the role sees the entry.
type Notification struct {
	entity.BaseEntity

	Type     Type     `db:"type" json:"type"`
	Priority Priority `db:"priority" json:"priority"`

	Title   string `db:"title" json:"title"`
	Message string `db:"message" json:"message"`

	// RecipientRole targets the notification; RecipientUserID narrows it
	// to a single user when set.
	RecipientRole   actor.Role `db:"recipient_role" json:"recipientRole"`
	RecipientUserID string     `db:"recipient_user_id" json:"recipientUserId,omitempty"`

	// EntityID links back to the lot, task or order that raised it.
	EntityID id.ID `db:"entity_id" json:"entityId"`

	Read   bool       `db:"read" json:"read"`
	ReadAt *time.Time `db:"read_at" json:"readAt,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

func New(t Type, priority Priority, title, message string, entityID id.ID) *Notification {
	return &Notification{
		BaseEntity: entity.NewBaseEntity(),
		Type:       t,
		Priority:   priority,
		Title:      title,
		Message:    message,
		EntityID:   entityID,
		CreatedAt:  time.Now().UTC(),
	}
}

// Validate implements entity.Validatable.
func (n *Notification) Validate(ctx context.Context) error {
	if n.Type == "" {
		return apperror.NewValidation("notification type is required")
	}
	if n.Title == "" {
		return apperror.NewValidation("notification title is required")
	}
	if n.RecipientRole == "" && n.RecipientUserID == "" {
		return apperror.NewValidation("notification needs a recipient role or user")
	}
	return nil
}
