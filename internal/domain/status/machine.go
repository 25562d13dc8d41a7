// Package status enforces legal status transitions for orders and tasks.
//
// The upstream UI let any status be picked from a dropdown; here every status
// change must pass through a Machine, and every accepted change appends
// exactly one history entry.
package status

import (
	"time"

	"aurotex/internal/core/apperror"
)

// Machine is a directed transition graph over status strings.
type Machine struct {
	entity      string
	transitions map[string][]string
}

// NewMachine builds a machine for the named entity kind.
// Statuses absent from the map are terminal.
func NewMachine(entity string, transitions map[string][]string) *Machine {
	return &Machine{entity: entity, transitions: transitions}
}

// Can reports whether from -> to is a legal transition.
func (m *Machine) Can(from, to string) bool {
	for _, next := range m.transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves the given status.
func (m *Machine) IsTerminal(s string) bool {
	return len(m.transitions[s]) == 0
}

// Guard validates the transition and returns an IllegalTransition error
// carrying both statuses when it is not permitted.
func (m *Machine) Guard(from, to string) error {
	if !m.Can(from, to) {
		return apperror.NewIllegalTransition(m.entity, from, to)
	}
	return nil
}

// HistoryEntry records one accepted status change.
type HistoryEntry struct {
	Status    string    `db:"status" json:"status"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	ChangedBy string    `db:"changed_by" json:"changedBy"`
	Notes     string    `db:"notes" json:"notes,omitempty"`
}

// NewHistoryEntry stamps a history entry for the accepted status.
func NewHistoryEntry(status, changedBy, notes string) HistoryEntry {
	return HistoryEntry{
		Status:    status,
		Timestamp: time.Now().UTC(),
		ChangedBy: changedBy,
		Notes:     notes,
	}
}

// Order statuses.
const (
	OrderDraft              = "DRAFT"
	OrderConfirmed          = "CONFIRMED"
	OrderInProgress         = "IN_PROGRESS"
	OrderPartiallyCompleted = "PARTIALLY_COMPLETED"
	OrderCompleted          = "COMPLETED"
	OrderCancelled          = "CANCELLED"
)

// Task statuses.
const (
	TaskPendingApproval = "PENDING_APPROVAL"
	TaskApproved        = "APPROVED"
	TaskRejected        = "REJECTED"
	TaskInProgress      = "IN_PROGRESS"
	TaskCompleted       = "COMPLETED"
	TaskCancelled       = "CANCELLED"
)

// Orders returns the order transition graph:
// DRAFT -> CONFIRMED -> IN_PROGRESS -> {PARTIALLY_COMPLETED, COMPLETED};
// CANCELLED from any non-terminal state. COMPLETED and CANCELLED are terminal.
func Orders() *Machine {
	return NewMachine("order", map[string][]string{
		OrderDraft:              {OrderConfirmed, OrderCancelled},
		OrderConfirmed:          {OrderInProgress, OrderCancelled},
		OrderInProgress:         {OrderPartiallyCompleted, OrderCompleted, OrderCancelled},
		OrderPartiallyCompleted: {OrderCompleted, OrderCancelled},
	})
}

// Tasks returns the task transition graph:
// PENDING_APPROVAL -> {APPROVED, REJECTED}; APPROVED -> IN_PROGRESS -> COMPLETED;
// CANCELLED from any non-terminal state. COMPLETED, REJECTED, CANCELLED are terminal.
func Tasks() *Machine {
	return NewMachine("task", map[string][]string{
		TaskPendingApproval: {TaskApproved, TaskRejected, TaskCancelled},
		TaskApproved:        {TaskInProgress, TaskCancelled},
		TaskInProgress:      {TaskCompleted, TaskCancelled},
	})
}
