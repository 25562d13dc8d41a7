package status

import (
	"testing"

	"aurotex/internal/core/apperror"
)

func TestOrderTransitions(t *testing.T) {
	m := Orders()

	tests := []struct {
		name string
		from string
		to   string
		ok   bool
	}{
		{"draft to confirmed", OrderDraft, OrderConfirmed, true},
		{"confirmed to in progress", OrderConfirmed, OrderInProgress, true},
		{"in progress to partially completed", OrderInProgress, OrderPartiallyCompleted, true},
		{"in progress to completed", OrderInProgress, OrderCompleted, true},
		{"partially completed to completed", OrderPartiallyCompleted, OrderCompleted, true},
		{"cancel from draft", OrderDraft, OrderCancelled, true},
		{"cancel from in progress", OrderInProgress, OrderCancelled, true},
		{"draft skips to in progress", OrderDraft, OrderInProgress, false},
		{"completed is terminal", OrderCompleted, OrderInProgress, false},
		{"cancelled is terminal", OrderCancelled, OrderDraft, false},
		{"back from confirmed to draft", OrderConfirmed, OrderDraft, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Guard(tt.from, tt.to)
			if tt.ok && err != nil {
				t.Errorf("expected %s -> %s to be legal, got %v", tt.from, tt.to, err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatalf("expected %s -> %s to be rejected", tt.from, tt.to)
				}
				if !apperror.IsIllegalTransition(err) {
					t.Errorf("expected ILLEGAL_TRANSITION, got %v", err)
				}
			}
		})
	}
}

func TestTaskTransitions(t *testing.T) {
	m := Tasks()

	// Skipping APPROVED is rejected.
	err := m.Guard(TaskPendingApproval, TaskInProgress)
	if !apperror.IsIllegalTransition(err) {
		t.Fatalf("expected ILLEGAL_TRANSITION for PENDING_APPROVAL -> IN_PROGRESS, got %v", err)
	}

	// The legal path works end to end.
	path := []string{TaskPendingApproval, TaskApproved, TaskInProgress, TaskCompleted}
	for i := 0; i < len(path)-1; i++ {
		if err := m.Guard(path[i], path[i+1]); err != nil {
			t.Fatalf("expected %s -> %s to be legal, got %v", path[i], path[i+1], err)
		}
	}

	for _, terminal := range []string{TaskCompleted, TaskRejected, TaskCancelled} {
		if !m.IsTerminal(terminal) {
			t.Errorf("expected %s to be terminal", terminal)
		}
	}
}

func TestIllegalTransitionCarriesBothStatuses(t *testing.T) {
	err := Tasks().Guard(TaskPendingApproval, TaskCompleted)
	appErr, ok := apperror.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Details["current_status"] != TaskPendingApproval {
		t.Errorf("expected current_status detail, got %v", appErr.Details)
	}
	if appErr.Details["target_status"] != TaskCompleted {
		t.Errorf("expected target_status detail, got %v", appErr.Details)
	}
}

func TestHistoryEntryStamps(t *testing.T) {
	h := NewHistoryEntry(TaskApproved, "user-1", "looks good")
	if h.Status != TaskApproved || h.ChangedBy != "user-1" || h.Notes != "looks good" {
		t.Errorf("unexpected history entry: %+v", h)
	}
	if h.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}
