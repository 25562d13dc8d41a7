// Package tasks provides production task assignments with piece-wage
// accounting, daily progress rollups and an approval workflow.
package tasks

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"aurotex/internal/core/apperror"
	"aurotex/internal/core/entity"
	"aurotex/internal/core/id"
	"aurotex/internal/core/types"
	"aurotex/internal/domain/status"
)

// DailyProgress is one day's work report on a task. Entries are
// append-only; corrections are new entries with negative pieces.
type DailyProgress struct {
	EntryID         id.ID          `db:"entry_id" json:"entryId"`
	TaskID          id.ID          `db:"task_id" json:"taskId"`
	Date            time.Time      `db:"date" json:"date"`
	PiecesCompleted int64          `db:"pieces_completed" json:"piecesCompleted"`
	HoursWorked     types.Quantity `db:"hours_worked" json:"hoursWorked"`

	// WorkerIDs lists the workers who produced the pieces, for contractor
	// tasks worked by a crew.
	WorkerIDs []id.ID `db:"worker_ids" json:"workerIds,omitempty"`

	Notes      string `db:"notes" json:"notes,omitempty"`
	RecordedBy string `db:"recorded_by" json:"recordedBy"`
}

// Task is a production assignment cut from an order item and handed to a
// contractor or an internal worker.
type Task struct {
	entity.Document

	OrderID        id.ID `db:"order_id" json:"orderId"`
	OrderItemLine  id.ID `db:"order_item_line" json:"orderItemLineId"`
	ProductID      id.ID `db:"product_id" json:"productId"`

	// Exactly one of ContractorID / WorkerID is set.
	ContractorID *id.ID `db:"contractor_id" json:"contractorId,omitempty"`
	WorkerID     *id.ID `db:"worker_id" json:"workerId,omitempty"`

	Description string `db:"description" json:"description,omitempty"`

	Quantity     int64       `db:"quantity" json:"quantity"`
	WagePerPiece types.Money `db:"wage_per_piece" json:"wagePerPiece"`

	// TotalWage = Quantity x WagePerPiece, recomputed on either input's change.
	TotalWage types.Money `db:"total_wage" json:"totalWage"`

	Status string `db:"status" json:"status"`

	// Progress rollups, derived from the daily progress log.
	PiecesCompleted    int64          `db:"pieces_completed" json:"piecesCompleted"`
	HoursLogged        types.Quantity `db:"hours_logged" json:"hoursLogged"`
	ProgressPercentage int            `db:"progress_percentage" json:"progressPercentage"`

	DueDate *time.Time `db:"due_date" json:"dueDate,omitempty"`

	// Approval outcome, set when the task leaves PENDING_APPROVAL.
	ApprovedBy      string     `db:"approved_by" json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time `db:"approved_at" json:"approvedAt,omitempty"`
	RejectionReason string     `db:"rejection_reason" json:"rejectionReason,omitempty"`

	// Quality inspection outcome, recorded after completion.
	QualityChecked bool   `db:"quality_checked" json:"qualityChecked"`
	PiecesRejected int64  `db:"pieces_rejected" json:"piecesRejected"`
	QualityNotes   string `db:"quality_notes" json:"qualityNotes,omitempty"`

	DailyProgress []DailyProgress       `db:"-" json:"dailyProgress,omitempty"`
	StatusHistory []status.HistoryEntry `db:"-" json:"statusHistory,omitempty"`
}

// NewTask creates a task awaiting approval. The task number is assigned by
// the service on create.
func NewTask(orderID, orderItemLine, productID id.ID, quantity int64, wagePerPiece types.Money) *Task {
	t := &Task{
		Document:      entity.NewDocument(),
		OrderID:       orderID,
		OrderItemLine: orderItemLine,
		ProductID:     productID,
		Quantity:      quantity,
		WagePerPiece:  wagePerPiece,
		Status:        status.TaskPendingApproval,
	}
	RecomputeWage(t)
	return t
}

// RecomputeWage rebuilds the derived wage from its inputs. Pure; every
// write path runs it before persisting.
func RecomputeWage(t *Task) {
	t.TotalWage = decimal.NewFromInt(t.Quantity).Mul(t.WagePerPiece)
}

// RecomputeProgress rebuilds the progress rollups from the daily log.
func RecomputeProgress(t *Task) {
	t.PiecesCompleted = 0
	t.HoursLogged = 0
	for _, p := range t.DailyProgress {
		t.PiecesCompleted += p.PiecesCompleted
		t.HoursLogged += p.HoursWorked
	}
	t.ProgressPercentage = progressPercent(t.PiecesCompleted, t.Quantity)
}

func progressPercent(completed, total int64) int {
	if total <= 0 {
		return 0
	}
	p := completed * 100 / total
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return int(p)
}

// Validate implements entity.Validatable.
func (t *Task) Validate(ctx context.Context) error {
	if id.IsNil(t.OrderID) {
		return apperror.NewValidation("order is required").
			WithDetail("field", "orderId")
	}
	if t.Quantity <= 0 {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("quantity", t.Quantity)
	}
	if t.WagePerPiece.IsNegative() {
		return apperror.NewValidation("wage per piece cannot be negative")
	}
	if t.ContractorID == nil && t.WorkerID == nil {
		return apperror.NewValidation("task must be assigned to a contractor or a worker")
	}
	if t.ContractorID != nil && t.WorkerID != nil {
		return apperror.NewValidation("task cannot be assigned to both a contractor and a worker")
	}
	if t.Status == "" {
		return apperror.NewValidation("status is required").
			WithDetail("field", "status")
	}
	return nil
}
