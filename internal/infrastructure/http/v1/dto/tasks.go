package dto

import (
	"time"

	"aurotex/internal/core/id"
	"aurotex/internal/core/types"
	"aurotex/internal/domain/tasks"
)

// CreateTaskRequest cuts a production task from an order item. Exactly
// one of contractorId / workerId is set.
type CreateTaskRequest struct {
	OrderID       string `json:"orderId" binding:"required"`
	OrderItemLine string `json:"orderItemLineId" binding:"required"`
	ProductID     string `json:"productId" binding:"required"`

	ContractorID string `json:"contractorId"`
	WorkerID     string `json:"workerId"`

	Description  string      `json:"description"`
	Quantity     int64       `json:"quantity" binding:"required,min=1"`
	WagePerPiece types.Money `json:"wagePerPiece"`
	DueDate      *time.Time  `json:"dueDate"`
}

// ToEntity converts the request to a domain task.
func (r CreateTaskRequest) ToEntity() (*tasks.Task, error) {
	orderID, err := id.Parse(r.OrderID)
	if err != nil {
		return nil, err
	}
	itemLine, err := id.Parse(r.OrderItemLine)
	if err != nil {
		return nil, err
	}
	productID, err := id.Parse(r.ProductID)
	if err != nil {
		return nil, err
	}

	t := tasks.NewTask(orderID, itemLine, productID, r.Quantity, r.WagePerPiece)
	t.Description = r.Description
	t.DueDate = r.DueDate

	if r.ContractorID != "" {
		contractorID, err := id.Parse(r.ContractorID)
		if err != nil {
			return nil, err
		}
		t.ContractorID = &contractorID
	}
	if r.WorkerID != "" {
		workerID, err := id.Parse(r.WorkerID)
		if err != nil {
			return nil, err
		}
		t.WorkerID = &workerID
	}
	return t, nil
}

// TaskDecisionRequest approves or rejects a pending task.
type TaskDecisionRequest struct {
	Notes string `json:"notes"`
}

// DailyProgressRequest logs one day's work on a task.
type DailyProgressRequest struct {
	Date            time.Time      `json:"date"`
	PiecesCompleted int64          `json:"piecesCompleted"`
	HoursWorked     types.Quantity `json:"hoursWorked"`
	WorkerIDs       []string       `json:"workerIds"`
	Notes           string         `json:"notes"`
}

// ToEntry converts the request to a progress entry.
func (r DailyProgressRequest) ToEntry() (tasks.DailyProgress, error) {
	entry := tasks.DailyProgress{
		Date:            r.Date,
		PiecesCompleted: r.PiecesCompleted,
		HoursWorked:     r.HoursWorked,
		Notes:           r.Notes,
	}
	for _, raw := range r.WorkerIDs {
		workerID, err := id.Parse(raw)
		if err != nil {
			return tasks.DailyProgress{}, err
		}
		entry.WorkerIDs = append(entry.WorkerIDs, workerID)
	}
	return entry, nil
}

// QualityCheckRequest records the inspection outcome of a completed task.
type QualityCheckRequest struct {
	PiecesRejected int64  `json:"piecesRejected"`
	Notes          string `json:"notes"`
}

// SetWageRequest changes the piece wage of a task.
type SetWageRequest struct {
	WagePerPiece types.Money `json:"wagePerPiece"`
}
