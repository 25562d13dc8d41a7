package dto

import (
	"time"

	"aurotex/internal/core/apperror"
	"aurotex/internal/core/id"
	"aurotex/internal/core/types"
	"aurotex/internal/domain/catalogs/worker"
)

// CreateWorkerRequest for creating workers. The worker code comes from
// its own sequence, so the request never carries one.
type CreateWorkerRequest struct {
	Name         string      `json:"name" binding:"required"`
	ContractorID string      `json:"contractorId"`
	Phone        string      `json:"phone"`
	Skill        string      `json:"skill"`
	JoinedAt     *time.Time  `json:"joinedDate"`
	WagePerPiece types.Money `json:"wagePerPiece"`
}

// ToEntity converts the request to a domain entity.
func (r CreateWorkerRequest) ToEntity() (*worker.Worker, error) {
	w := worker.New(r.Name)
	if r.ContractorID != "" {
		cid, err := id.Parse(r.ContractorID)
		if err != nil {
			return nil, apperror.NewValidation("invalid contractor id").
				WithDetail("contractorId", r.ContractorID)
		}
		w.ContractorID = &cid
	}
	w.Phone = r.Phone
	w.Skill = r.Skill
	if r.JoinedAt != nil {
		w.JoinedAt = *r.JoinedAt
	}
	w.WagePerPiece = r.WagePerPiece
	return w, nil
}

// UpdateWorkerRequest for updating workers.
type UpdateWorkerRequest struct {
	Name         *string      `json:"name"`
	ContractorID *id.ID       `json:"contractorId"`
	Phone        *string      `json:"phone"`
	Skill        *string      `json:"skill"`
	WagePerPiece *types.Money `json:"wagePerPiece"`
	Active       *bool        `json:"active"`
	Version      int          `json:"version" binding:"required,min=1"`
}

// ApplyTo maps changed fields onto an existing entity.
func (r UpdateWorkerRequest) ApplyTo(w *worker.Worker) {
	if r.Name != nil {
		w.Name = *r.Name
	}
	if r.ContractorID != nil {
		w.ContractorID = r.ContractorID
	}
	if r.Phone != nil {
		w.Phone = *r.Phone
	}
	if r.Skill != nil {
		w.Skill = *r.Skill
	}
	if r.WagePerPiece != nil {
		w.WagePerPiece = *r.WagePerPiece
	}
	if r.Active != nil {
		w.Active = *r.Active
	}
	w.Version = r.Version
}
