package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aurotex/internal/core/apperror"
	"aurotex/internal/core/id"
	"aurotex/internal/domain/tasks"
	"aurotex/internal/infrastructure/http/v1/dto"
)

// TaskHandler handles production task endpoints.
type TaskHandler struct {
	*BaseHandler
	service *tasks.Service
}

// NewTaskHandler creates a task handler.
func NewTaskHandler(base *BaseHandler, service *tasks.Service) *TaskHandler {
	return &TaskHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /document/tasks. An assigneeId query narrows the
// list to one contractor's or worker's assignments.
func (h *TaskHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	if assigneeID := c.Query("assigneeId"); assigneeID != "" {
		parsed, err := id.Parse(assigneeID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid assignee id"))
			return
		}
		result, err := h.service.ListByAssignee(ctx, parsed, query.ToFilter())
		if err != nil {
			h.Error(c, err)
			return
		}
		h.OK(c, result)
		return
	}

	result, err := h.service.List(ctx, query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// Get handles GET /document/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	taskID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	task, err := h.service.GetByID(ctx, taskID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, task)
}

// GetByNumber handles GET /document/tasks/by-number/:number
func (h *TaskHandler) GetByNumber(c *gin.Context) {
	ctx := c.Request.Context()

	task, err := h.service.GetByNumber(ctx, c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, task)
}

// ListByOrder handles GET /document/tasks/by-order/:orderId
func (h *TaskHandler) ListByOrder(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, err := id.Parse(c.Param("orderId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid order id"))
		return
	}

	items, err := h.service.ListByOrder(ctx, orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items})
}

// Create handles POST /document/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateTaskRequest
	if !h.BindJSON(c, &req) {
		return
	}

	task, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id in request").WithDetail("error", err.Error()))
		return
	}

	created, err := h.service.Create(ctx, task)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Approve handles POST /document/tasks/:id/approve
func (h *TaskHandler) Approve(c *gin.Context) {
	ctx := c.Request.Context()

	taskID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.TaskDecisionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	task, err := h.service.Approve(ctx, taskID, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, task)
}

// Reject handles POST /document/tasks/:id/reject
func (h *TaskHandler) Reject(c *gin.Context) {
	ctx := c.Request.Context()

	taskID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.CancelRequest
	if !h.BindJSON(c, &req) {
		return
	}

	task, err := h.service.Reject(ctx, taskID, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, task)
}

// Start handles POST /document/tasks/:id/start
func (h *TaskHandler) Start(c *gin.Context) {
	ctx := c.Request.Context()

	taskID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	task, err := h.service.Start(ctx, taskID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, task)
}

// Complete handles POST /document/tasks/:id/complete
func (h *TaskHandler) Complete(c *gin.Context) {
	ctx := c.Request.Context()

	taskID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.TaskDecisionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	task, err := h.service.Complete(ctx, taskID, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, task)
}

// Cancel handles POST /document/tasks/:id/cancel
func (h *TaskHandler) Cancel(c *gin.Context) {
	ctx := c.Request.Context()

	taskID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.CancelRequest
	if !h.BindJSON(c, &req) {
		return
	}

	task, err := h.service.Cancel(ctx, taskID, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, task)
}

// AddProgress handles POST /document/tasks/:id/progress
func (h *TaskHandler) AddProgress(c *gin.Context) {
	ctx := c.Request.Context()

	taskID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.DailyProgressRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entry, err := req.ToEntry()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid worker id"))
		return
	}

	task, err := h.service.AddDailyProgress(ctx, taskID, entry)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, task)
}

// QualityCheck handles POST /document/tasks/:id/quality-check
func (h *TaskHandler) QualityCheck(c *gin.Context) {
	ctx := c.Request.Context()

	taskID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.QualityCheckRequest
	if !h.BindJSON(c, &req) {
		return
	}

	task, err := h.service.RecordQualityCheck(ctx, taskID, req.PiecesRejected, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, task)
}

// SetWage handles PUT /document/tasks/:id/wage
func (h *TaskHandler) SetWage(c *gin.Context) {
	ctx := c.Request.Context()

	taskID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SetWageRequest
	if !h.BindJSON(c, &req) {
		return
	}

	task, err := h.service.SetWage(ctx, taskID, req.WagePerPiece)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, task)
}
