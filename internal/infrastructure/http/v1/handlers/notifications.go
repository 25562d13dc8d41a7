package handlers

import (
	"github.com/gin-gonic/gin"

	"aurotex/internal/domain/notifications"
	"aurotex/internal/infrastructure/http/v1/dto"
)

// NotificationHandler handles the in-app inbox endpoints.
type NotificationHandler struct {
	*BaseHandler
	service *notifications.Service
}

// NewNotificationHandler creates a notification handler.
func NewNotificationHandler(base *BaseHandler, service *notifications.Service) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /notifications
func (h *NotificationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	result, err := h.service.ListForCurrentUser(ctx, query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// UnreadCount handles GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	ctx := c.Request.Context()

	count, err := h.service.CountUnread(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"unread": count})
}

// MarkRead handles POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	ctx := c.Request.Context()

	notificationID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.MarkRead(ctx, notificationID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "notification marked read")
}

// MarkAllRead handles POST /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.service.MarkAllRead(ctx); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "all notifications marked read")
}
