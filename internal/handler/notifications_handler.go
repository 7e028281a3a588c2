package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/rentroom/api/internal/middleware"
	"github.com/octobees/rentroom/api/internal/response"
	"github.com/octobees/rentroom/api/internal/service"
)

// NotificationsHandler exposes the caller's own notifications.
type NotificationsHandler struct {
	notifications *service.NotificationService
	log           *zap.Logger
}

// NewNotificationsHandler constructs a NotificationsHandler.
func NewNotificationsHandler(notifications *service.NotificationService, log *zap.Logger) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications, log: log}
}

func (h *NotificationsHandler) caller(c echo.Context) (uuid.UUID, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return uuid.Nil, service.ErrInvalidSubject
	}
	return service.ActorID(id)
}

// List handles GET /api/notifications.
func (h *NotificationsHandler) List(c echo.Context) error {
	return h.list(c, false, "Get all notifications successfully")
}

// Unread handles GET /api/notifications/unread.
func (h *NotificationsHandler) Unread(c echo.Context) error {
	return h.list(c, true, "Get unread notifications successfully")
}

func (h *NotificationsHandler) list(c echo.Context, unreadOnly bool, message string) error {
	userID, err := h.caller(c)
	if err != nil {
		return RespondError(c, h.log, err)
	}
	items, err := h.notifications.List(c.Request().Context(), userID, unreadOnly)
	if err != nil {
		return RespondError(c, h.log, err)
	}
	return response.Success(c, http.StatusOK, message, mapAll(items, notificationResponse))
}

// MarkRead handles PATCH /api/notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c echo.Context) error {
	id, ok, err := pathID(c)
	if !ok {
		return err
	}
	userID, err := h.caller(c)
	if err != nil {
		return RespondError(c, h.log, err)
	}
	n, err := h.notifications.MarkRead(c.Request().Context(), userID, id)
	if err != nil {
		return RespondError(c, h.log, err)
	}
	return response.Success(c, http.StatusOK, "Notification marked as read", notificationResponse(*n))
}

// MarkAllRead handles POST /api/notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(c echo.Context) error {
	userID, err := h.caller(c)
	if err != nil {
		return RespondError(c, h.log, err)
	}
	updated, err := h.notifications.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return RespondError(c, h.log, err)
	}
	return response.Success(c, http.StatusOK, "All notifications marked as read", map[string]int64{"updated": updated})
}

// Delete handles DELETE /api/notifications/:id.
func (h *NotificationsHandler) Delete(c echo.Context) error {
	id, ok, err := pathID(c)
	if !ok {
		return err
	}
	userID, err := h.caller(c)
	if err != nil {
		return RespondError(c, h.log, err)
	}
	if err := h.notifications.Delete(c.Request().Context(), userID, id); err != nil {
		return RespondError(c, h.log, err)
	}
	return response.Success(c, http.StatusOK, "Notification deleted", nil)
}
