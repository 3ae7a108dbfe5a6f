package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/carelink/care-service/internal/api/dto"
	"github.com/carelink/care-service/internal/service"
)

// NotificationsHandler exposes the per-account inbox.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notificationService}
}

// List GET /notifications?unread=true.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	limit, offset := pagination(c)
	unreadOnly := c.Query("unread") == "true"
	entries, err := h.notifications.ListInbox(c.Context(), principal.Account.ID, unreadOnly, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.NotificationResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.FromNotification(&entries[i]))
	}
	return ok(c, http.StatusOK, items)
}

// MarkRead POST /notifications/:notificationId/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	if err := h.notifications.MarkRead(c.Context(), principal.Account.ID, c.Params("notificationId")); err != nil {
		return err
	}
	return okMessage(c, http.StatusOK, "notification marked read")
}

// MarkAllRead POST /notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	if err := h.notifications.MarkAllRead(c.Context(), principal.Account.ID); err != nil {
		return err
	}
	return okMessage(c, http.StatusOK, "all notifications marked read")
}
