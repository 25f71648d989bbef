package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/middleware"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/models"
)

type notificationResponse struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

func toNotificationResponse(n models.Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		SessionID: n.SessionID,
		Kind:      n.Kind,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func (h HandlerSet) ListNotifications(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		failWith(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}

	notifications, err := h.notifications.ListByUser(c.Request.Context(), user.ID, limit)
	if err != nil {
		h.fail(c, err)
		return
	}

	items := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, toNotificationResponse(n))
	}

	ok(c, http.StatusOK, "ok", gin.H{"notifications": items})
}

func (h HandlerSet) MarkNotificationRead(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		failWith(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		h.fail(c, err)
		return
	}

	ok(c, http.StatusOK, "notification read", nil)
}
