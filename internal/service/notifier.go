package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/ids"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/models"
)

const notificationStream = "swap:notifications"

// Notifier stores a notification row for in-app listing and fans the
// event out on a Redis stream for delivery. Both legs are fire and
// forget: the session transition that triggered them has already
// committed, so a failed dispatch is logged and never surfaced.
type Notifier struct {
	notifications NotificationStore
	queue         *redis.Client
	log           zerolog.Logger
}

func NewNotifier(notifications NotificationStore, queue *redis.Client, log zerolog.Logger) *Notifier {
	return &Notifier{
		notifications: notifications,
		queue:         queue,
		log:           log,
	}
}

func (n *Notifier) Notify(ctx context.Context, userID, sessionID, kind, message string) {
	if n == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()

	record := models.Notification{
		ID:        ids.New(),
		UserID:    userID,
		SessionID: sessionID,
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	if n.notifications != nil {
		if err := n.notifications.Create(ctx, record); err != nil {
			n.log.Warn().Err(err).Str("user_id", userID).Str("kind", kind).Msg("store notification failed")
		}
	}

	if n.queue == nil {
		return
	}
	_, err := n.queue.XAdd(ctx, &redis.XAddArgs{
		Stream: notificationStream,
		Values: map[string]any{
			"notificationId": record.ID,
			"userId":         userID,
			"sessionId":      sessionID,
			"kind":           kind,
			"message":        message,
		},
	}).Result()
	if err != nil {
		n.log.Warn().Err(err).Str("user_id", userID).Str("kind", kind).Msg("enqueue notification failed")
	}
}
