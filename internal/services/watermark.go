package services

import (
	"context"
	"time"

	"github.com/anonto42/microblog/backend/internal/repositories"
)

// WatermarkTracker derives read state from each user's last seen notification id
type WatermarkTracker struct {
	notifications repositories.NotificationRepository
	timeout       time.Duration
}

// NewWatermarkTracker creates a new WatermarkTracker
func NewWatermarkTracker(notifications repositories.NotificationRepository, timeout time.Duration) *WatermarkTracker {
	return &WatermarkTracker{notifications: notifications, timeout: timeout}
}

// UnreadCount counts the user's notifications newer than the watermark
func (w *WatermarkTracker) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	ctx, cancel := withTimeout(ctx, w.timeout)
	defer cancel()
	return w.notifications.GetUnreadCount(ctx, userID)
}

// MarkSeen moves the watermark to the user's newest notification. It is a
// no-op for users without notifications and never moves the watermark back.
func (w *WatermarkTracker) MarkSeen(ctx context.Context, userID uint) error {
	ctx, cancel := withTimeout(ctx, w.timeout)
	defer cancel()

	maxID, err := w.notifications.GetMaxID(ctx, userID)
	if err != nil {
		return err
	}
	if maxID == 0 {
		return nil
	}
	return w.notifications.AdvanceWatermark(ctx, userID, maxID)
}
