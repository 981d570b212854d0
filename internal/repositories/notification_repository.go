package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/anonto42/microblog/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetRecentEntries(ctx context.Context, recipientID uint, limit int) ([]models.NotificationEntry, error)
	GetUnreadCount(ctx context.Context, recipientID uint) (int64, error)
	GetMaxID(ctx context.Context, recipientID uint) (uint, error)
	AdvanceWatermark(ctx context.Context, userID, notificationID uint) error
}

type gormNotificationRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormNotificationRepository creates a NotificationRepository on top of gorm
func NewGormNotificationRepository(db *gorm.DB) NotificationRepository {
	return &gormNotificationRepository{db: db, now: time.Now}
}

// feedRow is a notification joined with its post and the post's author
type feedRow struct {
	ID                 uint
	Kind               models.EngagementKind
	PostID             uint
	CreatedAt          time.Time
	PostText           string
	AuthorID           uint
	AuthorUsername     string
	AuthorDisplayName  string
	AuthorProfileImage string
	AuthorIsBot        bool
}

func (r *gormNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = r.now()
	}
	return translateError("create notification", r.db.WithContext(ctx).Create(notification).Error)
}

// GetRecentEntries returns the recipient's newest notifications, highest id first.
// Notifications whose post no longer exists are skipped by the inner join.
func (r *gormNotificationRepository) GetRecentEntries(ctx context.Context, recipientID uint, limit int) ([]models.NotificationEntry, error) {
	var rows []feedRow
	err := r.db.WithContext(ctx).
		Table("notifications AS n").
		Select(`n.id, n.kind, n.post_id, n.created_at, p.text AS post_text,
			u.id AS author_id, u.username AS author_username, u.display_name AS author_display_name,
			u.profile_image AS author_profile_image, u.is_bot AS author_is_bot`).
		Joins("JOIN posts p ON p.id = n.post_id").
		Joins("JOIN users u ON u.id = p.user_id").
		Where("n.recipient_id = ?", recipientID).
		Order("n.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, translateError("get notifications", err)
	}

	entries := make([]models.NotificationEntry, 0, len(rows))
	for _, row := range rows {
		author := models.User{
			ID:           row.AuthorID,
			Username:     row.AuthorUsername,
			DisplayName:  row.AuthorDisplayName,
			ProfileImage: row.AuthorProfileImage,
			IsBot:        row.AuthorIsBot,
		}
		entries = append(entries, models.NotificationEntry{
			ID:         row.ID,
			Kind:       row.Kind,
			PostID:     row.PostID,
			CreatedAt:  row.CreatedAt,
			PostText:   row.PostText,
			PostAuthor: author.ToAuthor(),
		})
	}
	return entries, nil
}

// GetUnreadCount counts notifications newer than the recipient's watermark.
// A recipient without a user row is treated as having watermark 0.
func (r *gormNotificationRepository) GetUnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	watermark := r.db.Model(&models.User{}).Select("last_seen_notification_id").Where("id = ?", recipientID)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND id > COALESCE((?), 0)", recipientID, watermark).
		Count(&count).Error
	if err != nil {
		return 0, translateError("count unread notifications", err)
	}
	return count, nil
}

// GetMaxID returns the highest notification id addressed to the recipient, 0 if none
func (r *gormNotificationRepository) GetMaxID(ctx context.Context, recipientID uint) (uint, error) {
	var maxID sql.NullInt64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Select("MAX(id)").
		Where("recipient_id = ?", recipientID).
		Row().Scan(&maxID)
	if err != nil {
		return 0, translateError("get max notification id", err)
	}
	if !maxID.Valid {
		return 0, nil
	}
	return uint(maxID.Int64), nil
}

// AdvanceWatermark moves the user's last-seen notification id forward. It never moves it back.
func (r *gormNotificationRepository) AdvanceWatermark(ctx context.Context, userID, notificationID uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND last_seen_notification_id < ?", userID, notificationID).
		UpdateColumn("last_seen_notification_id", notificationID).Error
	return translateError("advance notification watermark", err)
}
