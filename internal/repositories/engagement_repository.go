package repositories

import (
	"context"
	"time"

	"github.com/anonto42/microblog/backend/internal/models"
	"gorm.io/gorm"
)

// EngagementRepository defines the interface for engagement data operations
type EngagementRepository interface {
	CreateEngagement(ctx context.Context, engagement *models.Engagement) error
	GetEngagementByID(ctx context.Context, id uint) (*models.Engagement, error)
	DeleteEngagement(ctx context.Context, id uint) error
	GetEngagementsByPostID(ctx context.Context, postID uint) ([]models.EngagementView, error)
	CountByPostIDs(ctx context.Context, postIDs []uint) (map[uint]models.PostCounts, error)
	ViewerKinds(ctx context.Context, viewerID uint, postIDs []uint) (map[uint][]models.EngagementKind, error)
	GetLatestReply(ctx context.Context, postID uint) (*models.ReplyView, error)
	GetRecentLikers(ctx context.Context, postID uint, limit int) ([]models.Author, error)
	GetReplies(ctx context.Context, postID uint) ([]models.ReplyView, error)
}

// GormEngagementRepository implements EngagementRepository on top of gorm
type GormEngagementRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormEngagementRepository creates a new GormEngagementRepository
func NewGormEngagementRepository(db *gorm.DB) *GormEngagementRepository {
	return &GormEngagementRepository{db: db, now: time.Now}
}

// countRow is one GROUP BY row of CountByPostIDs
type countRow struct {
	PostID       uint
	LikeCount    int64
	ReplyCount   int64
	ReshareCount int64
}

// authorRow is a user joined onto an engagement
type authorRow struct {
	EngagementID uint
	Content      string
	CreatedAt    time.Time
	UserID       uint
	Username     string
	DisplayName  string
	ProfileImage string
	IsBot        bool
}

func (r authorRow) author() models.Author {
	u := models.User{
		ID:           r.UserID,
		Username:     r.Username,
		DisplayName:  r.DisplayName,
		ProfileImage: r.ProfileImage,
		IsBot:        r.IsBot,
	}
	return u.ToAuthor()
}

const authorColumns = "e.id AS engagement_id, e.content, e.created_at, u.id AS user_id, u.username, u.display_name, u.profile_image, u.is_bot"

// CreateEngagement inserts an engagement. A repeated (user, post, kind, content) yields ErrConflict.
func (r *GormEngagementRepository) CreateEngagement(ctx context.Context, engagement *models.Engagement) error {
	if engagement.CreatedAt.IsZero() {
		engagement.CreatedAt = r.now()
	}
	return translateError("create engagement", r.db.WithContext(ctx).Create(engagement).Error)
}

// GetEngagementByID retrieves an engagement by ID
func (r *GormEngagementRepository) GetEngagementByID(ctx context.Context, id uint) (*models.Engagement, error) {
	var engagement models.Engagement
	if err := r.db.WithContext(ctx).First(&engagement, id).Error; err != nil {
		return nil, translateError("get engagement", err)
	}
	return &engagement, nil
}

// DeleteEngagement removes an engagement. Notifications it produced are kept.
func (r *GormEngagementRepository) DeleteEngagement(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Engagement{}, id)
	if res.Error != nil {
		return translateError("delete engagement", res.Error)
	}
	if res.RowsAffected == 0 {
		return translateError("delete engagement", gorm.ErrRecordNotFound)
	}
	return nil
}

// GetEngagementsByPostID lists every engagement on a post, oldest first
func (r *GormEngagementRepository) GetEngagementsByPostID(ctx context.Context, postID uint) ([]models.EngagementView, error) {
	var views []models.EngagementView
	err := r.db.WithContext(ctx).
		Table("engagements AS e").
		Select("e.id, e.kind, e.content, e.created_at, u.username").
		Joins("JOIN users u ON u.id = e.user_id").
		Where("e.post_id = ?", postID).
		Order("e.created_at ASC").Order("e.id ASC").
		Scan(&views).Error
	if err != nil {
		return nil, translateError("get engagements by post", err)
	}
	return views, nil
}

// CountByPostIDs counts engagement rows per kind for each post. Posts without
// engagements are absent from the result.
func (r *GormEngagementRepository) CountByPostIDs(ctx context.Context, postIDs []uint) (map[uint]models.PostCounts, error) {
	result := make(map[uint]models.PostCounts, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	var rows []countRow
	err := r.db.WithContext(ctx).
		Model(&models.Engagement{}).
		Select(`post_id,
			COUNT(DISTINCT CASE WHEN kind = ? THEN id END) AS like_count,
			COUNT(DISTINCT CASE WHEN kind = ? THEN id END) AS reply_count,
			COUNT(DISTINCT CASE WHEN kind = ? THEN id END) AS reshare_count`,
			models.KindLike, models.KindReply, models.KindReshare).
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError("count engagements", err)
	}

	for _, row := range rows {
		result[row.PostID] = models.PostCounts{
			LikeCount:    row.LikeCount,
			ReplyCount:   row.ReplyCount,
			ReshareCount: row.ReshareCount,
		}
	}
	return result, nil
}

// ViewerKinds returns, per post, the like/reshare kinds the viewer has on it
func (r *GormEngagementRepository) ViewerKinds(ctx context.Context, viewerID uint, postIDs []uint) (map[uint][]models.EngagementKind, error) {
	result := make(map[uint][]models.EngagementKind)
	if len(postIDs) == 0 {
		return result, nil
	}

	var engagements []models.Engagement
	err := r.db.WithContext(ctx).
		Select("post_id", "kind").
		Where("user_id = ? AND post_id IN ? AND kind IN ?", viewerID, postIDs,
			[]models.EngagementKind{models.KindLike, models.KindReshare}).
		Find(&engagements).Error
	if err != nil {
		return nil, translateError("get viewer engagements", err)
	}

	for _, e := range engagements {
		result[e.PostID] = append(result[e.PostID], e.Kind)
	}
	return result, nil
}

// GetLatestReply returns the newest reply on a post, or nil when there is none
func (r *GormEngagementRepository) GetLatestReply(ctx context.Context, postID uint) (*models.ReplyView, error) {
	var rows []authorRow
	err := r.db.WithContext(ctx).
		Table("engagements AS e").
		Select(authorColumns).
		Joins("JOIN users u ON u.id = e.user_id").
		Where("e.post_id = ? AND e.kind = ?", postID, models.KindReply).
		Order("e.created_at DESC").Order("e.id DESC").
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, translateError("get latest reply", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &models.ReplyView{
		ID:        rows[0].EngagementID,
		Content:   rows[0].Content,
		CreatedAt: rows[0].CreatedAt,
		Author:    rows[0].author(),
	}, nil
}

// GetRecentLikers returns up to limit distinct users who liked the post, newest first
func (r *GormEngagementRepository) GetRecentLikers(ctx context.Context, postID uint, limit int) ([]models.Author, error) {
	var rows []authorRow
	err := r.db.WithContext(ctx).
		Table("engagements AS e").
		Select(authorColumns).
		Joins("JOIN users u ON u.id = e.user_id").
		Where("e.post_id = ? AND e.kind = ?", postID, models.KindLike).
		Order("e.created_at DESC").Order("e.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, translateError("get recent likers", err)
	}

	likers := make([]models.Author, 0, len(rows))
	for _, row := range rows {
		likers = append(likers, row.author())
	}
	return likers, nil
}

// GetReplies returns every reply on a post, oldest first
func (r *GormEngagementRepository) GetReplies(ctx context.Context, postID uint) ([]models.ReplyView, error) {
	var rows []authorRow
	err := r.db.WithContext(ctx).
		Table("engagements AS e").
		Select(authorColumns).
		Joins("JOIN users u ON u.id = e.user_id").
		Where("e.post_id = ? AND e.kind = ?", postID, models.KindReply).
		Order("e.created_at ASC").Order("e.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError("get replies", err)
	}

	replies := make([]models.ReplyView, 0, len(rows))
	for _, row := range rows {
		replies = append(replies, models.ReplyView{
			ID:        row.EngagementID,
			Content:   row.Content,
			CreatedAt: row.CreatedAt,
			Author:    row.author(),
		})
	}
	return replies, nil
}
