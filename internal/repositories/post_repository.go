package repositories

import (
	"context"
	"time"

	"github.com/anonto42/microblog/backend/internal/models"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	GetRecentPosts(ctx context.Context, limit int) ([]models.Post, error)
	GetPostsByUserID(ctx context.Context, userID uint) ([]models.Post, error)
	GetOwnerID(ctx context.Context, postID uint) (uint, error)
}

// GormPostRepository implements PostRepository on top of gorm
type GormPostRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormPostRepository creates a new GormPostRepository
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db, now: time.Now}
}

// CreatePost inserts a new post
func (r *GormPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = r.now()
	}
	return translateError("create post", r.db.WithContext(ctx).Create(post).Error)
}

// GetPostByID retrieves a post by ID
func (r *GormPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, translateError("get post", err)
	}
	return &post, nil
}

// GetRecentPosts retrieves the newest posts across all users
func (r *GormPostRepository) GetRecentPosts(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, translateError("get recent posts", err)
	}
	return posts, nil
}

// GetPostsByUserID retrieves every post of a user, newest first
func (r *GormPostRepository) GetPostsByUserID(ctx context.Context, userID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, translateError("get posts by user", err)
	}
	return posts, nil
}

// GetOwnerID resolves the author of a post
func (r *GormPostRepository) GetOwnerID(ctx context.Context, postID uint) (uint, error) {
	var ownerIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		Limit(1).
		Pluck("user_id", &ownerIDs).Error
	if err != nil {
		return 0, translateError("get post owner", err)
	}
	if len(ownerIDs) == 0 {
		return 0, translateError("get post owner", gorm.ErrRecordNotFound)
	}
	return ownerIDs[0], nil
}
