package models

import "time"

// EngagementKind is the type of action a user took on a post
type EngagementKind string

const (
	KindLike    EngagementKind = "like"
	KindReply   EngagementKind = "reply"
	KindReshare EngagementKind = "reshare"
)

// Valid reports whether k is one of the known engagement kinds
func (k EngagementKind) Valid() bool {
	switch k {
	case KindLike, KindReply, KindReshare:
		return true
	}
	return false
}

// Engagement is a like, reply or reshare by a user on a post.
// Content is empty for likes and reshares, which makes the unique index
// allow one like and one reshare per (user, post) while still accepting
// several replies as long as their text differs.
type Engagement struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"not null;index;uniqueIndex:idx_engagement_unique,priority:1"`
	PostID    uint           `json:"post_id" gorm:"not null;index;uniqueIndex:idx_engagement_unique,priority:2"`
	Kind      EngagementKind `json:"kind" gorm:"size:20;not null;index;uniqueIndex:idx_engagement_unique,priority:3"`
	Content   string         `json:"content,omitempty" gorm:"not null;default:'';uniqueIndex:idx_engagement_unique,priority:4"`
	CreatedAt time.Time      `json:"created_at"`
}

// CreateEngagementRequest defines the request body for engaging with a post
type CreateEngagementRequest struct {
	PostID  uint   `json:"post_id" validate:"required"`
	Kind    string `json:"kind" validate:"required,oneof=like reply reshare"`
	Content string `json:"content,omitempty" validate:"required_if=Kind reply,max=280"`
}

// EngagementView is a raw engagement row with its author's username
type EngagementView struct {
	ID        uint           `json:"id"`
	Kind      EngagementKind `json:"kind"`
	Content   string         `json:"content,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Username  string         `json:"username"`
}

// PostCounts are the aggregate engagement numbers for a post plus the
// current viewer's own state. Viewer flags are always false for anonymous viewers.
type PostCounts struct {
	LikeCount           int64  `json:"like_count"`
	ReplyCount          int64  `json:"reply_count"`
	ReshareCount        int64  `json:"reshare_count"`
	LikeCountDisplay    string `json:"like_count_display"`
	ReplyCountDisplay   string `json:"reply_count_display"`
	ReshareCountDisplay string `json:"reshare_count_display"`
	ViewerLiked         bool   `json:"viewer_liked"`
	ViewerReshared      bool   `json:"viewer_reshared"`
}

// FillDisplay sets the abbreviated *Display fields from the raw counts
func (c *PostCounts) FillDisplay() {
	c.LikeCountDisplay = FormatCount(c.LikeCount)
	c.ReplyCountDisplay = FormatCount(c.ReplyCount)
	c.ReshareCountDisplay = FormatCount(c.ReshareCount)
}
