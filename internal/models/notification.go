package models

import "time"

// Notification is a recipient-addressed record of an engagement on one of the
// recipient's posts. Records are never updated; read state is derived from
// User.LastSeenNotificationID.
type Notification struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Kind        EngagementKind `json:"kind" gorm:"size:20;not null"`
	PostID      uint           `json:"post_id" gorm:"not null;index"`
	RecipientID uint           `json:"recipient_id" gorm:"not null;index"`
	ActorID     uint           `json:"actor_id" gorm:"not null"`
	CreatedAt   time.Time      `json:"created_at" gorm:"index"`
}

// NotificationEntry is one raw notification joined with its post and the post's author
type NotificationEntry struct {
	ID         uint
	Kind       EngagementKind
	PostID     uint
	CreatedAt  time.Time
	PostText   string
	PostAuthor Author
}

// ViewKindAggregatedLikes tags feed entries that stand for every like on one post
const ViewKindAggregatedLikes = "aggregated_likes"

// NotificationView is an entry of the notification feed. Single events
// (reply, reshare) carry ID and, for replies, Reply. Aggregated-likes entries
// carry Likers and LikeCount instead.
type NotificationView struct {
	Kind       string     `json:"kind"`
	ID         uint       `json:"id,omitempty"`
	PostID     uint       `json:"post_id"`
	PostText   string     `json:"post_text"`
	PostAuthor Author     `json:"post_author"`
	CreatedAt  time.Time  `json:"created_at"`
	Reply      *ReplyView `json:"reply,omitempty"`
	Likers     []Author   `json:"likers,omitempty"`
	LikeCount  int        `json:"like_count,omitempty"`
}
