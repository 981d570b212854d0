package models

import "time"

// MaxPostLength is the longest post text accepted, in characters
const MaxPostLength = 280

// Post is an immutable piece of text published by a user
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Text      string    `json:"text" gorm:"size:280;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Text string `json:"text" validate:"required,min=1,max=280"`
}

// PostView is a post with its author and engagement counts, ready for rendering
type PostView struct {
	ID        uint       `json:"id"`
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"created_at"`
	Author    Author     `json:"author"`
	Counts    PostCounts `json:"counts"`
}

// ReplyView is a single reply shown under a post
type ReplyView struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Author    Author    `json:"author"`
}
