package models

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

// User is an account that can post and engage with posts
type User struct {
	ID                     uint      `json:"id" gorm:"primaryKey"`
	Username               string    `json:"username" gorm:"size:50;not null"`
	UsernameKey            string    `json:"-" gorm:"size:50;not null;uniqueIndex"` // lowercased username, enforces case-insensitive uniqueness
	DisplayName            string    `json:"display_name" gorm:"size:100"`
	Bio                    string    `json:"bio"`
	ProfileImage           string    `json:"profile_image,omitempty"`
	BannerImage            string    `json:"banner_image,omitempty"`
	IsBot                  bool      `json:"is_bot" gorm:"default:false"`
	PasswordHash           string    `json:"-"`
	FirebaseUID            *string   `json:"-" gorm:"uniqueIndex"`
	LastSeenNotificationID uint      `json:"-" gorm:"not null;default:0"`
	CreatedAt              time.Time `json:"created_at"`
}

// BeforeSave keeps UsernameKey in sync with Username
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.UsernameKey = NormalizeUsername(u.Username)
	return nil
}

// NormalizeUsername returns the lookup key used for case-insensitive username matching
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Name returns the display name, falling back to the username
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// ToAuthor converts a user into the compact form embedded in posts and notifications
func (u *User) ToAuthor() Author {
	return Author{
		ID:           u.ID,
		Username:     u.Username,
		DisplayName:  u.Name(),
		ProfileImage: u.ProfileImage,
		IsBot:        u.IsBot,
	}
}

// Author is the compact public profile shown next to posts, likers and replies
type Author struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	DisplayName  string `json:"display_name"`
	ProfileImage string `json:"profile_image,omitempty"`
	IsBot        bool   `json:"is_bot"`
}

// SignupRequest defines the request body for creating a local account
type SignupRequest struct {
	Username    string `json:"username" validate:"required,min=2,max=50,alphanum"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,max=100"`
}

// SigninRequest defines the request body for signing in
type SigninRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest defines the request body for editing the own profile
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=100"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=160"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
