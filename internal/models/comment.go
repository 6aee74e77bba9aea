package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Comment represents a reply attached to exactly one post
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Author    string    `json:"author" gorm:"size:50;not null"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	PostID    uint      `json:"postId" gorm:"index;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Author string `json:"author" validate:"required,min=1,max=50"`
	Text   string `json:"text" validate:"required,min=1,max=500"`
	PostID uint   `json:"postId" validate:"required,gt=0"`
}

// APIClaims are the JWT claims accepted on write routes
type APIClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}
