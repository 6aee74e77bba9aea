package models

import "time"

// Post represents a blog entry stored in PostgreSQL
type Post struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Title         string    `json:"title" gorm:"not null"`
	Content       string    `json:"content" gorm:"type:text"`
	ImageURLs     []string  `json:"imageUrls" gorm:"serializer:json;type:text"`
	Comments      []Comment `json:"comments,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CommentsCount int       `json:"commentsCount" gorm:"-"` // derived, never persisted
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// HasAttachments reports whether the post carries at least one image
func (p Post) HasAttachments() bool {
	return len(p.ImageURLs) > 0
}

// CreatePostRequest defines the request body for creating or replacing a post
// On update a null or missing imageUrls keeps the stored images and [] clears them
type CreatePostRequest struct {
	Title     string   `json:"title" validate:"required"`
	Content   string   `json:"content" validate:"required"`
	ImageURLs []string `json:"imageUrls"`
}

// PostForm is the client-side schema for the create/edit post form
type PostForm struct {
	Title     string   `json:"title" validate:"required,min=3"`
	Content   string   `json:"content" validate:"required,min=5"`
	ImageURLs []string `json:"imageUrls"`
}

// Request converts the form into the wire request
func (f PostForm) Request() CreatePostRequest {
	return CreatePostRequest{Title: f.Title, Content: f.Content, ImageURLs: f.ImageURLs}
}

// UploadResponse is returned by the image upload endpoint
type UploadResponse struct {
	URL string `json:"url"`
}

// CommentCount is returned by the per-post comment count endpoint
type CommentCount struct {
	PostID uint `json:"postId"`
	Count  int  `json:"count"`
}
