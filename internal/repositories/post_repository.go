package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/nano-blog/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a post or comment does not exist
var ErrNotFound = errors.New("record not found")

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	GetAllPosts(ctx context.Context) ([]models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id uint) error
	CountComments(ctx context.Context, postID uint) (int64, error)
}

// PostgresPostRepository implements PostRepository with GORM
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func newestComments(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

// CreatePost inserts a post; ID and timestamps are assigned by the database
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if post.ImageURLs == nil {
		post.ImageURLs = []string{}
	}
	return r.db.WithContext(ctx).Omit("Comments").Create(post).Error
}

// GetPostByID retrieves a post with its comments, newest comment first
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Preload("Comments", newestComments).First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	post.CommentsCount = len(post.Comments)
	return &post, nil
}

// GetAllPosts retrieves every post, newest first, with comments preloaded
func (r *PostgresPostRepository) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("Comments", newestComments).
		Order("created_at DESC").Order("id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].CommentsCount = len(posts[i].Comments)
	}
	return posts, nil
}

// UpdatePost writes title, content and image URLs of an existing post
func (r *PostgresPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	if post.ImageURLs == nil {
		post.ImageURLs = []string{}
	}
	post.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&models.Post{ID: post.ID}).
		Select("title", "content", "image_urls", "updated_at").
		Updates(&models.Post{Title: post.Title, Content: post.Content, ImageURLs: post.ImageURLs, UpdatedAt: post.UpdatedAt})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost deletes a post and its comments in one transaction
func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// CountComments returns the number of comments attached to a post
func (r *PostgresPostRepository) CountComments(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}
