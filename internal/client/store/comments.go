package store

import (
	"sync"

	"github.com/anonto42/nano-blog/internal/models"
)

// CommentStore holds the single thread currently in view, newest first
type CommentStore struct {
	mu       sync.RWMutex
	postID   uint
	comments []models.Comment
	version  uint64
	subs     subscribers[[]models.Comment]
}

// NewCommentStore returns an empty CommentStore
func NewCommentStore() *CommentStore {
	return &CommentStore{comments: []models.Comment{}}
}

// Comments returns the current snapshot. Callers must treat it as read-only
func (s *CommentStore) Comments() []models.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.comments
}

// PostID reports which post's thread is loaded; 0 means none
func (s *CommentStore) PostID() uint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.postID
}

// Len returns the size of the loaded thread
func (s *CommentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.comments)
}

// Version identifies the current snapshot
func (s *CommentStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe registers fn to receive every new snapshot
func (s *CommentStore) Subscribe(fn func([]models.Comment)) func() {
	return s.subs.add(fn)
}

func (s *CommentStore) commit(postID uint, next []models.Comment) {
	s.postID = postID
	s.comments = next
	s.version++
	s.mu.Unlock()
	s.subs.notify(next)
}

// SetAll replaces the visible thread with postID's comments
func (s *CommentStore) SetAll(postID uint, comments []models.Comment) {
	next := make([]models.Comment, len(comments))
	copy(next, comments)
	s.mu.Lock()
	s.commit(postID, next)
}

// Prepend inserts a new comment at index 0
func (s *CommentStore) Prepend(comment models.Comment) {
	s.mu.Lock()
	next := make([]models.Comment, 0, len(s.comments)+1)
	next = append(next, comment)
	next = append(next, s.comments...)
	s.commit(s.postID, next)
}

// RemoveByID drops the comment with id. Unknown ids are ignored
func (s *CommentStore) RemoveByID(id uint) {
	s.mu.Lock()
	next := make([]models.Comment, 0, len(s.comments))
	for _, c := range s.comments {
		if c.ID != id {
			next = append(next, c)
		}
	}
	if len(next) == len(s.comments) {
		s.mu.Unlock()
		return
	}
	s.commit(s.postID, next)
}

// Clear empties the thread
func (s *CommentStore) Clear() {
	s.mu.Lock()
	s.commit(0, []models.Comment{})
}
