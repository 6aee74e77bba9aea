// Package store holds the client's in-memory post and comment collections
//
// Every mutation replaces the backing slice instead of editing it in place, so
// a snapshot handed to a reader never changes underneath it. Version increases
// on each effective mutation and subscribers are called after it
package store

import (
	"sync"

	"github.com/anonto42/nano-blog/internal/models"
)

// PostPatch carries the fields an edit may change. Nil fields are left alone
type PostPatch struct {
	Title     *string
	Content   *string
	ImageURLs []string
	// SetImages distinguishes "clear the images" from "keep them"
	SetImages bool
}

// Patch builds the PostPatch for an edit submitted through form. A nil
// ImageURLs keeps the stored images, matching the server's merge
func Patch(form models.PostForm) PostPatch {
	title, content := form.Title, form.Content
	return PostPatch{
		Title:     &title,
		Content:   &content,
		ImageURLs: form.ImageURLs,
		SetImages: form.ImageURLs != nil,
	}
}

// PostStore is the authoritative ordered collection of posts
type PostStore struct {
	mu      sync.RWMutex
	posts   []models.Post
	version uint64
	subs    subscribers[[]models.Post]
}

// NewPostStore returns an empty PostStore
func NewPostStore() *PostStore {
	return &PostStore{posts: []models.Post{}}
}

// Posts returns the current snapshot. Callers must treat it as read-only
func (s *PostStore) Posts() []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.posts
}

// Version identifies the current snapshot
func (s *PostStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Get returns the post with id
func (s *PostStore) Get(id uint) (models.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.posts {
		if p.ID == id {
			return p, true
		}
	}
	return models.Post{}, false
}

// Subscribe registers fn to receive every new snapshot. The returned func unregisters it
func (s *PostStore) Subscribe(fn func([]models.Post)) func() {
	return s.subs.add(fn)
}

// commit swaps in next and notifies subscribers outside the lock
func (s *PostStore) commit(next []models.Post) {
	s.posts = next
	s.version++
	s.mu.Unlock()
	s.subs.notify(next)
}

// SetAll replaces the entire collection
func (s *PostStore) SetAll(posts []models.Post) {
	next := make([]models.Post, len(posts))
	copy(next, posts)
	s.mu.Lock()
	s.commit(next)
}

// UpsertAfterCreate puts a freshly created post at the front
func (s *PostStore) UpsertAfterCreate(post models.Post) {
	s.mu.Lock()
	next := make([]models.Post, 0, len(s.posts)+1)
	next = append(next, post)
	for _, p := range s.posts {
		if p.ID != post.ID {
			next = append(next, p)
		}
	}
	s.commit(next)
}

// ReplaceByID merges patch into the post with id. Unknown ids are ignored
func (s *PostStore) ReplaceByID(id uint, patch PostPatch) {
	s.update(id, func(p *models.Post) {
		if patch.Title != nil {
			p.Title = *patch.Title
		}
		if patch.Content != nil {
			p.Content = *patch.Content
		}
		if patch.SetImages {
			p.ImageURLs = append([]string{}, patch.ImageURLs...)
		}
	})
}

// SetCommentsCount sets the derived comment count of the post with id
func (s *PostStore) SetCommentsCount(id uint, count int) {
	if count < 0 {
		count = 0
	}
	s.update(id, func(p *models.Post) { p.CommentsCount = count })
}

func (s *PostStore) update(id uint, fn func(p *models.Post)) {
	s.mu.Lock()
	idx := -1
	for i, p := range s.posts {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	next := make([]models.Post, len(s.posts))
	copy(next, s.posts)
	fn(&next[idx])
	s.commit(next)
}

// RemoveByID drops the post with id. Unknown ids are ignored
func (s *PostStore) RemoveByID(id uint) {
	s.mu.Lock()
	next := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if p.ID != id {
			next = append(next, p)
		}
	}
	if len(next) == len(s.posts) {
		s.mu.Unlock()
		return
	}
	s.commit(next)
}
