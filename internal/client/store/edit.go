package store

import "sync"

// EditSession tracks which post, if any, is open in the edit form
type EditSession struct {
	mu      sync.Mutex
	postID  uint
	open    bool
	onClose func(postID uint)
}

// NewEditSession returns a closed session. onClose, if set, runs whenever an
// open session is force-closed
func NewEditSession(onClose func(postID uint)) *EditSession {
	return &EditSession{onClose: onClose}
}

// Open starts editing postID
func (e *EditSession) Open(postID uint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.postID, e.open = postID, true
}

// Current returns the post being edited
func (e *EditSession) Current() (uint, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.postID, e.open
}

// Close ends the session
func (e *EditSession) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.postID, e.open = 0, false
}

// CloseIf force-closes the session when it is editing postID and reports whether it did
func (e *EditSession) CloseIf(postID uint) bool {
	e.mu.Lock()
	if !e.open || e.postID != postID {
		e.mu.Unlock()
		return false
	}
	e.postID, e.open = 0, false
	onClose := e.onClose
	e.mu.Unlock()

	if onClose != nil {
		onClose(postID)
	}
	return true
}
