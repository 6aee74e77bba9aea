// Package viewed tracks which posts the user has opened, persisted through a
// kv.Store so the set survives restarts
package viewed

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/anonto42/nano-blog/internal/kv"
)

// StorageKey is the kv key holding the persisted set
const StorageKey = "viewed_posts"

const payloadVersion = 1

type payload struct {
	Version int    `json:"version"`
	IDs     []uint `json:"ids"`
}

// Set is the in-memory mirror of the persisted viewed-post ids
// Persistence failures are logged and never undo the in-memory change; the
// next successful write reconciles storage
type Set struct {
	store kv.Store
	log   *zap.Logger

	// writeMu orders persisted snapshots the same way as the mutations
	writeMu sync.Mutex
	mu      sync.RWMutex
	ids     map[uint]struct{}
}

// New creates an empty Set. Call Load to rehydrate it
func New(store kv.Store, log *zap.Logger) *Set {
	if log == nil {
		log = zap.NewNop()
	}
	return &Set{store: store, log: log, ids: map[uint]struct{}{}}
}

// Load replaces the in-memory set with the persisted one. Any read or decode
// failure leaves the set empty
func (s *Set) Load(ctx context.Context) {
	ids, err := s.read(ctx)
	if err != nil {
		s.log.Error("loading viewed posts", zap.Error(err))
		ids = nil
	}

	next := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		next[id] = struct{}{}
	}
	s.mu.Lock()
	s.ids = next
	s.mu.Unlock()
}

func (s *Set) read(ctx context.Context) ([]uint, error) {
	raw, found, err := s.store.Get(ctx, StorageKey)
	if err != nil || !found {
		return nil, err
	}
	return decode(raw)
}

func decode(raw string) ([]uint, error) {
	// Unversioned payloads are a bare array of ids
	var legacy []uint
	if err := json.Unmarshal([]byte(raw), &legacy); err == nil {
		return legacy, nil
	}
	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("decode viewed posts: %w", err)
	}
	if p.Version != payloadVersion {
		return nil, fmt.Errorf("unsupported viewed posts version %d", p.Version)
	}
	return p.IDs, nil
}

// IsViewed reports whether id has been marked viewed
func (s *Set) IsViewed(id uint) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// IDs returns the viewed ids in ascending order
func (s *Set) IDs() []uint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked()
}

// Len returns the number of viewed posts
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

func (s *Set) sortedLocked() []uint {
	out := make([]uint, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MarkViewed adds id and persists the set. Marking an id twice is a no-op
func (s *Set) MarkViewed(ctx context.Context, id uint) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if _, ok := s.ids[id]; ok {
		s.mu.Unlock()
		return
	}
	s.ids[id] = struct{}{}
	snapshot := s.sortedLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot, "marking post as viewed", id)
}

// Remove drops id and persists the set. Removing an absent id is a no-op
func (s *Set) Remove(ctx context.Context, id uint) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if _, ok := s.ids[id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.ids, id)
	snapshot := s.sortedLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot, "removing post from viewed", id)
}

// Clear empties the set and removes the persisted copy
func (s *Set) Clear(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.ids = map[uint]struct{}{}
	s.mu.Unlock()

	if err := s.store.Remove(ctx, StorageKey); err != nil {
		s.log.Error("clearing viewed posts", zap.Error(err))
	}
}

func (s *Set) persist(ctx context.Context, ids []uint, action string, id uint) {
	data, err := json.Marshal(payload{Version: payloadVersion, IDs: ids})
	if err == nil {
		err = s.store.Set(ctx, StorageKey, string(data))
	}
	if err != nil {
		s.log.Error(action, zap.Uint("post_id", id), zap.Error(err))
	}
}
