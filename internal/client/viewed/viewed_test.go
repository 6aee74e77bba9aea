package viewed

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/anonto42/nano-blog/internal/kv"
)

type memStore struct {
	values map[string]string
	writes int
	getErr error
	setErr error
}

func newMemStore() *memStore { return &memStore{values: map[string]string{}} }

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.writes++
	m.values[key] = value
	return nil
}

func (m *memStore) Remove(_ context.Context, key string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.writes++
	delete(m.values, key)
	return nil
}

func TestMarkViewedIsIdempotent(t *testing.T) {
	store := newMemStore()
	s := New(store, nil)
	ctx := context.Background()

	s.MarkViewed(ctx, 7)
	once := s.IDs()
	persisted := store.values[StorageKey]

	s.MarkViewed(ctx, 7)
	assert.Equal(t, once, s.IDs())
	assert.Equal(t, persisted, store.values[StorageKey])
	assert.Equal(t, 1, store.writes, "second mark must not rewrite storage")
	assert.True(t, s.IsViewed(7))
}

func TestPersistedLayoutIsVersioned(t *testing.T) {
	store := newMemStore()
	s := New(store, nil)
	ctx := context.Background()

	s.MarkViewed(ctx, 3)
	s.MarkViewed(ctx, 1)
	assert.JSONEq(t, `{"version":1,"ids":[1,3]}`, store.values[StorageKey])
}

func TestLoadRehydrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	first := New(kv.NewFileStore(path), nil)
	first.MarkViewed(ctx, 1)
	first.MarkViewed(ctx, 2)

	second := New(kv.NewFileStore(path), nil)
	second.Load(ctx)
	assert.Equal(t, []uint{1, 2}, second.IDs())
}

func TestLoadAcceptsLegacyArray(t *testing.T) {
	store := newMemStore()
	store.values[StorageKey] = `[5,4]`
	s := New(store, nil)

	s.Load(context.Background())
	assert.Equal(t, []uint{4, 5}, s.IDs())
}

func TestLoadFailureStartsEmptyAndLogs(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	store := newMemStore()
	store.getErr = errors.New("disk gone")
	s := New(store, zap.New(core))

	s.Load(context.Background())
	assert.Zero(t, s.Len())
	assert.Equal(t, 1, logs.FilterMessage("loading viewed posts").Len())

	store.getErr = nil
	store.values[StorageKey] = `{"version":1,"ids":"nope"}`
	s.Load(context.Background())
	assert.Zero(t, s.Len())
	assert.Equal(t, 2, logs.FilterMessage("loading viewed posts").Len())
}

func TestPersistFailureKeepsInMemoryState(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	store := newMemStore()
	store.setErr = errors.New("read-only")
	s := New(store, zap.New(core))
	ctx := context.Background()

	s.MarkViewed(ctx, 9)
	assert.True(t, s.IsViewed(9))
	assert.Equal(t, 1, logs.Len())

	// the next successful write reconciles storage
	store.setErr = nil
	s.MarkViewed(ctx, 10)
	assert.JSONEq(t, `{"version":1,"ids":[9,10]}`, store.values[StorageKey])
}

func TestRemoveAndClear(t *testing.T) {
	store := newMemStore()
	s := New(store, nil)
	ctx := context.Background()

	s.MarkViewed(ctx, 1)
	s.MarkViewed(ctx, 2)
	writes := store.writes

	s.Remove(ctx, 42)
	assert.Equal(t, writes, store.writes, "removing an absent id is a no-op")

	s.Remove(ctx, 1)
	assert.False(t, s.IsViewed(1))
	assert.JSONEq(t, `{"version":1,"ids":[2]}`, store.values[StorageKey])

	s.Clear(ctx)
	assert.Zero(t, s.Len())
	_, found := store.values[StorageKey]
	assert.False(t, found)
}
