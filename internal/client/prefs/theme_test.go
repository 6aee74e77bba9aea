package prefs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/nano-blog/internal/kv"
)

func TestThemeDefaultsToDark(t *testing.T) {
	p := New(kv.NewFileStore(filepath.Join(t.TempDir(), "state.json")), nil)
	assert.Equal(t, Dark, p.Theme(context.Background()))
}

func TestSetAndToggleTheme(t *testing.T) {
	ctx := context.Background()
	store := kv.NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	p := New(store, nil)

	require.NoError(t, p.SetTheme(ctx, Light))
	assert.Equal(t, Light, p.Theme(ctx))

	raw, ok, err := store.Get(ctx, ThemeKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"state":{"theme":"light"},"version":0}`, raw)

	next, err := p.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, Dark, next)
	assert.Equal(t, Dark, New(store, nil).Theme(ctx))
}

func TestThemeOverRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	p := New(kv.NewRedisStore(client, "blogctl:"), nil)
	require.NoError(t, p.SetTheme(ctx, Light))
	assert.True(t, mr.Exists("blogctl:"+ThemeKey))
	assert.Equal(t, Light, p.Theme(ctx))
}

func TestCorruptThemeFallsBack(t *testing.T) {
	ctx := context.Background()
	store := kv.NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, store.Set(ctx, ThemeKey, "not json"))
	assert.Equal(t, Dark, New(store, nil).Theme(ctx))

	require.NoError(t, store.Set(ctx, ThemeKey, `{"state":{"theme":"purple"}}`))
	assert.Equal(t, Dark, New(store, nil).Theme(ctx))
}

func TestParseTheme(t *testing.T) {
	th, err := ParseTheme(" LIGHT ")
	require.NoError(t, err)
	assert.Equal(t, Light, th)

	_, err = ParseTheme("sepia")
	assert.Error(t, err)
	assert.Error(t, New(kv.NewFileStore(filepath.Join(t.TempDir(), "s.json")), nil).SetTheme(context.Background(), "sepia"))
}
