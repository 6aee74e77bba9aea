// Package prefs persists user interface preferences in the kv store
package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/anonto42/nano-blog/internal/kv"
)

// ThemeKey is the kv key holding the theme preference
const ThemeKey = "theme-storage"

// Theme is a UI color scheme
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// DefaultTheme applies until the user picks one
const DefaultTheme = Dark

// ParseTheme accepts "light" or "dark" in any case
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case Light, Dark:
		return t, nil
	default:
		return "", fmt.Errorf("unknown theme %q (want light or dark)", s)
	}
}

// Toggled returns the other theme
func (t Theme) Toggled() Theme {
	if t == Light {
		return Dark
	}
	return Light
}

// themeState mirrors the persisted {"state":{"theme":...},"version":0} envelope
type themeState struct {
	State struct {
		Theme Theme `json:"theme"`
	} `json:"state"`
	Version int `json:"version"`
}

// Prefs reads and writes preferences
type Prefs struct {
	store kv.Store
	log   *zap.Logger
}

// New creates Prefs over store
func New(store kv.Store, log *zap.Logger) *Prefs {
	if log == nil {
		log = zap.NewNop()
	}
	return &Prefs{store: store, log: log}
}

// Theme returns the saved theme, or DefaultTheme when none is saved or the
// stored value cannot be read
func (p *Prefs) Theme(ctx context.Context) Theme {
	raw, ok, err := p.store.Get(ctx, ThemeKey)
	if err != nil {
		p.log.Warn("reading theme preference", zap.Error(err))
		return DefaultTheme
	}
	if !ok {
		return DefaultTheme
	}

	var st themeState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		p.log.Warn("decoding theme preference", zap.Error(err))
		return DefaultTheme
	}
	t, err := ParseTheme(string(st.State.Theme))
	if err != nil {
		return DefaultTheme
	}
	return t
}

// SetTheme saves t
func (p *Prefs) SetTheme(ctx context.Context, t Theme) error {
	t, err := ParseTheme(string(t))
	if err != nil {
		return err
	}
	var st themeState
	st.State.Theme = t
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := p.store.Set(ctx, ThemeKey, string(data)); err != nil {
		return fmt.Errorf("saving theme: %w", err)
	}
	return nil
}

// ToggleTheme flips the saved theme and returns the new one
func (p *Prefs) ToggleTheme(ctx context.Context) (Theme, error) {
	next := p.Theme(ctx).Toggled()
	if err := p.SetTheme(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}
