// Package theme keeps the light/dark preference across runs.
package theme

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/storage"
)

type Theme string

const (
	Light  Theme = "light"
	Dark   Theme = "dark"
	System Theme = "system"
)

func Parse(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case Light, Dark, System:
		return t, nil
	}
	return "", fmt.Errorf("unknown theme %q (light, dark or system)", s)
}

const (
	storageKey = "theme"
	keepFor    = 365 * 24 * time.Hour
)

// Preference is the chosen theme plus what the system currently uses.
type Preference struct {
	mu     sync.Mutex
	theme  Theme
	system Theme // Light or Dark
	store  storage.Store
	now    storage.Clock
}

// Load reads the saved preference; nothing saved means System.
func Load(ctx context.Context, store storage.Store, now storage.Clock) (*Preference, error) {
	if now == nil {
		now = time.Now
	}
	p := &Preference{theme: System, system: Light, store: store, now: now}
	if store == nil {
		return p, nil
	}
	e, ok, err := store.Get(ctx, storageKey)
	if err != nil {
		return nil, fmt.Errorf("load theme: %w", err)
	}
	if ok {
		if t, perr := Parse(e.Value); perr == nil {
			p.theme = t
		}
	}
	return p, nil
}

func (p *Preference) Theme() Theme {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.theme
}

// Active resolves System to the system theme.
func (p *Preference) Active() Theme {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active()
}

func (p *Preference) active() Theme {
	if p.theme == System {
		return p.system
	}
	return p.theme
}

func (p *Preference) Set(ctx context.Context, t Theme) error {
	if _, err := Parse(string(t)); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.save(ctx, t)
}

// SetSystemTheme records what the environment uses. Only Light and Dark are
// meaningful; it is not persisted.
func (p *Preference) SetSystemTheme(t Theme) {
	if t != Dark {
		t = Light
	}
	p.mu.Lock()
	p.system = t
	p.mu.Unlock()
}

// Toggle flips light and dark. From System it switches to the opposite of
// the system theme.
func (p *Preference) Toggle(ctx context.Context) (Theme, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	next := Light
	if p.active() == Light {
		next = Dark
	}
	if err := p.save(ctx, next); err != nil {
		return p.theme, err
	}
	return next, nil
}

func (p *Preference) save(ctx context.Context, t Theme) error {
	if p.store != nil {
		if err := p.store.Put(ctx, storage.Entry{Key: storageKey, Value: string(t), Expires: p.now().Add(keepFor)}); err != nil {
			return fmt.Errorf("save theme: %w", err)
		}
	}
	p.theme = t
	return nil
}

// Color is the accent used for the active theme.
func (p *Preference) Color() string {
	if p.Active() == Dark {
		return "#1e1e1e"
	}
	return "#ffffff"
}

// DetectSystem guesses the terminal background from COLORFGBG ("fg;bg").
func DetectSystem() Theme {
	v := os.Getenv("COLORFGBG")
	if v == "" {
		return Light
	}
	parts := strings.Split(v, ";")
	bg, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return Light
	}
	if bg < 7 || bg == 8 {
		return Dark
	}
	return Light
}
