package mailer

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/a-h/templ"
)

// ComponentFunc builds a templ component from view data.
type ComponentFunc func(data any) (templ.Component, error)

var _ ViewRenderer = (*ComponentRenderer)(nil)

// ComponentRenderer renders registered templ components by view name.
//
// Example:
//
//	views := mailer.NewComponentRenderer()
//	views.Register("welcome", func(data any) (templ.Component, error) {
//	    p, ok := data.(WelcomeProps)
//	    if !ok {
//	        return nil, errors.New("welcome: unexpected data")
//	    }
//	    return emails.Welcome(p), nil
//	})
type ComponentRenderer struct {
	views map[string]ComponentFunc
	mu    sync.RWMutex
}

// NewComponentRenderer creates an empty component registry.
func NewComponentRenderer() *ComponentRenderer {
	return &ComponentRenderer{views: make(map[string]ComponentFunc)}
}

// Register adds or replaces a view. Returns the renderer for chaining.
func (r *ComponentRenderer) Register(name string, fn ComponentFunc) *ComponentRenderer {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[name] = fn
	return r
}

// Render implements ViewRenderer.
func (r *ComponentRenderer) Render(ctx context.Context, view string, data any) (string, error) {
	r.mu.RLock()
	fn, ok := r.views[view]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrViewNotFound, view)
	}

	component, err := fn(data)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
