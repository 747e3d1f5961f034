package mailer

import "context"

// ViewRenderer renders a named view into an HTML body.
type ViewRenderer interface {
	Render(ctx context.Context, view string, data any) (string, error)
}

// RenderFunc adapts a plain function to ViewRenderer.
type RenderFunc func(ctx context.Context, view string, data any) (string, error)

// Render implements ViewRenderer.
func (f RenderFunc) Render(ctx context.Context, view string, data any) (string, error) {
	return f(ctx, view, data)
}
