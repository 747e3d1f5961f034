package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sync"
	texttemplate "text/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// layoutKey is the frontmatter key that selects a layout per template.
const layoutKey = "Layout"

var _ ViewRenderer = (*MarkdownRenderer)(nil)

// MarkdownRenderer renders markdown views with YAML frontmatter into an HTML layout.
// View names are template paths relative to the template directory.
type MarkdownRenderer struct {
	fs        fs.FS
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy

	// Caches hold parsed structure only, never rendered output.
	templateCache map[string]*cachedTemplate
	layoutCache   map[string]*template.Template

	templateDir   string
	layoutDir     string
	defaultLayout string

	mu sync.RWMutex
}

// cachedTemplate holds parsed template data for reuse.
type cachedTemplate struct {
	metadata map[string]any
	tmpl     *texttemplate.Template
}

// RendererConfig configures the markdown renderer.
type RendererConfig struct {
	// Sanitizer filters the HTML produced from markdown before it enters
	// the layout. Nil disables sanitization.
	Sanitizer     *bluemonday.Policy
	TemplateDir   string // Default: "."
	LayoutDir     string // Default: "layouts"
	DefaultLayout string // Default: "base.html"
}

// NewMarkdownRenderer creates a renderer with default config.
func NewMarkdownRenderer(filesystem fs.FS) *MarkdownRenderer {
	return NewMarkdownRendererWithConfig(filesystem, RendererConfig{})
}

// NewMarkdownRendererWithConfig creates a renderer with custom config.
func NewMarkdownRendererWithConfig(filesystem fs.FS, cfg RendererConfig) *MarkdownRenderer {
	if cfg.TemplateDir == "" {
		cfg.TemplateDir = "."
	}
	if cfg.LayoutDir == "" {
		cfg.LayoutDir = "layouts"
	}
	if cfg.DefaultLayout == "" {
		cfg.DefaultLayout = "base.html"
	}

	return &MarkdownRenderer{
		fs:            filesystem,
		md:            goldmark.New(goldmark.WithExtensions(extension.GFM)),
		sanitizer:     cfg.Sanitizer,
		templateDir:   cfg.TemplateDir,
		layoutDir:     cfg.LayoutDir,
		defaultLayout: cfg.DefaultLayout,
		templateCache: make(map[string]*cachedTemplate),
		layoutCache:   make(map[string]*template.Template),
	}
}

// Render implements ViewRenderer.
// The layout comes from the template's "Layout" frontmatter key, or the default.
func (r *MarkdownRenderer) Render(ctx context.Context, view string, data any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	cached, err := r.getTemplate(view)
	if err != nil {
		return "", err
	}

	var processed bytes.Buffer
	if err := cached.tmpl.Execute(&processed, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", view, err)
	}

	var content bytes.Buffer
	if err := r.md.Convert(processed.Bytes(), &content); err != nil {
		return "", fmt.Errorf("convert markdown %s: %w", view, err)
	}

	body := content.String()
	if r.sanitizer != nil {
		body = r.sanitizer.Sanitize(body)
	}

	layout := r.defaultLayout
	if name, ok := cached.metadata[layoutKey].(string); ok && name != "" {
		layout = name
	}

	layoutTmpl, err := r.getLayout(layout)
	if err != nil {
		return "", err
	}

	var out bytes.Buffer
	layoutData := map[string]any{
		"Content":  template.HTML(body), //nolint:gosec // markdown output, optionally sanitized
		"Metadata": cached.metadata,
		"Data":     data,
	}
	if err := layoutTmpl.Execute(&out, layoutData); err != nil {
		return "", fmt.Errorf("execute layout %s: %w", layout, err)
	}

	return out.String(), nil
}

// getTemplate returns a cached template or parses and caches it.
func (r *MarkdownRenderer) getTemplate(name string) (*cachedTemplate, error) {
	r.mu.RLock()
	cached, ok := r.templateCache[name]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.templateCache[name]; ok {
		return cached, nil
	}

	content, err := fs.ReadFile(r.fs, path.Join(r.templateDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
	}

	parsed, err := ParseTemplate(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	tmpl, err := texttemplate.New(name).Parse(parsed.Body)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}

	cached = &cachedTemplate{metadata: parsed.Metadata, tmpl: tmpl}
	r.templateCache[name] = cached
	return cached, nil
}

// getLayout returns a cached layout template or parses and caches it.
func (r *MarkdownRenderer) getLayout(name string) (*template.Template, error) {
	r.mu.RLock()
	cached, ok := r.layoutCache[name]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.layoutCache[name]; ok {
		return cached, nil
	}

	content, err := fs.ReadFile(r.fs, path.Join(r.layoutDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLayoutNotFound, name, err)
	}

	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse layout %s: %w", name, err)
	}

	r.layoutCache[name] = tmpl
	return tmpl, nil
}
