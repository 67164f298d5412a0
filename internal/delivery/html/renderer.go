package html

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/storehelper/backend/internal/domain"
)

//go:embed templates/catalog.html.tmpl
var templateFS embed.FS

const (
	pageTitle       = "Taylor Swift Merch Finder"
	timestampLayout = "02/01/2006 15:04"
)

// Options configures the catalog renderer
type Options struct {
	OutputPath      string
	AssetPrefix     string // prepended to cached image paths, "../" by default
	PlaceholderPath string
	QuickSearches   []string
	Now             func() time.Time
}

// Renderer turns a product list into the static catalog page
type Renderer struct {
	tmpl *template.Template
	opts Options
}

type cardView struct {
	domain.Product
	ImageSrc string
}

type pageView struct {
	Title         string
	GeneratedAt   string
	Fallback      string
	QuickSearches []string
	Products      []cardView
}

// NewRenderer parses the embedded page template
func NewRenderer(opts Options) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/catalog.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog template: %w", err)
	}

	if opts.OutputPath == "" {
		opts.OutputPath = "index.html"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Renderer{tmpl: tmpl, opts: opts}, nil
}

// OutputPath returns where Render writes the page
func (r *Renderer) OutputPath() string {
	return r.opts.OutputPath
}

// Render dedupes the products and overwrites the output file.
// It returns the path that was written.
func (r *Renderer) Render(products []domain.Product) (string, error) {
	var buf bytes.Buffer
	if err := r.Write(&buf, products); err != nil {
		return "", err
	}

	if dir := filepath.Dir(r.opts.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(r.opts.OutputPath, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write catalog: %w", err)
	}

	log.Printf("[RENDER] Wrote %d bytes to %s", buf.Len(), r.opts.OutputPath)
	return r.opts.OutputPath, nil
}

// Write renders the page for the products to w
func (r *Renderer) Write(w io.Writer, products []domain.Product) error {
	unique := domain.DedupeByTitle(products)

	view := pageView{
		Title:         pageTitle,
		GeneratedAt:   r.opts.Now().Format(timestampLayout),
		Fallback:      r.opts.PlaceholderPath,
		QuickSearches: r.opts.QuickSearches,
		Products:      make([]cardView, 0, len(unique)),
	}
	for _, p := range unique {
		view.Products = append(view.Products, cardView{
			Product:  p,
			ImageSrc: r.assetURL(p.ImagePath),
		})
	}

	if err := r.tmpl.ExecuteTemplate(w, "catalog.html.tmpl", view); err != nil {
		return fmt.Errorf("failed to render catalog: %w", err)
	}
	return nil
}

func (r *Renderer) assetURL(path string) string {
	return r.opts.AssetPrefix + filepath.ToSlash(path)
}
