// Package printer renders a finished preview document in headless Chrome
// and returns it as PDF or PNG.
package printer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-itmarket/internal/fileutil"
)

// Sentinel errors for printing.
var (
	ErrUnsupportedFormat = errors.New("unsupported print format")
	ErrBrowserConnect    = errors.New("failed to connect to browser")
	ErrPageCreate        = errors.New("failed to create browser page")
	ErrPageLoad          = errors.New("failed to load page")
	ErrPDFGeneration     = errors.New("PDF generation failed")
	ErrScreenshot        = errors.New("screenshot failed")
)

// Format is an output format.
type Format string

// Supported formats.
const (
	FormatPDF Format = "pdf"
	FormatPNG Format = "png"
)

// ParseFormat maps a case-insensitive name to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPDF, FormatPNG:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (use pdf or png)", ErrUnsupportedFormat, s)
	}
}

// Options controls the browser viewport. Zero values use the defaults.
type Options struct {
	Width  int // CSS pixels
	Height int // CSS pixels; screenshots always capture the full page
}

// Default viewport.
const (
	DefaultWidth  = 1440
	DefaultHeight = 900
)

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// Renderer renders a local HTML file. RodRenderer is the browser-backed
// implementation.
type Renderer interface {
	RenderFile(ctx context.Context, filePath string, format Format, opts Options) ([]byte, error)
	Close() error
}

// Printer writes a document to a temporary file and hands it to a Renderer.
// Loading from a file gives the page a stable origin for relative assets.
type Printer struct {
	renderer Renderer
}

// New creates a Printer on top of r.
func New(r Renderer) *Printer {
	if r == nil {
		panic("printer: nil Renderer")
	}
	return &Printer{renderer: r}
}

// Print renders htmlContent in the given format.
func (p *Printer) Print(ctx context.Context, htmlContent string, format Format, opts Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return p.renderer.RenderFile(ctx, tmpPath, format, opts.withDefaults())
}

// Close releases the renderer.
func (p *Printer) Close() error {
	return p.renderer.Close()
}
