package itmarket

import (
	"log/slog"

	"github.com/alnah/go-itmarket/internal/assets"
	"github.com/alnah/go-itmarket/internal/dataset"
	"github.com/alnah/go-itmarket/internal/frontmatter"
)

// Document is one article to preview.
type Document struct {
	// Source is the Markdown body, optionally led by a +++ TOML header.
	Source string

	// Month (YYYY-MM) pins normalized shortcodes to the article month.
	// When empty the month of the header date is used.
	Month string

	// Patch holds current-month entries upserted over the dataset for this
	// render only. Nil renders against the dataset as is.
	Patch *dataset.Dataset
}

// Result is a rendered preview.
type Result struct {
	// HTML is the complete standalone preview document.
	HTML string

	// Body is the sanitized, absolutized article body.
	Body string

	// Header is the parsed article header; zero when the source has none.
	Header frontmatter.Frontmatter

	// Panels is the number of table-panel blocks that were rendered.
	Panels int
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger. Degraded expansions log at Debug and Warn.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithBaseURL sets the site root for root-relative URLs. Empty keeps them
// relative.
func WithBaseURL(u string) Option {
	return func(a *Assembler) {
		a.baseURL = u
	}
}

// WithChartScript sets the client-side chart script URL. Empty omits the
// script tag.
func WithChartScript(src string) Option {
	return func(a *Assembler) {
		a.chartScript = src
	}
}

// WithStylesheet sets the site stylesheet URL. Empty omits the link tag.
func WithStylesheet(href string) Option {
	return func(a *Assembler) {
		a.stylesheet = href
	}
}

// WithAnimation makes chart embeds start animated.
func WithAnimation(enabled bool) Option {
	return func(a *Assembler) {
		a.animation = enabled
	}
}

// WithNormalize enables body normalization before rendering.
func WithNormalize(enabled bool) Option {
	return func(a *Assembler) {
		a.normalize = enabled
	}
}

// WithAssetLoader sets where the preview template and stylesheet come from.
func WithAssetLoader(l assets.AssetLoader) Option {
	return func(a *Assembler) {
		if l != nil {
			a.loader = l
		}
	}
}
