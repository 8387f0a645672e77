package itmarket

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/alnah/go-itmarket/internal/assets"
	"github.com/alnah/go-itmarket/internal/dataset"
	"github.com/alnah/go-itmarket/internal/frontmatter"
	"github.com/alnah/go-itmarket/internal/panel"
	"github.com/alnah/go-itmarket/internal/pipeline"
	"github.com/alnah/go-itmarket/internal/shortcode"
)

// Assembler renders articles against one dataset snapshot. An Assembler is
// safe for concurrent use once created.
type Assembler struct {
	data        dataset.Dataset
	logger      *slog.Logger
	baseURL     string
	chartScript string
	stylesheet  string
	animation   bool
	normalize   bool
	loader      assets.AssetLoader

	markdown  pipeline.MarkdownRenderer
	sanitizer pipeline.HTMLSanitizer
	rewriter  pipeline.URLRewriter
	page      *template.Template
	css       template.CSS
}

// NewAssembler creates an Assembler over ds. The preview template and
// stylesheet are loaded and parsed here, so a broken custom template fails
// early.
func NewAssembler(ds dataset.Dataset, opts ...Option) (*Assembler, error) {
	a := &Assembler{
		data:        ds,
		logger:      slog.Default().With(slog.String("module", "itmarket")),
		baseURL:     pipeline.DefaultBaseURL,
		chartScript: "/itmarket-charts.js",
		stylesheet:  "/cw-style.css",
		loader:      assets.NewEmbeddedLoader(),
		markdown:    pipeline.NewGoldmarkRenderer(),
		sanitizer:   pipeline.NewSanitizer(),
		rewriter:    &pipeline.Absolutizer{},
	}

	for _, opt := range opts {
		opt(a)
	}

	tmplText, err := a.loader.LoadTemplate(assets.PreviewTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateLoad, err)
	}
	a.page, err = template.New(assets.PreviewTemplate).Parse(tmplText)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing: %v", ErrTemplateLoad, err)
	}

	css, err := a.loader.LoadStyle(assets.PreviewStyle)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateLoad, err)
	}
	a.css = template.CSS(css) // #nosec G203 -- stylesheet comes from the asset loader, not the article

	return a, nil
}

// Render runs the preview pipeline on doc and returns the page and body.
// The context is checked between stages. Recovers from internal panics so
// a malformed article cannot crash a long-running preview server.
func (a *Assembler) Render(ctx context.Context, doc Document) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("render panic", slog.Any("panic", r))
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	if strings.TrimSpace(doc.Source) == "" {
		return nil, ErrEmptyDocument
	}

	var header frontmatter.Frontmatter
	headerText, body, ok := frontmatter.Split(doc.Source)
	if ok {
		header, err = frontmatter.Parse(headerText)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}

	if a.normalize {
		body = a.normalizeBody(body, doc.Month, header)
	}

	extraction := panel.Extract(body)

	htmlText, err := a.markdown.ToHTML(ctx, extraction.Markdown)
	if err != nil {
		return nil, fmt.Errorf("converting to HTML: %w", err)
	}

	panels, err := panel.RenderAll(extraction.Blocks)
	if err != nil {
		return nil, fmt.Errorf("rendering table panels: %w", err)
	}
	htmlText = panel.Restore(htmlText, panels)

	htmlText, err = a.engine(doc.Patch).Expand(htmlText)
	if err != nil {
		return nil, fmt.Errorf("expanding shortcodes: %w", err)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	htmlText, err = a.sanitizer.Sanitize(ctx, htmlText)
	if err != nil {
		return nil, fmt.Errorf("sanitizing: %w", err)
	}

	htmlText, err = a.rewriter.AbsolutizeURLs(ctx, htmlText, a.baseURL)
	if err != nil {
		return nil, fmt.Errorf("absolutizing URLs: %w", err)
	}

	page, err := a.renderPage(header, htmlText)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("rendered preview",
		slog.String("title", header.Title),
		slog.Int("panels", len(panels)),
		slog.Int("bytes", len(page)))

	return &Result{
		HTML:   page,
		Body:   htmlText,
		Header: header,
		Panels: len(panels),
	}, nil
}

// engine returns a shortcode engine over the dataset, with patch upserted
// when given. The base snapshot is never modified.
func (a *Assembler) engine(patch *dataset.Dataset) *shortcode.Engine {
	ds := a.data
	if patch != nil {
		ds = ds.Merge(*patch)
	}
	return shortcode.NewEngine(ds,
		shortcode.WithLogger(a.logger.With(slog.String("module", "shortcode"))),
		shortcode.WithAnimation(a.animation),
	)
}

// normalizeBody applies body normalization for the article month. Without
// a usable month the body is returned unchanged.
func (a *Assembler) normalizeBody(body, month string, header frontmatter.Frontmatter) string {
	if month == "" {
		month = header.Month()
	}
	if !dataset.ValidMonth(month) {
		a.logger.Debug("skipping normalization without article month", slog.String("month", month))
		return body
	}
	return pipeline.NormalizeBody(body, month)
}
