package shortcode

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/alnah/go-itmarket/internal/dataset"
)

// ErrExpand is returned when a fragment template fails to execute.
var ErrExpand = errors.New("shortcode expansion failed")

// Fixed fragments.
const (
	spaceHTML        = `<div class="shortcode-space"></div>`
	missingMonthHTML = `<div class="shortcode-placeholder">Tabelle: Monat fehlt</div>`
)

// Engine expands shortcodes against one dataset snapshot. An Engine holds
// no per-call state and is safe for concurrent use.
type Engine struct {
	data      dataset.Dataset
	logger    *slog.Logger
	animation bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for degraded expansions.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithAnimation makes chart embeds start animated.
func WithAnimation(enabled bool) Option {
	return func(e *Engine) {
		e.animation = enabled
	}
}

// NewEngine creates an Engine over ds.
func NewEngine(ds dataset.Dataset, opts ...Option) *Engine {
	e := &Engine{
		data:   ds,
		logger: slog.Default().With(slog.String("module", "shortcode")),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand replaces every shortcode token in htmlText. Chart ids are
// numbered from preview-0 within one call. A token that fills a paragraph
// on its own replaces the paragraph. Data problems yield placeholders,
// never errors.
func (e *Engine) Expand(htmlText string) (string, error) {
	tokens := Scan(htmlText)
	if len(tokens) == 0 {
		return htmlText, nil
	}

	var (
		sb     strings.Builder
		last   int
		charts int
	)
	sb.Grow(len(htmlText))

	for _, tok := range tokens {
		start, end := tok.Start, tok.End
		if strings.HasSuffix(htmlText[last:start], "<p>") && strings.HasPrefix(htmlText[end:], "</p>") {
			start -= len("<p>")
			end += len("</p>")
		}

		fragment, err := e.render(Parse(tok), tok, &charts)
		if err != nil {
			return "", err
		}
		sb.WriteString(htmlText[last:start])
		sb.WriteString(fragment)
		last = end
	}
	sb.WriteString(htmlText[last:])
	return sb.String(), nil
}

// render dispatches on the variant. The switch is exhaustive over the
// sealed Shortcode type.
func (e *Engine) render(sc Shortcode, tok Token, charts *int) (string, error) {
	switch v := sc.(type) {
	case Space:
		return spaceHTML, nil
	case Chart:
		id := fmt.Sprintf("preview-%d", *charts)
		*charts++
		return e.renderChart(v, id)
	case RangeTable:
		return e.renderRangeTable(v)
	case CompareTable:
		return e.renderCompareTable(v)
	case Unknown:
		e.logger.Debug("unknown shortcode", slog.String("name", v.Name))
		return placeholder("Shortcode: " + collapseSpace(v.Name+html.UnescapeString(v.RawAttrs))), nil
	default:
		return "", fmt.Errorf("%w: unhandled variant %T for %q", ErrExpand, sc, tok.Name)
	}
}

// placeholder renders a visible marker for content that could not be
// produced. text is escaped.
func placeholder(text string) string {
	return `<div class="shortcode-placeholder">` + html.EscapeString(text) + `</div>`
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
