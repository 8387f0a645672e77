package pipeline

import (
	"context"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// HTMLSanitizer removes unsafe markup from rendered article HTML.
type HTMLSanitizer interface {
	Sanitize(ctx context.Context, htmlContent string) (string, error)
}

// Compile-time interface check.
var _ HTMLSanitizer = (*Sanitizer)(nil)

// Sanitizer wraps a bluemonday policy that keeps article markup, chart
// embeds and their inline SVG, and drops scripts, event handlers and
// javascript: URLs.
type Sanitizer struct {
	policy *bluemonday.Policy
}

var (
	idPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_:.-]*$`)

	// SMIL may only animate presentation values, never href or event
	// attributes.
	animatedAttrPattern = regexp.MustCompile(`^(r|opacity|stroke-dashoffset)$`)

	svgElements = []string{
		"svg", "defs", "g", "lineargradient", "stop", "filter",
		"fegaussianblur", "femerge", "femergenode", "fedropshadow",
		"rect", "line", "path", "circle", "text", "title",
	}

	svgAttrs = []string{
		"xmlns", "viewbox", "width", "height", "role",
		"x", "y", "x1", "x2", "y1", "y2", "cx", "cy", "r", "rx", "dx", "dy", "d",
		"offset", "stop-color", "stddeviation", "result", "in", "flood-opacity",
		"fill", "stroke", "stroke-width", "stroke-linecap", "stroke-linejoin",
		"stroke-dasharray", "stroke-dashoffset", "opacity", "filter",
		"font-size", "text-anchor",
	}
)

// NewSanitizer creates a Sanitizer on top of bluemonday's UGC policy.
func NewSanitizer() *Sanitizer {
	p := bluemonday.UGCPolicy()

	p.AllowElements("div", "span", "section", "figure", "figcaption")
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).Globally()
	p.AllowAttrs("id").Matching(idPattern).Globally()
	p.AllowAttrs("aria-label").Globally()
	p.AllowDataAttributes()

	// Table panels and range tables.
	p.AllowElements("table", "thead", "tbody", "tr", "th", "td", "h3")

	p.AllowElements(svgElements...)
	p.AllowAttrs(svgAttrs...).OnElements(svgElements...)
	// <defs>, <feMerge> and marker <title>s carry no attributes.
	p.AllowNoAttrs().OnElements(svgElements...)

	p.AllowElements("animate", "set")
	p.AllowAttrs("attributename").Matching(animatedAttrPattern).OnElements("animate", "set")
	p.AllowAttrs("from", "to", "dur", "begin", "end", "fill").OnElements("animate", "set")

	return &Sanitizer{policy: p}
}

// Sanitize applies the policy. Removed markup is dropped silently.
func (s *Sanitizer) Sanitize(ctx context.Context, htmlContent string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.policy.Sanitize(htmlContent), nil
}
