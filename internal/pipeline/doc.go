// Package pipeline implements the text stages of the article preview:
//   - Body normalization and spacer insertion before conversion
//   - Markdown to HTML conversion via Goldmark
//   - HTML sanitization via bluemonday
//   - Absolutizing root-relative URLs against the site base
//
// Table panels and shortcodes are expanded by their own packages between
// conversion and sanitization; the root itmarket package fixes the order.
package pipeline
