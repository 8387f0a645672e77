package pipeline

import (
	"context"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultBaseURL is the site root used for root-relative URLs when no base
// is configured.
const DefaultBaseURL = "https://dietechrecruiter.de"

// URLRewriter makes root-relative links in HTML absolute.
type URLRewriter interface {
	AbsolutizeURLs(ctx context.Context, htmlContent, baseURL string) (string, error)
}

// Compile-time interface check.
var _ URLRewriter = (*Absolutizer)(nil)

// Absolutizer rewrites src and href attributes against a site base URL.
type Absolutizer struct{}

// AbsolutizeURLs rewrites every src and href attribute that starts with "/".
// Protocol-relative values ("//host/x") get an https: scheme, root-relative
// values ("/x") get baseURL as prefix. If baseURL is empty, returns the HTML
// unchanged.
//
// Not rewritten:
//   - Absolute URLs, anchors, mailto: and data: URIs
//   - Document-relative paths ("img/x.png"), which stay relative to the page
//   - srcset and CSS url() references
func (a *Absolutizer) AbsolutizeURLs(ctx context.Context, htmlContent, baseURL string) (string, error) {
	if baseURL == "" {
		return htmlContent, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	absolutizeNode(doc, strings.TrimSuffix(baseURL, "/"))

	return renderHTML(doc, isFragment)
}

// AbsoluteURL resolves a single URL the way AbsolutizeURLs resolves
// attributes. Document-relative values are joined to base with a slash.
func AbsoluteURL(value, baseURL string) string {
	switch {
	case value == "":
		return ""
	case strings.HasPrefix(value, "http://"), strings.HasPrefix(value, "https://"):
		return value
	case strings.HasPrefix(value, "//"):
		return "https:" + value
	}
	base := strings.TrimSuffix(baseURL, "/")
	if strings.HasPrefix(value, "/") {
		return base + value
	}
	return base + "/" + value
}

// parseHTML parses HTML content, handling both full documents and fragments.
// Returns the parsed node and whether it was a fragment.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	// Parse fragments in body context to avoid the <html><body> wrapper.
	body := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

// renderHTML renders the tree back to a string. Fragments render their
// children only.
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func absolutizeNode(n *html.Node, base string) {
	if n.Type == html.ElementNode {
		for i, attr := range n.Attr {
			if attr.Namespace != "" || (attr.Key != "src" && attr.Key != "href") {
				continue
			}
			if strings.HasPrefix(attr.Val, "/") {
				n.Attr[i].Val = AbsoluteURL(attr.Val, base)
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		absolutizeNode(c, base)
	}
}
