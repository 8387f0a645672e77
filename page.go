package itmarket

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alnah/go-itmarket/internal/frontmatter"
	"github.com/alnah/go-itmarket/internal/pipeline"
)

// backgroundPath is the header background on the site.
const backgroundPath = "/Bilder/Startseite/grainbg4.svg"

// pageView is the data of the preview template.
type pageView struct {
	Title       string
	Date        string
	Tags        []string
	Categories  []string
	Summary     string
	Author      string
	ReadingTime string
	Image       string
	ImageAlt    string
	Background  string
	Stylesheet  string
	ChartScript string
	CSS         template.CSS
	Content     template.HTML
}

// renderPage wraps the sanitized body in the preview template.
func (a *Assembler) renderPage(header frontmatter.Frontmatter, body string) (string, error) {
	view := pageView{
		Title:       header.Title,
		Date:        header.LongDate(),
		Tags:        header.Tags,
		Categories:  header.Categories,
		Summary:     header.Summary,
		Author:      AuthorName(header.Author),
		ReadingTime: header.Lesedauer,
		ImageAlt:    header.ImageAlt,
		Stylesheet:  a.siteURL(a.stylesheet),
		ChartScript: a.siteURL(a.chartScript),
		CSS:         a.css,
		// The body went through the sanitizer.
		Content: template.HTML(body), // #nosec G203
	}
	if header.Image != "" {
		view.Image = a.siteURL(header.Image)
	}
	if a.baseURL != "" {
		view.Background = pipeline.AbsoluteURL(backgroundPath, a.baseURL)
	}

	var buf bytes.Buffer
	if err := a.page.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageRender, err)
	}
	return buf.String(), nil
}

// siteURL resolves u against the base URL; without a base it is returned
// unchanged.
func (a *Assembler) siteURL(u string) string {
	if a.baseURL == "" {
		return u
	}
	return pipeline.AbsoluteURL(u, a.baseURL)
}

// AuthorName turns an author slug like "max-mustermann" into
// "Max Mustermann". Names without hyphens are returned as is.
func AuthorName(author string) string {
	if !strings.Contains(author, "-") {
		return author
	}
	parts := strings.Split(author, "-")
	for i, p := range parts {
		if p != "" {
			r, size := utf8.DecodeRuneInString(p)
			parts[i] = string(unicode.ToUpper(r)) + p[size:]
		}
	}
	return strings.Join(parts, " ")
}
