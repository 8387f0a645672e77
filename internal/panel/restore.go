package panel

import (
	"regexp"
	"strings"
)

// Restore puts rendered panels back in place of their placeholders in
// markdown-rendered HTML. Each placeholder is matched in its code-block
// form, its paragraph form and finally bare. Indexes run high to low so
// TABLE_PANEL_BLOCK_1 cannot match inside TABLE_PANEL_BLOCK_10.
func Restore(html string, panels []string) string {
	for n := len(panels) - 1; n >= 0; n-- {
		token := Placeholder(n)
		html = codeBlockPattern(token).ReplaceAllLiteralString(html, panels[n])
		html = strings.ReplaceAll(html, "<p>"+token+"</p>", panels[n])
		html = strings.ReplaceAll(html, token, panels[n])
	}
	return html
}

func codeBlockPattern(token string) *regexp.Regexp {
	return regexp.MustCompile(`<pre><code>\s*` + regexp.QuoteMeta(token) + `\s*</code></pre>`)
}
