package pipeline

import (
	"regexp"
	"strings"
)

// SpaceToken is the spacer shortcode placed between paragraphs.
const SpaceToken = "{{< space >}}"

// jobBoardURL is the canonical job board link.
const jobBoardURL = "https://dietechrecruiter.de/jobs#jobboard"

var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)
	paragraphBreak     = regexp.MustCompile(`\n\s*\n+`)

	headingLine  = regexp.MustCompile(`^#{1,6}\s+`)
	faqHeading   = regexp.MustCompile(`(?i)^#{1,6}\s*FAQ\b`)
	linkOnlyLine = regexp.MustCompile(`^\s*\[[^\]]+]\([^)]+\)\s*$`)
	listItem     = regexp.MustCompile(`^\s*[-*]\s+`)
	topHeading   = regexp.MustCompile(`^#\s+`)

	linkTarget = regexp.MustCompile(`\]\(([^)]+)\)`)
	bareEmail  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

	chartShortcode = regexp.MustCompile(`\{\{<\s*chart_itmarket_all([^>]*)>\}\}`)
	tableShortcode = regexp.MustCompile(`\{\{<\s*itmarket_table([^>]*)>\}\}`)
	toAttr         = regexp.MustCompile(`to="[^"]*"`)
	monthAttr      = regexp.MustCompile(`month="[^"]*"`)
	compareAttr    = regexp.MustCompile(`type="compare"`)
)

// NormalizeBody cleans up a pasted article body for the given article
// month (YYYY-MM):
//   - table-panel blocks become a compare table for month
//   - "# " headings are demoted to "## ", FAQ headings are dropped
//   - a spacer directly after a heading is dropped
//   - lines holding only a link become list items
//   - soft-wrapped paragraph lines are joined (fenced code is kept)
//   - bare e-mail link targets get a mailto: scheme
//   - chart shortcodes end at month, compare tables show month
//   - runs of blank lines collapse to one
func NormalizeBody(body, month string) string {
	body = crlfOrCR.ReplaceAllString(body, "\n")
	lines := strings.Split(replaceTablePanels(body, month), "\n")

	out := make([]string, 0, len(lines))
	inCode := false
	for _, raw := range lines {
		trimmed := strings.TrimSpace(raw)

		if strings.HasPrefix(trimmed, "```") {
			inCode = !inCode
			out = append(out, raw)
			continue
		}
		if inCode {
			out = append(out, raw)
			continue
		}

		switch {
		case faqHeading.MatchString(trimmed):
			continue
		case strings.HasPrefix(trimmed, "# "):
			out = append(out, topHeading.ReplaceAllString(raw, "## "))
			continue
		case trimmed == SpaceToken && followsHeading(out):
			continue
		case linkOnlyLine.MatchString(raw) && !listItem.MatchString(raw):
			out = append(out, "- "+trimmed)
			continue
		}
		out = append(out, raw)
	}

	merged := strings.Join(mergeWrappedLines(out), "\n")
	merged = normalizeLinks(merged)
	merged = pinShortcodeMonth(merged, month)
	return strings.TrimSpace(multipleBlankLines.ReplaceAllString(merged, "\n\n"))
}

// InsertSpacers joins the paragraphs of body with a spacer shortcode. A
// body with a single paragraph is returned trimmed.
func InsertSpacers(body string) string {
	body = strings.TrimSpace(crlfOrCR.ReplaceAllString(body, "\n"))
	if body == "" {
		return ""
	}

	var blocks []string
	for _, b := range paragraphBreak.Split(body, -1) {
		if b = strings.TrimSpace(b); b != "" {
			blocks = append(blocks, b)
		}
	}
	if len(blocks) <= 1 {
		return body
	}
	return strings.Join(blocks, "\n\n"+SpaceToken+"\n\n")
}

// replaceTablePanels swaps every [chart] block that declares a table panel
// for a compare table shortcode. The block runs while lines are blank,
// section headers or key = value pairs.
func replaceTablePanels(body, month string) string {
	lines := strings.Split(body, "\n")
	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); {
		if !strings.HasPrefix(strings.TrimSpace(lines[i]), "[chart]") {
			out = append(out, lines[i])
			i++
			continue
		}

		j := i + 1
		isPanel := false
		for ; j < len(lines); j++ {
			trimmed := strings.TrimSpace(lines[j])
			if trimmed == "" {
				continue
			}
			if !strings.HasPrefix(trimmed, "[") && !strings.Contains(trimmed, "=") {
				break
			}
			if strings.Contains(trimmed, "table_panel") {
				isPanel = true
			}
		}
		if !isPanel {
			out = append(out, lines[i])
			i++
			continue
		}

		out = append(out, `{{< itmarket_table type="compare" month="`+month+`" >}}`)
		i = j
	}
	return strings.Join(out, "\n")
}

func followsHeading(out []string) bool {
	for j := len(out) - 1; j >= 0; j-- {
		if strings.TrimSpace(out[j]) != "" {
			return isHeading(out[j])
		}
	}
	return false
}

func isHeading(line string) bool {
	return headingLine.MatchString(strings.TrimSpace(line))
}

// isBlockLine reports whether line starts its own markdown block and must
// not be joined to the previous line.
func isBlockLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return false
	case isHeading(trimmed), listItem.MatchString(trimmed):
		return true
	}
	for _, prefix := range []string{"{{<", "[", ">", "```"} {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

func standsAlone(line string) bool {
	return isBlockLine(line) || linkOnlyLine.MatchString(line)
}

// mergeWrappedLines joins soft-wrapped paragraph lines with a single
// space. A line ending in two spaces keeps its hard break.
func mergeWrappedLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	inCode := false

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			inCode = !inCode
			out = append(out, line)
			continue
		}
		if inCode || trimmed == "" || standsAlone(line) {
			out = append(out, line)
			continue
		}

		for i+1 < len(lines) {
			next := lines[i+1]
			if strings.TrimSpace(next) == "" || standsAlone(next) || strings.HasSuffix(line, "  ") {
				break
			}
			line = strings.TrimSpace(line) + " " + strings.TrimSpace(next)
			i++
		}
		out = append(out, line)
	}
	return out
}

func normalizeLinks(body string) string {
	return linkTarget.ReplaceAllStringFunc(body, func(match string) string {
		href := strings.TrimSpace(linkTarget.FindStringSubmatch(match)[1])
		lower := strings.ToLower(href)
		switch {
		case href == "", strings.HasPrefix(lower, "mailto:"):
			return match
		case lower == "https://dietechrecruiter.de/jobs", lower == "https://dietechrecruiter.de/jobs/":
			return "](" + jobBoardURL + ")"
		case bareEmail.MatchString(href):
			return "](mailto:" + href + ")"
		}
		return match
	})
}

func pinShortcodeMonth(body, month string) string {
	body = chartShortcode.ReplaceAllStringFunc(body, func(match string) string {
		attrs := chartShortcode.FindStringSubmatch(match)[1]
		return "{{< chart_itmarket_all" + setAttr(attrs, toAttr, `to="`+month+`"`) + " >}}"
	})
	return tableShortcode.ReplaceAllStringFunc(body, func(match string) string {
		attrs := tableShortcode.FindStringSubmatch(match)[1]
		if !compareAttr.MatchString(attrs) {
			return match
		}
		return "{{< itmarket_table" + setAttr(attrs, monthAttr, `month="`+month+`"`) + " >}}"
	})
}

// setAttr replaces the first attribute matched by re, or appends attr.
// The result keeps a leading space and no trailing one.
func setAttr(attrs string, re *regexp.Regexp, attr string) string {
	attrs = strings.TrimRight(attrs, " \t")
	if loc := re.FindStringIndex(attrs); loc != nil {
		return attrs[:loc[0]] + attr + attrs[loc[1]:]
	}
	return attrs + " " + attr
}
