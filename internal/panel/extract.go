// Package panel finds "[chart]" configuration blocks in article markdown,
// swaps them for placeholder lines before markdown rendering and turns the
// table-panel kind into HTML comparison tables afterwards.
//
// A block looks like this:
//
//	[chart]
//	type = "table_panel"
//	[table]
//	title = "Arbeitslose nach Beruf"
//	columns = ["Status", "11/25", "11/24", "Absolut", "%"]
//	[[table.rows]]
//	index = 1
//	status = "Softwareentwicklung"
//	v_1125 = 12000
//	v_1124 = 10000
//	abs = 2000
//	pct = 20.0
//
// Only "[chart]", "[table]", "[[table.rows]]" and the type, title, footer
// and columns keys carry meaning. Other sections are accepted and skipped.
package panel

import (
	"math"
	"strconv"
	"strings"
)

const (
	// Marker opens a configuration block.
	Marker = "[chart]"

	// TablePanelKind identifies blocks this package renders.
	TablePanelKind = "table_panel"

	// PlaceholderPrefix is reserved; article text must not contain it.
	PlaceholderPrefix = "TABLE_PANEL_BLOCK_"
)

// DefaultColumns is used when a block declares no columns.
var DefaultColumns = []string{"Status", "Aktuell", "Vorjahr", "Absolut", "%"}

// Value is a scalar from a key/value line. Quoted values are always text;
// unquoted values are numbers when they parse cleanly.
type Value struct {
	Text  string
	Num   float64
	IsNum bool
}

// String returns the value as written, minus quotes.
func (v Value) String() string {
	if v.IsNum {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.Text
}

// Row is one [[table.rows]] entry.
type Row map[string]Value

// Block is a parsed configuration block.
type Block struct {
	Title   string
	Footer  string
	Columns []string
	Rows    []Row

	// TablePanel is set when the block declared itself a table panel.
	TablePanel bool

	// Source is the original text of the consumed lines.
	Source string
}

// Extraction is the result of Extract. Blocks[n] was replaced by the line
// Placeholder(n) in Markdown.
type Extraction struct {
	Markdown string
	Blocks   []Block
}

// Placeholder returns the reserved token for block n.
func Placeholder(n int) string {
	return PlaceholderPrefix + strconv.Itoa(n)
}

type state int

const (
	scanning state = iota
	inBlock
	inRow
	inIgnoredSection
)

// Extract replaces every table-panel block in markdown with a placeholder
// line. Blocks of other kinds stay in the text untouched. Blank lines that
// trail a block are left in the text so paragraphs stay separated.
func Extract(markdown string) Extraction {
	lines := strings.Split(markdown, "\n")
	out := make([]string, 0, len(lines))
	var blocks []Block

	for i := 0; i < len(lines); {
		if !strings.HasPrefix(strings.TrimSpace(lines[i]), Marker) {
			out = append(out, lines[i])
			i++
			continue
		}

		block, end := parseBlock(lines, i)
		if !block.TablePanel {
			out = append(out, lines[i])
			i++
			continue
		}

		out = append(out, Placeholder(len(blocks)))
		blocks = append(blocks, block)
		i = end
	}

	return Extraction{Markdown: strings.Join(out, "\n"), Blocks: blocks}
}

// parseBlock runs the line state machine from the marker at start and
// returns the block with the index of the first line after it.
func parseBlock(lines []string, start int) (Block, int) {
	var (
		b   Block
		row Row
		st  = scanning
		end = start
	)

	closeRow := func() {
		if row != nil {
			b.Rows = append(b.Rows, row)
			row = nil
		}
	}

	for i := start; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if i > start && !isContinuation(line) {
			break
		}
		if line == "" {
			continue
		}
		end = i + 1

		if strings.HasPrefix(line, "[") {
			closeRowOn := st == inRow
			switch {
			case strings.HasPrefix(line, Marker):
				if strings.Contains(line, TablePanelKind) {
					b.TablePanel = true
				}
				st = inBlock
			case strings.HasPrefix(line, "[[table.rows]]"):
				closeRow()
				row = Row{}
				st = inRow
				continue
			case strings.HasPrefix(line, "[table]"):
				st = inBlock
			default:
				st = inIgnoredSection
			}
			if closeRowOn {
				closeRow()
			}
			continue
		}

		key, val, ok := parseKeyValue(line)
		if !ok {
			continue
		}
		if key == "type" {
			if val.Text == TablePanelKind && !val.IsNum {
				b.TablePanel = true
			}
			continue
		}

		switch st {
		case inRow:
			row[key] = val
		case inBlock:
			switch key {
			case "title":
				b.Title = val.String()
			case "footer":
				b.Footer = val.String()
			case "columns":
				b.Columns = parseStringArray(val.Text)
			}
		case inIgnoredSection, scanning:
		}
	}
	closeRow()

	b.Source = strings.Join(lines[start:end], "\n")
	return b, end
}

// isContinuation reports whether a trimmed line may belong to a block.
func isContinuation(line string) bool {
	return line == "" || strings.HasPrefix(line, "[") || strings.Contains(line, "=")
}

// parseKeyValue splits `key = value`. Keys are ASCII identifiers.
func parseKeyValue(line string) (string, Value, bool) {
	eq := strings.IndexByte(line, '=')
	if eq <= 0 {
		return "", Value{}, false
	}
	key := strings.TrimSpace(line[:eq])
	raw := strings.TrimSpace(line[eq+1:])
	if !isIdentifier(key) || raw == "" {
		return "", Value{}, false
	}
	return key, parseValue(raw), true
}

func parseValue(raw string) Value {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		if s, err := strconv.Unquote(raw); err == nil {
			return Value{Text: s}
		}
		return Value{Text: raw[1 : len(raw)-1]}
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
		return Value{Num: n, IsNum: true}
	}
	return Value{Text: raw}
}

// parseStringArray reads the quoted items of `["a", "b"]`. Items that are
// not quoted are skipped.
func parseStringArray(raw string) []string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "[") || !strings.HasSuffix(raw, "]") {
		return nil
	}
	body := raw[1 : len(raw)-1]

	items := []string{}
	for {
		open := strings.IndexByte(body, '"')
		if open < 0 {
			return items
		}
		rest := body[open+1:]
		closing := strings.IndexByte(rest, '"')
		if closing < 0 {
			return items
		}
		items = append(items, rest[:closing])
		body = rest[closing+1:]
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '_' && (r < '0' || r > '9') && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// ColumnKey derives the row key for a column label by keeping its digits:
// "11/25" becomes "v_1125". Labels without digits have no key.
func ColumnKey(label string) string {
	var digits strings.Builder
	for _, r := range label {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return ""
	}
	return "v_" + digits.String()
}
