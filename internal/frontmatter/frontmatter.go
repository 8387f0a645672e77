// Package frontmatter reads and writes the +++-delimited TOML header of an
// article.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/alnah/go-itmarket/internal/dateutil"
)

// Delimiter opens and closes the header.
const Delimiter = "+++"

// Sentinel errors.
var (
	ErrFrontmatterParse     = errors.New("frontmatter parse failed")
	ErrFrontmatterSerialize = errors.New("frontmatter serialization failed")
)

// FAQEntry is one question shown below the article.
type FAQEntry struct {
	Question string `toml:"question"`
	Answer   string `toml:"answer"`
}

// Date is an ISO-8601 timestamp kept as written. It accepts both TOML
// strings and TOML datetimes and is always written as a string.
type Date string

// UnmarshalTOML implements toml.Unmarshaler.
func (d *Date) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		*d = Date(v)
	case time.Time:
		*d = Date(v.Format(time.RFC3339))
	default:
		return fmt.Errorf("date: unsupported TOML type %T", v)
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d), nil
}

// Frontmatter is the article header.
type Frontmatter struct {
	Title         string     `toml:"title"`
	Description   string     `toml:"description"`
	Date          Date       `toml:"date"`
	DateModified  Date       `toml:"dateModified,omitempty"`
	Draft         bool       `toml:"draft"`
	Image         string     `toml:"image"`
	ImageAlt      string     `toml:"imageAlt"`
	Slug          string     `toml:"slug"`
	Author        string     `toml:"author"`
	Categories    []string   `toml:"categories"`
	Tags          []string   `toml:"tags"`
	JobSnippedTag string     `toml:"jobSnippedTag"`
	Lesedauer     string     `toml:"lesedauer"`
	Zielgruppe    []string   `toml:"zielgruppe"`
	Keywords      []string   `toml:"Keywords"`
	Summary       string     `toml:"summary"`
	FAQ           []FAQEntry `toml:"faq"`
}

// LongDate returns the publication date as "2. Dezember 2025".
func (f Frontmatter) LongDate() string {
	return dateutil.FormatLongDate(string(f.Date))
}

// Month returns the "YYYY-MM" prefix of the publication date, or "" when
// the date is too short.
func (f Frontmatter) Month() string {
	date := string(f.Date)
	if len(date) < len(dateutil.MonthLayout) {
		return ""
	}
	return date[:len(dateutil.MonthLayout)]
}

// Split separates a leading header from the body. ok is false when source
// does not start with a delimiter line or the header is never closed; the
// whole source is then the body.
func Split(source string) (header, body string, ok bool) {
	text := strings.TrimPrefix(strings.ReplaceAll(source, "\r\n", "\n"), "\uFEFF")
	lines := strings.Split(strings.TrimLeft(text, " \t\n"), "\n")
	if strings.TrimSpace(lines[0]) != Delimiter {
		return "", source, false
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == Delimiter {
			header = strings.Join(lines[1:i], "\n")
			body = strings.TrimLeft(strings.Join(lines[i+1:], "\n"), "\n")
			return header, body, true
		}
	}
	return "", source, false
}

// Parse decodes a header. block may include the delimiter lines. Unknown
// keys are ignored.
func Parse(block string) (Frontmatter, error) {
	text := strings.TrimSpace(block)
	text = strings.TrimPrefix(text, Delimiter)
	text = strings.TrimSuffix(text, Delimiter)

	var fm Frontmatter
	if _, err := toml.Decode(text, &fm); err != nil {
		return Frontmatter{}, fmt.Errorf("%w: %v", ErrFrontmatterParse, err)
	}
	return fm, nil
}

// Serialize encodes f between delimiter lines. The summary and FAQ texts
// are collapsed to single lines.
func Serialize(f Frontmatter) (string, error) {
	f.Summary = singleLine(f.Summary)
	faq := make([]FAQEntry, len(f.FAQ))
	for i, e := range f.FAQ {
		faq[i] = FAQEntry{Question: singleLine(e.Question), Answer: singleLine(e.Answer)}
	}
	f.FAQ = faq

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(f); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFrontmatterSerialize, err)
	}
	return Delimiter + "\n" + strings.TrimSpace(buf.String()) + "\n\n" + Delimiter, nil
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
