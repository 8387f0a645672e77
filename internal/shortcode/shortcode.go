// Package shortcode expands inline {{< name attr="value" >}} tokens in
// rendered article HTML into spacers, chart embeds and data tables.
//
// Every supported token kind is a variant of the sealed Shortcode
// interface. Parse maps a Token to its variant, Engine.Expand renders it
// and Format writes it back as canonical token text.
package shortcode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alnah/go-itmarket/internal/chart"
	"github.com/alnah/go-itmarket/internal/dataset"
)

// Token names.
const (
	NameSpace = "space"
	NameChart = "chart_itmarket_all"
	NameTable = "itmarket_table"
)

// compareType selects the single-month comparison table.
const compareType = "compare"

// Shortcode is one of Space, Chart, RangeTable, CompareTable or Unknown.
type Shortcode interface {
	shortcode()
}

// Space is a fixed-height spacer.
type Space struct{}

// Chart embeds a time-series chart of one aggregate and one job series.
type Chart struct {
	AggKey  string
	JobsKey string
	Range   dataset.Range
	Width   int
	Height  int
	Title   string
}

// RangeTable lists one series, most recent month first.
type RangeTable struct {
	Series string
	Range  dataset.Range
}

// CompareTable compares a month with the same month one year earlier.
type CompareTable struct {
	Month string
}

// Unknown is any token this package does not render.
type Unknown struct {
	Name     string
	RawAttrs string
}

func (Space) shortcode()        {}
func (Chart) shortcode()        {}
func (RangeTable) shortcode()   {}
func (CompareTable) shortcode() {}
func (Unknown) shortcode()      {}

// Parse classifies a token. Attribute values are interpreted here; bad
// numbers fall back to defaults instead of failing.
func Parse(tok Token) Shortcode {
	attrs := ParseAttrs(tok.RawAttrs)
	switch tok.Name {
	case NameSpace:
		return Space{}
	case NameChart:
		return Chart{
			AggKey:  valueOr(attrs["aggKey"], dataset.ITAggregate),
			JobsKey: valueOr(attrs["jobsKey"], dataset.ITJobs),
			Range:   rangeOf(attrs),
			Width:   positiveOr(attrs["width"], chart.DefaultWidth),
			Height:  positiveOr(attrs["height"], chart.DefaultHeight),
			Title:   attrs["title"],
		}
	case NameTable:
		typ := valueOr(attrs["type"], dataset.ITAggregate)
		if typ == compareType {
			return CompareTable{Month: attrs["month"]}
		}
		return RangeTable{Series: typ, Range: rangeOf(attrs)}
	default:
		return Unknown{Name: tok.Name, RawAttrs: tok.RawAttrs}
	}
}

// Format returns the canonical token text for sc.
func Format(sc Shortcode) string {
	switch v := sc.(type) {
	case Space:
		return "{{< space >}}"
	case Chart:
		attrs := []string{}
		attrs = appendRange(attrs, v.Range)
		attrs = append(attrs,
			attr("width", strconv.Itoa(sizeOr(v.Width, chart.DefaultWidth))),
			attr("height", strconv.Itoa(sizeOr(v.Height, chart.DefaultHeight))),
		)
		if v.Title != "" {
			attrs = append(attrs, attr("title", v.Title))
		}
		if v.AggKey != "" && v.AggKey != dataset.ITAggregate {
			attrs = append(attrs, attr("aggKey", v.AggKey))
		}
		if v.JobsKey != "" && v.JobsKey != dataset.ITJobs {
			attrs = append(attrs, attr("jobsKey", v.JobsKey))
		}
		return token(NameChart, attrs)
	case RangeTable:
		attrs := []string{attr("type", valueOr(v.Series, dataset.ITAggregate))}
		return token(NameTable, appendRange(attrs, v.Range))
	case CompareTable:
		return token(NameTable, []string{attr("type", compareType), attr("month", v.Month)})
	case Unknown:
		return "{{< " + strings.TrimSpace(v.Name+" "+strings.TrimSpace(v.RawAttrs)) + " >}}"
	default:
		panic(fmt.Sprintf("shortcode: unhandled variant %T", sc))
	}
}

// Canonicalize rewrites every literal shortcode token in text to its
// Format form. Escaped tokens and the text between tokens are kept.
func Canonicalize(text string) string {
	var b strings.Builder
	last := 0
	for _, tok := range Scan(text) {
		if !strings.HasPrefix(text[skipSpace(text, tok.Start+2):], "<") {
			continue
		}
		b.WriteString(text[last:tok.Start])
		b.WriteString(Format(Parse(tok)))
		last = tok.End
	}
	b.WriteString(text[last:])
	return b.String()
}

func token(name string, attrs []string) string {
	return "{{< " + name + " " + strings.Join(attrs, " ") + " >}}"
}

func attr(key, value string) string {
	return key + `="` + strings.ReplaceAll(value, `"`, "&quot;") + `"`
}

// appendRange keeps every bound that was given, so a lone "to" pinned by
// normalization survives formatting.
func appendRange(attrs []string, r dataset.Range) []string {
	if r.From != "" {
		attrs = append(attrs, attr("from", r.From))
	}
	if r.To != "" {
		attrs = append(attrs, attr("to", r.To))
	}
	if r.Last > 0 {
		attrs = append(attrs, attr("last", strconv.Itoa(r.Last)))
	}
	return attrs
}

func rangeOf(attrs map[string]string) dataset.Range {
	last, err := strconv.Atoi(strings.TrimSpace(attrs["last"]))
	if err != nil || last < 0 {
		last = 0
	}
	return dataset.Range{From: attrs["from"], To: attrs["to"], Last: last}
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func positiveOr(v string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return sizeOr(n, fallback)
}

func sizeOr(n, fallback int) int {
	if n <= 0 {
		return fallback
	}
	return n
}
