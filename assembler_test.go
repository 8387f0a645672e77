package itmarket

// Notes:
// - Render runs the real goldmark, bluemonday and x/net/html stages; only
//   the asset loader is faked where a test needs a broken template
// - The absolutizer re-serializes attributes, so data-json is asserted by
//   attribute name rather than exact escaping

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-itmarket/internal/assets"
	"github.com/alnah/go-itmarket/internal/dataset"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDataset() dataset.Dataset {
	return dataset.Dataset{
		ITAggregate: []dataset.AggregateEntry{
			{Month: "2024-11", Label: "November 2024", Unemployed: 50, Seeking: 100},
			{Month: "2025-10", Label: "Oktober 2025", Unemployed: 52, Seeking: 110},
			{Month: "2025-11", Label: "November 2025", Unemployed: 55, Seeking: 120},
		},
		ITJobs: []dataset.JobsEntry{
			{Month: "2024-11", Label: "November 2024", ITJobs: 4000},
			{Month: "2025-11", Label: "November 2025", ITJobs: 3000},
		},
		Germany: []dataset.NationalEntry{
			{Month: "2024-11", Label: "11/24", Unemployed: 2800000, Seeking: 5400000, Jobs: 700000},
			{Month: "2025-11", Label: "11/25", Unemployed: 2900000, Seeking: 5500000, Jobs: 630000},
		},
	}
}

func newTestAssembler(t *testing.T, opts ...Option) *Assembler {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	a, err := NewAssembler(testDataset(), opts...)
	if err != nil {
		t.Fatalf("NewAssembler() error = %v", err)
	}
	return a
}

const article = `+++
title = "IT-Arbeitsmarkt November 2025"
date = "2025-12-02T08:00:00+01:00"
author = "max-mustermann"
tags = ["Arbeitsmarkt"]
categories = ["Report"]
summary = "Die Zahlen des Monats."
lesedauer = "5 Min."
image = "/Bilder/hero.webp"
+++

## Überblick

Text mit [Jobs](/jobs) und ![Grafik](/Bilder/x.webp).

<script>alert('xss')</script>

[chart]
type = "table_panel"
[table]
title = "Arbeitslose nach Beruf"
columns = ["Status", "11/25", "11/24", "Absolut", "%"]
[[table.rows]]
index = 1
status = "Softwareentwicklung"
v_1125 = 12000
v_1124 = 10000
abs = 2000
pct = 20

{{< chart_itmarket_all last="12" >}}

{{< foo_widget size="xl" >}}
`

// brokenLoader serves an unparsable preview template.
type brokenLoader struct{}

func (brokenLoader) LoadStyle(string) (string, error)    { return "", nil }
func (brokenLoader) LoadTemplate(string) (string, error) { return "{{.Content", nil }

// missingLoader has no assets at all.
type missingLoader struct{}

func (missingLoader) LoadStyle(name string) (string, error) {
	return "", assets.ErrStyleNotFound
}

func (missingLoader) LoadTemplate(name string) (string, error) {
	return "", assets.ErrTemplateNotFound
}

// ---------------------------------------------------------------------------
// TestRender - Pipeline
// ---------------------------------------------------------------------------

func TestRender_Pipeline(t *testing.T) {
	t.Parallel()

	res, err := newTestAssembler(t).Render(context.Background(), Document{Source: article})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if res.Panels != 1 {
		t.Errorf("Panels = %d, want 1", res.Panels)
	}
	if res.Header.Title != "IT-Arbeitsmarkt November 2025" {
		t.Errorf("Header.Title = %q", res.Header.Title)
	}

	bodyWants := []string{
		"Überblick</h2>",
		`class="table-panel"`,
		"Softwareentwicklung",
		`data-cid="preview-0"`,
		`data-width="960"`,
		`data-height="540"`,
		`data-range="all"`,
		`data-animation="disabled"`,
		`data-type="all"`,
		`data-json=`,
		"<svg",
		"viewBox=",
		"Shortcode: foo_widget",
		`href="https://dietechrecruiter.de/jobs"`,
		`src="https://dietechrecruiter.de/Bilder/x.webp"`,
	}
	for _, want := range bodyWants {
		if !strings.Contains(res.Body, want) {
			t.Errorf("Body missing %q", want)
		}
	}

	for _, leak := range []string{"alert(", "<script", "[chart]", "TABLE_PANEL_BLOCK", "{{<", "+++"} {
		if strings.Contains(res.Body, leak) {
			t.Errorf("Body should not contain %q", leak)
		}
	}
}

func TestRender_Page(t *testing.T) {
	t.Parallel()

	res, err := newTestAssembler(t).Render(context.Background(), Document{Source: article})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	for _, want := range []string{
		"<!doctype html>",
		"<title>IT-Arbeitsmarkt November 2025</title>",
		"2. Dezember 2025",
		`<span class="tag-primary mt-2">Arbeitsmarkt</span>`,
		`<span class="tag-secondary mt-2">Report</span>`,
		"Die Zahlen des Monats.",
		"Max Mustermann",
		"5 Min.",
		`src="https://dietechrecruiter.de/Bilder/hero.webp"`,
		`<link href="https://dietechrecruiter.de/cw-style.css" rel="stylesheet" />`,
		`<script src="https://dietechrecruiter.de/itmarket-charts.js"></script>`,
		".preview-table",
		res.Body,
	} {
		if !strings.Contains(res.HTML, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
	if strings.Count(res.HTML, "<script") != 1 {
		t.Errorf("HTML should hold only the chart script, got %d script tags", strings.Count(res.HTML, "<script"))
	}
}

func TestRender_NoBaseURL(t *testing.T) {
	t.Parallel()

	a := newTestAssembler(t, WithBaseURL(""), WithChartScript(""), WithStylesheet(""))
	res, err := a.Render(context.Background(), Document{Source: "![x](/Bilder/x.webp)"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(res.Body, `src="/Bilder/x.webp"`) {
		t.Errorf("root-relative src should stay relative: %s", res.Body)
	}
	if strings.Contains(res.HTML, "<script") || strings.Contains(res.HTML, "<link") {
		t.Error("empty script and stylesheet URLs should omit their tags")
	}
	if res.Header.Title != "" {
		t.Errorf("source without header should have zero header, got %+v", res.Header)
	}
}

func TestRender_Animation(t *testing.T) {
	t.Parallel()

	res, err := newTestAssembler(t, WithAnimation(true)).Render(context.Background(),
		Document{Source: `{{< chart_itmarket_all >}}`})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(res.Body, `data-animation="enabled"`) {
		t.Error("chart embed should start animated")
	}
	if !strings.Contains(res.Body, "<animate") {
		t.Error("animated chart should keep its SMIL elements")
	}
}

func TestRender_ChartStructureSurvives(t *testing.T) {
	t.Parallel()

	res, err := newTestAssembler(t, WithAnimation(true)).Render(context.Background(),
		Document{Source: `{{< chart_itmarket_all >}}`})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	// Sanitizer and absolutizer differ in name casing.
	body := strings.ToLower(res.Body)

	for _, want := range []string{
		"<defs>",
		"<lineargradient",
		`<filter id="glow-preview-0"><fegaussianblur`,
		`<femerge><femergenode in="coloredblur"`,
		`in="sourcegraphic"`,
		"</femerge></filter>",
		`filter="url(#glow-preview-0)"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("chart svg lost %q", want)
		}
	}

	// Three layers, each drawn in with its own animation; nine markers,
	// each with a tooltip.
	if got := strings.Count(body, `attributename="stroke-dashoffset"`); got != 3 {
		t.Errorf("line animations = %d, want 3", got)
	}
	if got := strings.Count(body, "<title>"); got < 9 {
		t.Errorf("marker tooltips = %d, want at least 9", got)
	}
}

// ---------------------------------------------------------------------------
// TestRender - Normalization and Patches
// ---------------------------------------------------------------------------

func TestRender_Normalize(t *testing.T) {
	t.Parallel()

	src := "+++\ntitle = \"x\"\ndate = \"2025-11-28\"\n+++\n\n{{< itmarket_table type=\"compare\" >}}\n"

	tests := []struct {
		name      string
		normalize bool
		month     string
		want      []string
	}{
		{
			name:      "month from header date",
			normalize: true,
			want:      []string{"<th>11/25</th>", "<th>11/24</th>", "Arbeitsuchende - IT", "JOBS - Deutschland"},
		},
		{
			name:      "explicit month wins",
			normalize: true,
			month:     "2025-10",
			want:      []string{"Arbeitsuchende - IT", "<th>10/25</th>"},
		},
		{
			name: "disabled leaves month missing",
			want: []string{"Tabelle: Monat fehlt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := newTestAssembler(t, WithNormalize(tt.normalize))
			res, err := a.Render(context.Background(), Document{Source: src, Month: tt.month})
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(res.Body, want) {
					t.Errorf("Body missing %q:\n%s", want, res.Body)
				}
			}
		})
	}
}

func TestRender_PatchDoesNotLeak(t *testing.T) {
	t.Parallel()

	a := newTestAssembler(t)
	src := `{{< itmarket_table type="it_jobs" >}}`
	patch := &dataset.Dataset{
		ITJobs: []dataset.JobsEntry{{Month: "2025-12", Label: "Dezember 2025", ITJobs: 2500}},
	}

	patched, err := a.Render(context.Background(), Document{Source: src, Patch: patch})
	if err != nil {
		t.Fatalf("Render(patch) error = %v", err)
	}
	if !strings.Contains(patched.Body, "Dezember 2025") {
		t.Error("patched render should list the patch month")
	}

	plain, err := a.Render(context.Background(), Document{Source: src})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(plain.Body, "Dezember 2025") {
		t.Error("patch must not change the assembler's dataset")
	}
}

// ---------------------------------------------------------------------------
// TestRender - Errors
// ---------------------------------------------------------------------------

func TestRender_Errors(t *testing.T) {
	t.Parallel()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		ctx     context.Context
		source  string
		wantErr error
	}{
		{name: "empty source", ctx: context.Background(), source: "  \n", wantErr: ErrEmptyDocument},
		{name: "broken header", ctx: context.Background(), source: "+++\ntitle = \n+++\nText", wantErr: ErrInvalidFrontmatter},
		{name: "cancelled", ctx: cancelled, source: "Text", wantErr: context.Canceled},
	}

	a := newTestAssembler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := a.Render(tt.ctx, Document{Source: tt.source})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Render() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewAssembler_TemplateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		loader assets.AssetLoader
	}{
		{name: "unparsable template", loader: brokenLoader{}},
		{name: "missing assets", loader: missingLoader{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewAssembler(dataset.Dataset{}, WithAssetLoader(tt.loader))
			if !errors.Is(err, ErrTemplateLoad) {
				t.Errorf("NewAssembler() error = %v, want ErrTemplateLoad", err)
			}
		})
	}
}

func TestRender_RecoversPanic(t *testing.T) {
	t.Parallel()

	a := newTestAssembler(t)
	a.markdown = panicRenderer{}

	_, err := a.Render(context.Background(), Document{Source: "Text"})
	if !errors.Is(err, ErrInternal) {
		t.Errorf("Render() error = %v, want ErrInternal", err)
	}
}

type panicRenderer struct{}

func (panicRenderer) ToHTML(context.Context, string) (string, error) {
	panic("boom")
}

// ---------------------------------------------------------------------------
// TestAuthorName
// ---------------------------------------------------------------------------

func TestAuthorName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"max-mustermann", "Max Mustermann"},
		{"Björn Richter", "Björn Richter"},
		{"öykü-demir", "Öykü Demir"},
		{"", ""},
		{"a--b", "A  B"},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, AuthorName(tt.in)); diff != "" {
			t.Errorf("AuthorName(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}
