package chart

// Notes:
// - Build is tested on the scene graph; SVG tests only check structure that
//   the embed markup and the sanitizer allowlist depend on
// - RenderImage is checked for format handling and a PNG signature, not
//   pixels

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-itmarket/internal/dataset"
)

func jobsData(values ...float64) []Datum {
	data := make([]Datum, len(values))
	for i, v := range values {
		data[i] = Datum{Label: "M" + string(rune('A'+i)), Jobs: v}
	}
	return data
}

func allData(n int) []Datum {
	data := make([]Datum, n)
	for i := range data {
		data[i] = Datum{
			Label:      "M" + string(rune('A'+i)),
			Unemployed: float64(1000 + i*10),
			Seeking:    float64(2000 + i*20),
			Jobs:       float64(500 + i*5),
		}
	}
	return data
}

// ---------------------------------------------------------------------------
// TestComputeDomain - Padding and degenerate input
// ---------------------------------------------------------------------------

func TestComputeDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values [][]float64
		want   Domain
	}{
		{"padding", [][]float64{{10, 20, 30}}, Domain{Min: 8, Max: 32}},
		{"global across series", [][]float64{{10, 20}, {0, 100}}, Domain{Min: -10, Max: 110}},
		{"flat series widened", [][]float64{{5, 5, 5}}, Domain{Min: 4, Max: 6}},
		{"no values", nil, Domain{Min: 0, Max: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ComputeDomain(tt.values...)
			if math.Abs(got.Min-tt.want.Min) > 1e-9 || math.Abs(got.Max-tt.want.Max) > 1e-9 {
				t.Errorf("ComputeDomain() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBuild_JobsDomain(t *testing.T) {
	t.Parallel()

	s := Build(Options{Mode: ModeJobs}, jobsData(10, 20, 30))

	if !(s.Domain.Min < 10) || !(s.Domain.Max > 30) {
		t.Errorf("domain %+v does not strictly contain [10, 30]", s.Domain)
	}
	if got, want := s.Domain.Span(), 1.2*(30-10); math.Abs(got-want) > 1e-9 {
		t.Errorf("span = %v, want %v", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestBuild - Scene geometry, layers and timing
// ---------------------------------------------------------------------------

func TestBuild_TooFewPoints(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1} {
		s := Build(Options{Mode: ModeAll}, allData(n))
		if !s.Empty() || len(s.Legend) != 0 || len(s.Grid) != 0 || len(s.XLabels) != 0 {
			t.Errorf("Build with %d points = %+v, want empty scene", n, s)
		}
	}
}

func TestBuild_Geometry(t *testing.T) {
	t.Parallel()

	s := Build(Options{ID: "c1", Width: 960, Height: 540, Mode: ModeJobs}, jobsData(10, 20, 30))

	if got := s.PlotWidth(); got != 840 {
		t.Errorf("PlotWidth() = %v, want 840", got)
	}
	if got := s.PlotHeight(); got != 400 {
		t.Errorf("PlotHeight() = %v, want 400", got)
	}

	path := s.Layers[0].Path
	if path[0].X != 80 || path[2].X != 920 {
		t.Errorf("x range = [%v, %v], want [80, 920]", path[0].X, path[2].X)
	}
	if !(path[2].Y < path[1].Y && path[1].Y < path[0].Y) {
		t.Errorf("larger values must be higher up: %+v", path)
	}
	if want := 60 + 400 - (30-8.0)/24*400; math.Abs(path[2].Y-want) > 1e-9 {
		t.Errorf("y(30) = %v, want %v", path[2].Y, want)
	}

	if len(s.Grid) != 6 {
		t.Fatalf("len(Grid) = %d, want 6", len(s.Grid))
	}
	if s.Grid[0].Label != "32" || s.Grid[5].Label != "8" {
		t.Errorf("grid labels = %q..%q, want 32..8", s.Grid[0].Label, s.Grid[5].Label)
	}
	for i, g := range s.Grid {
		if g.Strong != (i == 5) {
			t.Errorf("grid[%d].Strong = %v", i, g.Strong)
		}
	}
	if s.Defs.Glow != "glow-c1" || s.Layers[0].GradientID != "jobsGradient-c1" {
		t.Errorf("defs not scoped to chart id: %+v", s.Defs)
	}
}

func TestBuild_GroupedLabels(t *testing.T) {
	t.Parallel()

	data := []Datum{{Label: "A", Jobs: 1000}, {Label: "B", Jobs: 25000}}
	s := Build(Options{Mode: ModeJobs}, data)

	if got := s.Layers[0].Markers[1].Tooltip; got != "B: 25.000" {
		t.Errorf("tooltip = %q, want %q", got, "B: 25.000")
	}
}

func TestBuild_XLabelStride(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    int
		want []int
	}{
		{2, []int{0, 1}},
		{8, []int{0, 1, 2, 3, 4, 5, 6, 7}},
		{12, []int{0, 2, 4, 6, 8, 10, 11}},
		{17, []int{0, 3, 6, 9, 12, 15, 16}},
	}

	for _, tt := range tests {
		s := Build(Options{Mode: ModeAll}, allData(tt.n))
		var got []int
		for _, l := range s.XLabels {
			got = append(got, l.Index)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("n=%d x labels mismatch (-want +got):\n%s", tt.n, diff)
		}
	}
}

func TestBuild_LayersAndTiming(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode        Mode
		kinds       []LayerKind
		lineDelays  []time.Duration
		firstMarker []time.Duration
		legend      []string
	}{
		{
			mode:        ModeJobs,
			kinds:       []LayerKind{LayerJobs},
			lineDelays:  []time.Duration{0},
			firstMarker: []time.Duration{0},
			legend:      []string{"IT-Jobs"},
		},
		{
			mode:        ModePair,
			kinds:       []LayerKind{LayerPrimary, LayerSecondary},
			lineDelays:  []time.Duration{0, 200 * time.Millisecond},
			firstMarker: []time.Duration{100 * time.Millisecond, 300 * time.Millisecond},
			legend:      []string{"Arbeitslose", "Arbeitssuchende"},
		},
		{
			mode:        ModeAll,
			kinds:       []LayerKind{LayerPrimary, LayerSecondary, LayerJobs},
			lineDelays:  []time.Duration{0, 200 * time.Millisecond, 400 * time.Millisecond},
			firstMarker: []time.Duration{100 * time.Millisecond, 300 * time.Millisecond, 500 * time.Millisecond},
			legend:      []string{"Arbeitslose", "Arbeitssuchende", "IT-Jobs"},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			t.Parallel()

			s := Build(Options{Mode: tt.mode, Animated: true}, allData(4))

			var kinds []LayerKind
			var lineDelays, firstMarker []time.Duration
			for _, l := range s.Layers {
				kinds = append(kinds, l.Kind)
				lineDelays = append(lineDelays, l.LineDelay)
				firstMarker = append(firstMarker, l.Markers[0].Delay)

				if l.LineDuration != 1500*time.Millisecond {
					t.Errorf("line duration = %v", l.LineDuration)
				}
				if got := l.Markers[3].Delay - l.Markers[0].Delay; got != 300*time.Millisecond {
					t.Errorf("per-point stagger over 3 points = %v, want 300ms", got)
				}
				if l.Markers[0].Radius != 6 || l.Markers[0].HoverRadius != 8 {
					t.Errorf("marker radii = %v/%v", l.Markers[0].Radius, l.Markers[0].HoverRadius)
				}
			}
			var legend []string
			for _, item := range s.Legend {
				legend = append(legend, item.Text)
			}

			if diff := cmp.Diff(tt.kinds, kinds); diff != "" {
				t.Errorf("layer order (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.lineDelays, lineDelays); diff != "" {
				t.Errorf("line delays (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.firstMarker, firstMarker); diff != "" {
				t.Errorf("marker delays (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.legend, legend); diff != "" {
				t.Errorf("legend (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuild_Fresh(t *testing.T) {
	t.Parallel()

	data := allData(5)
	a := Build(Options{Mode: ModeAll, Animated: true}, data)
	b := Build(Options{Mode: ModeAll, Animated: true}, data)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("Build is not deterministic (-a +b):\n%s", diff)
	}

	c := Build(Options{Mode: ModeAll, Animated: true}, data)
	c.Layers[0].Markers[0].Label = "changed"
	if a.Layers[0].Markers[0].Label == "changed" {
		t.Error("scenes share marker storage")
	}
}

// ---------------------------------------------------------------------------
// TestHitTest - Hover targets
// ---------------------------------------------------------------------------

func TestHitTest(t *testing.T) {
	t.Parallel()

	s := Build(Options{Mode: ModeJobs}, jobsData(10, 20, 30))
	m := s.Layers[0].Markers[1]

	got, ok := s.HitTest(m.X+5, m.Y)
	if !ok || got.Label != m.Label {
		t.Errorf("HitTest near marker = %+v, %v", got, ok)
	}
	if _, ok := s.HitTest(m.X+20, m.Y+20); ok {
		t.Error("HitTest far from markers reported a hit")
	}
	if _, ok := (Scene{}).HitTest(0, 0); ok {
		t.Error("empty scene reported a hit")
	}
}

// ---------------------------------------------------------------------------
// TestPayload / TestSeries - Embed data
// ---------------------------------------------------------------------------

func TestNewPayload_JoinDefaultsToZero(t *testing.T) {
	t.Parallel()

	p := NewPayload(
		[]dataset.AggregateEntry{
			{Month: "2025-01", Label: "Jan 25", Unemployed: 1, Seeking: 2},
			{Month: "2025-02", Label: "Feb 25", Unemployed: 3, Seeking: 4},
		},
		[]dataset.JobsEntry{{Month: "2025-02", Label: "Feb 25", ITJobs: 7}},
	)

	if p.All[0].ITJobs != 0 || p.All[1].ITJobs != 7 {
		t.Errorf("joined it_jobs = %d, %d; want 0, 7", p.All[0].ITJobs, p.All[1].ITJobs)
	}

	raw, err := json.Marshal(NewPayload(nil, nil))
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"aggregate":[],"jobs":[],"all":[]}` {
		t.Errorf("empty payload JSON = %s", raw)
	}
}

func TestSeries(t *testing.T) {
	t.Parallel()

	p := NewPayload(
		[]dataset.AggregateEntry{
			{Month: "2025-01", Label: "Jan", Unemployed: 1, Seeking: 2},
			{Month: "2025-02", Unemployed: 3, Seeking: 4},
			{Month: "2025-03", Label: "Mar", Unemployed: 5, Seeking: 6},
		},
		[]dataset.JobsEntry{{Month: "2025-03", Label: "Mar", ITJobs: 9}},
	)

	if got := Series(p, ModeJobs, "all"); len(got) != 1 || got[0].Jobs != 9 {
		t.Errorf("jobs series = %+v", got)
	}
	pair := Series(p, ModePair, "")
	if len(pair) != 3 || pair[1].Label != "2025-02" {
		t.Errorf("pair series = %+v (missing label falls back to month)", pair)
	}
	if got := Series(p, ModeAll, "2"); len(got) != 2 || got[0].Unemployed != 3 || got[1].Jobs != 9 {
		t.Errorf("last 2 of all = %+v", got)
	}
	if got := Series(p, ModeAll, "bogus"); len(got) != 3 {
		t.Errorf("unparsable range kept %d entries, want 3", len(got))
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := map[string]Mode{
		"jobs":      ModeJobs,
		"aggregate": ModePair,
		"Pair":      ModePair,
		"all":       ModeAll,
		"":          ModeAll,
		"pie":       ModeAll,
	}
	for in, want := range tests {
		if got := ParseMode(in); got != want {
			t.Errorf("ParseMode(%q) = %q, want %q", in, got, want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRenderSVG - SVG adapter
// ---------------------------------------------------------------------------

func TestRenderSVG(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := Build(Options{ID: "preview-0", Mode: ModeAll, Animated: true}, allData(3))
	if err := RenderSVG(&buf, s); err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`id="modernChart-preview-0"`,
		`viewBox="0 0 960 540"`,
		`<linearGradient id="primaryGradient-preview-0"`,
		`<filter id="glow-preview-0">`,
		`stroke="url(#jobsGradient-preview-0)"`,
		`attributeName="stroke-dashoffset"`,
		`begin="0.4s"`,
		`attributeName="opacity"`,
		`begin="mouseover"`,
		`data-label="MA"`,
		`<title>MA: 1.000</title>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderSVG() missing %q", want)
		}
	}
	if got := strings.Count(out, "<circle"); got != 9 {
		t.Errorf("circles = %d, want 9", got)
	}
}

func TestRenderSVG_Static(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := RenderSVG(&buf, Build(Options{Mode: ModePair}, allData(3))); err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	out := buf.String()

	if strings.Contains(out, "<animate") {
		t.Error("static chart contains <animate>")
	}
	if !strings.Contains(out, `r="6"`) {
		t.Error("static markers should have r=6")
	}
}

func TestRenderSVG_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := RenderSVG(&buf, Build(Options{ID: "x"}, allData(1))); err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	out := buf.String()

	if strings.Contains(out, "<path") || strings.Contains(out, "<defs>") {
		t.Errorf("empty scene rendered content:\n%s", out)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "</svg>") {
		t.Errorf("empty scene not a closed svg:\n%s", out)
	}

	buf.Reset()
	if err := RenderLegend(&buf, Build(Options{}, nil)); err != nil {
		t.Fatalf("RenderLegend() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("empty legend = %q", buf.String())
	}
}

func TestRenderLegend(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := RenderLegend(&buf, Build(Options{Mode: ModeJobs}, allData(2))); err != nil {
		t.Fatalf("RenderLegend() error = %v", err)
	}
	want := `<div class="legend-item"><div class="legend-color grad-jobs"></div><span>IT-Jobs</span></div>`
	if buf.String() != want {
		t.Errorf("RenderLegend() = %q, want %q", buf.String(), want)
	}
}

// ---------------------------------------------------------------------------
// TestRenderImage - gonum/plot export
// ---------------------------------------------------------------------------

func TestRenderImage(t *testing.T) {
	t.Parallel()

	s := Build(Options{Mode: ModeAll, Width: 480, Height: 270}, allData(6))

	var png bytes.Buffer
	if err := RenderImage(&png, s, "png"); err != nil {
		t.Fatalf("RenderImage(png) error = %v", err)
	}
	if !bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")) {
		t.Error("png output lacks PNG signature")
	}

	var svg bytes.Buffer
	if err := RenderImage(&svg, s, "SVG"); err != nil {
		t.Fatalf("RenderImage(svg) error = %v", err)
	}
	if !strings.Contains(svg.String(), "<svg") {
		t.Error("svg output lacks <svg")
	}

	if err := RenderImage(&bytes.Buffer{}, s, "gif"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("RenderImage(gif) error = %v, want ErrUnsupportedFormat", err)
	}
}
