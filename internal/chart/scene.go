package chart

import (
	"math"
	"time"

	"github.com/alnah/go-itmarket/internal/numfmt"
)

// Layout and timing constants.
const (
	DefaultWidth  = 960
	DefaultHeight = 540

	gridSteps      = 5
	maxXLabels     = 8
	xLabelOffset   = 25
	yLabelOffset   = 12
	lineWidth      = 3
	markerRadius   = 6
	hoverRadius    = 8
	lineDuration   = 1500 * time.Millisecond
	markerDuration = 500 * time.Millisecond
	markerStagger  = 100 * time.Millisecond
)

// Margin reserves room around the plot for axis labels.
type Margin struct {
	Top, Right, Bottom, Left float64
}

var defaultMargin = Margin{Top: 60, Right: 40, Bottom: 80, Left: 80}

// LayerKind fixes the draw order and styling of a series.
type LayerKind int

const (
	LayerPrimary LayerKind = iota
	LayerSecondary
	LayerJobs
)

// Options configure Build.
type Options struct {
	// ID makes element ids unique when several charts share a page.
	ID       string
	Width    int
	Height   int
	Mode     Mode
	Animated bool
}

// Point is a position in SVG user units.
type Point struct {
	X, Y float64
}

// GridLine is a horizontal guide with its value label.
type GridLine struct {
	Y      float64
	Value  float64
	Label  string
	Strong bool
}

// AxisLabel is a text label below the plot for data index Index.
type AxisLabel struct {
	Index int
	X, Y  float64
	Text  string
}

// Marker is a hoverable data point.
type Marker struct {
	Point
	Value       float64
	Label       string
	Tooltip     string
	Radius      float64
	HoverRadius float64
	Delay       time.Duration
	Duration    time.Duration
}

// Layer is one series: a polyline plus its markers.
type Layer struct {
	Kind         LayerKind
	Name         string
	GradientID   string
	MarkerColor  string
	Path         []Point
	Length       float64
	LineWidth    float64
	LineDelay    time.Duration
	LineDuration time.Duration
	Markers      []Marker
}

// LegendItem is one entry of the legend below the chart.
type LegendItem struct {
	Class string
	Text  string
}

// Defs holds the per-chart ids of gradients and filters.
type Defs struct {
	PrimaryGradient    string
	SecondaryGradient  string
	JobsGradient       string
	BackgroundGradient string
	Glow               string
	Shadow             string
}

// Scene is a complete, declarative chart description.
type Scene struct {
	ID       string
	Width    float64
	Height   float64
	Margin   Margin
	Mode     Mode
	Animated bool
	Defs     Defs
	Domain   Domain
	Grid     []GridLine
	XLabels  []AxisLabel
	Layers   []Layer
	Legend   []LegendItem
}

// Empty reports whether there is nothing to draw.
func (s Scene) Empty() bool { return len(s.Layers) == 0 }

// PlotWidth is the width inside the margins.
func (s Scene) PlotWidth() float64 { return s.Width - s.Margin.Left - s.Margin.Right }

// PlotHeight is the height inside the margins.
func (s Scene) PlotHeight() float64 { return s.Height - s.Margin.Top - s.Margin.Bottom }

type layerSpec struct {
	kind        LayerKind
	name        string
	legendClass string
	value       func(Datum) float64
	lineDelay   time.Duration
	markerDelay time.Duration
}

var (
	unemployedLayer = layerSpec{
		kind: LayerPrimary, name: "Arbeitslose", legendClass: "grad-unemployed",
		value: func(d Datum) float64 { return d.Unemployed },
	}
	seekingLayer = layerSpec{
		kind: LayerSecondary, name: "Arbeitssuchende", legendClass: "grad-seeking",
		value: func(d Datum) float64 { return d.Seeking },
	}
	jobsLayer = layerSpec{
		kind: LayerJobs, name: "IT-Jobs", legendClass: "grad-jobs",
		value: func(d Datum) float64 { return d.Jobs },
	}
)

// layersFor returns the series of mode in z-order with their delays.
func layersFor(mode Mode) []layerSpec {
	staged := func(s layerSpec, line, marker time.Duration) layerSpec {
		s.lineDelay, s.markerDelay = line, marker
		return s
	}
	switch mode {
	case ModeJobs:
		return []layerSpec{staged(jobsLayer, 0, 0)}
	case ModePair:
		return []layerSpec{
			staged(unemployedLayer, 0, 100*time.Millisecond),
			staged(seekingLayer, 200*time.Millisecond, 300*time.Millisecond),
		}
	default:
		return []layerSpec{
			staged(unemployedLayer, 0, 100*time.Millisecond),
			staged(seekingLayer, 200*time.Millisecond, 300*time.Millisecond),
			staged(jobsLayer, 400*time.Millisecond, 500*time.Millisecond),
		}
	}
}

// XLabelStride returns how many points apart x labels are placed so that
// at most about eight are shown.
func XLabelStride(n int) int {
	return max(1, int(math.Ceil(float64(n)/maxXLabels)))
}

// Build computes the scene for data. Fewer than two points give a scene
// with no grid, layers or legend.
func Build(opts Options, data []Datum) Scene {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}

	s := Scene{
		ID:       opts.ID,
		Width:    float64(opts.Width),
		Height:   float64(opts.Height),
		Margin:   defaultMargin,
		Mode:     opts.Mode,
		Animated: opts.Animated,
		Defs:     defsFor(opts.ID),
	}
	if len(data) < 2 {
		return s
	}

	specs := layersFor(opts.Mode)
	values := make([][]float64, len(specs))
	for i, spec := range specs {
		values[i] = make([]float64, len(data))
		for j, d := range data {
			values[i][j] = spec.value(d)
		}
	}
	s.Domain = ComputeDomain(values...)

	pw, ph := s.PlotWidth(), s.PlotHeight()
	xAt := func(i int) float64 {
		return s.Margin.Left + float64(i)*pw/float64(len(data)-1)
	}

	for i := 0; i <= gridSteps; i++ {
		v := s.Domain.Max - float64(i)*s.Domain.Span()/gridSteps
		s.Grid = append(s.Grid, GridLine{
			Y:      s.Margin.Top + float64(i)*ph/gridSteps,
			Value:  v,
			Label:  numfmt.Round(v),
			Strong: i == gridSteps,
		})
	}

	stride := XLabelStride(len(data))
	for i, d := range data {
		if i%stride != 0 && i != len(data)-1 {
			continue
		}
		s.XLabels = append(s.XLabels, AxisLabel{
			Index: i,
			X:     xAt(i),
			Y:     s.Margin.Top + ph + xLabelOffset,
			Text:  d.Label,
		})
	}

	for i, spec := range specs {
		layer := Layer{
			Kind:         spec.kind,
			Name:         spec.name,
			GradientID:   s.Defs.gradientFor(spec.kind),
			MarkerColor:  palette[spec.kind].marker,
			LineWidth:    lineWidth,
			LineDelay:    spec.lineDelay,
			LineDuration: lineDuration,
		}
		for j, d := range data {
			p := Point{X: xAt(j), Y: s.Domain.scaleY(values[i][j], s.Margin.Top, ph)}
			layer.Path = append(layer.Path, p)
			layer.Markers = append(layer.Markers, Marker{
				Point:       p,
				Value:       values[i][j],
				Label:       d.Label,
				Tooltip:     d.Label + ": " + numfmt.Number(values[i][j]),
				Radius:      markerRadius,
				HoverRadius: hoverRadius,
				Delay:       spec.markerDelay + time.Duration(j)*markerStagger,
				Duration:    markerDuration,
			})
		}
		layer.Length = pathLength(layer.Path)
		s.Layers = append(s.Layers, layer)
		s.Legend = append(s.Legend, LegendItem{Class: spec.legendClass, Text: spec.name})
	}
	return s
}

// HitTest returns the top-most marker whose hover circle contains (x, y).
// Later layers are drawn on top and win.
func (s Scene) HitTest(x, y float64) (Marker, bool) {
	for i := len(s.Layers) - 1; i >= 0; i-- {
		markers := s.Layers[i].Markers
		for j := len(markers) - 1; j >= 0; j-- {
			m := markers[j]
			if math.Hypot(x-m.X, y-m.Y) <= m.HoverRadius {
				return m, true
			}
		}
	}
	return Marker{}, false
}

func pathLength(pts []Point) float64 {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
	}
	return total
}

func defsFor(id string) Defs {
	suffix := ""
	if id != "" {
		suffix = "-" + id
	}
	return Defs{
		PrimaryGradient:    "primaryGradient" + suffix,
		SecondaryGradient:  "secondaryGradient" + suffix,
		JobsGradient:       "jobsGradient" + suffix,
		BackgroundGradient: "bgGradient" + suffix,
		Glow:               "glow" + suffix,
		Shadow:             "shadow" + suffix,
	}
}

func (d Defs) gradientFor(k LayerKind) string {
	switch k {
	case LayerPrimary:
		return d.PrimaryGradient
	case LayerSecondary:
		return d.SecondaryGradient
	default:
		return d.JobsGradient
	}
}

type colors struct {
	start, end, marker string
}

var palette = map[LayerKind]colors{
	LayerPrimary:   {start: "#667eea", end: "#764ba2", marker: "#7f8cf0"},
	LayerSecondary: {start: "#f093fb", end: "#f5576c", marker: "#f47aa8"},
	LayerJobs:      {start: "#4facfe", end: "#00f2fe", marker: "#29cffe"},
}

const (
	backgroundStart = "#1a202c"
	backgroundEnd   = "#2d3748"
	gridColor       = "rgba(102,126,234,0.1)"
	gridStrongColor = "rgba(102,126,234,0.3)"
	axisTextColor   = "#a0aec0"
)
