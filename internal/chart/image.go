package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	_ "gonum.org/v1/plot/vg/vgimg" // png
	_ "gonum.org/v1/plot/vg/vgpdf" // pdf
	_ "gonum.org/v1/plot/vg/vgsvg" // svg
)

// ErrUnsupportedFormat is returned by RenderImage for unknown formats.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ImageFormats lists the formats RenderImage accepts.
var ImageFormats = []string{"png", "svg", "pdf"}

// RenderImage draws s without animation or interactivity through
// gonum/plot. Scene pixels map to points one to one. An empty scene
// produces a blank canvas of the scene's size.
func RenderImage(w io.Writer, s Scene, format string) error {
	format = strings.ToLower(format)
	if !supportedFormat(format) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	p := plot.New()
	p.BackgroundColor = hexColor(backgroundStart)
	p.Legend.Top = true
	p.Legend.TextStyle.Color = hexColor(axisTextColor)
	p.X.Color, p.Y.Color = hexColor(axisTextColor), hexColor(axisTextColor)
	p.X.Tick.Label.Color, p.Y.Tick.Label.Color = hexColor(axisTextColor), hexColor(axisTextColor)

	if !s.Empty() {
		p.Y.Min, p.Y.Max = s.Domain.Min, s.Domain.Max
		p.Y.Tick.Marker = gridTicks(s.Grid)
		p.X.Tick.Marker = axisTicks(s.XLabels)
		p.X.Min = 0
		p.X.Max = float64(len(s.Layers[0].Markers) - 1)

		grid := plotter.NewGrid()
		grid.Vertical.Color = nil
		grid.Horizontal.Color = color.RGBA{R: 102, G: 126, B: 234, A: 40}
		p.Add(grid)

		for _, l := range s.Layers {
			xys := make(plotter.XYs, len(l.Markers))
			for i, m := range l.Markers {
				xys[i] = plotter.XY{X: float64(i), Y: m.Value}
			}

			line, err := plotter.NewLine(xys)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrChartRender, err)
			}
			line.Color = hexColor(palette[l.Kind].start)
			line.Width = vg.Points(l.LineWidth)

			points, err := plotter.NewScatter(xys)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrChartRender, err)
			}
			points.Color = hexColor(l.MarkerColor)
			points.Shape = draw.CircleGlyph{}
			points.Radius = vg.Points(markerRadius / 2)

			p.Add(line, points)
			p.Legend.Add(l.Name, line)
		}
	}

	wt, err := p.WriterTo(vg.Points(s.Width), vg.Points(s.Height), format)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrChartRender, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("%w: %v", ErrChartRender, err)
	}
	return nil
}

func supportedFormat(format string) bool {
	for _, f := range ImageFormats {
		if f == format {
			return true
		}
	}
	return false
}

// gridTicks reuses the scene's grid values and de-DE labels.
type gridTicks []GridLine

func (g gridTicks) Ticks(_, _ float64) []plot.Tick {
	ticks := make([]plot.Tick, 0, len(g))
	for _, line := range g {
		ticks = append(ticks, plot.Tick{Value: line.Value, Label: line.Label})
	}
	return ticks
}

// axisTicks places the thinned x labels at their data index.
type axisTicks []AxisLabel

func (a axisTicks) Ticks(_, _ float64) []plot.Tick {
	ticks := make([]plot.Tick, 0, len(a))
	for _, l := range a {
		ticks = append(ticks, plot.Tick{Value: float64(l.Index), Label: l.Text})
	}
	return ticks
}

// hexColor parses "#rrggbb". Anything else is opaque black.
func hexColor(s string) color.Color {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.Black
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
