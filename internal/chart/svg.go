package chart

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"math"
	"strconv"
	"time"
)

// ErrChartRender is returned when a scene cannot be written.
var ErrChartRender = errors.New("chart rendering failed")

// SVGID returns the id of the <svg> element for a chart id.
func SVGID(id string) string {
	if id == "" {
		return "modernChart"
	}
	return "modernChart-" + id
}

const svgTemplate = `<svg xmlns="http://www.w3.org/2000/svg" id="{{svgID .ID}}" class="itmarket-chart-svg" width="{{num .Width}}" height="{{num .Height}}" viewBox="0 0 {{num .Width}} {{num .Height}}" role="img">
{{- if not .Empty}}
<defs>
{{- range $g := gradients .}}
<linearGradient id="{{$g.ID}}" x1="0%" y1="0%" x2="100%" y2="{{$g.Y2}}"><stop offset="0%" stop-color="{{$g.Start}}"/><stop offset="100%" stop-color="{{$g.End}}"/></linearGradient>
{{- end}}
<filter id="{{.Defs.Glow}}"><feGaussianBlur stdDeviation="3" result="coloredBlur"/><feMerge><feMergeNode in="coloredBlur"/><feMergeNode in="SourceGraphic"/></feMerge></filter>
<filter id="{{.Defs.Shadow}}"><feDropShadow dx="0" dy="4" stdDeviation="8" flood-opacity="0.3"/></filter>
</defs>
<rect width="{{num .Width}}" height="{{num .Height}}" fill="url(#{{.Defs.BackgroundGradient}})" rx="20"/>
<g class="chart-grid">
{{- range .Grid}}
<line x1="{{num $.Margin.Left}}" x2="{{num (plotRight $)}}" y1="{{num .Y}}" y2="{{num .Y}}" stroke="{{if .Strong}}{{gridStrong}}{{else}}{{grid}}{{end}}" stroke-width="1"/>
{{- end}}
</g>
<g class="chart-axis-y" font-size="12" fill="{{axisText}}" text-anchor="end">
{{- range .Grid}}
<text x="{{num (yLabelX $)}}" y="{{num (add .Y 5)}}">{{.Label}}</text>
{{- end}}
</g>
<g class="chart-axis-x" font-size="11" fill="{{axisText}}" text-anchor="middle">
{{- range .XLabels}}
<text x="{{num .X}}" y="{{num .Y}}">{{.Text}}</text>
{{- end}}
</g>
{{- range $l := .Layers}}
<g class="chart-layer" data-series="{{$l.Name}}">
<path d="{{pathData $l.Path}}" fill="none" stroke="url(#{{$l.GradientID}})" stroke-width="{{num $l.LineWidth}}" stroke-linecap="round" stroke-linejoin="round" filter="url(#{{$.Defs.Glow}})"
{{- if $.Animated}} stroke-dasharray="{{num $l.Length}}" stroke-dashoffset="{{num $l.Length}}"><animate attributeName="stroke-dashoffset" from="{{num $l.Length}}" to="0" dur="{{sec $l.LineDuration}}" begin="{{sec $l.LineDelay}}" fill="freeze"/></path>
{{- else}}/>
{{- end}}
{{- range $l.Markers}}
<circle cx="{{num .X}}" cy="{{num .Y}}" fill="{{$l.MarkerColor}}" stroke="{{$l.MarkerColor}}" stroke-width="1.25" filter="url(#{{$.Defs.Shadow}})" data-label="{{.Label}}" data-value="{{num .Value}}"
{{- if $.Animated}} r="0" opacity="0"><animate attributeName="r" from="0" to="{{num .Radius}}" dur="{{sec .Duration}}" begin="{{sec .Delay}}" fill="freeze"/><animate attributeName="opacity" from="0" to="1" dur="{{sec .Duration}}" begin="{{sec .Delay}}" fill="freeze"/>
{{- else}} r="{{num .Radius}}">
{{- end -}}
<set attributeName="r" to="{{num .HoverRadius}}" begin="mouseover" end="mouseout"/><title>{{.Tooltip}}</title></circle>
{{- end}}
</g>
{{- end}}
{{- end}}
</svg>`

const legendTemplate = `{{range .}}<div class="legend-item"><div class="legend-color {{.Class}}"></div><span>{{.Text}}</span></div>{{end}}`

type gradientDef struct {
	ID, Y2, Start, End string
}

var svgFuncs = template.FuncMap{
	"svgID":      SVGID,
	"num":        formatNum,
	"sec":        formatSeconds,
	"add":        func(a, b float64) float64 { return a + b },
	"pathData":   pathData,
	"plotRight":  func(s Scene) float64 { return s.Margin.Left + s.PlotWidth() },
	"yLabelX":    func(s Scene) float64 { return s.Margin.Left - yLabelOffset },
	"grid":       func() string { return gridColor },
	"gridStrong": func() string { return gridStrongColor },
	"axisText":   func() string { return axisTextColor },
	"gradients":  gradients,
}

var (
	svgTmpl    = template.Must(template.New("chart-svg").Funcs(svgFuncs).Parse(svgTemplate))
	legendTmpl = template.Must(template.New("chart-legend").Parse(legendTemplate))
)

// RenderSVG writes s as a standalone SVG element. Animation uses SMIL so
// the chart moves without scripts; hover enlarges a marker and its <title>
// serves as the tooltip. An empty scene yields an empty <svg>.
func RenderSVG(w io.Writer, s Scene) error {
	if err := svgTmpl.Execute(w, s); err != nil {
		return fmt.Errorf("%w: %v", ErrChartRender, err)
	}
	return nil
}

// RenderLegend writes the legend entries as HTML for the legend container
// next to the chart.
func RenderLegend(w io.Writer, s Scene) error {
	if err := legendTmpl.Execute(w, s.Legend); err != nil {
		return fmt.Errorf("%w: %v", ErrChartRender, err)
	}
	return nil
}

func gradients(s Scene) []gradientDef {
	return []gradientDef{
		{ID: s.Defs.PrimaryGradient, Y2: "0%", Start: palette[LayerPrimary].start, End: palette[LayerPrimary].end},
		{ID: s.Defs.SecondaryGradient, Y2: "0%", Start: palette[LayerSecondary].start, End: palette[LayerSecondary].end},
		{ID: s.Defs.JobsGradient, Y2: "0%", Start: palette[LayerJobs].start, End: palette[LayerJobs].end},
		{ID: s.Defs.BackgroundGradient, Y2: "100%", Start: backgroundStart, End: backgroundEnd},
	}
}

func pathData(pts []Point) string {
	buf := make([]byte, 0, len(pts)*16)
	for i, p := range pts {
		if i == 0 {
			buf = append(buf, 'M', ' ')
		} else {
			buf = append(buf, ' ', 'L', ' ')
		}
		buf = append(buf, formatNum(p.X)...)
		buf = append(buf, ' ')
		buf = append(buf, formatNum(p.Y)...)
	}
	return string(buf)
}

// formatNum prints v with at most two decimals and no trailing zeros.
func formatNum(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "s"
}
