package shortcode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/alnah/go-itmarket/internal/chart"
	"github.com/alnah/go-itmarket/internal/dataset"
)

// The attribute set of the container is a contract with the client-side
// chart script: data-cid, data-width, data-height, data-range,
// data-animation, data-type and data-json.
const embedTemplate = `<div class="itmarket-chart preview-chart" data-cid="{{.ID}}" data-width="{{.Width}}" data-height="{{.Height}}" data-range="all" data-animation="{{.Animation}}" data-type="all" data-json="{{.JSON}}"
{{- with .Title}} aria-label="{{.}}"{{end}}>
  {{.SVG}}
  <div class="tooltip" id="tooltip-{{.ID}}"></div>
  <div class="legend" id="legend-{{.ID}}">{{.Legend}}</div>
</div>`

var embedTmpl = template.Must(template.New("chart-embed").Parse(embedTemplate))

type embedView struct {
	ID        string
	Width     int
	Height    int
	Animation string
	JSON      string
	Title     string
	SVG       template.HTML
	Legend    template.HTML
}

func (e *Engine) renderChart(c Chart, id string) (string, error) {
	agg, ok := e.data.AggregateSeries(c.AggKey)
	if !ok {
		e.logger.Warn("chart with unknown aggregate series", slog.String("aggKey", c.AggKey))
	}
	jobs, ok := e.data.JobsSeries(c.JobsKey)
	if !ok {
		e.logger.Warn("chart with unknown jobs series", slog.String("jobsKey", c.JobsKey))
	}

	payload := chart.NewPayload(
		dataset.FilterRange(agg, c.Range),
		dataset.FilterRange(jobs, c.Range),
	)
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: encoding chart payload: %v", ErrExpand, err)
	}

	scene := chart.Build(chart.Options{
		ID:       id,
		Width:    c.Width,
		Height:   c.Height,
		Mode:     chart.ModeAll,
		Animated: e.animation,
	}, chart.Series(payload, chart.ModeAll, "all"))

	var svg, legend bytes.Buffer
	if err := chart.RenderSVG(&svg, scene); err != nil {
		return "", fmt.Errorf("%w: %v", ErrExpand, err)
	}
	if err := chart.RenderLegend(&legend, scene); err != nil {
		return "", fmt.Errorf("%w: %v", ErrExpand, err)
	}

	animation := "disabled"
	if e.animation {
		animation = "enabled"
	}

	var buf bytes.Buffer
	err = embedTmpl.Execute(&buf, embedView{
		ID:        id,
		Width:     sizeOr(c.Width, chart.DefaultWidth),
		Height:    sizeOr(c.Height, chart.DefaultHeight),
		Animation: animation,
		JSON:      string(raw),
		Title:     c.Title,
		// Both fragments come from html/template with escaped data.
		SVG:    template.HTML(svg.String()),    // #nosec G203
		Legend: template.HTML(legend.String()), // #nosec G203
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExpand, err)
	}
	return buf.String(), nil
}
