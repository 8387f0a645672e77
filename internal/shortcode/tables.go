package shortcode

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/alnah/go-itmarket/internal/dataset"
	"github.com/alnah/go-itmarket/internal/numfmt"
)

const tableTemplate = `<table class="preview-table">
  <thead><tr>{{range .Head}}<th>{{.}}</th>{{end}}</tr></thead>
  <tbody>
{{- range .Rows}}
    <tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
  </tbody>
</table>`

var tableTmpl = template.Must(template.New("table").Parse(tableTemplate))

type tableView struct {
	Head []string
	Rows [][]string
}

var (
	jobsHead      = []string{"Monat", "gemeldete IT-Jobs"}
	aggregateHead = []string{"Monat", "Anzahl Arbeitslose", "Anzahl Arbeitssuchende", "gesamt"}
)

// Compare table row labels, in display order.
var compareLabels = [6]string{
	"Arbeitsuchende - IT",
	"Arbeitslose - IT",
	"IT JOBS",
	"Arbeitsuchende - Deutschland",
	"Arbeitslose - Deutschland",
	"JOBS - Deutschland",
}

// PercentChange returns (current-previous)/previous*100, or 0 when
// previous is 0.
func PercentChange(current, previous int) float64 {
	if previous == 0 {
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

func (e *Engine) renderRangeTable(t RangeTable) (string, error) {
	view := tableView{}

	if jobs, ok := e.data.JobsSeries(t.Series); ok {
		view.Head = jobsHead
		for _, j := range dataset.SortDescending(dataset.FilterRange(jobs, t.Range)) {
			view.Rows = append(view.Rows, []string{j.Label, numfmt.Int(j.ITJobs)})
		}
		return execTable(view)
	}

	agg, ok := e.data.AggregateSeries(t.Series)
	if !ok {
		e.logger.Warn("table for unknown series", slog.String("series", t.Series))
		return placeholder(fmt.Sprintf("Tabelle: unbekannte Reihe %q", t.Series)), nil
	}
	view.Head = aggregateHead
	for _, a := range dataset.SortDescending(dataset.FilterRange(agg, t.Range)) {
		view.Rows = append(view.Rows, []string{
			a.Label,
			numfmt.Int(a.Unemployed),
			numfmt.Int(a.Seeking),
			numfmt.Int(a.Unemployed + a.Seeking),
		})
	}
	return execTable(view)
}

func (e *Engine) renderCompareTable(t CompareTable) (string, error) {
	if t.Month == "" {
		e.logger.Warn("compare table without month")
		return missingMonthHTML, nil
	}
	if !dataset.ValidMonth(t.Month) {
		e.logger.Warn("compare table with malformed month", slog.String("month", t.Month))
		return placeholder(fmt.Sprintf("Tabelle: Monat %q ungültig", t.Month)), nil
	}

	prev := dataset.PrevYearMonth(t.Month)
	aggNow, _ := dataset.Find(e.data.ITAggregate, t.Month)
	aggPrev, _ := dataset.Find(e.data.ITAggregate, prev)
	jobsNow, _ := dataset.Find(e.data.ITJobs, t.Month)
	jobsPrev, _ := dataset.Find(e.data.ITJobs, prev)
	gerNow, okNow := dataset.Find(e.data.Germany, t.Month)
	gerPrev, okPrev := dataset.Find(e.data.Germany, prev)

	hdrNow, hdrPrev := dataset.MonthLabel(t.Month), dataset.MonthLabel(prev)
	if okNow {
		hdrNow = gerNow.Label
	}
	if okPrev {
		hdrPrev = gerPrev.Label
	}

	pairs := [6][2]int{
		{aggNow.Seeking, aggPrev.Seeking},
		{aggNow.Unemployed, aggPrev.Unemployed},
		{jobsNow.ITJobs, jobsPrev.ITJobs},
		{gerNow.Seeking, gerPrev.Seeking},
		{gerNow.Unemployed, gerPrev.Unemployed},
		{gerNow.Jobs, gerPrev.Jobs},
	}

	view := tableView{Head: []string{"", hdrNow, hdrPrev, "Absolut", "%"}}
	for i, p := range pairs {
		now, before := p[0], p[1]
		view.Rows = append(view.Rows, []string{
			compareLabels[i],
			numfmt.Int(now),
			numfmt.Int(before),
			numfmt.Int(now - before),
			numfmt.SignedPercent(PercentChange(now, before), 1),
		})
	}
	return execTable(view)
}

func execTable(view tableView) (string, error) {
	var buf bytes.Buffer
	if err := tableTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("%w: %v", ErrExpand, err)
	}
	return buf.String(), nil
}
