// Package chart turns monthly series into an animated line chart.
//
// The work is split in two. Build is a pure function from data to a Scene,
// a declarative description of every shape, label, timing and hover target.
// Adapters draw a Scene: RenderSVG writes interactive SVG, RenderImage uses
// gonum/plot for static PNG, SVG or PDF output. Nothing is patched in
// place; a new mode, range or animation setting means a new Scene.
package chart

import (
	"strconv"
	"strings"

	"github.com/alnah/go-itmarket/internal/dataset"
)

// Mode selects which series a chart shows.
type Mode string

const (
	ModeJobs Mode = "jobs"
	ModePair Mode = "pair"
	ModeAll  Mode = "all"
)

// ParseMode accepts the mode names used in embeds and query strings.
// "aggregate" is the embed's name for ModePair. Unknown names fall back to
// ModeAll.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jobs":
		return ModeJobs
	case "pair", "aggregate":
		return ModePair
	default:
		return ModeAll
	}
}

// PayloadKey is the key of the payload list this mode reads.
func (m Mode) PayloadKey() string {
	switch m {
	case ModeJobs:
		return "jobs"
	case ModePair:
		return "aggregate"
	default:
		return "all"
	}
}

// Joined is an aggregate entry with the job count of the same month.
type Joined struct {
	Month      string `json:"month"`
	Label      string `json:"label"`
	Unemployed int    `json:"unemployed"`
	Seeking    int    `json:"seeking"`
	ITJobs     int    `json:"it_jobs"`
}

// Payload is the JSON document carried by a chart embed's data-json
// attribute.
type Payload struct {
	Aggregate []dataset.AggregateEntry `json:"aggregate"`
	Jobs      []dataset.JobsEntry      `json:"jobs"`
	All       []Joined                 `json:"all"`
}

// NewPayload joins jobs onto aggregate by month. Months without a job entry
// get a count of 0. Both inputs are expected oldest first.
func NewPayload(aggregate []dataset.AggregateEntry, jobs []dataset.JobsEntry) Payload {
	byMonth := make(map[string]int, len(jobs))
	for _, j := range jobs {
		byMonth[j.Month] = j.ITJobs
	}

	all := make([]Joined, 0, len(aggregate))
	for _, a := range aggregate {
		all = append(all, Joined{
			Month:      a.Month,
			Label:      a.Label,
			Unemployed: a.Unemployed,
			Seeking:    a.Seeking,
			ITJobs:     byMonth[a.Month],
		})
	}

	if aggregate == nil {
		aggregate = []dataset.AggregateEntry{}
	}
	if jobs == nil {
		jobs = []dataset.JobsEntry{}
	}
	return Payload{Aggregate: aggregate, Jobs: jobs, All: all}
}

// Datum is one x position of the chart.
type Datum struct {
	Label      string
	Unemployed float64
	Seeking    float64
	Jobs       float64
}

// Series selects the payload list for mode and keeps the last N entries
// when rangeSel is a positive number. "all", "" and anything unparsable
// keep every entry.
func Series(p Payload, mode Mode, rangeSel string) []Datum {
	var data []Datum
	switch mode {
	case ModeJobs:
		for _, j := range p.Jobs {
			data = append(data, Datum{Label: labelOf(j.Label, j.Month), Jobs: float64(j.ITJobs)})
		}
	case ModePair:
		for _, a := range p.Aggregate {
			data = append(data, Datum{
				Label:      labelOf(a.Label, a.Month),
				Unemployed: float64(a.Unemployed),
				Seeking:    float64(a.Seeking),
			})
		}
	default:
		for _, a := range p.All {
			data = append(data, Datum{
				Label:      labelOf(a.Label, a.Month),
				Unemployed: float64(a.Unemployed),
				Seeking:    float64(a.Seeking),
				Jobs:       float64(a.ITJobs),
			})
		}
	}

	if n, err := strconv.Atoi(rangeSel); err == nil && n > 0 && n < len(data) {
		data = data[len(data)-n:]
	}
	return data
}

func labelOf(label, month string) string {
	if label != "" {
		return label
	}
	return month
}
