// Package dataset holds the monthly labour-market time series that charts
// and tables are built from.
//
// A Dataset is a fixed set of seven series keyed by a "YYYY-MM" month. The
// only mutation is Upsert, which returns a new slice; callers treat series
// as immutable values so snapshots can be shared between renders.
package dataset

import (
	"errors"
	"slices"
	"strings"
)

// Sentinel errors for dataset operations.
var (
	ErrMalformedEntry = errors.New("malformed dataset entry")
	ErrDatasetParse   = errors.New("failed to parse dataset")
	ErrDatasetRead    = errors.New("failed to read dataset")
	ErrDatasetWrite   = errors.New("failed to write dataset")
)

// Series names as they appear in the TOML file and in shortcode attributes.
const (
	ITAggregate       = "it_aggregate"
	ITJobs            = "it_jobs"
	Germany           = "germany"
	InfraAggregate    = "infra_aggregate"
	InfraJobs         = "infra_jobs"
	SoftwareAggregate = "software_aggregate"
	SoftwareJobs      = "software_jobs"
)

// SeriesNames lists every series in file order.
var SeriesNames = []string{
	ITAggregate, ITJobs, Germany,
	InfraAggregate, InfraJobs,
	SoftwareAggregate, SoftwareJobs,
}

// Monthly is satisfied by every entry type; the month is the identity key.
type Monthly interface {
	MonthKey() string
}

// AggregateEntry counts unemployed and job-seeking people for one segment.
type AggregateEntry struct {
	Month      string `toml:"month" json:"month"`
	Label      string `toml:"label" json:"label"`
	Unemployed int    `toml:"unemployed" json:"unemployed"`
	Seeking    int    `toml:"seeking" json:"seeking"`
}

// JobsEntry counts advertised jobs for one segment.
type JobsEntry struct {
	Month  string `toml:"month" json:"month"`
	Label  string `toml:"label" json:"label"`
	ITJobs int    `toml:"it_jobs" json:"it_jobs"`
}

// NationalEntry carries the nationwide reference figures.
type NationalEntry struct {
	Month      string `toml:"month" json:"month"`
	Label      string `toml:"label" json:"label"`
	Unemployed int    `toml:"unemployed" json:"unemployed"`
	Seeking    int    `toml:"seeking" json:"seeking"`
	Jobs       int    `toml:"jobs" json:"jobs"`
}

func (e AggregateEntry) MonthKey() string { return e.Month }
func (e JobsEntry) MonthKey() string      { return e.Month }
func (e NationalEntry) MonthKey() string  { return e.Month }

// Dataset is the full monthly data file.
type Dataset struct {
	ITAggregate       []AggregateEntry `toml:"it_aggregate"`
	ITJobs            []JobsEntry      `toml:"it_jobs"`
	Germany           []NationalEntry  `toml:"germany"`
	InfraAggregate    []AggregateEntry `toml:"infra_aggregate"`
	InfraJobs         []JobsEntry      `toml:"infra_jobs"`
	SoftwareAggregate []AggregateEntry `toml:"software_aggregate"`
	SoftwareJobs      []JobsEntry      `toml:"software_jobs"`
}

// AggregateSeries returns the aggregate series registered under name.
func (d Dataset) AggregateSeries(name string) ([]AggregateEntry, bool) {
	switch name {
	case ITAggregate:
		return d.ITAggregate, true
	case InfraAggregate:
		return d.InfraAggregate, true
	case SoftwareAggregate:
		return d.SoftwareAggregate, true
	}
	return nil, false
}

// JobsSeries returns the job-count series registered under name.
func (d Dataset) JobsSeries(name string) ([]JobsEntry, bool) {
	switch name {
	case ITJobs:
		return d.ITJobs, true
	case InfraJobs:
		return d.InfraJobs, true
	case SoftwareJobs:
		return d.SoftwareJobs, true
	}
	return nil, false
}

// IsJobsSeries reports whether name refers to a job-count series.
func IsJobsSeries(name string) bool {
	_, ok := Dataset{}.JobsSeries(name)
	return ok
}

// Upsert replaces the entry for entry's month (if any) and returns the
// series sorted newest first. The input slice is never modified.
func Upsert[E Monthly](series []E, entry E) []E {
	out := make([]E, 0, len(series)+1)
	out = append(out, entry)
	for _, e := range series {
		if e.MonthKey() != entry.MonthKey() {
			out = append(out, e)
		}
	}
	return SortDescending(out)
}

// upsertAll folds every patch entry into series.
func upsertAll[E Monthly](series, patch []E) []E {
	for _, e := range patch {
		series = Upsert(series, e)
	}
	return series
}

// Merge returns a copy of d with every entry of patch upserted into the
// matching series. A patch is usually one "current month" entry per series
// plus a prior-year nationwide reference.
func (d Dataset) Merge(patch Dataset) Dataset {
	return Dataset{
		ITAggregate:       upsertAll(d.ITAggregate, patch.ITAggregate),
		ITJobs:            upsertAll(d.ITJobs, patch.ITJobs),
		Germany:           upsertAll(d.Germany, patch.Germany),
		InfraAggregate:    upsertAll(d.InfraAggregate, patch.InfraAggregate),
		InfraJobs:         upsertAll(d.InfraJobs, patch.InfraJobs),
		SoftwareAggregate: upsertAll(d.SoftwareAggregate, patch.SoftwareAggregate),
		SoftwareJobs:      upsertAll(d.SoftwareJobs, patch.SoftwareJobs),
	}
}

// Find returns the entry for month.
func Find[E Monthly](series []E, month string) (E, bool) {
	for _, e := range series {
		if e.MonthKey() == month {
			return e, true
		}
	}
	var zero E
	return zero, false
}

// Latest returns the most recent entry of series.
func Latest[E Monthly](series []E) (E, bool) {
	sorted := SortDescending(series)
	if len(sorted) == 0 {
		var zero E
		return zero, false
	}
	return sorted[0], true
}

// SortAscending returns a copy of series ordered oldest first.
func SortAscending[E Monthly](series []E) []E {
	out := slices.Clone(series)
	slices.SortStableFunc(out, func(a, b E) int {
		return strings.Compare(a.MonthKey(), b.MonthKey())
	})
	return out
}

// SortDescending returns a copy of series ordered newest first.
func SortDescending[E Monthly](series []E) []E {
	out := slices.Clone(series)
	slices.SortStableFunc(out, func(a, b E) int {
		return strings.Compare(b.MonthKey(), a.MonthKey())
	})
	return out
}

// Sorted returns a copy of d with every series ordered newest first.
func (d Dataset) Sorted() Dataset {
	return Dataset{
		ITAggregate:       SortDescending(d.ITAggregate),
		ITJobs:            SortDescending(d.ITJobs),
		Germany:           SortDescending(d.Germany),
		InfraAggregate:    SortDescending(d.InfraAggregate),
		InfraJobs:         SortDescending(d.InfraJobs),
		SoftwareAggregate: SortDescending(d.SoftwareAggregate),
		SoftwareJobs:      SortDescending(d.SoftwareJobs),
	}
}
