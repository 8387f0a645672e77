package dataset

import (
	"fmt"
	"strconv"
)

// PrevYearMonth returns the same month one year earlier ("2025-11" ->
// "2024-11"). Malformed input yields "".
func PrevYearMonth(month string) string {
	if !ValidMonth(month) {
		return ""
	}
	year, err := strconv.Atoi(month[:4])
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%04d-%s", year-1, month[5:])
}

// MonthLabel returns the short column label for month ("2025-11" ->
// "11/25"). Malformed input is returned unchanged.
func MonthLabel(month string) string {
	if !ValidMonth(month) {
		return month
	}
	return month[5:] + "/" + month[2:4]
}

// Counts holds the two headline figures of an aggregate series.
type Counts struct {
	Unemployed int
	Seeking    int
}

// NationalCounts holds the nationwide reference figures.
type NationalCounts struct {
	Unemployed int
	Seeking    int
	Jobs       int
}

// MonthFigures is everything entered for one reporting month.
type MonthFigures struct {
	Month string
	Label string

	IT       Counts
	Infra    Counts
	Software Counts

	ITJobs       int
	InfraJobs    int
	SoftwareJobs int

	Germany NationalCounts
}

// Patch returns a one-entry-per-series dataset for f. The nationwide entry
// is labelled with the short "MM/YY" form used as a table header.
func (f MonthFigures) Patch() Dataset {
	agg := func(c Counts) []AggregateEntry {
		return []AggregateEntry{{Month: f.Month, Label: f.Label, Unemployed: c.Unemployed, Seeking: c.Seeking}}
	}
	jobs := func(n int) []JobsEntry {
		return []JobsEntry{{Month: f.Month, Label: f.Label, ITJobs: n}}
	}
	return Dataset{
		ITAggregate: agg(f.IT),
		ITJobs:      jobs(f.ITJobs),
		Germany: []NationalEntry{{
			Month:      f.Month,
			Label:      MonthLabel(f.Month),
			Unemployed: f.Germany.Unemployed,
			Seeking:    f.Germany.Seeking,
			Jobs:       f.Germany.Jobs,
		}},
		InfraAggregate:    agg(f.Infra),
		InfraJobs:         jobs(f.InfraJobs),
		SoftwareAggregate: agg(f.Software),
		SoftwareJobs:      jobs(f.SoftwareJobs),
	}
}

// PriorYearReference builds the nationwide entry for the month one year
// before current, as needed by year-over-year comparison tables.
func PriorYearReference(current string, c NationalCounts) NationalEntry {
	prev := PrevYearMonth(current)
	return NationalEntry{
		Month:      prev,
		Label:      MonthLabel(prev),
		Unemployed: c.Unemployed,
		Seeking:    c.Seeking,
		Jobs:       c.Jobs,
	}
}

// SerializePatch renders the dataset snippet for one month, ready to be
// appended to the dataset file.
func SerializePatch(f MonthFigures) (string, error) {
	if !ValidMonth(f.Month) {
		return "", fmt.Errorf("%w: month %q must be YYYY-MM", ErrMalformedEntry, f.Month)
	}
	return Serialize(f.Patch())
}
