package dataset

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

const minLabelLength = 2

// ValidMonth reports whether month has the "YYYY-MM" form.
func ValidMonth(month string) bool {
	return monthPattern.MatchString(month)
}

// Validate checks every entry of every series. The first problem found is
// returned wrapped in ErrMalformedEntry.
func (d Dataset) Validate() error {
	for i, e := range d.ITAggregate {
		if err := validateAggregate(ITAggregate, i, e); err != nil {
			return err
		}
	}
	for i, e := range d.InfraAggregate {
		if err := validateAggregate(InfraAggregate, i, e); err != nil {
			return err
		}
	}
	for i, e := range d.SoftwareAggregate {
		if err := validateAggregate(SoftwareAggregate, i, e); err != nil {
			return err
		}
	}
	for i, e := range d.ITJobs {
		if err := validateJobs(ITJobs, i, e); err != nil {
			return err
		}
	}
	for i, e := range d.InfraJobs {
		if err := validateJobs(InfraJobs, i, e); err != nil {
			return err
		}
	}
	for i, e := range d.SoftwareJobs {
		if err := validateJobs(SoftwareJobs, i, e); err != nil {
			return err
		}
	}
	for i, e := range d.Germany {
		if err := validateHeader(Germany, i, e.Month, e.Label); err != nil {
			return err
		}
		if e.Unemployed < 0 || e.Seeking < 0 || e.Jobs < 0 {
			return malformed(Germany, i, "negative count")
		}
	}
	return nil
}

func validateAggregate(series string, i int, e AggregateEntry) error {
	if err := validateHeader(series, i, e.Month, e.Label); err != nil {
		return err
	}
	if e.Unemployed < 0 || e.Seeking < 0 {
		return malformed(series, i, "negative count")
	}
	return nil
}

func validateJobs(series string, i int, e JobsEntry) error {
	if err := validateHeader(series, i, e.Month, e.Label); err != nil {
		return err
	}
	if e.ITJobs < 0 {
		return malformed(series, i, "negative count")
	}
	return nil
}

func validateHeader(series string, i int, month, label string) error {
	if !ValidMonth(month) {
		return malformed(series, i, fmt.Sprintf("month %q must be YYYY-MM", month))
	}
	if utf8.RuneCountInString(label) < minLabelLength {
		return malformed(series, i, fmt.Sprintf("label %q must have at least %d characters", label, minLabelLength))
	}
	return nil
}

func malformed(series string, i int, reason string) error {
	return fmt.Errorf("%w: %s[%d]: %s", ErrMalformedEntry, series, i, reason)
}
