package dataset

// Range selects entries of a series. From and To are inclusive "YYYY-MM"
// bounds and win over Last when both are set.
type Range struct {
	From string
	To   string
	Last int
}

// FilterRange returns the entries of series selected by r, oldest first.
// Month strings are compared lexicographically, which is valid for the
// fixed-width "YYYY-MM" format. Input is assumed well formed.
func FilterRange[E Monthly](series []E, r Range) []E {
	sorted := SortAscending(series)

	switch {
	case r.From != "" && r.To != "":
		out := make([]E, 0, len(sorted))
		for _, e := range sorted {
			m := e.MonthKey()
			if m >= r.From && m <= r.To {
				out = append(out, e)
			}
		}
		return out
	case r.Last > 0 && r.Last < len(sorted):
		return sorted[len(sorted)-r.Last:]
	default:
		return sorted
	}
}
