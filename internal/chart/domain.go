package chart

import "math"

// domainPadding is the share of the value span added above and below.
const domainPadding = 0.1

// Domain is the value range mapped onto the plot height.
type Domain struct {
	Min float64
	Max float64
}

// Span returns Max - Min.
func (d Domain) Span() float64 { return d.Max - d.Min }

// ComputeDomain pads the global min/max of all values by 10% on both ends.
// A flat series is widened by 1 on each side so scaling never divides by
// zero. No values at all yield [0, 1].
func ComputeDomain(values ...[]float64) Domain {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, vs := range values {
		for _, v := range vs {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return Domain{Min: 0, Max: 1}
	}
	if lo == hi {
		return Domain{Min: lo - 1, Max: hi + 1}
	}

	pad := (hi - lo) * domainPadding
	return Domain{Min: lo - pad, Max: hi + pad}
}

// scaleY maps v into [top, top+height], larger values higher up.
func (d Domain) scaleY(v, top, height float64) float64 {
	return top + height - (v-d.Min)/d.Span()*height
}
