package analytics

import (
	"math"
	"slices"
	"time"
)

// Float returns a pointer to v. Convenience for literals.
func Float(v float64) *float64 {
	return &v
}

// DiffMinutes returns the minutes from a to b, or nil if either
// timestamp is missing. Missing input is data absence, never an error.
func DiffMinutes(a, b *time.Time) *float64 {
	if a == nil || b == nil {
		return nil
	}
	return Float(b.Sub(*a).Minutes())
}

// DiffSeconds returns the seconds from a to b, or nil if either
// timestamp is missing.
func DiffSeconds(a, b *time.Time) *float64 {
	if a == nil || b == nil {
		return nil
	}
	return Float(b.Sub(*a).Seconds())
}

// valid filters out nils and NaNs.
func valid(values []*float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v == nil || math.IsNaN(*v) {
			continue
		}
		out = append(out, *v)
	}
	return out
}

// Sum adds all valid values.
func Sum(values []*float64) float64 {
	var total float64
	for _, v := range valid(values) {
		total += v
	}
	return total
}

// Average returns the mean of the valid values, or nil when none remain.
func Average(values []*float64) *float64 {
	vals := valid(values)
	if len(vals) == 0 {
		return nil
	}
	var total float64
	for _, v := range vals {
		total += v
	}
	return Float(total / float64(len(vals)))
}

// StdDev returns the sample standard deviation of the valid values, or
// nil when fewer than 2 remain.
func StdDev(values []*float64) *float64 {
	vals := valid(values)
	n := len(vals)
	if n < 2 {
		return nil
	}
	var mean float64
	for _, v := range vals {
		mean += v
	}
	mean /= float64(n)

	var sq float64
	for _, v := range vals {
		sq += (v - mean) * (v - mean)
	}
	return Float(math.Sqrt(sq / float64(n-1)))
}

// Median returns the median of the valid values, or nil when none
// remain. An even-length set yields the rounded mean of the two central
// values after ascending sort.
func Median(values []*float64) *float64 {
	vals := valid(values)
	if len(vals) == 0 {
		return nil
	}

	// Work on a copy to avoid mutating the original
	temp := make([]float64, len(vals))
	copy(temp, vals)
	slices.Sort(temp)

	n := len(temp)
	if n%2 == 1 {
		return Float(temp[n/2])
	}
	return Float(math.Round((temp[n/2-1] + temp[n/2]) / 2.0))
}

// Percentile linearly interpolates the p-th percentile (0-100) over an
// ascending-sorted slice using index p/100*(n-1). Returns the single
// value for n=1 and 0 for n=0; callers must pre-check length when 0 is
// not an acceptable answer.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(n-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower < 0 {
		lower = 0
	}
	if upper > n-1 {
		upper = n - 1
	}
	if lower == upper {
		return sorted[lower]
	}

	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// roundTo keeps d decimal places, mirroring display rounding elsewhere.
func roundTo(v float64, d int) float64 {
	pow := math.Pow(10, float64(d))
	return math.Round(v*pow) / pow
}
