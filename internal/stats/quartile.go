package stats

import "slices"

// RoundTrials rounds n up to the next multiple of four, the sample count the
// quartile indexing needs.
func RoundTrials(n int) int {
	if n <= 0 {
		return 4
	}
	return (n + 3) / 4 * 4
}

// Quartile computes min, q1, median, q3 and max.
//
// The quartile positions average two neighbouring order statistics:
// q1 = avg(s[n/4], s[n/4+1]), median = avg(s[n/2-1], s[n/2]),
// q3 = avg(s[n-n/4-1], s[n-n/4]). The indexing is exact only when n is a
// multiple of four; callers round the trial count with RoundTrials. For other
// lengths the quartiles are taken over the first n - n%4 sorted samples.
type Quartile struct{}

func (Quartile) Policy() Policy { return PolicyQuartile }

func (Quartile) Reduce(samples []uint64) Summary {
	sum := Summary{Policy: PolicyQuartile, Samples: len(samples)}
	if len(samples) == 0 {
		return sum
	}

	s := slices.Clone(samples)
	slices.Sort(s)
	sum.StdDev = stdDev(s)

	n := len(s) / 4 * 4
	if n == 0 {
		sum.Fields = []Field{
			{"min", s[0]}, {"q1", s[0]}, {"median", s[len(s)/2]}, {"q3", s[len(s)-1]}, {"max", s[len(s)-1]},
		}
		return sum
	}

	sum.Fields = []Field{
		{"min", s[0]},
		{"q1", avg(s[n/4], s[n/4+1])},
		{"median", avg(s[n/2-1], s[n/2])},
		{"q3", avg(s[n-n/4-1], s[n-n/4])},
		{"max", s[len(s)-1]},
	}
	return sum
}

func avg(a, b uint64) uint64 {
	return (a + b) / 2
}
