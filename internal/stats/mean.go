package stats

// Mean reports the arithmetic mean with integer division.
type Mean struct{}

func (Mean) Policy() Policy { return PolicyMean }

func (Mean) Reduce(samples []uint64) Summary {
	sum := Summary{Policy: PolicyMean, Samples: len(samples), Unit: "ns/op"}
	if len(samples) == 0 {
		return sum
	}
	var total uint64
	for _, s := range samples {
		total += s
	}
	sum.Fields = []Field{{"mean", total / uint64(len(samples))}}
	sum.StdDev = stdDev(samples)
	return sum
}
