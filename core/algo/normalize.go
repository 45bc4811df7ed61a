package algo

import (
	"math"
	"slices"

	"github.com/huangsam/peerscore/schema"
)

// sigmoidSteepness controls how sharply scores separate around the median.
const sigmoidSteepness = 8.0

// NeutralResult is returned whenever a value cannot be judged against its peers.
func NeutralResult(peerCount int) schema.NormalizedScore {
	return schema.NormalizedScore{
		Score: schema.NeutralScore,
		Peer: schema.PeerResult{
			Rank:       0,
			PeerCount:  peerCount,
			Median:     nil,
			Percentile: 0.5,
		},
	}
}

// NormalizeValue scores a raw value against the values of its peers on a
// 0-100 scale. Nil or non-finite peer values are ignored. With a nil value
// or fewer than schema.MinPeerGroupSize valid peer values the neutral result
// is returned.
func NormalizeValue(value *float64, higherIsBetter bool, peers []*float64) schema.NormalizedScore {
	valid := make([]float64, 0, len(peers))
	for _, p := range peers {
		if p != nil && !math.IsNaN(*p) && !math.IsInf(*p, 0) {
			valid = append(valid, *p)
		}
	}
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) || len(valid) < schema.MinPeerGroupSize {
		return NeutralResult(len(valid))
	}
	slices.Sort(valid)

	v := *value
	minV, medianV, meanV := describe(valid)

	percentile := percentileRank(v, valid)
	if !higherIsBetter {
		percentile = 1 - percentile
	}

	return schema.NormalizedScore{
		Score: sigmoid(percentile),
		Peer: schema.PeerResult{
			Rank:       rankAmong(v, valid, higherIsBetter),
			PeerCount:  len(valid),
			Median:     &medianV,
			Min:        &minV,
			Mean:       &meanV,
			Percentile: percentile,
		},
	}
}

// describe returns min, median and mean of an ascending, non-empty slice.
func describe(sorted []float64) (float64, float64, float64) {
	n := len(sorted)
	var median float64
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	} else {
		median = sorted[n/2]
	}
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	return sorted[0], median, sum / float64(n)
}

// percentileRank is the mid-rank percentile of v within an ascending slice,
// clamped to 0 at the minimum and 1 at the maximum. Values equal to v count
// as half below it rather than not at all, so a value at the median of an
// odd-sized peer set lands on exactly 0.5 and scores 50.
func percentileRank(v float64, sorted []float64) float64 {
	minV, maxV := sorted[0], sorted[len(sorted)-1]
	switch {
	case minV == maxV:
		return 0.5
	case v <= minV:
		return 0
	case v >= maxV:
		return 1
	}
	var less, equal int
	for _, p := range sorted {
		if p < v {
			less++
		} else if p == v {
			equal++
		}
	}
	return (float64(less) + 0.5*float64(equal)) / float64(len(sorted))
}

func sigmoid(percentile float64) float64 {
	return 100 / (1 + math.Exp(-sigmoidSteepness*(percentile-0.5)))
}

// rankAmong returns the 1-indexed position of v with better values first.
func rankAmong(v float64, sorted []float64, higherIsBetter bool) int {
	ordered := slices.Clone(sorted)
	if higherIsBetter {
		slices.Reverse(ordered)
	}
	if idx := slices.Index(ordered, v); idx >= 0 {
		return idx + 1
	}
	better := 0
	for _, p := range ordered {
		if (higherIsBetter && p > v) || (!higherIsBetter && p < v) {
			better++
		}
	}
	return better + 1
}
