package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// FuzzParsePeerWeights fuzzes the peer-weight parser with random input.
func FuzzParsePeerWeights(f *testing.F) {
	seeds := []string{
		"status:40,valuation:30,operational:30",
		"status:100",
		"valuation:-1",
		"operational:1e400",
		"status:10,status:20",
		"",
		":::",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, s string) {
		pw, err := ParsePeerWeights(s)
		if err != nil {
			return
		}
		for _, w := range []float64{pw.Status, pw.Valuation, pw.Operational} {
			assert.GreaterOrEqual(t, w, 0.0)
			assert.LessOrEqual(t, w, 100.0)
		}
	})
}

// FuzzParseMetricWeightOverride fuzzes single metric weight override entries.
func FuzzParseMetricWeightOverride(f *testing.F) {
	f.Add("producer.operations.costs.aisc_last_year:10")
	f.Add("other.valuation._calc_fcf_ev_yield:0")
	f.Add("x:y:z")
	f.Add("")

	f.Fuzz(func(t *testing.T, entry string) {
		_, theme, key, w, err := ParseMetricWeightOverride(entry)
		if err != nil {
			return
		}
		assert.NotEmpty(t, theme)
		assert.NotEmpty(t, key)
		assert.GreaterOrEqual(t, w, 0.0)
	})
}
