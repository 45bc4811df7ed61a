package algo

import (
	"maps"
	"slices"
	"testing"

	"github.com/huangsam/peerscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func defaultPrecompute(companies []schema.Company) schema.Precomputed {
	return NewEngine().Precompute(companies, schema.GetDefaultScoringConfigs(), schema.GetDefaultRationales())
}

func findResult(t *testing.T, pre schema.Precomputed, id string) schema.PrecomputedResult {
	t.Helper()
	for _, r := range pre.Results {
		if r.Company.ID == id {
			return r
		}
	}
	require.Failf(t, "missing result", "company %s not in precompute", id)
	return schema.PrecomputedResult{}
}

func findMetric(t *testing.T, r schema.PrecomputedResult, key string) schema.PrecomputedMetric {
	t.Helper()
	for _, m := range r.Metrics {
		if m.Key == key {
			return m
		}
	}
	require.Failf(t, "missing metric", "metric %s not in %s", key, r.Company.ID)
	return schema.PrecomputedMetric{}
}

func TestPrecomputeTooFewCompanies(t *testing.T) {
	pre := defaultPrecompute(universe(4, 0))
	assert.True(t, pre.Empty())
	assert.Nil(t, pre.RankingGroups)

	pre = defaultPrecompute(nil)
	assert.True(t, pre.Empty())
}

func TestPrecomputeDuplicatesCountOnce(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	e := NewEngine(WithLogger(zap.New(core)))

	companies := universe(4, 0)
	companies = append(companies, companies[0])
	pre := e.Precompute(companies, schema.GetDefaultScoringConfigs(), schema.GetDefaultRationales())

	assert.True(t, pre.Empty(), "four unique companies are not enough")
	assert.Equal(t, 1, logs.FilterMessage("Dropping duplicate company").Len())
}

func TestPrecomputeLowestCostScoresHighest(t *testing.T) {
	companies := make([]schema.Company, 20)
	for i := range companies {
		c := scaled(string(rune('a'+i)), schema.ProducerStatus, 100)
		c.Data["costs"] = map[string]any{"aisc_last_year": 800 + float64(i)*1200/19}
		companies[i] = c
	}
	configs := schema.ScoringConfigs{schema.ProducerStatus: {"operations": {schema.KeyAISC: 10}}}
	rationales := schema.RationaleTable{schema.ProducerStatus: {schema.KeyAISC: {Label: "AISC", HigherIsBetter: false}}}

	pre := NewEngine().Precompute(companies, configs, rationales)
	require.Len(t, pre.Results, 20)

	best := findMetric(t, findResult(t, pre, "a"), schema.KeyAISC)
	assert.InDelta(t, 800.0, *best.RawValue, 1e-9)
	assert.Equal(t, 1, best.Scores.Status.Peer.Rank)
	assert.Equal(t, 20, best.Scores.Status.Peer.PeerCount)
	for _, r := range pre.Results[1:] {
		m := findMetric(t, r, schema.KeyAISC)
		assert.Greater(t, best.Scores.Status.Score, m.Scores.Status.Score, r.Company.ID)
	}
}

func TestPrecomputeQualifyingMetrics(t *testing.T) {
	companies := universe(6, 0)
	companies = append(companies, schema.Company{ID: "bare", Status: schema.ProducerStatus})

	rationales := schema.GetDefaultRationales()
	delete(rationales[schema.ProducerStatus], schema.KeyCash)

	pre := NewEngine().Precompute(companies, schema.GetDefaultScoringConfigs(), rationales)
	require.Len(t, pre.Results, 6)
	assert.NotContains(t, pre.RankingGroups, "bare")

	for _, r := range pre.Results {
		assert.Equal(t, schema.ProducerStatus, r.Status)
		for _, m := range r.Metrics {
			assert.NotEqual(t, schema.KeyCash, m.Key, "metric without rationale is skipped")
			assert.NotNil(t, m.RawValue)
		}
	}
}

func TestPrecomputeSkipsNullMetrics(t *testing.T) {
	companies := universe(6, 0)
	delete(companies[2].Data, "costs")

	pre := defaultPrecompute(companies)
	r := findResult(t, pre, companies[2].ID)
	for _, m := range r.Metrics {
		assert.NotEqual(t, schema.KeyAISC, m.Key)
	}

	other := findMetric(t, findResult(t, pre, companies[0].ID), schema.KeyAISC)
	assert.Equal(t, 5, other.Scores.Status.Peer.PeerCount)
}

func TestPrecomputeFallsBackToOtherConfig(t *testing.T) {
	configs := schema.ScoringConfigs{schema.OtherStatus: {"valuation": {schema.KeyMarketCap: 10}}}
	rationales := schema.RationaleTable{schema.OtherStatus: {schema.KeyMarketCap: {Label: "Market Cap", HigherIsBetter: true}}}

	pre := NewEngine().Precompute(universe(6, 0), configs, rationales)
	require.Len(t, pre.Results, 6)
	for _, r := range pre.Results {
		assert.Equal(t, schema.OtherStatus, r.Status)
		require.Len(t, r.Metrics, 1)
		assert.Equal(t, schema.KeyMarketCap, r.Metrics[0].Key)
		assert.Equal(t, 10.0, r.Metrics[0].Weight)
	}
}

func TestPrecomputeMetricOrder(t *testing.T) {
	pre := defaultPrecompute(universe(6, 0))
	r := pre.Results[0]

	themes := make([]string, 0, len(r.Metrics))
	for _, m := range r.Metrics {
		if len(themes) == 0 || themes[len(themes)-1] != m.Theme {
			themes = append(themes, m.Theme)
		}
	}
	assert.True(t, slices.IsSorted(themes))
	assert.Equal(t, "financial_health", r.Metrics[0].Theme)
	assert.Equal(t, schema.CalcFCFMargin, r.Metrics[0].Key)
}

func TestPrecomputeMissingLabelIsHumanized(t *testing.T) {
	configs := schema.ScoringConfigs{schema.ProducerStatus: {"ops": {schema.KeyCurrentProduction: 10}}}
	rationales := schema.RationaleTable{schema.ProducerStatus: {schema.KeyCurrentProduction: {HigherIsBetter: true}}}

	pre := NewEngine().Precompute(universe(5, 0), configs, rationales)
	require.NotEmpty(t, pre.Results)
	assert.Equal(t, "Current Production Total Aueq Koz", pre.Results[0].Metrics[0].Label)
}

func TestPrecomputeWorkersAreDeterministic(t *testing.T) {
	companies := universe(25, 12)
	configs, rationales := schema.GetDefaultScoringConfigs(), schema.GetDefaultRationales()

	serial := NewEngine(WithWorkers(1)).Precompute(companies, configs, rationales)
	parallel := NewEngine(WithWorkers(8)).Precompute(companies, configs, rationales)
	assert.Equal(t, serial, parallel)
	assert.Equal(t, ids(companies), ids(companiesOf(parallel.Results)))
}

func TestApplyWeightsFinalScore(t *testing.T) {
	configs := schema.ScoringConfigs{schema.ProducerStatus: {"operations": {schema.KeyAISC: 25}}}
	rationales := schema.RationaleTable{schema.ProducerStatus: {schema.KeyAISC: {HigherIsBetter: false}}}
	e := NewEngine()
	pre := e.Precompute(universe(8, 0), configs, rationales)

	results := e.ApplyWeights(pre, configs, schema.PeerGroupWeights{Status: 100})
	require.Len(t, results, 8)
	for _, r := range results {
		require.Len(t, r.Breakdown, 1)
		b := r.Breakdown[0]
		assert.InDelta(t, b.Scores.Status.Score, b.BlendedScore, 1e-9)
		assert.InDelta(t, b.BlendedScore*25/100, b.Contribution, 1e-9)
		assert.InDelta(t, b.BlendedScore, r.FinalScore, 1e-9)
		assert.Equal(t, 25.0, r.TotalWeight)
	}

	// AISC falls as the index grows, so the last producer is cheapest.
	assert.Equal(t, "p07", results[0].CompanyID)
	assert.True(t, slices.IsSortedFunc(results, byScoreDesc))
}

func TestApplyWeightsUnnormalizedPeerWeights(t *testing.T) {
	e := NewEngine()
	pre := defaultPrecompute(universe(8, 0))
	configs := schema.GetDefaultScoringConfigs()

	full := e.ApplyWeights(pre, configs, schema.PeerGroupWeights{Status: 100})
	half := e.ApplyWeights(pre, configs, schema.PeerGroupWeights{Status: 50})
	for i := range full {
		assert.InDelta(t, full[i].FinalScore/2, half[i].FinalScore, 1e-9)
	}
}

func TestApplyWeightsLiveWeights(t *testing.T) {
	e := NewEngine()
	pre := defaultPrecompute(universe(8, 0))

	t.Run("zero weight removes metric", func(t *testing.T) {
		live := schema.GetDefaultScoringConfigs()
		live.Set(schema.ProducerStatus, "operations", schema.KeyAISC, 0)
		for _, r := range e.ApplyWeights(pre, live, schema.DefaultPeerGroupWeights) {
			for _, b := range r.Breakdown {
				assert.NotEqual(t, schema.KeyAISC, b.Key)
			}
		}
	})

	t.Run("missing weight keeps precompute weight", func(t *testing.T) {
		for _, r := range e.ApplyWeights(pre, schema.ScoringConfigs{}, schema.DefaultPeerGroupWeights) {
			var total float64
			for _, m := range findResult(t, pre, r.CompanyID).Metrics {
				total += m.Weight
			}
			assert.InDelta(t, total, r.TotalWeight, 1e-9)
		}
	})

	t.Run("changed weight is used", func(t *testing.T) {
		live := schema.GetDefaultScoringConfigs()
		live.Set(schema.ProducerStatus, "operations", schema.KeyAISC, 60)
		r := e.ApplyWeights(pre, live, schema.DefaultPeerGroupWeights)[0]
		for _, b := range r.Breakdown {
			if b.Key == schema.KeyAISC {
				assert.Equal(t, 60.0, b.Weight)
			}
		}
	})

	t.Run("all weights zero", func(t *testing.T) {
		live := schema.GetDefaultScoringConfigs()
		for _, themes := range live {
			for _, weights := range themes {
				for key := range weights {
					weights[key] = 0
				}
			}
		}
		for _, r := range e.ApplyWeights(pre, live, schema.DefaultPeerGroupWeights) {
			assert.Equal(t, 0.0, r.FinalScore)
			assert.Equal(t, 0.0, r.TotalWeight)
			assert.Empty(t, r.Breakdown)
		}
	})
}

// TestApplyWeightsZeroWeightIgnoresPresence compares two universes that differ
// only in whether a zero-weight metric is present.
func TestApplyWeightsZeroWeightIgnoresPresence(t *testing.T) {
	configs := schema.ScoringConfigs{schema.ProducerStatus: {
		"operations":       {schema.KeyAISC: 20},
		"financial_health": {schema.KeyCash: 0},
	}}
	rationales := schema.GetDefaultRationales()

	with := universe(8, 0)
	without := universe(8, 0)
	fin := maps.Clone(without[3].Data["financials"].(map[string]any))
	delete(fin, "cash_value")
	without[3].Data["financials"] = fin

	e := NewEngine()
	a := e.ApplyWeights(e.Precompute(with, configs, rationales), configs, schema.DefaultPeerGroupWeights)
	b := e.ApplyWeights(e.Precompute(without, configs, rationales), configs, schema.DefaultPeerGroupWeights)

	require.Len(t, b, len(a))
	for i := range a {
		assert.Equal(t, a[i].CompanyID, b[i].CompanyID)
		assert.InDelta(t, a[i].FinalScore, b[i].FinalScore, 1e-9)
	}
}

func TestApplyWeightsIsPure(t *testing.T) {
	e := NewEngine()
	companies := universe(12, 6)
	pre := defaultPrecompute(companies)
	configs := schema.GetDefaultScoringConfigs()

	statusOnly := e.ApplyWeights(pre, configs, schema.PeerGroupWeights{Status: 100})
	valuationOnly := e.ApplyWeights(pre, configs, schema.PeerGroupWeights{Valuation: 100})
	again := e.ApplyWeights(pre, configs, schema.PeerGroupWeights{Status: 100})

	assert.Equal(t, statusOnly, again)
	assert.Equal(t, defaultPrecompute(companies), pre, "precompute is not modified")

	byID := make(map[string]float64, len(statusOnly))
	for _, r := range statusOnly {
		byID[r.CompanyID] = r.FinalScore
	}
	differs := false
	for _, r := range valuationOnly {
		if byID[r.CompanyID] != r.FinalScore {
			differs = true
		}
	}
	assert.True(t, differs, "peer weights change final scores without a new precompute")
}

func TestApplyWeightsEmpty(t *testing.T) {
	results := NewEngine().ApplyWeights(schema.Precomputed{}, nil, schema.DefaultPeerGroupWeights)
	assert.Empty(t, results)
}

func TestApplyWeightsRanks(t *testing.T) {
	e := NewEngine()
	pre := defaultPrecompute(universe(12, 6))
	results := e.ApplyWeights(pre, schema.GetDefaultScoringConfigs(), schema.DefaultPeerGroupWeights)

	statusSeen := map[schema.CompanyStatus][]int{}
	for _, r := range results {
		pg := pre.RankingGroups[r.CompanyID]
		assert.Equal(t, len(pg.Valuation), r.ValuationRank.Total)
		assert.Equal(t, len(pg.Operational), r.OperationalRank.Total)
		assert.GreaterOrEqual(t, r.ValuationRank.Rank, 1)
		assert.LessOrEqual(t, r.ValuationRank.Rank, r.ValuationRank.Total)
		statusSeen[r.Status] = append(statusSeen[r.Status], r.StatusRank.Rank)
	}
	// Results are sorted, so status ranks count up within each status.
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, statusSeen[schema.ProducerStatus])
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, statusSeen[schema.ExplorerStatus])
}

func TestFilterPrecomputed(t *testing.T) {
	pre := defaultPrecompute(universe(12, 6))

	explorers := FilterPrecomputed(pre, ByStatus(schema.ExplorerStatus))
	require.Len(t, explorers.Results, 6)
	survivors := ids(companiesOf(explorers.Results))
	for id, pg := range explorers.RankingGroups {
		assert.Contains(t, survivors, id)
		assert.Subset(t, survivors, pg.Status)
		assert.Subset(t, survivors, pg.Valuation)
		assert.Subset(t, survivors, pg.Operational)
	}

	picked := FilterPrecomputed(pre, ByID("p01", "e02", "missing"))
	assert.Equal(t, []string{"p01", "e02"}, ids(companiesOf(picked.Results)))

	none := FilterPrecomputed(pre, ByStatus(schema.RoyaltyStatus))
	assert.True(t, none.Empty())
}

func BenchmarkPrecompute(b *testing.B) {
	companies := universe(150, 150)
	configs, rationales := schema.GetDefaultScoringConfigs(), schema.GetDefaultRationales()
	e := NewEngine()
	for b.Loop() {
		e.Precompute(companies, configs, rationales)
	}
}

func BenchmarkApplyWeights(b *testing.B) {
	e := NewEngine()
	configs := schema.GetDefaultScoringConfigs()
	pre := e.Precompute(universe(150, 150), configs, schema.GetDefaultRationales())
	for b.Loop() {
		e.ApplyWeights(pre, configs, schema.DefaultPeerGroupWeights)
	}
}
