// Package algo has the peer-group scoring engine: metric access, peer-group
// construction, statistical normalization, the two scoring phases and the
// final rankings.
package algo

import (
	"runtime"
	"slices"
	"sync"

	"github.com/huangsam/peerscore/schema"
	"go.uber.org/zap"
)

// Engine runs the two scoring phases. It holds no state between calls.
type Engine struct {
	logger  *zap.Logger
	workers int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithWorkers sets how many companies are precomputed concurrently.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// NewEngine returns an Engine with a no-op logger unless one is provided.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{logger: zap.NewNop(), workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Precompute is phase 1. It builds peer groups once and normalizes every
// qualifying (company, metric) pair against the three peer groups. A metric
// qualifies when it has a rationale for the company's resolved status and a
// non-nil raw value. Companies with no qualifying metric are dropped, and
// fewer than schema.MinPeerGroupSize companies yields an empty result.
func (e *Engine) Precompute(companies []schema.Company, configs schema.ScoringConfigs, rationales schema.RationaleTable) schema.Precomputed {
	unique, dropped := dedupeCompanies(companies)
	for _, id := range dropped {
		e.logger.Warn("Dropping duplicate company", zap.String("company_id", id))
	}
	if len(unique) < schema.MinPeerGroupSize {
		e.logger.Debug("Too few companies to precompute",
			zap.Int("companies", len(unique)),
			zap.Int("minimum", schema.MinPeerGroupSize))
		return schema.Precomputed{}
	}

	groups := BuildPeerGroups(unique)
	values := collectMetricValues(unique, configs)

	out := make([]schema.PrecomputedResult, len(unique))
	kept := make([]bool, len(unique))
	jobs := make(chan int, len(unique))
	var wg sync.WaitGroup

	for range min(e.workers, len(unique)) {
		wg.Go(func() {
			for i := range jobs {
				out[i], kept[i] = precomputeCompany(unique[i], groups[unique[i].ID], configs, rationales, values)
			}
		})
	}
	for i := range unique {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	results := make([]schema.PrecomputedResult, 0, len(unique))
	for i, r := range out {
		if !kept[i] {
			e.logger.Debug("Dropping company without scorable metrics", zap.String("company_id", unique[i].ID))
			continue
		}
		results = append(results, r)
	}
	if len(results) == 0 {
		return schema.Precomputed{}
	}

	return schema.Precomputed{
		Results:       results,
		RankingGroups: BuildPeerGroups(companiesOf(results)),
	}
}

// collectMetricValues resolves every configured metric for every company once.
func collectMetricValues(companies []schema.Company, configs schema.ScoringConfigs) map[string]map[string]*float64 {
	values := make(map[string]map[string]*float64)
	for _, themes := range configs {
		for _, weights := range themes {
			for key := range weights {
				if _, ok := values[key]; ok {
					continue
				}
				byID := make(map[string]*float64, len(companies))
				for _, c := range companies {
					byID[c.ID] = GetMetricValue(c, key)
				}
				values[key] = byID
			}
		}
	}
	return values
}

// precomputeCompany normalizes the qualifying metrics of one company.
// Themes and keys are visited in lexical order.
func precomputeCompany(
	c schema.Company,
	pg schema.PeerGroups,
	configs schema.ScoringConfigs,
	rationales schema.RationaleTable,
	values map[string]map[string]*float64,
) (schema.PrecomputedResult, bool) {
	cfg, resolved := ResolveStatusConfig(configs, StatusOf(c))
	result := schema.PrecomputedResult{Company: c, Status: resolved}

	for _, theme := range cfg.SortedThemes() {
		weights := cfg[theme]
		for _, key := range weights.SortedKeys() {
			rationale, ok := ResolveRationale(rationales, resolved, key)
			if !ok {
				continue
			}
			byID := values[key]
			raw := byID[c.ID]
			if raw == nil {
				continue
			}
			label := rationale.Label
			if label == "" {
				label = schema.HumanizeKey(key)
			}
			hib := rationale.HigherIsBetter
			result.Metrics = append(result.Metrics, schema.PrecomputedMetric{
				Key:            key,
				Theme:          theme,
				Label:          label,
				RawValue:       raw,
				HigherIsBetter: hib,
				Weight:         weights[key],
				Scores: schema.PeerScores{
					Status:      NormalizeValue(raw, hib, pick(byID, pg.Status)),
					Valuation:   NormalizeValue(raw, hib, pick(byID, pg.Valuation)),
					Operational: NormalizeValue(raw, hib, pick(byID, pg.Operational)),
				},
			})
		}
	}
	return result, len(result.Metrics) > 0
}

func pick(byID map[string]*float64, ids []string) []*float64 {
	picked := make([]*float64, len(ids))
	for i, id := range ids {
		picked[i] = byID[id]
	}
	return picked
}

func companiesOf(results []schema.PrecomputedResult) []schema.Company {
	companies := make([]schema.Company, len(results))
	for i, r := range results {
		companies[i] = r.Company
	}
	return companies
}

// ApplyWeights is phase 2. It re-blends cached peer scores with the live
// metric weights and peer-group weights, then ranks and sorts the results by
// final score. A metric missing from the live weights keeps its precompute
// weight, and a zero weight excludes the metric. It never touches peer-group
// construction or normalization, and it does not modify pre.
func (e *Engine) ApplyWeights(pre schema.Precomputed, liveWeights schema.ScoringConfigs, pw schema.PeerGroupWeights) []schema.ScoringResult {
	results := make([]schema.ScoringResult, 0, len(pre.Results))
	for _, r := range pre.Results {
		var totalWeight, totalContribution float64
		breakdown := make([]schema.MetricBreakdown, 0, len(r.Metrics))

		for _, m := range r.Metrics {
			w, ok := liveWeights.Lookup(r.Status, m.Theme, m.Key)
			if !ok {
				w = m.Weight
			}
			if w == 0 {
				continue
			}
			blended := m.Scores.Blend(pw)
			contribution := blended * w / 100
			totalWeight += w
			totalContribution += contribution
			breakdown = append(breakdown, schema.MetricBreakdown{
				Key:          m.Key,
				Theme:        m.Theme,
				Label:        m.Label,
				RawValue:     m.RawValue,
				Weight:       w,
				BlendedScore: blended,
				Contribution: contribution,
				Scores:       m.Scores,
			})
		}

		var final float64
		if totalWeight != 0 {
			final = totalContribution / totalWeight * 100
		}
		results = append(results, schema.ScoringResult{
			CompanyID:   r.Company.ID,
			Name:        r.Company.Name,
			Ticker:      r.Company.Ticker,
			Status:      StatusOf(r.Company),
			FinalScore:  final,
			TotalWeight: totalWeight,
			Breakdown:   breakdown,
		})
	}

	e.AddFinalRankings(results, pre.RankingGroups)
	slices.SortStableFunc(results, byScoreDesc)
	return results
}

// FilterPrecomputed keeps the precomputed results accepted by keep and
// rebuilds the ranking groups over the survivors. Cached peer scores are
// left as they were computed against the full universe.
func FilterPrecomputed(pre schema.Precomputed, keep func(schema.PrecomputedResult) bool) schema.Precomputed {
	var results []schema.PrecomputedResult
	for _, r := range pre.Results {
		if keep(r) {
			results = append(results, r)
		}
	}
	if len(results) == 0 {
		return schema.Precomputed{}
	}
	return schema.Precomputed{
		Results:       results,
		RankingGroups: BuildPeerGroups(companiesOf(results)),
	}
}

// ByStatus returns a FilterPrecomputed predicate matching any of the statuses.
func ByStatus(statuses ...schema.CompanyStatus) func(schema.PrecomputedResult) bool {
	return func(r schema.PrecomputedResult) bool {
		return slices.Contains(statuses, StatusOf(r.Company))
	}
}

// ByID returns a FilterPrecomputed predicate matching any of the company IDs.
func ByID(ids ...string) func(schema.PrecomputedResult) bool {
	return func(r schema.PrecomputedResult) bool {
		return slices.Contains(ids, r.Company.ID)
	}
}
