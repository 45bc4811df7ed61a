// Package schema has configs, models and constants for all parts of peerscore.
package schema

// Company is an investment target as supplied by a company source.
// Metrics live in Data and are addressed with dotted keys such as
// "financials.free_cash_flow". The engine never mutates a Company.
type Company struct {
	ID     string         `json:"id" yaml:"id"`
	Name   string         `json:"name" yaml:"name"`
	Ticker string         `json:"ticker,omitempty" yaml:"ticker,omitempty"`
	Status CompanyStatus  `json:"status" yaml:"status"`
	Data   map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// ThemeWeights maps a metric key to its weight within one theme.
type ThemeWeights map[string]float64

// StatusConfig maps a theme name to its metric weights.
type StatusConfig map[string]ThemeWeights

// ScoringConfigs holds one StatusConfig per company status.
type ScoringConfigs map[CompanyStatus]StatusConfig

// MetricRationale describes how a metric is read for a given status.
type MetricRationale struct {
	Label          string `json:"label"`
	HigherIsBetter bool   `json:"higher_is_better"`
	Description    string `json:"description,omitempty"`
}

// RationaleTable maps status -> metric key -> rationale.
type RationaleTable map[CompanyStatus]map[string]MetricRationale

// PeerGroupWeights are the user-controlled percentages used to blend the
// three peer-relative scores. They are not required to sum to 100.
type PeerGroupWeights struct {
	Status      float64 `json:"status"`
	Valuation   float64 `json:"valuation"`
	Operational float64 `json:"operational"`
}

// Total returns the sum of the three peer-group weights.
func (w PeerGroupWeights) Total() float64 {
	return w.Status + w.Valuation + w.Operational
}

// PeerGroups holds the three peer lists of a single company as company IDs.
type PeerGroups struct {
	Status           []string `json:"status"`
	Valuation        []string `json:"valuation"`   // self first, then up to MaxValuationPeers nearest
	Operational      []string `json:"operational"` // same (status, tier) bucket including self
	Tier             int      `json:"tier"`        // 1 best .. 3 worst, 0 when the status group was used instead
	OperationalScale float64  `json:"operational_scale"`
	BlendedValuation float64  `json:"blended_valuation"`
}

// PeerResult summarizes where a value sits within one peer group.
type PeerResult struct {
	Rank       int      `json:"rank"` // 0 when the group was too small
	PeerCount  int      `json:"peer_count"`
	Median     *float64 `json:"median"`
	Min        *float64 `json:"min,omitempty"`
	Mean       *float64 `json:"mean,omitempty"`
	Percentile float64  `json:"percentile"` // direction-adjusted
}

// NormalizedScore is the 0-100 score of a value against one peer group.
type NormalizedScore struct {
	Score float64    `json:"score"`
	Peer  PeerResult `json:"peer"`
}

// PeerScores holds one normalized score per peer-group family.
type PeerScores struct {
	Status      NormalizedScore `json:"status"`
	Valuation   NormalizedScore `json:"valuation"`
	Operational NormalizedScore `json:"operational"`
}

// Blend combines the three scores using percentage weights.
func (s PeerScores) Blend(w PeerGroupWeights) float64 {
	return s.Status.Score*w.Status/100 +
		s.Valuation.Score*w.Valuation/100 +
		s.Operational.Score*w.Operational/100
}

// PrecomputedMetric is the cached, weight-independent part of one (company, metric) pair.
type PrecomputedMetric struct {
	Key            string     `json:"key"`
	Theme          string     `json:"theme"`
	Label          string     `json:"label"`
	RawValue       *float64   `json:"raw_value"`
	HigherIsBetter bool       `json:"higher_is_better"`
	Weight         float64    `json:"weight"` // weight captured at precompute time
	Scores         PeerScores `json:"scores"`
}

// PrecomputedResult holds every qualifying metric of one company.
type PrecomputedResult struct {
	Company Company             `json:"company"`
	Status  CompanyStatus       `json:"status"` // status whose config was applied
	Metrics []PrecomputedMetric `json:"metrics"`
}

// Precomputed is the output of phase 1. RankingGroups are peer groups built
// over exactly the companies present in Results.
type Precomputed struct {
	Results       []PrecomputedResult   `json:"results"`
	RankingGroups map[string]PeerGroups `json:"ranking_groups"`
}

// Empty reports whether there is nothing to score.
func (p Precomputed) Empty() bool {
	return len(p.Results) == 0
}

// MetricBreakdown is the per-metric detail of a phase 2 result.
type MetricBreakdown struct {
	Key          string     `json:"key"`
	Theme        string     `json:"theme"`
	Label        string     `json:"label"`
	RawValue     *float64   `json:"raw_value"`
	Weight       float64    `json:"weight"`
	BlendedScore float64    `json:"blended_score"`
	Contribution float64    `json:"contribution"`
	Scores       PeerScores `json:"scores"`
}

// RankTuple is a 1-indexed position within a group of a given size.
type RankTuple struct {
	Rank  int `json:"rank"`
	Total int `json:"total"`
}

// ScoringResult is the phase 2 output for one company.
type ScoringResult struct {
	CompanyID       string            `json:"company_id"`
	Name            string            `json:"name"`
	Ticker          string            `json:"ticker,omitempty"`
	Status          CompanyStatus     `json:"status"`
	FinalScore      float64           `json:"final_score"`
	TotalWeight     float64           `json:"total_weight"`
	Breakdown       []MetricBreakdown `json:"breakdown"`
	StatusRank      RankTuple         `json:"status_rank"`
	ValuationRank   RankTuple         `json:"valuation_rank"`
	OperationalRank RankTuple         `json:"operational_rank"`
}
