package schema

// ComparisonDetail holds one company's scores under two peer-weight profiles.
type ComparisonDetail struct {
	CompanyID   string        `json:"company_id"`
	Name        string        `json:"name"`
	Status      CompanyStatus `json:"status"`
	BaseScore   float64       `json:"base_score"`
	TargetScore float64       `json:"target_score"`
	DeltaScore  float64       `json:"delta_score"` // TargetScore - BaseScore
	BaseRank    int           `json:"base_rank"`
	TargetRank  int           `json:"target_rank"`
	DeltaRank   int           `json:"delta_rank"` // positive means moved up
}

// ComparisonSummary has high-level counts over all details.
type ComparisonSummary struct {
	MovedUp       int     `json:"moved_up"`
	MovedDown     int     `json:"moved_down"`
	Unchanged     int     `json:"unchanged"`
	NetScoreDelta float64 `json:"net_score_delta"`
	MaxAbsDelta   float64 `json:"max_abs_delta"`
}

// ComparisonResult is the output of comparing two peer-weight profiles.
type ComparisonResult struct {
	BaseWeights   PeerGroupWeights   `json:"base_weights"`
	TargetWeights PeerGroupWeights   `json:"target_weights"`
	Details       []ComparisonDetail `json:"details"`
	Summary       ComparisonSummary  `json:"summary"`
}
