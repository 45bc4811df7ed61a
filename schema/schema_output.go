package schema

// Score label values.
const (
	LeaderLabel  = "Leader"
	StrongLabel  = "Strong"
	AverageLabel = "Average"
	LaggardLabel = "Laggard"
)

// EnrichedResult adds presentation data to a ScoringResult.
type EnrichedResult struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	ScoringResult
}

// GetPlainLabel returns a plain text label for a final score.
func GetPlainLabel(score float64) string {
	switch {
	case score >= 80:
		return LeaderLabel
	case score >= 60:
		return StrongLabel
	case score >= 40:
		return AverageLabel
	default:
		return LaggardLabel
	}
}

// EnrichResults adds overall rank and label to an already sorted result list.
func EnrichResults(results []ScoringResult) []EnrichedResult {
	output := make([]EnrichedResult, len(results))
	for i, r := range results {
		output[i] = EnrichedResult{
			Rank:          i + 1,
			Label:         GetPlainLabel(r.FinalScore),
			ScoringResult: r,
		}
	}
	return output
}

// PeerView is the display model of one company's peer groups.
type PeerView struct {
	CompanyID  string        `json:"company_id"`
	Name       string        `json:"name"`
	Status     CompanyStatus `json:"status"`
	PeerGroups PeerGroups    `json:"peer_groups"`
}
