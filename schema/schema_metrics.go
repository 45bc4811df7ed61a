package schema

// MetricDefinition is one row of the metrics screen.
type MetricDefinition struct {
	Status         CompanyStatus `json:"status"`
	Theme          string        `json:"theme"`
	Key            string        `json:"key"`
	Label          string        `json:"label"`
	HigherIsBetter bool          `json:"higher_is_better"`
	Weight         float64       `json:"weight"`
	Scored         bool          `json:"scored"` // false when no rationale exists
}
