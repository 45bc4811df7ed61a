package schema_test

import (
	"testing"

	"github.com/huangsam/peerscore/schema"
	"github.com/stretchr/testify/assert"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		expected string
	}{
		{"Leader Score Upper", 100.0, "Leader"},
		{"Leader Score Lower", 80.0, "Leader"},
		{"Strong Score Upper", 79.9, "Strong"},
		{"Strong Score Lower", 60.0, "Strong"},
		{"Average Score Upper", 59.9, "Average"},
		{"Average Score Lower", 40.0, "Average"},
		{"Laggard Score Upper", 39.9, "Laggard"},
		{"Laggard Score Lower", 0.0, "Laggard"},
		{"Negative Score", -10.0, "Laggard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := schema.GetPlainLabel(tt.score)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestEnrichResults(t *testing.T) {
	results := []schema.ScoringResult{
		{CompanyID: "c1", FinalScore: 85.0},
		{CompanyID: "c2", FinalScore: 65.0},
		{CompanyID: "c3", FinalScore: 20.0},
	}

	enriched := schema.EnrichResults(results)

	assert.Len(t, enriched, 3)

	assert.Equal(t, 1, enriched[0].Rank)
	assert.Equal(t, "Leader", enriched[0].Label)
	assert.Equal(t, "c1", enriched[0].CompanyID)

	assert.Equal(t, 2, enriched[1].Rank)
	assert.Equal(t, "Strong", enriched[1].Label)

	assert.Equal(t, 3, enriched[2].Rank)
	assert.Equal(t, "Laggard", enriched[2].Label)
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in   string
		want schema.CompanyStatus
	}{
		{"producer", schema.ProducerStatus},
		{" Royalty ", schema.RoyaltyStatus},
		{"EXPLORER", schema.ExplorerStatus},
		{"developer", schema.DeveloperStatus},
		{"other", schema.OtherStatus},
		{"", schema.OtherStatus},
		{"streaming", schema.OtherStatus},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, schema.NormalizeStatus(tt.in))
		})
	}
}

func TestPeerScoresBlend(t *testing.T) {
	s := schema.PeerScores{
		Status:      schema.NormalizedScore{Score: 80},
		Valuation:   schema.NormalizedScore{Score: 60},
		Operational: schema.NormalizedScore{Score: 40},
	}
	assert.InDelta(t, 62.0, s.Blend(schema.DefaultPeerGroupWeights), 1e-9)
	assert.InDelta(t, 80.0, s.Blend(schema.PeerGroupWeights{Status: 100}), 1e-9)
	assert.InDelta(t, 0.0, s.Blend(schema.PeerGroupWeights{}), 1e-9)
	assert.InDelta(t, 100.0, schema.DefaultPeerGroupWeights.Total(), 1e-9)
}
