package algo

import (
	"testing"

	"github.com/huangsam/peerscore/schema"
	"github.com/stretchr/testify/assert"
)

func TestResolveStatusConfig(t *testing.T) {
	configs := schema.ScoringConfigs{
		schema.ProducerStatus: {"ops": {"x": 1}},
		schema.OtherStatus:    {"val": {"y": 2}},
	}

	tests := []struct {
		name     string
		status   schema.CompanyStatus
		resolved schema.CompanyStatus
		theme    string
	}{
		{"own config", schema.ProducerStatus, schema.ProducerStatus, "ops"},
		{"known status without config", schema.RoyaltyStatus, schema.OtherStatus, "val"},
		{"unknown status", "streamer", schema.OtherStatus, "val"},
		{"other itself", schema.OtherStatus, schema.OtherStatus, "val"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, resolved := ResolveStatusConfig(configs, tt.status)
			assert.Equal(t, tt.resolved, resolved)
			assert.Contains(t, cfg, tt.theme)
		})
	}

	cfg, resolved := ResolveStatusConfig(schema.ScoringConfigs{}, schema.ProducerStatus)
	assert.Nil(t, cfg)
	assert.Equal(t, schema.OtherStatus, resolved)
}

func TestResolveRationale(t *testing.T) {
	rationales := schema.GetDefaultRationales()

	r, ok := ResolveRationale(rationales, schema.ProducerStatus, schema.KeyAISC)
	assert.True(t, ok)
	assert.False(t, r.HigherIsBetter)

	_, ok = ResolveRationale(rationales, schema.ExplorerStatus, schema.KeyAISC)
	assert.False(t, ok)

	_, ok = ResolveRationale(rationales, "unknown", schema.KeyAISC)
	assert.False(t, ok)
}
