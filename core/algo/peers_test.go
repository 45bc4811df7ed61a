package algo

import (
	"fmt"
	"testing"

	"github.com/huangsam/peerscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scaled(id string, status schema.CompanyStatus, production float64) schema.Company {
	return schema.Company{
		ID:     id,
		Status: status,
		Data: map[string]any{
			"production": map[string]any{"current_production_total_aueq_koz": production},
		},
	}
}

func valued(id string, marketCap, ev float64) schema.Company {
	return schema.Company{
		ID:     id,
		Status: schema.ProducerStatus,
		Data: map[string]any{
			"financials": map[string]any{"market_cap_value": marketCap, "enterprise_value_value": ev},
		},
	}
}

func TestOperationalScale(t *testing.T) {
	tests := []struct {
		name    string
		company schema.Company
		want    float64
	}{
		{
			name: "producer",
			company: schema.Company{Status: schema.ProducerStatus, Data: map[string]any{
				"production":        map[string]any{"current_production_total_aueq_koz": 100.0},
				"mineral_estimates": map[string]any{"reserves_total_aueq_moz": 10.0},
				"financials":        map[string]any{"market_cap_value": 1000e6},
			}},
			want: 0.4*100 + 0.3*10 + 0.3*1000,
		},
		{
			name: "explorer",
			company: schema.Company{Status: schema.ExplorerStatus, Data: map[string]any{
				"mineral_estimates": map[string]any{"resources_total_aueq_moz": 5.0},
				"financials":        map[string]any{"cash_value": 20e6},
			}},
			want: 0.6*5 + 0.4*20,
		},
		{
			name: "royalty",
			company: schema.Company{Status: schema.RoyaltyStatus, Data: map[string]any{
				"royalty_portfolio": map[string]any{"producing_assets_count": 10, "total_assets_count": 40},
				"production":        map[string]any{"attributable_production_aueq_koz": 50.0},
			}},
			want: 0.5*10 + 0.3*40 + 0.2*50,
		},
		{
			name: "developer",
			company: schema.Company{Status: schema.DeveloperStatus, Data: map[string]any{
				"mineral_estimates": map[string]any{"reserves_total_aueq_moz": 2.0},
				"production":        map[string]any{"future_production_total_aueq_koz": 150.0},
				"financials":        map[string]any{"market_cap_value": 300e6},
			}},
			want: 0.4*2 + 0.4*150 + 0.2*300,
		},
		{
			name: "unknown status uses other",
			company: schema.Company{Status: "streamer", Data: map[string]any{
				"financials": map[string]any{"market_cap_value": 100e6, "enterprise_value_value": 300e6},
			}},
			want: 200,
		},
		{
			name:    "missing inputs count as zero",
			company: schema.Company{Status: schema.ProducerStatus},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, OperationalScale(tt.company), 1e-9)
		})
	}
}

func TestBlendedValuation(t *testing.T) {
	assert.InDelta(t, 150.0, BlendedValuation(valued("a", 100, 200)), 1e-9)
	assert.InDelta(t, 50.0, BlendedValuation(schema.Company{Data: map[string]any{
		"financials": map[string]any{"market_cap_value": 100.0},
	}}), 1e-9)
	assert.InDelta(t, 0.0, BlendedValuation(valued("n", 10, -500)), 1e-9)
}

func TestBuildPeerGroupsStatusPartition(t *testing.T) {
	companies := []schema.Company{
		scaled("p1", schema.ProducerStatus, 1),
		scaled("x1", "", 1),
		scaled("e1", schema.ExplorerStatus, 1),
		scaled("p2", schema.ProducerStatus, 2),
		scaled("x2", "mystery", 1),
	}
	groups := BuildPeerGroups(companies)

	require.Len(t, groups, 5)
	assert.Equal(t, []string{"p1", "p2"}, groups["p1"].Status)
	assert.Equal(t, []string{"p1", "p2"}, groups["p2"].Status)
	assert.Equal(t, []string{"e1"}, groups["e1"].Status)
	assert.Equal(t, []string{"x1", "x2"}, groups["x2"].Status)
}

func TestBuildPeerGroupsTiers(t *testing.T) {
	companies := []schema.Company{
		scaled("p4", schema.ProducerStatus, 300),
		scaled("p1", schema.ProducerStatus, 600),
		scaled("p6", schema.ProducerStatus, 100),
		scaled("p2", schema.ProducerStatus, 500),
		scaled("p5", schema.ProducerStatus, 200),
		scaled("p3", schema.ProducerStatus, 400),
	}
	groups := BuildPeerGroups(companies)

	tests := []struct {
		id          string
		tier        int
		operational []string
	}{
		{"p1", 1, []string{"p1", "p2"}},
		{"p2", 1, []string{"p1", "p2"}},
		{"p3", 2, []string{"p3", "p4"}},
		{"p4", 2, []string{"p3", "p4"}},
		{"p5", 3, []string{"p5", "p6"}},
		{"p6", 3, []string{"p5", "p6"}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.tier, groups[tt.id].Tier)
			assert.Equal(t, tt.operational, groups[tt.id].Operational)
		})
	}
}

func TestBuildPeerGroupsUnevenTiers(t *testing.T) {
	var companies []schema.Company
	for i := range 7 {
		companies = append(companies, scaled(fmt.Sprintf("p%d", i), schema.ProducerStatus, float64(100-i)))
	}
	groups := BuildPeerGroups(companies)

	// 7 members split 3/2/2
	assert.Equal(t, 1, groups["p2"].Tier)
	assert.Equal(t, 2, groups["p3"].Tier)
	assert.Equal(t, 2, groups["p4"].Tier)
	assert.Equal(t, 3, groups["p5"].Tier)
	assert.Equal(t, []string{"p5", "p6"}, groups["p6"].Operational)
}

func TestBuildPeerGroupsEveryTierFilled(t *testing.T) {
	tests := []struct {
		size  int
		sizes [3]int
	}{
		{3, [3]int{1, 1, 1}},
		{4, [3]int{2, 1, 1}},
		{5, [3]int{2, 2, 1}},
		{7, [3]int{3, 2, 2}},
		{10, [3]int{4, 3, 3}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d members", tt.size), func(t *testing.T) {
			var companies []schema.Company
			for i := range tt.size {
				companies = append(companies, scaled(fmt.Sprintf("p%02d", i), schema.ProducerStatus, float64(1000-i)))
			}
			groups := BuildPeerGroups(companies)

			var got [3]int
			for _, pg := range groups {
				require.GreaterOrEqual(t, pg.Tier, 1)
				got[pg.Tier-1]++
				assert.Len(t, pg.Operational, tt.sizes[pg.Tier-1])
			}
			assert.Equal(t, tt.sizes, got)
		})
	}
}

func TestBuildPeerGroupsTierTiesBrokenByID(t *testing.T) {
	companies := []schema.Company{
		scaled("c", schema.ProducerStatus, 50),
		scaled("b", schema.ProducerStatus, 50),
		scaled("a", schema.ProducerStatus, 50),
	}
	groups := BuildPeerGroups(companies)

	assert.Equal(t, 1, groups["a"].Tier)
	assert.Equal(t, 2, groups["b"].Tier)
	assert.Equal(t, 3, groups["c"].Tier)
}

func TestBuildPeerGroupsSmallStatusFallsBack(t *testing.T) {
	companies := []schema.Company{
		scaled("e1", schema.ExplorerStatus, 1),
		scaled("e2", schema.ExplorerStatus, 2),
	}
	groups := BuildPeerGroups(companies)

	assert.Equal(t, 0, groups["e1"].Tier)
	assert.Equal(t, groups["e1"].Status, groups["e1"].Operational)
}

func TestBuildPeerGroupsValuation(t *testing.T) {
	companies := universe(15, 4)
	groups := BuildPeerGroups(companies)

	for _, c := range companies {
		pg := groups[c.ID]
		require.NotEmpty(t, pg.Valuation)
		assert.Equal(t, c.ID, pg.Valuation[0], "self comes first")
		assert.LessOrEqual(t, len(pg.Valuation), schema.MaxValuationPeers+1)
		assert.Subset(t, pg.Status, pg.Valuation, "valuation peers share the status")
		assert.NotContains(t, pg.Valuation[1:], c.ID)
	}

	// 15 producers leave 14 candidates, trimmed to 10.
	assert.Len(t, groups["p00"].Valuation, schema.MaxValuationPeers+1)
	// 4 explorers leave 3 candidates.
	assert.Len(t, groups["e00"].Valuation, 4)
}

func TestBuildPeerGroupsValuationOrdering(t *testing.T) {
	companies := []schema.Company{
		valued("ref", 100, 100),
		valued("far", 10000, 10000),
		valued("near", 110, 110),
		valued("mid", 400, 400),
	}
	groups := BuildPeerGroups(companies)
	assert.Equal(t, []string{"ref", "near", "mid", "far"}, groups["ref"].Valuation)
}

// TestNearestValuationExcludesFarthestFirst grows the pool around a reference
// and checks the company farther in log space drops out before the nearer one.
func TestNearestValuationExcludesFarthestFirst(t *testing.T) {
	ref := valued("ref", 100e6, 100e6)
	closer := valued("closer", 500e6, 100e6)
	farther := valued("farther", 5000e6, 100e6)

	fillers := make([]schema.Company, 0, 10)
	for i := 1; i <= 10; i++ {
		v := float64(100+i) * 1e6
		fillers = append(fillers, valued(fmt.Sprintf("f%02d", i), v, v))
	}

	companies := append([]schema.Company{ref, closer, farther}, fillers[:8]...)
	peers := BuildPeerGroups(companies)["ref"].Valuation
	assert.Contains(t, peers, "closer")
	assert.Contains(t, peers, "farther")

	companies = append([]schema.Company{ref, closer, farther}, fillers[:9]...)
	peers = BuildPeerGroups(companies)["ref"].Valuation
	assert.Contains(t, peers, "closer")
	assert.NotContains(t, peers, "farther")

	companies = append([]schema.Company{ref, closer, farther}, fillers...)
	peers = BuildPeerGroups(companies)["ref"].Valuation
	assert.NotContains(t, peers, "closer")
	assert.NotContains(t, peers, "farther")
}

func TestBuildPeerGroupsDuplicateIDs(t *testing.T) {
	companies := []schema.Company{
		scaled("a", schema.ProducerStatus, 1),
		scaled("a", schema.ExplorerStatus, 1),
		scaled("b", schema.ProducerStatus, 1),
	}
	groups := BuildPeerGroups(companies)

	require.Len(t, groups, 2)
	assert.Equal(t, []string{"a", "b"}, groups["a"].Status)
}

func TestBuildPeerGroupsEmpty(t *testing.T) {
	assert.Empty(t, BuildPeerGroups(nil))
}

func BenchmarkBuildPeerGroups(b *testing.B) {
	companies := universe(200, 200)
	for b.Loop() {
		BuildPeerGroups(companies)
	}
}
