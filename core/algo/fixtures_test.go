package algo

import (
	"fmt"

	"github.com/huangsam/peerscore/schema"
)

func ptr(v float64) *float64 { return &v }

// producer builds a producer with the fields used by the default producer config.
func producer(id string, i int) schema.Company {
	f := float64(i)
	return schema.Company{
		ID:     id,
		Name:   "Producer " + id,
		Status: schema.ProducerStatus,
		Data: map[string]any{
			"financials": map[string]any{
				"market_cap_value":       (500 + f*100) * 1e6,
				"enterprise_value_value": (550 + f*90) * 1e6,
				"free_cash_flow":         (10 + f*3) * 1e6,
				"revenue_value":          (100 + f*5) * 1e6,
				"ebitda":                 (30 + f) * 1e6,
				"debt_value":             (50 - f) * 1e6,
				"cash_value":             (20 + f*2) * 1e6,
			},
			"costs":             map[string]any{"aisc_last_year": 2000 - f*40},
			"production":        map[string]any{"current_production_total_aueq_koz": 100 + f*20},
			"mineral_estimates": map[string]any{"reserves_total_aueq_moz": 1 + f*0.5, "resources_total_aueq_moz": 2 + f},
		},
	}
}

// explorer builds an explorer with cash and resources.
func explorer(id string, i int) schema.Company {
	f := float64(i)
	return schema.Company{
		ID:     id,
		Name:   "Explorer " + id,
		Status: schema.ExplorerStatus,
		Data: map[string]any{
			"financials":        map[string]any{"cash_value": (5 + f) * 1e6, "market_cap_value": (40 + f*7) * 1e6, "debt_value": f * 1e5},
			"mineral_estimates": map[string]any{"resources_total_aueq_moz": 0.5 + f*0.3},
		},
	}
}

// universe returns n producers followed by m explorers.
func universe(n, m int) []schema.Company {
	companies := make([]schema.Company, 0, n+m)
	for i := range n {
		companies = append(companies, producer(fmt.Sprintf("p%02d", i), i))
	}
	for i := range m {
		companies = append(companies, explorer(fmt.Sprintf("e%02d", i), i))
	}
	return companies
}

func ids(companies []schema.Company) []string {
	out := make([]string, len(companies))
	for i, c := range companies {
		out[i] = c.ID
	}
	return out
}
