package algo

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/huangsam/peerscore/schema"
)

// usdMillions scales dollar inputs so they blend with ounce quantities.
const usdMillions = 1e6

// scaleStrategies computes the operational scale of a company per status.
// Missing inputs count as zero, which penalizes sparse data.
var scaleStrategies = map[schema.CompanyStatus]func(schema.Company) float64{
	schema.ProducerStatus: func(c schema.Company) float64 {
		return 0.4*metricOrZero(c, schema.KeyCurrentProduction) +
			0.3*metricOrZero(c, schema.KeyReserves) +
			0.3*metricOrZero(c, schema.KeyMarketCap)/usdMillions
	},
	schema.ExplorerStatus: func(c schema.Company) float64 {
		return 0.6*metricOrZero(c, schema.KeyResources) +
			0.4*metricOrZero(c, schema.KeyCash)/usdMillions
	},
	schema.RoyaltyStatus: func(c schema.Company) float64 {
		return 0.5*metricOrZero(c, schema.KeyProducingAssets) +
			0.3*metricOrZero(c, schema.KeyTotalAssets) +
			0.2*metricOrZero(c, schema.KeyAttributableProduction)
	},
	schema.DeveloperStatus: func(c schema.Company) float64 {
		return 0.4*metricOrZero(c, schema.KeyReserves) +
			0.4*metricOrZero(c, schema.KeyFutureProduction) +
			0.2*metricOrZero(c, schema.KeyMarketCap)/usdMillions
	},
	schema.OtherStatus: func(c schema.Company) float64 {
		return 0.5*metricOrZero(c, schema.KeyMarketCap)/usdMillions +
			0.5*metricOrZero(c, schema.KeyEnterpriseValue)/usdMillions
	},
}

// StatusOf returns the normalized status of a company.
func StatusOf(c schema.Company) schema.CompanyStatus {
	return schema.NormalizeStatus(string(c.Status))
}

// OperationalScale returns the status-specific size measure used for tiering.
func OperationalScale(c schema.Company) float64 {
	strategy, ok := scaleStrategies[StatusOf(c)]
	if !ok {
		strategy = scaleStrategies[schema.OtherStatus]
	}
	return strategy(c)
}

// BlendedValuation averages market cap and enterprise value, never below zero.
func BlendedValuation(c schema.Company) float64 {
	v := (metricOrZero(c, schema.KeyMarketCap) + metricOrZero(c, schema.KeyEnterpriseValue)) / 2
	return math.Max(v, 0)
}

// valuationDistance is the absolute difference of log-scaled valuations.
func valuationDistance(a, b float64) float64 {
	return math.Abs(math.Log(a+1) - math.Log(b+1))
}

// BuildPeerGroups builds the status, valuation and operational peer groups of
// every company. Groups hold company IDs. The first company with a given ID
// wins and later duplicates are ignored. The result must be rebuilt in full
// whenever the company set changes.
func BuildPeerGroups(companies []schema.Company) map[string]schema.PeerGroups {
	unique, _ := dedupeCompanies(companies)

	ids := make([]string, len(unique))
	scales := make([]float64, len(unique))
	valuations := make([]float64, len(unique))
	byStatus := make(map[schema.CompanyStatus][]int)
	for i, c := range unique {
		ids[i] = c.ID
		scales[i] = OperationalScale(c)
		valuations[i] = BlendedValuation(c)
		status := StatusOf(c)
		byStatus[status] = append(byStatus[status], i)
	}

	groups := make(map[string]schema.PeerGroups, len(unique))
	for _, members := range byStatus {
		statusIDs := make([]string, len(members))
		for j, m := range members {
			statusIDs[j] = ids[m]
		}

		tierOf, tierIDs := assignTiers(members, ids, scales)

		for _, m := range members {
			pg := schema.PeerGroups{
				Status:           statusIDs,
				Valuation:        nearestValuationPeers(m, members, ids, valuations),
				OperationalScale: scales[m],
				BlendedValuation: valuations[m],
			}
			if tier, ok := tierOf[m]; ok {
				pg.Tier = tier
				pg.Operational = tierIDs[tier]
			} else {
				pg.Operational = statusIDs
			}
			groups[ids[m]] = pg
		}
	}
	return groups
}

// assignTiers cuts a status bucket into OperationalTiers tiers by descending scale.
// Ties are broken by ID. Tier sizes differ by at most one and the first
// tiers take the remainder. Buckets too small to fill every tier are left untiered.
func assignTiers(members []int, ids []string, scales []float64) (map[int]int, map[int][]string) {
	if len(members) < schema.OperationalTiers {
		return nil, nil
	}
	sorted := slices.Clone(members)
	slices.SortStableFunc(sorted, func(a, b int) int {
		if c := cmp.Compare(scales[b], scales[a]); c != 0 {
			return c
		}
		return strings.Compare(ids[a], ids[b])
	})

	tierOf := make(map[int]int, len(sorted))
	tierIDs := make(map[int][]string, schema.OperationalTiers)
	for idx, m := range sorted {
		tier := idx*schema.OperationalTiers/len(sorted) + 1
		tierOf[m] = tier
		tierIDs[tier] = append(tierIDs[tier], ids[m])
	}
	return tierOf, tierIDs
}

// nearestValuationPeers returns self followed by the closest same-status
// companies in log valuation space. Equal distances keep input order.
func nearestValuationPeers(self int, members []int, ids []string, valuations []float64) []string {
	candidates := make([]int, 0, len(members)-1)
	for _, m := range members {
		if m != self {
			candidates = append(candidates, m)
		}
	}
	ref := valuations[self]
	slices.SortStableFunc(candidates, func(a, b int) int {
		return cmp.Compare(valuationDistance(valuations[a], ref), valuationDistance(valuations[b], ref))
	})
	if len(candidates) > schema.MaxValuationPeers {
		candidates = candidates[:schema.MaxValuationPeers]
	}

	peers := make([]string, 0, len(candidates)+1)
	peers = append(peers, ids[self])
	for _, m := range candidates {
		peers = append(peers, ids[m])
	}
	return peers
}

// dedupeCompanies keeps the first company per ID and reports the dropped duplicates.
func dedupeCompanies(companies []schema.Company) ([]schema.Company, []string) {
	seen := make(map[string]struct{}, len(companies))
	unique := make([]schema.Company, 0, len(companies))
	var dropped []string
	for _, c := range companies {
		if _, ok := seen[c.ID]; ok {
			dropped = append(dropped, c.ID)
			continue
		}
		seen[c.ID] = struct{}{}
		unique = append(unique, c)
	}
	return unique, dropped
}

func metricOrZero(c schema.Company, key string) float64 {
	return valueOrZero(GetMetricValue(c, key))
}
