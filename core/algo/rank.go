package algo

import (
	"cmp"
	"slices"

	"github.com/huangsam/peerscore/schema"
	"go.uber.org/zap"
)

// RankResults sorts results by final score in descending order and returns
// the top 'limit' results. Equal scores keep their input order. A limit of
// zero or less keeps every result.
func RankResults(results []schema.ScoringResult, limit int) []schema.ScoringResult {
	slices.SortStableFunc(results, byScoreDesc)
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}

func byScoreDesc(a, b schema.ScoringResult) int {
	return cmp.Compare(b.FinalScore, a.FinalScore)
}

// AddFinalRankings annotates each result in place with its status, valuation
// and operational rank tuples. Valuation and operational ranks are positions
// within the company's own peer list from groups.
func (e *Engine) AddFinalRankings(results []schema.ScoringResult, groups map[string]schema.PeerGroups) {
	indexByID := make(map[string]int, len(results))
	byStatus := make(map[schema.CompanyStatus][]int)
	for i, r := range results {
		indexByID[r.CompanyID] = i
		byStatus[r.Status] = append(byStatus[r.Status], i)
	}

	for _, members := range byStatus {
		ordered := orderByScore(results, members)
		for pos, i := range ordered {
			results[i].StatusRank = schema.RankTuple{Rank: pos + 1, Total: len(ordered)}
		}
	}

	for i := range results {
		pg := groups[results[i].CompanyID]
		results[i].ValuationRank = e.peerRank(results, indexByID, i, pg.Valuation, schema.ValuationPeers)
		results[i].OperationalRank = e.peerRank(results, indexByID, i, pg.Operational, schema.OperationalPeers)
	}
}

// peerRank finds the 1-indexed position of results[self] among its peers.
// It falls back to rank 1 and logs a warning when the company is not in its own list.
func (e *Engine) peerRank(results []schema.ScoringResult, indexByID map[string]int, self int, peerIDs []string, kind schema.PeerGroupKind) schema.RankTuple {
	members := make([]int, 0, len(peerIDs))
	for _, id := range peerIDs {
		if i, ok := indexByID[id]; ok {
			members = append(members, i)
		}
	}
	ordered := orderByScore(results, members)
	if pos := slices.Index(ordered, self); pos >= 0 {
		return schema.RankTuple{Rank: pos + 1, Total: len(ordered)}
	}

	e.logger.Warn("Company missing from its own peer group",
		zap.String("company_id", results[self].CompanyID),
		zap.String("peer_group", string(kind)),
		zap.Int("peers", len(ordered)))
	return schema.RankTuple{Rank: 1, Total: len(ordered)}
}

func orderByScore(results []schema.ScoringResult, members []int) []int {
	ordered := slices.Clone(members)
	slices.SortStableFunc(ordered, func(a, b int) int {
		return byScoreDesc(results[a], results[b])
	})
	return ordered
}
