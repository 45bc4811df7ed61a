package core

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/peerscore/core/algo"
	"github.com/huangsam/peerscore/internal/contract"
	"github.com/huangsam/peerscore/schema"
)

// currentCacheVersion defines the version of the cached precompute layout
const currentCacheVersion = 1

// cacheTTL is how long a cached precompute stays usable
const cacheTTL = 7 * 24 * time.Hour

// cachedPrecompute returns phase 1 output from the cache when possible and
// computes and stores it otherwise.
func cachedPrecompute(engine *algo.Engine, companies []schema.Company, cfg *contract.Config, mgr contract.CacheManager) schema.Precomputed {
	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetCacheStore()
	}
	if store == nil {
		return engine.Precompute(companies, cfg.ScoringConfigs, cfg.Rationales)
	}

	key, err := precomputeCacheKey(companies, cfg.ScoringConfigs, cfg.Rationales)
	if err != nil {
		contract.LogWarn("Cannot build precompute cache key", err)
		return engine.Precompute(companies, cfg.ScoringConfigs, cfg.Rationales)
	}

	if pre, ok := checkCacheHit(store, key); ok {
		return pre
	}
	return computeAndStore(engine, companies, cfg, store, key)
}

// checkCacheHit attempts to retrieve and validate a cached precompute
func checkCacheHit(store contract.CacheStore, key string) (schema.Precomputed, bool) {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return schema.Precomputed{}, false // Cache miss
	}
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > cacheTTL {
		return schema.Precomputed{}, false
	}
	var pre schema.Precomputed
	if err := json.Unmarshal(data, &pre); err != nil {
		return schema.Precomputed{}, false
	}
	return pre, true
}

// computeAndStore runs phase 1 and stores the result in the cache
func computeAndStore(engine *algo.Engine, companies []schema.Company, cfg *contract.Config, store contract.CacheStore, key string) schema.Precomputed {
	pre := engine.Precompute(companies, cfg.ScoringConfigs, cfg.Rationales)

	data, err := json.Marshal(pre)
	if err != nil {
		contract.LogWarn("Cannot encode precompute for caching", err)
		return pre
	}
	if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
		contract.LogWarn("Cannot store precompute in cache", err)
	}
	return pre
}

// precomputeCacheKey hashes everything phase 1 depends on. Only the metric
// keys of each theme enter the hash since weights are applied in phase 2.
// encoding/json writes map keys in sorted order, so equal inputs give equal keys.
func precomputeCacheKey(companies []schema.Company, configs schema.ScoringConfigs, rationales schema.RationaleTable) (string, error) {
	payload, err := json.Marshal(struct {
		Companies  []schema.Company      `json:"companies"`
		Metrics    metricSet             `json:"metrics"`
		Rationales schema.RationaleTable `json:"rationales"`
	}{companies, metricSetOf(configs), rationales})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", sha256.Sum256(payload)), nil
}

// metricSet maps status to theme to sorted metric keys.
type metricSet map[schema.CompanyStatus]map[string][]string

func metricSetOf(configs schema.ScoringConfigs) metricSet {
	set := make(metricSet, len(configs))
	for status, cfg := range configs {
		themes := make(map[string][]string, len(cfg))
		for theme, weights := range cfg {
			themes[theme] = weights.SortedKeys()
		}
		set[status] = themes
	}
	return set
}
