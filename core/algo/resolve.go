package algo

import "github.com/huangsam/peerscore/schema"

// ResolveStatusConfig returns the config that applies to a status together
// with the status it was actually taken from. A status with no config of its
// own uses the other config. This is the only place that fallback happens.
func ResolveStatusConfig(configs schema.ScoringConfigs, status schema.CompanyStatus) (schema.StatusConfig, schema.CompanyStatus) {
	if cfg, ok := configs[status]; ok {
		return cfg, status
	}
	return configs[schema.OtherStatus], schema.OtherStatus
}

// ResolveRationale looks up the rationale of a metric for a resolved status.
func ResolveRationale(rationales schema.RationaleTable, status schema.CompanyStatus, key string) (schema.MetricRationale, bool) {
	table, ok := rationales[status]
	if !ok {
		return schema.MetricRationale{}, false
	}
	r, ok := table[key]
	return r, ok
}
