package schema

import (
	"maps"
	"slices"
)

// DefaultPeerGroupWeights is the blend used when the user supplies none.
var DefaultPeerGroupWeights = PeerGroupWeights{Status: 40, Valuation: 30, Operational: 30}

// GetDefaultScoringConfigs returns a fresh copy of the built-in theme/metric weights per status.
func GetDefaultScoringConfigs() ScoringConfigs {
	return ScoringConfigs{
		ProducerStatus: {
			"financial_health": {
				CalcFCFMargin:       10,
				CalcNetDebtToEBITDA: 10,
				KeyCash:             5,
			},
			"valuation": {
				CalcFCFEVYield: 15,
				KeyMarketCap:   5,
			},
			"operations": {
				KeyCurrentProduction: 15,
				KeyAISC:              15,
			},
			"resources": {
				KeyReserves:  15,
				KeyResources: 10,
			},
		},
		DeveloperStatus: {
			"financial_health": {
				KeyCash: 20,
				KeyDebt: 10,
			},
			"growth": {
				KeyFutureProduction: 25,
			},
			"resources": {
				KeyReserves:  25,
				KeyResources: 10,
			},
			"valuation": {
				KeyMarketCap: 10,
			},
		},
		ExplorerStatus: {
			"financial_health": {
				KeyCash: 30,
				KeyDebt: 10,
			},
			"resources": {
				KeyResources: 40,
			},
			"valuation": {
				KeyMarketCap: 20,
			},
		},
		RoyaltyStatus: {
			"portfolio": {
				KeyProducingAssets: 25,
				KeyTotalAssets:     15,
			},
			"production": {
				KeyAttributableProduction: 20,
			},
			"financial_health": {
				CalcFCFMargin:       15,
				CalcNetDebtToEBITDA: 10,
			},
			"valuation": {
				CalcFCFEVYield: 15,
			},
		},
		OtherStatus: {
			"financial_health": {
				CalcFCFMargin:       20,
				CalcNetDebtToEBITDA: 15,
				KeyCash:             15,
			},
			"valuation": {
				CalcFCFEVYield: 25,
				KeyMarketCap:   25,
			},
		},
	}
}

var (
	fcfMargin      = MetricRationale{Label: "FCF Margin (%)", HigherIsBetter: true, Description: "Free cash flow as a share of revenue"}
	fcfEVYield     = MetricRationale{Label: "FCF/EV Yield (%)", HigherIsBetter: true, Description: "Free cash flow relative to enterprise value"}
	netDebtEBITDA  = MetricRationale{Label: "Net Debt / EBITDA", HigherIsBetter: false, Description: "Years of EBITDA needed to clear net debt"}
	cash           = MetricRationale{Label: "Cash", HigherIsBetter: true, Description: "Cash and equivalents on hand"}
	debt           = MetricRationale{Label: "Debt", HigherIsBetter: false, Description: "Total debt outstanding"}
	marketCap      = MetricRationale{Label: "Market Cap", HigherIsBetter: true, Description: "Equity market capitalization"}
	production     = MetricRationale{Label: "Current Production (koz AuEq)", HigherIsBetter: true}
	futureProd     = MetricRationale{Label: "Future Production (koz AuEq)", HigherIsBetter: true}
	attributable   = MetricRationale{Label: "Attributable Production (koz AuEq)", HigherIsBetter: true}
	aisc           = MetricRationale{Label: "AISC ($/oz)", HigherIsBetter: false, Description: "All-in sustaining cost per ounce"}
	reserves       = MetricRationale{Label: "Reserves (Moz AuEq)", HigherIsBetter: true}
	resources      = MetricRationale{Label: "Resources (Moz AuEq)", HigherIsBetter: true}
	producingAsset = MetricRationale{Label: "Producing Assets", HigherIsBetter: true}
	totalAssets    = MetricRationale{Label: "Total Assets", HigherIsBetter: true}
)

// GetDefaultRationales returns a fresh copy of the built-in metric rationale table.
func GetDefaultRationales() RationaleTable {
	return RationaleTable{
		ProducerStatus: {
			CalcFCFMargin:        fcfMargin,
			CalcFCFEVYield:       fcfEVYield,
			CalcNetDebtToEBITDA:  netDebtEBITDA,
			KeyCash:              cash,
			KeyMarketCap:         marketCap,
			KeyCurrentProduction: production,
			KeyAISC:              aisc,
			KeyReserves:          reserves,
			KeyResources:         resources,
		},
		DeveloperStatus: {
			KeyCash:             cash,
			KeyDebt:             debt,
			KeyFutureProduction: futureProd,
			KeyReserves:         reserves,
			KeyResources:        resources,
			KeyMarketCap:        marketCap,
		},
		ExplorerStatus: {
			KeyCash:      cash,
			KeyDebt:      debt,
			KeyResources: resources,
			KeyMarketCap: marketCap,
		},
		RoyaltyStatus: {
			KeyProducingAssets:        producingAsset,
			KeyTotalAssets:            totalAssets,
			KeyAttributableProduction: attributable,
			CalcFCFMargin:             fcfMargin,
			CalcNetDebtToEBITDA:       netDebtEBITDA,
			CalcFCFEVYield:            fcfEVYield,
		},
		OtherStatus: {
			CalcFCFMargin:       fcfMargin,
			CalcNetDebtToEBITDA: netDebtEBITDA,
			KeyCash:             cash,
			CalcFCFEVYield:      fcfEVYield,
			KeyMarketCap:        marketCap,
		},
	}
}

// Clone returns a deep copy of the configs.
func (c ScoringConfigs) Clone() ScoringConfigs {
	if c == nil {
		return nil
	}
	clone := make(ScoringConfigs, len(c))
	for status, themes := range c {
		clone[status] = make(StatusConfig, len(themes))
		for theme, weights := range themes {
			clone[status][theme] = maps.Clone(weights)
		}
	}
	return clone
}

// Lookup returns the weight of a metric under a status and theme.
func (c ScoringConfigs) Lookup(status CompanyStatus, theme, key string) (float64, bool) {
	themes, ok := c[status]
	if !ok {
		return 0, false
	}
	weights, ok := themes[theme]
	if !ok {
		return 0, false
	}
	w, ok := weights[key]
	return w, ok
}

// Set assigns a weight, creating the status and theme entries as needed.
func (c ScoringConfigs) Set(status CompanyStatus, theme, key string, weight float64) {
	if c[status] == nil {
		c[status] = StatusConfig{}
	}
	if c[status][theme] == nil {
		c[status][theme] = ThemeWeights{}
	}
	c[status][theme][key] = weight
}

// Merge overlays other onto c in place.
func (c ScoringConfigs) Merge(other ScoringConfigs) {
	for status, themes := range other {
		for theme, weights := range themes {
			for key, w := range weights {
				c.Set(status, theme, key, w)
			}
		}
	}
}

// SortedThemes returns theme names in lexical order.
func (s StatusConfig) SortedThemes() []string {
	return slices.Sorted(maps.Keys(s))
}

// SortedKeys returns metric keys in lexical order.
func (t ThemeWeights) SortedKeys() []string {
	return slices.Sorted(maps.Keys(t))
}
