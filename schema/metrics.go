package schema

// Metric keys resolved against Company.Data.
const (
	KeyMarketCap              = "financials.market_cap_value"
	KeyEnterpriseValue        = "financials.enterprise_value_value"
	KeyFreeCashFlow           = "financials.free_cash_flow"
	KeyRevenue                = "financials.revenue_value"
	KeyEBITDA                 = "financials.ebitda"
	KeyDebt                   = "financials.debt_value"
	KeyCash                   = "financials.cash_value"
	KeyCurrentProduction      = "production.current_production_total_aueq_koz"
	KeyFutureProduction       = "production.future_production_total_aueq_koz"
	KeyAttributableProduction = "production.attributable_production_aueq_koz"
	KeyAISC                   = "costs.aisc_last_year"
	KeyReserves               = "mineral_estimates.reserves_total_aueq_moz"
	KeyResources              = "mineral_estimates.resources_total_aueq_moz"
	KeyProducingAssets        = "royalty_portfolio.producing_assets_count"
	KeyTotalAssets            = "royalty_portfolio.total_assets_count"
)

// CalcPrefix marks synthetic metric keys that are derived on demand.
const CalcPrefix = "_calc_"

// Synthetic metric keys.
const (
	CalcFCFMargin       = CalcPrefix + "fcf_margin"
	CalcFCFEVYield      = CalcPrefix + "fcf_ev_yield"
	CalcNetDebtToEBITDA = CalcPrefix + "net_debt_to_ebitda"
)
