package dto

import "qtrack/pkg/types"

// DashboardStatsDTO — полный срез дашборда качества за один запрос.
type DashboardStatsDTO struct {
	KPIs          types.DashboardKPIs          `json:"kpis"`
	ByStep        []types.DashboardCountByGroup `json:"by_step"`
	ByStatus      []types.DashboardCountByGroup `json:"by_status"`
	ByBucket      []types.DashboardCountByGroup `json:"by_bucket"`
	ByResponsible []types.DashboardCountByGroup `json:"by_responsible"`
	BySeverity    []types.DashboardCountByGroup `json:"by_severity"`
	Violations    types.DashboardViolationSummary `json:"violations"`
	WeeklyIntake  []types.DashboardChartData    `json:"weekly_intake"`
	TopSuppliers  []types.DashboardSupplierStat `json:"top_suppliers"`
}
