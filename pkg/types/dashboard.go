package types

// Агрегаты для дашборда качества. Все значения считаются по живым
// (не удаленным) дефектам; source of truth — производные поля дефекта.

type DashboardKPIs struct {
	TotalDefects   uint64  `json:"total_defects"`
	OpenDefects    uint64  `json:"open_defects"`
	ClosedDefects  uint64  `json:"closed_defects"`
	DelayedDefects uint64  `json:"delayed_defects"`
	AvgAgingOpen   float64 `json:"avg_aging_open"`
	AvgClosureDays float64 `json:"avg_closure_days"`
}

type DashboardCountByGroup struct {
	Label string `json:"label"`
	Count uint64 `json:"count"`
}

type DashboardViolationSummary struct {
	WarningCount  uint64 `json:"warning_count"`
	ExceededCount uint64 `json:"exceeded_count"`
}

type DashboardChartData struct {
	WeekKey string `json:"week_key"`
	Count   uint64 `json:"count"`
}

type DashboardSupplierStat struct {
	SupplierID   uint64 `json:"supplier_id"`
	SupplierName string `json:"supplier_name"`
	Total        uint64 `json:"total"`
	Open         uint64 `json:"open"`
	Delayed      uint64 `json:"delayed"`
}
