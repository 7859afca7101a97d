package dto

// ViolationDTO — результат SLA-проверки одного дефекта.
// Возвращаются только WARNING и EXCEEDED; OK в выборку не попадает.
type ViolationDTO struct {
	DefectID       uint64 `json:"defect_id"`
	DefectNo       string `json:"defect_no"`
	SupplierName   string `json:"supplier_name,omitempty"`
	Step           string `json:"step"`
	Severity       string `json:"severity"`
	Responsible    string `json:"responsible"`
	AgingByStep    int    `json:"aging_by_step"`
	WarningDays    int    `json:"warning_days"`
	MaxDays        int    `json:"max_days"`
	Classification string `json:"classification"`
}

// SweepResultDTO — итог прохода SLA-мониторинга по открытым дефектам.
type SweepResultDTO struct {
	Checked    int            `json:"checked"`
	Skipped    int            `json:"skipped"`
	Violations []ViolationDTO `json:"violations"`
}
