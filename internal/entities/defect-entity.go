package entities

import (
	"time"

	"qtrack/internal/lifecycle"
)

// Defect — вендорский дефект (8D). Производные поля (step, responsible,
// status, старение, календарные ключи) хранятся в БД, но пересчитываются
// движком lifecycle при каждом изменении вех.
type Defect struct {
	ID           uint64
	DefectNo     string
	Title        string
	Description  *string
	SupplierID   uint64
	SupplierName string
	Severity     lifecycle.Severity
	PartNo       *string
	Quantity     *int

	OpenDate         time.Time
	DispositionDate  *time.Time
	TechAnalysisDate *time.Time
	RootCauseDate    *time.Time
	CorrectiveDate   *time.Time
	ValidationDate   *time.Time
	TargetDate       *time.Time

	Step        lifecycle.Step
	Responsible lifecycle.Responsible
	Status      lifecycle.Status
	AgingTotal  int
	AgingByStep int
	DaysLate    int
	AgingBucket lifecycle.Bucket
	Year        int
	WeekKey     string
	MonthName   string

	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
}

// Milestones собирает входные даты для движка lifecycle.
func (d *Defect) Milestones() lifecycle.MilestoneDates {
	return lifecycle.MilestoneDates{
		OpenDate:         d.OpenDate,
		Disposition:      d.DispositionDate,
		TechAnalysis:     d.TechAnalysisDate,
		RootCause:        d.RootCauseDate,
		CorrectiveAction: d.CorrectiveDate,
		Validation:       d.ValidationDate,
		TargetDate:       d.TargetDate,
	}
}

// ApplyDerived записывает результат пересчета обратно в сущность.
func (d *Defect) ApplyDerived(derived lifecycle.Derived) {
	d.Step = derived.Step
	d.Responsible = derived.Responsible
	d.Status = derived.Status
	d.AgingTotal = derived.Aging.Total
	d.AgingByStep = derived.Aging.ByStep
	d.DaysLate = derived.Aging.DaysLate
	d.AgingBucket = derived.Aging.Bucket
	d.Year = derived.Year
	d.WeekKey = derived.WeekKey
	d.MonthName = derived.MonthName
}
