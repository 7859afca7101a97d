// Пакет lifecycle — чистые правила жизненного цикла дефекта (8D).
// Все функции детерминированы: никакого скрытого "сейчас", момент времени
// всегда передается параметром. Производные поля дефекта (шаг, ответственный,
// старение, статус) считаются только здесь.
package lifecycle

import "time"

// Step — текущий этап 8D-воркфлоу дефекта.
type Step string

const (
	StepAwaitingDisposition      Step = "Awaiting Disposition"
	StepAwaitingTechAnalysis     Step = "Awaiting Tech Analysis"
	StepAwaitingRootCause        Step = "Awaiting Root Cause"
	StepAwaitingCorrectiveAction Step = "Awaiting Corrective Action"
	StepAwaitingValidation       Step = "Awaiting Validation"
	StepClosed                   Step = "CLOSED"
)

// AllSteps — фиксированный порядок этапов, используется дашбордом и Kanban.
var AllSteps = []Step{
	StepAwaitingDisposition,
	StepAwaitingTechAnalysis,
	StepAwaitingRootCause,
	StepAwaitingCorrectiveAction,
	StepAwaitingValidation,
	StepClosed,
}

// Responsible — сторона, владеющая текущим этапом.
type Responsible string

const (
	ResponsibleQualityTeam Responsible = "QUALITY_TEAM"
	ResponsibleSupplier    Responsible = "SUPPLIER"
)

// Status — агрегированный статус дефекта.
// WAITING движок не выставляет: это внешнее значение, оно только проходит сквозь.
type Status string

const (
	StatusOngoing Status = "ONGOING"
	StatusDelayed Status = "DELAYED"
	StatusWaiting Status = "WAITING"
	StatusClosed  Status = "CLOSED"
)

// Bucket — грубая корзина старения для группировки на дашборде.
type Bucket string

const (
	BucketUpTo4  Bucket = "<=4"
	Bucket5To14  Bucket = "5-14"
	Bucket15To29 Bucket = "15-29"
	Bucket30To59 Bucket = "30-59"
	BucketOver60 Bucket = ">60"
)

// Severity — код серьезности дефекта (MG), от наиболее к наименее серьезному.
type Severity string

const (
	SeverityS Severity = "S"
	SeverityA Severity = "A"
	SeverityB Severity = "B"
	SeverityC Severity = "C"
)

// MilestoneDates — входные даты дефекта. OpenDate обязательна, пять вех
// заполняются по мере прохождения этапов, TargetDate — плановый срок.
type MilestoneDates struct {
	OpenDate         time.Time
	Disposition      *time.Time
	TechAnalysis     *time.Time
	RootCause        *time.Time
	CorrectiveAction *time.Time
	Validation       *time.Time
	TargetDate       *time.Time
}

// milestones возвращает пять вех в порядке прохождения.
func (d MilestoneDates) milestones() []*time.Time {
	return []*time.Time{d.Disposition, d.TechAnalysis, d.RootCause, d.CorrectiveAction, d.Validation}
}

// Aging — все метрики старения, считаются за один проход.
type Aging struct {
	Total    int
	ByStep   int
	DaysLate int
	Bucket   Bucket
}

// Derived — полный набор производных полей дефекта.
type Derived struct {
	Step        Step
	Responsible Responsible
	Status      Status
	Aging       Aging
	Year        int
	WeekKey     string
	MonthName   string
}

// Derive пересчитывает все производные поля за один вызов.
// currentStatus — текущий сохраненный статус (для прозрачного проноса WAITING);
// пустая строка означает "вывести из шага".
func Derive(dates MilestoneDates, currentStatus Status, today time.Time) Derived {
	step := DeriveStep(dates)
	status := DeriveStatus(step, currentStatus)
	aging := ComputeAging(dates, step, status, today)

	return Derived{
		Step:        step,
		Responsible: ResolveResponsible(step),
		Status:      status,
		Aging:       aging,
		Year:        Year(dates.OpenDate),
		WeekKey:     WeekKey(dates.OpenDate),
		MonthName:   MonthName(dates.OpenDate),
	}
}

// DeriveStatus: CLOSED следует за шагом, WAITING проносится как есть,
// всё остальное — ONGOING. DELAYED выставляется отдельно по итогам SLA-проверки.
func DeriveStatus(step Step, current Status) Status {
	if step == StepClosed {
		return StatusClosed
	}
	if current == StatusWaiting {
		return StatusWaiting
	}
	return StatusOngoing
}
