package lifecycle

// stepOrder — этап "ожидания" для каждой незаполненной вехи, слева направо.
var stepOrder = []Step{
	StepAwaitingDisposition,
	StepAwaitingTechAnalysis,
	StepAwaitingRootCause,
	StepAwaitingCorrectiveAction,
	StepAwaitingValidation,
}

// DeriveStep возвращает этап по первой незаполненной вехе.
// Даты проверяются только на наличие, слева направо: заполненная веха после
// пропуска НЕ продвигает дефект дальше. Это осознанно сохраненное поведение —
// менять его значит молча менять семантику воркфлоу.
func DeriveStep(dates MilestoneDates) Step {
	for i, m := range dates.milestones() {
		if m == nil {
			return stepOrder[i]
		}
	}
	return StepClosed
}

// ResolveResponsible — фиксированная таблица владения этапами: поставщик
// владеет тремя средними этапами расследования, команда качества — приемкой
// и финальной валидацией.
func ResolveResponsible(step Step) Responsible {
	switch step {
	case StepAwaitingTechAnalysis, StepAwaitingRootCause, StepAwaitingCorrectiveAction:
		return ResponsibleSupplier
	default:
		return ResponsibleQualityTeam
	}
}
