package events

import (
	"qtrack/internal/entities"
	"qtrack/internal/lifecycle"
)

// DefectCreatedEvent - дефект зарегистрирован.
type DefectCreatedEvent struct {
	Defect entities.Defect
}

func (e DefectCreatedEvent) Name() string {
	return "defect.created"
}

// DefectStepChangedEvent - дефект перешел на следующий этап воркфлоу.
type DefectStepChangedEvent struct {
	Defect   entities.Defect
	FromStep lifecycle.Step
	ToStep   lifecycle.Step
}

func (e DefectStepChangedEvent) Name() string {
	return "defect.step_changed"
}

// DefectClosedEvent - проставлена дата валидации, дефект закрыт.
type DefectClosedEvent struct {
	Defect entities.Defect
}

func (e DefectClosedEvent) Name() string {
	return "defect.closed"
}

// SlaViolationEvent - мониторинг зафиксировал WARNING или EXCEEDED.
type SlaViolationEvent struct {
	Defect         entities.Defect
	Classification lifecycle.Classification
	Thresholds     lifecycle.SlaThresholds
}

func (e SlaViolationEvent) Name() string {
	if e.Classification == lifecycle.ClassificationExceeded {
		return "sla.exceeded"
	}
	return "sla.warning"
}
