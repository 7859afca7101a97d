package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"qtrack/internal/events"
	"qtrack/internal/services"
	"qtrack/pkg/constants"
	"qtrack/pkg/eventbus"
)

// DefectListener превращает события жизненного цикла в уведомления
// и рассылку вебхуков. Сами сервисы про шину не знают.
type DefectListener struct {
	notificationService services.NotificationServiceInterface
	webhookService      services.WebhookServiceInterface
	logger              *zap.Logger
}

func NewDefectListener(
	notificationService services.NotificationServiceInterface,
	webhookService services.WebhookServiceInterface,
	logger *zap.Logger,
) *DefectListener {
	return &DefectListener{
		notificationService: notificationService,
		webhookService:      webhookService,
		logger:              logger,
	}
}

func (l *DefectListener) Register(bus *eventbus.Bus) {
	bus.Subscribe("defect.created", l.handleDefectCreated)
	bus.Subscribe("defect.step_changed", l.handleStepChanged)
	bus.Subscribe("defect.closed", l.handleDefectClosed)
	bus.Subscribe("sla.warning", l.handleSlaViolation)
	bus.Subscribe("sla.exceeded", l.handleSlaViolation)
	l.logger.Info("DefectListener подписан на события жизненного цикла")
}

func (l *DefectListener) handleDefectCreated(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.DefectCreatedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}
	l.webhookService.Dispatch(ctx, constants.WebhookEventDefectCreated, services.ToDefectDTO(&e.Defect))
	return nil
}

func (l *DefectListener) handleStepChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.DefectStepChangedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}
	if err := l.notificationService.NotifyStepChange(ctx, e.Defect, e.FromStep, e.ToStep); err != nil {
		return err
	}
	l.webhookService.Dispatch(ctx, constants.WebhookEventStepChanged, map[string]interface{}{
		"defect": services.ToDefectDTO(&e.Defect),
		"from":   string(e.FromStep),
		"to":     string(e.ToStep),
	})
	return nil
}

func (l *DefectListener) handleDefectClosed(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.DefectClosedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}
	l.webhookService.Dispatch(ctx, constants.WebhookEventDefectClosed, services.ToDefectDTO(&e.Defect))
	return nil
}

func (l *DefectListener) handleSlaViolation(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.SlaViolationEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}
	if err := l.notificationService.NotifySlaViolation(ctx, e.Defect, e.Classification, e.Thresholds); err != nil {
		return err
	}
	l.webhookService.Dispatch(ctx, e.Name(), map[string]interface{}{
		"defect":       services.ToDefectDTO(&e.Defect),
		"aging_step":   e.Defect.AgingByStep,
		"warning_days": e.Thresholds.WarningDays,
		"max_days":     e.Thresholds.MaxDays,
	})
	return nil
}
