package services

import (
	"context"
	"fmt"

	"qtrack/internal/dto"
	"qtrack/internal/entities"
	"qtrack/internal/lifecycle"
	"qtrack/internal/repositories"
	"qtrack/pkg/constants"

	"go.uber.org/zap"
)

type NotificationServiceInterface interface {
	GetNotifications(ctx context.Context, limit, offset uint64, status string) ([]dto.NotificationDTO, uint64, error)
	NotifySlaViolation(ctx context.Context, defect entities.Defect, classification lifecycle.Classification, thresholds lifecycle.SlaThresholds) error
	NotifyStepChange(ctx context.Context, defect entities.Defect, from, to lifecycle.Step) error
}

// NotificationSender — канал доставки уведомления (почта, мессенджер).
// По умолчанию подключен LogSender, который только пишет в лог.
type NotificationSender interface {
	Send(ctx context.Context, notifType, message string) error
}

type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, notifType, message string) error {
	s.logger.Info("Уведомление отправлено", zap.String("type", notifType), zap.String("message", message))
	return nil
}

type NotificationService struct {
	notificationRepository repositories.NotificationRepositoryInterface
	sender                 NotificationSender
	logger                 *zap.Logger
}

func NewNotificationService(
	notificationRepository repositories.NotificationRepositoryInterface,
	sender NotificationSender,
	logger *zap.Logger,
) NotificationServiceInterface {
	return &NotificationService{
		notificationRepository: notificationRepository,
		sender:                 sender,
		logger:                 logger,
	}
}

// deliver отправляет созданное уведомление и фиксирует исход в журнале.
// Неудачная доставка не считается ошибкой бизнес-операции: запись
// помечается FAILED, и её можно переотправить позже.
func (s *NotificationService) deliver(ctx context.Context, id uint64, notifType, message string) {
	if err := s.sender.Send(ctx, notifType, message); err != nil {
		s.logger.Error("не удалось доставить уведомление", zap.Uint64("notification_id", id), zap.Error(err))
		if markErr := s.notificationRepository.MarkFailed(ctx, id); markErr != nil {
			s.logger.Error("не удалось пометить уведомление FAILED", zap.Uint64("notification_id", id), zap.Error(markErr))
		}
		return
	}
	if err := s.notificationRepository.MarkSent(ctx, id); err != nil {
		s.logger.Error("не удалось пометить уведомление SENT", zap.Uint64("notification_id", id), zap.Error(err))
	}
}

func (s *NotificationService) GetNotifications(ctx context.Context, limit, offset uint64, status string) ([]dto.NotificationDTO, uint64, error) {
	return s.notificationRepository.GetNotifications(ctx, limit, offset, status)
}

func (s *NotificationService) NotifySlaViolation(ctx context.Context, defect entities.Defect, classification lifecycle.Classification, thresholds lifecycle.SlaThresholds) error {
	notifType := constants.NotificationTypeSlaWarning
	message := fmt.Sprintf("Дефект %s приближается к порогу SLA: %d дн. на этапе '%s' (предупреждение с %d дн., максимум %d дн.)",
		defect.DefectNo, defect.AgingByStep, defect.Step, thresholds.WarningDays, thresholds.MaxDays)

	if classification == lifecycle.ClassificationExceeded {
		notifType = constants.NotificationTypeSlaExceeded
		message = fmt.Sprintf("Дефект %s превысил SLA: %d дн. на этапе '%s' при максимуме %d дн. Ответственный: %s",
			defect.DefectNo, defect.AgingByStep, defect.Step, thresholds.MaxDays, defect.Responsible)
	}

	id, err := s.notificationRepository.CreateNotification(ctx, defect.ID, notifType, message)
	if err != nil {
		s.logger.Error("не удалось создать уведомление", zap.Uint64("defect_id", defect.ID), zap.Error(err))
		return err
	}

	s.logger.Info("Уведомление о нарушении SLA создано",
		zap.Uint64("notification_id", id),
		zap.String("defect_no", defect.DefectNo),
		zap.String("type", notifType),
	)
	s.deliver(ctx, id, notifType, message)
	return nil
}

func (s *NotificationService) NotifyStepChange(ctx context.Context, defect entities.Defect, from, to lifecycle.Step) error {
	message := fmt.Sprintf("Дефект %s перешел с этапа '%s' на этап '%s'. Ответственный: %s",
		defect.DefectNo, from, to, defect.Responsible)

	id, err := s.notificationRepository.CreateNotification(ctx, defect.ID, constants.NotificationTypeStepChange, message)
	if err != nil {
		s.logger.Error("не удалось создать уведомление о смене этапа", zap.Uint64("defect_id", defect.ID), zap.Error(err))
		return err
	}
	s.deliver(ctx, id, constants.NotificationTypeStepChange, message)
	return nil
}
