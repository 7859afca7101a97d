package services

import (
	"context"
	"time"

	"qtrack/internal/dto"
	"qtrack/internal/entities"
	"qtrack/internal/events"
	"qtrack/internal/lifecycle"
	"qtrack/internal/repositories"
	"qtrack/pkg/eventbus"

	"go.uber.org/zap"
)

type SlaMonitorServiceInterface interface {
	CheckDefect(defect *entities.Defect, rules []lifecycle.SlaRule, today time.Time) dto.ViolationDTO
	Sweep(ctx context.Context, today time.Time) (*dto.SweepResultDTO, error)
	GetViolations(ctx context.Context, today time.Time) ([]dto.ViolationDTO, error)
}

// SlaMonitorService — периодическая проверка SLA по всем открытым дефектам.
// Закрытые дефекты в проверку не попадают, их метрики заморожены.
type SlaMonitorService struct {
	defectRepository repositories.DefectRepositoryInterface
	slaConfigService SlaConfigServiceInterface
	defaults         lifecycle.SlaThresholds
	bus              *eventbus.Bus
	logger           *zap.Logger
}

func NewSlaMonitorService(
	defectRepository repositories.DefectRepositoryInterface,
	slaConfigService SlaConfigServiceInterface,
	defaults lifecycle.SlaThresholds,
	bus *eventbus.Bus,
	logger *zap.Logger,
) SlaMonitorServiceInterface {
	return &SlaMonitorService{
		defectRepository: defectRepository,
		slaConfigService: slaConfigService,
		defaults:         defaults,
		bus:              bus,
		logger:           logger,
	}
}

// CheckDefect сверяет один дефект с порогами SLA на момент today.
// Старение считается заново, сохраненные в строке значения не используются.
func (s *SlaMonitorService) CheckDefect(defect *entities.Defect, rules []lifecycle.SlaRule, today time.Time) dto.ViolationDTO {
	derived := lifecycle.Derive(defect.Milestones(), defect.Status, today)
	thresholds := lifecycle.ResolveSla(derived.Step, defect.Severity, rules, s.defaults)
	classification := lifecycle.Classify(derived.Aging.ByStep, thresholds)

	return dto.ViolationDTO{
		DefectID:       defect.ID,
		DefectNo:       defect.DefectNo,
		SupplierName:   defect.SupplierName,
		Step:           string(derived.Step),
		Severity:       string(defect.Severity),
		Responsible:    string(derived.Responsible),
		AgingByStep:    derived.Aging.ByStep,
		WarningDays:    thresholds.WarningDays,
		MaxDays:        thresholds.MaxDays,
		Classification: string(classification),
	}
}

// Sweep проходит по всем открытым дефектам. Ошибка на одном дефекте
// логируется и не прерывает проход по остальным.
func (s *SlaMonitorService) Sweep(ctx context.Context, today time.Time) (*dto.SweepResultDTO, error) {
	rules, err := s.slaConfigService.GetActiveRules(ctx)
	if err != nil {
		return nil, err
	}

	defects, err := s.defectRepository.GetOpenDefects(ctx)
	if err != nil {
		return nil, err
	}

	result := &dto.SweepResultDTO{Violations: make([]dto.ViolationDTO, 0)}
	for i := range defects {
		defect := &defects[i]

		if defect.OpenDate.IsZero() {
			s.logger.Warn("SLA-проверка: у дефекта нет даты открытия, пропускаем",
				zap.Uint64("id", defect.ID),
				zap.String("defect_no", defect.DefectNo),
			)
			result.Skipped++
			continue
		}

		violation := s.CheckDefect(defect, rules, today)
		result.Checked++

		// Сохраненные в строке метрики могли устареть: пересчет выполняется
		// только при записи. Событие должно нести старение на момент today.
		storedStatus := defect.Status
		defect.ApplyDerived(lifecycle.Derive(defect.Milestones(), defect.Status, today))

		switch lifecycle.Classification(violation.Classification) {
		case lifecycle.ClassificationOK:
			continue
		case lifecycle.ClassificationExceeded:
			if storedStatus != lifecycle.StatusDelayed {
				if err := s.defectRepository.UpdateStatus(ctx, defect.ID, lifecycle.StatusDelayed); err != nil {
					s.logger.Error("SLA-проверка: не удалось пометить дефект просроченным",
						zap.Uint64("id", defect.ID),
						zap.Error(err),
					)
					continue
				}
			}
			defect.Status = lifecycle.StatusDelayed
		}

		result.Violations = append(result.Violations, violation)
		s.bus.Publish(ctx, events.SlaViolationEvent{
			Defect:         *defect,
			Classification: lifecycle.Classification(violation.Classification),
			Thresholds: lifecycle.SlaThresholds{
				WarningDays: violation.WarningDays,
				MaxDays:     violation.MaxDays,
			},
		})
	}

	s.logger.Info("SLA-проверка завершена",
		zap.Int("checked", result.Checked),
		zap.Int("skipped", result.Skipped),
		zap.Int("violations", len(result.Violations)),
	)
	return result, nil
}

// GetViolations — выборка нарушений без побочных эффектов:
// статусы не меняются, события не публикуются.
func (s *SlaMonitorService) GetViolations(ctx context.Context, today time.Time) ([]dto.ViolationDTO, error) {
	rules, err := s.slaConfigService.GetActiveRules(ctx)
	if err != nil {
		return nil, err
	}

	defects, err := s.defectRepository.GetOpenDefects(ctx)
	if err != nil {
		return nil, err
	}

	violations := make([]dto.ViolationDTO, 0)
	for i := range defects {
		defect := &defects[i]
		if defect.OpenDate.IsZero() {
			continue
		}
		violation := s.CheckDefect(defect, rules, today)
		if violation.Classification != string(lifecycle.ClassificationOK) {
			violations = append(violations, violation)
		}
	}
	return violations, nil
}
