package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"qtrack/internal/dto"
	"qtrack/internal/entities"
	"qtrack/internal/events"
	"qtrack/internal/lifecycle"
	"qtrack/internal/repositories"
	apperrors "qtrack/pkg/errors"
	"qtrack/pkg/eventbus"
	"qtrack/pkg/types"
	"qtrack/pkg/utils"

	"go.uber.org/zap"
)

type DefectServiceInterface interface {
	GetDefects(ctx context.Context, filter types.Filter) ([]dto.DefectDTO, uint64, error)
	FindDefect(ctx context.Context, id uint64) (*dto.DefectDTO, error)
	CreateDefect(ctx context.Context, payload dto.CreateDefectDTO, today time.Time) (*dto.DefectDTO, error)
	UpdateDefect(ctx context.Context, id uint64, payload dto.UpdateDefectDTO, today time.Time) (*dto.DefectDTO, error)
	DeleteDefect(ctx context.Context, id uint64) error
	RecalculateDefect(ctx context.Context, id uint64, today time.Time) (*dto.DefectDTO, error)
}

type DefectService struct {
	defectRepository repositories.DefectRepositoryInterface
	bus              *eventbus.Bus
	logger           *zap.Logger
}

func NewDefectService(
	defectRepository repositories.DefectRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) DefectServiceInterface {
	return &DefectService{
		defectRepository: defectRepository,
		bus:              bus,
		logger:           logger,
	}
}

// ToDefectDTO переводит сущность в ответ клиенту.
func ToDefectDTO(d *entities.Defect) dto.DefectDTO {
	result := dto.DefectDTO{
		ID:           d.ID,
		DefectNo:     d.DefectNo,
		Title:        d.Title,
		Description:  d.Description,
		SupplierID:   d.SupplierID,
		SupplierName: d.SupplierName,
		Severity:     string(d.Severity),
		PartNo:       d.PartNo,
		Quantity:     d.Quantity,

		OpenDate:         utils.FormatDate(d.OpenDate),
		DispositionDate:  utils.FormatDatePtr(d.DispositionDate),
		TechAnalysisDate: utils.FormatDatePtr(d.TechAnalysisDate),
		RootCauseDate:    utils.FormatDatePtr(d.RootCauseDate),
		CorrectiveDate:   utils.FormatDatePtr(d.CorrectiveDate),
		ValidationDate:   utils.FormatDatePtr(d.ValidationDate),
		TargetDate:       utils.FormatDatePtr(d.TargetDate),

		Step:        string(d.Step),
		Responsible: string(d.Responsible),
		Status:      string(d.Status),
		AgingTotal:  d.AgingTotal,
		AgingByStep: d.AgingByStep,
		DaysLate:    d.DaysLate,
		AgingBucket: string(d.AgingBucket),
		Year:        d.Year,
		WeekKey:     d.WeekKey,
		MonthName:   d.MonthName,

		CreatedAt: d.CreatedAt.Local().Format("2006-01-02 15:04:05"),
	}
	if d.UpdatedAt != nil {
		result.UpdatedAt = d.UpdatedAt.Local().Format("2006-01-02 15:04:05")
	}
	return result
}

func (s *DefectService) GetDefects(ctx context.Context, filter types.Filter) ([]dto.DefectDTO, uint64, error) {
	defects, total, err := s.defectRepository.GetDefects(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.DefectDTO, 0, len(defects))
	for i := range defects {
		result = append(result, ToDefectDTO(&defects[i]))
	}
	return result, total, nil
}

func (s *DefectService) FindDefect(ctx context.Context, id uint64) (*dto.DefectDTO, error) {
	defect, err := s.defectRepository.FindDefect(ctx, id)
	if err != nil {
		return nil, err
	}
	defectDTO := ToDefectDTO(defect)
	return &defectDTO, nil
}

func (s *DefectService) CreateDefect(ctx context.Context, payload dto.CreateDefectDTO, today time.Time) (*dto.DefectDTO, error) {
	// Номер дефекта уникален; проверяем заранее, чтобы отдать внятный 409
	// вместо ошибки ограничения БД.
	if existing, err := s.defectRepository.FindByDefectNo(ctx, payload.DefectNo); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.NewHttpError(http.StatusConflict,
			fmt.Sprintf("Дефект с номером %s уже существует", payload.DefectNo), nil, nil)
	}

	openDate, err := utils.ParseDate(payload.OpenDate)
	if err != nil {
		return nil, err
	}
	targetDate, err := utils.ParseDatePtr(payload.TargetDate)
	if err != nil {
		return nil, err
	}

	defect := &entities.Defect{
		DefectNo:    payload.DefectNo,
		Title:       payload.Title,
		Description: payload.Description,
		SupplierID:  payload.SupplierID,
		Severity:    lifecycle.Severity(payload.Severity),
		PartNo:      payload.PartNo,
		Quantity:    payload.Quantity,
		OpenDate:    openDate,
		TargetDate:  targetDate,
	}
	defect.ApplyDerived(lifecycle.Derive(defect.Milestones(), "", today))

	created, err := s.defectRepository.CreateDefect(ctx, defect)
	if err != nil {
		s.logger.Error("ошибка при создании дефекта", zap.String("defect_no", payload.DefectNo), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Дефект зарегистрирован",
		zap.Uint64("id", created.ID),
		zap.String("defect_no", created.DefectNo),
		zap.String("step", string(created.Step)),
	)

	s.bus.Publish(ctx, events.DefectCreatedEvent{Defect: *created})

	defectDTO := ToDefectDTO(created)
	return &defectDTO, nil
}

// applyMilestonePatch накладывает присланные даты на сущность.
// Пустая строка очищает веху, отсутствующее поле не трогается.
func applyMilestonePatch(defect *entities.Defect, payload dto.UpdateDefectDTO) error {
	patchDate := func(target **time.Time, raw *string) error {
		if raw == nil {
			return nil
		}
		if *raw == "" {
			*target = nil
			return nil
		}
		parsed, err := utils.ParseDate(*raw)
		if err != nil {
			return err
		}
		*target = &parsed
		return nil
	}

	if payload.OpenDate != nil {
		if *payload.OpenDate == "" {
			return apperrors.ErrDefectMissingOpenDate
		}
		parsed, err := utils.ParseDate(*payload.OpenDate)
		if err != nil {
			return err
		}
		defect.OpenDate = parsed
	}
	if err := patchDate(&defect.DispositionDate, payload.DispositionDate); err != nil {
		return err
	}
	if err := patchDate(&defect.TechAnalysisDate, payload.TechAnalysisDate); err != nil {
		return err
	}
	if err := patchDate(&defect.RootCauseDate, payload.RootCauseDate); err != nil {
		return err
	}
	if err := patchDate(&defect.CorrectiveDate, payload.CorrectiveDate); err != nil {
		return err
	}
	if err := patchDate(&defect.ValidationDate, payload.ValidationDate); err != nil {
		return err
	}
	return patchDate(&defect.TargetDate, payload.TargetDate)
}

func (s *DefectService) UpdateDefect(ctx context.Context, id uint64, payload dto.UpdateDefectDTO, today time.Time) (*dto.DefectDTO, error) {
	defect, err := s.defectRepository.FindDefect(ctx, id)
	if err != nil {
		return nil, err
	}
	previousStep := defect.Step

	if payload.Title != nil {
		defect.Title = *payload.Title
	}
	if payload.Description != nil {
		defect.Description = payload.Description
	}
	if payload.Severity != nil {
		defect.Severity = lifecycle.Severity(*payload.Severity)
	}
	if payload.PartNo != nil {
		defect.PartNo = payload.PartNo
	}
	if payload.Quantity != nil {
		defect.Quantity = payload.Quantity
	}
	if err := applyMilestonePatch(defect, payload); err != nil {
		return nil, err
	}

	// Внешний статус (например, WAITING от закупок) учитывается при пересчете,
	// но CLOSED всегда следует за вехами, а не за присланным значением.
	currentStatus := defect.Status
	if payload.Status != nil {
		currentStatus = lifecycle.Status(*payload.Status)
	}
	defect.ApplyDerived(lifecycle.Derive(defect.Milestones(), currentStatus, today))

	updated, err := s.defectRepository.UpdateDefect(ctx, defect)
	if err != nil {
		s.logger.Error("ошибка при обновлении дефекта", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}

	if updated.Step != previousStep {
		s.logger.Info("Дефект перешел на новый этап",
			zap.Uint64("id", updated.ID),
			zap.String("from", string(previousStep)),
			zap.String("to", string(updated.Step)),
		)
		if updated.Step == lifecycle.StepClosed {
			s.bus.Publish(ctx, events.DefectClosedEvent{Defect: *updated})
		} else {
			s.bus.Publish(ctx, events.DefectStepChangedEvent{
				Defect:   *updated,
				FromStep: previousStep,
				ToStep:   updated.Step,
			})
		}
	}

	defectDTO := ToDefectDTO(updated)
	return &defectDTO, nil
}

func (s *DefectService) DeleteDefect(ctx context.Context, id uint64) error {
	return s.defectRepository.DeleteDefect(ctx, id)
}

// RecalculateDefect пересчитывает производные поля без изменения вех.
// Используется ночным пересчетом и ручным обновлением старения.
func (s *DefectService) RecalculateDefect(ctx context.Context, id uint64, today time.Time) (*dto.DefectDTO, error) {
	defect, err := s.defectRepository.FindDefect(ctx, id)
	if err != nil {
		return nil, err
	}

	defect.ApplyDerived(lifecycle.Derive(defect.Milestones(), defect.Status, today))

	updated, err := s.defectRepository.UpdateDefect(ctx, defect)
	if err != nil {
		return nil, err
	}
	defectDTO := ToDefectDTO(updated)
	return &defectDTO, nil
}
