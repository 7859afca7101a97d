package services

import (
	"context"

	"qtrack/internal/entities"
	"qtrack/internal/repositories"
	"qtrack/pkg/types"

	"go.uber.org/zap"
)

type ReportServiceInterface interface {
	GetReportRows(ctx context.Context, filter types.Filter) ([]entities.Defect, uint64, error)
}

// reportService — выборка дефектов для выгрузки в Excel.
// Переиспользует фильтры списка дефектов, но снимает пагинацию.
type reportService struct {
	defectRepo repositories.DefectRepositoryInterface
	logger     *zap.Logger
}

func NewReportService(defectRepo repositories.DefectRepositoryInterface, logger *zap.Logger) ReportServiceInterface {
	return &reportService{defectRepo: defectRepo, logger: logger}
}

func (s *reportService) GetReportRows(ctx context.Context, filter types.Filter) ([]entities.Defect, uint64, error) {
	filter.Limit = 100000 // выгружаем всё для экспорта
	filter.Offset = 0
	return s.defectRepo.GetDefects(ctx, filter)
}
