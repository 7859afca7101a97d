package services

import (
	"context"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"qtrack/internal/dto"
	"qtrack/internal/lifecycle"
	"qtrack/internal/repositories"
	"qtrack/pkg/types"
)

type DashboardServiceInterface interface {
	GetDashboardStats(ctx context.Context, filter types.Filter, today time.Time) (*dto.DashboardStatsDTO, error)
}

type DashboardService struct {
	repo       repositories.DashboardRepositoryInterface
	slaMonitor SlaMonitorServiceInterface
	logger     *zap.Logger
}

func NewDashboardService(
	repo repositories.DashboardRepositoryInterface,
	slaMonitor SlaMonitorServiceInterface,
	logger *zap.Logger,
) DashboardServiceInterface {
	return &DashboardService{repo: repo, slaMonitor: slaMonitor, logger: logger}
}

// buildCondition переводит фильтры запроса в SQL-условие для всех агрегатов.
func buildCondition(filter types.Filter) sq.Sqlizer {
	var preds []sq.Sqlizer
	if v, ok := filter.Filter["supplier_id"]; ok {
		preds = append(preds, sq.Eq{"d.supplier_id": v})
	}
	if v, ok := filter.Filter["year"]; ok {
		preds = append(preds, sq.Eq{"d.year": v})
	}
	if v, ok := filter.Filter["severity"]; ok {
		preds = append(preds, sq.Eq{"d.severity": v})
	}
	if len(preds) == 0 {
		return nil
	}
	return sq.And(preds)
}

func (s *DashboardService) GetDashboardStats(ctx context.Context, filter types.Filter, today time.Time) (*dto.DashboardStatsDTO, error) {
	condition := buildCondition(filter)

	var (
		wg           sync.WaitGroup
		kpis         *types.DashboardKPIs
		byStep       []types.DashboardCountByGroup
		byStatus     []types.DashboardCountByGroup
		byBucket     []types.DashboardCountByGroup
		byResp       []types.DashboardCountByGroup
		bySeverity   []types.DashboardCountByGroup
		weekly       []types.DashboardChartData
		suppliers    []types.DashboardSupplierStat
		violations   []dto.ViolationDTO
		errKpis      error
		errStep      error
		errStatus    error
		errBucket    error
		errResp      error
		errSeverity  error
		errWeekly    error
		errSupplier  error
		errViolation error
	)

	wg.Add(9)
	go func() { defer wg.Done(); kpis, errKpis = s.repo.GetKPIs(ctx, condition) }()
	go func() { defer wg.Done(); byStep, errStep = s.repo.GetCountByStep(ctx, condition) }()
	go func() { defer wg.Done(); byStatus, errStatus = s.repo.GetCountByStatus(ctx, condition) }()
	go func() { defer wg.Done(); byBucket, errBucket = s.repo.GetCountByBucket(ctx, condition) }()
	go func() { defer wg.Done(); byResp, errResp = s.repo.GetCountByResponsible(ctx, condition) }()
	go func() { defer wg.Done(); bySeverity, errSeverity = s.repo.GetCountBySeverity(ctx, condition) }()
	go func() { defer wg.Done(); weekly, errWeekly = s.repo.GetWeeklyIntake(ctx, condition) }()
	go func() { defer wg.Done(); suppliers, errSupplier = s.repo.GetSupplierStats(ctx, condition) }()
	go func() { defer wg.Done(); violations, errViolation = s.slaMonitor.GetViolations(ctx, today) }()
	wg.Wait()

	for _, err := range []error{errKpis, errStep, errStatus, errBucket, errResp, errSeverity, errWeekly, errSupplier, errViolation} {
		if err != nil {
			s.logger.Error("ошибка при сборке дашборда", zap.Error(err))
			return nil, err
		}
	}

	return &dto.DashboardStatsDTO{
		KPIs:          *kpis,
		ByStep:        fillMissingSteps(byStep),
		ByStatus:      byStatus,
		ByBucket:      fillMissingBuckets(byBucket),
		ByResponsible: byResp,
		BySeverity:    bySeverity,
		Violations:    summarizeViolations(violations),
		WeeklyIntake:  weekly,
		TopSuppliers:  suppliers,
	}, nil
}

// summarizeViolations сворачивает нарушения SLA в счетчики для дашборда.
func summarizeViolations(violations []dto.ViolationDTO) types.DashboardViolationSummary {
	var summary types.DashboardViolationSummary
	for _, v := range violations {
		switch lifecycle.Classification(v.Classification) {
		case lifecycle.ClassificationWarning:
			summary.WarningCount++
		case lifecycle.ClassificationExceeded:
			summary.ExceededCount++
		}
	}
	return summary
}

// fillMissingSteps дописывает нулевые строки, чтобы Kanban всегда видел
// все шесть колонок в фиксированном порядке.
func fillMissingSteps(counts []types.DashboardCountByGroup) []types.DashboardCountByGroup {
	byLabel := make(map[string]uint64, len(counts))
	for _, c := range counts {
		byLabel[c.Label] = c.Count
	}
	result := make([]types.DashboardCountByGroup, 0, len(lifecycle.AllSteps))
	for _, step := range lifecycle.AllSteps {
		result = append(result, types.DashboardCountByGroup{Label: string(step), Count: byLabel[string(step)]})
	}
	return result
}

var bucketOrder = []lifecycle.Bucket{
	lifecycle.BucketUpTo4,
	lifecycle.Bucket5To14,
	lifecycle.Bucket15To29,
	lifecycle.Bucket30To59,
	lifecycle.BucketOver60,
}

func fillMissingBuckets(counts []types.DashboardCountByGroup) []types.DashboardCountByGroup {
	byLabel := make(map[string]uint64, len(counts))
	for _, c := range counts {
		byLabel[c.Label] = c.Count
	}
	result := make([]types.DashboardCountByGroup, 0, len(bucketOrder))
	for _, bucket := range bucketOrder {
		result = append(result, types.DashboardCountByGroup{Label: string(bucket), Count: byLabel[string(bucket)]})
	}
	return result
}
