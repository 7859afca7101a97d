package repositories

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"qtrack/internal/lifecycle"
	"qtrack/pkg/types"
)

type DashboardRepositoryInterface interface {
	GetKPIs(ctx context.Context, condition sq.Sqlizer) (*types.DashboardKPIs, error)
	GetCountByStep(ctx context.Context, condition sq.Sqlizer) ([]types.DashboardCountByGroup, error)
	GetCountByStatus(ctx context.Context, condition sq.Sqlizer) ([]types.DashboardCountByGroup, error)
	GetCountByBucket(ctx context.Context, condition sq.Sqlizer) ([]types.DashboardCountByGroup, error)
	GetCountByResponsible(ctx context.Context, condition sq.Sqlizer) ([]types.DashboardCountByGroup, error)
	GetCountBySeverity(ctx context.Context, condition sq.Sqlizer) ([]types.DashboardCountByGroup, error)
	GetWeeklyIntake(ctx context.Context, condition sq.Sqlizer) ([]types.DashboardChartData, error)
	GetSupplierStats(ctx context.Context, condition sq.Sqlizer) ([]types.DashboardSupplierStat, error)
}

type DashboardRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewDashboardRepository(storage *pgxpool.Pool, logger *zap.Logger) DashboardRepositoryInterface {
	return &DashboardRepository{storage: storage, logger: logger}
}

func applyCondition(b sq.SelectBuilder, condition sq.Sqlizer) sq.SelectBuilder {
	if condition != nil {
		return b.Where(condition)
	}
	return b
}

func (r *DashboardRepository) GetKPIs(ctx context.Context, condition sq.Sqlizer) (*types.DashboardKPIs, error) {
	base := sq.Select(
		"COUNT(*)",
		"COUNT(*) FILTER (WHERE d.status != 'CLOSED')",
		"COUNT(*) FILTER (WHERE d.status = 'CLOSED')",
		"COUNT(*) FILTER (WHERE d.status = 'DELAYED')",
		"COALESCE(AVG(d.aging_total) FILTER (WHERE d.status != 'CLOSED'), 0)",
		"COALESCE(AVG(d.aging_total) FILTER (WHERE d.status = 'CLOSED'), 0)",
	).From("defects d").Where(sq.Eq{"d.deleted_at": nil})

	base = applyCondition(base, condition)
	query, args, err := base.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}

	kpis := &types.DashboardKPIs{}
	err = r.storage.QueryRow(ctx, query, args...).Scan(
		&kpis.TotalDefects, &kpis.OpenDefects, &kpis.ClosedDefects, &kpis.DelayedDefects,
		&kpis.AvgAgingOpen, &kpis.AvgClosureDays,
	)
	return kpis, err
}

func (r *DashboardRepository) countByColumn(ctx context.Context, column string, condition sq.Sqlizer) ([]types.DashboardCountByGroup, error) {
	base := sq.Select(column, "COUNT(*)").
		From("defects d").
		Where(sq.Eq{"d.deleted_at": nil}).
		GroupBy(column).
		OrderBy("COUNT(*) DESC")

	base = applyCondition(base, condition)
	query, args, err := base.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]types.DashboardCountByGroup, 0)
	for rows.Next() {
		var item types.DashboardCountByGroup
		if err := rows.Scan(&item.Label, &item.Count); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *DashboardRepository) GetCountByStep(ctx context.Context, condition sq.Sqlizer) ([]types.DashboardCountByGroup, error) {
	// На Kanban открытые этапы интересны и при нуле дефектов, поэтому
	// пустые корзины дописывает сервис, а не SQL.
	return r.countByColumn(ctx, "d.step", condition)
}

func (r *DashboardRepository) GetCountByStatus(ctx context.Context, condition sq.Sqlizer) ([]types.DashboardCountByGroup, error) {
	return r.countByColumn(ctx, "d.status", condition)
}

func (r *DashboardRepository) GetCountByBucket(ctx context.Context, condition sq.Sqlizer) ([]types.DashboardCountByGroup, error) {
	return r.countByColumn(ctx, "d.aging_bucket", condition)
}

func (r *DashboardRepository) GetCountByResponsible(ctx context.Context, condition sq.Sqlizer) ([]types.DashboardCountByGroup, error) {
	base := sq.Select("d.responsible", "COUNT(*)").
		From("defects d").
		Where(sq.Eq{"d.deleted_at": nil}).
		Where(sq.NotEq{"d.status": string(lifecycle.StatusClosed)}).
		GroupBy("d.responsible")

	base = applyCondition(base, condition)
	query, args, err := base.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]types.DashboardCountByGroup, 0)
	for rows.Next() {
		var item types.DashboardCountByGroup
		if err := rows.Scan(&item.Label, &item.Count); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *DashboardRepository) GetCountBySeverity(ctx context.Context, condition sq.Sqlizer) ([]types.DashboardCountByGroup, error) {
	return r.countByColumn(ctx, "d.severity", condition)
}

func (r *DashboardRepository) GetWeeklyIntake(ctx context.Context, condition sq.Sqlizer) ([]types.DashboardChartData, error) {
	base := sq.Select("d.week_key", "COUNT(*)").
		From("defects d").
		Where(sq.Eq{"d.deleted_at": nil}).
		GroupBy("d.week_key").
		OrderBy("d.week_key")

	base = applyCondition(base, condition)
	query, args, err := base.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]types.DashboardChartData, 0)
	for rows.Next() {
		var item types.DashboardChartData
		if err := rows.Scan(&item.WeekKey, &item.Count); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *DashboardRepository) GetSupplierStats(ctx context.Context, condition sq.Sqlizer) ([]types.DashboardSupplierStat, error) {
	base := sq.Select(
		"s.id", "s.name",
		"COUNT(d.id)",
		"COUNT(d.id) FILTER (WHERE d.status != 'CLOSED')",
		"COUNT(d.id) FILTER (WHERE d.status = 'DELAYED')",
	).From("defects d").
		Join("suppliers s ON s.id = d.supplier_id").
		Where(sq.Eq{"d.deleted_at": nil}).
		GroupBy("s.id", "s.name").
		OrderBy("COUNT(d.id) DESC").
		Limit(20)

	base = applyCondition(base, condition)
	query, args, err := base.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]types.DashboardSupplierStat, 0)
	for rows.Next() {
		var item types.DashboardSupplierStat
		if err := rows.Scan(&item.SupplierID, &item.SupplierName, &item.Total, &item.Open, &item.Delayed); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
