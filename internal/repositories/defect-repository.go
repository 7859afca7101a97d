package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"qtrack/internal/entities"
	"qtrack/internal/lifecycle"
	apperrors "qtrack/pkg/errors"
	"qtrack/pkg/types"
	"qtrack/pkg/utils"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	defectTable = "defects"
	// Поля с префиксом d., так как список всегда ходит с JOIN на suppliers.
	defectFields = `d.id, d.defect_no, d.title, d.description, d.supplier_id, s.name,
		d.severity, d.part_no, d.quantity,
		d.open_date, d.disposition_date, d.tech_analysis_date, d.root_cause_date,
		d.corrective_date, d.validation_date, d.target_date,
		d.step, d.responsible, d.status, d.aging_total, d.aging_by_step, d.days_late,
		d.aging_bucket, d.year, d.week_key, d.month_name,
		d.created_at, d.updated_at`
)

type dbDefect struct {
	ID           uint64
	DefectNo     string
	Title        string
	Description  sql.NullString
	SupplierID   uint64
	SupplierName string
	Severity     string
	PartNo       sql.NullString
	Quantity     sql.NullInt64

	OpenDate         time.Time
	DispositionDate  sql.NullTime
	TechAnalysisDate sql.NullTime
	RootCauseDate    sql.NullTime
	CorrectiveDate   sql.NullTime
	ValidationDate   sql.NullTime
	TargetDate       sql.NullTime

	Step        string
	Responsible string
	Status      string
	AgingTotal  int
	AgingByStep int
	DaysLate    int
	AgingBucket string
	Year        int
	WeekKey     string
	MonthName   string

	CreatedAt time.Time
	UpdatedAt sql.NullTime
}

func (db *dbDefect) scanFields() []interface{} {
	return []interface{}{
		&db.ID, &db.DefectNo, &db.Title, &db.Description, &db.SupplierID, &db.SupplierName,
		&db.Severity, &db.PartNo, &db.Quantity,
		&db.OpenDate, &db.DispositionDate, &db.TechAnalysisDate, &db.RootCauseDate,
		&db.CorrectiveDate, &db.ValidationDate, &db.TargetDate,
		&db.Step, &db.Responsible, &db.Status, &db.AgingTotal, &db.AgingByStep, &db.DaysLate,
		&db.AgingBucket, &db.Year, &db.WeekKey, &db.MonthName,
		&db.CreatedAt, &db.UpdatedAt,
	}
}

func (db *dbDefect) toEntity() entities.Defect {
	var qty *int
	if db.Quantity.Valid {
		q := int(db.Quantity.Int64)
		qty = &q
	}
	return entities.Defect{
		ID:           db.ID,
		DefectNo:     db.DefectNo,
		Title:        db.Title,
		Description:  utils.NullStringToStrPtr(db.Description),
		SupplierID:   db.SupplierID,
		SupplierName: db.SupplierName,
		Severity:     lifecycle.Severity(db.Severity),
		PartNo:       utils.NullStringToStrPtr(db.PartNo),
		Quantity:     qty,

		OpenDate:         db.OpenDate,
		DispositionDate:  utils.NullTimeToPtr(db.DispositionDate),
		TechAnalysisDate: utils.NullTimeToPtr(db.TechAnalysisDate),
		RootCauseDate:    utils.NullTimeToPtr(db.RootCauseDate),
		CorrectiveDate:   utils.NullTimeToPtr(db.CorrectiveDate),
		ValidationDate:   utils.NullTimeToPtr(db.ValidationDate),
		TargetDate:       utils.NullTimeToPtr(db.TargetDate),

		Step:        lifecycle.Step(db.Step),
		Responsible: lifecycle.Responsible(db.Responsible),
		Status:      lifecycle.Status(db.Status),
		AgingTotal:  db.AgingTotal,
		AgingByStep: db.AgingByStep,
		DaysLate:    db.DaysLate,
		AgingBucket: lifecycle.Bucket(db.AgingBucket),
		Year:        db.Year,
		WeekKey:     db.WeekKey,
		MonthName:   db.MonthName,

		CreatedAt: db.CreatedAt,
		UpdatedAt: utils.NullTimeToPtr(db.UpdatedAt),
	}
}

type DefectRepositoryInterface interface {
	GetDefects(ctx context.Context, filter types.Filter) ([]entities.Defect, uint64, error)
	GetOpenDefects(ctx context.Context) ([]entities.Defect, error)
	FindDefect(ctx context.Context, id uint64) (*entities.Defect, error)
	FindByDefectNo(ctx context.Context, defectNo string) (*entities.Defect, error)
	CreateDefect(ctx context.Context, defect *entities.Defect) (*entities.Defect, error)
	UpdateDefect(ctx context.Context, defect *entities.Defect) (*entities.Defect, error)
	UpdateStatus(ctx context.Context, id uint64, status lifecycle.Status) error
	DeleteDefect(ctx context.Context, id uint64) error
}

type defectRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewDefectRepository(storage *pgxpool.Pool, logger *zap.Logger) DefectRepositoryInterface {
	return &defectRepository{storage: storage, logger: logger}
}

// allowedDefectFilters — поля, по которым разрешена фильтрация из query-строки.
var allowedDefectFilters = map[string]string{
	"status":      "d.status",
	"step":        "d.step",
	"supplier_id": "d.supplier_id",
	"severity":    "d.severity",
	"responsible": "d.responsible",
	"year":        "d.year",
	"week_key":    "d.week_key",
	"bucket":      "d.aging_bucket",
}

func (r *defectRepository) buildListQuery(filter types.Filter) (sq.SelectBuilder, sq.SelectBuilder) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	base := psql.Select().
		From(defectTable + " d").
		Join("suppliers s ON s.id = d.supplier_id").
		Where(sq.Eq{"d.deleted_at": nil})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		base = base.Where(sq.Or{
			sq.ILike{"d.defect_no": pattern},
			sq.ILike{"d.title": pattern},
			sq.ILike{"s.name": pattern},
		})
	}

	for key, raw := range filter.Filter {
		column, ok := allowedDefectFilters[key]
		if !ok {
			continue
		}
		value := fmt.Sprintf("%v", raw)
		if strings.Contains(value, ",") {
			base = base.Where(sq.Eq{column: strings.Split(value, ",")})
		} else {
			base = base.Where(sq.Eq{column: value})
		}
	}

	countQuery := base.Columns("COUNT(*)")

	listQuery := base.Columns(defectFields)
	orderApplied := false
	for field, direction := range filter.Sort {
		if column, ok := allowedDefectFilters[field]; ok {
			listQuery = listQuery.OrderBy(column + " " + direction)
			orderApplied = true
		}
	}
	if !orderApplied {
		listQuery = listQuery.OrderBy("d.id DESC")
	}
	listQuery = listQuery.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))

	return countQuery, listQuery
}

func (r *defectRepository) GetDefects(ctx context.Context, filter types.Filter) ([]entities.Defect, uint64, error) {
	countQuery, listQuery := r.buildListQuery(filter)

	countSQL, countArgs, err := countQuery.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Defect{}, 0, nil
	}

	listSQL, listArgs, err := listQuery.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	defects := make([]entities.Defect, 0)
	for rows.Next() {
		var dbRow dbDefect
		if err := rows.Scan(dbRow.scanFields()...); err != nil {
			return nil, 0, err
		}
		defects = append(defects, dbRow.toEntity())
	}
	return defects, total, rows.Err()
}

func (r *defectRepository) GetOpenDefects(ctx context.Context) ([]entities.Defect, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s d
		JOIN suppliers s ON s.id = d.supplier_id
		WHERE d.deleted_at IS NULL AND d.status != $1
		ORDER BY d.id`, defectFields, defectTable)

	rows, err := r.storage.Query(ctx, query, string(lifecycle.StatusClosed))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	defects := make([]entities.Defect, 0)
	for rows.Next() {
		var dbRow dbDefect
		if err := rows.Scan(dbRow.scanFields()...); err != nil {
			return nil, err
		}
		defects = append(defects, dbRow.toEntity())
	}
	return defects, rows.Err()
}

func (r *defectRepository) FindDefect(ctx context.Context, id uint64) (*entities.Defect, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s d
		JOIN suppliers s ON s.id = d.supplier_id
		WHERE d.id = $1 AND d.deleted_at IS NULL`, defectFields, defectTable)

	var dbRow dbDefect
	if err := r.storage.QueryRow(ctx, query, id).Scan(dbRow.scanFields()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	defect := dbRow.toEntity()
	return &defect, nil
}

func (r *defectRepository) FindByDefectNo(ctx context.Context, defectNo string) (*entities.Defect, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s d
		JOIN suppliers s ON s.id = d.supplier_id
		WHERE d.defect_no = $1 AND d.deleted_at IS NULL`, defectFields, defectTable)

	var dbRow dbDefect
	if err := r.storage.QueryRow(ctx, query, defectNo).Scan(dbRow.scanFields()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	defect := dbRow.toEntity()
	return &defect, nil
}

func (r *defectRepository) CreateDefect(ctx context.Context, d *entities.Defect) (*entities.Defect, error) {
	query := fmt.Sprintf(`INSERT INTO %s
		(defect_no, title, description, supplier_id, severity, part_no, quantity,
		 open_date, disposition_date, tech_analysis_date, root_cause_date,
		 corrective_date, validation_date, target_date,
		 step, responsible, status, aging_total, aging_by_step, days_late,
		 aging_bucket, year, week_key, month_name)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
		RETURNING id`, defectTable)

	var id uint64
	err := r.storage.QueryRow(ctx, query,
		d.DefectNo, d.Title, d.Description, d.SupplierID, string(d.Severity), d.PartNo, d.Quantity,
		d.OpenDate, d.DispositionDate, d.TechAnalysisDate, d.RootCauseDate,
		d.CorrectiveDate, d.ValidationDate, d.TargetDate,
		string(d.Step), string(d.Responsible), string(d.Status), d.AgingTotal, d.AgingByStep, d.DaysLate,
		string(d.AgingBucket), d.Year, d.WeekKey, d.MonthName,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" {
				return nil, apperrors.ErrConflict
			}
			if pgErr.Code == "23503" {
				return nil, apperrors.NewHttpError(404, "Поставщик не найден", err, nil)
			}
		}
		return nil, err
	}
	return r.FindDefect(ctx, id)
}

func (r *defectRepository) UpdateDefect(ctx context.Context, d *entities.Defect) (*entities.Defect, error) {
	query := fmt.Sprintf(`UPDATE %s SET
		title = $1, description = $2, severity = $3, part_no = $4, quantity = $5,
		open_date = $6, disposition_date = $7, tech_analysis_date = $8, root_cause_date = $9,
		corrective_date = $10, validation_date = $11, target_date = $12,
		step = $13, responsible = $14, status = $15, aging_total = $16, aging_by_step = $17,
		days_late = $18, aging_bucket = $19, year = $20, week_key = $21, month_name = $22,
		updated_at = NOW()
		WHERE id = $23 AND deleted_at IS NULL`, defectTable)

	tag, err := r.storage.Exec(ctx, query,
		d.Title, d.Description, string(d.Severity), d.PartNo, d.Quantity,
		d.OpenDate, d.DispositionDate, d.TechAnalysisDate, d.RootCauseDate,
		d.CorrectiveDate, d.ValidationDate, d.TargetDate,
		string(d.Step), string(d.Responsible), string(d.Status), d.AgingTotal, d.AgingByStep,
		d.DaysLate, string(d.AgingBucket), d.Year, d.WeekKey, d.MonthName,
		d.ID,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrNotFound
	}
	return r.FindDefect(ctx, d.ID)
}

func (r *defectRepository) UpdateStatus(ctx context.Context, id uint64, status lifecycle.Status) error {
	query := fmt.Sprintf("UPDATE %s SET status = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL", defectTable)
	tag, err := r.storage.Exec(ctx, query, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *defectRepository) DeleteDefect(ctx context.Context, id uint64) error {
	query := fmt.Sprintf("UPDATE %s SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL", defectTable)
	tag, err := r.storage.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
