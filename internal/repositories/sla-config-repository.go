package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"qtrack/internal/dto"
	"qtrack/internal/lifecycle"
	apperrors "qtrack/pkg/errors"
	"qtrack/pkg/utils"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type dbSlaConfig struct {
	ID          uint64
	Step        string
	Severity    sql.NullString
	WarningDays int
	MaxDays     int
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   sql.NullTime
}

func (db *dbSlaConfig) ToDTO() dto.SlaConfigDTO {
	return dto.SlaConfigDTO{
		ID:          db.ID,
		Step:        db.Step,
		Severity:    null.NewString(db.Severity.String, db.Severity.Valid),
		WarningDays: db.WarningDays,
		MaxDays:     db.MaxDays,
		Active:      db.Active,
		CreatedAt:   db.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		UpdatedAt:   utils.NullTimeToEmptyString(db.UpdatedAt),
	}
}

// ToRule переводит строку конфига в правило движка.
// NULL severity превращается в пустую строку — wildcard для этапа.
func (db *dbSlaConfig) ToRule() lifecycle.SlaRule {
	return lifecycle.SlaRule{
		Step:        lifecycle.Step(db.Step),
		Severity:    lifecycle.Severity(utils.NullStringToString(db.Severity)),
		WarningDays: db.WarningDays,
		MaxDays:     db.MaxDays,
		Active:      db.Active,
	}
}

const (
	slaConfigTable  = "sla_configs"
	slaConfigFields = "id, step, severity, warning_days, max_days, active, created_at, updated_at"
)

type SlaConfigRepositoryInterface interface {
	GetSlaConfigs(ctx context.Context, limit, offset uint64) ([]dto.SlaConfigDTO, uint64, error)
	GetActiveRules(ctx context.Context) ([]lifecycle.SlaRule, error)
	FindSlaConfig(ctx context.Context, id uint64) (*dto.SlaConfigDTO, error)
	CreateSlaConfig(ctx context.Context, payload dto.CreateSlaConfigDTO) (*dto.SlaConfigDTO, error)
	UpdateSlaConfig(ctx context.Context, id uint64, payload dto.UpdateSlaConfigDTO) (*dto.SlaConfigDTO, error)
	DeleteSlaConfig(ctx context.Context, id uint64) error
}

type slaConfigRepository struct{ storage *pgxpool.Pool }

func NewSlaConfigRepository(storage *pgxpool.Pool) SlaConfigRepositoryInterface {
	return &slaConfigRepository{storage: storage}
}

func (r *slaConfigRepository) GetSlaConfigs(ctx context.Context, limit, offset uint64) ([]dto.SlaConfigDTO, uint64, error) {
	var total uint64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", slaConfigTable)
	if err := r.storage.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []dto.SlaConfigDTO{}, 0, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY step, severity NULLS LAST LIMIT $1 OFFSET $2", slaConfigFields, slaConfigTable)
	rows, err := r.storage.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	configs := make([]dto.SlaConfigDTO, 0)
	for rows.Next() {
		var dbRow dbSlaConfig
		if err := rows.Scan(&dbRow.ID, &dbRow.Step, &dbRow.Severity, &dbRow.WarningDays, &dbRow.MaxDays, &dbRow.Active, &dbRow.CreatedAt, &dbRow.UpdatedAt); err != nil {
			return nil, 0, err
		}
		configs = append(configs, dbRow.ToDTO())
	}
	return configs, total, rows.Err()
}

func (r *slaConfigRepository) GetActiveRules(ctx context.Context) ([]lifecycle.SlaRule, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE active = true ORDER BY step, severity NULLS LAST", slaConfigFields, slaConfigTable)
	rows, err := r.storage.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := make([]lifecycle.SlaRule, 0)
	for rows.Next() {
		var dbRow dbSlaConfig
		if err := rows.Scan(&dbRow.ID, &dbRow.Step, &dbRow.Severity, &dbRow.WarningDays, &dbRow.MaxDays, &dbRow.Active, &dbRow.CreatedAt, &dbRow.UpdatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, dbRow.ToRule())
	}
	return rules, rows.Err()
}

func (r *slaConfigRepository) FindSlaConfig(ctx context.Context, id uint64) (*dto.SlaConfigDTO, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", slaConfigFields, slaConfigTable)
	var dbRow dbSlaConfig
	err := r.storage.QueryRow(ctx, query, id).Scan(&dbRow.ID, &dbRow.Step, &dbRow.Severity, &dbRow.WarningDays, &dbRow.MaxDays, &dbRow.Active, &dbRow.CreatedAt, &dbRow.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	configDTO := dbRow.ToDTO()
	return &configDTO, nil
}

func (r *slaConfigRepository) CreateSlaConfig(ctx context.Context, payload dto.CreateSlaConfigDTO) (*dto.SlaConfigDTO, error) {
	query := fmt.Sprintf("INSERT INTO %s (step, severity, warning_days, max_days, active) VALUES ($1, $2, $3, $4, true) RETURNING %s", slaConfigTable, slaConfigFields)
	var dbRow dbSlaConfig
	err := r.storage.QueryRow(ctx, query, payload.Step, payload.Severity, payload.WarningDays, payload.MaxDays).
		Scan(&dbRow.ID, &dbRow.Step, &dbRow.Severity, &dbRow.WarningDays, &dbRow.MaxDays, &dbRow.Active, &dbRow.CreatedAt, &dbRow.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.ErrConflict
		}
		return nil, err
	}
	configDTO := dbRow.ToDTO()
	return &configDTO, nil
}

func (r *slaConfigRepository) UpdateSlaConfig(ctx context.Context, id uint64, payload dto.UpdateSlaConfigDTO) (*dto.SlaConfigDTO, error) {
	var setClauses []string
	var args []interface{}
	argId := 1

	if payload.WarningDays != nil {
		setClauses = append(setClauses, fmt.Sprintf("warning_days = $%d", argId))
		args = append(args, *payload.WarningDays)
		argId++
	}
	if payload.MaxDays != nil {
		setClauses = append(setClauses, fmt.Sprintf("max_days = $%d", argId))
		args = append(args, *payload.MaxDays)
		argId++
	}
	if payload.Active != nil {
		setClauses = append(setClauses, fmt.Sprintf("active = $%d", argId))
		args = append(args, *payload.Active)
		argId++
	}
	if len(setClauses) == 0 {
		return r.FindSlaConfig(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		slaConfigTable, strings.Join(setClauses, ", "), argId, slaConfigFields)

	var dbRow dbSlaConfig
	err := r.storage.QueryRow(ctx, query, args...).
		Scan(&dbRow.ID, &dbRow.Step, &dbRow.Severity, &dbRow.WarningDays, &dbRow.MaxDays, &dbRow.Active, &dbRow.CreatedAt, &dbRow.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	configDTO := dbRow.ToDTO()
	return &configDTO, nil
}

func (r *slaConfigRepository) DeleteSlaConfig(ctx context.Context, id uint64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", slaConfigTable)
	tag, err := r.storage.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
