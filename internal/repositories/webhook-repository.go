package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"qtrack/internal/dto"
	apperrors "qtrack/pkg/errors"
	"qtrack/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WebhookEndpoint — конфиг вебхука вместе с секретом.
// Секрет наружу не отдается, он нужен только сервису доставки.
type WebhookEndpoint struct {
	ID     uint64
	Name   string
	URL    string
	Secret string
	Events []string
	Active bool
}

type dbWebhookConfig struct {
	ID        uint64
	Name      string
	URL       string
	Secret    string
	Events    []string
	Active    bool
	CreatedAt time.Time
	UpdatedAt sql.NullTime
}

func (db *dbWebhookConfig) ToDTO() dto.WebhookConfigDTO {
	return dto.WebhookConfigDTO{
		ID:        db.ID,
		Name:      db.Name,
		URL:       db.URL,
		Events:    db.Events,
		Active:    db.Active,
		CreatedAt: db.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		UpdatedAt: utils.NullTimeToEmptyString(db.UpdatedAt),
	}
}

const (
	webhookConfigTable = "webhook_configs"
	webhookLogTable    = "webhook_logs"
	webhookFields      = "id, name, url, secret, events, active, created_at, updated_at"
)

type WebhookRepositoryInterface interface {
	GetWebhookConfigs(ctx context.Context, limit, offset uint64) ([]dto.WebhookConfigDTO, uint64, error)
	GetActiveEndpoints(ctx context.Context, event string) ([]WebhookEndpoint, error)
	FindWebhookConfig(ctx context.Context, id uint64) (*dto.WebhookConfigDTO, error)
	CreateWebhookConfig(ctx context.Context, payload dto.CreateWebhookConfigDTO) (*dto.WebhookConfigDTO, error)
	UpdateWebhookConfig(ctx context.Context, id uint64, payload dto.UpdateWebhookConfigDTO) (*dto.WebhookConfigDTO, error)
	DeleteWebhookConfig(ctx context.Context, id uint64) error

	CreateLog(ctx context.Context, webhookID uint64, event, status string, statusCode, attempts int, errText string) error
	GetLogs(ctx context.Context, webhookID uint64, limit, offset uint64) ([]dto.WebhookLogDTO, uint64, error)
}

type webhookRepository struct{ storage *pgxpool.Pool }

func NewWebhookRepository(storage *pgxpool.Pool) WebhookRepositoryInterface {
	return &webhookRepository{storage: storage}
}

func (r *webhookRepository) scanConfig(row pgx.Row) (*dbWebhookConfig, error) {
	var dbRow dbWebhookConfig
	err := row.Scan(&dbRow.ID, &dbRow.Name, &dbRow.URL, &dbRow.Secret, &dbRow.Events, &dbRow.Active, &dbRow.CreatedAt, &dbRow.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &dbRow, nil
}

func (r *webhookRepository) GetWebhookConfigs(ctx context.Context, limit, offset uint64) ([]dto.WebhookConfigDTO, uint64, error) {
	var total uint64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", webhookConfigTable)
	if err := r.storage.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []dto.WebhookConfigDTO{}, 0, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id LIMIT $1 OFFSET $2", webhookFields, webhookConfigTable)
	rows, err := r.storage.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	configs := make([]dto.WebhookConfigDTO, 0)
	for rows.Next() {
		var dbRow dbWebhookConfig
		if err := rows.Scan(&dbRow.ID, &dbRow.Name, &dbRow.URL, &dbRow.Secret, &dbRow.Events, &dbRow.Active, &dbRow.CreatedAt, &dbRow.UpdatedAt); err != nil {
			return nil, 0, err
		}
		configs = append(configs, dbRow.ToDTO())
	}
	return configs, total, rows.Err()
}

func (r *webhookRepository) GetActiveEndpoints(ctx context.Context, event string) ([]WebhookEndpoint, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE active = true AND $1 = ANY(events)", webhookFields, webhookConfigTable)
	rows, err := r.storage.Query(ctx, query, event)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	endpoints := make([]WebhookEndpoint, 0)
	for rows.Next() {
		var dbRow dbWebhookConfig
		if err := rows.Scan(&dbRow.ID, &dbRow.Name, &dbRow.URL, &dbRow.Secret, &dbRow.Events, &dbRow.Active, &dbRow.CreatedAt, &dbRow.UpdatedAt); err != nil {
			return nil, err
		}
		endpoints = append(endpoints, WebhookEndpoint{
			ID:     dbRow.ID,
			Name:   dbRow.Name,
			URL:    dbRow.URL,
			Secret: dbRow.Secret,
			Events: dbRow.Events,
			Active: dbRow.Active,
		})
	}
	return endpoints, rows.Err()
}

func (r *webhookRepository) FindWebhookConfig(ctx context.Context, id uint64) (*dto.WebhookConfigDTO, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", webhookFields, webhookConfigTable)
	dbRow, err := r.scanConfig(r.storage.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	configDTO := dbRow.ToDTO()
	return &configDTO, nil
}

func (r *webhookRepository) CreateWebhookConfig(ctx context.Context, payload dto.CreateWebhookConfigDTO) (*dto.WebhookConfigDTO, error) {
	query := fmt.Sprintf("INSERT INTO %s (name, url, secret, events, active) VALUES ($1, $2, $3, $4, true) RETURNING %s", webhookConfigTable, webhookFields)
	dbRow, err := r.scanConfig(r.storage.QueryRow(ctx, query, payload.Name, payload.URL, payload.Secret, payload.Events))
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

func (r *webhookRepository) UpdateWebhookConfig(ctx context.Context, id uint64, payload dto.UpdateWebhookConfigDTO) (*dto.WebhookConfigDTO, error) {
	var setClauses []string
	var args []interface{}
	argId := 1

	if payload.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argId))
		args = append(args, *payload.Name)
		argId++
	}
	if payload.URL != nil {
		setClauses = append(setClauses, fmt.Sprintf("url = $%d", argId))
		args = append(args, *payload.URL)
		argId++
	}
	if payload.Secret != nil {
		setClauses = append(setClauses, fmt.Sprintf("secret = $%d", argId))
		args = append(args, *payload.Secret)
		argId++
	}
	if payload.Events != nil {
		setClauses = append(setClauses, fmt.Sprintf("events = $%d", argId))
		args = append(args, payload.Events)
		argId++
	}
	if payload.Active != nil {
		setClauses = append(setClauses, fmt.Sprintf("active = $%d", argId))
		args = append(args, *payload.Active)
		argId++
	}
	if len(setClauses) == 0 {
		return r.FindWebhookConfig(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		webhookConfigTable, strings.Join(setClauses, ", "), argId, webhookFields)

	dbRow, err := r.scanConfig(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	configDTO := dbRow.ToDTO()
	return &configDTO, nil
}

func (r *webhookRepository) DeleteWebhookConfig(ctx context.Context, id uint64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", webhookConfigTable)
	tag, err := r.storage.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *webhookRepository) CreateLog(ctx context.Context, webhookID uint64, event, status string, statusCode, attempts int, errText string) error {
	query := fmt.Sprintf("INSERT INTO %s (webhook_id, event, status, status_code, attempts, error) VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))", webhookLogTable)
	_, err := r.storage.Exec(ctx, query, webhookID, event, status, statusCode, attempts, errText)
	return err
}

func (r *webhookRepository) GetLogs(ctx context.Context, webhookID uint64, limit, offset uint64) ([]dto.WebhookLogDTO, uint64, error) {
	var total uint64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE webhook_id = $1", webhookLogTable)
	if err := r.storage.QueryRow(ctx, countQuery, webhookID).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []dto.WebhookLogDTO{}, 0, nil
	}

	query := fmt.Sprintf(`SELECT id, webhook_id, event, status, status_code, attempts, COALESCE(error, ''), created_at
		FROM %s WHERE webhook_id = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`, webhookLogTable)
	rows, err := r.storage.Query(ctx, query, webhookID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	logs := make([]dto.WebhookLogDTO, 0)
	for rows.Next() {
		var logDTO dto.WebhookLogDTO
		var createdAt time.Time
		if err := rows.Scan(&logDTO.ID, &logDTO.WebhookID, &logDTO.Event, &logDTO.Status, &logDTO.StatusCode, &logDTO.Attempts, &logDTO.Error, &createdAt); err != nil {
			return nil, 0, err
		}
		logDTO.CreatedAt = createdAt.Local().Format("2006-01-02 15:04:05")
		logs = append(logs, logDTO)
	}
	return logs, total, rows.Err()
}
