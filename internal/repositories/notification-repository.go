package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"qtrack/internal/dto"
	apperrors "qtrack/pkg/errors"
	"qtrack/pkg/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

type dbNotification struct {
	ID        uint64
	DefectID  uint64
	DefectNo  sql.NullString
	Type      string
	Message   string
	Status    string
	CreatedAt time.Time
	SentAt    sql.NullTime
}

func (db *dbNotification) ToDTO() dto.NotificationDTO {
	return dto.NotificationDTO{
		ID:        db.ID,
		DefectID:  db.DefectID,
		DefectNo:  utils.NullStringToString(db.DefectNo),
		Type:      db.Type,
		Message:   db.Message,
		Status:    db.Status,
		CreatedAt: db.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		SentAt:    utils.NullTimeToEmptyString(db.SentAt),
	}
}

const notificationTable = "notifications"

type NotificationRepositoryInterface interface {
	GetNotifications(ctx context.Context, limit, offset uint64, status string) ([]dto.NotificationDTO, uint64, error)
	CreateNotification(ctx context.Context, defectID uint64, notifType, message string) (uint64, error)
	MarkSent(ctx context.Context, id uint64) error
	MarkFailed(ctx context.Context, id uint64) error
}

type notificationRepository struct{ storage *pgxpool.Pool }

func NewNotificationRepository(storage *pgxpool.Pool) NotificationRepositoryInterface {
	return &notificationRepository{storage: storage}
}

func (r *notificationRepository) GetNotifications(ctx context.Context, limit, offset uint64, status string) ([]dto.NotificationDTO, uint64, error) {
	var total uint64
	var args []interface{}
	whereClause := ""

	if status != "" {
		whereClause = "WHERE n.status = $1"
		args = append(args, status)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s n %s", notificationTable, whereClause)
	if err := r.storage.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []dto.NotificationDTO{}, 0, nil
	}

	queryArgs := append(args, limit, offset)
	query := fmt.Sprintf(`SELECT n.id, n.defect_id, d.defect_no, n.type, n.message, n.status, n.created_at, n.sent_at
		FROM %s n
		LEFT JOIN defects d ON d.id = n.defect_id
		%s ORDER BY n.id DESC LIMIT $%d OFFSET $%d`,
		notificationTable, whereClause, len(args)+1, len(args)+2)

	rows, err := r.storage.Query(ctx, query, queryArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notifications := make([]dto.NotificationDTO, 0)
	for rows.Next() {
		var dbRow dbNotification
		if err := rows.Scan(&dbRow.ID, &dbRow.DefectID, &dbRow.DefectNo, &dbRow.Type, &dbRow.Message, &dbRow.Status, &dbRow.CreatedAt, &dbRow.SentAt); err != nil {
			return nil, 0, err
		}
		notifications = append(notifications, dbRow.ToDTO())
	}
	return notifications, total, rows.Err()
}

func (r *notificationRepository) CreateNotification(ctx context.Context, defectID uint64, notifType, message string) (uint64, error) {
	query := fmt.Sprintf("INSERT INTO %s (defect_id, type, message, status) VALUES ($1, $2, $3, 'PENDING') RETURNING id", notificationTable)
	var id uint64
	if err := r.storage.QueryRow(ctx, query, defectID, notifType, message).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *notificationRepository) MarkSent(ctx context.Context, id uint64) error {
	query := fmt.Sprintf("UPDATE %s SET status = 'SENT', sent_at = NOW() WHERE id = $1", notificationTable)
	tag, err := r.storage.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) MarkFailed(ctx context.Context, id uint64) error {
	query := fmt.Sprintf("UPDATE %s SET status = 'FAILED' WHERE id = $1", notificationTable)
	tag, err := r.storage.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
