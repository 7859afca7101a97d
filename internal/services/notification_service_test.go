package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"qtrack/internal/dto"
	"qtrack/internal/entities"
	"qtrack/internal/lifecycle"
)

type fakeNotificationRepo struct {
	nextID  uint64
	created []string
	sent    []uint64
	failed  []uint64
}

func (r *fakeNotificationRepo) GetNotifications(ctx context.Context, limit, offset uint64, status string) ([]dto.NotificationDTO, uint64, error) {
	return nil, 0, nil
}

func (r *fakeNotificationRepo) CreateNotification(ctx context.Context, defectID uint64, notifType, message string) (uint64, error) {
	r.nextID++
	r.created = append(r.created, notifType)
	return r.nextID, nil
}

func (r *fakeNotificationRepo) MarkSent(ctx context.Context, id uint64) error {
	r.sent = append(r.sent, id)
	return nil
}

func (r *fakeNotificationRepo) MarkFailed(ctx context.Context, id uint64) error {
	r.failed = append(r.failed, id)
	return nil
}

type failingSender struct{}

func (s *failingSender) Send(ctx context.Context, notifType, message string) error {
	return errors.New("smtp: connection refused")
}

func TestNotifyStepChangeMarksSent(t *testing.T) {
	repo := &fakeNotificationRepo{}
	logger := zap.NewNop()
	svc := NewNotificationService(repo, NewLogSender(logger), logger)

	err := svc.NotifyStepChange(context.Background(), entities.Defect{ID: 5, DefectNo: "QD-5"},
		lifecycle.StepAwaitingDisposition, lifecycle.StepAwaitingTechAnalysis)
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	require.Equal(t, []uint64{1}, repo.sent)
	require.Empty(t, repo.failed)
}

func TestNotifySlaViolationMarksFailedOnDeliveryError(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, &failingSender{}, zap.NewNop())

	// Сбой доставки не валит операцию: запись создана и помечена FAILED.
	err := svc.NotifySlaViolation(context.Background(),
		entities.Defect{ID: 9, DefectNo: "QD-9", AgingByStep: 12, Step: lifecycle.StepAwaitingRootCause},
		lifecycle.ClassificationExceeded,
		lifecycle.SlaThresholds{WarningDays: 5, MaxDays: 7},
	)
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	require.Empty(t, repo.sent)
	require.Equal(t, []uint64{1}, repo.failed)
}
