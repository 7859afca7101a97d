package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"qtrack/internal/entities"
	"qtrack/internal/events"
	"qtrack/internal/lifecycle"
	"qtrack/pkg/constants"
	"qtrack/pkg/eventbus"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func newMonitorFixture(t *testing.T, rules []lifecycle.SlaRule) (*fakeDefectRepo, SlaMonitorServiceInterface) {
	t.Helper()
	logger := zap.NewNop()
	defectRepo := newFakeDefectRepo()
	configService := NewSlaConfigService(&fakeSlaConfigRepo{rules: rules}, newFakeCacheRepo(), time.Minute, logger)
	monitor := NewSlaMonitorService(defectRepo, configService, lifecycle.DefaultThresholds(), eventbus.New(logger), logger)
	return defectRepo, monitor
}

func TestSweepClassifiesAgainstDefaults(t *testing.T) {
	repo, monitor := newMonitorFixture(t, nil)
	today := date(2025, 3, 20)

	// 3 дня на этапе — в норме.
	repo.add(entities.Defect{
		DefectNo: "D-OK", Severity: lifecycle.SeverityB,
		OpenDate: date(2025, 3, 17),
		Status:   lifecycle.StatusOngoing,
	})
	// 6 дней — предупреждение по дефолту (5/7).
	repo.add(entities.Defect{
		DefectNo: "D-WARN", Severity: lifecycle.SeverityB,
		OpenDate: date(2025, 3, 14),
		Status:   lifecycle.StatusOngoing,
	})
	// 10 дней — превышение.
	repo.add(entities.Defect{
		DefectNo: "D-OVER", Severity: lifecycle.SeverityA,
		OpenDate: date(2025, 3, 10),
		Status:   lifecycle.StatusOngoing,
	})

	result, err := monitor.Sweep(context.Background(), today)
	require.NoError(t, err)
	require.Equal(t, 3, result.Checked)
	require.Equal(t, 0, result.Skipped)
	require.Len(t, result.Violations, 2)

	byNo := make(map[string]string)
	for _, v := range result.Violations {
		byNo[v.DefectNo] = v.Classification
	}
	require.Equal(t, string(lifecycle.ClassificationWarning), byNo["D-WARN"])
	require.Equal(t, string(lifecycle.ClassificationExceeded), byNo["D-OVER"])
	require.NotContains(t, byNo, "D-OK")
}

func TestSweepMarksExceededAsDelayed(t *testing.T) {
	repo, monitor := newMonitorFixture(t, nil)
	over := repo.add(entities.Defect{
		DefectNo: "D-1", Severity: lifecycle.SeverityS,
		OpenDate: date(2025, 1, 1),
		Status:   lifecycle.StatusOngoing,
	})

	_, err := monitor.Sweep(context.Background(), date(2025, 2, 1))
	require.NoError(t, err)

	stored, err := repo.FindDefect(context.Background(), over.ID)
	require.NoError(t, err)
	require.Equal(t, lifecycle.StatusDelayed, stored.Status)
	require.Equal(t, []uint64{over.ID}, repo.statusUpdates)

	// Повторный проход не дергает статус заново.
	_, err = monitor.Sweep(context.Background(), date(2025, 2, 2))
	require.NoError(t, err)
	require.Equal(t, []uint64{over.ID}, repo.statusUpdates)
}

func TestSweepSkipsDefectWithoutOpenDate(t *testing.T) {
	repo, monitor := newMonitorFixture(t, nil)
	repo.add(entities.Defect{DefectNo: "D-BROKEN", Severity: lifecycle.SeverityC, Status: lifecycle.StatusOngoing})
	repo.add(entities.Defect{
		DefectNo: "D-FINE", Severity: lifecycle.SeverityC,
		OpenDate: date(2025, 3, 19), Status: lifecycle.StatusOngoing,
	})

	result, err := monitor.Sweep(context.Background(), date(2025, 3, 20))
	require.NoError(t, err)
	require.Equal(t, 1, result.Checked)
	require.Equal(t, 1, result.Skipped)
}

func TestSweepIgnoresClosedDefects(t *testing.T) {
	repo, monitor := newMonitorFixture(t, nil)
	closedAt := date(2025, 1, 10)
	repo.add(entities.Defect{
		DefectNo: "D-CLOSED", Severity: lifecycle.SeverityA,
		OpenDate:        date(2025, 1, 1),
		DispositionDate: &closedAt, TechAnalysisDate: &closedAt, RootCauseDate: &closedAt,
		CorrectiveDate: &closedAt, ValidationDate: &closedAt,
		Status: lifecycle.StatusClosed,
	})

	result, err := monitor.Sweep(context.Background(), date(2025, 6, 1))
	require.NoError(t, err)
	require.Equal(t, 0, result.Checked)
	require.Empty(t, result.Violations)
}

func TestCheckDefectUsesConfiguredRules(t *testing.T) {
	rules := []lifecycle.SlaRule{
		{Step: lifecycle.StepAwaitingDisposition, Severity: lifecycle.SeverityS, WarningDays: 1, MaxDays: 2, Active: true},
	}
	repo, monitor := newMonitorFixture(t, rules)

	defect := repo.add(entities.Defect{
		DefectNo: "D-S", Severity: lifecycle.SeverityS,
		OpenDate: date(2025, 3, 17), Status: lifecycle.StatusOngoing,
	})

	violation := monitor.CheckDefect(defect, rules, date(2025, 3, 20))
	require.Equal(t, string(lifecycle.ClassificationExceeded), violation.Classification)
	require.Equal(t, 3, violation.AgingByStep)
	require.Equal(t, 1, violation.WarningDays)
	require.Equal(t, 2, violation.MaxDays)
	require.Equal(t, string(lifecycle.StepAwaitingDisposition), violation.Step)
	require.Equal(t, string(lifecycle.ResponsibleQualityTeam), violation.Responsible)
}

func TestSweepPublishesFreshAging(t *testing.T) {
	logger := zap.NewNop()
	repo := newFakeDefectRepo()
	configService := NewSlaConfigService(&fakeSlaConfigRepo{}, newFakeCacheRepo(), time.Minute, logger)
	bus := eventbus.New(logger)
	monitor := NewSlaMonitorService(repo, configService, lifecycle.DefaultThresholds(), bus, logger)

	published := make(chan events.SlaViolationEvent, 1)
	bus.Subscribe(constants.WebhookEventSlaExceeded, func(ctx context.Context, event eventbus.Event) error {
		published <- event.(events.SlaViolationEvent)
		return nil
	})

	// В строке лежит старение с последнего пересчета при записи; к моменту
	// проверки дефект висит на этапе уже 10 дней.
	repo.add(entities.Defect{
		DefectNo: "D-STALE", Severity: lifecycle.SeverityA,
		OpenDate:    date(2025, 3, 10),
		Status:      lifecycle.StatusOngoing,
		AgingTotal:  1,
		AgingByStep: 1,
	})

	result, err := monitor.Sweep(context.Background(), date(2025, 3, 20))
	require.NoError(t, err)
	require.Len(t, result.Violations, 1)
	require.Equal(t, 10, result.Violations[0].AgingByStep)

	select {
	case event := <-published:
		require.Equal(t, 10, event.Defect.AgingByStep)
		require.Equal(t, 10, event.Defect.AgingTotal)
		require.Equal(t, lifecycle.StatusDelayed, event.Defect.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("событие о нарушении SLA не опубликовано")
	}
}

func TestSweepUsesConfiguredDefaultThresholds(t *testing.T) {
	logger := zap.NewNop()
	repo := newFakeDefectRepo()
	configService := NewSlaConfigService(&fakeSlaConfigRepo{}, newFakeCacheRepo(), time.Minute, logger)
	// Конфигурация ужесточила системный дефолт до 2/3.
	monitor := NewSlaMonitorService(repo, configService,
		lifecycle.SlaThresholds{WarningDays: 2, MaxDays: 3}, eventbus.New(logger), logger)

	repo.add(entities.Defect{
		DefectNo: "D-TIGHT", Severity: lifecycle.SeverityB,
		OpenDate: date(2025, 3, 16), Status: lifecycle.StatusOngoing,
	})

	// 4 дня: по встроенному дефолту 5/7 была бы норма, по конфигу — превышение.
	result, err := monitor.Sweep(context.Background(), date(2025, 3, 20))
	require.NoError(t, err)
	require.Len(t, result.Violations, 1)
	require.Equal(t, string(lifecycle.ClassificationExceeded), result.Violations[0].Classification)
	require.Equal(t, 2, result.Violations[0].WarningDays)
	require.Equal(t, 3, result.Violations[0].MaxDays)
}

func TestGetViolationsHasNoSideEffects(t *testing.T) {
	repo, monitor := newMonitorFixture(t, nil)
	repo.add(entities.Defect{
		DefectNo: "D-OVER", Severity: lifecycle.SeverityA,
		OpenDate: date(2025, 1, 1), Status: lifecycle.StatusOngoing,
	})

	violations, err := monitor.GetViolations(context.Background(), date(2025, 2, 1))
	require.NoError(t, err)
	require.Len(t, violations, 1)
	require.Empty(t, repo.statusUpdates)
}
