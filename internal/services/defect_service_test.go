package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"qtrack/internal/dto"
	"qtrack/internal/lifecycle"
	apperrors "qtrack/pkg/errors"
	"qtrack/pkg/eventbus"
	"qtrack/pkg/utils"
)

func newDefectFixture(t *testing.T) (*fakeDefectRepo, DefectServiceInterface) {
	t.Helper()
	logger := zap.NewNop()
	repo := newFakeDefectRepo()
	return repo, NewDefectService(repo, eventbus.New(logger), logger)
}

func TestCreateDefectRejectsDuplicateNumber(t *testing.T) {
	_, svc := newDefectFixture(t)
	payload := dto.CreateDefectDTO{
		DefectNo:   "QD-2025-007",
		Title:      "Недолив пластика",
		SupplierID: 3,
		Severity:   "A",
		OpenDate:   "2025-03-10",
	}

	_, err := svc.CreateDefect(context.Background(), payload, date(2025, 3, 20))
	require.NoError(t, err)

	_, err = svc.CreateDefect(context.Background(), payload, date(2025, 3, 21))
	require.Error(t, err)

	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusConflict, httpErr.Code)
}

func TestCreateDefectDerivesFields(t *testing.T) {
	_, svc := newDefectFixture(t)
	today := date(2025, 3, 20)

	created, err := svc.CreateDefect(context.Background(), dto.CreateDefectDTO{
		DefectNo:   "QD-2025-001",
		Title:      "Царапины на корпусе",
		SupplierID: 7,
		Severity:   "B",
		OpenDate:   "2025-03-10",
	}, today)
	require.NoError(t, err)

	require.Equal(t, string(lifecycle.StepAwaitingDisposition), created.Step)
	require.Equal(t, string(lifecycle.ResponsibleQualityTeam), created.Responsible)
	require.Equal(t, string(lifecycle.StatusOngoing), created.Status)
	require.Equal(t, 10, created.AgingTotal)
	require.Equal(t, 10, created.AgingByStep)
	require.Equal(t, 0, created.DaysLate)
	require.Equal(t, string(lifecycle.Bucket5To14), created.AgingBucket)
	require.Equal(t, 2025, created.Year)
	require.Equal(t, "WK2510", created.WeekKey)
	require.Equal(t, "March", created.MonthName)
}

func TestUpdateDefectAdvancesStep(t *testing.T) {
	_, svc := newDefectFixture(t)
	today := date(2025, 3, 20)

	created, err := svc.CreateDefect(context.Background(), dto.CreateDefectDTO{
		DefectNo: "QD-2025-002", Title: "Несоответствие размеров", SupplierID: 1, Severity: "A",
		OpenDate: "2025-03-01",
	}, today)
	require.NoError(t, err)

	updated, err := svc.UpdateDefect(context.Background(), created.ID, dto.UpdateDefectDTO{
		DispositionDate: utils.ToPtr("2025-03-05"),
	}, today)
	require.NoError(t, err)

	require.Equal(t, string(lifecycle.StepAwaitingTechAnalysis), updated.Step)
	require.Equal(t, string(lifecycle.ResponsibleSupplier), updated.Responsible)
	require.Equal(t, 19, updated.AgingTotal)
	// Этап начался с вехи disposition: 5 → 20 марта.
	require.Equal(t, 15, updated.AgingByStep)
}

func TestUpdateDefectClearingMilestoneRollsBack(t *testing.T) {
	_, svc := newDefectFixture(t)
	today := date(2025, 3, 20)

	created, err := svc.CreateDefect(context.Background(), dto.CreateDefectDTO{
		DefectNo: "QD-2025-003", Title: "Брак покрытия", SupplierID: 1, Severity: "C",
		OpenDate: "2025-03-01",
	}, today)
	require.NoError(t, err)

	updated, err := svc.UpdateDefect(context.Background(), created.ID, dto.UpdateDefectDTO{
		DispositionDate: utils.ToPtr("2025-03-03"),
	}, today)
	require.NoError(t, err)
	require.Equal(t, string(lifecycle.StepAwaitingTechAnalysis), updated.Step)

	// Веха очищена — дефект возвращается на первый этап.
	rolled, err := svc.UpdateDefect(context.Background(), created.ID, dto.UpdateDefectDTO{
		DispositionDate: utils.ToPtr(""),
	}, today)
	require.NoError(t, err)
	require.Equal(t, string(lifecycle.StepAwaitingDisposition), rolled.Step)
}

func TestUpdateDefectCloseFreezesAging(t *testing.T) {
	_, svc := newDefectFixture(t)

	created, err := svc.CreateDefect(context.Background(), dto.CreateDefectDTO{
		DefectNo: "QD-2025-004", Title: "Трещина сварного шва", SupplierID: 2, Severity: "S",
		OpenDate: "2025-01-01", TargetDate: utils.ToPtr("2025-01-20"),
	}, date(2025, 1, 1))
	require.NoError(t, err)

	closed, err := svc.UpdateDefect(context.Background(), created.ID, dto.UpdateDefectDTO{
		DispositionDate:  utils.ToPtr("2025-01-05"),
		TechAnalysisDate: utils.ToPtr("2025-01-10"),
		RootCauseDate:    utils.ToPtr("2025-01-15"),
		CorrectiveDate:   utils.ToPtr("2025-01-20"),
		ValidationDate:   utils.ToPtr("2025-01-31"),
	}, date(2025, 6, 1))
	require.NoError(t, err)

	require.Equal(t, string(lifecycle.StepClosed), closed.Step)
	require.Equal(t, string(lifecycle.StatusClosed), closed.Status)
	// Старение заморожено на дате закрытия, а не на "сегодня".
	require.Equal(t, 30, closed.AgingTotal)
	require.Equal(t, 0, closed.AgingByStep)
	// Просрочка обнуляется при закрытии.
	require.Equal(t, 0, closed.DaysLate)
	require.Equal(t, string(lifecycle.Bucket30To59), closed.AgingBucket)
}

func TestUpdateDefectWaitingPassesThrough(t *testing.T) {
	_, svc := newDefectFixture(t)
	today := date(2025, 3, 20)

	created, err := svc.CreateDefect(context.Background(), dto.CreateDefectDTO{
		DefectNo: "QD-2025-005", Title: "Ожидание решения закупок", SupplierID: 3, Severity: "B",
		OpenDate: "2025-03-01",
	}, today)
	require.NoError(t, err)

	waiting, err := svc.UpdateDefect(context.Background(), created.ID, dto.UpdateDefectDTO{
		Status: utils.ToPtr(string(lifecycle.StatusWaiting)),
	}, today)
	require.NoError(t, err)
	require.Equal(t, string(lifecycle.StatusWaiting), waiting.Status)

	// Следующее обновление без явного статуса сохраняет WAITING.
	still, err := svc.UpdateDefect(context.Background(), created.ID, dto.UpdateDefectDTO{
		Title: utils.ToPtr("Ожидание решения закупок (обновлено)"),
	}, today)
	require.NoError(t, err)
	require.Equal(t, string(lifecycle.StatusWaiting), still.Status)
}

func TestRecalculateDefectRefreshesAging(t *testing.T) {
	repo, svc := newDefectFixture(t)

	created, err := svc.CreateDefect(context.Background(), dto.CreateDefectDTO{
		DefectNo: "QD-2025-006", Title: "Отслоение краски", SupplierID: 4, Severity: "C",
		OpenDate: "2025-03-01",
	}, date(2025, 3, 1))
	require.NoError(t, err)
	require.Equal(t, 0, created.AgingTotal)

	recalced, err := svc.RecalculateDefect(context.Background(), created.ID, date(2025, 3, 31))
	require.NoError(t, err)
	require.Equal(t, 30, recalced.AgingTotal)

	stored, err := repo.FindDefect(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, 30, stored.AgingTotal)
}

func TestUpdateDefectRejectsEmptyOpenDate(t *testing.T) {
	_, svc := newDefectFixture(t)
	today := date(2025, 3, 20)

	created, err := svc.CreateDefect(context.Background(), dto.CreateDefectDTO{
		DefectNo: "QD-2025-007", Title: "Недолив", SupplierID: 5, Severity: "B",
		OpenDate: "2025-03-10",
	}, today)
	require.NoError(t, err)

	_, err = svc.UpdateDefect(context.Background(), created.ID, dto.UpdateDefectDTO{
		OpenDate: utils.ToPtr(""),
	}, today)
	require.Error(t, err)
}
