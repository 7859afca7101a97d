package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeAging_OpenDefect(t *testing.T) {
	today := date(2025, time.June, 20)
	dates := MilestoneDates{OpenDate: date(2025, time.June, 10)}

	aging := ComputeAging(dates, StepAwaitingDisposition, StatusOngoing, today)

	assert.Equal(t, 10, aging.Total)
	assert.Equal(t, 10, aging.ByStep, "на первом этапе старение идет от даты открытия")
	assert.Equal(t, 0, aging.DaysLate)
	assert.Equal(t, Bucket5To14, aging.Bucket)
}

func TestComputeAging_ByStepFromLastMilestone(t *testing.T) {
	today := date(2025, time.June, 21)
	dates := MilestoneDates{
		OpenDate:     date(2025, time.June, 1), // 20 дней назад
		Disposition:  datePtr(2025, time.June, 5),
		TechAnalysis: datePtr(2025, time.June, 12),
		RootCause:    datePtr(2025, time.June, 18), // 3 дня назад
	}

	step := DeriveStep(dates)
	assert.Equal(t, StepAwaitingCorrectiveAction, step)
	assert.Equal(t, ResponsibleSupplier, ResolveResponsible(step))

	aging := ComputeAging(dates, step, StatusOngoing, today)
	assert.Equal(t, 20, aging.Total)
	assert.Equal(t, 3, aging.ByStep)
}

func TestComputeAging_TotalFreezesOnClose(t *testing.T) {
	today := date(2026, time.January, 1)
	dates := MilestoneDates{
		OpenDate:         date(2025, time.March, 1),
		Disposition:      datePtr(2025, time.March, 2),
		TechAnalysis:     datePtr(2025, time.March, 5),
		RootCause:        datePtr(2025, time.March, 10),
		CorrectiveAction: datePtr(2025, time.March, 20),
		Validation:       datePtr(2025, time.March, 31),
	}

	aging := ComputeAging(dates, StepClosed, StatusClosed, today)

	assert.Equal(t, 30, aging.Total, "после закрытия возраст заморожен на дате валидации")
	assert.Equal(t, 0, aging.ByStep)
}

func TestComputeAging_DaysLate(t *testing.T) {
	today := date(2025, time.July, 15)

	open := MilestoneDates{
		OpenDate:   date(2025, time.July, 1),
		TargetDate: datePtr(2025, time.July, 10),
	}
	aging := ComputeAging(open, StepAwaitingDisposition, StatusOngoing, today)
	assert.Equal(t, 5, aging.DaysLate)

	// Цель в будущем — просрочки нет.
	open.TargetDate = datePtr(2025, time.July, 20)
	aging = ComputeAging(open, StepAwaitingDisposition, StatusOngoing, today)
	assert.Equal(t, 0, aging.DaysLate)
}

// Просрочка обнуляется при закрытии, какой бы старой ни была цель.
func TestComputeAging_LatenessClearsOnClose(t *testing.T) {
	today := date(2025, time.December, 1)
	dates := MilestoneDates{
		OpenDate:         date(2025, time.January, 1),
		TargetDate:       datePtr(2025, time.February, 1),
		Disposition:      datePtr(2025, time.January, 5),
		TechAnalysis:     datePtr(2025, time.January, 10),
		RootCause:        datePtr(2025, time.January, 15),
		CorrectiveAction: datePtr(2025, time.January, 20),
		Validation:       datePtr(2025, time.January, 30),
	}

	aging := ComputeAging(dates, StepClosed, StatusClosed, today)
	assert.Equal(t, 0, aging.DaysLate)
}

// Дата открытия в будущем — битые данные, но старение не должно уйти в минус.
func TestComputeAging_NonNegative(t *testing.T) {
	today := date(2025, time.April, 1)
	dates := MilestoneDates{OpenDate: date(2025, time.April, 10)}

	aging := ComputeAging(dates, StepAwaitingDisposition, StatusOngoing, today)
	assert.GreaterOrEqual(t, aging.Total, 0)
	assert.GreaterOrEqual(t, aging.ByStep, 0)
}

func TestBucketFor_Boundaries(t *testing.T) {
	cases := []struct {
		days int
		want Bucket
	}{
		{0, BucketUpTo4},
		{4, BucketUpTo4},
		{5, Bucket5To14},
		{14, Bucket5To14},
		{15, Bucket15To29},
		{29, Bucket15To29},
		{30, Bucket30To59},
		{59, Bucket30To59},
		{60, BucketOver60},
		{100, BucketOver60},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, BucketFor(c.days), "%d дней", c.days)
	}
}

func TestDerive_FullRecalculation(t *testing.T) {
	today := date(2025, time.June, 20)
	dates := MilestoneDates{OpenDate: date(2025, time.June, 10)}

	derived := Derive(dates, "", today)

	assert.Equal(t, StepAwaitingDisposition, derived.Step)
	assert.Equal(t, ResponsibleQualityTeam, derived.Responsible)
	assert.Equal(t, StatusOngoing, derived.Status)
	assert.Equal(t, 10, derived.Aging.Total)
	assert.Equal(t, Bucket5To14, derived.Aging.Bucket)
	assert.Equal(t, 2025, derived.Year)
	assert.Equal(t, "June", derived.MonthName)
}

func TestDerive_ClosedIgnoresAging(t *testing.T) {
	today := date(2027, time.January, 1)
	dates := MilestoneDates{
		OpenDate:         date(2025, time.March, 1),
		Disposition:      datePtr(2025, time.March, 2),
		TechAnalysis:     datePtr(2025, time.March, 5),
		RootCause:        datePtr(2025, time.March, 10),
		CorrectiveAction: datePtr(2025, time.March, 20),
		Validation:       datePtr(2025, time.March, 31),
	}

	derived := Derive(dates, StatusOngoing, today)
	assert.Equal(t, StepClosed, derived.Step)
	assert.Equal(t, StatusClosed, derived.Status, "статус обязан стать CLOSED независимо от старения")
	assert.Equal(t, ResponsibleQualityTeam, derived.Responsible)
}
