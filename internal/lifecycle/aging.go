package lifecycle

import "time"

// atMidnight отбрасывает время: вся арифметика в целых календарных днях.
func atMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween — количество календарных дней от start до end.
// Может быть отрицательным, клампится вызывающим.
func daysBetween(start, end time.Time) int {
	return int(atMidnight(end).Sub(atMidnight(start)).Hours() / 24)
}

func clampDays(d int) int {
	if d < 0 {
		return 0
	}
	return d
}

// ComputeAging считает все метрики старения на момент today.
//
//   - Total: openDate → today; для закрытого дефекта замораживается на дате
//     валидации.
//   - ByStep: с даты последней пройденной вехи (или openDate на первом этапе).
//   - DaysLate: просрочка относительно targetDate; обнуляется при закрытии.
//   - Bucket: корзина по Total.
//
// Отрицательные разницы (openDate в будущем — битые данные) клампятся в ноль.
func ComputeAging(dates MilestoneDates, step Step, status Status, today time.Time) Aging {
	var aging Aging

	if step == StepClosed && dates.Validation != nil {
		aging.Total = clampDays(daysBetween(dates.OpenDate, *dates.Validation))
	} else {
		aging.Total = clampDays(daysBetween(dates.OpenDate, today))
	}

	aging.ByStep = clampDays(daysBetween(stepEnteredAt(dates, step), today))
	if step == StepClosed {
		aging.ByStep = 0
	}

	if status != StatusClosed && dates.TargetDate != nil {
		aging.DaysLate = clampDays(daysBetween(*dates.TargetDate, today))
	}

	aging.Bucket = BucketFor(aging.Total)
	return aging
}

// stepEnteredAt — дата входа в текущий этап: веха, предшествующая этапу,
// либо openDate для первого этапа.
func stepEnteredAt(dates MilestoneDates, step Step) time.Time {
	milestones := dates.milestones()
	for i, s := range stepOrder {
		if s != step {
			continue
		}
		if i == 0 {
			return dates.OpenDate
		}
		if prev := milestones[i-1]; prev != nil {
			return *prev
		}
		// Предыдущая веха пуста (данные не по порядку) — считаем от открытия.
		return dates.OpenDate
	}
	return dates.OpenDate
}

// BucketFor раскладывает старение по корзинам. Верхние границы включительны
// (4, 14, 29, 59), последняя корзина открыта.
func BucketFor(agingDays int) Bucket {
	switch {
	case agingDays <= 4:
		return BucketUpTo4
	case agingDays <= 14:
		return Bucket5To14
	case agingDays <= 29:
		return Bucket15To29
	case agingDays <= 59:
		return Bucket30To59
	default:
		return BucketOver60
	}
}
