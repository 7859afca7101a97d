package lifecycle

import (
	"fmt"
	"time"
)

// Календарные ключи для группировки в отчетах. Бизнес-логики тут нет,
// но схема недель историческая: простое деление дня года на 7, НЕ ISO-8601.
// Существующие данные сгруппированы именно так.

// Year — календарный год даты открытия.
func Year(date time.Time) int {
	return date.Year()
}

// WeekKey — ключ недели в формате WK<YY><WW>: неделя 1 — первые семь дней
// января, дальше каждые 7 дней.
func WeekKey(date time.Time) string {
	week := (date.YearDay()-1)/7 + 1
	return fmt.Sprintf("WK%02d%02d", date.Year()%100, week)
}

// MonthName — полное английское имя месяца.
func MonthName(date time.Time) string {
	return date.Month().String()
}
