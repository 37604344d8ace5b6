// Package schedule содержит арифметику дат для повторяющихся операций.
// Одна и та же функция Advance используется генератором транзакций
// (двигает реальный курсор шаблона) и прогнозом баланса (двигает
// локальную копию курсора), чтобы расписание и прогноз не расходились.
package schedule

import (
	"fmt"
	"time"
)

type Frequency string

const (
	Daily     Frequency = "daily"
	Weekly    Frequency = "weekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

// ParseFrequency проверяет и нормализует строковое значение периодичности
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case Daily, Weekly, Monthly, Quarterly, Yearly:
		return Frequency(s), nil
	default:
		return "", fmt.Errorf("неизвестная периодичность: %q", s)
	}
}

// Advance возвращает дату следующего вхождения после date.
// Для месячных, квартальных и годовых периодов день месяца прижимается
// к последнему дню целевого месяца: 31 января + 1 месяц = 28/29 февраля,
// а не 2/3 марта, как дал бы time.AddDate.
func Advance(date time.Time, freq Frequency) time.Time {
	switch freq {
	case Daily:
		return date.AddDate(0, 0, 1)
	case Weekly:
		return date.AddDate(0, 0, 7)
	case Monthly:
		return addMonthsClamped(date, 1)
	case Quarterly:
		return addMonthsClamped(date, 3)
	case Yearly:
		return addMonthsClamped(date, 12)
	default:
		// Неизвестная периодичность трактуется как месячная, чтобы
		// курсор гарантированно двигался вперед и цикл генерации
		// не зациклился на одной дате.
		return addMonthsClamped(date, 1)
	}
}

// addMonthsClamped прибавляет months календарных месяцев, прижимая день
// к последнему валидному дню целевого месяца
func addMonthsClamped(date time.Time, months int) time.Time {
	year, month, day := date.Date()

	// Первое число целевого месяца, затем прижатие дня
	target := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, date.Location())
	if last := lastDayOfMonth(target.Year(), target.Month()); day > last {
		day = last
	}

	return time.Date(target.Year(), target.Month(), day,
		date.Hour(), date.Minute(), date.Second(), date.Nanosecond(), date.Location())
}

// lastDayOfMonth возвращает число последнего дня месяца.
// День 0 следующего месяца нормализуется в последний день текущего.
func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// PeriodStart возвращает начало бюджетного периода для даты.
// Сейчас поддерживается только месячный период: первое число месяца.
func PeriodStart(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
}

// TruncateToDay обнуляет время, оставляя только дату
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
