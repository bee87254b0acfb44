// Package recurrence разворачивает недельный паттерн в конкретные даты.
// Все функции чистые: результат зависит только от аргументов.
package recurrence

import "time"

const dateKeyLayout = "2006-01-02"

// ExpandWeekly возвращает упорядоченный список дат, попадающих на weekday
// в диапазоне [from, until] (обе границы включительно).
//
// Семантика:
//   - from продвигается только вперёд до первой даты нужного дня недели;
//   - дальше шаг ровно 7 дней, пока не превышен until;
//   - даты из skip опускаются, но недельный ритм не сбивают -
//     следующая неделя всё равно генерируется.
func ExpandWeekly(weekday time.Weekday, from, until time.Time, skip []time.Time) []time.Time {
	from = truncateToDay(from)
	until = truncateToDay(until)
	if until.Before(from) {
		return nil
	}

	skipSet := make(map[string]struct{}, len(skip))
	for _, d := range skip {
		skipSet[d.Format(dateKeyLayout)] = struct{}{}
	}

	// Продвигаемся к первой дате с нужным днём недели
	current := from
	for current.Weekday() != weekday {
		current = current.AddDate(0, 0, 1)
	}

	var dates []time.Time
	for !current.After(until) {
		if _, skipped := skipSet[current.Format(dateKeyLayout)]; !skipped {
			dates = append(dates, current)
		}
		current = current.AddDate(0, 0, 7)
	}

	return dates
}

// At совмещает дату с якорным временем начала
func At(date time.Time, hour, minute int, loc *time.Location) time.Time {
	if loc == nil {
		loc = date.Location()
	}
	y, m, d := date.In(loc).Date()
	return time.Date(y, m, d, hour, minute, 0, 0, loc)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
