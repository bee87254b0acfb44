package model

import "time"

// TimeWindow представляет полуоткрытый интервал [StartsAt, EndsAt).
// Используется всеми проверками пересечений в движке.
type TimeWindow struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// NewTimeWindow создаёт окно из начала и конца
func NewTimeWindow(startsAt, endsAt time.Time) TimeWindow {
	return TimeWindow{StartsAt: startsAt, EndsAt: endsAt}
}

// Overlaps проверяет пересечение двух окон.
// Касание границ (a.EndsAt == b.StartsAt) пересечением не считается.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.StartsAt.Before(other.EndsAt) && other.StartsAt.Before(w.EndsAt)
}

// Contains проверяет попадание момента времени в окно
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.StartsAt) && t.Before(w.EndsAt)
}

// Duration возвращает длительность окна
func (w TimeWindow) Duration() time.Duration {
	return w.EndsAt.Sub(w.StartsAt)
}

// IsValid проверяет что конец окна строго после начала
func (w TimeWindow) IsValid() bool {
	return w.EndsAt.After(w.StartsAt)
}

// Bookable — любая бронь, занимающая зал и тренера на интервал времени.
// Индивидуальные сессии и занятия групповых классов проверяются
// детектором конфликтов через эту абстракцию.
type Bookable interface {
	BookingRoomID() int64
	BookingStaffID() int64
	BookingWindow() TimeWindow
}
