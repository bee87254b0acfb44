package service

import (
	"fmt"

	"github.com/studiofit/booking_engine/internal/model"
)

// FormatPriceHUF форматирует сумму в форинтах
func FormatPriceHUF(amount int64) string {
	return fmt.Sprintf("%d Ft", amount)
}

// FormatWindow форматирует временное окно для показа пользователю
func FormatWindow(w model.TimeWindow) string {
	if w.StartsAt.Year() == w.EndsAt.Year() && w.StartsAt.YearDay() == w.EndsAt.YearDay() {
		return fmt.Sprintf("%s %s–%s",
			w.StartsAt.Format("2006-01-02"),
			w.StartsAt.Format("15:04"),
			w.EndsAt.Format("15:04"))
	}
	return fmt.Sprintf("%s – %s",
		w.StartsAt.Format("2006-01-02 15:04"),
		w.EndsAt.Format("2006-01-02 15:04"))
}

func sessionLabel(session *model.IndividualSession, client *model.Client) string {
	name := "блок-бронь"
	if client != nil {
		name = client.FullName()
	}
	return fmt.Sprintf("%s, %s", name, FormatWindow(session.Window()))
}

func occurrenceLabel(occ *model.ClassOccurrence, template *model.ClassTemplate) string {
	name := "разовый класс"
	if template != nil {
		name = template.Name
	}
	return fmt.Sprintf("%s, %s", name, FormatWindow(occ.Window()))
}
