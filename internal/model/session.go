package model

import (
	"time"

	"github.com/google/uuid"
)

type SessionType string

const (
	SessionTypeIndividual SessionType = "individual" // Персональная тренировка 1:1
	SessionTypeBlock      SessionType = "block"      // Блокировка зала без клиента
)

type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "scheduled"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

type AttendanceStatus string

const (
	AttendanceAttended AttendanceStatus = "attended"
	AttendanceNoShow   AttendanceStatus = "no_show"
)

// IndividualSession представляет персональную тренировку или блок-бронь зала.
// Цены фиксируются в момент создания и больше не пересчитываются.
type IndividualSession struct {
	ID            int64             `json:"id"`
	Type          SessionType       `json:"type"`
	StaffID       int64             `json:"staff_id"`
	RoomID        int64             `json:"room_id"`
	ClientID      *int64            `json:"client_id"` // указатель - nil для блок-брони
	StartsAt      time.Time         `json:"starts_at"`
	EndsAt        time.Time         `json:"ends_at"`
	Status        SessionStatus     `json:"status"`
	Attendance    *AttendanceStatus `json:"attendance"`
	ServiceTypeID int64             `json:"service_type_id"`
	EntryFeeHUF   int64             `json:"entry_fee_huf"`   // зафиксированная цена входа
	TrainerFeeHUF int64             `json:"trainer_fee_huf"` // зафиксированный гонорар тренера
	Currency      string            `json:"currency"`
	PriceSource   PriceSource       `json:"price_source"`
	SeriesGroupID *uuid.UUID        `json:"series_group_id"` // идентификатор группы регулярной серии
	CancelledAt   *time.Time        `json:"cancelled_at"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`

	// Дополнительные поля для удобства (не из БД)
	Guests []*GuestAssignment `json:"guests,omitempty"`
	Client *Client            `json:"client,omitempty"`
	Staff  *StaffMember       `json:"staff,omitempty"`
}

// Window возвращает временное окно сессии
func (s *IndividualSession) Window() TimeWindow {
	return TimeWindow{StartsAt: s.StartsAt, EndsAt: s.EndsAt}
}

func (s *IndividualSession) BookingRoomID() int64      { return s.RoomID }
func (s *IndividualSession) BookingStaffID() int64     { return s.StaffID }
func (s *IndividualSession) BookingWindow() TimeWindow { return s.Window() }

// GuestAssignment представляет дополнительного участника сессии.
// Для технического гостя Quantity может быть больше единицы -
// одна строка обозначает несколько безымянных посетителей.
type GuestAssignment struct {
	ID            int64             `json:"id"`
	SessionID     int64             `json:"session_id"`
	ClientID      int64             `json:"client_id"`
	Quantity      int               `json:"quantity"`
	GuestIndex    int               `json:"guest_index"`
	EntryFeeHUF   int64             `json:"entry_fee_huf"`
	TrainerFeeHUF int64             `json:"trainer_fee_huf"`
	Currency      string            `json:"currency"`
	PriceSource   PriceSource       `json:"price_source"`
	Attendance    *AttendanceStatus `json:"attendance"`
	CreatedAt     time.Time         `json:"created_at"`
}
