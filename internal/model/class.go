package model

import "time"

type OccurrenceStatus string

const (
	OccurrenceStatusScheduled OccurrenceStatus = "scheduled"
	OccurrenceStatusCompleted OccurrenceStatus = "completed"
	OccurrenceStatusCancelled OccurrenceStatus = "cancelled"
)

type RegistrationStatus string

const (
	RegistrationStatusBooked    RegistrationStatus = "booked"
	RegistrationStatusWaitlist  RegistrationStatus = "waitlist"
	RegistrationStatusCancelled RegistrationStatus = "cancelled"
	RegistrationStatusNoShow    RegistrationStatus = "no_show"
	RegistrationStatusAttended  RegistrationStatus = "attended"
)

// IsActive сообщает, удерживает ли регистрация место или очередь
func (s RegistrationStatus) IsActive() bool {
	return s == RegistrationStatusBooked || s == RegistrationStatusWaitlist
}

// IsConfirmed сообщает, занимает ли регистрация место в классе
func (s RegistrationStatus) IsConfirmed() bool {
	return s == RegistrationStatusBooked || s == RegistrationStatusAttended
}

type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"    // Оплачено кредитом абонемента
	PaymentStatusUnpaid  PaymentStatus = "unpaid"  // Добавлено в долг клиента
	PaymentStatusPending PaymentStatus = "pending" // Оплата ещё не запрашивалась (лист ожидания)
	PaymentStatusComped  PaymentStatus = "comped"  // Оплата явно пропущена администратором
)

// ClassTemplate представляет шаблон регулярного группового занятия
type ClassTemplate struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Weekday          int       `json:"weekday"`      // 0 = Sunday, 6 = Saturday
	StartHour        int       `json:"start_hour"`   // 0-23
	StartMinute      int       `json:"start_minute"` // 0-59
	DurationMinutes  int       `json:"duration_minutes"`
	Capacity         int       `json:"capacity"`
	CreditsRequired  int       `json:"credits_required"`
	BasePriceHUF     int64     `json:"base_price_huf"` // цена по умолчанию, если нет структурных тарифов
	DefaultRoomID    *int64    `json:"default_room_id"`
	DefaultTrainerID *int64    `json:"default_trainer_id"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ClassOccurrence представляет одно конкретное занятие -
// экземпляр шаблона или разовый класс без шаблона.
type ClassOccurrence struct {
	ID            int64            `json:"id"`
	TemplateID    *int64           `json:"template_id"` // указатель - nil для разового класса
	RoomID        int64            `json:"room_id"`
	TrainerID     int64            `json:"trainer_id"`
	StartsAt      time.Time        `json:"starts_at"`
	EndsAt        time.Time        `json:"ends_at"`
	Capacity      int              `json:"capacity"`
	Status        OccurrenceStatus `json:"status"`
	EntryFeeHUF   *int64           `json:"entry_fee_huf"`   // зафиксированная цена, если была разрешена
	TrainerFeeHUF *int64           `json:"trainer_fee_huf"` // зафиксированный гонорар, если был разрешён
	Currency      string           `json:"currency"`
	CreatedAt     time.Time        `json:"created_at"`

	// Дополнительные поля для удобства (не из БД)
	Template *ClassTemplate `json:"template,omitempty"`
}

// Window возвращает временное окно занятия
func (o *ClassOccurrence) Window() TimeWindow {
	return TimeWindow{StartsAt: o.StartsAt, EndsAt: o.EndsAt}
}

func (o *ClassOccurrence) BookingRoomID() int64      { return o.RoomID }
func (o *ClassOccurrence) BookingStaffID() int64     { return o.TrainerID }
func (o *ClassOccurrence) BookingWindow() TimeWindow { return o.Window() }

// Registration представляет заявку клиента на занятие.
// Инвариант: не больше одной активной (booked/waitlist) регистрации
// на пару (занятие, клиент).
type Registration struct {
	ID               int64              `json:"id"`
	OccurrenceID     int64              `json:"occurrence_id"`
	ClientID         int64              `json:"client_id"`
	Status           RegistrationStatus `json:"status"`
	BookedAt         time.Time          `json:"booked_at"`
	CancelledAt      *time.Time         `json:"cancelled_at"`
	CreditsUsed      int                `json:"credits_used"`
	ChargedAmountHUF int64              `json:"charged_amount_huf"` // записанный долг; 0 при оплате кредитами
	PaymentStatus    PaymentStatus      `json:"payment_status"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`

	// Дополнительные поля для удобства (не из БД)
	Client     *Client          `json:"client,omitempty"`
	Occurrence *ClassOccurrence `json:"occurrence,omitempty"`
}
