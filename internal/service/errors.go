package service

import (
	"errors"
	"fmt"

	"github.com/studiofit/booking_engine/internal/model"
)

// Общие ошибки движка. Ошибки хранилища наружу не проходят -
// вызывающий слой всегда получает одну из этих или ConflictError.
var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrOccurrenceNotFound   = errors.New("occurrence not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrTemplateNotFound     = errors.New("class template not found")
	ErrClientNotFound       = errors.New("client not found")
	ErrRoomNotFound         = errors.New("room not found")
	ErrStaffNotFound        = errors.New("staff member not found")
	ErrServiceTypeNotFound  = errors.New("service type not found")
	ErrSettlementNotFound   = errors.New("settlement not found")

	// ErrDuplicateBooking — у клиента уже есть активная регистрация
	// на это занятие. Пути обхода нет.
	ErrDuplicateBooking = errors.New("active registration already exists")

	// ErrOccurrenceCancelled — запись на отменённое занятие невозможна
	ErrOccurrenceCancelled = errors.New("occurrence is cancelled")

	// ErrRegistrationNotActive — операция требует регистрацию в статусе
	// booked или waitlist
	ErrRegistrationNotActive = errors.New("registration is not active")

	// ErrMissingPricing — цена не разрешается ни по одному правилу цепочки
	ErrMissingPricing = errors.New("no resolvable price")

	// ErrNothingCreated — регулярный запрос не породил ни одной сессии
	ErrNothingCreated = errors.New("recurring request produced no sessions")

	// ErrInvalidWindow — конец окна не позже начала
	ErrInvalidWindow = errors.New("end time must be after start time")
)

// ConflictKind указывает тип брони, с которой случилось пересечение
type ConflictKind string

const (
	ConflictKindIndividual ConflictKind = "individual"
	ConflictKindClass      ConflictKind = "class"
)

// ConflictEntry описывает одну пересекающуюся бронь.
// Label — готовая к показу строка для вызывающего слоя.
type ConflictEntry struct {
	Kind   ConflictKind     `json:"kind"`
	ID     int64            `json:"id"`
	Window model.TimeWindow `json:"window"`
	Label  string           `json:"label"`
}

// ConflictError несёт полный список пересечений. Вызывающий слой
// решает сам: показать пользователю или повторить с force-override.
type ConflictError struct {
	Conflicts []ConflictEntry
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 1 {
		return fmt.Sprintf("booking conflict with %s #%d", e.Conflicts[0].Kind, e.Conflicts[0].ID)
	}
	return fmt.Sprintf("booking conflicts with %d existing bookings", len(e.Conflicts))
}

// AsConflictError извлекает ConflictError из цепочки ошибок
func AsConflictError(err error) (*ConflictError, bool) {
	var conflictErr *ConflictError
	if errors.As(err, &conflictErr) {
		return conflictErr, true
	}
	return nil, false
}
