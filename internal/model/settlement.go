package model

import (
	"time"

	"github.com/google/uuid"
)

type SettlementStatus string

const (
	SettlementStatusDraft     SettlementStatus = "draft"
	SettlementStatusFinalized SettlementStatus = "finalized"
	SettlementStatusPaid      SettlementStatus = "paid"
)

// Settlement представляет расчётную ведомость тренера за период.
// После создания итоги не меняются - переходы статуса их не трогают.
type Settlement struct {
	ID                 int64            `json:"id"`
	Reference          uuid.UUID        `json:"reference"`
	StaffID            int64            `json:"staff_id"`
	PeriodStart        time.Time        `json:"period_start"`
	PeriodEnd          time.Time        `json:"period_end"`
	Status             SettlementStatus `json:"status"`
	TotalEntryFeeHUF   int64            `json:"total_entry_fee_huf"`
	TotalTrainerFeeHUF int64            `json:"total_trainer_fee_huf"`
	Currency           string           `json:"currency"`
	CreatedAt          time.Time        `json:"created_at"`
	FinalizedAt        *time.Time       `json:"finalized_at"`
	PaidAt             *time.Time       `json:"paid_at"`

	// Дополнительные поля для удобства (не из БД)
	Items []*SettlementItem `json:"items,omitempty"`
}

// SettlementItem — неизменяемый снимок одной посещённой тренировки
// или регистрации в составе ведомости.
type SettlementItem struct {
	ID             int64     `json:"id"`
	SettlementID   int64     `json:"settlement_id"`
	SessionID      *int64    `json:"session_id"`      // указатель - задан для индивидуальной сессии
	OccurrenceID   *int64    `json:"occurrence_id"`   // указатель - задан для группового занятия
	RegistrationID *int64    `json:"registration_id"` // указатель - задан для регистрации на класс
	ClientID       *int64    `json:"client_id"`
	EntryFeeHUF    int64     `json:"entry_fee_huf"`
	TrainerFeeHUF  int64     `json:"trainer_fee_huf"`
	Currency       string    `json:"currency"`
	Status         string    `json:"status"` // статус посещения на момент генерации
	CreatedAt      time.Time `json:"created_at"`
}
