package model

import "time"

// PriceSource указывает, по какому правилу была разрешена цена
type PriceSource string

const (
	PriceSourceClientPriceCode     PriceSource = "client_price_code"
	PriceSourceStaffPriceCode      PriceSource = "staff_price_code"
	PriceSourceServiceTypeDefault  PriceSource = "service_type_default"
	PriceSourceOccurrenceOverride  PriceSource = "occurrence_override"
	PriceSourceTemplateOverride    PriceSource = "template_override"
	PriceSourceClassPricingDefault PriceSource = "class_pricing_default"
	PriceSourceTemplateBasePrice   PriceSource = "template_base_price"
)

// ResolvedPrice — результат разрешения цены: пара тарифов,
// валюта и источник, по которому цена была найдена.
type ResolvedPrice struct {
	EntryFeeHUF   int64       `json:"entry_fee_huf"`
	TrainerFeeHUF int64       `json:"trainer_fee_huf"`
	Currency      string      `json:"currency"`
	Source        PriceSource `json:"source"`
}

// ServiceType представляет категорию индивидуальной тренировки
// с тарифами по умолчанию.
type ServiceType struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	EntryFeeHUF   int64     `json:"entry_fee_huf"`
	TrainerFeeHUF int64     `json:"trainer_fee_huf"`
	Currency      string    `json:"currency"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// ClientPriceCode — персональный тариф клиента на тип услуги.
// На одну пару (клиент, услуга) может существовать несколько строк
// с разными окнами действия - так моделируется история цен.
type ClientPriceCode struct {
	ID            int64     `json:"id"`
	ClientID      int64     `json:"client_id"`
	ServiceTypeID int64     `json:"service_type_id"`
	EntryFeeHUF   int64     `json:"entry_fee_huf"`
	TrainerFeeHUF int64     `json:"trainer_fee_huf"`
	Currency      string    `json:"currency"`
	ValidFrom     time.Time `json:"valid_from"`
	ValidUntil    time.Time `json:"valid_until"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// StaffPriceCode — персональный гонорар тренера на тип услуги
type StaffPriceCode struct {
	ID            int64     `json:"id"`
	StaffID       int64     `json:"staff_id"`
	ServiceTypeID int64     `json:"service_type_id"`
	EntryFeeHUF   int64     `json:"entry_fee_huf"`
	TrainerFeeHUF int64     `json:"trainer_fee_huf"`
	Currency      string    `json:"currency"`
	ValidFrom     time.Time `json:"valid_from"`
	ValidUntil    time.Time `json:"valid_until"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// ClassPricingDefault — общий тариф групповых занятий с окном действия
type ClassPricingDefault struct {
	ID            int64     `json:"id"`
	EntryFeeHUF   int64     `json:"entry_fee_huf"`
	TrainerFeeHUF int64     `json:"trainer_fee_huf"`
	Currency      string    `json:"currency"`
	ValidFrom     time.Time `json:"valid_from"`
	ValidUntil    time.Time `json:"valid_until"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// ClientClassPricing — персональный тариф клиента на групповые занятия.
// Привязывается либо к конкретному занятию (наиболее специфичный),
// либо к шаблону класса (более общий).
type ClientClassPricing struct {
	ID            int64     `json:"id"`
	ClientID      int64     `json:"client_id"`
	OccurrenceID  *int64    `json:"occurrence_id"` // указатель - задан для привязки к занятию
	TemplateID    *int64    `json:"template_id"`   // указатель - задан для привязки к шаблону
	EntryFeeHUF   int64     `json:"entry_fee_huf"`
	TrainerFeeHUF int64     `json:"trainer_fee_huf"`
	Currency      string    `json:"currency"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}
