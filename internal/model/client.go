package model

import "time"

type Client struct {
	ID               int64     `json:"id"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email"`
	IsTechnicalGuest bool      `json:"is_technical_guest"` // служебный клиент для неизвестных гостей
	UnpaidBalanceHUF int64     `json:"unpaid_balance_huf"` // накопленный неоплаченный долг
	CreatedAt        time.Time `json:"created_at"`
}

// FullName возвращает отображаемое имя клиента
func (c *Client) FullName() string {
	if c.IsTechnicalGuest {
		return "Гость"
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// ClientPass представляет абонемент клиента с кредитами на занятия
type ClientPass struct {
	ID               int64     `json:"id"`
	ClientID         int64     `json:"client_id"`
	RemainingCredits int       `json:"remaining_credits"`
	ValidFrom        time.Time `json:"valid_from"`
	ValidUntil       time.Time `json:"valid_until"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}
