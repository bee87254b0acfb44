package model

import "time"

// Room представляет зал. Зал всегда принадлежит ровно одной площадке.
type Room struct {
	ID        int64     `json:"id"`
	SiteID    int64     `json:"site_id"`
	Name      string    `json:"name"`
	Capacity  *int      `json:"capacity"` // указатель - вместимость может быть не задана
	CreatedAt time.Time `json:"created_at"`
}
