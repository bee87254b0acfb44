package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studiofit/booking_engine/internal/model"
	"github.com/studiofit/booking_engine/internal/repository/base"
)

// RoomRepository управляет залами в базе данных
type RoomRepository struct {
	db base.Querier
}

func NewRoomRepository(pool *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{db: pool}
}

// WithTx возвращает копию репозитория, привязанную к транзакции
func (r *RoomRepository) WithTx(tx pgx.Tx) *RoomRepository {
	return &RoomRepository{db: tx}
}

// GetByID получает зал по ID
func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*model.Room, error) {
	query := `SELECT id, site_id, name, capacity, created_at FROM rooms WHERE id = $1`

	var room model.Room
	err := r.db.QueryRow(ctx, query, id).Scan(
		&room.ID,
		&room.SiteID,
		&room.Name,
		&room.Capacity,
		&room.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get room by id: %w", err)
	}

	return &room, nil
}

// GetBySite получает все залы площадки
func (r *RoomRepository) GetBySite(ctx context.Context, siteID int64) ([]*model.Room, error) {
	query := `SELECT id, site_id, name, capacity, created_at FROM rooms WHERE site_id = $1 ORDER BY name`

	rows, err := r.db.Query(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("get rooms by site: %w", err)
	}
	defer rows.Close()

	var rooms []*model.Room
	for rows.Next() {
		var room model.Room
		err := rows.Scan(
			&room.ID,
			&room.SiteID,
			&room.Name,
			&room.Capacity,
			&room.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, &room)
	}

	return rooms, rows.Err()
}
