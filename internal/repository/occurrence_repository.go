package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studiofit/booking_engine/internal/model"
	"github.com/studiofit/booking_engine/internal/repository/base"
)

// OccurrenceRepository управляет занятиями групповых классов в базе данных
type OccurrenceRepository struct {
	db base.Querier
}

func NewOccurrenceRepository(pool *pgxpool.Pool) *OccurrenceRepository {
	return &OccurrenceRepository{db: pool}
}

// WithTx возвращает копию репозитория, привязанную к транзакции
func (r *OccurrenceRepository) WithTx(tx pgx.Tx) *OccurrenceRepository {
	return &OccurrenceRepository{db: tx}
}

const occurrenceColumns = `id, template_id, room_id, trainer_id, starts_at, ends_at, capacity, status,
		entry_fee_huf, trainer_fee_huf, currency, created_at`

func scanOccurrence(row pgx.Row) (*model.ClassOccurrence, error) {
	var o model.ClassOccurrence
	err := row.Scan(
		&o.ID,
		&o.TemplateID,
		&o.RoomID,
		&o.TrainerID,
		&o.StartsAt,
		&o.EndsAt,
		&o.Capacity,
		&o.Status,
		&o.EntryFeeHUF,
		&o.TrainerFeeHUF,
		&o.Currency,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func collectOccurrences(rows pgx.Rows) ([]*model.ClassOccurrence, error) {
	defer rows.Close()

	var occurrences []*model.ClassOccurrence
	for rows.Next() {
		occurrence, err := scanOccurrence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan occurrence: %w", err)
		}
		occurrences = append(occurrences, occurrence)
	}

	return occurrences, rows.Err()
}

// Create создаёт новое занятие
func (r *OccurrenceRepository) Create(ctx context.Context, occurrence *model.ClassOccurrence) error {
	query := `
		INSERT INTO class_occurrences (template_id, room_id, trainer_id, starts_at, ends_at, capacity,
			status, entry_fee_huf, trainer_fee_huf, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		occurrence.TemplateID,
		occurrence.RoomID,
		occurrence.TrainerID,
		occurrence.StartsAt,
		occurrence.EndsAt,
		occurrence.Capacity,
		occurrence.Status,
		occurrence.EntryFeeHUF,
		occurrence.TrainerFeeHUF,
		occurrence.Currency,
	).Scan(&occurrence.ID, &occurrence.CreatedAt)

	if err != nil {
		return fmt.Errorf("create occurrence: %w", err)
	}

	return nil
}

// GetByID получает занятие по ID
func (r *OccurrenceRepository) GetByID(ctx context.Context, id int64) (*model.ClassOccurrence, error) {
	query := `SELECT ` + occurrenceColumns + ` FROM class_occurrences WHERE id = $1`

	occurrence, err := scanOccurrence(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get occurrence by id: %w", err)
	}

	return occurrence, nil
}

// GetByIDForUpdate получает занятие с блокировкой строки.
// Блокировка удерживает параллельные бронирования от одновременного
// прохода проверки вместимости. Вызывается только внутри транзакции.
func (r *OccurrenceRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.ClassOccurrence, error) {
	query := `SELECT ` + occurrenceColumns + ` FROM class_occurrences WHERE id = $1 FOR UPDATE`

	occurrence, err := scanOccurrence(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get occurrence for update: %w", err)
	}

	return occurrence, nil
}

// FindOverlappingByRoom находит неотменённые занятия зала,
// пересекающиеся с окном. excludeID исключает перемещаемое занятие (0 — без исключений).
func (r *OccurrenceRepository) FindOverlappingByRoom(ctx context.Context, roomID int64, window model.TimeWindow, excludeID int64) ([]*model.ClassOccurrence, error) {
	query := `
		SELECT ` + occurrenceColumns + `
		FROM class_occurrences
		WHERE room_id = $1
		  AND status <> 'cancelled'
		  AND starts_at < $3
		  AND ends_at > $2
		  AND id <> $4
		ORDER BY starts_at
	`

	rows, err := r.db.Query(ctx, query, roomID, window.StartsAt, window.EndsAt, excludeID)
	if err != nil {
		return nil, fmt.Errorf("find overlapping occurrences by room: %w", err)
	}

	return collectOccurrences(rows)
}

// FindOverlappingByTrainer находит неотменённые занятия тренера,
// пересекающиеся с окном, независимо от зала
func (r *OccurrenceRepository) FindOverlappingByTrainer(ctx context.Context, trainerID int64, window model.TimeWindow, excludeID int64) ([]*model.ClassOccurrence, error) {
	query := `
		SELECT ` + occurrenceColumns + `
		FROM class_occurrences
		WHERE trainer_id = $1
		  AND status <> 'cancelled'
		  AND starts_at < $3
		  AND ends_at > $2
		  AND id <> $4
		ORDER BY starts_at
	`

	rows, err := r.db.Query(ctx, query, trainerID, window.StartsAt, window.EndsAt, excludeID)
	if err != nil {
		return nil, fmt.Errorf("find overlapping occurrences by trainer: %w", err)
	}

	return collectOccurrences(rows)
}

// GetByTrainerInPeriod получает неотменённые занятия тренера,
// начинающиеся в периоде [from, to]
func (r *OccurrenceRepository) GetByTrainerInPeriod(ctx context.Context, trainerID int64, from, to time.Time) ([]*model.ClassOccurrence, error) {
	query := `
		SELECT ` + occurrenceColumns + `
		FROM class_occurrences
		WHERE trainer_id = $1
		  AND status <> 'cancelled'
		  AND starts_at >= $2
		  AND starts_at <= $3
		ORDER BY starts_at
	`

	rows, err := r.db.Query(ctx, query, trainerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("get occurrences by trainer in period: %w", err)
	}

	return collectOccurrences(rows)
}

// ExistsForTemplateAt проверяет, создано ли уже занятие шаблона
// на указанное время. Нужно генератору, чтобы не плодить дубликаты.
func (r *OccurrenceRepository) ExistsForTemplateAt(ctx context.Context, templateID int64, startsAt time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM class_occurrences
			WHERE template_id = $1 AND starts_at = $2 AND status <> 'cancelled'
		)
	`

	var exists bool
	err := r.db.QueryRow(ctx, query, templateID, startsAt).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check occurrence exists: %w", err)
	}

	return exists, nil
}

// Cancel отменяет занятие
func (r *OccurrenceRepository) Cancel(ctx context.Context, id int64) error {
	query := `
		UPDATE class_occurrences
		SET status = 'cancelled'
		WHERE id = $1 AND status <> 'cancelled'
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("cancel occurrence: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("occurrence not found or already cancelled")
	}

	return nil
}
