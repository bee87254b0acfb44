package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studiofit/booking_engine/internal/model"
	"github.com/studiofit/booking_engine/internal/repository/base"
)

// TemplateRepository управляет шаблонами групповых занятий в базе данных
type TemplateRepository struct {
	db base.Querier
}

func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{db: pool}
}

// WithTx возвращает копию репозитория, привязанную к транзакции
func (r *TemplateRepository) WithTx(tx pgx.Tx) *TemplateRepository {
	return &TemplateRepository{db: tx}
}

const templateColumns = `id, name, weekday, start_hour, start_minute, duration_minutes, capacity,
		credits_required, base_price_huf, default_room_id, default_trainer_id, is_active,
		created_at, updated_at`

func scanTemplate(row pgx.Row) (*model.ClassTemplate, error) {
	var t model.ClassTemplate
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Weekday,
		&t.StartHour,
		&t.StartMinute,
		&t.DurationMinutes,
		&t.Capacity,
		&t.CreditsRequired,
		&t.BasePriceHUF,
		&t.DefaultRoomID,
		&t.DefaultTrainerID,
		&t.IsActive,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create создаёт новый шаблон
func (r *TemplateRepository) Create(ctx context.Context, template *model.ClassTemplate) error {
	query := `
		INSERT INTO class_templates (name, weekday, start_hour, start_minute, duration_minutes,
			capacity, credits_required, base_price_huf, default_room_id, default_trainer_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		template.Name,
		template.Weekday,
		template.StartHour,
		template.StartMinute,
		template.DurationMinutes,
		template.Capacity,
		template.CreditsRequired,
		template.BasePriceHUF,
		template.DefaultRoomID,
		template.DefaultTrainerID,
		template.IsActive,
	).Scan(&template.ID, &template.CreatedAt, &template.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create class template: %w", err)
	}

	return nil
}

// GetByID получает шаблон по ID
func (r *TemplateRepository) GetByID(ctx context.Context, id int64) (*model.ClassTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM class_templates WHERE id = $1`

	template, err := scanTemplate(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get class template by id: %w", err)
	}

	return template, nil
}

// GetActive получает все активные шаблоны
func (r *TemplateRepository) GetActive(ctx context.Context) ([]*model.ClassTemplate, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM class_templates
		WHERE is_active = true
		ORDER BY weekday, start_hour, start_minute
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get active class templates: %w", err)
	}
	defer rows.Close()

	var templates []*model.ClassTemplate
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan class template: %w", err)
		}
		templates = append(templates, template)
	}

	return templates, rows.Err()
}

// Deactivate деактивирует шаблон
func (r *TemplateRepository) Deactivate(ctx context.Context, id int64) error {
	query := `UPDATE class_templates SET is_active = false, updated_at = now() WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate class template: %w", err)
	}

	return nil
}
