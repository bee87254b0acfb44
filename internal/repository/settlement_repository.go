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

// SettlementRepository управляет расчётными ведомостями в базе данных.
// Позиции ведомости только добавляются и никогда не изменяются.
type SettlementRepository struct {
	db base.Querier
}

func NewSettlementRepository(pool *pgxpool.Pool) *SettlementRepository {
	return &SettlementRepository{db: pool}
}

// WithTx возвращает копию репозитория, привязанную к транзакции
func (r *SettlementRepository) WithTx(tx pgx.Tx) *SettlementRepository {
	return &SettlementRepository{db: tx}
}

// Create создаёт заголовок ведомости
func (r *SettlementRepository) Create(ctx context.Context, settlement *model.Settlement) error {
	query := `
		INSERT INTO settlements (reference, staff_id, period_start, period_end, status,
			total_entry_fee_huf, total_trainer_fee_huf, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		settlement.Reference,
		settlement.StaffID,
		settlement.PeriodStart,
		settlement.PeriodEnd,
		settlement.Status,
		settlement.TotalEntryFeeHUF,
		settlement.TotalTrainerFeeHUF,
		settlement.Currency,
	).Scan(&settlement.ID, &settlement.CreatedAt)

	if err != nil {
		return fmt.Errorf("create settlement: %w", err)
	}

	return nil
}

// CreateItem добавляет позицию в ведомость
func (r *SettlementRepository) CreateItem(ctx context.Context, item *model.SettlementItem) error {
	query := `
		INSERT INTO settlement_items (settlement_id, session_id, occurrence_id, registration_id,
			client_id, entry_fee_huf, trainer_fee_huf, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		item.SettlementID,
		item.SessionID,
		item.OccurrenceID,
		item.RegistrationID,
		item.ClientID,
		item.EntryFeeHUF,
		item.TrainerFeeHUF,
		item.Currency,
		item.Status,
	).Scan(&item.ID, &item.CreatedAt)

	if err != nil {
		return fmt.Errorf("create settlement item: %w", err)
	}

	return nil
}

// GetByID получает ведомость по ID
func (r *SettlementRepository) GetByID(ctx context.Context, id int64) (*model.Settlement, error) {
	query := `
		SELECT id, reference, staff_id, period_start, period_end, status,
			total_entry_fee_huf, total_trainer_fee_huf, currency, created_at, finalized_at, paid_at
		FROM settlements
		WHERE id = $1
	`

	var s model.Settlement
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.Reference,
		&s.StaffID,
		&s.PeriodStart,
		&s.PeriodEnd,
		&s.Status,
		&s.TotalEntryFeeHUF,
		&s.TotalTrainerFeeHUF,
		&s.Currency,
		&s.CreatedAt,
		&s.FinalizedAt,
		&s.PaidAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get settlement by id: %w", err)
	}

	return &s, nil
}

// GetItems получает все позиции ведомости
func (r *SettlementRepository) GetItems(ctx context.Context, settlementID int64) ([]*model.SettlementItem, error) {
	query := `
		SELECT id, settlement_id, session_id, occurrence_id, registration_id, client_id,
			entry_fee_huf, trainer_fee_huf, currency, status, created_at
		FROM settlement_items
		WHERE settlement_id = $1
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, settlementID)
	if err != nil {
		return nil, fmt.Errorf("get settlement items: %w", err)
	}
	defer rows.Close()

	var items []*model.SettlementItem
	for rows.Next() {
		var item model.SettlementItem
		err := rows.Scan(
			&item.ID,
			&item.SettlementID,
			&item.SessionID,
			&item.OccurrenceID,
			&item.RegistrationID,
			&item.ClientID,
			&item.EntryFeeHUF,
			&item.TrainerFeeHUF,
			&item.Currency,
			&item.Status,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan settlement item: %w", err)
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}

// Finalize переводит ведомость из черновика в финализированную.
// Итоги при этом не меняются.
func (r *SettlementRepository) Finalize(ctx context.Context, id int64, at time.Time) error {
	query := `
		UPDATE settlements
		SET status = 'finalized', finalized_at = $2
		WHERE id = $1 AND status = 'draft'
	`

	tag, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("finalize settlement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("settlement not found or not draft")
	}

	return nil
}

// MarkPaid помечает финализированную ведомость выплаченной
func (r *SettlementRepository) MarkPaid(ctx context.Context, id int64, at time.Time) error {
	query := `
		UPDATE settlements
		SET status = 'paid', paid_at = $2
		WHERE id = $1 AND status = 'finalized'
	`

	tag, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("mark settlement paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("settlement not found or not finalized")
	}

	return nil
}
