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

// PassRepository управляет абонементами клиентов.
// Реализует интерфейс кредитного хранилища для движка бронирования.
type PassRepository struct {
	db base.Querier
}

func NewPassRepository(pool *pgxpool.Pool) *PassRepository {
	return &PassRepository{db: pool}
}

// WithTx возвращает копию репозитория, привязанную к транзакции
func (r *PassRepository) WithTx(tx pgx.Tx) *PassRepository {
	return &PassRepository{db: tx}
}

// GetActivePass получает действующий абонемент клиента на момент времени
func (r *PassRepository) GetActivePass(ctx context.Context, clientID int64, at time.Time) (*model.ClientPass, error) {
	query := `
		SELECT id, client_id, remaining_credits, valid_from, valid_until, is_active, created_at
		FROM client_passes
		WHERE client_id = $1
		  AND is_active = true
		  AND valid_from <= $2
		  AND valid_until >= $2
		  AND remaining_credits > 0
		ORDER BY valid_until
		LIMIT 1
	`

	var pass model.ClientPass
	err := r.db.QueryRow(ctx, query, clientID, at).Scan(
		&pass.ID,
		&pass.ClientID,
		&pass.RemainingCredits,
		&pass.ValidFrom,
		&pass.ValidUntil,
		&pass.IsActive,
		&pass.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active pass: %w", err)
	}

	return &pass, nil
}

// DeductCredit списывает credits кредитов с действующего абонемента.
// Частичное списание не выполняется: если абонемента с достаточным
// остатком нет, возвращается false и абонементы не меняются.
func (r *PassRepository) DeductCredit(ctx context.Context, clientID int64, credits int, at time.Time) (bool, error) {
	query := `
		UPDATE client_passes
		SET remaining_credits = remaining_credits - $2
		WHERE id = (
			SELECT id FROM client_passes
			WHERE client_id = $1
			  AND is_active = true
			  AND valid_from <= $3
			  AND valid_until >= $3
			  AND remaining_credits >= $2
			ORDER BY valid_until
			LIMIT 1
		)
	`

	tag, err := r.db.Exec(ctx, query, clientID, credits, at)
	if err != nil {
		return false, fmt.Errorf("deduct credit: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// RefundCredit возвращает кредит на последний действующий абонемент.
// Возвращает false, если вернуть некуда (абонемент истёк или удалён).
func (r *PassRepository) RefundCredit(ctx context.Context, clientID int64, credits int) (bool, error) {
	query := `
		UPDATE client_passes
		SET remaining_credits = remaining_credits + $2
		WHERE id = (
			SELECT id FROM client_passes
			WHERE client_id = $1 AND is_active = true
			ORDER BY valid_until DESC
			LIMIT 1
		)
	`

	tag, err := r.db.Exec(ctx, query, clientID, credits)
	if err != nil {
		return false, fmt.Errorf("refund credit: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
