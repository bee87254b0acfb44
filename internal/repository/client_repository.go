package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studiofit/booking_engine/internal/model"
	"github.com/studiofit/booking_engine/internal/repository/base"
)

// ClientRepository управляет клиентами в базе данных
type ClientRepository struct {
	db base.Querier
}

func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{db: pool}
}

// WithTx возвращает копию репозитория, привязанную к транзакции
func (r *ClientRepository) WithTx(tx pgx.Tx) *ClientRepository {
	return &ClientRepository{db: tx}
}

const clientColumns = `id, first_name, last_name, phone, email, is_technical_guest, unpaid_balance_huf, created_at`

func scanClient(row pgx.Row) (*model.Client, error) {
	var c model.Client
	err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Phone,
		&c.Email,
		&c.IsTechnicalGuest,
		&c.UnpaidBalanceHUF,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create создаёт нового клиента
func (r *ClientRepository) Create(ctx context.Context, client *model.Client) error {
	query := `
		INSERT INTO clients (first_name, last_name, phone, email, is_technical_guest)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		client.FirstName,
		client.LastName,
		client.Phone,
		client.Email,
		client.IsTechnicalGuest,
	).Scan(&client.ID, &client.CreatedAt)

	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	return nil
}

// GetByID получает клиента по ID
func (r *ClientRepository) GetByID(ctx context.Context, id int64) (*model.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	client, err := scanClient(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client by id: %w", err)
	}

	return client, nil
}

// GetTechnicalGuest получает служебного клиента для неизвестных гостей
func (r *ClientRepository) GetTechnicalGuest(ctx context.Context) (*model.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE is_technical_guest = true LIMIT 1`

	client, err := scanClient(r.db.QueryRow(ctx, query))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get technical guest: %w", err)
	}

	return client, nil
}

// AddToUnpaidBalance увеличивает долг клиента на amount.
// Отрицательный amount уменьшает долг (возврат при отмене).
func (r *ClientRepository) AddToUnpaidBalance(ctx context.Context, clientID, amount int64) error {
	query := `UPDATE clients SET unpaid_balance_huf = unpaid_balance_huf + $2 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, clientID, amount)
	if err != nil {
		return fmt.Errorf("add to unpaid balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("client not found")
	}

	return nil
}
