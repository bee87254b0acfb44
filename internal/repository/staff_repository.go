package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studiofit/booking_engine/internal/model"
	"github.com/studiofit/booking_engine/internal/repository/base"
)

// StaffRepository управляет тренерами в базе данных
type StaffRepository struct {
	db base.Querier
}

func NewStaffRepository(pool *pgxpool.Pool) *StaffRepository {
	return &StaffRepository{db: pool}
}

// WithTx возвращает копию репозитория, привязанную к транзакции
func (r *StaffRepository) WithTx(tx pgx.Tx) *StaffRepository {
	return &StaffRepository{db: tx}
}

// GetByID получает тренера по ID
func (r *StaffRepository) GetByID(ctx context.Context, id int64) (*model.StaffMember, error) {
	query := `SELECT id, first_name, last_name, is_active, created_at FROM staff_members WHERE id = $1`

	var staff model.StaffMember
	err := r.db.QueryRow(ctx, query, id).Scan(
		&staff.ID,
		&staff.FirstName,
		&staff.LastName,
		&staff.IsActive,
		&staff.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get staff member by id: %w", err)
	}

	return &staff, nil
}

// GetActive получает всех активных тренеров
func (r *StaffRepository) GetActive(ctx context.Context) ([]*model.StaffMember, error) {
	query := `
		SELECT id, first_name, last_name, is_active, created_at
		FROM staff_members
		WHERE is_active = true
		ORDER BY last_name, first_name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get active staff members: %w", err)
	}
	defer rows.Close()

	var staff []*model.StaffMember
	for rows.Next() {
		var member model.StaffMember
		err := rows.Scan(
			&member.ID,
			&member.FirstName,
			&member.LastName,
			&member.IsActive,
			&member.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan staff member: %w", err)
		}
		staff = append(staff, &member)
	}

	return staff, rows.Err()
}
