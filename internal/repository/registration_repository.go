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

// RegistrationRepository управляет регистрациями на занятия в базе данных
type RegistrationRepository struct {
	db base.Querier
}

func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: pool}
}

// WithTx возвращает копию репозитория, привязанную к транзакции
func (r *RegistrationRepository) WithTx(tx pgx.Tx) *RegistrationRepository {
	return &RegistrationRepository{db: tx}
}

const registrationColumns = `id, occurrence_id, client_id, status, booked_at, cancelled_at,
		credits_used, charged_amount_huf, payment_status, created_at, updated_at`

func scanRegistration(row pgx.Row) (*model.Registration, error) {
	var reg model.Registration
	err := row.Scan(
		&reg.ID,
		&reg.OccurrenceID,
		&reg.ClientID,
		&reg.Status,
		&reg.BookedAt,
		&reg.CancelledAt,
		&reg.CreditsUsed,
		&reg.ChargedAmountHUF,
		&reg.PaymentStatus,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// Create создаёт новую регистрацию
func (r *RegistrationRepository) Create(ctx context.Context, reg *model.Registration) error {
	query := `
		INSERT INTO registrations (occurrence_id, client_id, status, booked_at, credits_used, charged_amount_huf, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		reg.OccurrenceID,
		reg.ClientID,
		reg.Status,
		reg.BookedAt,
		reg.CreditsUsed,
		reg.ChargedAmountHUF,
		reg.PaymentStatus,
	).Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create registration: %w", err)
	}

	return nil
}

// GetByID получает регистрацию по ID
func (r *RegistrationRepository) GetByID(ctx context.Context, id int64) (*model.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`

	reg, err := scanRegistration(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get registration by id: %w", err)
	}

	return reg, nil
}

// GetActiveByOccurrenceAndClient находит активную (booked/waitlist)
// регистрацию клиента на занятие
func (r *RegistrationRepository) GetActiveByOccurrenceAndClient(ctx context.Context, occurrenceID, clientID int64) (*model.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE occurrence_id = $1
		  AND client_id = $2
		  AND status IN ('booked', 'waitlist')
		LIMIT 1
	`

	reg, err := scanRegistration(r.db.QueryRow(ctx, query, occurrenceID, clientID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active registration: %w", err)
	}

	return reg, nil
}

// CountConfirmed считает регистрации, занимающие место (booked/attended)
func (r *RegistrationRepository) CountConfirmed(ctx context.Context, occurrenceID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM registrations
		WHERE occurrence_id = $1 AND status IN ('booked', 'attended')
	`

	var count int
	err := r.db.QueryRow(ctx, query, occurrenceID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count confirmed registrations: %w", err)
	}

	return count, nil
}

// GetByOccurrence получает все регистрации занятия
func (r *RegistrationRepository) GetByOccurrence(ctx context.Context, occurrenceID int64) ([]*model.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE occurrence_id = $1
		ORDER BY booked_at, id
	`

	rows, err := r.db.Query(ctx, query, occurrenceID)
	if err != nil {
		return nil, fmt.Errorf("get registrations by occurrence: %w", err)
	}
	defer rows.Close()

	var regs []*model.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, reg)
	}

	return regs, rows.Err()
}

// MarkCancelled помечает регистрацию отменённой с отметкой времени
func (r *RegistrationRepository) MarkCancelled(ctx context.Context, id int64, at time.Time) error {
	query := `
		UPDATE registrations
		SET status = 'cancelled', cancelled_at = $2, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("mark registration cancelled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("registration not found")
	}

	return nil
}

// Promote переводит регистрацию из листа ожидания в booked
// с результатом оплаты
func (r *RegistrationRepository) Promote(ctx context.Context, id int64, paymentStatus model.PaymentStatus, creditsUsed int, chargedHUF int64) error {
	query := `
		UPDATE registrations
		SET status = 'booked', payment_status = $2, credits_used = $3, charged_amount_huf = $4, updated_at = now()
		WHERE id = $1 AND status = 'waitlist'
	`

	tag, err := r.db.Exec(ctx, query, id, paymentStatus, creditsUsed, chargedHUF)
	if err != nil {
		return fmt.Errorf("promote registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("registration not found or not waitlisted")
	}

	return nil
}

// SetAttendance отмечает итог посещения занятия
func (r *RegistrationRepository) SetAttendance(ctx context.Context, id int64, status model.RegistrationStatus) error {
	if status != model.RegistrationStatusAttended && status != model.RegistrationStatusNoShow {
		return fmt.Errorf("invalid attendance status: %s", status)
	}

	query := `
		UPDATE registrations
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = 'booked'
	`

	tag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("set registration attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("registration not found or not booked")
	}

	return nil
}

// ListForSettlement получает регистрации занятий тренера за период
// вместе с данными занятия. Отменённые занятия не участвуют.
func (r *RegistrationRepository) ListForSettlement(ctx context.Context, trainerID int64, from, to time.Time) ([]*model.Registration, error) {
	query := `
		SELECT r.id, r.occurrence_id, r.client_id, r.status, r.booked_at, r.cancelled_at,
			r.credits_used, r.charged_amount_huf, r.payment_status, r.created_at, r.updated_at,
			o.id, o.template_id, o.room_id, o.trainer_id, o.starts_at, o.ends_at, o.capacity, o.status,
			o.entry_fee_huf, o.trainer_fee_huf, o.currency, o.created_at
		FROM registrations r
		JOIN class_occurrences o ON o.id = r.occurrence_id
		WHERE o.trainer_id = $1
		  AND o.status <> 'cancelled'
		  AND o.starts_at >= $2
		  AND o.starts_at <= $3
		ORDER BY o.starts_at, r.booked_at, r.id
	`

	rows, err := r.db.Query(ctx, query, trainerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list registrations for settlement: %w", err)
	}
	defer rows.Close()

	var regs []*model.Registration
	for rows.Next() {
		var reg model.Registration
		var occ model.ClassOccurrence
		err := rows.Scan(
			&reg.ID,
			&reg.OccurrenceID,
			&reg.ClientID,
			&reg.Status,
			&reg.BookedAt,
			&reg.CancelledAt,
			&reg.CreditsUsed,
			&reg.ChargedAmountHUF,
			&reg.PaymentStatus,
			&reg.CreatedAt,
			&reg.UpdatedAt,
			&occ.ID,
			&occ.TemplateID,
			&occ.RoomID,
			&occ.TrainerID,
			&occ.StartsAt,
			&occ.EndsAt,
			&occ.Capacity,
			&occ.Status,
			&occ.EntryFeeHUF,
			&occ.TrainerFeeHUF,
			&occ.Currency,
			&occ.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan registration with occurrence: %w", err)
		}
		reg.Occurrence = &occ
		regs = append(regs, &reg)
	}

	return regs, rows.Err()
}
