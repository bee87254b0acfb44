package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studiofit/booking_engine/internal/model"
	"github.com/studiofit/booking_engine/internal/repository/base"
)

// SessionRepository управляет индивидуальными сессиями в базе данных
type SessionRepository struct {
	db base.Querier
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: pool}
}

// WithTx возвращает копию репозитория, привязанную к транзакции
func (r *SessionRepository) WithTx(tx pgx.Tx) *SessionRepository {
	return &SessionRepository{db: tx}
}

const sessionColumns = `id, type, staff_id, room_id, client_id, starts_at, ends_at, status, attendance,
		service_type_id, entry_fee_huf, trainer_fee_huf, currency, price_source, series_group_id,
		cancelled_at, created_at, updated_at`

func scanSession(row pgx.Row) (*model.IndividualSession, error) {
	var s model.IndividualSession
	err := row.Scan(
		&s.ID,
		&s.Type,
		&s.StaffID,
		&s.RoomID,
		&s.ClientID,
		&s.StartsAt,
		&s.EndsAt,
		&s.Status,
		&s.Attendance,
		&s.ServiceTypeID,
		&s.EntryFeeHUF,
		&s.TrainerFeeHUF,
		&s.Currency,
		&s.PriceSource,
		&s.SeriesGroupID,
		&s.CancelledAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func collectSessions(rows pgx.Rows) ([]*model.IndividualSession, error) {
	defer rows.Close()

	var sessions []*model.IndividualSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// Create создаёт новую индивидуальную сессию
func (r *SessionRepository) Create(ctx context.Context, session *model.IndividualSession) error {
	query := `
		INSERT INTO individual_sessions (type, staff_id, room_id, client_id, starts_at, ends_at, status,
			service_type_id, entry_fee_huf, trainer_fee_huf, currency, price_source, series_group_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		session.Type,
		session.StaffID,
		session.RoomID,
		session.ClientID,
		session.StartsAt,
		session.EndsAt,
		session.Status,
		session.ServiceTypeID,
		session.EntryFeeHUF,
		session.TrainerFeeHUF,
		session.Currency,
		session.PriceSource,
		session.SeriesGroupID,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

// GetByID получает сессию по ID
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*model.IndividualSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM individual_sessions WHERE id = $1`

	session, err := scanSession(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session by id: %w", err)
	}

	return session, nil
}

// FindOverlappingByRoom находит неотменённые сессии зала,
// пересекающиеся с окном по полуоткрытой семантике.
// excludeID исключает перемещаемую сессию из проверки (0 — без исключений).
func (r *SessionRepository) FindOverlappingByRoom(ctx context.Context, roomID int64, window model.TimeWindow, excludeID int64) ([]*model.IndividualSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM individual_sessions
		WHERE room_id = $1
		  AND status <> 'cancelled'
		  AND starts_at < $3
		  AND ends_at > $2
		  AND id <> $4
		ORDER BY starts_at
	`

	rows, err := r.db.Query(ctx, query, roomID, window.StartsAt, window.EndsAt, excludeID)
	if err != nil {
		return nil, fmt.Errorf("find overlapping sessions by room: %w", err)
	}

	return collectSessions(rows)
}

// FindOverlappingByStaff находит неотменённые сессии тренера,
// пересекающиеся с окном, независимо от зала
func (r *SessionRepository) FindOverlappingByStaff(ctx context.Context, staffID int64, window model.TimeWindow, excludeID int64) ([]*model.IndividualSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM individual_sessions
		WHERE staff_id = $1
		  AND status <> 'cancelled'
		  AND starts_at < $3
		  AND ends_at > $2
		  AND id <> $4
		ORDER BY starts_at
	`

	rows, err := r.db.Query(ctx, query, staffID, window.StartsAt, window.EndsAt, excludeID)
	if err != nil {
		return nil, fmt.Errorf("find overlapping sessions by staff: %w", err)
	}

	return collectSessions(rows)
}

// GetByStaffInPeriod получает неотменённые сессии тренера,
// начинающиеся в периоде [from, to]
func (r *SessionRepository) GetByStaffInPeriod(ctx context.Context, staffID int64, from, to time.Time) ([]*model.IndividualSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM individual_sessions
		WHERE staff_id = $1
		  AND status <> 'cancelled'
		  AND starts_at >= $2
		  AND starts_at <= $3
		ORDER BY starts_at
	`

	rows, err := r.db.Query(ctx, query, staffID, from, to)
	if err != nil {
		return nil, fmt.Errorf("get sessions by staff in period: %w", err)
	}

	return collectSessions(rows)
}

// UpdateWindow переносит сессию в новое окно и зал
func (r *SessionRepository) UpdateWindow(ctx context.Context, id, roomID int64, startsAt, endsAt time.Time) error {
	query := `
		UPDATE individual_sessions
		SET room_id = $2, starts_at = $3, ends_at = $4, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, roomID, startsAt, endsAt)
	if err != nil {
		return fmt.Errorf("update session window: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session not found")
	}

	return nil
}

// Cancel отменяет сессию. Запись не удаляется физически,
// чтобы сохранить трассируемость для ведомостей.
func (r *SessionRepository) Cancel(ctx context.Context, id int64, at time.Time) error {
	query := `
		UPDATE individual_sessions
		SET status = 'cancelled', cancelled_at = $2, updated_at = now()
		WHERE id = $1 AND status <> 'cancelled'
	`

	tag, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("cancel session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session not found or already cancelled")
	}

	return nil
}

// CancelBySeriesGroup отменяет будущие сессии серии.
// Возвращает количество отменённых сессий.
func (r *SessionRepository) CancelBySeriesGroup(ctx context.Context, groupID uuid.UUID, from time.Time) (int64, error) {
	query := `
		UPDATE individual_sessions
		SET status = 'cancelled', cancelled_at = now(), updated_at = now()
		WHERE series_group_id = $1
		  AND starts_at >= $2
		  AND status = 'scheduled'
	`

	tag, err := r.db.Exec(ctx, query, groupID, from)
	if err != nil {
		return 0, fmt.Errorf("cancel sessions by series group: %w", err)
	}

	return tag.RowsAffected(), nil
}

// SetAttendance отмечает посещаемость сессии и завершает её
func (r *SessionRepository) SetAttendance(ctx context.Context, id int64, attendance model.AttendanceStatus) error {
	query := `
		UPDATE individual_sessions
		SET attendance = $2, status = 'completed', updated_at = now()
		WHERE id = $1 AND status <> 'cancelled'
	`

	tag, err := r.db.Exec(ctx, query, id, attendance)
	if err != nil {
		return fmt.Errorf("set session attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session not found or cancelled")
	}

	return nil
}

// CreateGuest добавляет дополнительного участника к сессии
func (r *SessionRepository) CreateGuest(ctx context.Context, guest *model.GuestAssignment) error {
	query := `
		INSERT INTO guest_assignments (session_id, client_id, quantity, guest_index,
			entry_fee_huf, trainer_fee_huf, currency, price_source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		guest.SessionID,
		guest.ClientID,
		guest.Quantity,
		guest.GuestIndex,
		guest.EntryFeeHUF,
		guest.TrainerFeeHUF,
		guest.Currency,
		guest.PriceSource,
	).Scan(&guest.ID, &guest.CreatedAt)

	if err != nil {
		return fmt.Errorf("create guest assignment: %w", err)
	}

	return nil
}

// GetGuestsBySession получает всех дополнительных участников сессии
func (r *SessionRepository) GetGuestsBySession(ctx context.Context, sessionID int64) ([]*model.GuestAssignment, error) {
	query := `
		SELECT id, session_id, client_id, quantity, guest_index, entry_fee_huf, trainer_fee_huf,
			currency, price_source, attendance, created_at
		FROM guest_assignments
		WHERE session_id = $1
		ORDER BY guest_index
	`

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get guests by session: %w", err)
	}
	defer rows.Close()

	var guests []*model.GuestAssignment
	for rows.Next() {
		var g model.GuestAssignment
		err := rows.Scan(
			&g.ID,
			&g.SessionID,
			&g.ClientID,
			&g.Quantity,
			&g.GuestIndex,
			&g.EntryFeeHUF,
			&g.TrainerFeeHUF,
			&g.Currency,
			&g.PriceSource,
			&g.Attendance,
			&g.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan guest assignment: %w", err)
		}
		guests = append(guests, &g)
	}

	return guests, rows.Err()
}

// SetGuestAttendance отмечает посещаемость дополнительного участника
func (r *SessionRepository) SetGuestAttendance(ctx context.Context, guestID int64, attendance model.AttendanceStatus) error {
	query := `UPDATE guest_assignments SET attendance = $2 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, guestID, attendance)
	if err != nil {
		return fmt.Errorf("set guest attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("guest assignment not found")
	}

	return nil
}
