package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/studiofit/booking_engine/internal/config"
	"github.com/studiofit/booking_engine/internal/model"
	"github.com/studiofit/booking_engine/internal/repository"
)

// BookingService владеет жизненным циклом регистрации на занятие:
// проверка вместимости, назначение статуса, отмена и продвижение
// из листа ожидания. Каждая операция — одна транзакция.
type BookingService struct {
	pool             *pgxpool.Pool
	occurrenceRepo   *repository.OccurrenceRepository
	registrationRepo *repository.RegistrationRepository
	templateRepo     *repository.TemplateRepository
	clientRepo       *repository.ClientRepository
	passRepo         *repository.PassRepository
	notifier         Notifier
	logger           *zap.Logger
	settings         config.Settings
}

func NewBookingService(
	pool *pgxpool.Pool,
	occurrenceRepo *repository.OccurrenceRepository,
	registrationRepo *repository.RegistrationRepository,
	templateRepo *repository.TemplateRepository,
	clientRepo *repository.ClientRepository,
	passRepo *repository.PassRepository,
	notifier Notifier,
	logger *zap.Logger,
	settings config.Settings,
) *BookingService {
	return &BookingService{
		pool:             pool,
		occurrenceRepo:   occurrenceRepo,
		registrationRepo: registrationRepo,
		templateRepo:     templateRepo,
		clientRepo:       clientRepo,
		passRepo:         passRepo,
		notifier:         notifier,
		logger:           logger,
		settings:         settings,
	}
}

// RegisterInput — параметры записи клиента на занятие
type RegisterInput struct {
	OccurrenceID int64
	ClientID     int64
	// RequestedStatus принудительно задаёт стартовый статус
	// (nil — решает проверка вместимости)
	RequestedStatus *model.RegistrationStatus
	// SkipPayment явно освобождает регистрацию от оплаты
	SkipPayment bool
}

// Register записывает клиента на занятие. Проверка вместимости и
// вставка выполняются под блокировкой строки занятия, чтобы два
// параллельных запроса не прошли проверку одновременно.
func (s *BookingService) Register(ctx context.Context, input RegisterInput) (*model.Registration, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	occurrence, err := s.occurrenceRepo.WithTx(tx).GetByIDForUpdate(ctx, input.OccurrenceID)
	if err != nil {
		return nil, fmt.Errorf("get occurrence: %w", err)
	}
	if occurrence == nil {
		return nil, ErrOccurrenceNotFound
	}
	if occurrence.Status == model.OccurrenceStatusCancelled {
		return nil, ErrOccurrenceCancelled
	}

	registrations := s.registrationRepo.WithTx(tx)

	existing, err := registrations.GetActiveByOccurrenceAndClient(ctx, input.OccurrenceID, input.ClientID)
	if err != nil {
		return nil, fmt.Errorf("check duplicate booking: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateBooking
	}

	confirmed, err := registrations.CountConfirmed(ctx, input.OccurrenceID)
	if err != nil {
		return nil, fmt.Errorf("count confirmed: %w", err)
	}

	status := decideInitialStatus(input.RequestedStatus, confirmed, occurrence.Capacity)

	template, err := s.loadTemplate(ctx, tx, occurrence)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	reg := &model.Registration{
		OccurrenceID:  input.OccurrenceID,
		ClientID:      input.ClientID,
		Status:        status,
		BookedAt:      now,
		PaymentStatus: model.PaymentStatusPending,
	}

	// Лист ожидания не платит при создании: оплата случится при продвижении
	if status == model.RegistrationStatusBooked {
		outcome, err := s.charge(ctx, tx, input.ClientID, template, input.SkipPayment, now)
		if err != nil {
			return nil, err
		}
		reg.PaymentStatus = outcome.PaymentStatus
		reg.CreditsUsed = outcome.CreditsUsed
		reg.ChargedAmountHUF = outcome.BalanceDelta
	}

	if err := registrations.Create(ctx, reg); err != nil {
		return nil, fmt.Errorf("create registration: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("Registration created",
		zap.Int64("registration_id", reg.ID),
		zap.Int64("occurrence_id", input.OccurrenceID),
		zap.Int64("client_id", input.ClientID),
		zap.String("status", string(reg.Status)),
		zap.String("payment_status", string(reg.PaymentStatus)),
	)

	reg.Occurrence = occurrence
	s.notifier.BookingConfirmed(ctx, reg)

	return reg, nil
}

// Cancel отменяет регистрацию. Если освободилось подтверждённое место,
// лист ожидания обслуживается в той же транзакции - иначе параллельная
// прямая запись могла бы занять место раньше очереди.
func (s *BookingService) Cancel(ctx context.Context, registrationID int64, refund bool) (*model.Registration, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	registrations := s.registrationRepo.WithTx(tx)

	reg, err := registrations.GetByID(ctx, registrationID)
	if err != nil {
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if reg == nil {
		return nil, ErrRegistrationNotFound
	}
	if !reg.Status.IsActive() {
		return nil, ErrRegistrationNotActive
	}

	// Блокировка занятия упорядочивает отмену против параллельных записей
	occurrence, err := s.occurrenceRepo.WithTx(tx).GetByIDForUpdate(ctx, reg.OccurrenceID)
	if err != nil {
		return nil, fmt.Errorf("get occurrence: %w", err)
	}
	if occurrence == nil {
		return nil, ErrOccurrenceNotFound
	}

	wasBooked := reg.Status == model.RegistrationStatusBooked
	now := time.Now()

	if err := registrations.MarkCancelled(ctx, reg.ID, now); err != nil {
		return nil, fmt.Errorf("mark cancelled: %w", err)
	}
	reg.Status = model.RegistrationStatusCancelled
	reg.CancelledAt = &now

	if wasBooked && refund {
		outcome := decideRefund(reg.PaymentStatus, reg.CreditsUsed, reg.ChargedAmountHUF)
		if outcome.RefundCredits > 0 {
			refunded, err := s.passRepo.WithTx(tx).RefundCredit(ctx, reg.ClientID, outcome.RefundCredits)
			if err != nil {
				return nil, fmt.Errorf("refund credit: %w", err)
			}
			if !refunded {
				s.logger.Warn("No active pass to refund credits to",
					zap.Int64("client_id", reg.ClientID),
					zap.Int("credits", outcome.RefundCredits),
				)
			}
		}
		if outcome.BalanceDelta != 0 {
			if err := s.clientRepo.WithTx(tx).AddToUnpaidBalance(ctx, reg.ClientID, outcome.BalanceDelta); err != nil {
				return nil, fmt.Errorf("reduce unpaid balance: %w", err)
			}
		}
	}

	var promoted *model.Registration
	if shouldPromote(wasBooked, occurrence.Status) {
		template, err := s.loadTemplate(ctx, tx, occurrence)
		if err != nil {
			return nil, err
		}
		promoted, err = s.promoteFromWaitlist(ctx, tx, occurrence, template)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("Registration cancelled",
		zap.Int64("registration_id", reg.ID),
		zap.Int64("occurrence_id", reg.OccurrenceID),
		zap.Bool("refund", refund),
		zap.Bool("promoted_from_waitlist", promoted != nil),
	)

	s.notifier.BookingCancelled(ctx, reg)
	if promoted != nil {
		promoted.Occurrence = occurrence
		s.notifier.WaitlistPromoted(ctx, promoted)
	}

	return reg, nil
}

// promoteFromWaitlist продвигает самую раннюю регистрацию листа ожидания
// в booked с той же логикой оплаты, что и при создании. Выполняется
// внутри транзакции отмены.
func (s *BookingService) promoteFromWaitlist(ctx context.Context, tx pgx.Tx, occurrence *model.ClassOccurrence, template *model.ClassTemplate) (*model.Registration, error) {
	registrations := s.registrationRepo.WithTx(tx)

	regs, err := registrations.GetByOccurrence(ctx, occurrence.ID)
	if err != nil {
		return nil, fmt.Errorf("load registrations: %w", err)
	}

	next := nextPromotable(regs)
	if next == nil {
		return nil, nil
	}

	outcome, err := s.charge(ctx, tx, next.ClientID, template, false, time.Now())
	if err != nil {
		return nil, err
	}

	if err := registrations.Promote(ctx, next.ID, outcome.PaymentStatus, outcome.CreditsUsed, outcome.BalanceDelta); err != nil {
		return nil, fmt.Errorf("promote registration: %w", err)
	}

	next.Status = model.RegistrationStatusBooked
	next.PaymentStatus = outcome.PaymentStatus
	next.CreditsUsed = outcome.CreditsUsed
	next.ChargedAmountHUF = outcome.BalanceDelta

	s.logger.Info("Promoted from waitlist",
		zap.Int64("registration_id", next.ID),
		zap.Int64("occurrence_id", occurrence.ID),
		zap.Int64("client_id", next.ClientID),
	)

	return next, nil
}

// charge пытается списать кредиты с абонемента, иначе увеличивает
// долг клиента. Вызывается только внутри транзакции регистрации:
// баланс и регистрация должны измениться атомарно.
func (s *BookingService) charge(ctx context.Context, tx pgx.Tx, clientID int64, template *model.ClassTemplate, skipPayment bool, at time.Time) (chargeOutcome, error) {
	required := creditsRequired(template)
	unitPrice := creditUnitPrice(template, s.settings)

	deducted := false
	if !skipPayment {
		var err error
		deducted, err = s.passRepo.WithTx(tx).DeductCredit(ctx, clientID, required, at)
		if err != nil {
			return chargeOutcome{}, fmt.Errorf("deduct credit: %w", err)
		}
	}

	outcome := decideCharge(deducted, skipPayment, required, unitPrice)

	if outcome.BalanceDelta != 0 {
		if err := s.clientRepo.WithTx(tx).AddToUnpaidBalance(ctx, clientID, outcome.BalanceDelta); err != nil {
			return chargeOutcome{}, fmt.Errorf("add to unpaid balance: %w", err)
		}
	}

	return outcome, nil
}

func (s *BookingService) loadTemplate(ctx context.Context, tx pgx.Tx, occurrence *model.ClassOccurrence) (*model.ClassTemplate, error) {
	if occurrence.TemplateID == nil {
		return nil, nil
	}
	template, err := s.templateRepo.WithTx(tx).GetByID(ctx, *occurrence.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return template, nil
}

// MarkAttendance отмечает итог посещения подтверждённой регистрации
func (s *BookingService) MarkAttendance(ctx context.Context, registrationID int64, attended bool) error {
	status := model.RegistrationStatusAttended
	if !attended {
		status = model.RegistrationStatusNoShow
	}

	if err := s.registrationRepo.SetAttendance(ctx, registrationID, status); err != nil {
		return fmt.Errorf("set attendance: %w", err)
	}

	s.logger.Info("Attendance marked",
		zap.Int64("registration_id", registrationID),
		zap.String("status", string(status)),
	)

	return nil
}

// GetActivePass получает действующий абонемент клиента с кредитами
func (s *BookingService) GetActivePass(ctx context.Context, clientID int64) (*model.ClientPass, error) {
	return s.passRepo.GetActivePass(ctx, clientID, time.Now())
}

// GetRegistration получает регистрацию по ID
func (s *BookingService) GetRegistration(ctx context.Context, id int64) (*model.Registration, error) {
	return s.registrationRepo.GetByID(ctx, id)
}

// GetOccurrenceRegistrations получает все регистрации занятия
func (s *BookingService) GetOccurrenceRegistrations(ctx context.Context, occurrenceID int64) ([]*model.Registration, error) {
	return s.registrationRepo.GetByOccurrence(ctx, occurrenceID)
}
