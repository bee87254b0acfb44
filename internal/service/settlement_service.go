package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/studiofit/booking_engine/internal/config"
	"github.com/studiofit/booking_engine/internal/model"
	"github.com/studiofit/booking_engine/internal/repository"
)

// SettlementService собирает расчётные ведомости тренеров.
// Расчёт читает зафиксированные при бронировании цены и ничего
// не пересчитывает: сумма ведомости воспроизводима в любой момент,
// пока ведомость не сохранена как снимок.
type SettlementService struct {
	pool             *pgxpool.Pool
	sessionRepo      *repository.SessionRepository
	registrationRepo *repository.RegistrationRepository
	settlementRepo   *repository.SettlementRepository
	staffRepo        *repository.StaffRepository
	pricing          *PricingService
	notifier         Notifier
	logger           *zap.Logger
	settings         config.Settings
}

func NewSettlementService(
	pool *pgxpool.Pool,
	sessionRepo *repository.SessionRepository,
	registrationRepo *repository.RegistrationRepository,
	settlementRepo *repository.SettlementRepository,
	staffRepo *repository.StaffRepository,
	pricing *PricingService,
	notifier Notifier,
	logger *zap.Logger,
	settings config.Settings,
) *SettlementService {
	return &SettlementService{
		pool:             pool,
		sessionRepo:      sessionRepo,
		registrationRepo: registrationRepo,
		settlementRepo:   settlementRepo,
		staffRepo:        staffRepo,
		pricing:          pricing,
		notifier:         notifier,
		logger:           logger,
		settings:         settings,
	}
}

// Calculate строит черновик ведомости тренера за период [from, to].
// Операция только читает: ничего не записывается, пока черновик
// не передан в Persist.
func (s *SettlementService) Calculate(ctx context.Context, staffID int64, from, to time.Time) (*model.Settlement, error) {
	staff, err := s.staffRepo.GetByID(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("get staff member: %w", err)
	}
	if staff == nil {
		return nil, ErrStaffNotFound
	}

	sessions, err := s.sessionRepo.GetByStaffInPeriod(ctx, staffID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load sessions for settlement: %w", err)
	}

	var items []*model.SettlementItem
	for _, session := range sessions {
		items = append(items, sessionItem(session))

		guests, err := s.sessionRepo.GetGuestsBySession(ctx, session.ID)
		if err != nil {
			return nil, fmt.Errorf("load session guests: %w", err)
		}
		for _, guest := range guests {
			items = append(items, guestItem(session, guest))
		}
	}

	registrations, err := s.registrationRepo.ListForSettlement(ctx, staffID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load registrations for settlement: %w", err)
	}

	for _, reg := range registrations {
		if !includeRegistration(reg, s.settings.BillLateCancellations) {
			continue
		}
		item, err := s.registrationItem(ctx, reg)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	settlement := &model.Settlement{
		StaffID:     staffID,
		PeriodStart: from,
		PeriodEnd:   to,
		Status:      model.SettlementStatusDraft,
		Currency:    s.settings.Currency,
		Items:       items,
	}
	settlement.TotalEntryFeeHUF, settlement.TotalTrainerFeeHUF = sumTotals(items)

	s.logger.Info("Settlement calculated",
		zap.Int64("staff_id", staffID),
		zap.Time("period_start", from),
		zap.Time("period_end", to),
		zap.Int("items", len(items)),
		zap.Int64("total_trainer_fee_huf", settlement.TotalTrainerFeeHUF),
	)

	return settlement, nil
}

// CalculateAll строит черновики ведомостей всех активных тренеров
// за период. Тренеры без начислений пропускаются.
func (s *SettlementService) CalculateAll(ctx context.Context, from, to time.Time) ([]*model.Settlement, error) {
	staff, err := s.staffRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("get active staff: %w", err)
	}

	var settlements []*model.Settlement
	for _, member := range staff {
		settlement, err := s.Calculate(ctx, member.ID, from, to)
		if err != nil {
			return nil, fmt.Errorf("calculate settlement for staff %d: %w", member.ID, err)
		}
		if len(settlement.Items) == 0 {
			continue
		}
		settlements = append(settlements, settlement)
	}

	return settlements, nil
}

// registrationItem строит позицию регистрации. Цена берётся из
// зафиксированных на занятии значений; если занятие создано до
// появления цен, она разрешается по цепочке на момент старта.
func (s *SettlementService) registrationItem(ctx context.Context, reg *model.Registration) (*model.SettlementItem, error) {
	occ := reg.Occurrence

	var entryFee, trainerFee int64
	currency := occ.Currency

	switch {
	case occ.EntryFeeHUF != nil || occ.TrainerFeeHUF != nil:
		if occ.EntryFeeHUF != nil {
			entryFee = *occ.EntryFeeHUF
		}
		if occ.TrainerFeeHUF != nil {
			trainerFee = *occ.TrainerFeeHUF
		}
	default:
		price, err := s.pricing.ResolveForOccurrence(ctx, reg.ClientID, occ)
		if err != nil {
			return nil, fmt.Errorf("resolve registration price: %w", err)
		}
		entryFee = price.EntryFeeHUF
		trainerFee = price.TrainerFeeHUF
		currency = price.Currency
	}

	return &model.SettlementItem{
		OccurrenceID:   &occ.ID,
		RegistrationID: &reg.ID,
		ClientID:       &reg.ClientID,
		EntryFeeHUF:    entryFee,
		TrainerFeeHUF:  trainerFee,
		Currency:       currency,
		Status:         string(reg.Status),
	}, nil
}

// Persist сохраняет рассчитанный черновик: заголовок и позиции
// пишутся одной транзакцией, ведомость получает внешнюю ссылку.
func (s *SettlementService) Persist(ctx context.Context, settlement *model.Settlement) error {
	if settlement.Reference == uuid.Nil {
		settlement.Reference = uuid.New()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	settlements := s.settlementRepo.WithTx(tx)

	if err := settlements.Create(ctx, settlement); err != nil {
		return fmt.Errorf("persist settlement: %w", err)
	}

	for _, item := range settlement.Items {
		item.SettlementID = settlement.ID
		if err := settlements.CreateItem(ctx, item); err != nil {
			return fmt.Errorf("persist settlement item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("Settlement persisted",
		zap.Int64("settlement_id", settlement.ID),
		zap.String("reference", settlement.Reference.String()),
		zap.Int("items", len(settlement.Items)),
	)

	return nil
}

// Finalize замораживает ведомость. Финализированная ведомость
// не пересчитывается даже при изменении исходных броней.
func (s *SettlementService) Finalize(ctx context.Context, settlementID int64) (*model.Settlement, error) {
	now := time.Now()
	if err := s.settlementRepo.Finalize(ctx, settlementID, now); err != nil {
		return nil, err
	}

	settlement, err := s.Get(ctx, settlementID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Settlement finalized",
		zap.Int64("settlement_id", settlementID),
		zap.Int64("staff_id", settlement.StaffID),
	)

	s.notifier.SettlementFinalized(ctx, settlement)

	return settlement, nil
}

// MarkPaid помечает финализированную ведомость выплаченной
func (s *SettlementService) MarkPaid(ctx context.Context, settlementID int64) error {
	if err := s.settlementRepo.MarkPaid(ctx, settlementID, time.Now()); err != nil {
		return err
	}

	s.logger.Info("Settlement marked paid", zap.Int64("settlement_id", settlementID))

	return nil
}

// Get получает ведомость вместе с позициями
func (s *SettlementService) Get(ctx context.Context, settlementID int64) (*model.Settlement, error) {
	settlement, err := s.settlementRepo.GetByID(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	if settlement == nil {
		return nil, ErrSettlementNotFound
	}

	items, err := s.settlementRepo.GetItems(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	settlement.Items = items

	return settlement, nil
}

// includeRegistration решает, участвует ли регистрация в ведомости.
// Лист ожидания места не занимал и не платил; отменённые регистрации
// попадают в расчёт только при включённом биллинге поздних отмен.
func includeRegistration(reg *model.Registration, billLateCancellations bool) bool {
	switch reg.Status {
	case model.RegistrationStatusBooked, model.RegistrationStatusAttended, model.RegistrationStatusNoShow:
		return true
	case model.RegistrationStatusCancelled:
		if !billLateCancellations {
			return false
		}
		// Поздняя отмена: занятие уже началось к моменту отмены
		return reg.CancelledAt != nil && reg.Occurrence != nil &&
			!reg.CancelledAt.Before(reg.Occurrence.StartsAt)
	default:
		return false
	}
}

func sessionItem(session *model.IndividualSession) *model.SettlementItem {
	item := &model.SettlementItem{
		SessionID:     &session.ID,
		ClientID:      session.ClientID,
		EntryFeeHUF:   session.EntryFeeHUF,
		TrainerFeeHUF: session.TrainerFeeHUF,
		Currency:      session.Currency,
		Status:        string(session.Status),
	}
	if session.Attendance != nil {
		item.Status = string(*session.Attendance)
	}
	return item
}

// guestItem строит позицию дополнительного участника.
// Цена умножается на количество: одна строка технического гостя
// может обозначать нескольких посетителей.
func guestItem(session *model.IndividualSession, guest *model.GuestAssignment) *model.SettlementItem {
	quantity := int64(guest.Quantity)
	if quantity < 1 {
		quantity = 1
	}

	item := &model.SettlementItem{
		SessionID:     &session.ID,
		ClientID:      &guest.ClientID,
		EntryFeeHUF:   guest.EntryFeeHUF * quantity,
		TrainerFeeHUF: guest.TrainerFeeHUF * quantity,
		Currency:      guest.Currency,
		Status:        string(session.Status),
	}
	if guest.Attendance != nil {
		item.Status = string(*guest.Attendance)
	}
	return item
}

// sumTotals складывает позиции в итоги ведомости
func sumTotals(items []*model.SettlementItem) (entryTotal, trainerTotal int64) {
	for _, item := range items {
		entryTotal += item.EntryFeeHUF
		trainerTotal += item.TrainerFeeHUF
	}
	return entryTotal, trainerTotal
}
