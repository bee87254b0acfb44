package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/studiofit/booking_engine/internal/config"
	"github.com/studiofit/booking_engine/internal/model"
	"github.com/studiofit/booking_engine/internal/recurrence"
	"github.com/studiofit/booking_engine/internal/repository"
)

// ScheduleService управляет расписанием: индивидуальные сессии,
// регулярные серии и генерация занятий из шаблонов. Перед каждой
// вставкой брони проверяются пересечения по залу и тренеру.
type ScheduleService struct {
	pool           *pgxpool.Pool
	sessionRepo    *repository.SessionRepository
	occurrenceRepo *repository.OccurrenceRepository
	templateRepo   *repository.TemplateRepository
	clientRepo     *repository.ClientRepository
	staffRepo      *repository.StaffRepository
	roomRepo       *repository.RoomRepository
	conflicts      *ConflictDetector
	pricing        *PricingService
	notifier       Notifier
	logger         *zap.Logger
	settings       config.Settings
}

func NewScheduleService(
	pool *pgxpool.Pool,
	sessionRepo *repository.SessionRepository,
	occurrenceRepo *repository.OccurrenceRepository,
	templateRepo *repository.TemplateRepository,
	clientRepo *repository.ClientRepository,
	staffRepo *repository.StaffRepository,
	roomRepo *repository.RoomRepository,
	conflicts *ConflictDetector,
	pricing *PricingService,
	notifier Notifier,
	logger *zap.Logger,
	settings config.Settings,
) *ScheduleService {
	return &ScheduleService{
		pool:           pool,
		sessionRepo:    sessionRepo,
		occurrenceRepo: occurrenceRepo,
		templateRepo:   templateRepo,
		clientRepo:     clientRepo,
		staffRepo:      staffRepo,
		roomRepo:       roomRepo,
		conflicts:      conflicts,
		pricing:        pricing,
		notifier:       notifier,
		logger:         logger,
		settings:       settings,
	}
}

// GuestInput — дополнительный участник сессии.
// ClientID == nil означает безымянного гостя: он записывается
// на служебного клиента с тарифом услуги по умолчанию.
type GuestInput struct {
	ClientID *int64
	Quantity int
}

// CreateSessionInput — параметры новой индивидуальной сессии
type CreateSessionInput struct {
	Type          model.SessionType
	StaffID       int64
	RoomID        int64
	ClientID      *int64
	ServiceTypeID int64
	StartsAt      time.Time
	EndsAt        time.Time
	Guests        []GuestInput
	// ForceOverride пропускает проверку пересечений.
	// Для админских двойных броней, когда зал реально делится.
	ForceOverride bool

	seriesGroupID *uuid.UUID
}

// CreateSession создаёт индивидуальную сессию или блок-бронь зала.
// Цена разрешается и фиксируется в момент создания: последующие
// изменения тарифов созданные сессии не трогают.
func (s *ScheduleService) CreateSession(ctx context.Context, input CreateSessionInput) (*model.IndividualSession, error) {
	window := model.TimeWindow{StartsAt: input.StartsAt, EndsAt: input.EndsAt}
	if !window.IsValid() {
		return nil, ErrInvalidWindow
	}

	staff, err := s.staffRepo.GetByID(ctx, input.StaffID)
	if err != nil {
		return nil, fmt.Errorf("get staff member: %w", err)
	}
	if staff == nil {
		return nil, ErrStaffNotFound
	}

	room, err := s.roomRepo.GetByID(ctx, input.RoomID)
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	price, err := s.resolveSessionPrice(ctx, input)
	if err != nil {
		return nil, err
	}

	session := &model.IndividualSession{
		Type:          input.Type,
		StaffID:       input.StaffID,
		RoomID:        input.RoomID,
		ClientID:      input.ClientID,
		StartsAt:      input.StartsAt,
		EndsAt:        input.EndsAt,
		Status:        model.SessionStatusScheduled,
		ServiceTypeID: input.ServiceTypeID,
		EntryFeeHUF:   price.EntryFeeHUF,
		TrainerFeeHUF: price.TrainerFeeHUF,
		Currency:      price.Currency,
		PriceSource:   price.Source,
		SeriesGroupID: input.seriesGroupID,
	}

	if !input.ForceOverride {
		if err := s.conflicts.WithTx(tx).AssertNoConflict(ctx, QueryFor(session)); err != nil {
			return nil, err
		}
	}

	sessions := s.sessionRepo.WithTx(tx)

	if err := sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	for i, guestInput := range input.Guests {
		guest, err := s.buildGuest(ctx, session, guestInput, i+1)
		if err != nil {
			return nil, err
		}
		if err := sessions.CreateGuest(ctx, guest); err != nil {
			return nil, fmt.Errorf("create guest: %w", err)
		}
		session.Guests = append(session.Guests, guest)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("Session created",
		zap.Int64("session_id", session.ID),
		zap.String("type", string(session.Type)),
		zap.Int64("staff_id", session.StaffID),
		zap.Int64("room_id", session.RoomID),
		zap.Time("starts_at", session.StartsAt),
		zap.Bool("force_override", input.ForceOverride),
	)

	s.notifier.SessionScheduled(ctx, session)

	return session, nil
}

// resolveSessionPrice фиксирует цену сессии. Блок-бронь бесплатна:
// зал закрыт, услуги никто не получает.
func (s *ScheduleService) resolveSessionPrice(ctx context.Context, input CreateSessionInput) (*model.ResolvedPrice, error) {
	if input.Type == model.SessionTypeBlock || input.ClientID == nil {
		return &model.ResolvedPrice{
			Currency: s.settings.Currency,
			Source:   model.PriceSourceServiceTypeDefault,
		}, nil
	}

	price, err := s.pricing.ResolveForClient(ctx, *input.ClientID, input.ServiceTypeID, input.StartsAt)
	if err != nil {
		return nil, fmt.Errorf("resolve session price: %w", err)
	}

	return price, nil
}

func (s *ScheduleService) buildGuest(ctx context.Context, session *model.IndividualSession, input GuestInput, index int) (*model.GuestAssignment, error) {
	quantity := input.Quantity
	if quantity < 1 {
		quantity = 1
	}

	var clientID int64
	var price *model.ResolvedPrice

	if input.ClientID != nil {
		clientID = *input.ClientID
		p, err := s.pricing.ResolveForClient(ctx, clientID, session.ServiceTypeID, session.StartsAt)
		if err != nil {
			return nil, fmt.Errorf("resolve guest price: %w", err)
		}
		price = p
	} else {
		technical, err := s.clientRepo.GetTechnicalGuest(ctx)
		if err != nil {
			return nil, fmt.Errorf("get technical guest: %w", err)
		}
		if technical == nil {
			return nil, ErrClientNotFound
		}
		clientID = technical.ID
		p, err := s.pricing.ResolveForTechnicalGuest(ctx, session.ServiceTypeID)
		if err != nil {
			return nil, fmt.Errorf("resolve technical guest price: %w", err)
		}
		price = p
	}

	return &model.GuestAssignment{
		SessionID:     session.ID,
		ClientID:      clientID,
		Quantity:      quantity,
		GuestIndex:    index,
		EntryFeeHUF:   price.EntryFeeHUF,
		TrainerFeeHUF: price.TrainerFeeHUF,
		Currency:      price.Currency,
		PriceSource:   price.Source,
	}, nil
}

// CreateRecurringInput — параметры регулярной серии сессий
type CreateRecurringInput struct {
	Session CreateSessionInput
	Weekday time.Weekday
	// From и Until задают диапазон дат серии (обе границы включительно)
	From  time.Time
	Until time.Time
	// Skip — даты, которые надо пропустить (отпуск, праздники)
	Skip []time.Time
}

// RecurringReport — итог создания серии: что создано и какие даты
// были пропущены из-за пересечений
type RecurringReport struct {
	SeriesGroupID uuid.UUID
	Created       []*model.IndividualSession
	SkippedDates  []time.Time
}

// CreateRecurring разворачивает недельный паттерн в сессии.
// Пересечение на первой дате проваливает всю операцию: пользователь
// почти наверняка ошибся со слотом. Пересечения на последующих датах
// только пропускают дату - остальная серия создаётся.
func (s *ScheduleService) CreateRecurring(ctx context.Context, input CreateRecurringInput) (*RecurringReport, error) {
	dates := recurrence.ExpandWeekly(input.Weekday, input.From, input.Until, input.Skip)
	if len(dates) == 0 {
		return nil, ErrNothingCreated
	}

	duration := input.Session.EndsAt.Sub(input.Session.StartsAt)
	if duration <= 0 {
		return nil, ErrInvalidWindow
	}

	groupID := uuid.New()
	report := &RecurringReport{SeriesGroupID: groupID}

	loc := input.Session.StartsAt.Location()
	hour, minute := input.Session.StartsAt.Hour(), input.Session.StartsAt.Minute()

	for i, date := range dates {
		sessionInput := input.Session
		sessionInput.StartsAt = recurrence.At(date, hour, minute, loc)
		sessionInput.EndsAt = sessionInput.StartsAt.Add(duration)
		sessionInput.seriesGroupID = &groupID

		session, err := s.CreateSession(ctx, sessionInput)
		if err != nil {
			var conflictErr *ConflictError
			if errors.As(err, &conflictErr) {
				if i == 0 {
					return nil, err
				}
				report.SkippedDates = append(report.SkippedDates, date)
				continue
			}
			return nil, err
		}

		report.Created = append(report.Created, session)
	}

	if len(report.Created) == 0 {
		return nil, ErrNothingCreated
	}

	s.logger.Info("Recurring series created",
		zap.String("series_group_id", groupID.String()),
		zap.Int("created", len(report.Created)),
		zap.Int("skipped", len(report.SkippedDates)),
	)

	return report, nil
}

// Move переносит сессию в новое окно и зал. Сама сессия исключается
// из проверки пересечений: перенос внутри собственного окна законен.
func (s *ScheduleService) Move(ctx context.Context, sessionID, roomID int64, startsAt, endsAt time.Time, forceOverride bool) (*model.IndividualSession, error) {
	window := model.TimeWindow{StartsAt: startsAt, EndsAt: endsAt}
	if !window.IsValid() {
		return nil, ErrInvalidWindow
	}

	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sessions := s.sessionRepo.WithTx(tx)

	session, err := sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Status == model.SessionStatusCancelled {
		return nil, ErrSessionNotFound
	}

	if !forceOverride {
		err := s.conflicts.WithTx(tx).AssertNoConflict(ctx, ConflictQuery{
			RoomID:           roomID,
			Window:           window,
			StaffID:          session.StaffID,
			ExcludeSessionID: session.ID,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := sessions.UpdateWindow(ctx, session.ID, roomID, startsAt, endsAt); err != nil {
		return nil, fmt.Errorf("move session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	session.RoomID = roomID
	session.StartsAt = startsAt
	session.EndsAt = endsAt

	s.logger.Info("Session moved",
		zap.Int64("session_id", session.ID),
		zap.Int64("room_id", roomID),
		zap.Time("starts_at", startsAt),
	)

	s.notifier.SessionRescheduled(ctx, session)

	return session, nil
}

// CancelSession отменяет сессию
func (s *ScheduleService) CancelSession(ctx context.Context, sessionID int64) error {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return ErrSessionNotFound
	}

	if err := s.sessionRepo.Cancel(ctx, sessionID, time.Now()); err != nil {
		return fmt.Errorf("cancel session: %w", err)
	}

	s.logger.Info("Session cancelled", zap.Int64("session_id", sessionID))

	session.Status = model.SessionStatusCancelled
	s.notifier.SessionCancelled(ctx, session)

	return nil
}

// CancelSeries отменяет будущие сессии регулярной серии начиная с from.
// Прошедшие сессии не трогаются: они уже попали в расчёты.
func (s *ScheduleService) CancelSeries(ctx context.Context, groupID uuid.UUID, from time.Time) (int64, error) {
	cancelled, err := s.sessionRepo.CancelBySeriesGroup(ctx, groupID, from)
	if err != nil {
		return 0, fmt.Errorf("cancel series: %w", err)
	}

	s.logger.Info("Series cancelled",
		zap.String("series_group_id", groupID.String()),
		zap.Int64("cancelled", cancelled),
	)

	return cancelled, nil
}

// MarkSessionAttendance отмечает итог посещения сессии
func (s *ScheduleService) MarkSessionAttendance(ctx context.Context, sessionID int64, attended bool) error {
	attendance := model.AttendanceAttended
	if !attended {
		attendance = model.AttendanceNoShow
	}

	if err := s.sessionRepo.SetAttendance(ctx, sessionID, attendance); err != nil {
		return fmt.Errorf("mark session attendance: %w", err)
	}

	s.logger.Info("Session attendance marked",
		zap.Int64("session_id", sessionID),
		zap.String("attendance", string(attendance)),
	)

	return nil
}

// MarkGuestAttendance отмечает итог посещения дополнительного участника
func (s *ScheduleService) MarkGuestAttendance(ctx context.Context, guestID int64, attended bool) error {
	attendance := model.AttendanceAttended
	if !attended {
		attendance = model.AttendanceNoShow
	}

	if err := s.sessionRepo.SetGuestAttendance(ctx, guestID, attendance); err != nil {
		return fmt.Errorf("mark guest attendance: %w", err)
	}

	return nil
}

// CancelOccurrence отменяет групповое занятие
func (s *ScheduleService) CancelOccurrence(ctx context.Context, occurrenceID int64) error {
	occurrence, err := s.occurrenceRepo.GetByID(ctx, occurrenceID)
	if err != nil {
		return fmt.Errorf("get occurrence: %w", err)
	}
	if occurrence == nil {
		return ErrOccurrenceNotFound
	}

	if err := s.occurrenceRepo.Cancel(ctx, occurrenceID); err != nil {
		return fmt.Errorf("cancel occurrence: %w", err)
	}

	s.logger.Info("Occurrence cancelled", zap.Int64("occurrence_id", occurrenceID))

	return nil
}

// DeactivateTemplate выводит шаблон из ротации: генератор перестаёт
// создавать по нему занятия, уже созданные занятия не трогаются
func (s *ScheduleService) DeactivateTemplate(ctx context.Context, templateID int64) error {
	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		return fmt.Errorf("get template: %w", err)
	}
	if template == nil {
		return ErrTemplateNotFound
	}

	if err := s.templateRepo.Deactivate(ctx, templateID); err != nil {
		return fmt.Errorf("deactivate template: %w", err)
	}

	s.logger.Info("Template deactivated", zap.Int64("template_id", templateID))

	return nil
}

// TrainerSchedule — расписание тренера за период: индивидуальные
// сессии и групповые занятия вместе
type TrainerSchedule struct {
	Sessions    []*model.IndividualSession
	Occurrences []*model.ClassOccurrence
}

// GetTrainerSchedule получает все брони тренера за период
func (s *ScheduleService) GetTrainerSchedule(ctx context.Context, trainerID int64, from, to time.Time) (*TrainerSchedule, error) {
	sessions, err := s.sessionRepo.GetByStaffInPeriod(ctx, trainerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("get trainer sessions: %w", err)
	}

	occurrences, err := s.occurrenceRepo.GetByTrainerInPeriod(ctx, trainerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("get trainer occurrences: %w", err)
	}

	return &TrainerSchedule{Sessions: sessions, Occurrences: occurrences}, nil
}

// GetRoomsBySite получает залы площадки
func (s *ScheduleService) GetRoomsBySite(ctx context.Context, siteID int64) ([]*model.Room, error) {
	return s.roomRepo.GetBySite(ctx, siteID)
}

// GetSession получает сессию вместе с дополнительными участниками
func (s *ScheduleService) GetSession(ctx context.Context, sessionID int64) (*model.IndividualSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	guests, err := s.sessionRepo.GetGuestsBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session guests: %w", err)
	}
	session.Guests = guests

	return session, nil
}

// CreateStandaloneOccurrenceInput — параметры разового класса без шаблона
type CreateStandaloneOccurrenceInput struct {
	RoomID        int64
	TrainerID     int64
	StartsAt      time.Time
	EndsAt        time.Time
	Capacity      int
	ForceOverride bool
}

// CreateStandaloneOccurrence создаёт разовое групповое занятие
func (s *ScheduleService) CreateStandaloneOccurrence(ctx context.Context, input CreateStandaloneOccurrenceInput) (*model.ClassOccurrence, error) {
	window := model.TimeWindow{StartsAt: input.StartsAt, EndsAt: input.EndsAt}
	if !window.IsValid() {
		return nil, ErrInvalidWindow
	}

	room, err := s.roomRepo.GetByID(ctx, input.RoomID)
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	occurrence := &model.ClassOccurrence{
		RoomID:    input.RoomID,
		TrainerID: input.TrainerID,
		StartsAt:  input.StartsAt,
		EndsAt:    input.EndsAt,
		Capacity:  input.Capacity,
		Status:    model.OccurrenceStatusScheduled,
		Currency:  s.settings.Currency,
	}

	if !input.ForceOverride {
		if err := s.conflicts.WithTx(tx).AssertNoConflict(ctx, QueryFor(occurrence)); err != nil {
			return nil, err
		}
	}

	if err := s.occurrenceRepo.WithTx(tx).Create(ctx, occurrence); err != nil {
		return nil, fmt.Errorf("create occurrence: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("Standalone occurrence created",
		zap.Int64("occurrence_id", occurrence.ID),
		zap.Time("starts_at", occurrence.StartsAt),
	)

	return occurrence, nil
}

// GenerateOccurrences материализует занятия активных шаблонов на
// weeksAhead недель вперёд. Идемпотентна: уже созданные занятия
// пропускаются, конфликтующие слоты логируются и пропускаются.
func (s *ScheduleService) GenerateOccurrences(ctx context.Context, weeksAhead int) (int, error) {
	templates, err := s.templateRepo.GetActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("get active templates: %w", err)
	}

	now := time.Now()
	until := now.AddDate(0, 0, 7*weeksAhead)
	created := 0

	for _, template := range templates {
		if template.DefaultRoomID == nil || template.DefaultTrainerID == nil {
			s.logger.Warn("Template without default room or trainer skipped",
				zap.Int64("template_id", template.ID),
			)
			continue
		}

		dates := recurrence.ExpandWeekly(time.Weekday(template.Weekday), now, until, nil)
		for _, date := range dates {
			startsAt := recurrence.At(date, template.StartHour, template.StartMinute, now.Location())
			if startsAt.Before(now) {
				continue
			}
			endsAt := startsAt.Add(time.Duration(template.DurationMinutes) * time.Minute)

			ok, err := s.generateOccurrence(ctx, template, startsAt, endsAt)
			if err != nil {
				return created, err
			}
			if ok {
				created++
			}
		}
	}

	if created > 0 {
		s.logger.Info("Occurrences generated", zap.Int("created", created))
	}

	return created, nil
}

func (s *ScheduleService) generateOccurrence(ctx context.Context, template *model.ClassTemplate, startsAt, endsAt time.Time) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	occurrences := s.occurrenceRepo.WithTx(tx)

	exists, err := occurrences.ExistsForTemplateAt(ctx, template.ID, startsAt)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	occurrence := &model.ClassOccurrence{
		TemplateID: &template.ID,
		RoomID:     *template.DefaultRoomID,
		TrainerID:  *template.DefaultTrainerID,
		StartsAt:   startsAt,
		EndsAt:     endsAt,
		Capacity:   template.Capacity,
		Status:     model.OccurrenceStatusScheduled,
		Currency:   s.settings.Currency,
	}

	err = s.conflicts.WithTx(tx).AssertNoConflict(ctx, QueryFor(occurrence))
	if err != nil {
		var conflictErr *ConflictError
		if errors.As(err, &conflictErr) {
			s.logger.Warn("Template slot conflicts with existing booking",
				zap.Int64("template_id", template.ID),
				zap.Time("starts_at", startsAt),
			)
			return false, nil
		}
		return false, err
	}

	if err := occurrences.Create(ctx, occurrence); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}

	return true, nil
}
