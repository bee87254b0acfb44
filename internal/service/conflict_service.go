package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/studiofit/booking_engine/internal/model"
	"github.com/studiofit/booking_engine/internal/repository"
)

// ConflictQuery описывает проверяемую бронь.
// StaffID, ExcludeSessionID и ExcludeOccurrenceID опциональны (0 — не задано);
// исключения позволяют проверять перенос записи против всех, кроме неё самой.
type ConflictQuery struct {
	RoomID              int64
	Window              model.TimeWindow
	StaffID             int64
	ExcludeSessionID    int64
	ExcludeOccurrenceID int64
}

// QueryFor строит запрос проверки из любой брони:
// индивидуальной сессии или группового занятия
func QueryFor(b model.Bookable) ConflictQuery {
	return ConflictQuery{
		RoomID:  b.BookingRoomID(),
		StaffID: b.BookingStaffID(),
		Window:  b.BookingWindow(),
	}
}

// ConflictDetector ищет пересечения по залу и тренеру сразу
// в обеих таблицах броней: индивидуальные сессии и групповые занятия
// в одном зале в пересекающееся время - конфликт.
type ConflictDetector struct {
	sessionRepo    *repository.SessionRepository
	occurrenceRepo *repository.OccurrenceRepository
	clientRepo     *repository.ClientRepository
	templateRepo   *repository.TemplateRepository
	logger         *zap.Logger
}

func NewConflictDetector(
	sessionRepo *repository.SessionRepository,
	occurrenceRepo *repository.OccurrenceRepository,
	clientRepo *repository.ClientRepository,
	templateRepo *repository.TemplateRepository,
	logger *zap.Logger,
) *ConflictDetector {
	return &ConflictDetector{
		sessionRepo:    sessionRepo,
		occurrenceRepo: occurrenceRepo,
		clientRepo:     clientRepo,
		templateRepo:   templateRepo,
		logger:         logger,
	}
}

// WithTx возвращает детектор, привязанный к транзакции.
// Проверка и вставка должны видеть одно и то же состояние.
func (d *ConflictDetector) WithTx(tx pgx.Tx) *ConflictDetector {
	return &ConflictDetector{
		sessionRepo:    d.sessionRepo.WithTx(tx),
		occurrenceRepo: d.occurrenceRepo.WithTx(tx),
		clientRepo:     d.clientRepo.WithTx(tx),
		templateRepo:   d.templateRepo.WithTx(tx),
		logger:         d.logger,
	}
}

// FindConflicts возвращает все пересекающиеся брони для запроса.
// Сканируются обе таблицы по залу, а при заданном StaffID -
// дополнительно по тренеру независимо от зала.
func (d *ConflictDetector) FindConflicts(ctx context.Context, q ConflictQuery) ([]ConflictEntry, error) {
	if !q.Window.IsValid() {
		return nil, ErrInvalidWindow
	}

	var sessions []*model.IndividualSession
	var occurrences []*model.ClassOccurrence

	roomSessions, err := d.sessionRepo.FindOverlappingByRoom(ctx, q.RoomID, q.Window, q.ExcludeSessionID)
	if err != nil {
		return nil, fmt.Errorf("scan room sessions: %w", err)
	}
	sessions = append(sessions, roomSessions...)

	roomOccurrences, err := d.occurrenceRepo.FindOverlappingByRoom(ctx, q.RoomID, q.Window, q.ExcludeOccurrenceID)
	if err != nil {
		return nil, fmt.Errorf("scan room occurrences: %w", err)
	}
	occurrences = append(occurrences, roomOccurrences...)

	// Тренер не может вести две брони одновременно независимо от зала
	if q.StaffID != 0 {
		staffSessions, err := d.sessionRepo.FindOverlappingByStaff(ctx, q.StaffID, q.Window, q.ExcludeSessionID)
		if err != nil {
			return nil, fmt.Errorf("scan staff sessions: %w", err)
		}
		sessions = append(sessions, staffSessions...)

		staffOccurrences, err := d.occurrenceRepo.FindOverlappingByTrainer(ctx, q.StaffID, q.Window, q.ExcludeOccurrenceID)
		if err != nil {
			return nil, fmt.Errorf("scan staff occurrences: %w", err)
		}
		occurrences = append(occurrences, staffOccurrences...)
	}

	entries := mergeConflictEntries(
		d.sessionEntries(ctx, sessions),
		d.occurrenceEntries(ctx, occurrences),
	)

	return entries, nil
}

// AssertNoConflict — строгий вариант: непустой список пересечений
// превращается в ConflictError с полным списком.
func (d *ConflictDetector) AssertNoConflict(ctx context.Context, q ConflictQuery) error {
	conflicts, err := d.FindConflicts(ctx, q)
	if err != nil {
		return err
	}

	if len(conflicts) > 0 {
		d.logger.Info("Booking conflict detected",
			zap.Int64("room_id", q.RoomID),
			zap.Int64("staff_id", q.StaffID),
			zap.Time("starts_at", q.Window.StartsAt),
			zap.Int("conflicts", len(conflicts)),
		)
		return &ConflictError{Conflicts: conflicts}
	}

	return nil
}

func (d *ConflictDetector) sessionEntries(ctx context.Context, sessions []*model.IndividualSession) []ConflictEntry {
	entries := make([]ConflictEntry, 0, len(sessions))
	for _, session := range sessions {
		var client *model.Client
		if session.ClientID != nil {
			// Имя клиента только для подписи: ошибка поиска подпись не срывает
			client, _ = d.clientRepo.GetByID(ctx, *session.ClientID)
		}
		entries = append(entries, ConflictEntry{
			Kind:   ConflictKindIndividual,
			ID:     session.ID,
			Window: session.Window(),
			Label:  sessionLabel(session, client),
		})
	}
	return entries
}

func (d *ConflictDetector) occurrenceEntries(ctx context.Context, occurrences []*model.ClassOccurrence) []ConflictEntry {
	entries := make([]ConflictEntry, 0, len(occurrences))
	for _, occ := range occurrences {
		var template *model.ClassTemplate
		if occ.TemplateID != nil {
			template, _ = d.templateRepo.GetByID(ctx, *occ.TemplateID)
		}
		entries = append(entries, ConflictEntry{
			Kind:   ConflictKindClass,
			ID:     occ.ID,
			Window: occ.Window(),
			Label:  occurrenceLabel(occ, template),
		})
	}
	return entries
}

// mergeConflictEntries объединяет результаты сканов, убирая дубликаты:
// одна бронь могла попасть и в скан по залу, и в скан по тренеру.
func mergeConflictEntries(groups ...[]ConflictEntry) []ConflictEntry {
	type key struct {
		kind ConflictKind
		id   int64
	}

	seen := make(map[key]struct{})
	var merged []ConflictEntry
	for _, group := range groups {
		for _, entry := range group {
			k := key{kind: entry.Kind, id: entry.ID}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			merged = append(merged, entry)
		}
	}

	return merged
}
