package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/studiofit/booking_engine/internal/config"
	"github.com/studiofit/booking_engine/internal/repository"
	"github.com/studiofit/booking_engine/internal/service"
)

// Engine собирает сервисы движка поверх одного пула соединений.
// Вызывающий код (API, CLI, боты) работает только с сервисами.
type Engine struct {
	Conflicts  *service.ConflictDetector
	Pricing    *service.PricingService
	Schedule   *service.ScheduleService
	Booking    *service.BookingService
	Settlement *service.SettlementService
}

// NewEngine конструирует репозитории и сервисы движка
func NewEngine(pool *pgxpool.Pool, notifier service.Notifier, logger *zap.Logger, settings config.Settings) *Engine {
	sessionRepo := repository.NewSessionRepository(pool)
	occurrenceRepo := repository.NewOccurrenceRepository(pool)
	registrationRepo := repository.NewRegistrationRepository(pool)
	templateRepo := repository.NewTemplateRepository(pool)
	pricingRepo := repository.NewPricingRepository(pool)
	clientRepo := repository.NewClientRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	roomRepo := repository.NewRoomRepository(pool)
	passRepo := repository.NewPassRepository(pool)
	settlementRepo := repository.NewSettlementRepository(pool)

	conflicts := service.NewConflictDetector(sessionRepo, occurrenceRepo, clientRepo, templateRepo, logger)
	pricing := service.NewPricingService(pricingRepo, templateRepo, logger)

	return &Engine{
		Conflicts: conflicts,
		Pricing:   pricing,
		Schedule: service.NewScheduleService(
			pool, sessionRepo, occurrenceRepo, templateRepo, clientRepo, staffRepo, roomRepo,
			conflicts, pricing, notifier, logger, settings,
		),
		Booking: service.NewBookingService(
			pool, occurrenceRepo, registrationRepo, templateRepo, clientRepo, passRepo,
			notifier, logger, settings,
		),
		Settlement: service.NewSettlementService(
			pool, sessionRepo, registrationRepo, settlementRepo, staffRepo,
			pricing, notifier, logger, settings,
		),
	}
}
