package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/studiofit/booking_engine/internal/service"
)

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	scheduleService *service.ScheduleService
	horizonWeeks    int
	logger          *zap.Logger
	stopChan        chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(scheduleService *service.ScheduleService, horizonWeeks int, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		scheduleService: scheduleService,
		horizonWeeks:    horizonWeeks,
		logger:          logger,
		stopChan:        make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")

	go s.runOccurrenceGenerationTask(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runOccurrenceGenerationTask периодически материализует занятия
// из активных шаблонов классов
func (s *Scheduler) runOccurrenceGenerationTask(ctx context.Context) {
	// Первый запуск сразу при старте
	s.generateOccurrences(ctx)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.generateOccurrences(ctx)
		case <-s.stopChan:
			s.logger.Info("Occurrence generation task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Occurrence generation task cancelled")
			return
		}
	}
}

// generateOccurrences генерирует занятия на горизонт вперёд.
// Занятия всегда доступны для записи минимум на горизонт.
func (s *Scheduler) generateOccurrences(ctx context.Context) {
	s.logger.Info("Starting automatic occurrence generation")

	created, err := s.scheduleService.GenerateOccurrences(ctx, s.horizonWeeks)
	if err != nil {
		s.logger.Error("Failed to generate occurrences", zap.Error(err))
		return
	}

	s.logger.Info("Automatic occurrence generation completed", zap.Int("created", created))
}
