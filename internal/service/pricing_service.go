package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/studiofit/booking_engine/internal/model"
	"github.com/studiofit/booking_engine/internal/repository"
)

// PricingService разрешает цену для пары (персона, услуга) на момент
// времени. Разрешение детерминировано: чистая функция от входов
// и текущего набора активных тарифов.
type PricingService struct {
	pricingRepo  *repository.PricingRepository
	templateRepo *repository.TemplateRepository
	logger       *zap.Logger
}

func NewPricingService(
	pricingRepo *repository.PricingRepository,
	templateRepo *repository.TemplateRepository,
	logger *zap.Logger,
) *PricingService {
	return &PricingService{
		pricingRepo:  pricingRepo,
		templateRepo: templateRepo,
		logger:       logger,
	}
}

// ResolveForClient разрешает цену индивидуальной тренировки клиента.
// Приоритет: персональный прайс-код, действующий на at, затем
// тарифы типа услуги по умолчанию.
func (s *PricingService) ResolveForClient(ctx context.Context, clientID, serviceTypeID int64, at time.Time) (*model.ResolvedPrice, error) {
	codes, err := s.pricingRepo.GetClientPriceCodes(ctx, clientID, serviceTypeID)
	if err != nil {
		return nil, fmt.Errorf("load client price codes: %w", err)
	}

	if code := pickClientPriceCode(codes, at); code != nil {
		return &model.ResolvedPrice{
			EntryFeeHUF:   code.EntryFeeHUF,
			TrainerFeeHUF: code.TrainerFeeHUF,
			Currency:      code.Currency,
			Source:        model.PriceSourceClientPriceCode,
		}, nil
	}

	return s.resolveServiceTypeDefault(ctx, serviceTypeID)
}

// ResolveForStaff разрешает гонорар тренера по той же схеме,
// но через таблицу прайс-кодов тренеров
func (s *PricingService) ResolveForStaff(ctx context.Context, staffID, serviceTypeID int64, at time.Time) (*model.ResolvedPrice, error) {
	codes, err := s.pricingRepo.GetStaffPriceCodes(ctx, staffID, serviceTypeID)
	if err != nil {
		return nil, fmt.Errorf("load staff price codes: %w", err)
	}

	if code := pickStaffPriceCode(codes, at); code != nil {
		return &model.ResolvedPrice{
			EntryFeeHUF:   code.EntryFeeHUF,
			TrainerFeeHUF: code.TrainerFeeHUF,
			Currency:      code.Currency,
			Source:        model.PriceSourceStaffPriceCode,
		}, nil
	}

	return s.resolveServiceTypeDefault(ctx, serviceTypeID)
}

// ResolveForTechnicalGuest разрешает цену для безымянного гостя:
// персональных тарифов у него нет, остаются только тарифы услуги.
func (s *PricingService) ResolveForTechnicalGuest(ctx context.Context, serviceTypeID int64) (*model.ResolvedPrice, error) {
	return s.resolveServiceTypeDefault(ctx, serviceTypeID)
}

func (s *PricingService) resolveServiceTypeDefault(ctx context.Context, serviceTypeID int64) (*model.ResolvedPrice, error) {
	serviceType, err := s.pricingRepo.GetServiceType(ctx, serviceTypeID)
	if err != nil {
		return nil, fmt.Errorf("load service type: %w", err)
	}
	if serviceType == nil {
		return nil, ErrMissingPricing
	}

	return &model.ResolvedPrice{
		EntryFeeHUF:   serviceType.EntryFeeHUF,
		TrainerFeeHUF: serviceType.TrainerFeeHUF,
		Currency:      serviceType.Currency,
		Source:        model.PriceSourceServiceTypeDefault,
	}, nil
}

// ResolveForOccurrence разрешает цену группового занятия для клиента.
// Цепочка от специфичного к общему: тариф на занятие, тариф на шаблон,
// общий тариф классов, действующий на старт занятия, и наконец
// базовая цена шаблона как одиночный тариф последней надежды.
func (s *PricingService) ResolveForOccurrence(ctx context.Context, clientID int64, occ *model.ClassOccurrence) (*model.ResolvedPrice, error) {
	byOccurrence, err := s.pricingRepo.GetClientClassPricingByOccurrence(ctx, clientID, occ.ID)
	if err != nil {
		return nil, fmt.Errorf("load occurrence pricing: %w", err)
	}
	if byOccurrence != nil {
		return &model.ResolvedPrice{
			EntryFeeHUF:   byOccurrence.EntryFeeHUF,
			TrainerFeeHUF: byOccurrence.TrainerFeeHUF,
			Currency:      byOccurrence.Currency,
			Source:        model.PriceSourceOccurrenceOverride,
		}, nil
	}

	if occ.TemplateID != nil {
		byTemplate, err := s.pricingRepo.GetClientClassPricingByTemplate(ctx, clientID, *occ.TemplateID)
		if err != nil {
			return nil, fmt.Errorf("load template pricing: %w", err)
		}
		if byTemplate != nil {
			return &model.ResolvedPrice{
				EntryFeeHUF:   byTemplate.EntryFeeHUF,
				TrainerFeeHUF: byTemplate.TrainerFeeHUF,
				Currency:      byTemplate.Currency,
				Source:        model.PriceSourceTemplateOverride,
			}, nil
		}
	}

	defaults, err := s.pricingRepo.GetClassPricingDefaults(ctx)
	if err != nil {
		return nil, fmt.Errorf("load class pricing defaults: %w", err)
	}
	if def := pickClassPricingDefault(defaults, occ.StartsAt); def != nil {
		return &model.ResolvedPrice{
			EntryFeeHUF:   def.EntryFeeHUF,
			TrainerFeeHUF: def.TrainerFeeHUF,
			Currency:      def.Currency,
			Source:        model.PriceSourceClassPricingDefault,
		}, nil
	}

	if occ.TemplateID != nil {
		template, err := s.templateRepo.GetByID(ctx, *occ.TemplateID)
		if err != nil {
			return nil, fmt.Errorf("load template: %w", err)
		}
		if template != nil && template.BasePriceHUF > 0 {
			return &model.ResolvedPrice{
				EntryFeeHUF:   template.BasePriceHUF,
				TrainerFeeHUF: 0,
				Currency:      "HUF",
				Source:        model.PriceSourceTemplateBasePrice,
			}, nil
		}
	}

	s.logger.Warn("No resolvable class price",
		zap.Int64("client_id", clientID),
		zap.Int64("occurrence_id", occ.ID),
	)

	return nil, ErrMissingPricing
}

// pickClientPriceCode выбирает действующий прайс-код на момент at.
// При перекрывающихся окнах (аномалия данных) побеждает строка
// с самым поздним valid_from.
func pickClientPriceCode(codes []*model.ClientPriceCode, at time.Time) *model.ClientPriceCode {
	var best *model.ClientPriceCode
	for _, code := range codes {
		if !code.IsActive || !containsInclusive(code.ValidFrom, code.ValidUntil, at) {
			continue
		}
		if best == nil || code.ValidFrom.After(best.ValidFrom) {
			best = code
		}
	}
	return best
}

func pickStaffPriceCode(codes []*model.StaffPriceCode, at time.Time) *model.StaffPriceCode {
	var best *model.StaffPriceCode
	for _, code := range codes {
		if !code.IsActive || !containsInclusive(code.ValidFrom, code.ValidUntil, at) {
			continue
		}
		if best == nil || code.ValidFrom.After(best.ValidFrom) {
			best = code
		}
	}
	return best
}

func pickClassPricingDefault(defaults []*model.ClassPricingDefault, at time.Time) *model.ClassPricingDefault {
	var best *model.ClassPricingDefault
	for _, def := range defaults {
		if !def.IsActive || !containsInclusive(def.ValidFrom, def.ValidUntil, at) {
			continue
		}
		if best == nil || def.ValidFrom.After(best.ValidFrom) {
			best = def
		}
	}
	return best
}

// containsInclusive проверяет попадание at в закрытый интервал [from, until]
func containsInclusive(from, until, at time.Time) bool {
	return !at.Before(from) && !at.After(until)
}
