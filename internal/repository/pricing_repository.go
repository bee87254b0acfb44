package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studiofit/booking_engine/internal/model"
	"github.com/studiofit/booking_engine/internal/repository/base"
)

// PricingRepository читает тарифные данные: типы услуг, персональные
// прайс-коды и тарифы групповых занятий
type PricingRepository struct {
	db base.Querier
}

func NewPricingRepository(pool *pgxpool.Pool) *PricingRepository {
	return &PricingRepository{db: pool}
}

// WithTx возвращает копию репозитория, привязанную к транзакции
func (r *PricingRepository) WithTx(tx pgx.Tx) *PricingRepository {
	return &PricingRepository{db: tx}
}

// GetServiceType получает тип услуги по ID
func (r *PricingRepository) GetServiceType(ctx context.Context, id int64) (*model.ServiceType, error) {
	query := `
		SELECT id, name, entry_fee_huf, trainer_fee_huf, currency, is_active, created_at
		FROM service_types
		WHERE id = $1
	`

	var st model.ServiceType
	err := r.db.QueryRow(ctx, query, id).Scan(
		&st.ID,
		&st.Name,
		&st.EntryFeeHUF,
		&st.TrainerFeeHUF,
		&st.Currency,
		&st.IsActive,
		&st.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service type by id: %w", err)
	}

	return &st, nil
}

// GetClientPriceCodes получает активные прайс-коды клиента на тип услуги
func (r *PricingRepository) GetClientPriceCodes(ctx context.Context, clientID, serviceTypeID int64) ([]*model.ClientPriceCode, error) {
	query := `
		SELECT id, client_id, service_type_id, entry_fee_huf, trainer_fee_huf, currency,
			valid_from, valid_until, is_active, created_at
		FROM client_price_codes
		WHERE client_id = $1 AND service_type_id = $2 AND is_active = true
		ORDER BY valid_from DESC
	`

	rows, err := r.db.Query(ctx, query, clientID, serviceTypeID)
	if err != nil {
		return nil, fmt.Errorf("get client price codes: %w", err)
	}
	defer rows.Close()

	var codes []*model.ClientPriceCode
	for rows.Next() {
		var code model.ClientPriceCode
		err := rows.Scan(
			&code.ID,
			&code.ClientID,
			&code.ServiceTypeID,
			&code.EntryFeeHUF,
			&code.TrainerFeeHUF,
			&code.Currency,
			&code.ValidFrom,
			&code.ValidUntil,
			&code.IsActive,
			&code.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan client price code: %w", err)
		}
		codes = append(codes, &code)
	}

	return codes, rows.Err()
}

// GetStaffPriceCodes получает активные прайс-коды тренера на тип услуги
func (r *PricingRepository) GetStaffPriceCodes(ctx context.Context, staffID, serviceTypeID int64) ([]*model.StaffPriceCode, error) {
	query := `
		SELECT id, staff_id, service_type_id, entry_fee_huf, trainer_fee_huf, currency,
			valid_from, valid_until, is_active, created_at
		FROM staff_price_codes
		WHERE staff_id = $1 AND service_type_id = $2 AND is_active = true
		ORDER BY valid_from DESC
	`

	rows, err := r.db.Query(ctx, query, staffID, serviceTypeID)
	if err != nil {
		return nil, fmt.Errorf("get staff price codes: %w", err)
	}
	defer rows.Close()

	var codes []*model.StaffPriceCode
	for rows.Next() {
		var code model.StaffPriceCode
		err := rows.Scan(
			&code.ID,
			&code.StaffID,
			&code.ServiceTypeID,
			&code.EntryFeeHUF,
			&code.TrainerFeeHUF,
			&code.Currency,
			&code.ValidFrom,
			&code.ValidUntil,
			&code.IsActive,
			&code.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan staff price code: %w", err)
		}
		codes = append(codes, &code)
	}

	return codes, rows.Err()
}

// GetClientClassPricingByOccurrence получает персональный тариф клиента,
// привязанный к конкретному занятию
func (r *PricingRepository) GetClientClassPricingByOccurrence(ctx context.Context, clientID, occurrenceID int64) (*model.ClientClassPricing, error) {
	query := `
		SELECT id, client_id, occurrence_id, template_id, entry_fee_huf, trainer_fee_huf,
			currency, is_active, created_at
		FROM client_class_pricing
		WHERE client_id = $1 AND occurrence_id = $2 AND is_active = true
		ORDER BY created_at DESC
		LIMIT 1
	`

	return r.scanClientClassPricing(r.db.QueryRow(ctx, query, clientID, occurrenceID))
}

// GetClientClassPricingByTemplate получает персональный тариф клиента,
// привязанный к шаблону класса
func (r *PricingRepository) GetClientClassPricingByTemplate(ctx context.Context, clientID, templateID int64) (*model.ClientClassPricing, error) {
	query := `
		SELECT id, client_id, occurrence_id, template_id, entry_fee_huf, trainer_fee_huf,
			currency, is_active, created_at
		FROM client_class_pricing
		WHERE client_id = $1 AND template_id = $2 AND occurrence_id IS NULL AND is_active = true
		ORDER BY created_at DESC
		LIMIT 1
	`

	return r.scanClientClassPricing(r.db.QueryRow(ctx, query, clientID, templateID))
}

func (r *PricingRepository) scanClientClassPricing(row pgx.Row) (*model.ClientClassPricing, error) {
	var p model.ClientClassPricing
	err := row.Scan(
		&p.ID,
		&p.ClientID,
		&p.OccurrenceID,
		&p.TemplateID,
		&p.EntryFeeHUF,
		&p.TrainerFeeHUF,
		&p.Currency,
		&p.IsActive,
		&p.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client class pricing: %w", err)
	}

	return &p, nil
}

// GetClassPricingDefaults получает активные общие тарифы групповых занятий
func (r *PricingRepository) GetClassPricingDefaults(ctx context.Context) ([]*model.ClassPricingDefault, error) {
	query := `
		SELECT id, entry_fee_huf, trainer_fee_huf, currency, valid_from, valid_until, is_active, created_at
		FROM class_pricing_defaults
		WHERE is_active = true
		ORDER BY valid_from DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get class pricing defaults: %w", err)
	}
	defer rows.Close()

	var defaults []*model.ClassPricingDefault
	for rows.Next() {
		var d model.ClassPricingDefault
		err := rows.Scan(
			&d.ID,
			&d.EntryFeeHUF,
			&d.TrainerFeeHUF,
			&d.Currency,
			&d.ValidFrom,
			&d.ValidUntil,
			&d.IsActive,
			&d.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan class pricing default: %w", err)
		}
		defaults = append(defaults, &d)
	}

	return defaults, rows.Err()
}
