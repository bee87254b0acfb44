package service

import (
	"github.com/studiofit/booking_engine/internal/config"
	"github.com/studiofit/booking_engine/internal/model"
)

// Чистые решения машины состояний бронирования. Сервис только
// читает строки, применяет решение и записывает результат -
// сами правила от хранилища не зависят.

// decideInitialStatus выбирает стартовый статус регистрации.
// Переполнение вместимости не ошибка: лишние уходят в лист ожидания.
func decideInitialStatus(requested *model.RegistrationStatus, confirmedCount, capacity int) model.RegistrationStatus {
	if requested != nil {
		return *requested
	}
	if confirmedCount < capacity {
		return model.RegistrationStatusBooked
	}
	return model.RegistrationStatusWaitlist
}

// chargeOutcome — результат попытки оплаты регистрации
type chargeOutcome struct {
	PaymentStatus model.PaymentStatus
	CreditsUsed   int
	// BalanceDelta добавляется к неоплаченному долгу клиента
	BalanceDelta int64
}

// decideCharge применяет правила оплаты подтверждённого места:
// списание с абонемента, иначе долг, либо явное освобождение от оплаты.
func decideCharge(deducted, skipPayment bool, creditsRequired int, unitPriceHUF int64) chargeOutcome {
	if skipPayment {
		return chargeOutcome{PaymentStatus: model.PaymentStatusComped}
	}
	if deducted {
		return chargeOutcome{
			PaymentStatus: model.PaymentStatusPaid,
			CreditsUsed:   creditsRequired,
		}
	}
	return chargeOutcome{
		PaymentStatus: model.PaymentStatusUnpaid,
		BalanceDelta:  int64(creditsRequired) * unitPriceHUF,
	}
}

// refundOutcome — что вернуть клиенту при отмене подтверждённого места
type refundOutcome struct {
	// RefundCredits возвращается на абонемент
	RefundCredits int
	// BalanceDelta добавляется к долгу (отрицательная — долг уменьшается)
	BalanceDelta int64
}

// decideRefund применяет правила возврата: ровно то, что было взято
// при оплате - кредиты абонемента либо сумма долга, записанная на
// регистрации. Pending и comped не возвращают ничего.
func decideRefund(paymentStatus model.PaymentStatus, creditsUsed int, chargedHUF int64) refundOutcome {
	switch paymentStatus {
	case model.PaymentStatusPaid:
		return refundOutcome{RefundCredits: creditsUsed}
	case model.PaymentStatusUnpaid:
		return refundOutcome{BalanceDelta: -chargedHUF}
	default:
		return refundOutcome{}
	}
}

// shouldPromote решает, обслуживается ли лист ожидания после отмены.
// Место освобождается только подтверждённой регистрацией, и отменённое
// занятие никого не продвигает: с продвигаемого взяли бы оплату
// за занятие, которое не состоится.
func shouldPromote(wasBooked bool, occurrenceStatus model.OccurrenceStatus) bool {
	return wasBooked && occurrenceStatus != model.OccurrenceStatusCancelled
}

// nextPromotable выбирает регистрацию для продвижения из листа ожидания:
// строгий FIFO по booked_at, при равенстве — по порядку вставки.
func nextPromotable(regs []*model.Registration) *model.Registration {
	var next *model.Registration
	for _, reg := range regs {
		if reg.Status != model.RegistrationStatusWaitlist {
			continue
		}
		if next == nil ||
			reg.BookedAt.Before(next.BookedAt) ||
			(reg.BookedAt.Equal(next.BookedAt) && reg.ID < next.ID) {
			next = reg
		}
	}
	return next
}

// creditUnitPrice возвращает цену кредита для занятия: базовая цена
// шаблона, если задана, иначе общая настройка движка
func creditUnitPrice(template *model.ClassTemplate, settings config.Settings) int64 {
	if template != nil && template.BasePriceHUF > 0 {
		return template.BasePriceHUF
	}
	return settings.CreditUnitPriceHUF
}

// creditsRequired возвращает стоимость занятия в кредитах
func creditsRequired(template *model.ClassTemplate) int {
	if template != nil && template.CreditsRequired > 0 {
		return template.CreditsRequired
	}
	return 1
}
