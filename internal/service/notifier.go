package service

import (
	"context"

	"github.com/studiofit/booking_engine/internal/model"
)

// Notifier — внешний коллаборатор доставки уведомлений.
// Движок отдаёт готовый доменный объект и не ждёт результата:
// доставка, ретраи и шаблоны писем - целиком его забота.
type Notifier interface {
	BookingConfirmed(ctx context.Context, reg *model.Registration)
	WaitlistPromoted(ctx context.Context, reg *model.Registration)
	BookingCancelled(ctx context.Context, reg *model.Registration)
	SessionScheduled(ctx context.Context, session *model.IndividualSession)
	SessionRescheduled(ctx context.Context, session *model.IndividualSession)
	SessionCancelled(ctx context.Context, session *model.IndividualSession)
	SettlementFinalized(ctx context.Context, settlement *model.Settlement)
}

// NoopNotifier — заглушка для окружений без доставки уведомлений
type NoopNotifier struct{}

func (NoopNotifier) BookingConfirmed(context.Context, *model.Registration)       {}
func (NoopNotifier) WaitlistPromoted(context.Context, *model.Registration)       {}
func (NoopNotifier) BookingCancelled(context.Context, *model.Registration)       {}
func (NoopNotifier) SessionScheduled(context.Context, *model.IndividualSession)  {}
func (NoopNotifier) SessionRescheduled(context.Context, *model.IndividualSession) {}
func (NoopNotifier) SessionCancelled(context.Context, *model.IndividualSession)  {}
func (NoopNotifier) SettlementFinalized(context.Context, *model.Settlement)      {}
