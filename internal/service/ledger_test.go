package service

import (
	"testing"
	"time"

	"github.com/studiofit/booking_engine/internal/config"
	"github.com/studiofit/booking_engine/internal/model"
)

func TestDecideInitialStatus(t *testing.T) {
	waitlist := model.RegistrationStatusWaitlist

	tests := []struct {
		name      string
		requested *model.RegistrationStatus
		confirmed int
		capacity  int
		want      model.RegistrationStatus
	}{
		{name: "empty class books", confirmed: 0, capacity: 2, want: model.RegistrationStatusBooked},
		{name: "last seat books", confirmed: 1, capacity: 2, want: model.RegistrationStatusBooked},
		{name: "full class waitlists", confirmed: 2, capacity: 2, want: model.RegistrationStatusWaitlist},
		{name: "overfull class waitlists", confirmed: 3, capacity: 2, want: model.RegistrationStatusWaitlist},
		{name: "zero capacity waitlists", confirmed: 0, capacity: 0, want: model.RegistrationStatusWaitlist},
		{name: "explicit request wins", requested: &waitlist, confirmed: 0, capacity: 10, want: model.RegistrationStatusWaitlist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decideInitialStatus(tt.requested, tt.confirmed, tt.capacity)
			if got != tt.want {
				t.Errorf("decideInitialStatus(%v, %d, %d) = %s, want %s",
					tt.requested, tt.confirmed, tt.capacity, got, tt.want)
			}
		})
	}
}

// Три клиента и класс на два места: первые два booked, третий waitlist
func TestDecideInitialStatus_FillOrder(t *testing.T) {
	confirmed := 0
	capacity := 2

	var statuses []model.RegistrationStatus
	for i := 0; i < 3; i++ {
		status := decideInitialStatus(nil, confirmed, capacity)
		statuses = append(statuses, status)
		if status == model.RegistrationStatusBooked {
			confirmed++
		}
	}

	want := []model.RegistrationStatus{
		model.RegistrationStatusBooked,
		model.RegistrationStatusBooked,
		model.RegistrationStatusWaitlist,
	}
	for i := range want {
		if statuses[i] != want[i] {
			t.Errorf("client %d: got %s, want %s", i+1, statuses[i], want[i])
		}
	}
}

func TestDecideCharge(t *testing.T) {
	tests := []struct {
		name            string
		deducted        bool
		skipPayment     bool
		creditsRequired int
		unitPriceHUF    int64
		want            chargeOutcome
	}{
		{
			name:            "credit deducted",
			deducted:        true,
			creditsRequired: 1,
			unitPriceHUF:    1000,
			want:            chargeOutcome{PaymentStatus: model.PaymentStatusPaid, CreditsUsed: 1},
		},
		{
			name:            "no credits adds debt",
			deducted:        false,
			creditsRequired: 1,
			unitPriceHUF:    1000,
			want:            chargeOutcome{PaymentStatus: model.PaymentStatusUnpaid, BalanceDelta: 1000},
		},
		{
			name:            "multi credit debt",
			deducted:        false,
			creditsRequired: 2,
			unitPriceHUF:    1500,
			want:            chargeOutcome{PaymentStatus: model.PaymentStatusUnpaid, BalanceDelta: 3000},
		},
		{
			name:            "skip payment comps",
			skipPayment:     true,
			creditsRequired: 1,
			unitPriceHUF:    1000,
			want:            chargeOutcome{PaymentStatus: model.PaymentStatusComped},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decideCharge(tt.deducted, tt.skipPayment, tt.creditsRequired, tt.unitPriceHUF)
			if got != tt.want {
				t.Errorf("decideCharge() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecideRefund(t *testing.T) {
	tests := []struct {
		name          string
		paymentStatus model.PaymentStatus
		creditsUsed   int
		chargedHUF    int64
		want          refundOutcome
	}{
		{
			name:          "paid refunds used credits",
			paymentStatus: model.PaymentStatusPaid,
			creditsUsed:   1,
			want:          refundOutcome{RefundCredits: 1},
		},
		{
			name:          "paid multi credit refunds all used",
			paymentStatus: model.PaymentStatusPaid,
			creditsUsed:   2,
			want:          refundOutcome{RefundCredits: 2},
		},
		{
			name:          "unpaid reverses recorded debt",
			paymentStatus: model.PaymentStatusUnpaid,
			chargedHUF:    1000,
			want:          refundOutcome{BalanceDelta: -1000},
		},
		{
			name:          "pending refunds nothing",
			paymentStatus: model.PaymentStatusPending,
			want:          refundOutcome{},
		},
		{
			name:          "comped refunds nothing",
			paymentStatus: model.PaymentStatusComped,
			want:          refundOutcome{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decideRefund(tt.paymentStatus, tt.creditsUsed, tt.chargedHUF)
			if got != tt.want {
				t.Errorf("decideRefund() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// Запись и отмена одного места дают нулевой чистый эффект:
// возврат равен ровно тому, что списание взяло с абонемента
// или записало в долг
func TestChargeRefundSymmetry(t *testing.T) {
	tests := []struct {
		name            string
		deducted        bool
		creditsRequired int
		unitPriceHUF    int64
	}{
		{name: "unpaid path", deducted: false, creditsRequired: 2, unitPriceHUF: 1000},
		{name: "paid path single credit", deducted: true, creditsRequired: 1, unitPriceHUF: 1000},
		{name: "paid path multi credit", deducted: true, creditsRequired: 2, unitPriceHUF: 1500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			charge := decideCharge(tt.deducted, false, tt.creditsRequired, tt.unitPriceHUF)
			refund := decideRefund(charge.PaymentStatus, charge.CreditsUsed, charge.BalanceDelta)

			if net := charge.BalanceDelta + refund.BalanceDelta; net != 0 {
				t.Errorf("net balance delta = %d, want 0", net)
			}
			if tt.deducted && refund.RefundCredits != tt.creditsRequired {
				t.Errorf("refund returns %d credits, deducted %d", refund.RefundCredits, tt.creditsRequired)
			}
			if !tt.deducted && refund.RefundCredits != 0 {
				t.Errorf("unpaid path must not refund credits, got %d", refund.RefundCredits)
			}
		})
	}
}

func TestShouldPromote(t *testing.T) {
	tests := []struct {
		name      string
		wasBooked bool
		status    model.OccurrenceStatus
		want      bool
	}{
		{name: "booked cancel on scheduled class promotes", wasBooked: true, status: model.OccurrenceStatusScheduled, want: true},
		{name: "waitlist cancel frees no seat", wasBooked: false, status: model.OccurrenceStatusScheduled, want: false},
		{name: "cancelled class promotes nobody", wasBooked: true, status: model.OccurrenceStatusCancelled, want: false},
		{name: "completed class still promotes", wasBooked: true, status: model.OccurrenceStatusCompleted, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldPromote(tt.wasBooked, tt.status); got != tt.want {
				t.Errorf("shouldPromote(%v, %s) = %v, want %v", tt.wasBooked, tt.status, got, tt.want)
			}
		})
	}
}

func TestNextPromotable(t *testing.T) {
	at := func(min int) time.Time {
		return time.Date(2025, 3, 10, 10, min, 0, 0, time.UTC)
	}

	tests := []struct {
		name   string
		regs   []*model.Registration
		wantID int64
	}{
		{
			name: "earliest booked_at wins",
			regs: []*model.Registration{
				{ID: 1, Status: model.RegistrationStatusWaitlist, BookedAt: at(30)},
				{ID: 2, Status: model.RegistrationStatusWaitlist, BookedAt: at(10)},
				{ID: 3, Status: model.RegistrationStatusWaitlist, BookedAt: at(20)},
			},
			wantID: 2,
		},
		{
			name: "booked entries ignored",
			regs: []*model.Registration{
				{ID: 1, Status: model.RegistrationStatusBooked, BookedAt: at(0)},
				{ID: 2, Status: model.RegistrationStatusCancelled, BookedAt: at(5)},
				{ID: 3, Status: model.RegistrationStatusWaitlist, BookedAt: at(40)},
			},
			wantID: 3,
		},
		{
			name: "tie resolves by id",
			regs: []*model.Registration{
				{ID: 7, Status: model.RegistrationStatusWaitlist, BookedAt: at(10)},
				{ID: 4, Status: model.RegistrationStatusWaitlist, BookedAt: at(10)},
			},
			wantID: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextPromotable(tt.regs)
			if got == nil {
				t.Fatal("nextPromotable() = nil, want registration")
			}
			if got.ID != tt.wantID {
				t.Errorf("nextPromotable() id = %d, want %d", got.ID, tt.wantID)
			}
		})
	}
}

func TestNextPromotable_Empty(t *testing.T) {
	regs := []*model.Registration{
		{ID: 1, Status: model.RegistrationStatusBooked},
		{ID: 2, Status: model.RegistrationStatusCancelled},
	}

	if got := nextPromotable(regs); got != nil {
		t.Errorf("nextPromotable() = %+v, want nil", got)
	}
}

func TestCreditUnitPrice(t *testing.T) {
	settings := config.Settings{CreditUnitPriceHUF: 1000}

	tests := []struct {
		name     string
		template *model.ClassTemplate
		want     int64
	}{
		{name: "template base price wins", template: &model.ClassTemplate{BasePriceHUF: 2500}, want: 2500},
		{name: "zero base price falls back", template: &model.ClassTemplate{}, want: 1000},
		{name: "nil template falls back", template: nil, want: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := creditUnitPrice(tt.template, settings); got != tt.want {
				t.Errorf("creditUnitPrice() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCreditsRequired(t *testing.T) {
	if got := creditsRequired(&model.ClassTemplate{CreditsRequired: 3}); got != 3 {
		t.Errorf("creditsRequired() = %d, want 3", got)
	}
	if got := creditsRequired(nil); got != 1 {
		t.Errorf("creditsRequired(nil) = %d, want 1", got)
	}
}
