package service

import (
	"testing"
	"time"

	"github.com/studiofit/booking_engine/internal/model"
)

var (
	jan1  = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	jun30 = time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)
	jul1  = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	dec31 = time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)
)

func TestPickClientPriceCode(t *testing.T) {
	tests := []struct {
		name   string
		codes  []*model.ClientPriceCode
		at     time.Time
		wantID int64 // 0 — ожидается nil
	}{
		{
			name: "single active code in window",
			codes: []*model.ClientPriceCode{
				{ID: 1, ValidFrom: jan1, ValidUntil: dec31, IsActive: true},
			},
			at:     jul1,
			wantID: 1,
		},
		{
			name: "expired code not picked",
			codes: []*model.ClientPriceCode{
				{ID: 1, ValidFrom: jan1, ValidUntil: jun30, IsActive: true},
			},
			at:     time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
			wantID: 0,
		},
		{
			name: "inactive code not picked",
			codes: []*model.ClientPriceCode{
				{ID: 1, ValidFrom: jan1, ValidUntil: dec31, IsActive: false},
			},
			at:     jul1,
			wantID: 0,
		},
		{
			name: "overlapping windows latest valid_from wins",
			codes: []*model.ClientPriceCode{
				{ID: 1, ValidFrom: jan1, ValidUntil: dec31, IsActive: true},
				{ID: 2, ValidFrom: jul1, ValidUntil: dec31, IsActive: true},
			},
			at:     time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
			wantID: 2,
		},
		{
			name: "boundary valid_from inclusive",
			codes: []*model.ClientPriceCode{
				{ID: 1, ValidFrom: jul1, ValidUntil: dec31, IsActive: true},
			},
			at:     jul1,
			wantID: 1,
		},
		{
			name: "boundary valid_until inclusive",
			codes: []*model.ClientPriceCode{
				{ID: 1, ValidFrom: jan1, ValidUntil: jun30, IsActive: true},
			},
			at:     jun30,
			wantID: 1,
		},
		{
			name:   "no codes",
			codes:  nil,
			at:     jul1,
			wantID: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pickClientPriceCode(tt.codes, tt.at)
			if tt.wantID == 0 {
				if got != nil {
					t.Errorf("pickClientPriceCode() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("pickClientPriceCode() = nil, want id %d", tt.wantID)
			}
			if got.ID != tt.wantID {
				t.Errorf("pickClientPriceCode() id = %d, want %d", got.ID, tt.wantID)
			}
		})
	}
}

func TestPickStaffPriceCode(t *testing.T) {
	codes := []*model.StaffPriceCode{
		{ID: 1, ValidFrom: jan1, ValidUntil: jun30, IsActive: true, TrainerFeeHUF: 5000},
		{ID: 2, ValidFrom: jul1, ValidUntil: dec31, IsActive: true, TrainerFeeHUF: 6000},
	}

	got := pickStaffPriceCode(codes, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))
	if got == nil || got.ID != 1 {
		t.Fatalf("march pick = %+v, want id 1", got)
	}

	got = pickStaffPriceCode(codes, time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC))
	if got == nil || got.ID != 2 {
		t.Fatalf("october pick = %+v, want id 2", got)
	}
}

func TestPickClassPricingDefault(t *testing.T) {
	defaults := []*model.ClassPricingDefault{
		{ID: 1, ValidFrom: jan1, ValidUntil: dec31, IsActive: true, EntryFeeHUF: 2000},
		{ID: 2, ValidFrom: jul1, ValidUntil: dec31, IsActive: true, EntryFeeHUF: 2500},
		{ID: 3, ValidFrom: jan1, ValidUntil: dec31, IsActive: false, EntryFeeHUF: 9999},
	}

	got := pickClassPricingDefault(defaults, time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC))
	if got == nil {
		t.Fatal("pickClassPricingDefault() = nil, want id 2")
	}
	if got.ID != 2 {
		t.Errorf("pickClassPricingDefault() id = %d, want 2", got.ID)
	}
}

// Один и тот же вход всегда даёт один и тот же выбор
func TestPickClientPriceCode_Deterministic(t *testing.T) {
	codes := []*model.ClientPriceCode{
		{ID: 1, ValidFrom: jan1, ValidUntil: dec31, IsActive: true},
		{ID: 2, ValidFrom: jul1, ValidUntil: dec31, IsActive: true},
	}
	at := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	first := pickClientPriceCode(codes, at)
	for i := 0; i < 10; i++ {
		if got := pickClientPriceCode(codes, at); got != first {
			t.Fatalf("pick %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestContainsInclusive(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "inside window", at: jul1, want: true},
		{name: "at from boundary", at: jan1, want: true},
		{name: "at until boundary", at: dec31, want: true},
		{name: "before window", at: jan1.Add(-time.Second), want: false},
		{name: "after window", at: dec31.Add(time.Second), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := containsInclusive(jan1, dec31, tt.at); got != tt.want {
				t.Errorf("containsInclusive(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}
