package service

import (
	"testing"
	"time"

	"github.com/studiofit/booking_engine/internal/model"
)

func TestIncludeRegistration(t *testing.T) {
	classStart := time.Date(2025, 5, 12, 18, 0, 0, 0, time.UTC)
	occ := &model.ClassOccurrence{StartsAt: classStart}
	before := classStart.Add(-2 * time.Hour)
	after := classStart.Add(10 * time.Minute)

	tests := []struct {
		name     string
		reg      *model.Registration
		billLate bool
		want     bool
	}{
		{
			name: "booked included",
			reg:  &model.Registration{Status: model.RegistrationStatusBooked, Occurrence: occ},
			want: true,
		},
		{
			name: "attended included",
			reg:  &model.Registration{Status: model.RegistrationStatusAttended, Occurrence: occ},
			want: true,
		},
		{
			name: "no_show included",
			reg:  &model.Registration{Status: model.RegistrationStatusNoShow, Occurrence: occ},
			want: true,
		},
		{
			name: "waitlist excluded",
			reg:  &model.Registration{Status: model.RegistrationStatusWaitlist, Occurrence: occ},
			want: false,
		},
		{
			name: "cancelled excluded by default",
			reg:  &model.Registration{Status: model.RegistrationStatusCancelled, CancelledAt: &after, Occurrence: occ},
			want: false,
		},
		{
			name:     "late cancellation billed when enabled",
			reg:      &model.Registration{Status: model.RegistrationStatusCancelled, CancelledAt: &after, Occurrence: occ},
			billLate: true,
			want:     true,
		},
		{
			name:     "early cancellation not billed even when enabled",
			reg:      &model.Registration{Status: model.RegistrationStatusCancelled, CancelledAt: &before, Occurrence: occ},
			billLate: true,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := includeRegistration(tt.reg, tt.billLate); got != tt.want {
				t.Errorf("includeRegistration(%s) = %v, want %v", tt.reg.Status, got, tt.want)
			}
		})
	}
}

func TestSumTotals(t *testing.T) {
	items := []*model.SettlementItem{
		{EntryFeeHUF: 5000, TrainerFeeHUF: 3000},
		{EntryFeeHUF: 2000, TrainerFeeHUF: 1500},
		{EntryFeeHUF: 0, TrainerFeeHUF: 0},
	}

	entry, trainer := sumTotals(items)
	if entry != 7000 {
		t.Errorf("entry total = %d, want 7000", entry)
	}
	if trainer != 4500 {
		t.Errorf("trainer total = %d, want 4500", trainer)
	}
}

// Итоги ведомости аддитивны: сумма по частям равна сумме целого
func TestSumTotals_Additive(t *testing.T) {
	items := []*model.SettlementItem{
		{EntryFeeHUF: 1000, TrainerFeeHUF: 500},
		{EntryFeeHUF: 2000, TrainerFeeHUF: 700},
		{EntryFeeHUF: 3000, TrainerFeeHUF: 900},
	}

	wholeEntry, wholeTrainer := sumTotals(items)
	firstEntry, firstTrainer := sumTotals(items[:1])
	restEntry, restTrainer := sumTotals(items[1:])

	if wholeEntry != firstEntry+restEntry {
		t.Errorf("entry totals not additive: %d != %d + %d", wholeEntry, firstEntry, restEntry)
	}
	if wholeTrainer != firstTrainer+restTrainer {
		t.Errorf("trainer totals not additive: %d != %d + %d", wholeTrainer, firstTrainer, restTrainer)
	}
}

func TestSessionItem(t *testing.T) {
	clientID := int64(42)
	attended := model.AttendanceAttended

	session := &model.IndividualSession{
		ID:            10,
		ClientID:      &clientID,
		EntryFeeHUF:   8000,
		TrainerFeeHUF: 5000,
		Currency:      "HUF",
		Status:        model.SessionStatusCompleted,
		Attendance:    &attended,
	}

	item := sessionItem(session)

	if item.SessionID == nil || *item.SessionID != 10 {
		t.Errorf("session id = %v, want 10", item.SessionID)
	}
	if item.EntryFeeHUF != 8000 || item.TrainerFeeHUF != 5000 {
		t.Errorf("fees = %d/%d, want 8000/5000", item.EntryFeeHUF, item.TrainerFeeHUF)
	}
	if item.Status != "attended" {
		t.Errorf("status = %q, want %q", item.Status, "attended")
	}
}

func TestGuestItem_MultipliesByQuantity(t *testing.T) {
	session := &model.IndividualSession{ID: 10, Status: model.SessionStatusScheduled}
	guest := &model.GuestAssignment{
		ClientID:      99,
		Quantity:      3,
		EntryFeeHUF:   2000,
		TrainerFeeHUF: 1000,
		Currency:      "HUF",
	}

	item := guestItem(session, guest)

	if item.EntryFeeHUF != 6000 {
		t.Errorf("entry fee = %d, want 6000", item.EntryFeeHUF)
	}
	if item.TrainerFeeHUF != 3000 {
		t.Errorf("trainer fee = %d, want 3000", item.TrainerFeeHUF)
	}
}

func TestGuestItem_ZeroQuantityCountsAsOne(t *testing.T) {
	session := &model.IndividualSession{ID: 10, Status: model.SessionStatusScheduled}
	guest := &model.GuestAssignment{ClientID: 99, EntryFeeHUF: 2000, TrainerFeeHUF: 1000}

	item := guestItem(session, guest)

	if item.EntryFeeHUF != 2000 || item.TrainerFeeHUF != 1000 {
		t.Errorf("fees = %d/%d, want 2000/1000", item.EntryFeeHUF, item.TrainerFeeHUF)
	}
}
