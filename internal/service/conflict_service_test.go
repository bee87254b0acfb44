package service

import (
	"errors"
	"testing"
	"time"

	"github.com/studiofit/booking_engine/internal/model"
)

func window(startHour, endHour int) model.TimeWindow {
	day := time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)
	return model.TimeWindow{
		StartsAt: day.Add(time.Duration(startHour) * time.Hour),
		EndsAt:   day.Add(time.Duration(endHour) * time.Hour),
	}
}

func TestMergeConflictEntries(t *testing.T) {
	tests := []struct {
		name   string
		groups [][]ConflictEntry
		want   int
	}{
		{
			name: "disjoint groups concatenate",
			groups: [][]ConflictEntry{
				{{Kind: ConflictKindIndividual, ID: 1}},
				{{Kind: ConflictKindClass, ID: 1}},
			},
			want: 2,
		},
		{
			name: "same booking in both scans deduped",
			groups: [][]ConflictEntry{
				{{Kind: ConflictKindIndividual, ID: 5}},
				{{Kind: ConflictKindIndividual, ID: 5}},
			},
			want: 1,
		},
		{
			name: "same id different kind kept",
			groups: [][]ConflictEntry{
				{{Kind: ConflictKindIndividual, ID: 5}, {Kind: ConflictKindClass, ID: 5}},
			},
			want: 2,
		},
		{
			name:   "empty groups",
			groups: [][]ConflictEntry{nil, {}},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeConflictEntries(tt.groups...)
			if len(got) != tt.want {
				t.Errorf("mergeConflictEntries() len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

// Порядок первого вхождения сохраняется при объединении
func TestMergeConflictEntries_PreservesOrder(t *testing.T) {
	merged := mergeConflictEntries(
		[]ConflictEntry{{Kind: ConflictKindClass, ID: 2}, {Kind: ConflictKindIndividual, ID: 1}},
		[]ConflictEntry{{Kind: ConflictKindIndividual, ID: 1}, {Kind: ConflictKindIndividual, ID: 3}},
	)

	wantIDs := []int64{2, 1, 3}
	if len(merged) != len(wantIDs) {
		t.Fatalf("merged len = %d, want %d", len(merged), len(wantIDs))
	}
	for i, id := range wantIDs {
		if merged[i].ID != id {
			t.Errorf("merged[%d].ID = %d, want %d", i, merged[i].ID, id)
		}
	}
}

func TestConflictError_Message(t *testing.T) {
	single := &ConflictError{Conflicts: []ConflictEntry{
		{Kind: ConflictKindClass, ID: 7, Window: window(10, 11)},
	}}
	if got := single.Error(); got != "booking conflict with class #7" {
		t.Errorf("single conflict message = %q", got)
	}

	multi := &ConflictError{Conflicts: []ConflictEntry{
		{Kind: ConflictKindClass, ID: 7},
		{Kind: ConflictKindIndividual, ID: 3},
	}}
	if got := multi.Error(); got != "booking conflicts with 2 existing bookings" {
		t.Errorf("multi conflict message = %q", got)
	}
}

func TestAsConflictError(t *testing.T) {
	conflictErr := &ConflictError{Conflicts: []ConflictEntry{{Kind: ConflictKindIndividual, ID: 1}}}

	wrapped := errors.Join(errors.New("outer"), conflictErr)
	got, ok := AsConflictError(wrapped)
	if !ok {
		t.Fatal("AsConflictError() did not find wrapped ConflictError")
	}
	if len(got.Conflicts) != 1 || got.Conflicts[0].ID != 1 {
		t.Errorf("extracted conflicts = %+v", got.Conflicts)
	}

	if _, ok := AsConflictError(errors.New("plain")); ok {
		t.Error("AsConflictError() matched a plain error")
	}
}
