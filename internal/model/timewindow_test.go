package model

import (
	"testing"
	"time"
)

func window(startHour, endHour int) TimeWindow {
	day := time.Date(2025, time.May, 12, 0, 0, 0, 0, time.UTC)
	return TimeWindow{
		StartsAt: day.Add(time.Duration(startHour) * time.Hour),
		EndsAt:   day.Add(time.Duration(endHour) * time.Hour),
	}
}

func TestTimeWindowOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a    TimeWindow
		b    TimeWindow
		want bool
	}{
		{"partial overlap", window(10, 11), window(10, 12), true},
		{"contained window", window(10, 14), window(11, 12), true},
		{"identical windows", window(10, 11), window(10, 11), true},
		{"touching endpoints do not overlap", window(10, 11), window(11, 12), false},
		{"touching endpoints reversed", window(11, 12), window(10, 11), false},
		{"disjoint windows", window(8, 9), window(10, 11), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			// Пересечение симметрично
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("Overlaps() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeWindowContains(t *testing.T) {
	w := window(10, 12)

	if !w.Contains(w.StartsAt) {
		t.Error("window must contain its start")
	}
	if w.Contains(w.EndsAt) {
		t.Error("window must not contain its end (half-open)")
	}
	if !w.Contains(w.StartsAt.Add(time.Hour)) {
		t.Error("window must contain interior point")
	}
}

func TestTimeWindowIsValid(t *testing.T) {
	if !window(10, 11).IsValid() {
		t.Error("forward window must be valid")
	}
	if window(11, 11).IsValid() {
		t.Error("zero-length window must be invalid")
	}
	if window(12, 11).IsValid() {
		t.Error("reversed window must be invalid")
	}
}
