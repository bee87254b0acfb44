package recurrence

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpandWeekly(t *testing.T) {
	tests := []struct {
		name    string
		weekday time.Weekday
		from    time.Time
		until   time.Time
		skip    []time.Time
		want    []time.Time
	}{
		{
			name:    "mondays in january range",
			weekday: time.Monday,
			from:    date(2025, time.January, 1),
			until:   date(2025, time.January, 15),
			want:    []time.Time{date(2025, time.January, 6), date(2025, time.January, 13)},
		},
		{
			name:    "skip date omitted without breaking cadence",
			weekday: time.Monday,
			from:    date(2025, time.January, 1),
			until:   date(2025, time.January, 22),
			skip:    []time.Time{date(2025, time.January, 13)},
			want:    []time.Time{date(2025, time.January, 6), date(2025, time.January, 20)},
		},
		{
			name:    "from already on weekday is included",
			weekday: time.Monday,
			from:    date(2025, time.January, 6),
			until:   date(2025, time.January, 6),
			want:    []time.Time{date(2025, time.January, 6)},
		},
		{
			name:    "until inclusive",
			weekday: time.Friday,
			from:    date(2025, time.March, 3),
			until:   date(2025, time.March, 7),
			want:    []time.Time{date(2025, time.March, 7)},
		},
		{
			name:    "empty range",
			weekday: time.Monday,
			from:    date(2025, time.January, 10),
			until:   date(2025, time.January, 8),
			want:    nil,
		},
		{
			name:    "no matching weekday in range",
			weekday: time.Sunday,
			from:    date(2025, time.January, 6),
			until:   date(2025, time.January, 11),
			want:    nil,
		},
		{
			name:    "all dates skipped",
			weekday: time.Monday,
			from:    date(2025, time.January, 1),
			until:   date(2025, time.January, 15),
			skip:    []time.Time{date(2025, time.January, 6), date(2025, time.January, 13)},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandWeekly(tt.weekday, tt.from, tt.until, tt.skip)
			if len(got) != len(tt.want) {
				t.Fatalf("ExpandWeekly() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if !got[i].Equal(tt.want[i]) {
					t.Errorf("ExpandWeekly()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExpandWeeklyIsPure(t *testing.T) {
	from := date(2025, time.February, 1)
	until := date(2025, time.March, 31)

	first := ExpandWeekly(time.Wednesday, from, until, nil)
	second := ExpandWeekly(time.Wednesday, from, until, nil)

	if len(first) != len(second) {
		t.Fatalf("repeated expansion differs: %d vs %d dates", len(first), len(second))
	}
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Errorf("date %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestAt(t *testing.T) {
	d := date(2025, time.January, 6)
	got := At(d, 9, 30, time.UTC)
	want := time.Date(2025, time.January, 6, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("At() = %v, want %v", got, want)
	}
}
