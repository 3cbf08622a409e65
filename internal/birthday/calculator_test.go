package birthday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name     string
		birthday time.Time
		today    time.Time
		want     time.Time
	}{
		{
			name:     "later this year",
			birthday: DateOf(1990, time.December, 1),
			today:    DateOf(2026, time.February, 13),
			want:     DateOf(2026, time.December, 1),
		},
		{
			name:     "already passed, rolls to next year",
			birthday: DateOf(1990, time.January, 1),
			today:    DateOf(2026, time.February, 13),
			want:     DateOf(2027, time.January, 1),
		},
		{
			name:     "today is the occurrence",
			birthday: DateOf(1990, time.February, 13),
			today:    DateOf(2026, time.February, 13),
			want:     DateOf(2026, time.February, 13),
		},
		{
			name:     "feb 29 clamps to feb 28 in non-leap year",
			birthday: DateOf(2000, time.February, 29),
			today:    DateOf(2026, time.February, 10),
			want:     DateOf(2026, time.February, 28),
		},
		{
			name:     "feb 29 kept in leap year",
			birthday: DateOf(2000, time.February, 29),
			today:    DateOf(2028, time.January, 1),
			want:     DateOf(2028, time.February, 29),
		},
		{
			name:     "feb 29 already passed in leap year",
			birthday: DateOf(2000, time.February, 29),
			today:    DateOf(2028, time.March, 1),
			want:     DateOf(2029, time.February, 28),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOccurrence(tt.birthday, tt.today)
			assert.Equal(t, tt.want, got)
			assert.False(t, got.Before(tt.today))
		})
	}
}

func TestDaysUntil(t *testing.T) {
	tests := []struct {
		name     string
		birthday time.Time
		today    time.Time
		want     int
	}{
		{
			name:     "long range",
			birthday: DateOf(1990, time.December, 1),
			today:    DateOf(2026, time.February, 13),
			want:     291,
		},
		{
			name:     "clamped feb 29",
			birthday: DateOf(2000, time.February, 29),
			today:    DateOf(2026, time.February, 10),
			want:     18,
		},
		{
			name:     "same day",
			birthday: DateOf(1990, time.June, 15),
			today:    DateOf(2026, time.June, 15),
			want:     0,
		},
		{
			name:     "tomorrow",
			birthday: DateOf(1990, time.June, 16),
			today:    DateOf(2026, time.June, 15),
			want:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysUntil(tt.birthday, tt.today))
		})
	}
}

// DaysUntil must agree with NextOccurrence across a sweep of dates.
func TestDaysUntil_ConsistentWithNextOccurrence(t *testing.T) {
	birthday := DateOf(2000, time.February, 29)
	today := DateOf(2026, time.January, 1)
	for i := 0; i < 800; i++ {
		next := NextOccurrence(birthday, today)
		days := DaysUntil(birthday, today)
		assert.Equal(t, int(next.Sub(today)/(24*time.Hour)), days)
		assert.GreaterOrEqual(t, days, 0)
		today = today.AddDate(0, 0, 1)
	}
}

func TestNormalize(t *testing.T) {
	in := time.Date(2026, 2, 13, 17, 45, 12, 99, time.UTC)
	assert.Equal(t, DateOf(2026, time.February, 13), Normalize(in))
}
