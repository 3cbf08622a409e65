// Package models holds the domain model shared by repositories, the reminder
// engine and the backup codec.
package models

import (
	"sort"
	"time"

	"github.com/zhongxul/birthkeeper/internal/timex"
)

type Gender int

const (
	GenderUnknown Gender = iota
	GenderMale
	GenderFemale
)

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return "unknown"
	}
}

// Person is a tracked contact. ID 0 means "not yet persisted". IDNumber is
// plaintext here; the repository encrypts it at rest and decrypts it at the
// read edge.
type Person struct {
	ID            int64
	Name          string
	IDNumber      string
	BirthdaySolar time.Time // date only, UTC midnight
	BirthdayLunar string    // stored, never computed
	Gender        Gender
	Relation      string
	Note          string
	AvatarURI     string
	Reminder      ReminderConfig
	IsDeleted     bool
	CreatedAt     int64 // epoch millis
	UpdatedAt     int64 // epoch millis
}

// ReminderConfig is the 1:1 per-person reminder configuration.
type ReminderConfig struct {
	Offsets    []int // days before the birthday; 0 = day-of
	RemindTime timex.TimeOfDay
	Enabled    bool
}

// DefaultReminderConfig returns the standard lead times and remind time.
func DefaultReminderConfig() ReminderConfig {
	return ReminderConfig{
		Offsets:    []int{7, 3, 1, 0},
		RemindTime: timex.TimeOfDay{Hour: 9, Minute: 0},
		Enabled:    true,
	}
}

// Normalize drops negative offsets, collapses duplicates and sorts the rest in
// descending order (farthest lead time first).
func (c *ReminderConfig) Normalize() {
	seen := make(map[int]struct{}, len(c.Offsets))
	out := c.Offsets[:0]
	for _, o := range c.Offsets {
		if o < 0 {
			continue
		}
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	c.Offsets = out
}

// HasOffset reports whether the given lead time is configured.
func (c ReminderConfig) HasOffset(days int) bool {
	for _, o := range c.Offsets {
		if o == days {
			return true
		}
	}
	return false
}
