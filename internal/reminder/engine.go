// Package reminder contains the birthday reminder engine: the stateless
// per-person decision, the daily scan over all people, and the scheduling
// around both.
package reminder

import (
	"time"

	"github.com/zhongxul/birthkeeper/internal/birthday"
	"github.com/zhongxul/birthkeeper/internal/models"
)

// Candidate is a reminder that should exist for a person today: the concrete
// upcoming birthday date and the lead time that matched.
type Candidate struct {
	PersonID   int64
	TargetDate time.Time
	OffsetDay  int
}

// Evaluate decides whether today is a configured lead-time day for the
// person. It is pure and knows nothing about existing logs; deduplication is
// the lifecycle store's job.
func Evaluate(p models.Person, today time.Time) (Candidate, bool) {
	if !p.Reminder.Enabled {
		return Candidate{}, false
	}

	days := birthday.DaysUntil(p.BirthdaySolar, today)
	if !p.Reminder.HasOffset(days) {
		return Candidate{}, false
	}

	return Candidate{
		PersonID:   p.ID,
		TargetDate: birthday.NextOccurrence(p.BirthdaySolar, today),
		OffsetDay:  days,
	}, true
}
