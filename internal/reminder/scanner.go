package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zhongxul/birthkeeper/internal/birthday"
	"github.com/zhongxul/birthkeeper/internal/common"
	"github.com/zhongxul/birthkeeper/internal/logging"
	"github.com/zhongxul/birthkeeper/internal/models"
	"github.com/zhongxul/birthkeeper/internal/repositories/persons"
	"github.com/zhongxul/birthkeeper/internal/repositories/reminderlogs"
	"github.com/zhongxul/birthkeeper/internal/timex"
)

// Summary reports what one scan pass did.
type Summary struct {
	RunID     string
	People    int
	Notified  int
	Scheduled int
	Skipped   int
	Failed    int
}

// Scanner drives one reminder pass over all enabled people: decide, ensure
// the lifecycle row, and dispatch or schedule the notification. A failure for
// one person never aborts the rest of the batch.
type Scanner struct {
	people               persons.Repository
	logs                 reminderlogs.Repository
	notifier             Notifier
	exact                ExactScheduler
	clock                timex.Clock
	log                  logging.Logger
	notificationsEnabled bool
}

func NewScanner(
	people persons.Repository,
	logs reminderlogs.Repository,
	notifier Notifier,
	exact ExactScheduler,
	clock timex.Clock,
	log logging.Logger,
	notificationsEnabled bool,
) *Scanner {
	return &Scanner{
		people:               people,
		logs:                 logs,
		notifier:             notifier,
		exact:                exact,
		clock:                clock,
		log:                  log.With("component", "scanner"),
		notificationsEnabled: notificationsEnabled,
	}
}

// Scan runs one pass. Re-running it on the same day is safe: the lifecycle
// store deduplicates occurrences and SENT/CLICKED/DONE rows are never
// re-notified.
func (s *Scanner) Scan(ctx context.Context) (Summary, error) {
	now := s.clock.Now()
	today := birthday.Normalize(now)
	summary := Summary{RunID: uuid.NewString()}
	log := s.log.With("run_id", summary.RunID)

	people, err := s.people.ListActive(ctx)
	if err != nil {
		return summary, fmt.Errorf("scan: list people: %w", err)
	}
	summary.People = len(people)

	for _, p := range people {
		outcome, err := s.processPerson(ctx, p, today, now)
		if err != nil {
			summary.Failed++
			log.Error(ctx, "person scan failed", "person_id", p.ID, "error", err)
			continue
		}
		switch outcome {
		case outcomeNotified:
			summary.Notified++
		case outcomeScheduled:
			summary.Scheduled++
		default:
			summary.Skipped++
		}
	}

	log.Info(ctx, "scan finished",
		"people", summary.People,
		"notified", summary.Notified,
		"scheduled", summary.Scheduled,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, nil
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeNotified
	outcomeScheduled
)

func (s *Scanner) processPerson(ctx context.Context, p models.Person, today, now time.Time) (outcome, error) {
	candidate, ok := Evaluate(p, today)
	if !ok {
		return outcomeSkipped, nil
	}

	log, err := s.logs.EnsureLog(ctx, candidate.PersonID, candidate.TargetDate, candidate.OffsetDay)
	if err != nil {
		return outcomeSkipped, err
	}

	// DONE is the per-occurrence suppression flag: the user already handled
	// this one.
	if log.Status == models.StatusDone {
		return outcomeSkipped, nil
	}

	// Notification permission withheld: keep the PLANNED row, skip dispatch.
	if !s.notificationsEnabled {
		return outcomeSkipped, nil
	}

	notification := BuildNotification(p, candidate, log.ID)

	// Day-of reminder before the configured remind time: hand off to a
	// precise trigger instead of notifying too early. Denial falls back to
	// the immediate path.
	if candidate.OffsetDay == 0 && today.Equal(birthday.Normalize(candidate.TargetDate)) &&
		p.Reminder.RemindTime.After(now) && s.exact != nil {
		err := s.exact.ScheduleExact(ctx, p.Reminder.RemindTime.On(now), notification)
		if err == nil {
			return outcomeScheduled, nil
		}
		if !errors.Is(err, common.ErrExactScheduleDenied) {
			s.log.Warn(ctx, "exact scheduling failed", "person_id", p.ID, "error", err)
		}
	}

	if log.Status == models.StatusSent || log.Status == models.StatusClicked {
		return outcomeSkipped, nil
	}

	if err := s.notifier.Notify(ctx, notification); err != nil {
		return outcomeSkipped, fmt.Errorf("notify person %d: %w", p.ID, err)
	}
	if err := s.logs.Transition(ctx, log.ID, models.StatusSent); err != nil {
		return outcomeSkipped, fmt.Errorf("mark sent for person %d: %w", p.ID, err)
	}
	return outcomeNotified, nil
}
