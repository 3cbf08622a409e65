package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/zhongxul/birthkeeper/internal/logging"
	"github.com/zhongxul/birthkeeper/internal/models"
	"github.com/zhongxul/birthkeeper/internal/repositories/reminderlogs"
)

// ExactScheduler schedules a one-shot callback for an absolute future
// instant. Implementations may refuse (platform policy) by returning
// common.ErrExactScheduleDenied; callers then fall back to the daily scan
// path.
type ExactScheduler interface {
	ScheduleExact(ctx context.Context, at time.Time, n Notification) error
}

// TimerScheduler is an in-process ExactScheduler built on time.AfterFunc.
// When a trigger fires it performs only the dispatch step: notify, then move
// the log to SENT. At most one timer exists per log id.
type TimerScheduler struct {
	notifier Notifier
	logs     reminderlogs.Repository
	log      logging.Logger

	mu     sync.Mutex
	timers map[int64]*time.Timer
}

func NewTimerScheduler(notifier Notifier, logs reminderlogs.Repository, log logging.Logger) *TimerScheduler {
	return &TimerScheduler{
		notifier: notifier,
		logs:     logs,
		log:      log.With("component", "exact-scheduler"),
		timers:   make(map[int64]*time.Timer),
	}
}

func (s *TimerScheduler) ScheduleExact(ctx context.Context, at time.Time, n Notification) error {
	delay := time.Until(at)
	if delay <= 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.timers[n.LogID]; exists {
		return nil
	}

	s.timers[n.LogID] = time.AfterFunc(delay, func() { s.fire(n) })
	s.log.Debug(ctx, "exact trigger scheduled", "log_id", n.LogID, "at", at)
	return nil
}

func (s *TimerScheduler) fire(n Notification) {
	s.mu.Lock()
	delete(s.timers, n.LogID)
	s.mu.Unlock()

	ctx := context.Background()
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Error(ctx, "exact trigger notify failed", "log_id", n.LogID, "error", err)
		return
	}
	if err := s.logs.Transition(ctx, n.LogID, models.StatusSent); err != nil {
		s.log.Error(ctx, "exact trigger transition failed", "log_id", n.LogID, "error", err)
	}
}

// Stop cancels every pending trigger.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
