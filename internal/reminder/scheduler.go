package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/zhongxul/birthkeeper/internal/logging"
	"github.com/zhongxul/birthkeeper/internal/timex"
)

// Scheduler runs the scanner once per interval, anchored near a configured
// time of day. It is an explicit service object constructed once at process
// start; there is no package-level state.
type Scheduler struct {
	scanner  *Scanner
	anchor   timex.TimeOfDay
	interval time.Duration
	clock    timex.Clock
	log      logging.Logger

	mu      sync.Mutex
	stop    chan struct{}
	wg      sync.WaitGroup
	running bool
}

func NewScheduler(scanner *Scanner, anchor timex.TimeOfDay, interval time.Duration, clock timex.Clock, log logging.Logger) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{
		scanner:  scanner,
		anchor:   anchor,
		interval: interval,
		clock:    clock,
		log:      log.With("component", "scheduler"),
	}
}

// Start launches the periodic scan loop. Calling Start on a running
// scheduler is a no-op, so re-registration at startup is safe.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.wg.Add(1)
	go s.run(s.stop)

	s.log.Info(context.Background(), "scheduler started",
		"anchor", s.anchor.String(), "interval", s.interval.String())
}

// Stop halts the loop and waits for an in-flight scan to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info(context.Background(), "scheduler stopped")
}

// RunNow triggers one scan immediately, outside the periodic cadence.
func (s *Scheduler) RunNow(ctx context.Context) (Summary, error) {
	return s.scanner.Scan(ctx)
}

func (s *Scheduler) run(stop <-chan struct{}) {
	defer s.wg.Done()

	// Wait for the anchor first, so a process started at noon still scans
	// near the preferred time rather than immediately shifting the cadence.
	first := time.NewTimer(time.Until(s.nextAnchor(s.clock.Now())))
	defer first.Stop()

	select {
	case <-first.C:
	case <-stop:
		return
	}

	s.scan()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.scan()
		case <-stop:
			return
		}
	}
}

func (s *Scheduler) scan() {
	ctx := context.Background()
	if _, err := s.scanner.Scan(ctx); err != nil {
		s.log.Error(ctx, "scheduled scan failed", "error", err)
	}
}

// nextAnchor returns the first instant at or after now whose wall-clock time
// matches the anchor.
func (s *Scheduler) nextAnchor(now time.Time) time.Time {
	target := s.anchor.On(now)
	if now.Before(target) {
		return target
	}
	return target.AddDate(0, 0, 1)
}
