package reportfile

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Refresher is what the scheduler reloads.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler reloads a report source on a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	source    Refresher
	interval  time.Duration
	logger    *slog.Logger
}

// NewScheduler creates a Scheduler; call Start to begin.
func NewScheduler(source Refresher, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		source:    source,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the refresh job. The first run happens one interval from
// now; callers load the initial snapshot themselves.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).WaitForSchedule().SingletonMode().Do(s.refresh)
	if err != nil {
		return err
	}
	s.scheduler.StartAsync()
	s.logger.Info("report refresh scheduled", "interval", s.interval)
	return nil
}

// Stop cancels future refreshes.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.source.Refresh(ctx); err != nil {
		s.logger.Error("report refresh failed, keeping previous snapshot", "error", err)
	}
}
