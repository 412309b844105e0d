package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/projecthub-dev/projecthub-backend/internal/logging"
)

// Purger hard-deletes projects soft-deleted before cutoff. Tasks and
// comments go with them.
type Purger interface {
	PurgeDeleted(ctx context.Context, cutoff time.Time) (int64, error)
}

type Scheduler struct {
	purger    Purger
	spec      string
	retention time.Duration
	timeout   time.Duration
	now       func() time.Time
	cron      *cron.Cron
}

// NewScheduler runs the purge on spec (six fields, seconds first) for
// projects deleted more than retentionDays ago.
func NewScheduler(purger Purger, spec string, retentionDays int) *Scheduler {
	return &Scheduler{
		purger:    purger,
		spec:      spec,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		timeout:   5 * time.Minute,
		now:       time.Now,
		cron:      cron.New(cron.WithSeconds()),
	}
}

// Start registers the purge job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if _, err := s.RunOnce(ctx); err != nil {
			logging.New(ctx).Error("maintenance.purge", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to create cron job: %w", err)
	}

	logging.New(context.Background()).Infof("maintenance.start", "schedule=%q retention=%s", s.spec, s.retention)
	s.cron.Start()
	return nil
}

// Stop waits for a running purge to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// RunOnce purges everything past retention and reports how many projects
// were removed.
func (s *Scheduler) RunOnce(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	n, err := s.purger.PurgeDeleted(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge deleted projects: %w", err)
	}
	logging.New(ctx).Infof("maintenance.purge", "removed=%d cutoff=%s", n, cutoff.Format(time.RFC3339))
	return n, nil
}
