package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const sweepTimeout = time.Minute

// Sweeper flips lapsed premium subscriptions to expired.
type Sweeper interface {
	ExpireLapsed(ctx context.Context) (int64, error)
}

// Scheduler runs periodic maintenance jobs.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
}

// NewScheduler registers the subscription expiry sweep on spec, which is a
// standard cron expression or a descriptor such as "@hourly".
func NewScheduler(spec string, sweeper Sweeper) (*Scheduler, error) {
	c := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))
	s := &Scheduler{cron: c, sweeper: sweeper}
	if _, err := c.AddFunc(spec, s.sweep); err != nil {
		return nil, fmt.Errorf("schedule expiry sweep %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	n, err := s.sweeper.ExpireLapsed(ctx)
	if err != nil {
		log.WithError(err).Error("subscription expiry sweep failed")
		return
	}
	log.WithField("expired", n).Debug("subscription expiry sweep done")
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running sweep, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		log.Warn("scheduler stop timed out")
	}
}

// Entries reports how many jobs are scheduled.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
