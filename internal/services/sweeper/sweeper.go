// Package sweeper periodically applies the registry's expiry and retention
// settings and announces expired challenges.
package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/hashicorp/go-hclog"

	"pickleball/internal/events"
	"pickleball/internal/game/match"
)

// Sweepable is the part of the registry the sweeper needs.
type Sweepable interface {
	Sweep() match.SweepResult
}

type Sweeper struct {
	registry  Sweepable
	publisher events.Publisher
	interval  time.Duration
	log       hclog.Logger
	sched     gocron.Scheduler
}

func New(registry Sweepable, publisher events.Publisher, interval time.Duration, logger hclog.Logger) *Sweeper {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Sweeper{
		registry:  registry,
		publisher: publisher,
		interval:  interval,
		log:       logger,
	}
}

// Start schedules the sweep job. It runs on a singleton job so a slow
// publisher never stacks sweeps on top of each other.
func (s *Sweeper) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.RunOnce),
		gocron.WithName("registry-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}
	sched.Start()
	s.sched = sched
	s.log.Info("sweeper started", "interval", s.interval)
	return nil
}

// RunOnce performs a single sweep and publishes one event per expired challenge.
func (s *Sweeper) RunOnce() {
	res := s.registry.Sweep()
	if len(res.Expired) == 0 && res.Evicted == 0 {
		return
	}
	s.log.Debug("sweep finished", "expired", len(res.Expired), "evicted", res.Evicted)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, snap := range res.Expired {
		if err := s.publisher.Publish(ctx, events.Expired(snap)); err != nil {
			s.log.Warn("failed to publish expiry", "match", snap.ID, "error", err)
		}
	}
}

func (s *Sweeper) Stop() error {
	if s.sched == nil {
		return nil
	}
	return s.sched.Shutdown()
}
