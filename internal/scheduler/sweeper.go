// Package scheduler runs periodic housekeeping on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweepable drops whatever has been idle as of now and reports how many
// entries it removed. *authstate.Registry and *middleware.RateLimiter
// satisfy it.
type Sweepable interface {
	Sweep(now time.Time) int
}

type target struct {
	name string
	s    Sweepable
}

type Sweeper struct {
	schedule cron.Schedule
	targets  []target
	logger   *slog.Logger
	now      func() time.Time
}

func NewSweeper(spec string, logger *slog.Logger) (*Sweeper, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse sweep schedule %q: %w", spec, err)
	}
	return &Sweeper{
		schedule: sched,
		logger:   logger.With("component", "sweeper"),
		now:      time.Now,
	}, nil
}

// Add registers s under name. Call before Start.
func (sw *Sweeper) Add(name string, s Sweepable) {
	sw.targets = append(sw.targets, target{name: name, s: s})
}

// Start sweeps every target on each schedule tick until ctx is done.
func (sw *Sweeper) Start(ctx context.Context) {
	sw.logger.Info("sweeper started", "targets", len(sw.targets))

	for {
		timer := time.NewTimer(sw.next().Sub(sw.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			sw.logger.Info("sweeper shut down")
			return
		case <-timer.C:
			sw.RunOnce(sw.now())
		}
	}
}

// RunOnce sweeps every target as of now.
func (sw *Sweeper) RunOnce(now time.Time) {
	for _, t := range sw.targets {
		if n := t.s.Sweep(now); n > 0 {
			sw.logger.Debug("swept", "target", t.name, "count", n)
		}
	}
}

// next returns the next future tick, skipping any missed ones.
func (sw *Sweeper) next() time.Time {
	now := sw.now()
	next := sw.schedule.Next(now)
	for !next.After(now) {
		next = sw.schedule.Next(next)
	}
	return next
}
