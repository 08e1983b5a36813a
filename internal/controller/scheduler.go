package controller

import (
	"context"
	"errors"
	"time"

	"go.uber.org/atomic"

	"github.com/oshokin/alarm-node/internal/logger"
)

// DefaultTickInterval is the scheduler delay between ticks.
const DefaultTickInterval = 200 * time.Millisecond

// ErrAlreadyRunning is returned when a scheduler is started twice.
var ErrAlreadyRunning = errors.New("scheduler is already running")

// Ticker is evaluated by the scheduler. Tick reports whether it already
// consumed time, in which case no delay follows.
type Ticker interface {
	Tick(ctx context.Context) bool
}

// Scheduler is a free running poller: tick, then sleep, forever.
// There is no drift correction.
type Scheduler struct {
	ticker   Ticker
	interval time.Duration
	sleeper  Sleeper
	// started guards against a second Run.
	started atomic.Bool
}

// NewScheduler creates a scheduler for t. A non-positive interval means DefaultTickInterval,
// a nil sleeper means TimerSleeper.
func NewScheduler(t Ticker, interval time.Duration, sleeper Sleeper) *Scheduler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	if sleeper == nil {
		sleeper = TimerSleeper{}
	}

	return &Scheduler{
		ticker:   t,
		interval: interval,
		sleeper:  sleeper,
	}
}

// Run loops until ctx is done. It can be started only once.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	ctx = logger.WithName(ctx, "scheduler")
	logger.InfoKV(ctx, "Scheduler started", "interval", s.interval.String())

	for ctx.Err() == nil {
		if s.ticker.Tick(ctx) {
			continue
		}

		if err := s.sleeper.Sleep(ctx, s.interval); err != nil {
			break
		}
	}

	logger.Info(ctx, "Scheduler stopped")

	return nil
}
