// Package scheduler runs cancellable recurring jobs on a cron engine.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler manages recurring tasks.
type Scheduler struct {
	Cron *cron.Cron
	log  zerolog.Logger
}

// NewScheduler creates a scheduler with seconds precision. An entry that is
// still running when its next tick fires skips that tick.
func NewScheduler(log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "scheduler").Logger()
	cl := cronLogger{log: log}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log: log,
	}
}

// Every runs job every interval until the returned cancel is called.
// Cancel is safe to call more than once.
func (s *Scheduler) Every(interval time.Duration, job func()) (cancel func(), err error) {
	if interval < time.Second {
		return nil, fmt.Errorf("interval %s: must be at least 1s", interval)
	}
	id, err := s.Cron.AddJob("@every "+interval.String(), cron.FuncJob(job))
	if err != nil {
		return nil, fmt.Errorf("register recurring job: %w", err)
	}
	s.log.Debug().Int("entry", int(id)).Dur("interval", interval).Msg("job registered")

	var once sync.Once
	return func() {
		once.Do(func() {
			s.Cron.Remove(id)
			s.log.Debug().Int("entry", int(id)).Msg("job removed")
		})
	}, nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// cronLogger routes cron's own logging to zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
