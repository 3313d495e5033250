// Package scheduler wraps gocron for the application's background jobs.
package scheduler

import (
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler runs named interval jobs in UTC.
type Scheduler struct {
	inner gocron.Scheduler
}

func New() (*Scheduler, error) {
	inner, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}
	return &Scheduler{inner: inner}, nil
}

// AddInterval registers a job that runs every interval, starting one
// interval after Start.
func (s *Scheduler) AddInterval(name string, interval time.Duration, job func()) error {
	_, err := s.inner.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(job),
		gocron.WithName(name),
	)
	return err
}

func (s *Scheduler) Start() {
	s.inner.Start()
}

// Stop shuts the scheduler down, waiting for running jobs to finish.
func (s *Scheduler) Stop() error {
	return s.inner.Shutdown()
}
