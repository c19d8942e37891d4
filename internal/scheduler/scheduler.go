// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// jobTimeout bounds a single job run.
const jobTimeout = 5 * time.Minute

// Job represents a scheduled job.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// JobFunc adapts a plain function to the Job interface.
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

func (j JobFunc) Name() string { return j.JobName }

func (j JobFunc) Run(ctx context.Context) error { return j.Fn(ctx) }

// Scheduler manages background jobs.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New creates a new scheduler.
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// AddJob registers a job with a cron schedule.
// Schedule examples:
//   - "*/5 * * * *"     - Every 5 minutes
//   - "@hourly"         - Every hour
//   - "0 18 * * MON-FRI" - 6 PM weekdays
//   - "@every 30s"      - Every 30 seconds
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.log.Debug().Str("job", job.Name()).Msg("Running job")

		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if err := job.Run(ctx); err != nil {
			s.log.Error().
				Err(err).
				Str("job", job.Name()).
				Msg("Job failed")
		} else {
			s.log.Debug().Str("job", job.Name()).Msg("Job completed")
		}
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}
