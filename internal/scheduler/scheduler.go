// Package scheduler triggers catalog maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Job is the work run on every tick of a schedule.
type Job func(ctx context.Context) error

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule checks a five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// NextRunTime returns when schedule fires next after from.
func NextRunTime(schedule string, from time.Time) (time.Time, error) {
	s, err := parser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return s.Next(from), nil
}

type entry struct {
	schedule string
	job      Job
}

// Scheduler runs named jobs. Jobs are added before Start; a job whose
// schedule is empty is kept for RunNow but never fires on its own.
type Scheduler struct {
	cron *cron.Cron
	jobs map[string]entry

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithParser(parser)),
		jobs: make(map[string]entry),
	}
}

// Add registers job under name. An invalid schedule is rejected up front so
// a typo in the environment fails at startup, not at 3am.
func (s *Scheduler) Add(name, schedule string, job Job) error {
	if schedule != "" {
		if err := ValidateCronSchedule(schedule); err != nil {
			return fmt.Errorf("invalid cron schedule %q for %s: %w", schedule, name, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already scheduled", name)
	}
	s.jobs[name] = entry{schedule: schedule, job: job}
	return nil
}

// Start begins firing the scheduled jobs. Cancelling ctx stops the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	for name, e := range s.jobs {
		if e.schedule == "" {
			log.Info().Str("job", name).Msg("Scheduler: job disabled")
			continue
		}
		if _, err := s.cron.AddFunc(e.schedule, s.runner(name, e.job)); err != nil {
			s.cancel()
			return fmt.Errorf("schedule %s: %w", name, err)
		}
		next, _ := NextRunTime(e.schedule, time.Now())
		log.Info().
			Str("job", name).
			Str("schedule", e.schedule).
			Time("next_run", next).
			Msg("Scheduler: job scheduled")
	}

	s.cron.Start()
	s.running = true

	go func(ctx context.Context) {
		<-ctx.Done()
		s.Stop()
	}(s.ctx)

	return nil
}

// Stop waits for running jobs and stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	<-s.cron.Stop().Done()
	s.running = false
	s.cancel()

	log.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunNow triggers a job outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	e, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %s", name)
	}
	return e.job(ctx)
}

func (s *Scheduler) runner(name string, job Job) func() {
	return func() {
		start := time.Now()
		if err := job(s.ctx); err != nil {
			log.Error().Err(err).Str("job", name).Msg("Scheduler: job failed")
			return
		}
		log.Debug().Str("job", name).Dur("took", time.Since(start)).Msg("Scheduler: job finished")
	}
}
