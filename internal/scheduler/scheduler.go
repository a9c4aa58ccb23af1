// Package scheduler runs background maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ErrUnknownJob is returned by RunNow for a name that was never registered
var ErrUnknownJob = errors.New("unknown job")

// DefaultJobTimeout bounds a single run when AddJob is given no timeout
const DefaultJobTimeout = 5 * time.Minute

// Job represents a scheduled job. Run must return once ctx is done.
type Job interface {
	Run(ctx context.Context) error
	Name() string
}

// JobStatus is a snapshot of one registered job
type JobStatus struct {
	Name         string     `json:"name"`
	Schedule     string     `json:"schedule"`
	Runs         int        `json:"runs"`
	Failures     int        `json:"failures"`
	Running      bool       `json:"running"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastDuration string     `json:"last_duration,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
	NextRun      *time.Time `json:"next_run,omitempty"`
}

type registeredJob struct {
	job      Job
	schedule string
	timeout  time.Duration
	entry    cron.EntryID

	// guarded by Scheduler.mu
	runs         int
	failures     int
	lastRun      time.Time
	lastDuration time.Duration
	lastErr      error

	// held for the whole run so scheduled and manual runs never overlap
	running sync.Mutex
	active  bool
}

// Scheduler manages background jobs
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	log    zerolog.Logger

	mu   sync.Mutex
	jobs map[string]*registeredJob
}

// New creates a new scheduler
func New(log zerolog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		ctx:    ctx,
		cancel: cancel,
		log:    log.With().Str("component", "scheduler").Logger(),
		jobs:   make(map[string]*registeredJob),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", s.Entries()).Msg("Scheduler started")
}

// Stop cancels running jobs and waits for them to return
func (s *Scheduler) Stop() {
	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a job with a cron schedule. Each run gets its own
// context bounded by timeout (DefaultJobTimeout when zero) and cancelled
// by Stop. A run still in progress when the next tick fires is skipped.
// Schedule examples:
//   - "0 */5 * * * *"      - Every 5 minutes
//   - "@hourly"            - Every hour
//   - "@every 10m"         - Every 10 minutes
func (s *Scheduler) AddJob(schedule string, job Job, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}
	rj := &registeredJob{job: job, schedule: schedule, timeout: timeout}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.Name()]; exists {
		return fmt.Errorf("job %s already registered", job.Name())
	}

	id, err := s.cron.AddFunc(schedule, func() {
		if !rj.running.TryLock() {
			s.log.Warn().Str("job", job.Name()).Msg("Previous run still in progress, skipping")
			return
		}
		defer rj.running.Unlock()
		_ = s.execute(s.ctx, rj)
	})
	if err != nil {
		return err
	}
	rj.entry = id
	s.jobs[job.Name()] = rj

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Dur("timeout", timeout).
		Msg("Job registered")

	return nil
}

// Entries returns the number of registered jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// RunNow executes a registered job immediately, outside its schedule,
// waiting for any scheduled run of it to finish first.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	rj, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return ErrUnknownJob
	}

	s.log.Info().Str("job", name).Msg("Running job immediately")

	rj.running.Lock()
	defer rj.running.Unlock()
	return s.execute(ctx, rj)
}

// Status returns a snapshot of every registered job ordered by name
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]JobStatus, 0, len(s.jobs))
	for name, rj := range s.jobs {
		status := JobStatus{
			Name:     name,
			Schedule: rj.schedule,
			Runs:     rj.runs,
			Failures: rj.failures,
			Running:  rj.active,
		}
		if !rj.lastRun.IsZero() {
			last := rj.lastRun
			status.LastRun = &last
			status.LastDuration = rj.lastDuration.String()
		}
		if rj.lastErr != nil {
			status.LastError = rj.lastErr.Error()
		}
		if next := s.cron.Entry(rj.entry).Next; !next.IsZero() {
			status.NextRun = &next
		}
		statuses = append(statuses, status)
	}

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}

// execute runs rj once and records the outcome. Callers hold rj.running.
func (s *Scheduler) execute(parent context.Context, rj *registeredJob) error {
	name := rj.job.Name()

	ctx, cancel := context.WithTimeout(parent, rj.timeout)
	defer cancel()

	s.mu.Lock()
	rj.active = true
	s.mu.Unlock()

	s.log.Debug().Str("job", name).Msg("Running job")
	start := time.Now()
	err := rj.job.Run(ctx)
	elapsed := time.Since(start)

	s.mu.Lock()
	rj.active = false
	rj.runs++
	rj.lastRun = start
	rj.lastDuration = elapsed
	rj.lastErr = err
	if err != nil {
		rj.failures++
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Error().
			Err(err).
			Str("job", name).
			Dur("duration", elapsed).
			Msg("Job failed")
	} else {
		s.log.Debug().Str("job", name).Dur("duration", elapsed).Msg("Job completed")
	}

	return err
}
