package schedule

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrUnknownJob is returned by RunNow for a name that was never registered.
var ErrUnknownJob = errors.New("schedule: unknown job")

// ErrJobBusy is returned by RunNow while the job is already running.
var ErrJobBusy = errors.New("schedule: job still running")

// parser accepts standard 5-field expressions and @descriptors.
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Scheduler runs jobs on their cron expressions. A job never runs in
// parallel with itself: a tick that finds the previous run still going is
// skipped.
type Scheduler struct {
	mu       sync.Mutex
	cron     *cron.Cron
	jobs     []Job
	locks    map[string]*sync.Mutex
	entries  map[string]cron.EntryID
	logger   *slog.Logger
	recorder Recorder
	location *time.Location
	cancel   context.CancelFunc
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRecorder reports each run to r.
func WithRecorder(r Recorder) Option {
	return func(s *Scheduler) { s.recorder = r }
}

// WithLocation evaluates schedules in loc instead of the local time zone.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) { s.location = loc }
}

// NewScheduler creates a scheduler. Jobs must be registered before Start().
func NewScheduler(logger *slog.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		locks:    make(map[string]*sync.Mutex),
		entries:  make(map[string]cron.EntryID),
		logger:   logger,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterJob adds a job. It fails on a duplicate name or an invalid
// schedule expression.
func (s *Scheduler) RegisterJob(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := j.Name()
	if _, exists := s.locks[name]; exists {
		return fmt.Errorf("schedule: duplicate job name %q", name)
	}
	if _, err := parser.Parse(j.Schedule()); err != nil {
		return fmt.Errorf("schedule: invalid schedule for job %q: %w", name, err)
	}

	s.locks[name] = &sync.Mutex{}
	s.jobs = append(s.jobs, j)
	return nil
}

// Jobs returns the registered jobs sorted by name.
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobs := slices.Clone(s.jobs)
	slices.SortFunc(jobs, func(a, b Job) int { return cmp.Compare(a.Name(), b.Name()) })
	return jobs
}

// Start begins executing registered jobs.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return errors.New("schedule: already started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.cron = cron.New(cron.WithParser(parser), cron.WithLocation(s.location))

	for _, j := range s.jobs {
		lock := s.locks[j.Name()]
		id, err := s.cron.AddFunc(j.Schedule(), func() {
			if !lock.TryLock() {
				s.logger.Warn("schedule: job still running, skipping tick", "job", j.Name())
				return
			}
			defer lock.Unlock()
			_ = s.run(ctx, j)
		})
		if err != nil {
			cancel()
			s.cron = nil
			clear(s.entries)
			return fmt.Errorf("schedule: invalid schedule for job %q: %w", j.Name(), err)
		}
		s.entries[j.Name()] = id
	}

	s.cron.Start()
	s.logger.Info("schedule: scheduler started", "jobs", len(s.jobs))
	return nil
}

// Next returns the next activation time of the named job, or the zero time
// when the scheduler is not running.
func (s *Scheduler) Next(name string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.entries[name]
	if !ok || s.cron == nil {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// RunNow runs the named job immediately, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	lock, ok := s.locks[name]
	var job Job
	for _, j := range s.jobs {
		if j.Name() == name {
			job = j
		}
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}

	if !lock.TryLock() {
		return fmt.Errorf("%w: %q", ErrJobBusy, name)
	}
	defer lock.Unlock()
	return s.run(ctx, job)
}

func (s *Scheduler) run(ctx context.Context, j Job) error {
	s.logger.Debug("schedule: job started", "job", j.Name())
	err := j.Run(ctx)
	if err != nil {
		s.logger.Error("schedule: job failed", "job", j.Name(), "error", err)
	} else {
		s.logger.Debug("schedule: job completed", "job", j.Name())
	}
	if s.recorder != nil {
		s.recorder.JobRan(j.Name(), err)
	}
	return err
}

// Stop gracefully shuts down the scheduler, waiting for in-flight jobs or
// until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	cancel := s.cancel
	s.cron = nil
	clear(s.entries)
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
		s.logger.Info("schedule: scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
