package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"FoodExpiryTracker/internal/apperr"
	"FoodExpiryTracker/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// Pass triggers, as recorded on reports.
const (
	TriggerSchedule = "schedule"
	TriggerStartup  = "startup"
	TriggerManual   = "manual"
	TriggerOneShot  = "run-at"
)

var (
	ErrPassInProgress   = fmt.Errorf("%w: expiry check already running", apperr.ErrConflict)
	ErrSchedulerStopped = errors.New("scheduler stopped")
)

type passRunner interface {
	RunPass(ctx context.Context, trigger string) (*Report, error)
}

// Status is a snapshot of the scheduler.
type Status struct {
	State       State       `json:"state"`
	Schedule    string      `json:"schedule"`
	Timezone    string      `json:"timezone"`
	NextRun     *time.Time  `json:"nextRun,omitempty"`
	PendingRuns []time.Time `json:"pendingRuns"`
	LastReport  *Report     `json:"lastReport,omitempty"`
	LastError   string      `json:"lastError,omitempty"`
}

// Scheduler fires notification passes from the daily cron entry, once at start,
// on demand, and at one-shot times. At most one pass runs at any moment.
type Scheduler struct {
	runner       passRunner
	cron         *cron.Cron
	entryID      cron.EntryID
	spec         string
	loc          *time.Location
	runOnStartup bool
	now          func() time.Time
	logger       *zap.Logger

	pass sync.Mutex

	mu         sync.Mutex
	state      State
	lastReport *Report
	lastErr    string
	timers     map[*time.Timer]time.Time
	started    bool
	stopped    bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(service *Service, cfg *config.NotifyConfig, logger *zap.Logger) (*Scheduler, error) {
	return newScheduler(service, cfg, logger)
}

func newScheduler(runner passRunner, cfg *config.NotifyConfig, logger *zap.Logger) (*Scheduler, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		runner:       runner,
		cron:         cron.New(cron.WithLocation(loc)),
		spec:         cfg.CronSpec(),
		loc:          loc,
		runOnStartup: cfg.RunOnStartup,
		now:          time.Now,
		logger:       logger,
		state:        StateIdle,
		timers:       make(map[*time.Timer]time.Time),
		ctx:          ctx,
		cancel:       cancel,
	}

	id, err := s.cron.AddFunc(s.spec, func() { s.runBackground(TriggerSchedule) })
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: invalid daily schedule %q: %w", apperr.ErrConfiguration, s.spec, err)
	}
	s.entryID = id
	return s, nil
}

// Start starts the cron loop and, when configured, one pass in the background.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true
	s.cron.Start()
	s.logger.Info("expiry scheduler started", zap.String("schedule", s.spec), zap.String("timezone", s.loc.String()))

	if s.runOnStartup {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runBackground(TriggerStartup)
		}()
	}
}

// Stop halts the cron loop, cancels pending one-shot runs and waits for the
// running pass, or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	for timer := range s.timers {
		if timer.Stop() {
			s.wg.Done()
		}
		delete(s.timers, timer)
	}
	s.mu.Unlock()

	s.cancel()
	cronDone := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		s.pass.Lock()
		s.pass.Unlock()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("expiry scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow runs a pass on the caller's goroutine.
func (s *Scheduler) RunNow(ctx context.Context) (*Report, error) {
	return s.run(ctx, TriggerManual)
}

// RunAt schedules a single pass at t, which must be in the future.
func (s *Scheduler) RunAt(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrSchedulerStopped
	}
	delay := t.Sub(s.now())
	if delay <= 0 {
		return apperr.NewValidationError("run_at", "must be in the future")
	}

	s.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		defer s.wg.Done()
		s.mu.Lock()
		delete(s.timers, timer)
		stopped := s.stopped
		s.mu.Unlock()
		if stopped {
			return
		}
		s.runBackground(TriggerOneShot)
	})
	s.timers[timer] = t
	s.logger.Info("one-shot expiry check scheduled", zap.Time("run_at", t))
	return nil
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	st := Status{
		State:       s.state,
		Schedule:    s.spec,
		Timezone:    s.loc.String(),
		PendingRuns: make([]time.Time, 0, len(s.timers)),
		LastReport:  s.lastReport,
		LastError:   s.lastErr,
	}
	for _, at := range s.timers {
		st.PendingRuns = append(st.PendingRuns, at)
	}
	started := s.started && !s.stopped
	s.mu.Unlock()

	if started {
		if next := s.cron.Entry(s.entryID).Next; !next.IsZero() {
			next = next.In(s.loc)
			st.NextRun = &next
		}
	}
	return st
}

func (s *Scheduler) runBackground(trigger string) {
	if _, err := s.run(s.ctx, trigger); err != nil {
		if errors.Is(err, ErrPassInProgress) {
			s.logger.Warn("expiry check skipped, previous pass still running", zap.String("trigger", trigger))
			return
		}
		s.logger.Error("expiry check failed", zap.String("trigger", trigger), zap.Error(err))
	}
}

// run is the only path into a pass. The state returns to idle however the pass ends.
func (s *Scheduler) run(ctx context.Context, trigger string) (report *Report, err error) {
	if !s.pass.TryLock() {
		return nil, ErrPassInProgress
	}
	defer s.pass.Unlock()

	s.setState(StateRunning)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("expiry check panicked", zap.String("trigger", trigger), zap.Any("panic", r))
			report, err = nil, fmt.Errorf("expiry check panicked: %v", r)
		}
		s.finish(report, err)
	}()

	return s.runner.RunPass(ctx, trigger)
}

func (s *Scheduler) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Scheduler) finish(report *Report, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	if err != nil {
		s.lastErr = err.Error()
		return
	}
	s.lastErr = ""
	s.lastReport = report
}

// RegisterScheduler binds the scheduler to the application lifecycle.
func RegisterScheduler(lc fx.Lifecycle, s *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.Start()
			return nil
		},
		OnStop: s.Stop,
	})
}
