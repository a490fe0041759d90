package scheduler

import (
	"context"
	"dailytrack/internal/providers"
	"dailytrack/internal/scheduler/interfaces"
	"dailytrack/internal/services"
	"dailytrack/internal/structures"
	"sync"
	"time"

	"github.com/roylee0704/gron"
)

// Flusher drains queued writes.
type Flusher interface {
	Flush(ctx context.Context) error
}

type timer interface {
	C() <-chan time.Time
	Stop() bool
}

type realTimer struct {
	t *time.Timer
}

func (r realTimer) C() <-chan time.Time { return r.t.C }
func (r realTimer) Stop() bool          { return r.t.Stop() }

func newRealTimer(d time.Duration) timer {
	return realTimer{t: time.NewTimer(d)}
}

// cron is the part of gron.Cron the scheduler drives.
type cron interface {
	AddFunc(s gron.Schedule, j func())
	Start()
	Stop()
}

func newGronCron() cron {
	return gron.New()
}

// Scheduler drives the recurring work of the engine. The one-second timer
// display and periodic reconciliation run on a gron.Cron; the midnight
// medication rollover runs on its own re-armed timer.
type Scheduler struct {
	config     *structures.Config
	logger     providers.Logger
	clock      services.Clock
	flusher    Flusher
	dailyLog   services.DailyLogServiceInterface
	fasting    services.FastingServiceInterface
	medication services.MedicationServiceInterface
	activity   services.ActivityServiceInterface

	tickInterval time.Duration
	newTimer     func(d time.Duration) timer
	newCron      func() cron

	cron    cron
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	opsMu   sync.Mutex
	jobsMu  sync.Mutex
	stopped bool

	rolloverMu   sync.Mutex
	nextRollover time.Time
}

func (s *Scheduler) Init() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.jobsMu.Lock()
	s.stopped = false
	s.jobsMu.Unlock()

	s.cron = s.newCron()
	s.cron.AddFunc(gron.Every(s.tickInterval), s.job(func() {
		s.fasting.Tick(s.clock.Now())
	}))

	if interval := s.config.Health.SyncInterval; interval > 0 && s.config.Health.Driver != "none" {
		syncJob := s.job(func() { s.reconcile(ctx) })
		s.cron.AddFunc(gron.Every(interval), syncJob)
		go syncJob()
	}
	s.cron.Start()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runMidnight(ctx)
	}()
}

// job wraps fn so Stop waits for runs in flight and no run starts after it.
func (s *Scheduler) job(fn func()) func() {
	return func() {
		s.jobsMu.Lock()
		if s.stopped {
			s.jobsMu.Unlock()
			return
		}
		s.wg.Add(1)
		s.jobsMu.Unlock()

		defer s.wg.Done()
		fn()
	}
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	s.jobsMu.Lock()
	s.stopped = true
	s.jobsMu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// runMidnight keeps exactly one timer pending for the next local midnight
// and schedules the following one after each fire.
func (s *Scheduler) runMidnight(ctx context.Context) {
	for {
		now := s.clock.Now()
		next := s.medication.NextMidnight(now)
		s.setNextRollover(next)

		t := s.newTimer(next.Sub(now))
		s.logger.Debugf(providers.TypeScheduler, "Next rollover at %s", next.Format(time.RFC3339))

		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C():
			if s.medication.Rollover(s.clock.Now()) {
				s.logger.Infof(providers.TypeScheduler, "Medication doses reset for a new day")
			}
		}
	}
}

func (s *Scheduler) reconcile(ctx context.Context) {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	result := s.activity.Reconcile(ctx)
	s.logger.Infof(providers.TypeScheduler, "Reconciled health data: %d step days, %d weight days changed",
		result.StepsChanged, result.WeightChanged)
}

func (s *Scheduler) setNextRollover(t time.Time) {
	s.rolloverMu.Lock()
	defer s.rolloverMu.Unlock()
	s.nextRollover = t
}

// NextRollover is when the pending midnight timer fires.
func (s *Scheduler) NextRollover() time.Time {
	s.rolloverMu.Lock()
	defer s.rolloverMu.Unlock()
	return s.nextRollover
}

// Restore hydrates every service from storage. Unreadable state is logged by
// the services and replaced with empty state, so Restore does not fail.
func (s *Scheduler) Restore() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	ctx := context.Background()
	now := s.clock.Now()

	days := s.dailyLog.Load(ctx)
	session := s.fasting.Load(ctx)
	s.medication.Load(ctx, now)
	entries := s.activity.Load(ctx)
	s.fasting.Tick(now)

	s.logger.Infof(providers.TypeApp, "Restored %d days, %d weight entries, fasting=%t", len(days), len(entries), session.Active)
	return nil
}

// Persist waits for background weight saves and flushes queued writes.
func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Flushing state to storage...")
	s.activity.Drain()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.flusher.Flush(ctx); err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
		return err
	}
	return nil
}

func NewScheduler(
	config *structures.Config,
	logger providers.Logger,
	clock services.Clock,
	flusher Flusher,
	dailyLog services.DailyLogServiceInterface,
	fasting services.FastingServiceInterface,
	medication services.MedicationServiceInterface,
	activity services.ActivityServiceInterface,
) interfaces.SchedulerInterface {
	return newScheduler(config, logger, clock, flusher, dailyLog, fasting, medication, activity)
}

func newScheduler(
	config *structures.Config,
	logger providers.Logger,
	clock services.Clock,
	flusher Flusher,
	dailyLog services.DailyLogServiceInterface,
	fasting services.FastingServiceInterface,
	medication services.MedicationServiceInterface,
	activity services.ActivityServiceInterface,
) *Scheduler {
	return &Scheduler{
		config:       config,
		logger:       logger,
		clock:        clock,
		flusher:      flusher,
		dailyLog:     dailyLog,
		fasting:      fasting,
		medication:   medication,
		activity:     activity,
		tickInterval: time.Second,
		newTimer:     newRealTimer,
		newCron:      newGronCron,
	}
}
