package scheduler

import (
	"context"
	"dailytrack/internal/health"
	"dailytrack/internal/models"
	"dailytrack/internal/services"
	"dailytrack/internal/storage"
	"dailytrack/internal/structures"
	"dailytrack/internal/testutil"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/roylee0704/gron"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	c       chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (f *fakeTimer) C() <-chan time.Time { return f.c }

func (f *fakeTimer) Stop() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return true
}

func (f *fakeTimer) isStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

type timerFactory struct {
	requests chan time.Duration
	timers   chan *fakeTimer
}

func newTimerFactory() *timerFactory {
	return &timerFactory{
		requests: make(chan time.Duration, 10),
		timers:   make(chan *fakeTimer, 10),
	}
}

func (tf *timerFactory) new(d time.Duration) timer {
	ft := &fakeTimer{c: make(chan time.Time, 1)}
	tf.requests <- d
	tf.timers <- ft
	return ft
}

func (tf *timerFactory) next(t *testing.T) (time.Duration, *fakeTimer) {
	t.Helper()
	select {
	case d := <-tf.requests:
		return d, <-tf.timers
	case <-time.After(2 * time.Second):
		t.Fatal("no timer scheduled")
		return 0, nil
	}
}

type cronEntry struct {
	schedule gron.Schedule
	fn       func()
}

type fakeCron struct {
	mu      sync.Mutex
	entries []cronEntry
	started bool
	stopped bool
}

func (c *fakeCron) AddFunc(s gron.Schedule, j func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, cronEntry{schedule: s, fn: j})
}

func (c *fakeCron) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = true
}

func (c *fakeCron) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
}

func (c *fakeCron) entry(t *testing.T, i int) cronEntry {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.Greater(t, len(c.entries), i, "cron entry %d not registered", i)
	return c.entries[i]
}

type mockFlusher struct {
	calls int
	err   error
}

func (m *mockFlusher) Flush(context.Context) error {
	m.calls++
	return m.err
}

type harness struct {
	sched    *Scheduler
	store    *testutil.MockStore
	clock    *testutil.StubClock
	logger   *testutil.MockLogger
	flusher  *mockFlusher
	client   *health.MemoryClient
	log      *services.DailyLogService
	fasting  *services.FastingService
	meds     *services.MedicationService
	activity *services.ActivityService
	timers   *timerFactory
	cron     *fakeCron
}

func newHarness(now time.Time, conf *structures.Config) *harness {
	h := &harness{
		store:   testutil.NewMockStore(),
		clock:   testutil.NewStubClock(now),
		logger:  &testutil.MockLogger{},
		flusher: &mockFlusher{},
		client:  health.NewMemoryClient(),
		timers:  newTimerFactory(),
		cron:    &fakeCron{},
	}
	engine := services.NewEngine(h.store, h.logger, &testutil.MockMetrics{}, h.clock)
	h.log = services.NewDailyLogService(engine)
	h.fasting = services.NewFastingService(engine, h.log, conf)
	h.meds = services.NewMedicationService(engine, testutil.NewStubIDGenerator())
	h.activity = services.NewActivityService(engine, h.log, h.client, conf)
	h.sched = newScheduler(conf, h.logger, h.clock, h.flusher, h.log, h.fasting, h.meds, h.activity)
	h.sched.newTimer = h.timers.new
	h.sched.newCron = func() cron { return h.cron }
	return h
}

func testConfig() *structures.Config {
	return &structures.Config{
		Fasting:  structures.FastingConfig{TargetDuration: 16 * time.Hour, StartOfFast: "20:00"},
		Health:   structures.HealthConfig{Driver: "memory", WindowDays: 30, WeightPolicy: "latest", WeightUnit: "lb"},
		Activity: structures.ActivityConfig{StepGoal: 10000},
	}
}

func at(value string) time.Time {
	t, err := time.Parse("2006-01-02T15:04:05", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestScheduler_MidnightRollover(t *testing.T) {
	h := newHarness(at("2024-01-02T23:59:00"), testConfig())
	require.NoError(t, h.sched.Restore())
	med, err := h.meds.Upsert(models.Medication{Name: "Iron", DoseCount: 1, ScheduledTimes: []models.TimeOfDay{{Hour: 8}}})
	require.NoError(t, err)
	_, err = h.meds.ToggleTaken(med.ID, 0)
	require.NoError(t, err)

	h.sched.Init()

	d, first := h.timers.next(t)
	assert.Equal(t, time.Minute, d)
	assert.True(t, h.sched.NextRollover().Equal(at("2024-01-03T00:00:00")))
	assert.Empty(t, h.timers.requests, "only one rollover timer may be pending")

	h.clock.Set(at("2024-01-03T00:00:00"))
	first.c <- h.clock.Now()

	d, second := h.timers.next(t)
	assert.Equal(t, 24*time.Hour, d)
	taken := h.meds.Taken()
	assert.Equal(t, models.CalendarDay("2024-01-03"), taken.Day)
	assert.Equal(t, []bool{false}, taken.Data[med.ID])

	h.sched.Stop()
	assert.True(t, second.isStopped())
}

func TestScheduler_EarlyFireReschedules(t *testing.T) {
	h := newHarness(at("2024-01-02T23:59:00"), testConfig())
	require.NoError(t, h.sched.Restore())
	h.sched.Init()
	defer h.sched.Stop()

	_, first := h.timers.next(t)
	h.clock.Set(at("2024-01-02T23:59:30"))
	first.c <- h.clock.Now()

	d, _ := h.timers.next(t)
	assert.Equal(t, 30*time.Second, d)
	assert.Equal(t, models.CalendarDay("2024-01-02"), h.meds.Taken().Day)
}

func TestScheduler_RegistersCronJobs(t *testing.T) {
	conf := testConfig()
	conf.Health.SyncInterval = 15 * time.Minute
	h := newHarness(at("2024-01-15T18:00:00"), conf)
	require.NoError(t, h.sched.Restore())

	h.sched.Init()
	base := at("2024-01-15T18:00:00")
	assert.True(t, h.cron.started)
	assert.Equal(t, base.Add(time.Second), h.cron.entry(t, 0).schedule.Next(base))
	assert.Equal(t, base.Add(15*time.Minute), h.cron.entry(t, 1).schedule.Next(base))

	h.sched.Stop()
	assert.True(t, h.cron.stopped)
}

func TestScheduler_TickUpdatesDisplay(t *testing.T) {
	h := newHarness(at("2024-01-02T10:00:00"), testConfig())
	require.NoError(t, h.sched.Restore())
	require.NoError(t, h.fasting.Start(at("2024-01-02T10:00:00")))

	h.sched.Init()
	defer h.sched.Stop()

	h.clock.Set(at("2024-01-02T11:30:00"))
	h.cron.entry(t, 0).fn()
	assert.Equal(t, "01:30:00", h.fasting.Current().Text)
}

func TestScheduler_NoJobRunsAfterStop(t *testing.T) {
	h := newHarness(at("2024-01-02T10:00:00"), testConfig())
	require.NoError(t, h.sched.Restore())
	require.NoError(t, h.fasting.Start(at("2024-01-02T10:00:00")))

	h.sched.Init()
	tick := h.cron.entry(t, 0).fn
	h.sched.Stop()
	before := h.fasting.Current().Text

	h.clock.Set(at("2024-01-02T12:00:00"))
	tick()
	assert.Equal(t, before, h.fasting.Current().Text)
	assert.NotEqual(t, "02:00:00", h.fasting.Current().Text)
}

func TestScheduler_PeriodicSync(t *testing.T) {
	conf := testConfig()
	conf.Health.SyncInterval = time.Minute
	h := newHarness(at("2024-01-15T18:00:00"), conf)
	h.client.AddSteps(
		models.Sample{Start: at("2024-01-15T08:00:00"), Value: 3000},
		models.Sample{Start: at("2024-01-15T09:00:00"), Value: 4500},
	)
	require.NoError(t, h.sched.Restore())

	h.sched.Init()
	defer h.sched.Stop()

	steps := func() float64 {
		rec, ok := h.log.Get("2024-01-15")
		if !ok || rec.Steps == nil {
			return 0
		}
		return *rec.Steps
	}
	assert.Eventually(t, func() bool { return steps() == 7500 }, 2*time.Second, 5*time.Millisecond)

	h.client.AddSteps(models.Sample{Start: at("2024-01-15T17:00:00"), Value: 1000})
	h.cron.entry(t, 1).fn()
	assert.Equal(t, 8500.0, steps())
}

func TestScheduler_SyncDisabled(t *testing.T) {
	conf := testConfig()
	conf.Health.SyncInterval = 0
	h := newHarness(at("2024-01-15T18:00:00"), conf)
	h.client.AddSteps(models.Sample{Start: at("2024-01-15T08:00:00"), Value: 3000})
	require.NoError(t, h.sched.Restore())

	h.sched.Init()
	h.timers.next(t)
	h.sched.Stop()

	assert.Len(t, h.cron.entries, 1)
	_, ok := h.log.Get("2024-01-15")
	assert.False(t, ok)
}

func TestScheduler_GronDrivesTick(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for a real one-second cron tick")
	}
	h := newHarness(at("2024-01-02T10:00:00"), testConfig())
	h.sched.newCron = newGronCron
	require.NoError(t, h.sched.Restore())
	require.NoError(t, h.fasting.Start(at("2024-01-02T10:00:00")))

	h.clock.Set(at("2024-01-02T10:00:42"))
	h.sched.Init()
	defer h.sched.Stop()

	assert.Eventually(t, func() bool {
		return h.fasting.Current().Text == "00:00:42"
	}, 3*time.Second, 20*time.Millisecond)
}

func TestScheduler_Restore(t *testing.T) {
	h := newHarness(at("2024-01-03T07:00:00"), testConfig())
	h.store.Seed(storage.KeyDailyLog, `{"2024-01-02":{"steps":4000}}`)
	h.store.Seed(storage.KeyFastSession, `{"startTimestamp":"2024-01-02T20:00:00Z","active":true}`)
	h.store.Seed(storage.KeyMedications, `[{"id":"a","name":"Iron","doseCount":1,"scheduledTimes":["08:00"]}]`)
	h.store.Seed(storage.KeyTakenTimes, `{"day":"2024-01-02","data":{"a":[true]}}`)

	require.NoError(t, h.sched.Restore())

	assert.Len(t, h.log.All(), 1)
	assert.True(t, h.fasting.Session().Active)
	assert.Equal(t, "11:00:00", h.fasting.Current().Text)
	assert.Equal(t, []bool{false}, h.meds.Taken().Data["a"])
}

func TestScheduler_Persist(t *testing.T) {
	h := newHarness(at("2024-01-03T07:00:00"), testConfig())
	require.NoError(t, h.sched.Persist())
	assert.Equal(t, 1, h.flusher.calls)

	h.flusher.err = errors.New("disk full")
	assert.EqualError(t, h.sched.Persist(), "disk full")
	assert.Equal(t, 1, h.logger.Count("error"))
}

func TestScheduler_StopWithoutInit(t *testing.T) {
	h := newHarness(at("2024-01-03T07:00:00"), testConfig())
	assert.NotPanics(t, h.sched.Stop)
}
