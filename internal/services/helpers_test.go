package services

import (
	"dailytrack/internal/structures"
	"dailytrack/internal/testutil"
	"time"
)

type fixture struct {
	engine  *Engine
	store   *testutil.MockStore
	clock   *testutil.StubClock
	logger  *testutil.MockLogger
	metrics *testutil.MockMetrics
	conf    *structures.Config
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		store:   testutil.NewMockStore(),
		clock:   testutil.NewStubClock(now),
		logger:  &testutil.MockLogger{},
		metrics: &testutil.MockMetrics{},
		conf: &structures.Config{
			Fasting:  structures.FastingConfig{TargetDuration: 16 * time.Hour, StartOfFast: "20:00"},
			Health:   structures.HealthConfig{WindowDays: 365, WeightPolicy: "latest", WeightUnit: "lb"},
			Activity: structures.ActivityConfig{StepGoal: 10000},
		},
	}
	f.engine = NewEngine(f.store, f.logger, f.metrics, f.clock)
	return f
}

// restart builds a fresh engine over the same store, as after a relaunch.
func (f *fixture) restart(now time.Time) *fixture {
	next := &fixture{
		store:   f.store,
		clock:   testutil.NewStubClock(now),
		logger:  &testutil.MockLogger{},
		metrics: &testutil.MockMetrics{},
		conf:    f.conf,
	}
	next.engine = NewEngine(next.store, next.logger, next.metrics, next.clock)
	return next
}

func at(value string) time.Time {
	t, err := time.Parse("2006-01-02T15:04", value)
	if err != nil {
		panic(err)
	}
	return t
}
