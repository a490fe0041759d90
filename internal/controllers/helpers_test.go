package controllers

import (
	"dailytrack/internal/health"
	"dailytrack/internal/services"
	"dailytrack/internal/structures"
	"dailytrack/internal/testutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	ac       *ApiController
	hc       *HealthController
	conf     *structures.Config
	logger   *testutil.MockLogger
	clock    *testutil.StubClock
	store    *testutil.MockStore
	cache    *testutil.MockCache
	client   *health.MemoryClient
	engine   *services.Engine
	log      *services.DailyLogService
	fasting  *services.FastingService
	meds     *services.MedicationService
	activity *services.ActivityService
}

func newTestEnv(now time.Time) *testEnv {
	conf := &structures.Config{
		Fasting:  structures.FastingConfig{TargetDuration: 16 * time.Hour, StartOfFast: "20:00"},
		Health:   structures.HealthConfig{Driver: "memory", WindowDays: 30, WeightPolicy: "latest", WeightUnit: "lb"},
		Activity: structures.ActivityConfig{StepGoal: 10000},
	}
	env := &testEnv{
		conf:   conf,
		logger: &testutil.MockLogger{},
		clock:  testutil.NewStubClock(now),
		store:  testutil.NewMockStore(),
		cache:  testutil.NewMockCache(),
		client: health.NewMemoryClient(),
	}
	logger := env.logger
	env.engine = services.NewEngine(env.store, logger, &testutil.MockMetrics{}, env.clock)
	env.log = services.NewDailyLogService(env.engine)
	env.fasting = services.NewFastingService(env.engine, env.log, conf)
	env.meds = services.NewMedicationService(env.engine, testutil.NewStubIDGenerator())
	env.activity = services.NewActivityService(env.engine, env.log, env.client, conf)
	env.ac = NewApiController(logger, env.cache, env.engine, env.log, env.fasting, env.meds, env.activity, conf)
	env.hc = NewHealthController(env.engine, env.log, env.fasting)
	return env
}

func do(handler http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}

func at(value string) time.Time {
	t, err := time.Parse("2006-01-02T15:04", value)
	if err != nil {
		panic(err)
	}
	return t
}
