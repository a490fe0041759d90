package internal

import (
	"context"
	"dailytrack/internal/controllers"
	"dailytrack/internal/health"
	"dailytrack/internal/models"
	"dailytrack/internal/providers"
	"dailytrack/internal/scheduler"
	"dailytrack/internal/services"
	"dailytrack/internal/storage"
	"dailytrack/internal/structures"
	"dailytrack/internal/testutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type appEnv struct {
	app     *App
	gateway *testutil.MockGateway
	client  *health.MemoryClient
}

func newAppEnv(t *testing.T) *appEnv {
	t.Helper()

	conf := &structures.Config{
		AppName:   "DailyTrack",
		WebServer: structures.Server{Host: "127.0.0.1", Port: 8090},
		Fasting:   structures.FastingConfig{TargetDuration: 16 * time.Hour, StartOfFast: "20:00"},
		Health:    structures.HealthConfig{Driver: "memory", WindowDays: 30, WeightPolicy: "latest", WeightUnit: "lb"},
		Activity:  structures.ActivityConfig{StepGoal: 10000},
		Cors:      structures.CorsConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
	env := &appEnv{
		gateway: testutil.NewMockGateway(),
		client:  health.NewMemoryClient(),
	}

	logger := &testutil.MockLogger{}
	metrics := providers.NewMetricsProvider(conf)
	writer := storage.NewWriterFromConfig(conf, env.gateway, logger, metrics)
	clock := testutil.NewStubClock(time.Date(2024, 1, 2, 9, 0, 0, 0, time.Local))

	engine := services.NewEngine(writer, logger, metrics, clock)
	log := services.NewDailyLogService(engine)
	fasting := services.NewFastingService(engine, log, conf)
	meds := services.NewMedicationService(engine, testutil.NewStubIDGenerator())
	activity := services.NewActivityService(engine, log, env.client, conf)

	api := controllers.NewApiController(logger, testutil.NewMockCache(), engine, log, fasting, meds, activity, conf)
	hc := controllers.NewHealthController(engine, log, fasting)
	sched := scheduler.NewScheduler(conf, logger, clock, engine, log, fasting, meds, activity)

	app, err := NewApp(api, hc, sched, activity, writer, conf, logger, InitRoutes(api), metrics)
	require.NoError(t, err)
	env.app = app
	return env
}

func (e *appEnv) serve(method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	e.app.WebServer.Handler.ServeHTTP(rr, req)
	return rr
}

func TestNewApp_ServesHealthAndAPI(t *testing.T) {
	env := newAppEnv(t)
	defer env.app.Close()

	assert.Equal(t, "127.0.0.1:8090", env.app.WebServer.Addr)

	rr := env.serve(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)

	rr = env.serve(http.MethodGet, "/today", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.serve(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestNewApp_AppliesCors(t *testing.T) {
	env := newAppEnv(t)
	defer env.app.Close()

	rr := env.serve(http.MethodGet, "/today", "", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))

	rr = env.serve(http.MethodGet, "/today", "", map[string]string{"Origin": "http://evil.example"})
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestApp_CloseFlushesWrites(t *testing.T) {
	env := newAppEnv(t)

	rr := env.serve(http.MethodPost, "/liquid", `{"kind":"water","oz":8}`, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	require.NoError(t, env.app.Close())

	raw, ok := env.gateway.Value(storage.KeyDailyLog)
	require.True(t, ok)
	assert.Contains(t, raw, `"waterOz":8`)

	// Closing twice is harmless.
	assert.NoError(t, env.app.Close())
}

func TestApp_SyncOnce(t *testing.T) {
	env := newAppEnv(t)
	defer env.app.Close()

	day := time.Date(2024, 1, 2, 7, 0, 0, 0, time.Local)
	env.client.AddSteps(
		models.Sample{Start: day, Value: 3000},
		models.Sample{Start: day.Add(time.Hour), Value: 4500},
	)

	result := env.app.SyncOnce(context.Background())
	assert.Equal(t, 1, result.StepsChanged)
	assert.True(t, result.Persisted)
	assert.Empty(t, result.StepsError)

	rr := env.serve(http.MethodGet, "/today", "", nil)
	assert.Contains(t, rr.Body.String(), `"steps":7500`)
}
