package services

import (
	"context"
	"dailytrack/internal/health"
	"dailytrack/internal/models"
	"dailytrack/internal/storage"
	"errors"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestActivity(f *fixture, client health.ClientInterface) (*ActivityService, *DailyLogService) {
	log := NewDailyLogService(f.engine)
	return NewActivityService(f.engine, log, client, f.conf), log
}

func TestActivity_ReconcileSumsStepsPerDay(t *testing.T) {
	f := newFixture(at("2024-01-15T18:00"))
	client := health.NewMemoryClient()
	client.AddSteps(
		models.Sample{Start: at("2024-01-15T08:00"), Value: 3000},
		models.Sample{Start: at("2024-01-15T12:30"), Value: 4500},
		models.Sample{Start: at("2024-01-14T09:00"), Value: 1200},
	)
	activity, log := newTestActivity(f, client)

	result := activity.Reconcile(context.Background())
	assert.Equal(t, 2, result.StepsChanged)
	assert.True(t, result.Persisted)

	rec, ok := log.Get("2024-01-15")
	require.True(t, ok)
	assert.Equal(t, 7500.0, *rec.Steps)
	steps, ok := activity.TodaySteps()
	require.True(t, ok)
	assert.Equal(t, 7500.0, steps)
	assert.Equal(t, 0.75, activity.StepGoalProgress())
	assert.Equal(t, 2, f.metrics.ReconcileChanges["steps"])
}

func TestActivity_RefreshTodayOnlyTouchesToday(t *testing.T) {
	f := newFixture(at("2024-01-15T18:00"))
	client := health.NewMemoryClient()
	client.AddSteps(
		models.Sample{Start: at("2024-01-14T09:00"), Value: 1200},
		models.Sample{Start: at("2024-01-15T08:00"), Value: 3000},
		models.Sample{Start: at("2024-01-15T12:30"), Value: 4500},
	)
	client.AddWeights(
		models.Sample{Start: at("2024-01-14T07:00"), Value: 182.0},
		models.Sample{Start: at("2024-01-15T07:00"), Value: 181.2},
	)
	activity, log := newTestActivity(f, client)

	result := activity.RefreshToday(context.Background())
	assert.Equal(t, 1, result.StepsChanged)
	assert.Equal(t, 1, result.WeightChanged)
	assert.True(t, result.Persisted)

	_, ok := log.Get("2024-01-14")
	assert.False(t, ok)
	steps, ok := activity.TodaySteps()
	require.True(t, ok)
	assert.Equal(t, 7500.0, steps)
	rec, _ := log.Get("2024-01-15")
	assert.Equal(t, 181.2, *rec.Weight)

	again := activity.RefreshToday(context.Background())
	assert.False(t, again.Persisted)
}

func TestActivity_ReconcileIsIdempotent(t *testing.T) {
	f := newFixture(at("2024-01-15T18:00"))
	client := health.NewMemoryClient()
	client.AddSteps(models.Sample{Start: at("2024-01-15T08:00"), Value: 3000})
	client.AddWeights(models.Sample{Start: at("2024-01-15T07:00"), Value: 181.2})
	activity, _ := newTestActivity(f, client)

	first := activity.Reconcile(context.Background())
	assert.Equal(t, 1, first.StepsChanged)
	assert.Equal(t, 1, first.WeightChanged)
	rev := f.engine.Revision()

	second := activity.Reconcile(context.Background())
	assert.Equal(t, 0, second.StepsChanged)
	assert.Equal(t, 0, second.WeightChanged)
	assert.False(t, second.Persisted)
	assert.Equal(t, 1, f.store.PutCount(storage.KeyDailyLog))
	assert.Equal(t, rev, f.engine.Revision())
}

func TestActivity_ReconcileKeepsOtherFields(t *testing.T) {
	f := newFixture(at("2024-01-15T18:00"))
	client := health.NewMemoryClient()
	client.AddSteps(models.Sample{Start: at("2024-01-15T08:00"), Value: 3000})
	activity, log := newTestActivity(f, client)
	_, err := log.Merge("2024-01-15", models.RecordPatch{WaterOz: models.Float(48), Steps: models.Float(10)})
	require.NoError(t, err)

	activity.Reconcile(context.Background())

	rec, _ := log.Get("2024-01-15")
	assert.Equal(t, 3000.0, *rec.Steps)
	assert.Equal(t, 48.0, *rec.WaterOz)
	assert.Nil(t, rec.Weight)
}

func TestActivity_WeightLatestSampleWins(t *testing.T) {
	f := newFixture(at("2024-01-15T18:00"))
	client := health.NewMemoryClient()
	client.AddWeights(
		models.Sample{Start: at("2024-01-15T20:00").Add(-2 * time.Hour), Value: 180.4},
		models.Sample{Start: at("2024-01-15T07:00"), Value: 181.0},
	)
	activity, log := newTestActivity(f, client)

	activity.Reconcile(context.Background())
	rec, _ := log.Get("2024-01-15")
	assert.Equal(t, 180.4, *rec.Weight)
}

func TestActivity_StepFailureDoesNotBlockWeight(t *testing.T) {
	f := newFixture(at("2024-01-15T18:00"))
	client := health.NewMemoryClient()
	client.StepsErr = errors.New("permission denied")
	client.AddWeights(models.Sample{Start: at("2024-01-15T07:00"), Value: 181.0})
	activity, log := newTestActivity(f, client)
	_, err := log.Merge("2024-01-15", models.RecordPatch{Steps: models.Float(900)})
	require.NoError(t, err)

	result := activity.Reconcile(context.Background())
	assert.Equal(t, "permission denied", result.StepsError)
	assert.Equal(t, 0, result.StepsChanged)
	assert.Equal(t, 1, result.WeightChanged)

	rec, _ := log.Get("2024-01-15")
	assert.Equal(t, 900.0, *rec.Steps)
	assert.Equal(t, 181.0, *rec.Weight)
	assert.Equal(t, 1, f.logger.Count("error"))
}

func TestActivity_BothQueriesFail(t *testing.T) {
	f := newFixture(at("2024-01-15T18:00"))
	activity, _ := newTestActivity(f, health.NoopClient{})

	result := activity.Reconcile(context.Background())
	assert.NotEmpty(t, result.StepsError)
	assert.NotEmpty(t, result.WeightError)
	assert.False(t, result.Persisted)
	assert.Equal(t, 0, f.store.PutCount(storage.KeyDailyLog))
}

func TestActivity_RecordWeight(t *testing.T) {
	f := newFixture(at("2024-01-15T07:00"))
	client := health.NewMemoryClient()
	activity, log := newTestActivity(f, client)

	_, err := activity.RecordWeight(context.Background(), 182)
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	entry, err := activity.RecordWeight(context.Background(), 181.6)
	require.NoError(t, err)
	activity.Drain()

	assert.True(t, entry.Timestamp.Equal(at("2024-01-15T08:00")))
	entries := activity.WeightEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, 181.6, entries[0].Value)
	assert.Equal(t, 182.0, entries[1].Value)

	rec, _ := log.Get("2024-01-15")
	assert.Equal(t, 181.6, *rec.Weight)
	assert.ElementsMatch(t, []float64{182, 181.6}, client.Saved())

	raw, ok := f.store.Value(storage.KeyWeightEntries)
	require.True(t, ok)
	var stored []models.WeightEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Len(t, stored, 2)
	assert.Equal(t, 182.0, stored[0].Value)
}

func TestActivity_RecordWeightSaveFailureKeepsEntry(t *testing.T) {
	f := newFixture(at("2024-01-15T07:00"))
	client := health.NewMemoryClient()
	client.SaveErr = errors.New("read only")
	activity, _ := newTestActivity(f, client)

	_, err := activity.RecordWeight(context.Background(), 182)
	require.NoError(t, err)
	activity.Drain()

	assert.Len(t, activity.WeightEntries(), 1)
	assert.Equal(t, 1, f.logger.Count("error"))

	_, err = activity.RecordWeight(context.Background(), -3)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestActivity_LoadWeightEntries(t *testing.T) {
	f := newFixture(at("2024-01-15T07:00"))
	f.store.Seed(storage.KeyWeightEntries, `[{"timestamp":"2024-01-10T07:00:00Z","value":184},{"timestamp":"2024-01-12T07:00:00Z","value":183}]`)
	activity, _ := newTestActivity(f, health.NoopClient{})

	entries := activity.Load(context.Background())
	require.Len(t, entries, 2)
	assert.Equal(t, 183.0, entries[0].Value)
}

func TestActivity_StepGoalCapped(t *testing.T) {
	f := newFixture(at("2024-01-15T18:00"))
	client := health.NewMemoryClient()
	client.AddSteps(models.Sample{Start: at("2024-01-15T08:00"), Value: 25000})
	activity, _ := newTestActivity(f, client)

	assert.Equal(t, 0.0, activity.StepGoalProgress())
	activity.Reconcile(context.Background())
	assert.Equal(t, 1.0, activity.StepGoalProgress())
}
