package services

import (
	"context"
	"dailytrack/internal/health"
	"dailytrack/internal/models"
	"dailytrack/internal/providers"
	"dailytrack/internal/storage"
	"dailytrack/internal/structures"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"
)

const (
	DefaultWindowDays = 365
	DefaultStepGoal   = 10000
)

type ActivityServiceInterface interface {
	Load(ctx context.Context) []models.WeightEntry
	Reconcile(ctx context.Context) ReconcileResult
	RecordWeight(ctx context.Context, value float64) (models.WeightEntry, error)
	WeightEntries() []models.WeightEntry
	RefreshToday(ctx context.Context) ReconcileResult
	TodaySteps() (float64, bool)
	StepGoalProgress() float64
	Drain()
}

// ReconcileResult describes one reconciliation pass.
type ReconcileResult struct {
	StepsChanged  int    `json:"stepsChanged"`
	WeightChanged int    `json:"weightChanged"`
	StepsError    string `json:"stepsError,omitempty"`
	WeightError   string `json:"weightError,omitempty"`
	Persisted     bool   `json:"persisted"`
}

// ActivityService merges step and weight samples from the health data
// service into the daily log and keeps the manual weight history.
type ActivityService struct {
	e      *Engine
	log    *DailyLogService
	client health.ClientInterface

	windowDays int
	policy     models.WeightPolicy
	unit       string
	stepGoal   float64

	entries []models.WeightEntry
	loaded  bool

	saves sync.WaitGroup
}

func NewActivityService(e *Engine, log *DailyLogService, client health.ClientInterface, conf *structures.Config) *ActivityService {
	windowDays := conf.Health.WindowDays
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	policy := models.WeightPolicy(conf.Health.WeightPolicy)
	if policy == "" {
		policy = models.WeightLatest
	}
	unit := conf.Health.WeightUnit
	if unit == "" {
		unit = "lb"
	}
	stepGoal := float64(conf.Activity.StepGoal)
	if stepGoal <= 0 {
		stepGoal = DefaultStepGoal
	}
	return &ActivityService{
		e:          e,
		log:        log,
		client:     client,
		windowDays: windowDays,
		policy:     policy,
		unit:       unit,
		stepGoal:   stepGoal,
	}
}

// Load restores the manual weight history on first call.
func (a *ActivityService) Load(ctx context.Context) []models.WeightEntry {
	a.e.mu.Lock()
	defer a.e.mu.Unlock()
	a.loadLocked(ctx)
	return models.NewestFirst(a.entries)
}

func (a *ActivityService) loadLocked(ctx context.Context) {
	if a.loaded {
		return
	}
	a.loaded = true

	var entries []models.WeightEntry
	if a.e.loadJSON(ctx, storage.KeyWeightEntries, &entries) {
		a.entries = entries
	}
}

// Reconcile pulls the trailing window of step and weight samples and merges
// the per-day values that differ from the log. The two queries fail
// independently; a failed query counts as no samples. The log is written at
// most once, and only when some day changed.
func (a *ActivityService) Reconcile(ctx context.Context) ReconcileResult {
	now := a.e.Now()
	return a.reconcile(ctx, models.TrailingDays(now, a.windowDays), now.Location())
}

// RefreshToday queries only samples since local midnight and updates today's
// steps and weight, leaving earlier days untouched.
func (a *ActivityService) RefreshToday(ctx context.Context) ReconcileResult {
	now := a.e.Now()
	return a.reconcile(ctx, models.DateRange{Start: models.StartOfDay(now), End: now}, now.Location())
}

func (a *ActivityService) reconcile(ctx context.Context, window models.DateRange, loc *time.Location) ReconcileResult {
	var result ReconcileResult

	steps, err := a.client.QueryStepSamples(ctx, window)
	if err != nil {
		a.e.logger.Errorf(providers.TypeHealth, "Error while querying steps: %s", err)
		result.StepsError = err.Error()
		steps = nil
	}
	weights, err := a.client.QueryWeightSamples(ctx, window)
	if err != nil {
		a.e.logger.Errorf(providers.TypeHealth, "Error while querying weight: %s", err)
		result.WeightError = err.Error()
		weights = nil
	}

	stepsByDay := models.SumByDay(steps, loc)
	weightByDay := models.PickByDay(weights, loc, a.policy)

	a.e.mu.Lock()
	defer a.e.mu.Unlock()

	result.StepsChanged = a.mergeDaysLocked(models.MetricSteps, stepsByDay)
	result.WeightChanged = a.mergeDaysLocked(models.MetricWeight, weightByDay)

	if result.StepsChanged+result.WeightChanged > 0 {
		a.log.persistLocked()
		result.Persisted = true
	}
	a.e.metrics.AddReconcileChanges(string(models.MetricSteps), result.StepsChanged)
	a.e.metrics.AddReconcileChanges(string(models.MetricWeight), result.WeightChanged)
	a.e.logger.Debugf(providers.TypeHealth, "Reconciled %d step days and %d weight days", result.StepsChanged, result.WeightChanged)
	return result
}

func (a *ActivityService) mergeDaysLocked(metric models.Metric, values map[models.CalendarDay]float64) int {
	days := make([]models.CalendarDay, 0, len(values))
	for day := range values {
		days = append(days, day)
	}
	slices.Sort(days)

	changed := 0
	for _, day := range days {
		v := values[day]
		cur, _ := a.log.getLocked(day)
		if existing, ok := cur.Value(metric); ok && existing == v {
			continue
		}
		if _, ok := a.log.mergeLocked(day, models.PatchOf(metric, v)); ok {
			changed++
		}
	}
	return changed
}

// RecordWeight appends a manual weight entry, sets today's weight and sends
// the value to the health data service in the background. A failed send is
// logged and the local entry kept.
func (a *ActivityService) RecordWeight(ctx context.Context, value float64) (models.WeightEntry, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return models.WeightEntry{}, fmt.Errorf("%w: weight must be positive", ErrInvalidInput)
	}

	a.e.mu.Lock()
	a.loadLocked(ctx)
	now := a.e.Now()
	entry := models.WeightEntry{Timestamp: now, Value: value}
	a.entries = append(a.entries, entry)
	a.e.putJSONLocked(storage.KeyWeightEntries, a.entries)
	if _, changed := a.log.mergeLocked(models.DayOf(now), models.PatchOf(models.MetricWeight, value)); changed {
		a.log.persistLocked()
	}
	a.e.bumpLocked()
	a.e.mu.Unlock()

	a.saves.Add(1)
	go func() {
		defer a.saves.Done()
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := a.client.SaveWeight(saveCtx, value, a.unit); err != nil {
			a.e.logger.Errorf(providers.TypeHealth, "Error while saving weight to health service: %s", err)
		}
	}()

	return entry, nil
}

// Drain waits for background weight saves to finish.
func (a *ActivityService) Drain() {
	a.saves.Wait()
}

// WeightEntries returns the manual weight history, newest first.
func (a *ActivityService) WeightEntries() []models.WeightEntry {
	a.e.mu.Lock()
	defer a.e.mu.Unlock()
	a.loadLocked(context.Background())
	return models.NewestFirst(a.entries)
}

func (a *ActivityService) TodaySteps() (float64, bool) {
	_, rec := a.log.Today()
	return rec.Value(models.MetricSteps)
}

// StepGoalProgress is today's steps as a fraction of the goal, capped at 1.
func (a *ActivityService) StepGoalProgress() float64 {
	steps, _ := a.TodaySteps()
	return math.Min(steps/a.stepGoal, 1)
}

var _ ActivityServiceInterface = (*ActivityService)(nil)
