package controllers

import (
	"context"
	"dailytrack/internal/models"
	"dailytrack/internal/providers"
	"dailytrack/internal/services"
	"dailytrack/internal/structures"
	"fmt"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"
)

type ApiController struct {
	logger     providers.Logger
	cache      providers.CacheProviderInterface
	engine     services.EngineInterface
	dailyLog   services.DailyLogServiceInterface
	fasting    services.FastingServiceInterface
	medication services.MedicationServiceInterface
	activity   services.ActivityServiceInterface
	weightUnit string
}

func NewApiController(
	logger providers.Logger,
	cache providers.CacheProviderInterface,
	engine services.EngineInterface,
	dailyLog services.DailyLogServiceInterface,
	fasting services.FastingServiceInterface,
	medication services.MedicationServiceInterface,
	activity services.ActivityServiceInterface,
	conf *structures.Config,
) *ApiController {
	unit := conf.Health.WeightUnit
	if unit == "" {
		unit = "lb"
	}
	return &ApiController{
		logger:     logger,
		cache:      cache,
		engine:     engine,
		dailyLog:   dailyLog,
		fasting:    fasting,
		medication: medication,
		activity:   activity,
		weightUnit: unit,
	}
}

// serveFromCacheOrCompute caches rendered payloads under the current engine
// revision, so any mutation makes older entries unreachable.
func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	key := fmt.Sprintf("%d:%s", ac.engine.Revision(), cacheKey)
	if data, ok := ac.cache.Get(key); ok {
		writeJSON(w, http.StatusOK, data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(key, gson)
	writeJSON(w, http.StatusOK, gson)
}

type todayResponse struct {
	Day              models.CalendarDay         `json:"day"`
	Metrics          map[models.Metric]*float64 `json:"metrics"`
	StepGoalProgress float64                    `json:"stepGoalProgress"`
	Display          map[models.Metric]string   `json:"display"`
}

// GetToday returns today's aggregates. A metric with no observation is null.
func (ac *ApiController) GetToday(w http.ResponseWriter, r *http.Request) {
	day := models.DayOf(ac.engine.Now())
	ac.serveFromCacheOrCompute(w, "today:"+string(day), func() (any, error) {
		rec, _ := ac.dailyLog.Get(day)
		resp := todayResponse{
			Day:              day,
			Metrics:          make(map[models.Metric]*float64, len(models.Metrics)),
			StepGoalProgress: ac.activity.StepGoalProgress(),
			Display:          make(map[models.Metric]string, len(models.Metrics)),
		}
		for _, m := range models.Metrics {
			v, ok := rec.Value(m)
			if !ok {
				resp.Metrics[m] = nil
				resp.Display[m] = "--"
				continue
			}
			resp.Metrics[m] = models.Float(v)
			resp.Display[m] = ac.formatMetric(m, v)
		}
		return resp, nil
	})
}

func (ac *ApiController) formatMetric(m models.Metric, v float64) string {
	switch m {
	case models.MetricSteps:
		return humanize.Comma(int64(v))
	case models.MetricWeight:
		return humanize.FormatFloat("#,###.#", v) + " " + ac.weightUnit
	case models.MetricWaterOz, models.MetricSodaOz:
		return humanize.FormatFloat("#,###.", v) + " oz"
	case models.MetricFastedHours:
		return humanize.FormatFloat("#,###.##", v) + " h"
	}
	return humanize.Ftoa(v)
}

type monthResponse struct {
	Month  string     `json:"month"`
	Metric string     `json:"metric"`
	Days   []string   `json:"days"`
	Values []*float64 `json:"values"`
}

// GetLog returns the whole log, or one metric's series for ?month=YYYY-MM.
func (ac *ApiController) GetLog(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		ac.serveFromCacheOrCompute(w, "log", func() (any, error) {
			return ac.dailyLog.All(), nil
		})
		return
	}

	first, err := time.Parse("2006-01", month)
	if err != nil {
		respond(w, http.StatusBadRequest, errorResponse{Error: "month must be YYYY-MM"})
		return
	}
	metricName := r.URL.Query().Get("metric")
	if metricName == "" {
		metricName = string(models.MetricSteps)
	}
	metric, err := models.ParseMetric(metricName)
	if err != nil {
		respond(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	ac.serveFromCacheOrCompute(w, "month:"+month+":"+string(metric), func() (any, error) {
		days := models.DaysInMonth(first.Year(), first.Month())
		labels := make([]string, len(days))
		for i, d := range days {
			labels[i] = string(d)
		}
		return monthResponse{
			Month:  month,
			Metric: string(metric),
			Days:   labels,
			Values: ac.dailyLog.Month(first.Year(), first.Month(), metric),
		}, nil
	})
}

type dayRequest struct {
	Day string `json:"day" validate:"required"`
	models.RecordPatch
}

// MergeDay sets any subset of a day's metrics, leaving the rest untouched.
func (ac *ApiController) MergeDay(w http.ResponseWriter, r *http.Request) {
	var req dayRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	rec, err := ac.dailyLog.Merge(models.CalendarDay(req.Day), req.RecordPatch)
	if err != nil {
		respondError(w, ac.logger, r, err)
		return
	}
	respond(w, http.StatusOK, rec)
}

type liquidRequest struct {
	Kind string  `json:"kind" validate:"required|in:water,soda"`
	Oz   float64 `json:"oz" validate:"required"`
}

func (ac *ApiController) AddLiquid(w http.ResponseWriter, r *http.Request) {
	var req liquidRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	rec, err := ac.dailyLog.AddLiquid(models.Liquid(req.Kind), req.Oz)
	if err != nil {
		respondError(w, ac.logger, r, err)
		return
	}
	respond(w, http.StatusOK, rec)
}

type fastResponse struct {
	Display     models.TimerDisplay `json:"display"`
	Session     models.FastSession  `json:"session"`
	LastMeal    *time.Time          `json:"lastMeal"`
	LastMealAgo string              `json:"lastMealAgo,omitempty"`
	ExpectedEnd *time.Time          `json:"expectedEnd"`
}

func (ac *ApiController) fastState() fastResponse {
	now := ac.engine.Now()
	resp := fastResponse{
		Display: ac.fasting.Display(now),
		Session: ac.fasting.Session(),
	}
	if lastMeal, ok := ac.fasting.LastMeal(); ok {
		resp.LastMeal = &lastMeal
		resp.LastMealAgo = humanize.RelTime(lastMeal, now, "ago", "from now")
	}
	if end, ok := ac.fasting.ExpectedEnd(); ok {
		resp.ExpectedEnd = &end
	}
	return resp
}

// GetFast is never cached: the display changes every second.
func (ac *ApiController) GetFast(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, ac.fastState())
}

type fastRequest struct {
	At *time.Time `json:"at"`
}

// at resolves the optional request time into the engine's local zone.
func (ac *ApiController) at(req fastRequest) time.Time {
	if req.At != nil {
		return ac.engine.Local(*req.At)
	}
	return ac.engine.Now()
}

func (ac *ApiController) StartFast(w http.ResponseWriter, r *http.Request) {
	var req fastRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	if err := ac.fasting.Start(ac.at(req)); err != nil {
		respondError(w, ac.logger, r, err)
		return
	}
	respond(w, http.StatusOK, ac.fastState())
}

type endFastResponse struct {
	ElapsedHours float64            `json:"elapsedHours"`
	Day          models.CalendarDay `json:"day"`
	Record       models.DailyRecord `json:"record"`
}

func (ac *ApiController) EndFast(w http.ResponseWriter, r *http.Request) {
	var req fastRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	end := ac.at(req)
	hours, err := ac.fasting.End(end)
	if err != nil {
		respondError(w, ac.logger, r, err)
		return
	}
	day := models.DayOf(end)
	rec, _ := ac.dailyLog.Get(day)
	respond(w, http.StatusOK, endFastResponse{ElapsedHours: hours, Day: day, Record: rec})
}

type medsResponse struct {
	Medications []models.Medication  `json:"medications"`
	Taken       models.TakenSnapshot `json:"taken"`
}

func (ac *ApiController) GetMeds(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "meds", func() (any, error) {
		return medsResponse{
			Medications: ac.medication.Medications(),
			Taken:       ac.medication.Taken(),
		}, nil
	})
}

type medicationRequest struct {
	ID             string             `json:"id"`
	Name           string             `json:"name" validate:"required"`
	DoseCount      int                `json:"doseCount" validate:"required|min:1"`
	ScheduledTimes []models.TimeOfDay `json:"scheduledTimes"`
}

func (ac *ApiController) UpsertMed(w http.ResponseWriter, r *http.Request) {
	var req medicationRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	med, err := ac.medication.Upsert(models.Medication{
		ID:             req.ID,
		Name:           req.Name,
		DoseCount:      req.DoseCount,
		ScheduledTimes: req.ScheduledTimes,
	})
	if err != nil {
		respondError(w, ac.logger, r, err)
		return
	}
	respond(w, http.StatusOK, med)
}

type medicationIDRequest struct {
	ID string `json:"id" validate:"required"`
}

func (ac *ApiController) DeleteMed(w http.ResponseWriter, r *http.Request) {
	var req medicationIDRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	if err := ac.medication.Delete(req.ID); err != nil {
		respondError(w, ac.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type toggleRequest struct {
	ID    string `json:"id" validate:"required"`
	Index int    `json:"index"`
}

type toggleResponse struct {
	ID    string `json:"id"`
	Taken []bool `json:"taken"`
}

func (ac *ApiController) ToggleMed(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	flags, err := ac.medication.ToggleTaken(req.ID, req.Index)
	if err != nil {
		respondError(w, ac.logger, r, err)
		return
	}
	respond(w, http.StatusOK, toggleResponse{ID: req.ID, Taken: flags})
}

type nextDoseResponse struct {
	Next *models.DoseGroup `json:"next"`
}

func (ac *ApiController) NextMed(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, nextDoseResponse{Next: ac.medication.NextDose(ac.engine.Now())})
}

func (ac *ApiController) GetWeight(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "weight", func() (any, error) {
		return ac.activity.WeightEntries(), nil
	})
}

type weightRequest struct {
	Value float64 `json:"value" validate:"required"`
}

func (ac *ApiController) RecordWeight(w http.ResponseWriter, r *http.Request) {
	var req weightRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	entry, err := ac.activity.RecordWeight(r.Context(), req.Value)
	if err != nil {
		respondError(w, ac.logger, r, err)
		return
	}
	respond(w, http.StatusCreated, entry)
}

// Sync runs a reconciliation pass now, detached from request cancellation.
// ?scope=today refreshes only today's steps and weight.
func (ac *ApiController) Sync(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())
	var result services.ReconcileResult
	switch scope := r.URL.Query().Get("scope"); scope {
	case "", "window":
		result = ac.activity.Reconcile(ctx)
	case "today":
		result = ac.activity.RefreshToday(ctx)
	default:
		respondError(w, ac.logger, r, fmt.Errorf("%w: unknown sync scope %q", services.ErrInvalidInput, scope))
		return
	}
	respond(w, http.StatusOK, result)
}
