package services

import (
	"context"
	"dailytrack/internal/models"
	"dailytrack/internal/providers"
	"dailytrack/internal/storage"
	"fmt"
	"math"
	"time"
)

type DailyLogServiceInterface interface {
	Load(ctx context.Context) map[models.CalendarDay]models.DailyRecord
	Merge(day models.CalendarDay, patch models.RecordPatch) (models.DailyRecord, error)
	Get(day models.CalendarDay) (models.DailyRecord, bool)
	All() map[models.CalendarDay]models.DailyRecord
	Today() (models.CalendarDay, models.DailyRecord)
	AddLiquid(kind models.Liquid, oz float64) (models.DailyRecord, error)
	SetIntake(day models.CalendarDay, waterOz, sodaOz *float64) (models.DailyRecord, error)
	Month(year int, month time.Month, metric models.Metric) []*float64
}

// DailyLogService owns the date-keyed log of daily observations.
type DailyLogService struct {
	e      *Engine
	days   map[models.CalendarDay]models.DailyRecord
	loaded bool
}

func NewDailyLogService(e *Engine) *DailyLogService {
	return &DailyLogService{
		e:    e,
		days: make(map[models.CalendarDay]models.DailyRecord),
	}
}

// Load hydrates the log from storage on first call and returns a copy of it.
// A missing or malformed payload yields an empty log.
func (d *DailyLogService) Load(ctx context.Context) map[models.CalendarDay]models.DailyRecord {
	d.e.mu.Lock()
	defer d.e.mu.Unlock()
	d.loadLocked(ctx)
	return d.copyLocked()
}

func (d *DailyLogService) loadLocked(ctx context.Context) {
	if d.loaded {
		return
	}
	d.loaded = true

	var stored map[models.CalendarDay]models.DailyRecord
	if !d.e.loadJSON(ctx, storage.KeyDailyLog, &stored) {
		return
	}
	for day, rec := range stored {
		if _, err := models.ParseDay(string(day)); err != nil {
			d.e.logger.Warnf(providers.TypeStorage, "Skipping log entry with bad day %q", day)
			continue
		}
		d.days[day] = rec
	}
	d.e.metrics.SetDaysTotal(len(d.days))
	d.e.logger.Infof(providers.TypeStorage, "Loaded %d days of log", len(d.days))
}

// Merge overwrites the fields set in patch for day and leaves the rest as
// they were. The log is queued for persistence only when the record changed.
func (d *DailyLogService) Merge(day models.CalendarDay, patch models.RecordPatch) (models.DailyRecord, error) {
	if _, err := models.ParseDay(string(day)); err != nil {
		return models.DailyRecord{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := patch.Validate(); err != nil {
		return models.DailyRecord{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	d.e.mu.Lock()
	defer d.e.mu.Unlock()
	rec, changed := d.mergeLocked(day, patch)
	if changed {
		d.persistLocked()
	}
	return rec.Clone(), nil
}

// mergeLocked applies patch in memory without persisting.
func (d *DailyLogService) mergeLocked(day models.CalendarDay, patch models.RecordPatch) (models.DailyRecord, bool) {
	d.loadLocked(context.Background())

	cur, exists := d.days[day]
	if patch.IsEmpty() {
		return cur, false
	}
	next := patch.Apply(cur)
	if exists && next.Equal(cur) {
		return cur, false
	}
	d.days[day] = next
	d.e.bumpLocked()
	return next, true
}

func (d *DailyLogService) persistLocked() {
	d.e.putJSONLocked(storage.KeyDailyLog, d.days)
	d.e.metrics.SetDaysTotal(len(d.days))
}

func (d *DailyLogService) Get(day models.CalendarDay) (models.DailyRecord, bool) {
	d.e.mu.Lock()
	defer d.e.mu.Unlock()
	return d.getLocked(day)
}

func (d *DailyLogService) getLocked(day models.CalendarDay) (models.DailyRecord, bool) {
	d.loadLocked(context.Background())
	rec, ok := d.days[day]
	return rec.Clone(), ok
}

// All returns a copy of the whole log.
func (d *DailyLogService) All() map[models.CalendarDay]models.DailyRecord {
	d.e.mu.Lock()
	defer d.e.mu.Unlock()
	d.loadLocked(context.Background())
	return d.copyLocked()
}

func (d *DailyLogService) copyLocked() map[models.CalendarDay]models.DailyRecord {
	out := make(map[models.CalendarDay]models.DailyRecord, len(d.days))
	for day, rec := range d.days {
		out[day] = rec.Clone()
	}
	return out
}

// Today returns today's key and record. Metrics with no observation stay absent.
func (d *DailyLogService) Today() (models.CalendarDay, models.DailyRecord) {
	day := models.DayOf(d.e.Now())
	rec, _ := d.Get(day)
	return day, rec
}

// AddLiquid adds oz to today's water or soda total.
func (d *DailyLogService) AddLiquid(kind models.Liquid, oz float64) (models.DailyRecord, error) {
	if math.IsNaN(oz) || math.IsInf(oz, 0) || oz <= 0 {
		return models.DailyRecord{}, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	var metric models.Metric
	switch kind {
	case models.LiquidWater:
		metric = models.MetricWaterOz
	case models.LiquidSoda:
		metric = models.MetricSodaOz
	default:
		return models.DailyRecord{}, fmt.Errorf("%w: unknown liquid %q", ErrInvalidInput, kind)
	}

	d.e.mu.Lock()
	defer d.e.mu.Unlock()
	day := models.DayOf(d.e.Now())
	cur, _ := d.getLocked(day)
	rec, _ := d.mergeLocked(day, models.PatchOf(metric, cur.ValueOr(metric, 0)+oz))
	d.persistLocked()
	return rec.Clone(), nil
}

// SetIntake replaces the water and/or soda totals of day.
func (d *DailyLogService) SetIntake(day models.CalendarDay, waterOz, sodaOz *float64) (models.DailyRecord, error) {
	return d.Merge(day, models.RecordPatch{WaterOz: waterOz, SodaOz: sodaOz})
}

// Month returns one entry per day of the month; nil marks a day with no
// observation of metric.
func (d *DailyLogService) Month(year int, month time.Month, metric models.Metric) []*float64 {
	d.e.mu.Lock()
	defer d.e.mu.Unlock()
	d.loadLocked(context.Background())

	days := models.DaysInMonth(year, month)
	series := make([]*float64, len(days))
	for i, day := range days {
		if v, ok := d.days[day].Value(metric); ok {
			series[i] = models.Float(v)
		}
	}
	return series
}

var _ DailyLogServiceInterface = (*DailyLogService)(nil)
