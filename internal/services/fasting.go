package services

import (
	"context"
	"dailytrack/internal/models"
	"dailytrack/internal/providers"
	"dailytrack/internal/storage"
	"dailytrack/internal/structures"
	"fmt"
	"math"
	"time"
)

const (
	DefaultFastTarget  = 16 * time.Hour
	DefaultStartOfFast = "20:00"
)

type FastingServiceInterface interface {
	Load(ctx context.Context) models.FastSession
	Start(from time.Time) error
	End(end time.Time) (float64, error)
	Display(now time.Time) models.TimerDisplay
	Tick(now time.Time) models.TimerDisplay
	Current() models.TimerDisplay
	Session() models.FastSession
	LastMeal() (time.Time, bool)
	ExpectedEnd() (time.Time, bool)
	SetDayTotal(day models.CalendarDay, hours float64) (models.DailyRecord, error)
}

// FastingService runs the single fasting session timer. The session is
// either idle or fasting; finished sessions are credited to the daily log.
type FastingService struct {
	e           *Engine
	log         *DailyLogService
	target      time.Duration
	startOfFast models.TimeOfDay

	session  models.FastSession
	lastMeal *time.Time
	current  models.TimerDisplay
	loaded   bool
}

func NewFastingService(e *Engine, log *DailyLogService, conf *structures.Config) *FastingService {
	target := conf.Fasting.TargetDuration
	if target <= 0 {
		target = DefaultFastTarget
	}
	startOfFast, err := models.ParseTimeOfDay(conf.Fasting.StartOfFast)
	if err != nil {
		startOfFast, _ = models.ParseTimeOfDay(DefaultStartOfFast)
	}
	return &FastingService{
		e:           e,
		log:         log,
		target:      target,
		startOfFast: startOfFast,
	}
}

// Load restores the session and last meal from storage on first call.
func (f *FastingService) Load(ctx context.Context) models.FastSession {
	f.e.mu.Lock()
	defer f.e.mu.Unlock()
	f.loadLocked(ctx)
	return f.sessionLocked()
}

func (f *FastingService) loadLocked(ctx context.Context) {
	if f.loaded {
		return
	}
	f.loaded = true

	var session models.FastSession
	if f.e.loadJSON(ctx, storage.KeyFastSession, &session) {
		f.session = session
	}
	var lastMeal time.Time
	if f.e.loadJSON(ctx, storage.KeyLastMeal, &lastMeal) {
		f.lastMeal = &lastMeal
	}
	f.e.metrics.SetFastingActive(f.session.Active)
}

func (f *FastingService) sessionLocked() models.FastSession {
	out := models.FastSession{Active: f.session.Active}
	if f.session.Start != nil {
		start := *f.session.Start
		out.Start = &start
	}
	return out
}

func (f *FastingService) Session() models.FastSession {
	f.e.mu.Lock()
	defer f.e.mu.Unlock()
	f.loadLocked(context.Background())
	return f.sessionLocked()
}

func (f *FastingService) LastMeal() (time.Time, bool) {
	f.e.mu.Lock()
	defer f.e.mu.Unlock()
	f.loadLocked(context.Background())
	if f.lastMeal == nil {
		return time.Time{}, false
	}
	return *f.lastMeal, true
}

// Start begins a fast at from, which also becomes the last meal time.
func (f *FastingService) Start(from time.Time) error {
	if from.IsZero() {
		return fmt.Errorf("%w: start time required", ErrInvalidInput)
	}

	from = f.e.Local(from)

	f.e.mu.Lock()
	defer f.e.mu.Unlock()
	f.loadLocked(context.Background())

	if f.session.Active {
		return ErrAlreadyFasting
	}

	f.session = models.FastSession{Start: &from, Active: true}
	f.lastMeal = &from
	f.e.putJSONLocked(storage.KeyFastSession, f.session)
	f.e.putJSONLocked(storage.KeyLastMeal, from)
	f.e.bumpLocked()
	f.e.metrics.SetFastingActive(true)
	f.e.logger.Infof(providers.TypeApp, "Fast started at %s", from.Format(time.RFC3339))
	return nil
}

// End finishes the fast at end and adds the elapsed hours, rounded to two
// decimals, to the fasted total of end's local calendar day.
func (f *FastingService) End(end time.Time) (float64, error) {
	end = f.e.Local(end)

	f.e.mu.Lock()
	defer f.e.mu.Unlock()
	f.loadLocked(context.Background())

	if !f.session.Active {
		return 0, ErrNotFasting
	}
	start := f.sessionStartLocked()
	if start == nil {
		return 0, fmt.Errorf("%w: session has no start time", ErrNotFasting)
	}
	if end.Before(*start) {
		return 0, ErrEndBeforeStart
	}

	elapsed := models.RoundHours(end.Sub(*start))
	day := models.DayOf(end)
	cur, _ := f.log.getLocked(day)
	total := models.Round2(cur.ValueOr(models.MetricFastedHours, 0) + elapsed)
	if _, changed := f.log.mergeLocked(day, models.PatchOf(models.MetricFastedHours, total)); changed {
		f.log.persistLocked()
	}

	f.session = models.FastSession{}
	f.lastMeal = &end
	f.e.putJSONLocked(storage.KeyFastSession, f.session)
	f.e.putJSONLocked(storage.KeyLastMeal, end)
	f.e.bumpLocked()
	f.e.metrics.SetFastingActive(false)
	f.e.logger.Infof(providers.TypeApp, "Fast ended after %.2fh, credited to %s", elapsed, day)
	return elapsed, nil
}

// sessionStartLocked falls back to the last meal when an active session
// carries no start time.
func (f *FastingService) sessionStartLocked() *time.Time {
	if f.session.Start != nil {
		return f.session.Start
	}
	return f.lastMeal
}

// Display renders the timer at now. While fasting it counts up from the
// session start; while idle it counts down to the next start-of-fast time.
func (f *FastingService) Display(now time.Time) models.TimerDisplay {
	f.e.mu.Lock()
	defer f.e.mu.Unlock()
	f.loadLocked(context.Background())
	return f.displayLocked(now)
}

func (f *FastingService) displayLocked(now time.Time) models.TimerDisplay {
	if f.session.Active {
		if start := f.sessionStartLocked(); start != nil {
			elapsed := max(now.Sub(*start), 0)
			return models.TimerDisplay{
				Text:     models.FormatClock(elapsed),
				Progress: math.Min(float64(elapsed)/float64(f.target), 1),
				Fasting:  true,
				Target:   start.Add(f.target),
			}
		}
	}

	next := f.startOfFast.NextAfter(now)
	return models.TimerDisplay{
		Text:     models.FormatClock(next.Sub(now)),
		Progress: 0,
		Fasting:  false,
		Target:   next,
	}
}

// Tick recomputes the display and keeps it as the current one.
func (f *FastingService) Tick(now time.Time) models.TimerDisplay {
	f.e.mu.Lock()
	defer f.e.mu.Unlock()
	f.loadLocked(context.Background())
	f.current = f.displayLocked(now)
	return f.current
}

// Current returns the display computed by the last Tick, or a fresh one
// if there has been none.
func (f *FastingService) Current() models.TimerDisplay {
	f.e.mu.Lock()
	defer f.e.mu.Unlock()
	if f.current.Text == "" {
		f.loadLocked(context.Background())
		return f.displayLocked(f.e.Now())
	}
	return f.current
}

// ExpectedEnd is when the active fast reaches its target duration.
func (f *FastingService) ExpectedEnd() (time.Time, bool) {
	f.e.mu.Lock()
	defer f.e.mu.Unlock()
	f.loadLocked(context.Background())
	if !f.session.Active {
		return time.Time{}, false
	}
	start := f.sessionStartLocked()
	if start == nil {
		return time.Time{}, false
	}
	return start.Add(f.target), true
}

// SetDayTotal replaces the fasted hours of day. It does not touch the
// running session.
func (f *FastingService) SetDayTotal(day models.CalendarDay, hours float64) (models.DailyRecord, error) {
	return f.log.Merge(day, models.PatchOf(models.MetricFastedHours, models.Round2(hours)))
}

var _ FastingServiceInterface = (*FastingService)(nil)
