package services

import (
	"context"
	"dailytrack/internal/models"
	"dailytrack/internal/providers"
	"dailytrack/internal/storage"
	"fmt"
	"slices"
	"strings"
	"time"
)

type MedicationServiceInterface interface {
	Load(ctx context.Context, now time.Time)
	Rollover(now time.Time) bool
	Medications() []models.Medication
	Taken() models.TakenSnapshot
	Upsert(med models.Medication) (models.Medication, error)
	Delete(id string) error
	ToggleTaken(id string, idx int) ([]bool, error)
	NextDose(now time.Time) *models.DoseGroup
	NextMidnight(now time.Time) time.Time
}

// MedicationService keeps the medication schedule and which doses were
// taken today. Taken flags reset when the calendar day changes.
type MedicationService struct {
	e   *Engine
	ids IDGenerator

	meds   []models.Medication
	taken  models.TakenState
	day    models.CalendarDay
	loaded bool
}

func NewMedicationService(e *Engine, ids IDGenerator) *MedicationService {
	return &MedicationService{
		e:     e,
		ids:   ids,
		taken: make(models.TakenState),
	}
}

// Load hydrates medications and taken flags. When the stored day differs
// from now's day every flag is reset before anything else reads them.
func (m *MedicationService) Load(ctx context.Context, now time.Time) {
	m.e.mu.Lock()
	defer m.e.mu.Unlock()
	m.loadLocked(ctx, now)
}

// loadLocked reports whether hydrating caused a rollover.
func (m *MedicationService) loadLocked(ctx context.Context, now time.Time) bool {
	if m.loaded {
		return false
	}
	m.loaded = true

	var meds []models.Medication
	if m.e.loadJSON(ctx, storage.KeyMedications, &meds) {
		m.meds = meds
	}
	var snap models.TakenSnapshot
	if m.e.loadJSON(ctx, storage.KeyTakenTimes, &snap) && snap.Data != nil {
		m.taken = snap.Data
		m.day = snap.Day
	}

	rolled := m.rolloverLocked(now)
	if rolled {
		m.e.logger.Infof(providers.TypeScheduler, "Taken doses reset on load for %s", m.day)
	}
	if m.taken.Reconcile(m.meds) {
		m.persistTakenLocked()
	}
	return rolled
}

// ensureLoadedLocked hydrates state for callers that have no clock reading.
func (m *MedicationService) ensureLoadedLocked() {
	m.loadLocked(context.Background(), m.e.Now())
}

// Rollover resets every taken flag when now falls on a later day than the
// stored one. Reports whether a reset happened.
func (m *MedicationService) Rollover(now time.Time) bool {
	m.e.mu.Lock()
	defer m.e.mu.Unlock()
	if !m.loaded {
		return m.loadLocked(context.Background(), now)
	}
	return m.rolloverLocked(now)
}

func (m *MedicationService) rolloverLocked(now time.Time) bool {
	today := models.DayOf(now)
	if m.day == today {
		return false
	}
	m.taken.Reset(m.meds)
	m.day = today
	m.persistTakenLocked()
	m.e.bumpLocked()
	m.e.metrics.IncRollovers()
	return true
}

func (m *MedicationService) persistTakenLocked() {
	m.e.putJSONLocked(storage.KeyTakenTimes, models.TakenSnapshot{Day: m.day, Data: m.taken})
}

func (m *MedicationService) Medications() []models.Medication {
	m.e.mu.Lock()
	defer m.e.mu.Unlock()
	m.ensureLoadedLocked()
	out := make([]models.Medication, len(m.meds))
	for i, med := range m.meds {
		out[i] = cloneMedication(med)
	}
	return out
}

func (m *MedicationService) Taken() models.TakenSnapshot {
	m.e.mu.Lock()
	defer m.e.mu.Unlock()
	m.ensureLoadedLocked()
	return models.TakenSnapshot{Day: m.day, Data: m.taken.Clone()}
}

// Upsert adds med when it has no ID and replaces the medication with the
// same ID otherwise. Taken flags are repaired immediately.
func (m *MedicationService) Upsert(med models.Medication) (models.Medication, error) {
	med.Name = strings.TrimSpace(med.Name)
	if med.Name == "" {
		return models.Medication{}, fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	if med.DoseCount < 1 {
		return models.Medication{}, fmt.Errorf("%w: dose count must be at least 1", ErrInvalidInput)
	}
	med = cloneMedication(med)

	m.e.mu.Lock()
	defer m.e.mu.Unlock()
	m.ensureLoadedLocked()

	if med.ID == "" {
		med.ID = m.ids.New()
		m.meds = append(m.meds, med)
	} else {
		idx := m.indexLocked(med.ID)
		if idx < 0 {
			return models.Medication{}, fmt.Errorf("%w: %s", ErrUnknownMedication, med.ID)
		}
		m.meds[idx] = med
	}

	m.taken.Reconcile(m.meds)
	m.e.putJSONLocked(storage.KeyMedications, m.meds)
	m.persistTakenLocked()
	m.e.bumpLocked()
	return cloneMedication(med), nil
}

func (m *MedicationService) Delete(id string) error {
	m.e.mu.Lock()
	defer m.e.mu.Unlock()
	m.ensureLoadedLocked()

	idx := m.indexLocked(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownMedication, id)
	}
	m.meds = slices.Delete(m.meds, idx, idx+1)
	m.taken.Reconcile(m.meds)
	m.e.putJSONLocked(storage.KeyMedications, m.meds)
	m.persistTakenLocked()
	m.e.bumpLocked()
	return nil
}

// ToggleTaken flips the flag of dose idx of medication id and returns the
// medication's flags afterwards.
func (m *MedicationService) ToggleTaken(id string, idx int) ([]bool, error) {
	m.e.mu.Lock()
	defer m.e.mu.Unlock()
	m.ensureLoadedLocked()

	mi := m.indexLocked(id)
	if mi < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMedication, id)
	}
	n := len(m.meds[mi].ScheduledTimes)
	if idx < 0 || idx >= n {
		return nil, fmt.Errorf("%w: %d of %d", ErrDoseIndex, idx, n)
	}

	flags, ok := m.taken[id]
	if !ok || len(flags) != n {
		flags = make([]bool, n)
	}
	flags[idx] = !flags[idx]
	m.taken[id] = flags

	m.persistTakenLocked()
	m.e.bumpLocked()
	return slices.Clone(flags), nil
}

// NextDose returns the untaken doses to show next, or nil when every dose
// of the day is taken.
func (m *MedicationService) NextDose(now time.Time) *models.DoseGroup {
	m.e.mu.Lock()
	defer m.e.mu.Unlock()
	m.ensureLoadedLocked()
	return models.NextDoses(m.meds, m.taken, now)
}

// NextMidnight is when the next rollover is due.
func (m *MedicationService) NextMidnight(now time.Time) time.Time {
	return models.NextMidnight(now)
}

func (m *MedicationService) indexLocked(id string) int {
	return slices.IndexFunc(m.meds, func(med models.Medication) bool {
		return med.ID == id
	})
}

func cloneMedication(med models.Medication) models.Medication {
	med.ScheduledTimes = slices.Clone(med.ScheduledTimes)
	return med
}

var _ MedicationServiceInterface = (*MedicationService)(nil)
