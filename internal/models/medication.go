package models

import (
	"slices"
	"time"
)

type Medication struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	DoseCount      int         `json:"doseCount"`
	ScheduledTimes []TimeOfDay `json:"scheduledTimes"`
}

// TakenState maps a medication id to one flag per scheduled time.
type TakenState map[string][]bool

// TakenSnapshot is the persisted form of TakenState. Day is the last day the
// flags were valid for.
type TakenSnapshot struct {
	Day  CalendarDay `json:"day"`
	Data TakenState  `json:"data"`
}

func (ts TakenState) Clone() TakenState {
	out := make(TakenState, len(ts))
	for id, flags := range ts {
		out[id] = slices.Clone(flags)
	}
	return out
}

// Reset sets every medication's flags to all-false and drops entries for
// medications that no longer exist.
func (ts TakenState) Reset(meds []Medication) {
	for id := range ts {
		delete(ts, id)
	}
	for _, med := range meds {
		ts[med.ID] = make([]bool, len(med.ScheduledTimes))
	}
}

// Reconcile repairs ts against meds: missing or wrongly sized entries become
// all-false, entries for unknown medications are dropped. Reports whether
// anything changed.
func (ts TakenState) Reconcile(meds []Medication) bool {
	changed := false
	known := make(map[string]struct{}, len(meds))
	for _, med := range meds {
		known[med.ID] = struct{}{}
		if flags, ok := ts[med.ID]; !ok || len(flags) != len(med.ScheduledTimes) {
			ts[med.ID] = make([]bool, len(med.ScheduledTimes))
			changed = true
		}
	}
	for id := range ts {
		if _, ok := known[id]; !ok {
			delete(ts, id)
			changed = true
		}
	}
	return changed
}

type Dose struct {
	MedicationID string    `json:"medicationId"`
	Name         string    `json:"name"`
	DoseCount    int       `json:"doseCount"`
	Index        int       `json:"index"`
	At           TimeOfDay `json:"at"`
}

// DoseGroup is every untaken dose scheduled at the same instant.
type DoseGroup struct {
	Time    time.Time `json:"time"`
	Overdue bool      `json:"overdue"`
	Doses   []Dose    `json:"doses"`
}

// NextDoses picks the group to show next: the earliest overdue untaken dose
// time if one exists, otherwise the earliest upcoming one. Doses sharing that
// exact time are grouped. Scheduled times are projected onto now's date.
func NextDoses(meds []Medication, taken TakenState, now time.Time) *DoseGroup {
	var overdue, upcoming *DoseGroup

	for _, med := range meds {
		flags := taken[med.ID]
		for idx, tod := range med.ScheduledTimes {
			if idx < len(flags) && flags[idx] {
				continue
			}
			at := tod.On(now)
			dose := Dose{MedicationID: med.ID, Name: med.Name, DoseCount: med.DoseCount, Index: idx, At: tod}
			if at.After(now) {
				upcoming = addDose(upcoming, at, dose, false)
			} else {
				overdue = addDose(overdue, at, dose, true)
			}
		}
	}

	if overdue != nil {
		return overdue
	}
	return upcoming
}

func addDose(g *DoseGroup, at time.Time, dose Dose, overdue bool) *DoseGroup {
	switch {
	case g == nil || at.Before(g.Time):
		return &DoseGroup{Time: at, Overdue: overdue, Doses: []Dose{dose}}
	case at.Equal(g.Time):
		g.Doses = append(g.Doses, dose)
	}
	return g
}
