package models

import (
	"sort"
	"time"
)

// WeightEntry is one manual weight observation.
type WeightEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Sample is one data point from the device's health data service.
type Sample struct {
	Start time.Time `json:"start"`
	Value float64   `json:"value"`
}

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// TrailingDays returns the window of n days ending at now.
func TrailingDays(now time.Time, n int) DateRange {
	return DateRange{Start: now.AddDate(0, 0, -n), End: now}
}

type WeightPolicy string

const (
	// WeightLatest keeps the sample with the latest timestamp of the day.
	WeightLatest WeightPolicy = "latest"
	// WeightFirstNonZero keeps the earliest non-zero sample of the day.
	WeightFirstNonZero WeightPolicy = "first_nonzero"
)

// SumByDay totals samples per local calendar day of loc.
func SumByDay(samples []Sample, loc *time.Location) map[CalendarDay]float64 {
	out := make(map[CalendarDay]float64)
	for _, s := range samples {
		if s.Start.IsZero() {
			continue
		}
		out[DayOf(s.Start.In(loc))] += s.Value
	}
	return out
}

// PickByDay chooses one sample value per local calendar day according to
// policy. Among equal timestamps the later sample in the input wins.
func PickByDay(samples []Sample, loc *time.Location, policy WeightPolicy) map[CalendarDay]float64 {
	type pick struct {
		at    time.Time
		value float64
	}
	picks := make(map[CalendarDay]pick)
	for _, s := range samples {
		if s.Start.IsZero() {
			continue
		}
		day := DayOf(s.Start.In(loc))
		cur, ok := picks[day]
		switch policy {
		case WeightFirstNonZero:
			if s.Value == 0 {
				continue
			}
			if !ok || s.Start.Before(cur.at) {
				picks[day] = pick{at: s.Start, value: s.Value}
			}
		default:
			if !ok || !s.Start.Before(cur.at) {
				picks[day] = pick{at: s.Start, value: s.Value}
			}
		}
	}
	out := make(map[CalendarDay]float64, len(picks))
	for day, p := range picks {
		out[day] = p.value
	}
	return out
}

// NewestFirst returns a copy of entries ordered by timestamp descending.
func NewestFirst(entries []WeightEntry) []WeightEntry {
	out := make([]WeightEntry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}
