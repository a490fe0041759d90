package models

import (
	"fmt"
	"math"
)

type Metric string

const (
	MetricSteps       Metric = "steps"
	MetricWeight      Metric = "weight"
	MetricWaterOz     Metric = "waterOz"
	MetricSodaOz      Metric = "sodaOz"
	MetricFastedHours Metric = "fastedHours"
)

var Metrics = []Metric{MetricSteps, MetricWeight, MetricWaterOz, MetricSodaOz, MetricFastedHours}

func ParseMetric(s string) (Metric, error) {
	for _, m := range Metrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

type Liquid string

const (
	LiquidWater Liquid = "water"
	LiquidSoda  Liquid = "soda"
)

// DailyRecord holds the observations of one calendar day. A nil field means
// nothing was observed that day, which is not the same as an observed zero.
type DailyRecord struct {
	Steps       *float64 `json:"steps,omitempty"`
	Weight      *float64 `json:"weight,omitempty"`
	WaterOz     *float64 `json:"waterOz,omitempty"`
	SodaOz      *float64 `json:"sodaOz,omitempty"`
	FastedHours *float64 `json:"fastedHours,omitempty"`
}

func Float(v float64) *float64 {
	return &v
}

func (r *DailyRecord) field(m Metric) **float64 {
	switch m {
	case MetricSteps:
		return &r.Steps
	case MetricWeight:
		return &r.Weight
	case MetricWaterOz:
		return &r.WaterOz
	case MetricSodaOz:
		return &r.SodaOz
	case MetricFastedHours:
		return &r.FastedHours
	}
	return nil
}

// Value returns the observation for m and whether there was one.
func (r DailyRecord) Value(m Metric) (float64, bool) {
	f := r.field(m)
	if f == nil || *f == nil {
		return 0, false
	}
	return **f, true
}

// ValueOr returns the observation for m, or def when absent.
func (r DailyRecord) ValueOr(m Metric, def float64) float64 {
	if v, ok := r.Value(m); ok {
		return v
	}
	return def
}

func (r DailyRecord) IsEmpty() bool {
	for _, m := range Metrics {
		if _, ok := r.Value(m); ok {
			return false
		}
	}
	return true
}

func (r DailyRecord) Equal(o DailyRecord) bool {
	for _, m := range Metrics {
		a, okA := r.Value(m)
		b, okB := o.Value(m)
		if okA != okB || a != b {
			return false
		}
	}
	return true
}

// Clone copies every pointer so the result shares no memory with r.
func (r DailyRecord) Clone() DailyRecord {
	var out DailyRecord
	for _, m := range Metrics {
		if v, ok := r.Value(m); ok {
			*out.field(m) = Float(v)
		}
	}
	return out
}

// RecordPatch is a partial update of a DailyRecord. Set fields replace the
// stored value; unset fields leave the stored value untouched. A patch never
// clears a field.
type RecordPatch struct {
	Steps       *float64 `json:"steps,omitempty"`
	Weight      *float64 `json:"weight,omitempty"`
	WaterOz     *float64 `json:"waterOz,omitempty"`
	SodaOz      *float64 `json:"sodaOz,omitempty"`
	FastedHours *float64 `json:"fastedHours,omitempty"`
}

func PatchOf(m Metric, v float64) RecordPatch {
	var p RecordPatch
	if f := p.field(m); f != nil {
		*f = Float(v)
	}
	return p
}

func (p *RecordPatch) field(m Metric) **float64 {
	switch m {
	case MetricSteps:
		return &p.Steps
	case MetricWeight:
		return &p.Weight
	case MetricWaterOz:
		return &p.WaterOz
	case MetricSodaOz:
		return &p.SodaOz
	case MetricFastedHours:
		return &p.FastedHours
	}
	return nil
}

func (p RecordPatch) IsEmpty() bool {
	for _, m := range Metrics {
		if *p.field(m) != nil {
			return false
		}
	}
	return true
}

// Validate rejects values that cannot be observations.
func (p RecordPatch) Validate() error {
	for _, m := range Metrics {
		f := *p.field(m)
		if f == nil {
			continue
		}
		if math.IsNaN(*f) || math.IsInf(*f, 0) || *f < 0 {
			return fmt.Errorf("%s: invalid value %v", m, *f)
		}
	}
	return nil
}

// Apply returns a new record with p's set fields overriding rec.
func (p RecordPatch) Apply(rec DailyRecord) DailyRecord {
	out := rec.Clone()
	for _, m := range Metrics {
		if f := *p.field(m); f != nil {
			*out.field(m) = Float(*f)
		}
	}
	return out
}
