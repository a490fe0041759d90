package models

import (
	"math"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPatch_ApplyPreservesUnrelatedFields(t *testing.T) {
	rec := DailyRecord{Steps: Float(7500), WaterOz: Float(32)}

	out := RecordPatch{WaterOz: Float(40), FastedHours: Float(16)}.Apply(rec)

	assert.Equal(t, 7500.0, *out.Steps)
	assert.Equal(t, 40.0, *out.WaterOz)
	assert.Equal(t, 16.0, *out.FastedHours)
	assert.Nil(t, out.Weight)
	assert.Nil(t, out.SodaOz)

	// input untouched
	assert.Equal(t, 32.0, *rec.WaterOz)
	assert.Nil(t, rec.FastedHours)
}

func TestRecordPatch_ApplyDoesNotAlias(t *testing.T) {
	p := RecordPatch{Steps: Float(100)}
	out := p.Apply(DailyRecord{})
	*p.Steps = 999
	assert.Equal(t, 100.0, *out.Steps)
}

func TestRecordPatch_EveryMetricRoundTrip(t *testing.T) {
	base := DailyRecord{
		Steps: Float(1), Weight: Float(2), WaterOz: Float(3), SodaOz: Float(4), FastedHours: Float(5),
	}
	for _, m := range Metrics {
		out := PatchOf(m, 42).Apply(base)
		for _, other := range Metrics {
			v, ok := out.Value(other)
			require.True(t, ok)
			if other == m {
				assert.Equal(t, 42.0, v, other)
			} else {
				want, _ := base.Value(other)
				assert.Equal(t, want, v, other)
			}
		}
	}
}

func TestDailyRecord_AbsentIsNotZero(t *testing.T) {
	zero := DailyRecord{Steps: Float(0)}
	absent := DailyRecord{}

	_, ok := zero.Value(MetricSteps)
	assert.True(t, ok)
	_, ok = absent.Value(MetricSteps)
	assert.False(t, ok)
	assert.False(t, zero.Equal(absent))
	assert.True(t, absent.IsEmpty())
	assert.False(t, zero.IsEmpty())
	assert.Equal(t, -1.0, absent.ValueOr(MetricSteps, -1))
}

func TestDailyRecord_JSONOmitsAbsent(t *testing.T) {
	data, err := json.Marshal(DailyRecord{WaterOz: Float(0)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"waterOz":0}`, string(data))
}

func TestRecordPatch_Validate(t *testing.T) {
	assert.NoError(t, RecordPatch{Steps: Float(0)}.Validate())
	assert.Error(t, RecordPatch{WaterOz: Float(-1)}.Validate())
	assert.Error(t, RecordPatch{Weight: Float(math.NaN())}.Validate())
	assert.True(t, RecordPatch{}.IsEmpty())
	assert.False(t, PatchOf(MetricSodaOz, 1).IsEmpty())
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("fastedHours")
	require.NoError(t, err)
	assert.Equal(t, MetricFastedHours, m)

	_, err = ParseMetric("calories")
	assert.Error(t, err)
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatClock(0))
	assert.Equal(t, "00:00:00", FormatClock(-5*time.Second))
	assert.Equal(t, "01:02:03", FormatClock(time.Hour+2*time.Minute+3*time.Second))
	assert.Equal(t, "26:00:00", FormatClock(26*time.Hour))
}

func TestRoundHours(t *testing.T) {
	assert.Equal(t, 16.0, RoundHours(16*time.Hour))
	assert.Equal(t, 1.33, RoundHours(80*time.Minute))
	assert.Equal(t, 0.01, RoundHours(36*time.Second))
}
