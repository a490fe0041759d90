package models

import (
	"fmt"
	"math"
	"time"
)

// FastSession is the single fasting interval in progress, if any.
type FastSession struct {
	Start  *time.Time `json:"startTimestamp"`
	Active bool       `json:"active"`
}

type TimerDisplay struct {
	Text     string    `json:"text"`
	Progress float64   `json:"progress"`
	Fasting  bool      `json:"fasting"`
	Target   time.Time `json:"target"`
}

// FormatClock renders d as HH:MM:SS; hours are not wrapped at 24 and
// negative durations render as zero.
func FormatClock(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}

// RoundHours converts d to hours rounded to two decimal places.
func RoundHours(d time.Duration) float64 {
	return Round2(d.Hours())
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
