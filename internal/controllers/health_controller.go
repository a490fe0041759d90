package controllers

import (
	"dailytrack/internal/services"
	"fmt"
	"net/http"
	"time"
)

type HealthController struct {
	engine    services.EngineInterface
	dailyLog  services.DailyLogServiceInterface
	fasting   services.FastingServiceInterface
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Revision      uint64  `json:"revision"`
	Days          int     `json:"days"`
	Fasting       bool    `json:"fasting"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	respond(w, http.StatusOK, healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Revision:      hc.engine.Revision(),
		Days:          len(hc.dailyLog.All()),
		Fasting:       hc.fasting.Session().Active,
	})
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(engine services.EngineInterface, dailyLog services.DailyLogServiceInterface, fasting services.FastingServiceInterface) *HealthController {
	return &HealthController{
		engine:    engine,
		dailyLog:  dailyLog,
		fasting:   fasting,
		startTime: time.Now(),
	}
}
