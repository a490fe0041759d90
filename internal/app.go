package internal

import (
	"context"
	"dailytrack/internal/controllers"
	"dailytrack/internal/providers"
	"dailytrack/internal/scheduler/interfaces"
	"dailytrack/internal/services"
	"dailytrack/internal/storage"
	"dailytrack/internal/structures"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type App struct {
	WebServer *http.Server

	conf      *structures.Config
	logger    providers.Logger
	scheduler interfaces.SchedulerInterface
	activity  services.ActivityServiceInterface
	writer    *storage.Writer
}

// NewApp assembles the HTTP surface and restores engine state. It does not
// start serving; see Run.
func NewApp(
	apiController *controllers.ApiController,
	healthController *controllers.HealthController,
	scheduler interfaces.SchedulerInterface,
	activity services.ActivityServiceInterface,
	writer *storage.Writer,
	conf *structures.Config,
	logger providers.Logger,
	router providers.RouterProviderInterface,
	metrics providers.MetricsProviderInterface,
) (*App, error) {
	routes := router.GetRoutes()
	apiMux := http.NewServeMux()
	for _, route := range routes {
		apiMux.Handle(route.Url, route.Handler)
	}

	// CORS answers preflights before they reach the metrics layer.
	instrumentedAPI := providers.CorsMiddleware(conf, providers.MetricsMiddleware(metrics, routes, apiMux))

	// Outer mux: infrastructure + instrumented API
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthController.Health)
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/", instrumentedAPI)

	logger.Infof(providers.TypeApp, "Starting %s", conf.AppName)
	if err := scheduler.Restore(); err != nil {
		logger.Errorf(providers.TypeApp, "Restore error: %s", err)
	}

	return &App{
		WebServer: &http.Server{
			Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		conf:      conf,
		logger:    logger,
		scheduler: scheduler,
		activity:  activity,
		writer:    writer,
	}, nil
}

// Run serves until SIGINT or SIGTERM, then shuts down and flushes state.
func (a *App) Run() error {
	a.scheduler.Init()

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Infof(providers.TypeApp, "Listening HTTP clients on %s", a.WebServer.Addr)
		if err := a.WebServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case <-stop:
		a.logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		runErr = fmt.Errorf("server error: %w", err)
	}

	a.scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.WebServer.Shutdown(ctx); err != nil && runErr == nil {
		runErr = err
	}

	if runErr == nil {
		a.logger.Infof(providers.TypeApp, "gracefully stopped")
	}
	if err := a.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// SyncOnce runs a single reconciliation pass without starting the server.
func (a *App) SyncOnce(ctx context.Context) services.ReconcileResult {
	return a.activity.Reconcile(ctx)
}

// Close flushes pending writes and releases storage and log files.
func (a *App) Close() error {
	defer a.logger.Close()

	persistErr := a.scheduler.Persist()
	if err := a.writer.Close(); err != nil {
		return fmt.Errorf("closing storage: %w", err)
	}
	return persistErr
}
