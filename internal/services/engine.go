package services

import (
	"context"
	"dailytrack/internal/providers"
	"dailytrack/internal/storage"
	"errors"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

type EngineInterface interface {
	Now() time.Time
	Local(t time.Time) time.Time
	Revision() uint64
	Flush(ctx context.Context) error
}

// Engine is the shared state container every service mutates through. All
// reads and writes of service state happen under mu, so a read-modify-write
// always observes the previous mutation.
type Engine struct {
	mu       sync.Mutex
	store    storage.StoreInterface
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	clock    Clock
	revision uint64
}

func NewEngine(store storage.StoreInterface, logger providers.Logger, metrics providers.MetricsProviderInterface, clock Clock) *Engine {
	return &Engine{
		store:   store,
		logger:  logger,
		metrics: metrics,
		clock:   clock,
	}
}

func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// Local converts t to the clock's zone, which defines calendar days.
func (e *Engine) Local(t time.Time) time.Time {
	return t.In(e.clock.Now().Location())
}

// Revision changes whenever engine state changes.
func (e *Engine) Revision() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.revision
}

// Flush blocks until every queued write has reached the gateway.
func (e *Engine) Flush(ctx context.Context) error {
	return e.store.Flush(ctx)
}

func (e *Engine) bumpLocked() {
	e.revision++
}

// putJSONLocked queues v under key. Encoding failures are logged; the
// in-memory state stays authoritative either way.
func (e *Engine) putJSONLocked(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		e.logger.Errorf(providers.TypeStorage, "Error while encoding %s: %s", key, err)
		return
	}
	e.store.Put(key, string(data))
}

// loadJSON decodes key into v. A missing, unreadable or malformed payload
// leaves v untouched and reports false.
func (e *Engine) loadJSON(ctx context.Context, key string, v any) bool {
	err := storage.LoadJSON(ctx, e.store, key, v)
	switch {
	case err == nil:
		return true
	case errors.Is(err, storage.ErrNotFound):
		e.logger.Debugf(providers.TypeStorage, "No stored %s", key)
	case errors.Is(err, storage.ErrMalformed):
		e.logger.Warnf(providers.TypeStorage, "Ignoring stored %s: %s", key, err)
	default:
		e.logger.Errorf(providers.TypeStorage, "Error while loading %s: %s", key, err)
	}
	return false
}

var _ EngineInterface = (*Engine)(nil)
