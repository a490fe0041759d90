package storage

import (
	"context"
	"dailytrack/internal/providers"
	"dailytrack/internal/structures"
	"sync"
	"time"
)

// StoreInterface is what services persist through: synchronous reads and
// fire-and-forget writes.
type StoreInterface interface {
	Reader
	Put(key string, value string)
	Delete(key string)
	Flush(ctx context.Context) error
}

type pendingOp struct {
	value  string
	remove bool
}

// Writer queues writes and applies them on a single background goroutine.
// Queued writes to the same key coalesce, so a later write supersedes an
// earlier one that has not reached the gateway yet. Failures are logged and
// counted, never returned to the caller.
type Writer struct {
	gw      GatewayInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	timeout time.Duration

	mu       sync.Mutex
	pending  map[string]pendingOp
	order    []string
	inflight map[string]pendingOp
	closed   bool

	// writeMu is held from taking a batch until it is written, so batches
	// reach the gateway in the order they were taken.
	writeMu sync.Mutex

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

const defaultWriteTimeout = 10 * time.Second

func NewWriter(gw GatewayInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) *Writer {
	return newWriter(gw, logger, metrics, defaultWriteTimeout)
}

// NewWriterFromConfig builds a Writer bounded by persistence.writeTimeout.
func NewWriterFromConfig(conf *structures.Config, gw GatewayInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) *Writer {
	timeout := conf.Persistence.WriteTimeout
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	return newWriter(gw, logger, metrics, timeout)
}

func newWriter(gw GatewayInterface, logger providers.Logger, metrics providers.MetricsProviderInterface, timeout time.Duration) *Writer {
	w := &Writer{
		gw:      gw,
		logger:  logger,
		metrics: metrics,
		timeout: timeout,
		pending: make(map[string]pendingOp),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// Get returns the queued value for key if one is pending, otherwise the
// gateway's value.
func (w *Writer) Get(ctx context.Context, key string) (string, bool, error) {
	w.mu.Lock()
	op, ok := w.pending[key]
	if !ok {
		op, ok = w.inflight[key]
	}
	w.mu.Unlock()
	if ok {
		if op.remove {
			return "", false, nil
		}
		return op.value, true, nil
	}
	return w.gw.Get(ctx, key)
}

func (w *Writer) Put(key string, value string) {
	w.enqueue(key, pendingOp{value: value})
}

func (w *Writer) Delete(key string) {
	w.enqueue(key, pendingOp{remove: true})
}

func (w *Writer) enqueue(key string, op pendingOp) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.logger.Warnf(providers.TypeStorage, "Writer closed, dropping write of %s", key)
		return
	}
	if _, ok := w.pending[key]; !ok {
		w.order = append(w.order, key)
	}
	w.pending[key] = op
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Pending reports how many keys are waiting to be written.
func (w *Writer) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

func (w *Writer) take() ([]string, map[string]pendingOp) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) == 0 {
		return nil, nil
	}
	order, batch := w.order, w.pending
	w.order = nil
	w.pending = make(map[string]pendingOp)
	w.inflight = batch
	return order, batch
}

func (w *Writer) drain(ctx context.Context) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	order, batch := w.take()
	var firstErr error
	for _, key := range order {
		if err := w.apply(ctx, key, batch[key]); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	w.mu.Lock()
	w.inflight = nil
	w.mu.Unlock()
	return firstErr
}

func (w *Writer) apply(ctx context.Context, key string, op pendingOp) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	var err error
	if op.remove {
		err = w.gw.Remove(ctx, key)
	} else {
		err = w.gw.Set(ctx, key, op.value)
	}
	w.metrics.ObservePersistenceDuration(time.Since(start))

	if err != nil {
		w.metrics.IncPersistenceErrors()
		w.logger.Errorf(providers.TypeStorage, "Error while persisting %s: %s", key, err)
		return err
	}
	w.logger.Debugf(providers.TypeStorage, "Persisted %s", key)
	return nil
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			_ = w.drain(context.Background())
		case <-w.stop:
			_ = w.drain(context.Background())
			return
		}
	}
}

// Flush writes everything queued so far before returning. It returns the
// first write error of the flushed batch.
func (w *Writer) Flush(ctx context.Context) error {
	return w.drain(ctx)
}

// Close flushes pending writes, stops the worker and closes the gateway.
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.stop)
	<-w.done
	return w.gw.Close()
}

var _ StoreInterface = (*Writer)(nil)
