package testutil

import (
	"context"
	"dailytrack/internal/providers"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu                sync.Mutex
	PersistenceWrites int
	PersistenceErrors int
	DaysTotal         int
	ReconcileChanges  map[string]int
	Rollovers         int
	FastingActive     bool
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits(_ string)                            {}
func (m *MockMetrics) IncCacheMisses(_ string)                          {}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistenceWrites++
}

func (m *MockMetrics) IncPersistenceErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistenceErrors++
}

func (m *MockMetrics) SetDaysTotal(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DaysTotal = count
}

func (m *MockMetrics) AddReconcileChanges(metric string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReconcileChanges == nil {
		m.ReconcileChanges = make(map[string]int)
	}
	m.ReconcileChanges[metric] += count
}

func (m *MockMetrics) IncRollovers() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rollovers++
}

func (m *MockMetrics) SetFastingActive(active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FastingActive = active
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data = make(map[string][]byte)
}

// MockCompressor implements storage.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

// MockGateway implements storage.GatewayInterface over a map, recording
// every Set and Remove. SetFn/GetFn override behavior when set.
type MockGateway struct {
	mu      sync.Mutex
	Data    map[string]string
	Sets    []string
	Removes []string
	SetFn   func(key, value string) error
	GetFn   func(key string) (string, bool, error)
}

func NewMockGateway() *MockGateway {
	return &MockGateway{Data: make(map[string]string)}
}

func (m *MockGateway) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetFn != nil {
		return m.GetFn(key)
	}
	v, ok := m.Data[key]
	return v, ok, nil
}

func (m *MockGateway) Set(_ context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sets = append(m.Sets, key)
	if m.SetFn != nil {
		if err := m.SetFn(key, value); err != nil {
			return err
		}
	}
	m.Data[key] = value
	return nil
}

func (m *MockGateway) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Removes = append(m.Removes, key)
	delete(m.Data, key)
	return nil
}

func (m *MockGateway) Close() error { return nil }

// SetCount returns how many times key was written.
func (m *MockGateway) SetCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, k := range m.Sets {
		if k == key {
			n++
		}
	}
	return n
}

// Value returns the stored payload for key.
func (m *MockGateway) Value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Data[key]
	return v, ok
}

// MockStore implements storage.StoreInterface with synchronous writes so
// tests can count exactly what was persisted.
type MockStore struct {
	mu      sync.Mutex
	Data    map[string]string
	Puts    []string
	Deletes []string
	GetErr  error
}

func NewMockStore() *MockStore {
	return &MockStore{Data: make(map[string]string)}
}

func (m *MockStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	v, ok := m.Data[key]
	return v, ok, nil
}

func (m *MockStore) Put(key string, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Puts = append(m.Puts, key)
	m.Data[key] = value
}

func (m *MockStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletes = append(m.Deletes, key)
	delete(m.Data, key)
}

func (m *MockStore) Flush(context.Context) error { return nil }

// PutCount returns how many times key was written.
func (m *MockStore) PutCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, k := range m.Puts {
		if k == key {
			n++
		}
	}
	return n
}

// Value returns the stored payload for key.
func (m *MockStore) Value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Data[key]
	return v, ok
}

// Seed stores value under key without counting it as a write.
func (m *MockStore) Seed(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}
