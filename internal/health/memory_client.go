package health

import (
	"context"
	"dailytrack/internal/models"
	"sync"
)

// MemoryClient serves samples from memory and records saved weights.
// Used offline and in tests.
type MemoryClient struct {
	mu      sync.Mutex
	steps   []models.Sample
	weights []models.Sample
	saved   []float64

	StepsErr  error
	WeightErr error
	SaveErr   error
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

func (m *MemoryClient) AddSteps(samples ...models.Sample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, samples...)
}

func (m *MemoryClient) AddWeights(samples ...models.Sample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.weights = append(m.weights, samples...)
}

// Saved returns every value passed to SaveWeight.
func (m *MemoryClient) Saved() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.saved...)
}

func (m *MemoryClient) QueryStepSamples(_ context.Context, r models.DateRange) ([]models.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StepsErr != nil {
		return nil, m.StepsErr
	}
	return inRange(m.steps, r), nil
}

func (m *MemoryClient) QueryWeightSamples(_ context.Context, r models.DateRange) ([]models.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WeightErr != nil {
		return nil, m.WeightErr
	}
	return inRange(m.weights, r), nil
}

func (m *MemoryClient) SaveWeight(_ context.Context, value float64, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.saved = append(m.saved, value)
	return nil
}

func inRange(samples []models.Sample, r models.DateRange) []models.Sample {
	var out []models.Sample
	for _, s := range samples {
		if s.Start.Before(r.Start) || s.Start.After(r.End) {
			continue
		}
		out = append(out, s)
	}
	return out
}

var _ ClientInterface = (*MemoryClient)(nil)
