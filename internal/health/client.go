package health

import (
	"context"
	"dailytrack/internal/models"
	"errors"
)

// ErrUnavailable is returned when no health data service is configured.
var ErrUnavailable = errors.New("health data service unavailable")

// ClientInterface is the boundary to the device's health data service.
type ClientInterface interface {
	QueryStepSamples(ctx context.Context, r models.DateRange) ([]models.Sample, error)
	QueryWeightSamples(ctx context.Context, r models.DateRange) ([]models.Sample, error)
	SaveWeight(ctx context.Context, value float64, unit string) error
}

// NoopClient answers every call with ErrUnavailable.
type NoopClient struct{}

func (NoopClient) QueryStepSamples(context.Context, models.DateRange) ([]models.Sample, error) {
	return nil, ErrUnavailable
}

func (NoopClient) QueryWeightSamples(context.Context, models.DateRange) ([]models.Sample, error) {
	return nil, ErrUnavailable
}

func (NoopClient) SaveWeight(context.Context, float64, string) error {
	return ErrUnavailable
}
