package storage

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
)

// Keys used by the state engine.
const (
	KeyDailyLog      = "DAILY_LOG"
	KeyFastSession   = "FAST_SESSION"
	KeyLastMeal      = "LAST_MEAL"
	KeyMedications   = "MEDICATIONS"
	KeyTakenTimes    = "TAKEN_TIMES"
	KeyWeightEntries = "WEIGHT_ENTRIES"
)

var (
	ErrNotFound  = errors.New("key not found")
	ErrMalformed = errors.New("malformed payload")
	ErrClosed    = errors.New("gateway closed")
)

// GatewayInterface is the durable key to string store. Get reports a missing
// key with ok=false and a nil error.
type GatewayInterface interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Reader is the read half every store exposes to services.
type Reader interface {
	Get(ctx context.Context, key string) (string, bool, error)
}

// LoadJSON decodes the payload stored under key into v. It returns ErrNotFound
// for an absent key and an error wrapping ErrMalformed when the payload does
// not decode; callers treat both as "no data".
func LoadJSON(ctx context.Context, r Reader, key string, v any) error {
	raw, ok, err := r.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("reading %s: %w", key, err)
	}
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
	}
	return nil
}
