package metadata

import (
	"context"
	"time"
)

// Repository is a small key/value store for client bookkeeping such as the
// last successful history refresh.
type Repository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// GetTime reads a value written by SetTime. A missing key yields the zero time.
func GetTime(ctx context.Context, r Repository, key string) (time.Time, error) {
	v, ok, err := r.Get(ctx, key)
	if err != nil || !ok {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

func SetTime(ctx context.Context, r Repository, key string, t time.Time) error {
	return r.Set(ctx, key, t.UTC().Format(time.RFC3339Nano))
}
