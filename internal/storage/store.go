// Package storage persists small named client values (credential fields,
// preferences) with explicit expirations so a restarted client observes
// the latest state.
package storage

import (
	"context"
	"errors"
	"time"
)

var ErrEmptyKey = errors.New("storage: empty key")

type Entry struct {
	Key     string
	Value   string
	Expires time.Time // zero means no expiry
}

func (e Entry) Expired(now time.Time) bool {
	return !e.Expires.IsZero() && !now.Before(e.Expires)
}

// Store is implemented by every backend. Put and Delete are write-through:
// when they return nil the change is durable. Expired entries read as absent.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Put(ctx context.Context, e Entry) error
	Delete(ctx context.Context, keys ...string) error
}

// Clock lets tests control expiry.
type Clock func() time.Time
