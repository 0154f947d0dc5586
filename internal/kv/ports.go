// Package kv defines the key-value persistence port the stores write through.
// Each key holds one whole JSON document; writes replace it entirely.
package kv

import (
	"context"
	"errors"
)

// Keys of the persisted documents.
const (
	KeyLists     = "planeja_data"
	KeySettings  = "planeja_settings"
	KeyInsights  = "planeja_insights"
	KeyReminders = "planeja_reminders"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("kv: key not found")

type (
	Reader interface {
		Get(ctx context.Context, key string) ([]byte, error)
	}

	Writer interface {
		Set(ctx context.Context, key string, value []byte) error
		// Delete is idempotent: removing a missing key is not an error.
		Delete(ctx context.Context, key string) error
	}

	Store interface {
		Reader
		Writer
	}
)
