// Package storage provides the durable key-value store the log pipeline uses
// to persist the active user id across restarts.
package storage

import (
	"context"
	"errors"
)

// UserIDKey is the fixed key the persisted user id lives under.
const UserIDKey = "userId"

var ErrStoreClosed = errors.New("key-value store is closed")

type KeyValueStore interface {
	// GetItem returns the value and true, or "" and false when the key is absent.
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
}
