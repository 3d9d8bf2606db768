package storage

import (
	"context"
	"time"

	"github.com/valkey-io/valkey-go"
)

const (
	defaultValkeyTimeout = 5 * time.Second
	valkeyKeyPrefix      = "nesttelemetry:kv:"
)

// ValkeyStore persists items as plain Valkey strings without expiry.
type ValkeyStore struct {
	client  valkey.Client
	prefix  string
	timeout time.Duration
}

func NewValkeyStore(client valkey.Client) *ValkeyStore {
	return &ValkeyStore{
		client:  client,
		prefix:  valkeyKeyPrefix,
		timeout: defaultValkeyTimeout,
	}
}

func (s *ValkeyStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	if s.client == nil {
		return "", false, ErrStoreClosed
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result := s.client.Do(ctx, s.client.B().Get().Key(s.prefix+key).Build())
	if err := result.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return "", false, nil
		}
		return "", false, err
	}

	value, err := result.ToString()
	if err != nil {
		return "", false, err
	}

	return value, true, nil
}

func (s *ValkeyStore) SetItem(ctx context.Context, key, value string) error {
	if s.client == nil {
		return ErrStoreClosed
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.client.Do(ctx, s.client.B().Set().Key(s.prefix+key).Value(value).Build()).Error()
}
