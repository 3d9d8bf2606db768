package cache_utils

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

const (
	connectionTestKey   = "nesttelemetry:connection_test"
	connectionTestValue = "valkey_is_working"
	connectionTimeout   = 3 * time.Second
)

// TestCacheConnection writes, reads back and removes a test key.
func TestCacheConnection(ctx context.Context, client valkey.Client) error {
	ctx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	setCmd := client.B().Set().Key(connectionTestKey).Value(connectionTestValue).Ex(time.Minute).Build()
	if err := client.Do(ctx, setCmd).Error(); err != nil {
		return fmt.Errorf("cache write failed: %w", err)
	}

	value, err := client.Do(ctx, client.B().Get().Key(connectionTestKey).Build()).ToString()
	if err != nil {
		return fmt.Errorf("cache read failed: %w", err)
	}

	if value != connectionTestValue {
		return fmt.Errorf("cache returned unexpected value %q", value)
	}

	if err := client.Do(ctx, client.B().Del().Key(connectionTestKey).Build()).Error(); err != nil {
		return fmt.Errorf("cache cleanup failed: %w", err)
	}

	return nil
}
