package cache

import (
	"crypto/tls"
	"nesttelemetry/internal/config"
	"sync"

	"github.com/valkey-io/valkey-go"
)

var (
	once         sync.Once
	valkeyClient valkey.Client
	clientErr    error
)

// GetCache returns the shared Valkey client built from VALKEY_* settings.
// The connection is attempted once; a failure is returned on every call.
func GetCache() (valkey.Client, error) {
	once.Do(func() {
		env := config.GetEnv()

		options := valkey.ClientOption{
			InitAddress: []string{env.ValkeyHost + ":" + env.ValkeyPort},
			Password:    env.ValkeyPassword,
			Username:    env.ValkeyUsername,
		}

		if env.ValkeyIsSsl {
			options.TLSConfig = &tls.Config{
				ServerName: env.ValkeyHost,
			}
		}

		valkeyClient, clientErr = valkey.NewClient(options)
	})

	return valkeyClient, clientErr
}
