package weathercache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/bitesapp/bites/internal/domain/weather"
	"github.com/bitesapp/bites/internal/infra/storekeys"
)

// ValkeyCache stores provider payloads with a server-side expiry.
type ValkeyCache struct {
	client valkey.Client
}

// NewValkeyCache constructs the cache backed by Valkey.
func NewValkeyCache(client valkey.Client) *ValkeyCache {
	return &ValkeyCache{client: client}
}

func (c *ValkeyCache) Get(ctx context.Context, restaurantID string) (json.RawMessage, bool, error) {
	payload, err := c.client.Do(ctx, c.client.B().Get().Key(storekeys.Weather(restaurantID)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return json.RawMessage(payload), true, nil
}

func (c *ValkeyCache) Set(ctx context.Context, restaurantID string, payload json.RawMessage, ttl time.Duration) error {
	builder := c.client.B().Set().Key(storekeys.Weather(restaurantID)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

var _ weather.Cache = (*ValkeyCache)(nil)
