package forecastcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/orchardcare/orchard-advisor/internal/domain/forecast"
)

// ValkeyStore caches forecasts in a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "orchard"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

// Get implements forecast.Cache.
func (s *ValkeyStore) Get(ctx context.Context, key string) (forecast.Forecast, bool, error) {
	cmd := s.client.B().Get().Key(s.key(key)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return forecast.Forecast{}, false, nil
		}
		return forecast.Forecast{}, false, err
	}
	var fc forecast.Forecast
	if err := json.Unmarshal([]byte(payload), &fc); err != nil {
		return forecast.Forecast{}, false, err
	}
	return fc, true, nil
}

// Save implements forecast.Cache.
func (s *ValkeyStore) Save(ctx context.Context, key string, fc forecast.Forecast, ttl time.Duration) error {
	payload, err := json.Marshal(fc)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.key(key)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) key(k string) string {
	return s.prefix + ":" + k
}

var _ forecast.Cache = (*ValkeyStore)(nil)
