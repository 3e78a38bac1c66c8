package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/bitesapp/bites/internal/domain/directory"
	"github.com/bitesapp/bites/internal/domain/weather"
	"github.com/bitesapp/bites/internal/infra/config"
	"github.com/bitesapp/bites/internal/infra/directorystore"
	"github.com/bitesapp/bites/internal/infra/weather/openweather"
	"github.com/bitesapp/bites/internal/infra/weathercache"
)

// provideValkeyClient returns nil when no store address is configured or the
// ping fails; dependents fall back to their memory implementations.
func provideValkeyClient(cfg *config.Config, logger *slog.Logger) valkey.Client {
	addr := strings.TrimSpace(cfg.Store.Addr)
	if addr == "" {
		logger.Info("store addr not set, using memory store")
		return nil
	}
	opt, err := buildValkeyOptions(addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return nil
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "error", err)
		client.Close()
		return nil
	}
	logger.Info("valkey store enabled", "addr", addr)
	return client
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideDirectoryStore(client valkey.Client) directory.Store {
	if client == nil {
		return directorystore.NewMemoryStore()
	}
	return directorystore.NewValkeyStore(client)
}

func provideWeatherCache(client valkey.Client) weather.Cache {
	if client == nil {
		return weathercache.NewMemoryCache()
	}
	return weathercache.NewValkeyCache(client)
}

func provideWeatherConfig(cfg *config.Config) weather.Config {
	return weather.Config{
		CacheTTL: cfg.Weather.CacheTTL,
	}
}

func provideWeatherProvider(cfg *config.Config) weather.Provider {
	return openweather.NewClient(cfg.Weather.BaseURL, cfg.Weather.APIKey, cfg.Weather.RequestTimeout)
}

func provideLocationSource(store directory.Store) weather.LocationSource {
	return storeLocationSource{store: store}
}

// storeLocationSource resolves weather lookups through the restaurant record.
type storeLocationSource struct {
	store directory.Store
}

func (s storeLocationSource) Location(ctx context.Context, restaurantID string) (string, bool, error) {
	r, found, err := s.store.Restaurant(ctx, restaurantID)
	if err != nil || !found {
		return "", false, err
	}
	return r.Location, true, nil
}
