package weather_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bitesapp/bites/internal/domain/weather"
	"github.com/bitesapp/bites/internal/infra/weathercache"
	apperrors "github.com/bitesapp/bites/pkg/errors"
)

type stubProvider struct {
	payload json.RawMessage
	err     error
	calls   int
	lastLon float64
	lastLat float64
}

func (p *stubProvider) Current(_ context.Context, lon, lat float64) (json.RawMessage, error) {
	p.calls++
	p.lastLon = lon
	p.lastLat = lat
	if p.err != nil {
		return nil, p.err
	}
	return p.payload, nil
}

type stubLocations struct {
	locations map[string]string
}

func (s *stubLocations) Location(_ context.Context, restaurantID string) (string, bool, error) {
	loc, ok := s.locations[restaurantID]
	return loc, ok, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestByRestaurantCachesProviderPayload(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	provider := &stubProvider{payload: json.RawMessage(`{"temp":31.5}`)}
	cache := weathercache.NewMemoryCacheWithClock(clock)
	locations := &stubLocations{locations: map[string]string{"r1": "103.85,1.29"}}
	svc := weather.NewService(weather.Config{CacheTTL: time.Hour}, cache, provider, locations, discardLogger())

	ctx := context.Background()
	first, err := svc.ByRestaurant(ctx, "r1")
	require.NoError(t, err)
	require.JSONEq(t, `{"temp":31.5}`, string(first))
	require.Equal(t, 1, provider.calls)
	require.Equal(t, 103.85, provider.lastLon)
	require.Equal(t, 1.29, provider.lastLat)

	// Within the TTL window the cached payload is served without a second
	// provider call.
	second, err := svc.ByRestaurant(ctx, "r1")
	require.NoError(t, err)
	require.JSONEq(t, string(first), string(second))
	require.Equal(t, 1, provider.calls)

	// After expiry the entry reads as absent and exactly one new call is made.
	now = now.Add(time.Hour + time.Minute)
	third, err := svc.ByRestaurant(ctx, "r1")
	require.NoError(t, err)
	require.JSONEq(t, string(first), string(third))
	require.Equal(t, 2, provider.calls)
}

func TestByRestaurantUnknownRestaurant(t *testing.T) {
	provider := &stubProvider{payload: json.RawMessage(`{}`)}
	svc := weather.NewService(weather.Config{CacheTTL: time.Hour}, weathercache.NewMemoryCache(), provider, &stubLocations{locations: map[string]string{}}, discardLogger())

	_, err := svc.ByRestaurant(context.Background(), "missing")
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	require.Zero(t, provider.calls)
}

func TestByRestaurantNoUsableCoordinates(t *testing.T) {
	provider := &stubProvider{payload: json.RawMessage(`{}`)}
	locations := &stubLocations{locations: map[string]string{
		"blank": "",
		"bad":   "somewhere downtown",
	}}
	svc := weather.NewService(weather.Config{CacheTTL: time.Hour}, weathercache.NewMemoryCache(), provider, locations, discardLogger())

	_, err := svc.ByRestaurant(context.Background(), "blank")
	require.True(t, apperrors.IsCode(err, apperrors.CodeNoLocation))

	_, err = svc.ByRestaurant(context.Background(), "bad")
	require.True(t, apperrors.IsCode(err, apperrors.CodeNoLocation))
	require.Zero(t, provider.calls)
}

func TestByRestaurantProviderFailureNotCached(t *testing.T) {
	provider := &stubProvider{err: errors.New("boom")}
	locations := &stubLocations{locations: map[string]string{"r1": "1,2"}}
	svc := weather.NewService(weather.Config{CacheTTL: time.Hour}, weathercache.NewMemoryCache(), provider, locations, discardLogger())

	ctx := context.Background()
	_, err := svc.ByRestaurant(ctx, "r1")
	require.True(t, apperrors.IsCode(err, apperrors.CodeUpstreamError))

	// No negative caching: the next request retries the provider.
	_, err = svc.ByRestaurant(ctx, "r1")
	require.True(t, apperrors.IsCode(err, apperrors.CodeUpstreamError))
	require.Equal(t, 2, provider.calls)
}
