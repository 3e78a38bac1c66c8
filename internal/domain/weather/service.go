package weather

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/bitesapp/bites/pkg/errors"
)

// Config controls cache behavior for weather lookups.
type Config struct {
	CacheTTL time.Duration
}

// Provider is the external weather lookup, called by geographic coordinates.
// The payload is opaque and cached verbatim.
type Provider interface {
	Current(ctx context.Context, lon, lat float64) (json.RawMessage, error)
}

// Cache stores provider payloads per restaurant id with a TTL; an expired
// entry reads as absent.
type Cache interface {
	Get(ctx context.Context, restaurantID string) (json.RawMessage, bool, error)
	Set(ctx context.Context, restaurantID string, payload json.RawMessage, ttl time.Duration) error
}

// LocationSource resolves a restaurant id to its "lon,lat" location string.
type LocationSource interface {
	Location(ctx context.Context, restaurantID string) (string, bool, error)
}

// Service answers weather lookups cache-aside.
type Service interface {
	ByRestaurant(ctx context.Context, restaurantID string) (json.RawMessage, error)
}

type service struct {
	cfg       Config
	cache     Cache
	provider  Provider
	locations LocationSource
	logger    *slog.Logger
}

// NewService wires up the weather domain.
func NewService(cfg Config, cache Cache, provider Provider, locations LocationSource, logger *slog.Logger) Service {
	return &service{
		cfg:       cfg,
		cache:     cache,
		provider:  provider,
		locations: locations,
		logger:    logger.With("component", "weather.service"),
	}
}

func (s *service) ByRestaurant(ctx context.Context, restaurantID string) (json.RawMessage, error) {
	cached, hit, err := s.cache.Get(ctx, restaurantID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreError, "weather cache read failed", err)
	}
	if hit {
		return cached, nil
	}

	location, found, err := s.locations.Location(ctx, restaurantID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreError, "fetch restaurant failed", err)
	}
	if !found {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "restaurant not found", nil)
	}
	lon, lat, err := parseLocation(location)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeNoLocation, "restaurant has no usable coordinates", err)
	}

	payload, err := s.provider.Current(ctx, lon, lat)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUpstreamError, "weather provider call failed", err)
	}

	// A failed cache write must not fail the request; the next miss retries.
	if err := s.cache.Set(ctx, restaurantID, payload, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("weather cache write failed", "restaurantId", restaurantID, "error", err)
	}
	return payload, nil
}

func parseLocation(location string) (lon, lat float64, err error) {
	parts := strings.Split(strings.TrimSpace(location), ",")
	if len(parts) != 2 {
		return 0, 0, apperrors.Wrap(apperrors.CodeNoLocation, "location is not lon,lat", nil)
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, err
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, err
	}
	return lon, lat, nil
}
