package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bitesapp/bites/internal/domain/directory"
	"github.com/bitesapp/bites/internal/infra/config"
	apperrors "github.com/bitesapp/bites/pkg/errors"
)

type stubDirectory struct {
	createFn      func(ctx context.Context, req directory.CreateRequest) (directory.RestaurantWithCuisines, error)
	getFn         func(ctx context.Context, id string) (directory.RestaurantWithCuisines, error)
	listFn        func(ctx context.Context, page directory.Page) ([]directory.Restaurant, error)
	addReviewFn   func(ctx context.Context, restaurantID string, rating float64, text string) (directory.Review, directory.Restaurant, error)
	listReviewsFn func(ctx context.Context, restaurantID string, page directory.Page) ([]directory.Review, error)
	deleteFn      func(ctx context.Context, restaurantID, reviewID string) error
}

func (s *stubDirectory) Create(ctx context.Context, req directory.CreateRequest) (directory.RestaurantWithCuisines, error) {
	return s.createFn(ctx, req)
}

func (s *stubDirectory) Get(ctx context.Context, id string) (directory.RestaurantWithCuisines, error) {
	return s.getFn(ctx, id)
}

func (s *stubDirectory) List(ctx context.Context, page directory.Page) ([]directory.Restaurant, error) {
	return s.listFn(ctx, page)
}

func (s *stubDirectory) AddReview(ctx context.Context, restaurantID string, rating float64, text string) (directory.Review, directory.Restaurant, error) {
	return s.addReviewFn(ctx, restaurantID, rating, text)
}

func (s *stubDirectory) ListReviews(ctx context.Context, restaurantID string, page directory.Page) ([]directory.Review, error) {
	return s.listReviewsFn(ctx, restaurantID, page)
}

func (s *stubDirectory) DeleteReview(ctx context.Context, restaurantID, reviewID string) error {
	return s.deleteFn(ctx, restaurantID, reviewID)
}

func (s *stubDirectory) SetDetails(context.Context, string, json.RawMessage) error { return nil }

func (s *stubDirectory) Details(context.Context, string) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (s *stubDirectory) Cuisines(context.Context) ([]string, error) {
	return []string{"italian"}, nil
}

func (s *stubDirectory) RestaurantNamesByCuisine(context.Context, string) ([]string, error) {
	return []string{"Pasta Place"}, nil
}

type stubWeather struct {
	byRestaurantFn func(ctx context.Context, restaurantID string) (json.RawMessage, error)
}

func (s *stubWeather) ByRestaurant(ctx context.Context, restaurantID string) (json.RawMessage, error) {
	return s.byRestaurantFn(ctx, restaurantID)
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Address:        ":0",
			ReadTimeout:    time.Second,
			WriteTimeout:   time.Second,
			AllowedOrigins: []string{"*"},
		},
		Directory: config.DirectoryConfig{
			DefaultPageSize: 10,
			MaxPageSize:     100,
		},
	}
}

func newRouterUnderTest(t *testing.T, dir *stubDirectory, wx *stubWeather) http.Handler {
	t.Helper()
	if wx == nil {
		wx = &stubWeather{byRestaurantFn: func(context.Context, string) (json.RawMessage, error) {
			return json.RawMessage(`{}`), nil
		}}
	}
	cfg := testConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(dir, wx, cfg, logger)
	return NewRouter(cfg, handler).Handler
}

func performRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, body []byte) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

func TestRouter_CreateRestaurantSuccess(t *testing.T) {
	dir := &stubDirectory{
		createFn: func(_ context.Context, req directory.CreateRequest) (directory.RestaurantWithCuisines, error) {
			require.Equal(t, "Pasta Place", req.Name)
			require.Equal(t, []string{"italian"}, req.Cuisines)
			return directory.RestaurantWithCuisines{
				Restaurant: directory.Restaurant{ID: "r1", Name: req.Name, Location: req.Location},
				Cuisines:   req.Cuisines,
			}, nil
		},
	}

	recorder := performRequest(newRouterUnderTest(t, dir, nil), http.MethodPost, "/api/restaurants",
		`{"name":"Pasta Place","location":"12.34,56.78","cuisines":["italian"]}`)
	require.Equal(t, http.StatusCreated, recorder.Code)

	env := decodeEnvelope(t, recorder.Body.Bytes())
	require.True(t, env.Success)

	var got directory.RestaurantWithCuisines
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Equal(t, "r1", got.ID)
}

func TestRouter_CreateRestaurantMissingFields(t *testing.T) {
	dir := &stubDirectory{}

	recorder := performRequest(newRouterUnderTest(t, dir, nil), http.MethodPost, "/api/restaurants",
		`{"name":"No Location"}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	env := decodeEnvelope(t, recorder.Body.Bytes())
	require.False(t, env.Success)
	require.NotEmpty(t, env.Message)
}

func TestRouter_GetRestaurantNotFound(t *testing.T) {
	dir := &stubDirectory{
		getFn: func(context.Context, string) (directory.RestaurantWithCuisines, error) {
			return directory.RestaurantWithCuisines{}, apperrors.Wrap(apperrors.CodeNotFound, "restaurant not found", nil)
		},
	}

	recorder := performRequest(newRouterUnderTest(t, dir, nil), http.MethodGet, "/api/restaurants/missing", "")
	require.Equal(t, http.StatusNotFound, recorder.Code)

	env := decodeEnvelope(t, recorder.Body.Bytes())
	require.False(t, env.Success)
	require.Equal(t, "restaurant not found", env.Message)
}

func TestRouter_ListRestaurantsPagination(t *testing.T) {
	var gotPage directory.Page
	dir := &stubDirectory{
		listFn: func(_ context.Context, page directory.Page) ([]directory.Restaurant, error) {
			gotPage = page
			return []directory.Restaurant{{ID: "r1", AvgStars: 4.5}}, nil
		},
	}

	recorder := performRequest(newRouterUnderTest(t, dir, nil), http.MethodGet, "/api/restaurants?page=2&limit=5", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, directory.Page{Page: 2, Limit: 5}, gotPage)

	env := decodeEnvelope(t, recorder.Body.Bytes())
	require.True(t, env.Success)
}

func TestRouter_ListRestaurantsDefaultsAndCaps(t *testing.T) {
	var gotPage directory.Page
	dir := &stubDirectory{
		listFn: func(_ context.Context, page directory.Page) ([]directory.Restaurant, error) {
			gotPage = page
			return nil, nil
		},
	}
	router := newRouterUnderTest(t, dir, nil)

	recorder := performRequest(router, http.MethodGet, "/api/restaurants", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, directory.Page{Page: 1, Limit: 10}, gotPage)

	recorder = performRequest(router, http.MethodGet, "/api/restaurants?limit=500", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, directory.Page{Page: 1, Limit: 100}, gotPage)

	recorder = performRequest(router, http.MethodGet, "/api/restaurants?page=zero", "")
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRouter_AddReviewValidation(t *testing.T) {
	dir := &stubDirectory{
		addReviewFn: func(_ context.Context, restaurantID string, rating float64, text string) (directory.Review, directory.Restaurant, error) {
			return directory.Review{ID: "rev1", RestaurantID: restaurantID, Rating: rating, Text: text},
				directory.Restaurant{ID: restaurantID, AvgStars: rating}, nil
		},
	}
	router := newRouterUnderTest(t, dir, nil)

	recorder := performRequest(router, http.MethodPost, "/api/restaurants/r1/reviews", `{"rating":6}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = performRequest(router, http.MethodPost, "/api/restaurants/r1/reviews", `{"rating":4,"text":"solid"}`)
	require.Equal(t, http.StatusCreated, recorder.Code)

	env := decodeEnvelope(t, recorder.Body.Bytes())
	require.True(t, env.Success)
}

func TestRouter_DeleteReviewNotFound(t *testing.T) {
	dir := &stubDirectory{
		deleteFn: func(context.Context, string, string) error {
			return apperrors.Wrap(apperrors.CodeNotFound, "review not found", nil)
		},
	}

	recorder := performRequest(newRouterUnderTest(t, dir, nil), http.MethodDelete, "/api/restaurants/r1/reviews/rev1", "")
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestRouter_WeatherStatusMapping(t *testing.T) {
	wx := &stubWeather{
		byRestaurantFn: func(context.Context, string) (json.RawMessage, error) {
			return nil, apperrors.Wrap(apperrors.CodeUpstreamError, "weather provider call failed", nil)
		},
	}
	dir := &stubDirectory{}

	recorder := performRequest(newRouterUnderTest(t, dir, wx), http.MethodGet, "/api/restaurants/r1/weather", "")
	require.Equal(t, http.StatusBadGateway, recorder.Code)

	env := decodeEnvelope(t, recorder.Body.Bytes())
	require.False(t, env.Success)
}

func TestRouter_WeatherSuccessPassesPayloadThrough(t *testing.T) {
	wx := &stubWeather{
		byRestaurantFn: func(_ context.Context, restaurantID string) (json.RawMessage, error) {
			require.Equal(t, "r1", restaurantID)
			return json.RawMessage(`{"temp":30.1,"humidity":82}`), nil
		},
	}
	dir := &stubDirectory{}

	recorder := performRequest(newRouterUnderTest(t, dir, wx), http.MethodGet, "/api/restaurants/r1/weather", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	env := decodeEnvelope(t, recorder.Body.Bytes())
	require.True(t, env.Success)
	require.JSONEq(t, `{"temp":30.1,"humidity":82}`, string(env.Data))
}

func TestRouter_ListCuisines(t *testing.T) {
	dir := &stubDirectory{}

	recorder := performRequest(newRouterUnderTest(t, dir, nil), http.MethodGet, "/api/cuisines", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	env := decodeEnvelope(t, recorder.Body.Bytes())
	require.True(t, env.Success)
	require.JSONEq(t, `["italian"]`, string(env.Data))
}
