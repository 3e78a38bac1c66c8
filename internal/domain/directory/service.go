package directory

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/bitesapp/bites/pkg/errors"
)

// Service exposes the restaurant directory operations.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (RestaurantWithCuisines, error)
	Get(ctx context.Context, id string) (RestaurantWithCuisines, error)
	List(ctx context.Context, page Page) ([]Restaurant, error)
	AddReview(ctx context.Context, restaurantID string, rating float64, text string) (Review, Restaurant, error)
	ListReviews(ctx context.Context, restaurantID string, page Page) ([]Review, error)
	DeleteReview(ctx context.Context, restaurantID, reviewID string) error
	SetDetails(ctx context.Context, restaurantID string, doc json.RawMessage) error
	Details(ctx context.Context, restaurantID string) (json.RawMessage, error)
	Cuisines(ctx context.Context) ([]string, error)
	RestaurantNamesByCuisine(ctx context.Context, cuisine string) ([]string, error)
}

type service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires up the directory domain.
func NewService(store Store, logger *slog.Logger) Service {
	return &service{
		store:  store,
		logger: logger.With("component", "directory.service"),
		now:    time.Now,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (RestaurantWithCuisines, error) {
	name := strings.TrimSpace(req.Name)
	location := strings.TrimSpace(req.Location)
	if name == "" {
		return RestaurantWithCuisines{}, apperrors.Wrap(apperrors.CodeInvalidInput, "name cannot be empty", nil)
	}
	if location == "" {
		return RestaurantWithCuisines{}, apperrors.Wrap(apperrors.CodeInvalidInput, "location cannot be empty", nil)
	}
	cuisines := normalizeCuisines(req.Cuisines)

	r := Restaurant{
		ID:       uuid.NewString(),
		Name:     name,
		Location: location,
	}
	if err := s.store.CreateRestaurant(ctx, r); err != nil {
		return RestaurantWithCuisines{}, apperrors.Wrap(apperrors.CodeStoreError, "create restaurant failed", err)
	}
	// Seed the rating index so the restaurant is immediately visible in
	// rating-ordered listings.
	if err := s.store.SetRating(ctx, r.ID, 0); err != nil {
		return RestaurantWithCuisines{}, apperrors.Wrap(apperrors.CodeStoreError, "seed rating index failed", err)
	}
	if len(cuisines) > 0 {
		if err := s.store.AttachCuisines(ctx, r.ID, cuisines); err != nil {
			return RestaurantWithCuisines{}, apperrors.Wrap(apperrors.CodeStoreError, "attach cuisines failed", err)
		}
	}
	s.logger.Info("restaurant created", "id", r.ID, "name", r.Name)
	return RestaurantWithCuisines{Restaurant: r, Cuisines: cuisines}, nil
}

func (s *service) Get(ctx context.Context, id string) (RestaurantWithCuisines, error) {
	r, found, err := s.store.RestaurantAndView(ctx, id)
	if err != nil {
		return RestaurantWithCuisines{}, apperrors.Wrap(apperrors.CodeStoreError, "fetch restaurant failed", err)
	}
	if !found {
		return RestaurantWithCuisines{}, apperrors.Wrap(apperrors.CodeNotFound, "restaurant not found", nil)
	}
	cuisines, err := s.store.RestaurantCuisines(ctx, id)
	if err != nil {
		return RestaurantWithCuisines{}, apperrors.Wrap(apperrors.CodeStoreError, "fetch cuisines failed", err)
	}
	return RestaurantWithCuisines{Restaurant: r, Cuisines: cuisines}, nil
}

func (s *service) List(ctx context.Context, page Page) ([]Restaurant, error) {
	if err := validatePage(page); err != nil {
		return nil, err
	}
	start, end := paginationRange(page.Page, page.Limit)
	ids, err := s.store.TopByRating(ctx, start, end)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreError, "rating listing failed", err)
	}
	if len(ids) == 0 {
		return []Restaurant{}, nil
	}
	records, err := s.store.Restaurants(ctx, ids)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreError, "batch fetch failed", err)
	}
	return records, nil
}

func (s *service) AddReview(ctx context.Context, restaurantID string, rating float64, text string) (Review, Restaurant, error) {
	if rating <= 0 {
		return Review{}, Restaurant{}, apperrors.Wrap(apperrors.CodeInvalidInput, "rating must be positive", nil)
	}
	r, found, err := s.store.Restaurant(ctx, restaurantID)
	if err != nil {
		return Review{}, Restaurant{}, apperrors.Wrap(apperrors.CodeStoreError, "fetch restaurant failed", err)
	}
	if !found {
		return Review{}, Restaurant{}, apperrors.Wrap(apperrors.CodeNotFound, "restaurant not found", nil)
	}

	rev := Review{
		ID:           uuid.NewString(),
		RestaurantID: restaurantID,
		Rating:       rating,
		Text:         text,
		Timestamp:    s.now().UnixMilli(),
	}
	stats, err := s.store.AddReview(ctx, rev)
	if err != nil {
		return Review{}, Restaurant{}, apperrors.Wrap(apperrors.CodeStoreError, "add review failed", err)
	}
	r.TotalStars = stats.TotalStars
	r.AvgStars = stats.AvgStars
	s.logger.Info("review added", "restaurantId", restaurantID, "reviewId", rev.ID, "avgStars", stats.AvgStars)
	return rev, r, nil
}

func (s *service) ListReviews(ctx context.Context, restaurantID string, page Page) ([]Review, error) {
	if err := validatePage(page); err != nil {
		return nil, err
	}
	if err := s.requireRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	start, end := paginationRange(page.Page, page.Limit)
	reviews, err := s.store.Reviews(ctx, restaurantID, start, end)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreError, "list reviews failed", err)
	}
	return reviews, nil
}

func (s *service) DeleteReview(ctx context.Context, restaurantID, reviewID string) error {
	if err := s.requireRestaurant(ctx, restaurantID); err != nil {
		return err
	}
	removed, err := s.store.RemoveReview(ctx, restaurantID, reviewID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStoreError, "remove review failed", err)
	}
	if !removed {
		return apperrors.Wrap(apperrors.CodeNotFound, "review not found", nil)
	}
	s.logger.Info("review removed", "restaurantId", restaurantID, "reviewId", reviewID)
	return nil
}

func (s *service) SetDetails(ctx context.Context, restaurantID string, doc json.RawMessage) error {
	if len(doc) == 0 || !json.Valid(doc) {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "details must be a JSON document", nil)
	}
	if err := s.requireRestaurant(ctx, restaurantID); err != nil {
		return err
	}
	if err := s.store.SetDetails(ctx, restaurantID, doc); err != nil {
		return apperrors.Wrap(apperrors.CodeStoreError, "set details failed", err)
	}
	return nil
}

func (s *service) Details(ctx context.Context, restaurantID string) (json.RawMessage, error) {
	if err := s.requireRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	doc, found, err := s.store.Details(ctx, restaurantID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreError, "fetch details failed", err)
	}
	if !found {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "details not found", nil)
	}
	return doc, nil
}

func (s *service) Cuisines(ctx context.Context) ([]string, error) {
	cuisines, err := s.store.Cuisines(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreError, "list cuisines failed", err)
	}
	return cuisines, nil
}

func (s *service) RestaurantNamesByCuisine(ctx context.Context, cuisine string) ([]string, error) {
	cuisine = strings.TrimSpace(cuisine)
	if cuisine == "" {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "cuisine cannot be empty", nil)
	}
	ids, err := s.store.CuisineMembers(ctx, cuisine)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreError, "cuisine members failed", err)
	}
	if len(ids) == 0 {
		return []string{}, nil
	}
	records, err := s.store.Restaurants(ctx, ids)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreError, "batch fetch failed", err)
	}
	names := make([]string, 0, len(records))
	for _, r := range records {
		if r.Name != "" {
			names = append(names, r.Name)
		}
	}
	return names, nil
}

func (s *service) requireRestaurant(ctx context.Context, id string) error {
	exists, err := s.store.RestaurantExists(ctx, id)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStoreError, "restaurant lookup failed", err)
	}
	if !exists {
		return apperrors.Wrap(apperrors.CodeNotFound, "restaurant not found", nil)
	}
	return nil
}

func validatePage(page Page) error {
	if page.Page < 1 || page.Limit < 1 {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "page and limit must be at least 1", nil)
	}
	return nil
}

func normalizeCuisines(cuisines []string) []string {
	out := make([]string, 0, len(cuisines))
	seen := make(map[string]struct{}, len(cuisines))
	for _, c := range cuisines {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
