package directory

import (
	"context"
	"encoding/json"
)

// RestaurantStore owns the per-restaurant hash record.
type RestaurantStore interface {
	CreateRestaurant(ctx context.Context, r Restaurant) error
	Restaurant(ctx context.Context, id string) (Restaurant, bool, error)
	// RestaurantAndView increments the view counter and returns the
	// post-increment record. The increment and the read are two store calls;
	// the counter is best effort.
	RestaurantAndView(ctx context.Context, id string) (Restaurant, bool, error)
	// Restaurants preserves input order; absent ids yield zero records.
	Restaurants(ctx context.Context, ids []string) ([]Restaurant, error)
	RestaurantExists(ctx context.Context, id string) (bool, error)
}

// CuisineIndex keeps the global cuisine set, the per-cuisine member set and
// the per-restaurant cuisine set mutually consistent.
type CuisineIndex interface {
	AttachCuisines(ctx context.Context, restaurantID string, cuisines []string) error
	Cuisines(ctx context.Context) ([]string, error)
	CuisineMembers(ctx context.Context, cuisine string) ([]string, error)
	RestaurantCuisines(ctx context.Context, restaurantID string) ([]string, error)
}

// RatingIndex maps restaurant id to its current average rating.
type RatingIndex interface {
	SetRating(ctx context.Context, restaurantID string, score float64) error
	// TopByRating returns ids for the zero-based inclusive [start, end]
	// window of the rating-descending order. Ordering among equal scores is
	// stable but arbitrary.
	TopByRating(ctx context.Context, start, end int64) ([]string, error)
}

// ReviewLedger owns the most-recent-first review id sequence and the detail
// record per review id. AddReview and RemoveReview fold the rating
// aggregation (totalStars, avgStars, rating index score) into one atomic
// step per restaurant.
type ReviewLedger interface {
	AddReview(ctx context.Context, rev Review) (ReviewStats, error)
	Reviews(ctx context.Context, restaurantID string, start, end int64) ([]Review, error)
	RemoveReview(ctx context.Context, restaurantID, reviewID string) (bool, error)
}

// DetailsStore holds the optional free-form document per restaurant.
type DetailsStore interface {
	SetDetails(ctx context.Context, restaurantID string, doc json.RawMessage) error
	Details(ctx context.Context, restaurantID string) (json.RawMessage, bool, error)
}

// Store is the abstract handle over the shared key-value store.
type Store interface {
	RestaurantStore
	CuisineIndex
	RatingIndex
	ReviewLedger
	DetailsStore
}
