package directory

import "math"

// Restaurant is the hash record kept per restaurant id.
type Restaurant struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Location   string  `json:"location"`
	ViewCount  int64   `json:"viewCount"`
	TotalStars float64 `json:"totalStars"`
	AvgStars   float64 `json:"avgStars"`
}

// RestaurantWithCuisines is the read model returned by single-restaurant lookups.
type RestaurantWithCuisines struct {
	Restaurant
	Cuisines []string `json:"cuisines"`
}

// Review is the detail record kept per review id. The per-restaurant ledger
// holds review ids most-recent-first.
type Review struct {
	ID           string  `json:"id"`
	RestaurantID string  `json:"restaurantId"`
	Rating       float64 `json:"rating"`
	Text         string  `json:"text"`
	Timestamp    int64   `json:"timestamp"`
}

// ReviewStats carries the aggregate state after a ledger mutation.
type ReviewStats struct {
	Count      int64
	TotalStars float64
	AvgStars   float64
}

// CreateRequest captures the validated input for restaurant creation.
type CreateRequest struct {
	Name     string
	Location string
	Cuisines []string
}

// Page is a 1-based page selector.
type Page struct {
	Page  int
	Limit int
}

// RoundStars computes the published average: one decimal, zero when there are
// no reviews.
func RoundStars(total float64, count int64) float64 {
	if count <= 0 {
		return 0
	}
	return math.Round(total/float64(count)*10) / 10
}
