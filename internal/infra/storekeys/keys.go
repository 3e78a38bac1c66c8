// Package storekeys is the single source of truth for the key naming scheme
// shared by every store structure.
package storekeys

import "strings"

const prefix = "bites"

// Name joins ordered segments under the service prefix.
func Name(parts ...string) string {
	return prefix + ":" + strings.Join(parts, ":")
}

// Restaurant is the hash record for one restaurant.
func Restaurant(id string) string { return Name("restaurants", id) }

// Reviews is the most-recent-first list of review ids for one restaurant.
func Reviews(restaurantID string) string { return Name("reviews", restaurantID) }

// ReviewDetail is the detail record for one review id.
func ReviewDetail(reviewID string) string { return Name("review_details", reviewID) }

// Cuisines is the global set of cuisine names.
func Cuisines() string { return Name("cuisines") }

// Cuisine is the set of restaurant ids serving one cuisine.
func Cuisine(name string) string { return Name("cuisines", name) }

// RestaurantCuisines is the set of cuisine names for one restaurant.
func RestaurantCuisines(restaurantID string) string {
	return Name("restaurant_cuisines", restaurantID)
}

// ByRating is the rating-ordered index of restaurant ids.
func ByRating() string { return Name("restaurants_by_rating") }

// Weather is the TTL-bounded cached provider payload for one restaurant.
func Weather(restaurantID string) string { return Name("weather", restaurantID) }

// Details is the free-form details document for one restaurant.
func Details(restaurantID string) string { return Name("restaurant_details", restaurantID) }
