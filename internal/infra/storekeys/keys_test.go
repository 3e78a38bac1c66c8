package storekeys

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	require.Equal(t, "bites:restaurants:abc", Name("restaurants", "abc"))
	require.Equal(t, "bites:cuisines", Name("cuisines"))
}

func TestKeysAreDisjointPerEntity(t *testing.T) {
	id := "r1"
	keys := []string{
		Restaurant(id),
		Reviews(id),
		ReviewDetail(id),
		Cuisine(id),
		RestaurantCuisines(id),
		Weather(id),
		Details(id),
	}
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		_, dup := seen[k]
		require.False(t, dup, "duplicate key %q", k)
		seen[k] = struct{}{}
	}
}

func TestGlobalKeys(t *testing.T) {
	require.Equal(t, "bites:cuisines", Cuisines())
	require.Equal(t, "bites:restaurants_by_rating", ByRating())
}
