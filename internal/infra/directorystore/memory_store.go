package directorystore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/bitesapp/bites/internal/domain/directory"
)

// MemoryStore is an in-memory implementation of the directory store for
// tests and dev runs without a Valkey instance.
type MemoryStore struct {
	mu                 sync.RWMutex
	restaurants        map[string]directory.Restaurant
	cuisines           map[string]struct{}
	cuisineMembers     map[string]map[string]struct{}
	restaurantCuisines map[string]map[string]struct{}
	ratings            map[string]float64
	reviews            map[string][]string
	reviewDetails      map[string]directory.Review
	details            map[string]json.RawMessage
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		restaurants:        make(map[string]directory.Restaurant),
		cuisines:           make(map[string]struct{}),
		cuisineMembers:     make(map[string]map[string]struct{}),
		restaurantCuisines: make(map[string]map[string]struct{}),
		ratings:            make(map[string]float64),
		reviews:            make(map[string][]string),
		reviewDetails:      make(map[string]directory.Review),
		details:            make(map[string]json.RawMessage),
	}
}

func (s *MemoryStore) CreateRestaurant(_ context.Context, r directory.Restaurant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restaurants[r.ID] = r
	return nil
}

func (s *MemoryStore) Restaurant(_ context.Context, id string) (directory.Restaurant, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.restaurants[id]
	return r, ok, nil
}

func (s *MemoryStore) RestaurantAndView(_ context.Context, id string) (directory.Restaurant, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.restaurants[id]
	if !ok {
		return directory.Restaurant{}, false, nil
	}
	r.ViewCount++
	s.restaurants[id] = r
	return r, true, nil
}

func (s *MemoryStore) Restaurants(_ context.Context, ids []string) ([]directory.Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]directory.Restaurant, len(ids))
	for i, id := range ids {
		out[i] = s.restaurants[id]
	}
	return out, nil
}

func (s *MemoryStore) RestaurantExists(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.restaurants[id]
	return ok, nil
}

func (s *MemoryStore) AttachCuisines(_ context.Context, restaurantID string, cuisines []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cuisine := range cuisines {
		s.cuisines[cuisine] = struct{}{}
		if s.cuisineMembers[cuisine] == nil {
			s.cuisineMembers[cuisine] = make(map[string]struct{})
		}
		s.cuisineMembers[cuisine][restaurantID] = struct{}{}
		if s.restaurantCuisines[restaurantID] == nil {
			s.restaurantCuisines[restaurantID] = make(map[string]struct{})
		}
		s.restaurantCuisines[restaurantID][cuisine] = struct{}{}
	}
	return nil
}

func (s *MemoryStore) Cuisines(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.cuisines), nil
}

func (s *MemoryStore) CuisineMembers(_ context.Context, cuisine string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.cuisineMembers[cuisine]), nil
}

func (s *MemoryStore) RestaurantCuisines(_ context.Context, restaurantID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.restaurantCuisines[restaurantID]), nil
}

func (s *MemoryStore) SetRating(_ context.Context, restaurantID string, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings[restaurantID] = score
	return nil
}

func (s *MemoryStore) TopByRating(_ context.Context, start, end int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.ratings))
	for id := range s.ratings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if s.ratings[ids[i]] == s.ratings[ids[j]] {
			return ids[i] < ids[j]
		}
		return s.ratings[ids[i]] > s.ratings[ids[j]]
	})
	return sliceRange(ids, start, end), nil
}

func (s *MemoryStore) AddReview(_ context.Context, rev directory.Review) (directory.ReviewStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.restaurants[rev.RestaurantID]
	if !ok {
		return directory.ReviewStats{}, fmt.Errorf("restaurant %s not found", rev.RestaurantID)
	}
	r.TotalStars += rev.Rating
	s.reviews[rev.RestaurantID] = append([]string{rev.ID}, s.reviews[rev.RestaurantID]...)
	s.reviewDetails[rev.ID] = rev
	count := int64(len(s.reviews[rev.RestaurantID]))
	r.AvgStars = directory.RoundStars(r.TotalStars, count)
	s.restaurants[rev.RestaurantID] = r
	s.ratings[rev.RestaurantID] = r.AvgStars
	return directory.ReviewStats{Count: count, TotalStars: r.TotalStars, AvgStars: r.AvgStars}, nil
}

func (s *MemoryStore) Reviews(_ context.Context, restaurantID string, start, end int64) ([]directory.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []directory.Review{}
	for _, id := range sliceRange(s.reviews[restaurantID], start, end) {
		if rev, ok := s.reviewDetails[id]; ok {
			out = append(out, rev)
		}
	}
	return out, nil
}

func (s *MemoryStore) RemoveReview(_ context.Context, restaurantID, reviewID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	remaining := s.reviews[restaurantID][:0:0]
	for _, id := range s.reviews[restaurantID] {
		if id == reviewID {
			removed++
			continue
		}
		remaining = append(remaining, id)
	}

	detail, hadDetail := s.reviewDetails[reviewID]
	if hadDetail && detail.RestaurantID != restaurantID {
		detail = directory.Review{}
		hadDetail = false
	}
	if removed == 0 && !hadDetail {
		return false, nil
	}
	if hadDetail {
		delete(s.reviewDetails, reviewID)
	}
	if removed > 0 {
		s.reviews[restaurantID] = remaining
		if r, ok := s.restaurants[restaurantID]; ok {
			r.TotalStars -= detail.Rating * float64(removed)
			count := int64(len(remaining))
			if count == 0 {
				r.TotalStars = 0
			}
			r.AvgStars = directory.RoundStars(r.TotalStars, count)
			s.restaurants[restaurantID] = r
			s.ratings[restaurantID] = r.AvgStars
		}
	}
	return true, nil
}

func (s *MemoryStore) SetDetails(_ context.Context, restaurantID string, doc json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make(json.RawMessage, len(doc))
	copy(stored, doc)
	s.details[restaurantID] = stored
	return nil
}

func (s *MemoryStore) Details(_ context.Context, restaurantID string) (json.RawMessage, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.details[restaurantID]
	return doc, ok, nil
}

// sliceRange applies the store's zero-based inclusive range semantics:
// out-of-bounds ends clamp, a start past the end yields an empty slice.
func sliceRange[T any](items []T, start, end int64) []T {
	n := int64(len(items))
	if start < 0 {
		start = 0
	}
	if end >= n {
		end = n - 1
	}
	if start >= n || end < start {
		return []T{}
	}
	return items[start : end+1]
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var _ directory.Store = (*MemoryStore)(nil)
