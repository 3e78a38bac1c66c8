package directorystore

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/valkey-io/valkey-go"

	"github.com/bitesapp/bites/internal/domain/directory"
	"github.com/bitesapp/bites/internal/infra/storekeys"
)

// addReviewScript folds the whole rating aggregation into one server-side
// step per restaurant: totalStars increment, ledger prepend, detail write,
// average recompute and rating index upsert cannot interleave with a
// concurrent review for the same restaurant.
// KEYS: restaurant hash, review list, review detail, rating index.
// ARGV: rating, review id, detail JSON, restaurant id.
var addReviewScript = valkey.NewLuaScript(`
local rating = tonumber(ARGV[1])
local total = tonumber(redis.call('HINCRBYFLOAT', KEYS[1], 'totalStars', rating))
local count = redis.call('LPUSH', KEYS[2], ARGV[2])
redis.call('SET', KEYS[3], ARGV[3])
local avg = math.floor(total / count * 10 + 0.5) / 10
redis.call('HSET', KEYS[1], 'avgStars', avg)
redis.call('ZADD', KEYS[4], avg, ARGV[4])
return {tostring(count), tostring(total), tostring(avg)}
`)

// removeReviewScript is the delete-side counterpart: it reconciles the
// aggregate by the removed review's rating within the same atomic unit. The
// detail record is only deleted when it belongs to the addressed restaurant.
// KEYS: restaurant hash, review list, review detail, rating index.
// ARGV: review id, restaurant id.
var removeReviewScript = valkey.NewLuaScript(`
local removed = redis.call('LREM', KEYS[2], 0, ARGV[1])
local rating = 0
local haddetail = 0
local raw = redis.call('GET', KEYS[3])
if raw then
  local ok, detail = pcall(cjson.decode, raw)
  if ok and detail and detail['restaurantId'] == ARGV[2] then
    if detail['rating'] then
      rating = tonumber(detail['rating'])
    end
    redis.call('DEL', KEYS[3])
    haddetail = 1
  end
end
if removed == 0 and haddetail == 0 then
  return 0
end
if removed > 0 then
  local count = redis.call('LLEN', KEYS[2])
  local total = tonumber(redis.call('HINCRBYFLOAT', KEYS[1], 'totalStars', -rating * removed))
  local avg = 0
  if count > 0 then
    avg = math.floor(total / count * 10 + 0.5) / 10
  else
    redis.call('HSET', KEYS[1], 'totalStars', 0)
  end
  redis.call('HSET', KEYS[1], 'avgStars', avg)
  redis.call('ZADD', KEYS[4], avg, ARGV[2])
end
return 1
`)

var errUnexpectedScriptReply = errors.New("unexpected review script reply")

// ValkeyStore realizes the directory store on a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
}

// NewValkeyStore constructs the store backed by Valkey.
func NewValkeyStore(client valkey.Client) *ValkeyStore {
	return &ValkeyStore{client: client}
}

func (s *ValkeyStore) CreateRestaurant(ctx context.Context, r directory.Restaurant) error {
	cmd := s.client.B().Hset().Key(storekeys.Restaurant(r.ID)).
		FieldValue().
		FieldValue("id", r.ID).
		FieldValue("name", r.Name).
		FieldValue("location", r.Location).
		FieldValue("viewCount", strconv.FormatInt(r.ViewCount, 10)).
		FieldValue("totalStars", formatFloat(r.TotalStars)).
		FieldValue("avgStars", formatFloat(r.AvgStars)).
		Build()
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) Restaurant(ctx context.Context, id string) (directory.Restaurant, bool, error) {
	fields, err := s.client.Do(ctx, s.client.B().Hgetall().Key(storekeys.Restaurant(id)).Build()).AsStrMap()
	if err != nil {
		return directory.Restaurant{}, false, err
	}
	if len(fields) == 0 {
		return directory.Restaurant{}, false, nil
	}
	return parseRestaurant(fields), true, nil
}

func (s *ValkeyStore) RestaurantAndView(ctx context.Context, id string) (directory.Restaurant, bool, error) {
	key := storekeys.Restaurant(id)
	exists, err := s.client.Do(ctx, s.client.B().Exists().Key(key).Build()).AsInt64()
	if err != nil {
		return directory.Restaurant{}, false, err
	}
	if exists == 0 {
		return directory.Restaurant{}, false, nil
	}
	// Increment and read are two commands; the view counter is best effort.
	views, err := s.client.Do(ctx, s.client.B().Hincrby().Key(key).Field("viewCount").Increment(1).Build()).AsInt64()
	if err != nil {
		return directory.Restaurant{}, false, err
	}
	fields, err := s.client.Do(ctx, s.client.B().Hgetall().Key(key).Build()).AsStrMap()
	if err != nil {
		return directory.Restaurant{}, false, err
	}
	r := parseRestaurant(fields)
	if r.ViewCount < views {
		r.ViewCount = views
	}
	return r, true, nil
}

func (s *ValkeyStore) Restaurants(ctx context.Context, ids []string) ([]directory.Restaurant, error) {
	if len(ids) == 0 {
		return []directory.Restaurant{}, nil
	}
	cmds := make([]valkey.Completed, 0, len(ids))
	for _, id := range ids {
		cmds = append(cmds, s.client.B().Hgetall().Key(storekeys.Restaurant(id)).Build())
	}
	out := make([]directory.Restaurant, len(ids))
	for i, resp := range s.client.DoMulti(ctx, cmds...) {
		fields, err := resp.AsStrMap()
		if err != nil {
			return nil, err
		}
		out[i] = parseRestaurant(fields)
	}
	return out, nil
}

func (s *ValkeyStore) RestaurantExists(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Do(ctx, s.client.B().Exists().Key(storekeys.Restaurant(id)).Build()).AsInt64()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *ValkeyStore) AttachCuisines(ctx context.Context, restaurantID string, cuisines []string) error {
	if len(cuisines) == 0 {
		return nil
	}
	// Three set additions per cuisine name; set semantics make the attach
	// idempotent.
	cmds := make([]valkey.Completed, 0, 1+2*len(cuisines))
	cmds = append(cmds, s.client.B().Sadd().Key(storekeys.Cuisines()).Member(cuisines...).Build())
	for _, cuisine := range cuisines {
		cmds = append(cmds,
			s.client.B().Sadd().Key(storekeys.Cuisine(cuisine)).Member(restaurantID).Build(),
			s.client.B().Sadd().Key(storekeys.RestaurantCuisines(restaurantID)).Member(cuisine).Build(),
		)
	}
	for _, resp := range s.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return err
		}
	}
	return nil
}

func (s *ValkeyStore) Cuisines(ctx context.Context) ([]string, error) {
	return s.client.Do(ctx, s.client.B().Smembers().Key(storekeys.Cuisines()).Build()).AsStrSlice()
}

func (s *ValkeyStore) CuisineMembers(ctx context.Context, cuisine string) ([]string, error) {
	return s.client.Do(ctx, s.client.B().Smembers().Key(storekeys.Cuisine(cuisine)).Build()).AsStrSlice()
}

func (s *ValkeyStore) RestaurantCuisines(ctx context.Context, restaurantID string) ([]string, error) {
	return s.client.Do(ctx, s.client.B().Smembers().Key(storekeys.RestaurantCuisines(restaurantID)).Build()).AsStrSlice()
}

func (s *ValkeyStore) SetRating(ctx context.Context, restaurantID string, score float64) error {
	cmd := s.client.B().Zadd().Key(storekeys.ByRating()).ScoreMember().ScoreMember(score, restaurantID).Build()
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) TopByRating(ctx context.Context, start, end int64) ([]string, error) {
	cmd := s.client.B().Zrevrange().Key(storekeys.ByRating()).Start(start).Stop(end).Build()
	return s.client.Do(ctx, cmd).AsStrSlice()
}

func (s *ValkeyStore) AddReview(ctx context.Context, rev directory.Review) (directory.ReviewStats, error) {
	detail, err := json.Marshal(rev)
	if err != nil {
		return directory.ReviewStats{}, err
	}
	keys := []string{
		storekeys.Restaurant(rev.RestaurantID),
		storekeys.Reviews(rev.RestaurantID),
		storekeys.ReviewDetail(rev.ID),
		storekeys.ByRating(),
	}
	args := []string{formatFloat(rev.Rating), rev.ID, string(detail), rev.RestaurantID}
	arr, err := addReviewScript.Exec(ctx, s.client, keys, args).ToArray()
	if err != nil {
		return directory.ReviewStats{}, err
	}
	return parseReviewStats(arr)
}

func (s *ValkeyStore) Reviews(ctx context.Context, restaurantID string, start, end int64) ([]directory.Review, error) {
	ids, err := s.client.Do(ctx, s.client.B().Lrange().Key(storekeys.Reviews(restaurantID)).Start(start).Stop(end).Build()).AsStrSlice()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []directory.Review{}, nil
	}
	cmds := make([]valkey.Completed, 0, len(ids))
	for _, id := range ids {
		cmds = append(cmds, s.client.B().Get().Key(storekeys.ReviewDetail(id)).Build())
	}
	out := make([]directory.Review, 0, len(ids))
	for _, resp := range s.client.DoMulti(ctx, cmds...) {
		payload, err := resp.ToString()
		if err != nil {
			if valkey.IsValkeyNil(err) {
				continue
			}
			return nil, err
		}
		var rev directory.Review
		if err := json.Unmarshal([]byte(payload), &rev); err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, nil
}

func (s *ValkeyStore) RemoveReview(ctx context.Context, restaurantID, reviewID string) (bool, error) {
	keys := []string{
		storekeys.Restaurant(restaurantID),
		storekeys.Reviews(restaurantID),
		storekeys.ReviewDetail(reviewID),
		storekeys.ByRating(),
	}
	removed, err := removeReviewScript.Exec(ctx, s.client, keys, []string{reviewID, restaurantID}).AsInt64()
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}

func (s *ValkeyStore) SetDetails(ctx context.Context, restaurantID string, doc json.RawMessage) error {
	cmd := s.client.B().Set().Key(storekeys.Details(restaurantID)).Value(string(doc)).Build()
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) Details(ctx context.Context, restaurantID string) (json.RawMessage, bool, error) {
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(storekeys.Details(restaurantID)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return json.RawMessage(payload), true, nil
}

func parseRestaurant(fields map[string]string) directory.Restaurant {
	if len(fields) == 0 {
		return directory.Restaurant{}
	}
	return directory.Restaurant{
		ID:         fields["id"],
		Name:       fields["name"],
		Location:   fields["location"],
		ViewCount:  parseInt(fields["viewCount"]),
		TotalStars: parseFloat(fields["totalStars"]),
		AvgStars:   parseFloat(fields["avgStars"]),
	}
}

func parseReviewStats(arr []valkey.ValkeyMessage) (directory.ReviewStats, error) {
	if len(arr) != 3 {
		return directory.ReviewStats{}, errUnexpectedScriptReply
	}
	count, err := arr[0].ToString()
	if err != nil {
		return directory.ReviewStats{}, err
	}
	total, err := arr[1].ToString()
	if err != nil {
		return directory.ReviewStats{}, err
	}
	avg, err := arr[2].ToString()
	if err != nil {
		return directory.ReviewStats{}, err
	}
	return directory.ReviewStats{
		Count:      parseInt(count),
		TotalStars: parseFloat(total),
		AvgStars:   parseFloat(avg),
	}, nil
}

func parseInt(v string) int64 {
	n, _ := strconv.ParseInt(v, 10, 64)
	return n
}

func parseFloat(v string) float64 {
	f, _ := strconv.ParseFloat(v, 64)
	return f
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var _ directory.Store = (*ValkeyStore)(nil)
