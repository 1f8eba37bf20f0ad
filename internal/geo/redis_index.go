package geo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisKey = "aquariums:geo"

// RedisIndex keeps aquarium locations in a redis GEO set.
type RedisIndex struct {
	client *redis.Client
	key    string
}

func NewRedisIndex(client *redis.Client, key string) *RedisIndex {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisIndex{client: client, key: key}
}

func (x *RedisIndex) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]Hit, error) {
	locs, err := x.client.GeoSearchLocation(ctx, x.key, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  lng,
			Latitude:   lat,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
		},
		WithDist: true,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("geosearch: %w", err)
	}

	hits := make([]Hit, 0, len(locs))
	for _, loc := range locs {
		id, err := strconv.ParseInt(loc.Name, 10, 64)
		if err != nil {
			continue
		}
		hits = append(hits, Hit{ID: id, DistanceKm: loc.Dist})
	}
	sortHits(hits)
	return hits, nil
}

func (x *RedisIndex) Upsert(ctx context.Context, id int64, lat, lng float64) error {
	return x.client.GeoAdd(ctx, x.key, &redis.GeoLocation{
		Name:      member(id),
		Longitude: lng,
		Latitude:  lat,
	}).Err()
}

func (x *RedisIndex) Remove(ctx context.Context, id int64) error {
	return x.client.ZRem(ctx, x.key, member(id)).Err()
}

// Reindex replaces the whole set with points.
func (x *RedisIndex) Reindex(ctx context.Context, points []Point) error {
	locs := make([]*redis.GeoLocation, 0, len(points))
	for _, p := range points {
		locs = append(locs, &redis.GeoLocation{Name: member(p.ID), Longitude: p.Longitude, Latitude: p.Latitude})
	}

	pipe := x.client.TxPipeline()
	pipe.Del(ctx, x.key)
	if len(locs) > 0 {
		pipe.GeoAdd(ctx, x.key, locs...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("reindex geo set: %w", err)
	}
	return nil
}

func member(id int64) string {
	return strconv.FormatInt(id, 10)
}
