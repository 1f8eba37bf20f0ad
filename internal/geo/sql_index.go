package geo

import (
	"context"
	"fmt"
	"math"

	"gorm.io/gorm"
)

// SQLIndex reads locations straight from the aquariums table. A bounding box
// narrows the rows in SQL and the exact radius is applied in Go.
type SQLIndex struct {
	db *gorm.DB
}

func NewSQLIndex(db *gorm.DB) *SQLIndex {
	return &SQLIndex{db: db}
}

func (x *SQLIndex) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]Hit, error) {
	latDelta := radiusKm / kmPerDegree
	q := x.db.WithContext(ctx).
		Table("aquariums").
		Select("id, latitude, longitude").
		Where("latitude BETWEEN ? AND ?", lat-latDelta, lat+latDelta)

	// skip the longitude bound near the poles and across the antimeridian
	if cos := math.Cos(radians(lat)); cos > 0.01 {
		lngDelta := radiusKm / (kmPerDegree * cos)
		if lng-lngDelta >= -180 && lng+lngDelta <= 180 {
			q = q.Where("longitude BETWEEN ? AND ?", lng-lngDelta, lng+lngDelta)
		}
	}

	var points []Point
	if err := q.Scan(&points).Error; err != nil {
		return nil, fmt.Errorf("nearby aquariums: %w", err)
	}

	hits := make([]Hit, 0, len(points))
	for _, p := range points {
		if d := DistanceKm(lat, lng, p.Latitude, p.Longitude); d <= radiusKm {
			hits = append(hits, Hit{ID: p.ID, DistanceKm: d})
		}
	}
	sortHits(hits)
	return hits, nil
}

// Upsert is a no-op: the table is the index.
func (x *SQLIndex) Upsert(ctx context.Context, id int64, lat, lng float64) error {
	return nil
}

// Remove is a no-op: the table is the index.
func (x *SQLIndex) Remove(ctx context.Context, id int64) error {
	return nil
}

// Points loads every aquarium location, used to seed other indexes.
func (x *SQLIndex) Points(ctx context.Context) ([]Point, error) {
	var points []Point
	if err := x.db.WithContext(ctx).
		Table("aquariums").
		Select("id, latitude, longitude").
		Order("id").
		Scan(&points).Error; err != nil {
		return nil, fmt.Errorf("load aquarium points: %w", err)
	}
	return points, nil
}
