package geo

import (
	"context"
	"math"
	"sort"
)

// DefaultRadiusKm is used when a caller does not pass a radius.
const DefaultRadiusKm = 50.0

const (
	earthRadiusKm = 6371.0
	kmPerDegree   = 111.045
)

// Hit is an aquarium found inside a search radius.
type Hit struct {
	ID         int64
	DistanceKm float64
}

// Point is an indexed aquarium location.
type Point struct {
	ID        int64
	Latitude  float64
	Longitude float64
}

// Index answers proximity queries over aquarium locations.
// Nearby results are ordered by distance, closest first.
type Index interface {
	Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]Hit, error)
	Upsert(ctx context.Context, id int64, lat, lng float64) error
	Remove(ctx context.Context, id int64) error
}

// DistanceKm is the great-circle distance between two coordinates.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

// IDs returns hit ids in order.
func IDs(hits []Hit) []int64 {
	ids := make([]int64, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	return ids
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func sortHits(hits []Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].DistanceKm != hits[j].DistanceKm {
			return hits[i].DistanceKm < hits[j].DistanceKm
		}
		return hits[i].ID < hits[j].ID
	})
}
