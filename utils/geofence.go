package utils

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// ValidateCoordinate rejects latitudes/longitudes outside the WGS84 range.
func ValidateCoordinate(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %.6f is out of valid range [-90, 90]", lat)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude %.6f is out of valid range [-180, 180]", lng)
	}
	return nil
}

// DistanceMeters returns the geodesic distance between two points.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	return geo.Distance(orb.Point{lng1, lat1}, orb.Point{lng2, lat2})
}

// WithinRadius reports whether the reported point is inside the fence and
// returns the computed distance either way, so a rejection can tell the
// operator how far off they are.
func WithinRadius(lat, lng, fenceLat, fenceLng, radiusM float64) (bool, float64) {
	d := DistanceMeters(lat, lng, fenceLat, fenceLng)
	return d <= radiusM, d
}
