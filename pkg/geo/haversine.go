// Package geo holds the great-circle math used for address dedup and
// the nearby-restaurant feed.
package geo

import "math"

const (
	earthRadiusKm = 6371.0

	// KmPerDegreeLat approximates one degree of latitude. Good enough
	// for bounding-box prefilters at city scale.
	KmPerDegreeLat = 111.0
)

// DistanceKm returns the Haversine distance between two coordinates
// in kilometers.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	rLat1 := lat1 * math.Pi / 180
	rLat2 := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// DistanceMeters returns the Haversine distance in meters.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	return DistanceKm(lat1, lon1, lat2, lon2) * 1000
}

// BoundingBox returns the lat/lon window that contains every point
// within radiusKm of the center. The longitude span widens with
// latitude; near the poles it degenerates to the full range.
func BoundingBox(lat, lon, radiusKm float64) (minLat, maxLat, minLon, maxLon float64) {
	dLat := radiusKm / KmPerDegreeLat
	minLat, maxLat = lat-dLat, lat+dLat

	cos := math.Cos(lat * math.Pi / 180)
	if cos < 1e-6 {
		return minLat, maxLat, -180, 180
	}
	dLon := radiusKm / (KmPerDegreeLat * cos)
	return minLat, maxLat, lon - dLon, lon + dLon
}
