package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the sphere radius used for every distance in the bot,
// both here and in the SQL nearest query.
const EarthRadiusMeters = 6378100.0

// Point is a WGS84 coordinate. GeoJSON and the storage layer use [lon, lat]
// order, so conversion helpers are explicit about it.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewPoint validates a latitude/longitude pair.
func NewPoint(lat, lon float64) (Point, error) {
	p := Point{Latitude: lat, Longitude: lon}
	if err := p.Validate(); err != nil {
		return Point{}, err
	}
	return p, nil
}

// FromLonLat builds a point from a GeoJSON position ([lon, lat, ...]).
func FromLonLat(position []float64) (Point, error) {
	if len(position) < 2 {
		return Point{}, fmt.Errorf("position needs 2 values, got %d", len(position))
	}
	return NewPoint(position[1], position[0])
}

// LonLat returns the point in GeoJSON order.
func (p Point) LonLat() [2]float64 {
	return [2]float64{p.Longitude, p.Latitude}
}

func (p Point) Validate() error {
	if math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0) || p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("latitude out of range: %v", p.Latitude)
	}
	if math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0) || p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("longitude out of range: %v", p.Longitude)
	}
	return nil
}

// DistanceMeters is the great-circle (haversine) distance between two points.
func DistanceMeters(a, b Point) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// DistanceKm is DistanceMeters in kilometres.
func DistanceKm(a, b Point) float64 {
	return DistanceMeters(a, b) / 1000
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
