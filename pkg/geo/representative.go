package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var ErrNoPosition = errors.New("geometry has no usable position")

// maxNesting covers MultiPolygon, the deepest GeoJSON geometry.
const maxNesting = 4

// RepresentativePoint picks the point used for distance ranking from raw
// GeoJSON coordinates: the point itself, or the first vertex of the first
// ring/line for nested geometries. Numeric strings are accepted.
func RepresentativePoint(raw json.RawMessage) (Point, error) {
	if len(raw) == 0 {
		return Point{}, ErrNoPosition
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return Point{}, fmt.Errorf("%w: %v", ErrNoPosition, err)
	}
	return representative(v, 0)
}

func representative(v interface{}, depth int) (Point, error) {
	arr, ok := v.([]interface{})
	if !ok || len(arr) == 0 || depth > maxNesting {
		return Point{}, ErrNoPosition
	}

	if _, nested := arr[0].([]interface{}); nested {
		return representative(arr[0], depth+1)
	}

	if len(arr) < 2 {
		return Point{}, ErrNoPosition
	}
	lon, okLon := toFloat(arr[0])
	lat, okLat := toFloat(arr[1])
	if !okLon || !okLat {
		return Point{}, ErrNoPosition
	}
	p, err := FromLonLat([]float64{lon, lat})
	if err != nil {
		return Point{}, fmt.Errorf("%w: %v", ErrNoPosition, err)
	}
	return p, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
