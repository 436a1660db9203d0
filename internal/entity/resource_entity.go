package entity

import (
	"strconv"
	"strings"

	"disaster-locator-bot/pkg/geo"

	"github.com/google/uuid"
)

const FeatureTypeFeature = "Feature"

// GeoFeature is a single geotagged record of a resource collection.
// Properties keep the source schema as-is; use Field to read them.
type GeoFeature struct {
	Id          uuid.UUID
	Collection  string
	FeatureType string
	Location    geo.Point
	CategoryTag string
	Properties  map[string]interface{}

	// Set by nearest queries, zero otherwise.
	DistanceMeters float64
}

// Field reads a descriptive property as a trimmed string. Absent, null and
// non-scalar values come back empty.
func (f *GeoFeature) Field(name string) string {
	if f == nil || f.Properties == nil {
		return ""
	}
	switch v := f.Properties[name].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// FieldOr is Field with a fallback for empty values.
func (f *GeoFeature) FieldOr(name, fallback string) string {
	if v := f.Field(name); v != "" {
		return v
	}
	return fallback
}

// ResolutionEntry is one ranked location presented to the user.
type ResolutionEntry struct {
	Location geo.Point
	Name     string
	Address  string

	// nil when the strategy cannot tell the distance.
	DistanceKm *float64

	// Optional follow-up text sent right after the pin.
	Detail string
}
