package specification

import (
	"disaster-locator-bot/pkg/geo"

	"gorm.io/gorm"
)

// ByUserId filters chat sessions by chat identity.
func ByUserId(userId string) Specification {
	return ColumnEquals{Column: "user_id", Value: userId}
}

// InCollection filters resource features by dataset.
func InCollection(collection string) Specification {
	return ColumnEquals{Column: "collection", Value: collection}
}

func FeatureTypeIs(featureType string) Specification {
	return ColumnEquals{Column: "feature_type", Value: featureType}
}

// haversineSQL mirrors geo.DistanceMeters. Arguments: radius, lat, lat, lon.
const haversineSQL = `2 * ? * ASIN(LEAST(1, SQRT(
	POWER(SIN(RADIANS(latitude - ?) / 2), 2) +
	COS(RADIANS(?)) * COS(RADIANS(latitude)) * POWER(SIN(RADIANS(longitude - ?) / 2), 2)
)))`

// NearestTo selects distance_meters from the origin and orders by it.
type NearestTo struct {
	Origin geo.Point
}

func (s NearestTo) Apply(db *gorm.DB) *gorm.DB {
	lat, lon := s.Origin.Latitude, s.Origin.Longitude
	return db.
		Select("*, "+haversineSQL+" AS distance_meters", geo.EarthRadiusMeters, lat, lat, lon).
		Order("distance_meters ASC").
		Order("id ASC")
}
