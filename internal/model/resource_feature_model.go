package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ResourceFeature is one imported GeoJSON feature. The representative point
// is stored in plain columns so the nearest query needs no geo extension.
type ResourceFeature struct {
	Id          uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Collection  string            `gorm:"type:varchar(64);not null;index:idx_resource_collection_type,priority:1"`
	FeatureType string            `gorm:"type:varchar(32);not null;default:'Feature';index:idx_resource_collection_type,priority:2"`
	Longitude   float64           `gorm:"not null"`
	Latitude    float64           `gorm:"not null"`
	CategoryTag string            `gorm:"type:text"`
	Properties  datatypes.JSONMap `gorm:"type:jsonb"`
	Geometry    datatypes.JSON    `gorm:"type:jsonb"`
	CreatedAt   time.Time         `gorm:"autoCreateTime"`

	// Filled by the nearest query only.
	DistanceMeters float64 `gorm:"->;-:migration"`
}

func (ResourceFeature) TableName() string {
	return "resource_features"
}
