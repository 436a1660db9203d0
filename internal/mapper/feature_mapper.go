// Mapper for GeoFeature entity <-> model and GeoJSON -> entity conversion
package mapper

import (
	"encoding/json"
	"fmt"
	"strings"

	"disaster-locator-bot/internal/dto"
	"disaster-locator-bot/internal/entity"
	"disaster-locator-bot/internal/model"
	"disaster-locator-bot/internal/pkg/apperror"
	"disaster-locator-bot/pkg/geo"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type FeatureMapper struct{}

func NewFeatureMapper() *FeatureMapper {
	return &FeatureMapper{}
}

func (m *FeatureMapper) ToEntity(f *model.ResourceFeature) *entity.GeoFeature {
	if f == nil {
		return nil
	}
	return &entity.GeoFeature{
		Id:             f.Id,
		Collection:     f.Collection,
		FeatureType:    f.FeatureType,
		Location:       geo.Point{Latitude: f.Latitude, Longitude: f.Longitude},
		CategoryTag:    f.CategoryTag,
		Properties:     map[string]interface{}(f.Properties),
		DistanceMeters: f.DistanceMeters,
	}
}

func (m *FeatureMapper) ToModel(f *entity.GeoFeature) *model.ResourceFeature {
	if f == nil {
		return nil
	}
	lonLat := f.Location.LonLat()
	geometry, _ := json.Marshal(map[string]interface{}{
		"type":        "Point",
		"coordinates": lonLat[:],
	})
	return &model.ResourceFeature{
		Id:          f.Id,
		Collection:  f.Collection,
		FeatureType: f.FeatureType,
		Longitude:   f.Location.Longitude,
		Latitude:    f.Location.Latitude,
		CategoryTag: f.CategoryTag,
		Properties:  datatypes.JSONMap(f.Properties),
		Geometry:    datatypes.JSON(geometry),
	}
}

// FromGeoJSON reads one source feature permissively. Only a missing or
// unusable geometry rejects the record (wrapped ErrMalformedFeature);
// absent properties become an empty map.
func (m *FeatureMapper) FromGeoJSON(collection string, f dto.GeoJSONFeature) (*entity.GeoFeature, error) {
	if f.Geometry == nil {
		return nil, fmt.Errorf("%w: missing geometry", apperror.ErrMalformedFeature)
	}
	point, err := geo.RepresentativePoint(f.Geometry.Coordinates)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrMalformedFeature, err)
	}

	props := f.Properties
	if props == nil {
		props = map[string]interface{}{}
	}

	featureType := strings.TrimSpace(f.Type)
	if featureType == "" {
		featureType = entity.FeatureTypeFeature
	}

	return &entity.GeoFeature{
		Id:          uuid.New(),
		Collection:  collection,
		FeatureType: featureType,
		Location:    point,
		CategoryTag: categoryTagOf(props),
		Properties:  props,
	}, nil
}

// categoryTagOf reads the map style id that classifies shelter points.
// Exports carry it either as styleMapHash.normal or as a flat styleUrl.
func categoryTagOf(props map[string]interface{}) string {
	if hash, ok := props["styleMapHash"].(map[string]interface{}); ok {
		if normal, ok := hash["normal"].(string); ok {
			return strings.TrimSpace(normal)
		}
	}
	if styleUrl, ok := props["styleUrl"].(string); ok {
		return strings.TrimSpace(styleUrl)
	}
	return ""
}
