package mapper

import (
	"encoding/json"
	"testing"

	"disaster-locator-bot/internal/dto"
	"disaster-locator-bot/internal/entity"
	"disaster-locator-bot/internal/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureMapperFromGeoJSON(t *testing.T) {
	raw := `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [36.16, 36.20]},
			 "properties": {"name": "Çadır Kent", "styleMapHash": {"normal": "#icon-1826-0288D1-nodesc-normal"}}},
			{"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[36.1, 36.3],[36.2, 36.3],[36.2, 36.4]]]},
			 "properties": {"styleUrl": "#icon-1577-7CB342-normal"}},
			{"type": "Feature", "geometry": null, "properties": {"name": "broken"}},
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [36.1]}, "properties": null},
			{"geometry": {"type": "Point", "coordinates": [36.1, 36.1]}}
		]
	}`

	var fc dto.GeoJSONFeatureCollection
	require.NoError(t, json.Unmarshal([]byte(raw), &fc))

	m := NewFeatureMapper()
	var ok []*entity.GeoFeature
	skipped := 0
	for _, f := range fc.Features {
		feature, err := m.FromGeoJSON("alanlar", f)
		if err != nil {
			assert.ErrorIs(t, err, apperror.ErrMalformedFeature)
			skipped++
			continue
		}
		ok = append(ok, feature)
	}

	require.Len(t, ok, 3)
	assert.Equal(t, 2, skipped)

	assert.Equal(t, "#icon-1826-0288D1-nodesc-normal", ok[0].CategoryTag)
	assert.Equal(t, "Çadır Kent", ok[0].Field("name"))
	assert.Equal(t, 36.20, ok[0].Location.Latitude)

	assert.Equal(t, "#icon-1577-7CB342-normal", ok[1].CategoryTag)
	assert.Equal(t, 36.3, ok[1].Location.Latitude)
	assert.Equal(t, 36.1, ok[1].Location.Longitude)

	assert.Equal(t, entity.FeatureTypeFeature, ok[2].FeatureType)
	assert.NotNil(t, ok[2].Properties)
}

func TestFeatureMapperRoundTrip(t *testing.T) {
	m := NewFeatureMapper()
	f, err := m.FromGeoJSON("eczaneler", dto.GeoJSONFeature{
		Type:       "Feature",
		Geometry:   &dto.GeoJSONGeometry{Type: "Point", Coordinates: json.RawMessage(`[36.16, 36.2]`)},
		Properties: map[string]interface{}{"name": "Sahra Eczane 1"},
	})
	require.NoError(t, err)

	rec := m.ToModel(f)
	assert.Equal(t, 36.16, rec.Longitude)
	assert.Equal(t, 36.2, rec.Latitude)
	assert.JSONEq(t, `{"type":"Point","coordinates":[36.16,36.2]}`, string(rec.Geometry))

	back := m.ToEntity(rec)
	assert.Equal(t, f.Location, back.Location)
	assert.Equal(t, "Sahra Eczane 1", back.Field("name"))
}
