package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceMeters(t *testing.T) {
	istanbul := Point{Latitude: 41.0082, Longitude: 28.9784}
	ankara := Point{Latitude: 39.9334, Longitude: 32.8597}

	d := DistanceKm(istanbul, ankara)
	assert.InDelta(t, 350.0, d, 5.0)
	assert.Equal(t, 0.0, DistanceMeters(istanbul, istanbul))
	assert.InDelta(t, d, DistanceKm(ankara, istanbul), 1e-9)
}

func TestFromLonLat(t *testing.T) {
	p, err := FromLonLat([]float64{29.0, 41.0})
	require.NoError(t, err)
	assert.Equal(t, 41.0, p.Latitude)
	assert.Equal(t, 29.0, p.Longitude)
	assert.Equal(t, [2]float64{29.0, 41.0}, p.LonLat())

	tests := []struct {
		name     string
		position []float64
	}{
		{name: "empty", position: nil},
		{name: "single value", position: []float64{29.0}},
		{name: "latitude out of range", position: []float64{29.0, 91.0}},
		{name: "longitude out of range", position: []float64{-181.0, 41.0}},
		{name: "nan", position: []float64{math.NaN(), 41.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromLonLat(tt.position)
			assert.Error(t, err)
		})
	}
}
