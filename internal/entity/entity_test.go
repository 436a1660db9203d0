package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOptionId(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOk bool
	}{
		{raw: "3", want: 3, wantOk: true},
		{raw: "option1", want: 1, wantOk: true},
		{raw: " Option4 ", want: 4, wantOk: true},
		{raw: "option", wantOk: false},
		{raw: "abc", wantOk: false},
		{raw: "", wantOk: false},
	}

	for _, tt := range tests {
		got, ok := ParseOptionId(tt.raw)
		assert.Equal(t, tt.wantOk, ok, tt.raw)
		if tt.wantOk {
			assert.Equal(t, tt.want, got, tt.raw)
		}
	}
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, StateNew, StateOf(nil))
	assert.Equal(t, StateMenuShown, StateOf(&Session{ArmedStrategy: StrategyNone}))
	assert.Equal(t, StateMenuShown, StateOf(&Session{}))
	assert.Equal(t, StateAwaitingLocation, StateOf(&Session{ArmedStrategy: StrategyBloodDonation}))
}

func TestArmedStrategyIsValid(t *testing.T) {
	assert.True(t, StrategyPharmacies.IsValid())
	assert.True(t, StrategyNone.IsValid())
	assert.False(t, ArmedStrategy("EVERYTHING").IsValid())
}

func TestGeoFeatureField(t *testing.T) {
	f := &GeoFeature{Properties: map[string]interface{}{
		"name":    "  Sahra Eczanesi ",
		"telefon": float64(4441234),
		"nested":  map[string]interface{}{"a": 1},
		"null":    nil,
	}}

	assert.Equal(t, "Sahra Eczanesi", f.Field("name"))
	assert.Equal(t, "4441234", f.Field("telefon"))
	assert.Equal(t, "", f.Field("nested"))
	assert.Equal(t, "", f.Field("null"))
	assert.Equal(t, "-", f.FieldOr("missing", "-"))

	var missing *GeoFeature
	assert.Equal(t, "", missing.Field("name"))
}

func TestMenuOptionRowId(t *testing.T) {
	assert.Equal(t, "option2", MenuOption{Id: 2}.RowId())
}
