package dto

import "encoding/json"

// GeoJSON as exported by the map tools the resource datasets come from.
// Coordinates stay raw because points and polygons nest differently.

type GeoJSONFeatureCollection struct {
	Type     string           `json:"type"`
	Features []GeoJSONFeature `json:"features"`
}

type GeoJSONFeature struct {
	Type       string                 `json:"type"`
	Geometry   *GeoJSONGeometry       `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type GeoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

type ImportSummary struct {
	Collection string `json:"collection"`
	Imported   int    `json:"imported"`
	Skipped    int    `json:"skipped"`
}
