package dto

// NearestResourceRequest is bound from the query string of the operator API.
type NearestResourceRequest struct {
	Collection string  `query:"collection" validate:"required,max=64"`
	Lat        float64 `query:"lat" validate:"gte=-90,lte=90"`
	Lon        float64 `query:"lon" validate:"gte=-180,lte=180"`
	K          int     `query:"k" validate:"gte=0"`
}

type NearestResourceResponse struct {
	Collection string                `json:"collection"`
	Results    []NearestResourceItem `json:"results"`
}

type NearestResourceItem struct {
	Id          string                 `json:"id"`
	Latitude    float64                `json:"latitude"`
	Longitude   float64                `json:"longitude"`
	CategoryTag string                 `json:"category_tag,omitempty"`
	DistanceKm  float64                `json:"distance_km"`
	Properties  map[string]interface{} `json:"properties"`
}

type HealthResponse struct {
	Status   string            `json:"status"`
	Checks   map[string]string `json:"checks"`
	Instance string            `json:"instance"`
}
