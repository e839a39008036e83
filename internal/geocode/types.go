package geocode

// Location is a geocoded place.
type Location struct {
	Latitude         float64 `json:"lat"`
	Longitude        float64 `json:"lng"`
	PlaceID          string  `json:"place_id,omitempty"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
}

// response is the Geocoding API JSON body.
type response struct {
	Status       string   `json:"status"`
	ErrorMessage string   `json:"error_message,omitempty"`
	Results      []result `json:"results"`
}

type result struct {
	FormattedAddress string   `json:"formatted_address"`
	PlaceID          string   `json:"place_id"`
	Geometry         geometry `json:"geometry"`
}

type geometry struct {
	Location latLng `json:"location"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
