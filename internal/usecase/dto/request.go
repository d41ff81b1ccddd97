package dto

// GeocodeRequest is a forward lookup. Filter controls whether out-of-city
// results are rejected instead of flagged.
type GeocodeRequest struct {
	Query  string `json:"q" validate:"required,min=3"`
	Filter bool   `json:"filter"`
}

// ReverseGeocodeRequest is a reverse lookup. Coordinates are pointers so a
// legitimate 0.0 survives validation.
type ReverseGeocodeRequest struct {
	Lat    *float64 `json:"lat" validate:"required"`
	Lon    *float64 `json:"lon" validate:"required"`
	Filter bool     `json:"filter"`
}

// BatchGeocodeRequest resolves up to 100 addresses in one call.
type BatchGeocodeRequest struct {
	Addresses []string `json:"addresses" validate:"required,min=1,max=100,dive,min=3"`
	Filter    bool     `json:"filter"`
}

// InvalidateRequest drops a cache entry, by address or by coordinates.
type InvalidateRequest struct {
	Address string   `json:"address,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}
