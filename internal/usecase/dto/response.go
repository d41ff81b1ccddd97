package dto

import "github.com/geocoding-microservice/internal/domain"

type GeocodeResponse struct {
	Result domain.GeocodeResult `json:"result"`
}

// BatchGeocodeResponse keeps Results aligned with the request addresses;
// unresolved entries are null.
type BatchGeocodeResponse struct {
	Results  []*domain.GeocodeResult `json:"results"`
	Resolved int                     `json:"resolved"`
}

type StatsResponse struct {
	Stats domain.Stats `json:"stats"`
}
