package domain

// Coordinate is a geographic point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GeocodeResult is the provider-independent shape returned to callers and
// stored in the cache. Address components mirror what Geocod.io reports.
type GeocodeResult struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formatted_address"`

	Number          string `json:"number"`
	Predirectional  string `json:"predirectional"`
	Street          string `json:"street"`
	Suffix          string `json:"suffix"`
	FormattedStreet string `json:"formatted_street"`
	City            string `json:"city"`
	County          string `json:"county"`
	State           string `json:"state"`
	Zip             string `json:"zip"`
	Country         string `json:"country"`

	CensusTract  string  `json:"census_tract"`
	Accuracy     float64 `json:"accuracy"`
	AccuracyType string  `json:"accuracy_type"`
	Source       string  `json:"source"`

	// WithinCity is the bounds filter verdict for the target municipality.
	WithinCity bool `json:"within_city"`
}

// Stats are process-lifetime counters for the geocoding use case.
type Stats struct {
	CacheHits     int64 `json:"cache_hits"`
	CacheMisses   int64 `json:"cache_misses"`
	ProviderCalls int64 `json:"provider_calls"`
	OutOfCity     int64 `json:"out_of_city"`
}
