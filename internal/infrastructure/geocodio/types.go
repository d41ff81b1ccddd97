package geocodio

import "github.com/geocoding-microservice/internal/domain"

// Wire types for the Geocod.io v1.6 API. Kept private to this package;
// everything leaves as domain.GeocodeResult.

type apiResponse struct {
	Error   string     `json:"error"`
	Results []location `json:"results"`
}

type location struct {
	AddressComponents *addressComponents `json:"address_components"`
	FormattedAddress  string             `json:"formatted_address"`
	Location          *coordinates       `json:"location"`
	Accuracy          float64            `json:"accuracy"`
	AccuracyType      string             `json:"accuracy_type"`
	Source            string             `json:"source"`
	Fields            *extraFields       `json:"fields"`
}

type addressComponents struct {
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
}

type coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type extraFields struct {
	// Census is keyed by census year ("2019", "2020", ...).
	Census map[string]censusYear `json:"census"`
}

type censusYear struct {
	CensusYear int    `json:"census_year"`
	TractCode  string `json:"tract_code"`
}

// toDomain flattens a provider location into the cacheable result shape.
func (l *location) toDomain() domain.GeocodeResult {
	res := domain.GeocodeResult{
		FormattedAddress: l.FormattedAddress,
		Accuracy:         l.Accuracy,
		AccuracyType:     l.AccuracyType,
		Source:           l.Source,
	}

	if ac := l.AddressComponents; ac != nil {
		res.Number = ac.Number
		res.Predirectional = ac.Predirectional
		res.Street = ac.Street
		res.Suffix = ac.Suffix
		res.FormattedStreet = ac.FormattedStreet
		res.City = ac.City
		res.County = ac.County
		res.State = ac.State
		res.Zip = ac.Zip
		res.Country = ac.Country
	}

	if l.Location != nil {
		res.Latitude = l.Location.Lat
		res.Longitude = l.Location.Lng
	}

	if l.Fields != nil && len(l.Fields.Census) > 0 {
		// Take the most recent census year for a deterministic tract
		latest := ""
		for year := range l.Fields.Census {
			if year > latest {
				latest = year
			}
		}
		res.CensusTract = l.Fields.Census[latest].TractCode
	}

	return res
}
