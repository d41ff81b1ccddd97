package domain

import "github.com/google/uuid"

// Lookup kinds carried in stream requests.
const (
	LookupForward = "forward"
	LookupReverse = "reverse"
)

// GeocodeRequestEvent is a batch lookup request consumed from the request
// stream. Forward lookups carry Address; reverse lookups carry Lat/Lon.
type GeocodeRequestEvent struct {
	RequestID uuid.UUID `json:"request_id"`
	Kind      string    `json:"kind"`
	Address   string    `json:"address,omitempty"`
	Lat       *float64  `json:"lat,omitempty"`
	Lon       *float64  `json:"lon,omitempty"`
}

// IsReverse reports whether the event is a reverse lookup with both
// coordinates present.
func (e *GeocodeRequestEvent) IsReverse() bool {
	return e.Kind == LookupReverse && e.Lat != nil && e.Lon != nil
}

// GeocodeResultEvent is published to the result stream after a lookup.
type GeocodeResultEvent struct {
	RequestID uuid.UUID      `json:"request_id"`
	Result    *GeocodeResult `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// StreamMessage is a raw message read from a Redis Stream.
type StreamMessage struct {
	ID   string
	Data string
}
