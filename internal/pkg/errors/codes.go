package errors

import "net/http"

var (
	// ErrProviderError is a transient provider failure (rate limit, bad
	// gateway, malformed body) that survived all retry attempts.
	ErrProviderError = New(
		"PROVIDER_ERROR",
		"Geocoding provider request failed",
		http.StatusBadGateway,
	)

	// ErrProviderExhausted means every API key in the credential pool was
	// rejected or ran out of quota.
	ErrProviderExhausted = New(
		"PROVIDER_EXHAUSTED",
		"All geocoding provider API keys are exhausted",
		http.StatusBadGateway,
	)

	// ErrOutOfBounds is returned only when the caller opted into filtering;
	// by default out-of-city results come back flagged, not rejected.
	ErrOutOfBounds = New(
		"OUT_OF_BOUNDS",
		"Result lies outside the target city",
		http.StatusNotFound,
	)

	ErrNoResults = New(
		"NO_RESULTS",
		"No geocoding results found",
		http.StatusNotFound,
	)

	ErrInvalidAddress = New(
		"INVALID_ADDRESS",
		"Address must not be empty",
		http.StatusBadRequest,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
