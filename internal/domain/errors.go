package domain

import "errors"

var (
	// ErrEmptyCatalog is returned when no valid record survives a data load
	ErrEmptyCatalog = errors.New("no data available: catalog is empty")

	// ErrMalformedSource is returned when a source file cannot be decoded at all
	ErrMalformedSource = errors.New("malformed source file")

	// ErrPriceAbsent is returned when a price value cannot be normalized
	ErrPriceAbsent = errors.New("price absent or unparseable")

	// ErrMissingField is returned when a required record field is missing
	ErrMissingField = errors.New("required field missing")

	// ErrProductNotFound is returned when a product id is not in the catalog
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrStaleCatalog is returned when a product id refers to a catalog that has been replaced
	ErrStaleCatalog = errors.New("catalog has been reloaded")

	// ErrSessionNotFound is returned when a session id is unknown or expired
	ErrSessionNotFound = errors.New("session not found")

	// ErrUnsupportedFormat is returned for an unknown export format
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrEncoding is returned when document text cannot be represented in Latin-1
	ErrEncoding = errors.New("text not representable in Latin-1")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")
)
