package cosmograph

import "errors"

var (
	// ErrUnknownDriver is returned when the store driver is not badger or sqlite.
	ErrUnknownDriver = errors.New("unknown store driver")

	// ErrConfigRequired is returned when OpenConfig is given a nil config.
	ErrConfigRequired = errors.New("config is required")

	// ErrEmptyQuery is returned when a query has no text.
	ErrEmptyQuery = errors.New("query text is required")
)
