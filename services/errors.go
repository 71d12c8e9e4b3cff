// services/errors.go
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownMunicipality marks a city that could not be resolved against
	// the risk catalog. Per-city failures are recorded inline on the
	// CityResult; a request only fails with this error when every one of its
	// cities is unknown.
	ErrUnknownMunicipality = errors.New("municipality not found in official risk catalog")

	// ErrInvalidQuery marks a malformed request (bad date, bad source,
	// bad pagination) and is fatal to the whole request.
	ErrInvalidQuery = errors.New("invalid query")
)

// Persistence sink names used in PartialPersistenceError.
const (
	SinkBackup     = "backup"
	SinkRelational = "relational"
)

// PartialPersistenceError reports that exactly one of the two persistence
// sinks failed during the dual write of a RouteRecord. It carries the
// ruta_id and the failed sink so the caller can retry just that sink.
type PartialPersistenceError struct {
	RutaID     string
	FailedSink string
	Err        error
}

func (e *PartialPersistenceError) Error() string {
	return fmt.Sprintf("partial persistence of %s: %s sink failed: %v", e.RutaID, e.FailedSink, e.Err)
}

func (e *PartialPersistenceError) Unwrap() error { return e.Err }
