// Package sentinel holds the errors stores and collaborator adapters return
// for infrastructure facts. Callers match them with errors.Is and translate
// them into domain errors at the service boundary.
package sentinel

import "errors"

var (
	// ErrNotFound means no draft, preview or submission exists under the key.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable means a backing store could not be reached.
	ErrUnavailable = errors.New("unavailable")
)
