package distance

import (
	"fmt"

	"github.com/matzehuels/distindex/pkg/errors"
)

// VersionMismatchError is returned by [Load] when a snapshot was written in
// a different format version. Rebuilding the index recovers from it.
type VersionMismatchError struct {
	Got  int // Version found in the snapshot
	Want int // Version this build reads
}

// Error implements the error interface.
func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("snapshot format version %d, want %d", e.Got, e.Want)
}

// Code returns the error code for this error type.
func (e *VersionMismatchError) Code() errors.Code {
	return errors.ErrCodeVersionMismatch
}

// GraphMismatchError is returned by [Load] when a snapshot was built from a
// different graph than the one supplied.
type GraphMismatchError struct {
	Got  string // Checksum of the supplied graph
	Want string // Checksum recorded in the snapshot
}

// Error implements the error interface.
func (e *GraphMismatchError) Error() string {
	return fmt.Sprintf("snapshot built for graph %s, got graph %s", short(e.Want), short(e.Got))
}

// Code returns the error code for this error type.
func (e *GraphMismatchError) Code() errors.Code {
	return errors.ErrCodeGraphMismatch
}

func short(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}
