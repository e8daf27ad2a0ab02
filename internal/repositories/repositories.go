// Package repositories is the persistence gateway for users, litter reports,
// cleanup reports and verification audit records. Every write runs in a
// transaction that rolls back entirely on failure.
package repositories

import "github.com/cleansweep/litterwatch/internal/errors"

var (
	// ErrNotFound signals that the requested row does not exist.
	ErrNotFound = errors.NewSentinel("not found")
	// ErrDuplicateUsername signals a signup with an already-taken username.
	ErrDuplicateUsername = errors.NewSentinel("duplicate username")
	// ErrReportFinalized signals a verification attempt on a report that is
	// already in a terminal status.
	ErrReportFinalized = errors.NewSentinel("report already finalized")
)
