package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrVersionConflict: optimistic version check failed on write
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrAlreadyResolved: request already closed with an outcome
// - ErrUnavailable: service or resource temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrVersionConflict = errors.New("version conflict")
	ErrInvalidState    = errors.New("invalid state")
	ErrAlreadyResolved = errors.New("already resolved")
	ErrUnavailable     = errors.New("unavailable")
)
