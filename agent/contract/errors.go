package contract

import "errors"

var (
	// ErrUpstream marks a transient failure of an external collaborator
	// (model, embedder, catalog). Read paths retry once, then degrade.
	ErrUpstream = errors.New("upstream call failed")

	// ErrValidation marks a malformed user-supplied value. Surfaced as a
	// targeted re-prompt, never as a system error.
	ErrValidation = errors.New("validation failed")

	// ErrPersistence marks a failed appointment commit. The draft stays in
	// place so the user can retry without re-entering anything.
	ErrPersistence = errors.New("appointment persistence failed")

	ErrNotFound = errors.New("entity not found")
)
