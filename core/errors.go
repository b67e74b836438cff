package core

import "errors"

// Every expected request-level failure maps to one of these sentinels.
// Handlers match them with errors.Is and render them as a message, so no
// user mistake crashes the process. Additional context is added with
// fmt.Errorf("%w: ...").
var (
	ErrNotAuthenticated = errors.New("not signed in")
	ErrCredentials      = errors.New("wrong email or password")
	ErrPrivilege        = errors.New("insufficient privileges")
	ErrInvalidInput     = errors.New("missing or invalid input")
	ErrConflict         = errors.New("conflict")
	ErrNotFound         = errors.New("not found")
	ErrTransition       = errors.New("status change not allowed")
)
