package shared

import "errors"

var (
	// ErrValidation indicates malformed input rejected before any mutation.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates a referenced record that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a name collision on creation.
	ErrDuplicate = errors.New("duplicate record")
	// ErrConflict indicates an operation rejected by current record state,
	// such as returning an entry that is already returned.
	ErrConflict = errors.New("conflict")
)
