package models

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidID     = errors.New("invalid id")
	ErrValidation    = errors.New("validation error")
	ErrStaleRevision = errors.New("progression was modified concurrently")
	ErrLevelLocked   = errors.New("level is locked")
)
