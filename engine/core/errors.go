package core

import (
	"errors"
)

var (
	ErrNoActiveCamera     = errors.New("no active camera")
	ErrBehaviorNotFound   = errors.New("behavior not registered")
	ErrCycle              = errors.New("reparenting would create a cycle")
	ErrNotInGraph         = errors.New("entity is not part of the scene graph")
	ErrBackendUnavailable = errors.New("render backend unavailable")
	ErrMalformedScene     = errors.New("malformed scene data")
	ErrInvalidMaterial    = errors.New("invalid material")
)
