package stack

import "errors"

// Lookup errors.
var (
	ErrMetalNotFound = errors.New("metal layer not found")
	ErrViaNotFound   = errors.New("via not found")
)

// Invariant violations. Operations check these before mutating anything,
// so a failed call leaves the stack unchanged.
var (
	ErrDuplicateName       = errors.New("name already in use")
	ErrInterfaceOccupied   = errors.New("interface already has a metal attached")
	ErrInterfaceOutOfRange = errors.New("interface index out of range")
	ErrAlreadyAttached     = errors.New("metal layer is already attached to a stack")
	ErrNotAttached         = errors.New("metal layer is not attached")
	ErrNoStraddlingLayer   = errors.New("no oxide layer straddles the split position")
	ErrBadMergeRun         = errors.New("merge run must cover at least two contiguous oxide layers")
	ErrMetalBoundary       = errors.New("merge run interior contains a metal boundary interface")
	ErrSameMetal           = errors.New("via must connect two distinct metal layers")
)

// ErrMetalOverlap is the geometric inconsistency reported when a derived
// via height is negative, meaning the two connected metals overlap.
var ErrMetalOverlap = errors.New("via height is negative: connected metals overlap")
