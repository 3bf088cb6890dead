package ml

import "errors"

var (
	// ErrShapeMismatch indicates operands or samples whose dimensions disagree.
	ErrShapeMismatch = errors.New("ml: shape mismatch")
	// ErrIO indicates the parameter file could not be created, read or written.
	ErrIO = errors.New("ml: i/o failure")
	// ErrParse indicates the parameter file is not valid or misses a required field.
	ErrParse = errors.New("ml: malformed parameter file")
	// ErrInvalidTopology indicates fewer than two layers or a non-positive layer width.
	ErrInvalidTopology = errors.New("ml: invalid topology")
	// ErrUnknownActivation indicates an activation name or value outside the supported set.
	ErrUnknownActivation = errors.New("ml: unknown activation")
	// ErrActivationMismatch indicates a parameter file trained with another activation.
	ErrActivationMismatch = errors.New("ml: activation mismatch")
	// ErrNoForwardPass indicates back propagation without a matching forward pass.
	ErrNoForwardPass = errors.New("ml: no forward pass cached")
)
