package domain

import "errors"

var (
	// Common domain errors
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrInvalidRangeFormat   = errors.New("invalid gift range format")
	ErrRangeIndexOutOfRange = errors.New("gift range index out of range")
	ErrPersistRanges        = errors.New("failed to persist gift ranges")
	ErrPeerInvalid          = errors.New("recipient peer could not be resolved")
	ErrInsufficientBalance  = errors.New("insufficient star balance")
	ErrCatalogUnavailable   = errors.New("gift catalog unavailable")
)
