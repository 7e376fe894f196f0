package theory

import "errors"

var (
	// ErrUnknownPitch is returned for a spelling absent from the chromatic table.
	ErrUnknownPitch = errors.New("unknown pitch")
	// ErrUnknownKey is returned for a tonic that is not one of the twelve
	// registered major keys.
	ErrUnknownKey     = errors.New("unknown key")
	ErrUnknownPattern = errors.New("unknown pattern")
	ErrUnknownTuning  = errors.New("unknown tuning")
)
