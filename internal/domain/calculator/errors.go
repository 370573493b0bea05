package calculator

import "errors"

// Sentinel kinds for combination-generation errors.
var (
	ErrAmbiguousExternalID = errors.New("ambiguous person external id")
)
