package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrCommitted = errors.New("store already committed")
)
