package interfaces

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors shared by all repository backends
var (
	// ErrNotFound is returned by mutations that target a missing record
	ErrNotFound = goerr.New("record not found")

	// ErrAlreadyExists is returned when a uniqueness constraint rejects a write
	ErrAlreadyExists = goerr.New("record already exists")
)
