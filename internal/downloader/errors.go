package downloader

import "errors"

var (
	// ErrAlreadyInProgress is returned when a second transfer is started
	// for a book that already has an active session
	ErrAlreadyInProgress = errors.New("download already in progress")
)
