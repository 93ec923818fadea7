// Package source resolves books to remote byte streams and serves ranged reads
package source

import (
	"context"
)

// Handle identifies a resolved remote book file
type Handle struct {
	BookID         int64
	Title          string
	TotalSizeBytes int64
	URL            string
}

// BookSource defines the storage-backend boundary used by the transfer engine
//
//go:generate mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks
type BookSource interface {
	// Resolve maps a catalog book id to a remote file handle
	Resolve(ctx context.Context, bookID int64) (*Handle, error)

	// FetchRange reads exactly length bytes starting at start.
	// Ranges never overlap across calls for one handle.
	FetchRange(ctx context.Context, handle *Handle, start, length int64) ([]byte, error)
}
