// Package cleanup reclaims disk space from abandoned partial downloads
package cleanup

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"library-downloader/internal/checkpoint"
	"library-downloader/pkg/models"
)

// ActiveSessions reports whether a book currently has a live download
// session. A session in any non-terminal state protects its partial
// file and checkpoint from cleanup.
type ActiveSessions interface {
	GetProgress(bookID int64) (models.DownloadSession, bool)
}

// OutputPather maps a book id to its output file on disk
type OutputPather func(bookID int64) string

// Service removes stale partial downloads and orphaned checkpoints.
// A partial is a book output file that still has a checkpoint; a book
// file without a checkpoint is a finished download and is never touched.
type Service struct {
	checkpoints *checkpoint.Store
	sessions    ActiveSessions
	outputPath  OutputPather
	retention   time.Duration
	logger      *slog.Logger
}

// NewService creates a cleanup service. Partials whose checkpoint is
// older than retention are considered abandoned.
func NewService(checkpoints *checkpoint.Store, sessions ActiveSessions, outputPath OutputPather, retention time.Duration) *Service {
	return &Service{
		checkpoints: checkpoints,
		sessions:    sessions,
		outputPath:  outputPath,
		retention:   retention,
		logger:      slog.Default(),
	}
}

// Stats describes what a sweep found and removed
type Stats struct {
	Checkpoints         int   `json:"checkpoints"`
	StalePartials       int   `json:"stale_partials"`
	OrphanedCheckpoints int   `json:"orphaned_checkpoints"`
	ReclaimedBytes      int64 `json:"reclaimed_bytes"`
}

// Sweep walks every checkpoint and removes abandoned partials along
// with their checkpoints. Checkpoints whose output file has vanished
// are removed immediately regardless of age, since a restart would
// discard them anyway.
func (s *Service) Sweep() (*Stats, error) {
	checkpoints, err := s.checkpoints.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}

	stats := &Stats{Checkpoints: len(checkpoints)}
	cutoff := time.Now().Add(-s.retention)

	for _, cp := range checkpoints {
		if _, active := s.sessions.GetProgress(cp.BookID); active {
			continue
		}

		path := s.outputPath(cp.BookID)
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			if err := s.checkpoints.Delete(cp.BookID); err != nil {
				s.logger.Warn("Failed to delete orphaned checkpoint", "book_id", cp.BookID, "error", err)
				continue
			}
			stats.OrphanedCheckpoints++
			s.logger.Info("Removed orphaned checkpoint", "book_id", cp.BookID)
			continue
		}
		if err != nil {
			s.logger.Warn("Failed to stat partial file", "book_id", cp.BookID, "path", path, "error", err)
			continue
		}

		if cp.Timestamp.After(cutoff) {
			continue
		}

		size := info.Size()
		if err := os.Remove(path); err != nil {
			s.logger.Warn("Failed to remove stale partial", "book_id", cp.BookID, "path", path, "error", err)
			continue
		}
		if err := s.checkpoints.Delete(cp.BookID); err != nil {
			s.logger.Warn("Failed to delete checkpoint for stale partial", "book_id", cp.BookID, "error", err)
		}

		stats.StalePartials++
		stats.ReclaimedBytes += size
		s.logger.Info("Removed stale partial download",
			"book_id", cp.BookID,
			"title", cp.Title,
			"size", size,
			"last_progress", cp.Timestamp)
	}

	return stats, nil
}
