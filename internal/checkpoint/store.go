// Package checkpoint persists per-book resume state across process restarts
package checkpoint

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"library-downloader/pkg/models"
)

// Store keeps one JSON file per book id under a resume directory.
// Only the transfer engine writes to it, and never from two goroutines
// for the same book.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates the resume directory if needed
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create resume directory: %w", err)
	}

	return &Store{
		dir:    dir,
		logger: slog.Default(),
	}, nil
}

func (s *Store) path(bookID int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("book_%d.json", bookID))
}

// Save writes the checkpoint for its book, replacing any previous one.
// The write goes through a temp file and rename so a crash mid-write
// never leaves a torn checkpoint behind.
func (s *Store) Save(cp *models.ResumeCheckpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	tmpPath := s.path(cp.BookID) + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := os.Rename(tmpPath, s.path(cp.BookID)); err != nil {
		return fmt.Errorf("failed to commit checkpoint: %w", err)
	}

	return nil
}

// Load returns the checkpoint for a book, or nil if none exists.
// A corrupt checkpoint file is treated as absent.
func (s *Store) Load(bookID int64) (*models.ResumeCheckpoint, error) {
	data, err := os.ReadFile(s.path(bookID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	var cp models.ResumeCheckpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		s.logger.Warn("Discarding unreadable checkpoint", "book_id", bookID, "error", err)
		return nil, nil
	}

	return &cp, nil
}

// List returns every readable checkpoint in the resume directory.
// Unreadable files are skipped with a warning so one bad checkpoint
// does not hide the rest.
func (s *Store) List() ([]*models.ResumeCheckpoint, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read resume directory: %w", err)
	}

	var checkpoints []*models.ResumeCheckpoint
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		var bookID int64
		if _, err := fmt.Sscanf(entry.Name(), "book_%d.json", &bookID); err != nil {
			continue
		}

		cp, err := s.Load(bookID)
		if err != nil {
			s.logger.Warn("Skipping checkpoint", "file", entry.Name(), "error", err)
			continue
		}
		if cp != nil {
			checkpoints = append(checkpoints, cp)
		}
	}

	return checkpoints, nil
}

// Delete removes the checkpoint for a book; missing files are not an error
func (s *Store) Delete(bookID int64) error {
	if err := os.Remove(s.path(bookID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}
