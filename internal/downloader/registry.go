package downloader

import (
	"sync"

	"library-downloader/internal/source"
	"library-downloader/pkg/models"
)

// Registry is the single source of truth for active download sessions.
// It enforces at most one session per book id and serves read access
// for UI polling.
type Registry struct {
	mu      sync.RWMutex
	entries map[int64]*entry
}

// entry pairs a session with the state the engine needs to drive it.
// The session is mutated only under entry.mu; the transfer loop is the
// sole writer of progress fields while pause/cancel flip the status.
type entry struct {
	mu      sync.RWMutex
	session models.DownloadSession
	handle  *source.Handle
	running bool
}

// snapshot returns a defensive copy of the session
func (e *entry) snapshot() models.DownloadSession {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session
}

func (e *entry) status() models.DownloadStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.Status
}

// confirmPause rechecks the pause flag before the transfer loop parks.
// A resume racing with the loop can flip the status back to downloading,
// in which case the loop must keep going instead of exiting.
func (e *entry) confirmPause() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.Status != models.StatusPaused {
		return false
	}
	e.running = false
	return true
}

// NewRegistry creates an empty session registry
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[int64]*entry),
	}
}

// add inserts a new entry, failing if the book already has one
func (r *Registry) add(bookID int64, e *entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[bookID]; exists {
		return ErrAlreadyInProgress
	}
	r.entries[bookID] = e
	return nil
}

func (r *Registry) get(bookID int64) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[bookID]
	return e, ok
}

func (r *Registry) remove(bookID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, bookID)
}

// GetProgress returns a snapshot of the session for a book, if one exists
func (r *Registry) GetProgress(bookID int64) (models.DownloadSession, bool) {
	e, ok := r.get(bookID)
	if !ok {
		return models.DownloadSession{}, false
	}
	return e.snapshot(), true
}

// GetAll returns snapshots of every tracked session keyed by book id
func (r *Registry) GetAll() map[int64]models.DownloadSession {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[int64]models.DownloadSession, len(r.entries))
	for bookID, e := range r.entries {
		out[bookID] = e.snapshot()
	}
	return out
}

// Len returns the number of tracked sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
