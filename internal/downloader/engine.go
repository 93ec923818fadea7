// Package downloader implements the resumable chunked transfer engine
// and the registry of active download sessions
package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"library-downloader/internal/checkpoint"
	"library-downloader/internal/messaging"
	"library-downloader/internal/source"
	"library-downloader/pkg/models"
)

// Chunk sizes per network condition. Small chunks keep resume granularity
// fine on unreliable links; large chunks cut per-request overhead.
var chunkSizes = map[models.NetworkCondition]int64{
	models.NetworkDialup: 8 * 1024,
	models.NetworkSlow2G: 16 * 1024,
	models.NetworkFast2G: 32 * 1024,
	models.NetworkSlow3G: 64 * 1024,
	models.NetworkFast3G: 128 * 1024,
	models.NetworkWiFi:   256 * 1024,
}

// ChunkSizeFor returns the chunk size for a network condition.
// Unknown conditions fall back to the conservative slow-3G bucket.
func ChunkSizeFor(network models.NetworkCondition) int64 {
	if size, ok := chunkSizes[network]; ok {
		return size
	}
	return chunkSizes[models.NetworkSlow3G]
}

// DetectNetworkCondition estimates the current connection quality.
// Measurement is not wired up yet, so it returns the conservative
// default used for students on unknown connections.
func DetectNetworkCondition() models.NetworkCondition {
	return models.NetworkSlow3G
}

// ProgressFunc receives a session snapshot after every committed chunk
// and once more on any terminal transition
type ProgressFunc func(models.DownloadSession)

// Engine performs resumable chunked transfers, one background goroutine
// per active session
type Engine struct {
	registry     *Registry
	checkpoints  *checkpoint.Store
	source       source.BookSource
	downloadsDir string
	onProgress   ProgressFunc
	logger       *slog.Logger
	wg           sync.WaitGroup
}

// NewEngine creates a transfer engine writing book files to downloadsDir.
// onProgress may be nil.
func NewEngine(registry *Registry, checkpoints *checkpoint.Store, src source.BookSource, downloadsDir string, onProgress ProgressFunc) (*Engine, error) {
	if err := os.MkdirAll(downloadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create downloads directory: %w", err)
	}

	return &Engine{
		registry:     registry,
		checkpoints:  checkpoints,
		source:       src,
		downloadsDir: downloadsDir,
		onProgress:   onProgress,
		logger:       slog.Default(),
	}, nil
}

// Registry exposes the session registry for read access
func (eng *Engine) Registry() *Registry {
	return eng.registry
}

// OutputPath returns where a book's bytes are written
func (eng *Engine) OutputPath(bookID int64) string {
	return filepath.Join(eng.downloadsDir, fmt.Sprintf("book_%d.pdf", bookID))
}

// StartTransfer begins (or resumes, if a checkpoint exists) the chunked
// download of one book on a background goroutine. It returns a snapshot
// of the freshly created session, or ErrAlreadyInProgress if the book
// already has an active one.
func (eng *Engine) StartTransfer(ctx context.Context, handle *source.Handle, network models.NetworkCondition) (models.DownloadSession, error) {
	chunkSize := ChunkSizeFor(network)
	totalChunks := (handle.TotalSizeBytes + chunkSize - 1) / chunkSize

	e := &entry{
		session: models.DownloadSession{
			BookID:         handle.BookID,
			Title:          handle.Title,
			TotalSizeBytes: handle.TotalSizeBytes,
			ChunkSizeBytes: chunkSize,
			Network:        network,
			TotalChunks:    totalChunks,
			StartedAt:      time.Now(),
			Status:         models.StatusPending,
		},
		handle:  handle,
		running: true,
	}

	if err := eng.registry.add(handle.BookID, e); err != nil {
		return models.DownloadSession{}, err
	}

	eng.logger.Info("Download started",
		"book_id", handle.BookID,
		"title", handle.Title,
		"total_bytes", handle.TotalSizeBytes,
		"chunk_size", chunkSize,
		"network", network)

	eng.wg.Add(1)
	go eng.run(ctx, e)

	return e.snapshot(), nil
}

// Pause halts an active download at the next chunk boundary, keeping its
// checkpoint. Returns false if the book has no downloading session.
func (eng *Engine) Pause(bookID int64) bool {
	e, ok := eng.registry.get(bookID)
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.Status != models.StatusDownloading {
		return false
	}
	e.session.Status = models.StatusPaused

	eng.logger.Info("Download paused", "book_id", bookID)
	return true
}

// Resume continues a paused download from its checkpoint. If the transfer
// loop already exited it is relaunched. Returns false if the session is
// not paused.
func (eng *Engine) Resume(ctx context.Context, bookID int64) bool {
	e, ok := eng.registry.get(bookID)
	if !ok {
		return false
	}

	e.mu.Lock()
	if e.session.Status != models.StatusPaused {
		e.mu.Unlock()
		return false
	}
	e.session.Status = models.StatusDownloading
	network := e.session.Network
	relaunch := !e.running
	if relaunch {
		e.running = true
	}
	e.mu.Unlock()

	if relaunch {
		eng.wg.Add(1)
		go eng.run(ctx, e)
	}

	eng.logger.Info("Download resumed", "book_id", bookID, "network", network)
	return true
}

// Cancel aborts a session from any non-terminal state, removing its
// output file, checkpoint, and registry entry. Returns false if the book
// has no session.
func (eng *Engine) Cancel(bookID int64) bool {
	e, ok := eng.registry.get(bookID)
	if !ok {
		return false
	}

	e.mu.Lock()
	if e.session.Status.IsTerminal() {
		e.mu.Unlock()
		return false
	}
	e.session.Status = models.StatusCancelled
	wasRunning := e.running
	e.mu.Unlock()

	// A live transfer loop observes the flag at the next chunk boundary
	// and cleans up itself; a parked one is cleaned up here.
	if !wasRunning {
		eng.removeArtifacts(bookID)
		eng.registry.remove(bookID)
		eng.notify(e)
	}

	eng.logger.Info("Download cancelled", "book_id", bookID)
	return true
}

// GetProgress returns a snapshot of the session for a book, if one exists
func (eng *Engine) GetProgress(bookID int64) (models.DownloadSession, bool) {
	return eng.registry.GetProgress(bookID)
}

// GetStudentProgress returns the rounded, student-facing projection of a
// session, including the encouragement message
func (eng *Engine) GetStudentProgress(bookID int64) (*models.StudentProgress, bool) {
	s, ok := eng.registry.GetProgress(bookID)
	if !ok {
		return nil, false
	}

	return &models.StudentProgress{
		Title:           s.Title,
		Status:          string(s.Status),
		PercentComplete: round1(s.PercentComplete()),
		DownloadedMB:    round1(float64(s.DownloadedBytes) / (1024 * 1024)),
		TotalMB:         round1(float64(s.TotalSizeBytes) / (1024 * 1024)),
		CurrentChunk:    s.CurrentChunk,
		TotalChunks:     s.TotalChunks,
		SpeedKBps:       round1(s.SpeedBPS / 1024),
		ETAMinutes:      round1(s.ETASeconds / 60),
		Message:         messaging.ProgressMessage(s),
	}, true
}

// Wait blocks until every transfer goroutine has exited. Call after
// cancelling the context passed to StartTransfer during shutdown.
func (eng *Engine) Wait() {
	eng.wg.Wait()
}

// run is the transfer loop. Exactly one run goroutine mutates a session's
// progress at a time; pause and cancel are observed only between chunks.
func (eng *Engine) run(ctx context.Context, e *entry) {
	defer eng.wg.Done()

	bookID := e.handle.BookID
	totalSize := e.handle.TotalSizeBytes
	outputPath := eng.OutputPath(bookID)

	startByte, err := eng.loadResumeOffset(e, outputPath)
	if err != nil {
		eng.fail(e, err)
		return
	}

	// A pause or cancel may have landed before this goroutine was
	// scheduled; only promote a still-pending session.
	e.mu.Lock()
	if e.session.Status == models.StatusPending {
		e.session.Status = models.StatusDownloading
	}
	e.session.DownloadedBytes = startByte
	e.session.CurrentChunk = startByte / e.session.ChunkSizeBytes
	chunkSize := e.session.ChunkSizeBytes
	e.mu.Unlock()

	var file *os.File
	if startByte > 0 {
		file, err = os.OpenFile(outputPath, os.O_APPEND|os.O_WRONLY, 0o644)
	} else {
		file, err = os.Create(outputPath)
	}
	if err != nil {
		eng.fail(e, fmt.Errorf("failed to open output file: %w", err))
		return
	}
	defer file.Close()

	tracker := newSpeedTracker()
	lastSampleAt := time.Now()
	lastSampleBytes := startByte
	offset := startByte

	for offset < totalSize {
		switch e.status() {
		case models.StatusCancelled:
			eng.removeArtifacts(bookID)
			eng.registry.remove(bookID)
			eng.notify(e)
			return
		case models.StatusPaused:
			if e.confirmPause() {
				eng.logger.Info("Transfer parked", "book_id", bookID, "downloaded_bytes", offset)
				eng.notify(e)
				return
			}
			continue
		}

		if ctx.Err() != nil {
			eng.park(e)
			return
		}

		chunkLen := chunkSize
		if remaining := totalSize - offset; remaining < chunkLen {
			chunkLen = remaining
		}

		data, err := eng.source.FetchRange(ctx, e.handle, offset, chunkLen)
		if err != nil {
			if ctx.Err() != nil {
				eng.park(e)
				return
			}
			eng.fail(e, fmt.Errorf("chunk fetch failed: %w", err))
			return
		}

		if _, err := file.Write(data); err != nil {
			eng.fail(e, fmt.Errorf("failed to write chunk: %w", err))
			return
		}
		// Chunk i+1 never starts before chunk i is durably on disk and
		// its checkpoint recorded; resume correctness depends on this.
		if err := file.Sync(); err != nil {
			eng.fail(e, fmt.Errorf("failed to flush chunk: %w", err))
			return
		}

		offset += chunkLen

		now := time.Now()
		if secs := now.Sub(lastSampleAt).Seconds(); secs >= minSampleDuration {
			tracker.add(offset-lastSampleBytes, secs)
			lastSampleAt = now
			lastSampleBytes = offset
		}
		speed := tracker.speed(offset-lastSampleBytes, time.Since(lastSampleAt).Seconds())

		e.mu.Lock()
		e.session.DownloadedBytes = offset
		e.session.CurrentChunk++
		e.session.SpeedBPS = speed
		if speed > 0 {
			e.session.ETASeconds = float64(totalSize-offset) / speed
		}
		cp := models.ResumeCheckpoint{
			BookID:          bookID,
			Title:           e.session.Title,
			TotalSizeBytes:  totalSize,
			DownloadedBytes: offset,
			CurrentChunk:    e.session.CurrentChunk,
			Timestamp:       now,
		}
		e.mu.Unlock()

		if err := eng.checkpoints.Save(&cp); err != nil {
			eng.fail(e, fmt.Errorf("failed to persist checkpoint: %w", err))
			return
		}

		eng.notify(e)
	}

	eng.complete(e)
}

// loadResumeOffset returns where the transfer should begin. A checkpoint
// whose recorded total disagrees with the source's current size is stale
// (the remote file changed) and is discarded along with any partial output.
func (eng *Engine) loadResumeOffset(e *entry, outputPath string) (int64, error) {
	cp, err := eng.checkpoints.Load(e.handle.BookID)
	if err != nil {
		return 0, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if cp == nil {
		return 0, nil
	}

	if cp.TotalSizeBytes != e.handle.TotalSizeBytes || cp.DownloadedBytes > cp.TotalSizeBytes {
		eng.logger.Warn("Discarding stale checkpoint",
			"book_id", e.handle.BookID,
			"checkpoint_total", cp.TotalSizeBytes,
			"source_total", e.handle.TotalSizeBytes)
		if err := eng.checkpoints.Delete(e.handle.BookID); err != nil {
			return 0, err
		}
		if err := os.Remove(outputPath); err != nil && !os.IsNotExist(err) {
			return 0, fmt.Errorf("failed to remove stale output: %w", err)
		}
		return 0, nil
	}

	// Reconcile the partial file with the last committed checkpoint: a
	// crash between flush and checkpoint save leaves the file at most one
	// chunk ahead, and those uncommitted bytes must be dropped before
	// appending resumes.
	info, statErr := os.Stat(outputPath)
	switch {
	case statErr != nil:
		return 0, nil
	case info.Size() < cp.DownloadedBytes:
		return 0, nil
	case info.Size() > cp.DownloadedBytes:
		if err := os.Truncate(outputPath, cp.DownloadedBytes); err != nil {
			return 0, fmt.Errorf("failed to truncate partial output: %w", err)
		}
	}

	eng.logger.Info("Resuming from checkpoint",
		"book_id", e.handle.BookID,
		"downloaded_bytes", cp.DownloadedBytes)
	return cp.DownloadedBytes, nil
}

// complete finalizes a fully transferred session
func (eng *Engine) complete(e *entry) {
	bookID := e.handle.BookID

	e.mu.Lock()
	e.session.Status = models.StatusCompleted
	e.session.DownloadedBytes = e.session.TotalSizeBytes
	e.session.CurrentChunk = e.session.TotalChunks
	e.session.ETASeconds = 0
	e.running = false
	e.mu.Unlock()

	if err := eng.checkpoints.Delete(bookID); err != nil {
		eng.logger.Warn("Failed to remove checkpoint after completion", "book_id", bookID, "error", err)
	}

	eng.notify(e)
	eng.registry.remove(bookID)

	eng.logger.Info("Download completed", "book_id", bookID, "total_bytes", e.handle.TotalSizeBytes)
}

// fail marks the session errored, keeps its checkpoint for a later
// user-initiated resume, and releases it from the active set
func (eng *Engine) fail(e *entry, err error) {
	bookID := e.handle.BookID

	e.mu.Lock()
	e.session.Status = models.StatusError
	e.session.ErrorMessage = err.Error()
	e.running = false
	e.mu.Unlock()

	eng.logger.Error("Download failed", "book_id", bookID, "error", err)

	eng.notify(e)
	eng.registry.remove(bookID)
}

// park exits the transfer loop on context cancellation, leaving the
// session paused and resumable
func (eng *Engine) park(e *entry) {
	e.mu.Lock()
	if !e.session.Status.IsTerminal() {
		e.session.Status = models.StatusPaused
	}
	e.running = false
	e.mu.Unlock()

	eng.logger.Info("Transfer parked by shutdown", "book_id", e.handle.BookID)
	eng.notify(e)
}

// removeArtifacts deletes the output file and checkpoint for a book
func (eng *Engine) removeArtifacts(bookID int64) {
	if err := os.Remove(eng.OutputPath(bookID)); err != nil && !os.IsNotExist(err) {
		eng.logger.Warn("Failed to remove output file", "book_id", bookID, "error", err)
	}
	if err := eng.checkpoints.Delete(bookID); err != nil {
		eng.logger.Warn("Failed to remove checkpoint", "book_id", bookID, "error", err)
	}
}

func (eng *Engine) notify(e *entry) {
	if eng.onProgress == nil {
		return
	}
	eng.onProgress(e.snapshot())
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
