// Package models defines the data structures used throughout the application
package models

import (
	"time"
)

// DownloadStatus represents the current status of a download session
type DownloadStatus string

const (
	StatusPending     DownloadStatus = "pending"
	StatusDownloading DownloadStatus = "downloading"
	StatusPaused      DownloadStatus = "paused"
	StatusCompleted   DownloadStatus = "completed"
	StatusError       DownloadStatus = "error"
	StatusCancelled   DownloadStatus = "cancelled"
)

// IsTerminal reports whether the status admits no further transitions
func (s DownloadStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError || s == StatusCancelled
}

// NetworkCondition is a coarse connection-quality bucket used to pick a
// chunk size trading latency overhead against resume granularity
type NetworkCondition string

const (
	NetworkDialup NetworkCondition = "dialup"
	NetworkSlow2G NetworkCondition = "slow_2g"
	NetworkFast2G NetworkCondition = "fast_2g"
	NetworkSlow3G NetworkCondition = "slow_3g"
	NetworkFast3G NetworkCondition = "fast_3g"
	NetworkWiFi   NetworkCondition = "wifi"
)

// DownloadSession represents the live state of one book's download.
// At most one session exists per book id at any time.
type DownloadSession struct {
	BookID          int64            `json:"book_id"`
	Title           string           `json:"title"`
	TotalSizeBytes  int64            `json:"total_size_bytes"`
	DownloadedBytes int64            `json:"downloaded_bytes"`
	ChunkSizeBytes  int64            `json:"chunk_size_bytes"`
	Network         NetworkCondition `json:"network_condition"`
	CurrentChunk    int64            `json:"current_chunk"`
	TotalChunks     int64            `json:"total_chunks"`
	StartedAt       time.Time        `json:"started_at"`
	SpeedBPS        float64          `json:"speed_bytes_per_second"`
	ETASeconds      float64          `json:"estimated_seconds_remaining"`
	Status          DownloadStatus   `json:"status"`
	ErrorMessage    string           `json:"error_message,omitempty"`
}

// PercentComplete returns the completion percentage in [0, 100]
func (s *DownloadSession) PercentComplete() float64 {
	if s.TotalSizeBytes <= 0 {
		return 0
	}
	return float64(s.DownloadedBytes) / float64(s.TotalSizeBytes) * 100
}

// ResumeCheckpoint is the durable record of how many bytes of a book have
// been written, enabling resume after interruption or restart
type ResumeCheckpoint struct {
	BookID          int64     `json:"book_id"`
	Title           string    `json:"title"`
	TotalSizeBytes  int64     `json:"total_size_bytes"`
	DownloadedBytes int64     `json:"downloaded_bytes"`
	CurrentChunk    int64     `json:"current_chunk"`
	Timestamp       time.Time `json:"timestamp"`
}

// StudentProgress is the rounded, human-oriented projection of a session
// served to the UI layer
type StudentProgress struct {
	Title           string  `json:"book_title"`
	Status          string  `json:"status"`
	PercentComplete float64 `json:"percentage_complete"`
	DownloadedMB    float64 `json:"downloaded_mb"`
	TotalMB         float64 `json:"total_mb"`
	CurrentChunk    int64   `json:"current_chunk"`
	TotalChunks     int64   `json:"total_chunks"`
	SpeedKBps       float64 `json:"speed_kbps"`
	ETAMinutes      float64 `json:"eta_minutes"`
	Message         string  `json:"student_message"`
}

// Book is a catalog entry
type Book struct {
	ID       int64  `json:"id" db:"id"`
	Title    string `json:"title" db:"title"`
	Author   string `json:"author" db:"author"`
	FileSize int64  `json:"file_size" db:"file_size"`
}

// DownloadRecord is one row of the spending ledger
type DownloadRecord struct {
	ID        int64     `json:"id" db:"id"`
	BookID    int64     `json:"book_id" db:"book_id"`
	CostUSD   float64   `json:"cost_usd" db:"cost_usd"`
	Method    string    `json:"method" db:"method"`
	Month     string    `json:"month" db:"month"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
