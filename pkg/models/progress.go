package models

import (
	"time"
)

// DownloadStatus represents the current status of a pack download
type DownloadStatus string

const (
	StatusDownloading DownloadStatus = "downloading"
	StatusPaused      DownloadStatus = "paused"
	StatusExtracting  DownloadStatus = "extracting"
	StatusVerifying   DownloadStatus = "verifying"
	StatusCompleted   DownloadStatus = "completed"
	StatusFailed      DownloadStatus = "failed"
	StatusCancelled   DownloadStatus = "cancelled"
)

// Terminal reports whether the status ends a download lifecycle.
func (s DownloadStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// DownloadProgress is an immutable snapshot of one pack's download state.
// A new value replaces the previous one on every update; consumers never
// see partial mutations.
type DownloadProgress struct {
	PackID          string         `json:"pack_id"`
	Status          DownloadStatus `json:"status"`
	Progress        float64        `json:"progress"` // 0.0 .. 1.0
	DownloadedBytes int64          `json:"downloaded_bytes"`
	TotalBytes      int64          `json:"total_bytes"`
	BytesPerSecond  float64        `json:"bytes_per_second,omitempty"`
	ErrorMessage    string         `json:"error_message,omitempty"`
}

// Percent returns the progress as a 0-100 percentage.
func (p DownloadProgress) Percent() float64 {
	return p.Progress * 100
}

// ETA estimates the remaining transfer time from the instantaneous
// throughput. Returns zero when the speed is unknown.
func (p DownloadProgress) ETA() time.Duration {
	if p.BytesPerSecond <= 0 || p.TotalBytes <= p.DownloadedBytes {
		return 0
	}
	remaining := float64(p.TotalBytes-p.DownloadedBytes) / p.BytesPerSecond
	return time.Duration(remaining * float64(time.Second))
}
