package models

import (
	"time"
)

// ResumeSchemaVersion is the canonical schema version for persisted resume
// records. Version 1 corresponds to the four-field record carrying the
// partial file path; the older three-field variant without a path is not
// resumable and is rejected on import.
const ResumeSchemaVersion = 1

// ResumeState is the durable record of a paused download. A record exists
// if and only if a pause is currently believed durable: it is created on
// pause and deleted on successful completion or explicit cancel.
type ResumeState struct {
	PackID          string    `json:"pack_id" db:"pack_id"`
	SourceURL       string    `json:"source_url" db:"source_url"`
	DownloadedBytes int64     `json:"downloaded_bytes" db:"downloaded_bytes"`
	TotalBytes      int64     `json:"total_bytes" db:"total_bytes"`
	PartialPath     string    `json:"partial_path" db:"partial_path"`
	SchemaVersion   int       `json:"schema_version" db:"schema_version"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
