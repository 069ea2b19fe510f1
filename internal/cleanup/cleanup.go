// Package cleanup reconciles on-disk download state with the resume-record
// store after a crash or unclean shutdown
package cleanup

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"langpack-manager/pkg/models"
)

// partialSuffix marks staged archive files.
const partialSuffix = ".part"

// StateStore is the resume-record access the sweep needs.
type StateStore interface {
	List() ([]*models.ResumeState, error)
	Delete(packID string) error
}

// Storage is the filesystem access the sweep needs.
type Storage interface {
	TempDir() (string, error)
	InstalledPacks() []string
	VerifyPackIntegrity(packID string) bool
	DeletePack(packID string) bool
}

// Service removes download artifacts that lost their owner: staged partials
// without a resume record, resume records without a partial file, and
// half-installed pack directories that fail verification. Meant to run once
// at startup, before any download is rehydrated or started.
type Service struct {
	states  StateStore
	storage Storage
	logger  *slog.Logger
}

// NewService creates a cleanup service.
func NewService(states StateStore, storage Storage) *Service {
	return &Service{
		states:  states,
		storage: storage,
		logger:  slog.Default(),
	}
}

// SweepStats reports what one sweep removed.
type SweepStats struct {
	OrphanedPartials int `json:"orphaned_partials"`
	StaleRecords     int `json:"stale_records"`
	BrokenInstalls   int `json:"broken_installs"`
}

// Sweep runs all reconciliation passes and returns what was removed.
func (s *Service) Sweep() (SweepStats, error) {
	var stats SweepStats

	records, err := s.states.List()
	if err != nil {
		return stats, fmt.Errorf("failed to list resume records: %w", err)
	}

	referenced := make(map[string]struct{}, len(records))
	for _, record := range records {
		referenced[filepath.Clean(record.PartialPath)] = struct{}{}
	}

	stats.OrphanedPartials = s.sweepPartials(referenced)
	stats.StaleRecords = s.sweepRecords(records)
	stats.BrokenInstalls = s.sweepInstalls()

	if stats.OrphanedPartials+stats.StaleRecords+stats.BrokenInstalls > 0 {
		s.logger.Info("Cleanup sweep finished",
			"orphaned_partials", stats.OrphanedPartials,
			"stale_records", stats.StaleRecords,
			"broken_installs", stats.BrokenInstalls)
	}
	return stats, nil
}

// sweepPartials removes staged partial files no resume record points at.
func (s *Service) sweepPartials(referenced map[string]struct{}) int {
	tmpDir, err := s.storage.TempDir()
	if err != nil {
		s.logger.Warn("Failed to open staging directory", "error", err)
		return 0
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		s.logger.Warn("Failed to read staging directory", "dir", tmpDir, "error", err)
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), partialSuffix) {
			continue
		}
		path := filepath.Join(tmpDir, entry.Name())
		if _, ok := referenced[filepath.Clean(path)]; ok {
			continue
		}
		if err := os.Remove(path); err != nil {
			s.logger.Warn("Failed to remove orphaned partial", "path", path, "error", err)
			continue
		}
		s.logger.Info("Removed orphaned partial", "path", path)
		removed++
	}
	return removed
}

// sweepRecords drops resume records whose partial file no longer exists.
// Resuming them would restart from zero anyway, and a stale record would
// keep re-scheduling background work forever.
func (s *Service) sweepRecords(records []*models.ResumeState) int {
	removed := 0
	for _, record := range records {
		if _, err := os.Stat(record.PartialPath); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			s.logger.Warn("Failed to stat partial file", "path", record.PartialPath, "error", err)
			continue
		}
		if err := s.states.Delete(record.PackID); err != nil {
			s.logger.Warn("Failed to delete stale resume record", "pack_id", record.PackID, "error", err)
			continue
		}
		s.logger.Info("Removed stale resume record", "pack_id", record.PackID)
		removed++
	}
	return removed
}

// sweepInstalls removes pack directories that fail verification. A crash
// between extraction and verification leaves exactly this shape behind.
func (s *Service) sweepInstalls() int {
	removed := 0
	for _, packID := range s.storage.InstalledPacks() {
		if s.storage.VerifyPackIntegrity(packID) {
			continue
		}
		if s.storage.DeletePack(packID) {
			s.logger.Info("Removed broken install", "pack_id", packID)
			removed++
		}
	}
	return removed
}
