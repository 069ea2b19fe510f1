// Package storage provides filesystem helpers for language pack directories
package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
)

// SpaceBuffer is kept free on top of the declared pack size so a download
// never fills the volume completely.
const SpaceBuffer = 100 * 1024 * 1024 // 100 MiB

// requiredSubdirs are the directories every installed pack must contain.
var requiredSubdirs = []string{"stt", "translation", "tts"}

// Service provides pack directory management. Routine "not found" cases
// degrade to false/empty results rather than errors, so callers never need
// error handling for absence checks.
type Service struct {
	modelsRoot string
	logger     *slog.Logger
}

// NewService creates a storage service rooted at the given models directory.
func NewService(modelsRoot string) *Service {
	return &Service{
		modelsRoot: modelsRoot,
		logger:     slog.Default(),
	}
}

// ModelsRoot returns the root directory that holds all installed packs.
func (s *Service) ModelsRoot() string {
	return s.modelsRoot
}

// PackDir returns the directory for the given pack, creating it if absent.
func (s *Service) PackDir(packID string) (string, error) {
	dir := filepath.Join(s.modelsRoot, packID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create pack directory: %w", err)
	}
	return dir, nil
}

// TempDir returns the staging directory for in-flight archive downloads,
// creating it if absent. It lives on the models volume so the final rename
// never crosses devices.
func (s *Service) TempDir() (string, error) {
	dir := filepath.Join(s.modelsRoot, ".downloads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	return dir, nil
}

// IsPackInstalled reports whether the pack directory exists and is non-empty.
func (s *Service) IsPackInstalled(packID string) bool {
	entries, err := os.ReadDir(filepath.Join(s.modelsRoot, packID))
	if err != nil {
		return false
	}
	return len(entries) > 0
}

// VerifyPackIntegrity checks that the required subdirectories exist. This is
// a structural check only; file contents are not validated.
func (s *Service) VerifyPackIntegrity(packID string) bool {
	dir := filepath.Join(s.modelsRoot, packID)
	for _, sub := range requiredSubdirs {
		info, err := os.Stat(filepath.Join(dir, sub))
		if err != nil || !info.IsDir() {
			return false
		}
	}
	return true
}

// HasEnoughSpace reports whether the models volume has at least the
// required bytes free plus the safety buffer.
func (s *Service) HasEnoughSpace(requiredBytes int64) bool {
	usage, err := disk.Usage(s.modelsRoot)
	if err != nil {
		// Fall back to the volume the parent lives on; the models root may
		// not exist yet on first run.
		usage, err = disk.Usage(filepath.Dir(s.modelsRoot))
		if err != nil {
			s.logger.Warn("Failed to query disk usage", "path", s.modelsRoot, "error", err)
			return false
		}
	}
	return usage.Free >= uint64(requiredBytes)+SpaceBuffer
}

// DeletePack recursively deletes the pack directory. Idempotent: returns
// false if the pack was not present.
func (s *Service) DeletePack(packID string) bool {
	dir := filepath.Join(s.modelsRoot, packID)
	if _, err := os.Stat(dir); err != nil {
		return false
	}
	if err := os.RemoveAll(dir); err != nil {
		s.logger.Warn("Failed to delete pack directory", "pack_id", packID, "error", err)
		return false
	}
	s.logger.Info("Language pack deleted", "pack_id", packID)
	return true
}

// InstalledPacks enumerates model-root subdirectories that pass the
// installed check.
func (s *Service) InstalledPacks() []string {
	entries, err := os.ReadDir(s.modelsRoot)
	if err != nil {
		return nil
	}

	var installed []string
	for _, entry := range entries {
		// Dot-directories hold staging state, not packs
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if s.IsPackInstalled(entry.Name()) {
			installed = append(installed, entry.Name())
		}
	}
	return installed
}

// DirSize returns the total size in bytes of all files under dir.
func (s *Service) DirSize(dir string) int64 {
	var total int64
	_ = filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total
}

// MoveFile renames src to dst, falling back to copy+delete across devices.
func (s *Service) MoveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := s.CopyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// CopyFile copies src to dst, creating parent directories as needed.
func (s *Service) CopyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}
	return out.Sync()
}
