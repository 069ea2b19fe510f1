// Package extractor provides archive extraction for language pack bundles
package extractor

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nwaples/rardecode"
)

// Extractor defines archive extraction operations
type Extractor interface {
	Extract(ctx context.Context, archivePath, destPath string) ([]string, error)
	IsArchive(filename string) bool
}

// Service provides archive extraction services. Extraction preserves the
// archive's relative paths under the destination directory and polls the
// context between entries so a cancel takes effect within one entry's
// processing time.
type Service struct {
	logger *slog.Logger
}

// NewService creates a new extractor service
func NewService() *Service {
	return &Service{
		logger: slog.Default(),
	}
}

// Extract extracts an archive file to the specified destination
func (s *Service) Extract(ctx context.Context, archivePath, destPath string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(archivePath))

	switch ext {
	case ".zip":
		return s.extractZip(ctx, archivePath, destPath)
	case ".rar":
		return s.extractRar(ctx, archivePath, destPath)
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", ext)
	}
}

// IsArchive checks if a file is a supported archive format
func (s *Service) IsArchive(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".zip" || ext == ".rar"
}

// safeEntryPath resolves an archive entry name under destPath, rejecting
// names that would escape it.
func safeEntryPath(destPath, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("entry path escapes destination: %s", name)
	}
	return filepath.Join(destPath, cleaned), nil
}

// extractZip extracts a ZIP archive using Go's built-in archive/zip package
func (s *Service) extractZip(ctx context.Context, archivePath, destPath string) ([]string, error) {
	s.logger.Info("Extracting ZIP archive", "archive", archivePath, "dest", destPath)

	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open ZIP archive: %w", err)
	}
	defer reader.Close()

	if err := os.MkdirAll(destPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create destination directory: %w", err)
	}

	var extractedFiles []string

	for _, file := range reader.File {
		if err := ctx.Err(); err != nil {
			return extractedFiles, fmt.Errorf("extraction cancelled: %w", err)
		}

		fullPath, err := safeEntryPath(destPath, file.Name)
		if err != nil {
			s.logger.Warn("Skipping entry with unsafe path", "entry", file.Name)
			continue
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(fullPath, 0o755); err != nil {
				return extractedFiles, fmt.Errorf("failed to create directory %s: %w", file.Name, err)
			}
			continue
		}

		if err := s.extractZipFile(file, fullPath); err != nil {
			return extractedFiles, fmt.Errorf("failed to extract %s: %w", file.Name, err)
		}

		extractedFiles = append(extractedFiles, fullPath)
		s.logger.Debug("Extracted file", "entry", file.Name, "extracted_to", fullPath)
	}

	s.logger.Info("ZIP extraction completed", "archive", archivePath, "extracted_files", len(extractedFiles))
	return extractedFiles, nil
}

// extractZipFile extracts a single file from a ZIP archive
func (s *Service) extractZipFile(file *zip.File, destPath string) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open file in archive: %w", err)
	}
	defer reader.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	mode := file.FileInfo().Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}

	writer, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer writer.Close()

	_, err = io.Copy(writer, reader)
	if err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}

	return nil
}

// extractRar extracts a RAR archive using the rardecode library. Older pack
// bundles were shipped as RAR; current ones are ZIP only.
func (s *Service) extractRar(ctx context.Context, archivePath, destPath string) ([]string, error) {
	s.logger.Info("Extracting RAR archive", "archive", archivePath, "dest", destPath)

	rarReader, err := rardecode.OpenReader(archivePath, "")
	if err != nil {
		return nil, fmt.Errorf("failed to open RAR archive: %w", err)
	}
	defer rarReader.Close()

	if err := os.MkdirAll(destPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create destination directory: %w", err)
	}

	var extractedFiles []string

	for {
		if err := ctx.Err(); err != nil {
			return extractedFiles, fmt.Errorf("extraction cancelled: %w", err)
		}

		header, err := rarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return extractedFiles, fmt.Errorf("failed to read RAR header: %w", err)
		}

		fullPath, err := safeEntryPath(destPath, header.Name)
		if err != nil {
			s.logger.Warn("Skipping entry with unsafe path", "entry", header.Name)
			continue
		}

		if header.IsDir {
			if err := os.MkdirAll(fullPath, 0o755); err != nil {
				return extractedFiles, fmt.Errorf("failed to create directory %s: %w", header.Name, err)
			}
			continue
		}

		if err := s.extractRarFile(rarReader, fullPath, header.Mode().Perm()); err != nil {
			return extractedFiles, fmt.Errorf("failed to extract %s: %w", header.Name, err)
		}

		extractedFiles = append(extractedFiles, fullPath)
		s.logger.Debug("Extracted file", "entry", header.Name, "extracted_to", fullPath)
	}

	s.logger.Info("RAR extraction completed", "archive", archivePath, "extracted_files", len(extractedFiles))
	return extractedFiles, nil
}

// extractRarFile extracts a single file from a RAR archive
func (s *Service) extractRarFile(reader io.Reader, destPath string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	if mode == 0 {
		mode = 0o644
	}

	writer, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer writer.Close()

	_, err = io.Copy(writer, reader)
	if err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}

	return nil
}
