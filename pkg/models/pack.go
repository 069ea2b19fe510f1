// Package models defines the data structures used throughout the application
package models

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// LanguagePackInfo is a static catalog entry describing one downloadable
// bundle of speech/translation model files for a language pair.
type LanguagePackInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	SizeBytes  int64  `json:"size_bytes"`
	RemoteFile string `json:"remote_file"`
}

// DownloadURL derives the full download URL for the pack archive.
func (p LanguagePackInfo) DownloadURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/" + p.RemoteFile
}

// FormattedSize returns the pack size in human-readable form, e.g. "444 MiB".
func (p LanguagePackInfo) FormattedSize() string {
	return humanize.IBytes(uint64(p.SizeBytes))
}

// LanguagePair returns the pair in "en -> es" form for display and logging.
func (p LanguagePackInfo) LanguagePair() string {
	return fmt.Sprintf("%s -> %s", p.SourceLang, p.TargetLang)
}
