package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDownloadStatus_Constants(t *testing.T) {
	require.Equal(t, DownloadStatus("downloading"), StatusDownloading)
	require.Equal(t, DownloadStatus("paused"), StatusPaused)
	require.Equal(t, DownloadStatus("extracting"), StatusExtracting)
	require.Equal(t, DownloadStatus("verifying"), StatusVerifying)
	require.Equal(t, DownloadStatus("completed"), StatusCompleted)
	require.Equal(t, DownloadStatus("failed"), StatusFailed)
	require.Equal(t, DownloadStatus("cancelled"), StatusCancelled)
}

func TestDownloadStatus_Terminal(t *testing.T) {
	require.True(t, StatusCompleted.Terminal())
	require.True(t, StatusFailed.Terminal())
	require.True(t, StatusCancelled.Terminal())
	require.False(t, StatusDownloading.Terminal())
	require.False(t, StatusPaused.Terminal())
	require.False(t, StatusExtracting.Terminal())
	require.False(t, StatusVerifying.Terminal())
}

func TestLanguagePackInfo_DownloadURL(t *testing.T) {
	pack := LanguagePackInfo{
		ID:         "en-es",
		RemoteFile: "en-es.zip",
	}

	require.Equal(t, "https://packs.example.com/en-es.zip",
		pack.DownloadURL("https://packs.example.com"))
	// Trailing slash on the base must not double up
	require.Equal(t, "https://packs.example.com/en-es.zip",
		pack.DownloadURL("https://packs.example.com/"))
}

func TestLanguagePackInfo_FormattedSize(t *testing.T) {
	pack := LanguagePackInfo{SizeBytes: 444 * 1024 * 1024}
	require.Equal(t, "444 MiB", pack.FormattedSize())
}

func TestLanguagePackInfo_LanguagePair(t *testing.T) {
	pack := LanguagePackInfo{SourceLang: "en", TargetLang: "es"}
	require.Equal(t, "en -> es", pack.LanguagePair())
}

func TestDownloadProgress_Percent(t *testing.T) {
	p := DownloadProgress{Progress: 0.45}
	require.InDelta(t, 45.0, p.Percent(), 0.0001)
}

func TestDownloadProgress_ETA(t *testing.T) {
	p := DownloadProgress{
		DownloadedBytes: 1000,
		TotalBytes:      11000,
		BytesPerSecond:  1000,
	}
	require.Equal(t, 10*time.Second, p.ETA())

	// Unknown speed yields no estimate
	p.BytesPerSecond = 0
	require.Equal(t, time.Duration(0), p.ETA())

	// Finished download yields no estimate
	p.BytesPerSecond = 1000
	p.DownloadedBytes = p.TotalBytes
	require.Equal(t, time.Duration(0), p.ETA())
}
