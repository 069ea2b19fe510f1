package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeZip builds a ZIP archive on disk from a name -> content map. Names
// ending in "/" become directory entries.
func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		if name[len(name)-1] == '/' {
			_, err := zw.Create(name)
			require.NoError(t, err)
			continue
		}
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestService_IsArchive(t *testing.T) {
	s := NewService()

	require.True(t, s.IsArchive("en-es.zip"))
	require.True(t, s.IsArchive("EN-ES.ZIP"))
	require.True(t, s.IsArchive("legacy.rar"))
	require.False(t, s.IsArchive("en-es.tar.gz"))
	require.False(t, s.IsArchive("tokens.txt"))
}

func TestService_Extract_UnsupportedFormat(t *testing.T) {
	s := NewService()

	_, err := s.Extract(context.Background(), "/tmp/pack.7z", t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported archive format")
}

func TestService_Extract_ZipPreservesPaths(t *testing.T) {
	s := NewService()
	tmp := t.TempDir()

	archive := filepath.Join(tmp, "en-es.zip")
	writeZip(t, archive, map[string]string{
		"stt/":              "",
		"stt/encoder.onnx":  "encoder",
		"stt/tokens.txt":    "tokens",
		"translation/m.bin": "model",
		"tts/es/voice.onnx": "voice",
		"tts/es/voice.json": "{}",
	})

	dest := filepath.Join(tmp, "pack")
	files, err := s.Extract(context.Background(), archive, dest)
	require.NoError(t, err)
	require.Len(t, files, 5)

	// Relative paths survive under the destination
	require.FileExists(t, filepath.Join(dest, "stt", "encoder.onnx"))
	require.FileExists(t, filepath.Join(dest, "translation", "m.bin"))
	require.FileExists(t, filepath.Join(dest, "tts", "es", "voice.onnx"))

	data, err := os.ReadFile(filepath.Join(dest, "stt", "tokens.txt"))
	require.NoError(t, err)
	require.Equal(t, "tokens", string(data))
}

func TestService_Extract_RejectsTraversal(t *testing.T) {
	s := NewService()
	tmp := t.TempDir()

	archive := filepath.Join(tmp, "evil.zip")
	writeZip(t, archive, map[string]string{
		"../escape.txt":  "evil",
		"stt/tokens.txt": "tokens",
	})

	dest := filepath.Join(tmp, "pack")
	files, err := s.Extract(context.Background(), archive, dest)
	require.NoError(t, err)
	require.Len(t, files, 1)

	require.NoFileExists(t, filepath.Join(tmp, "escape.txt"))
	require.FileExists(t, filepath.Join(dest, "stt", "tokens.txt"))
}

func TestService_Extract_Cancelled(t *testing.T) {
	s := NewService()
	tmp := t.TempDir()

	archive := filepath.Join(tmp, "en-es.zip")
	writeZip(t, archive, map[string]string{
		"stt/encoder.onnx":  "encoder",
		"stt/decoder.onnx":  "decoder",
		"translation/m.bin": "model",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Extract(ctx, archive, filepath.Join(tmp, "pack"))
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}

func TestService_Extract_MissingArchive(t *testing.T) {
	s := NewService()

	_, err := s.Extract(context.Background(), filepath.Join(t.TempDir(), "absent.zip"), t.TempDir())
	require.Error(t, err)
}
