package cleanup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"langpack-manager/internal/state"
	"langpack-manager/internal/storage"
	"langpack-manager/pkg/models"
)

func newTestService(t *testing.T) (*Service, *state.Store, *storage.Service) {
	t.Helper()

	states, err := state.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { states.Close() })

	stor := storage.NewService(filepath.Join(t.TempDir(), "models"))
	return NewService(states, stor), states, stor
}

func writePartial(t *testing.T, stor *storage.Service, name string) string {
	t.Helper()
	tmpDir, err := stor.TempDir()
	require.NoError(t, err)
	path := filepath.Join(tmpDir, name)
	require.NoError(t, os.WriteFile(path, []byte("partial data"), 0o644))
	return path
}

func TestSweep_RemovesOrphanedPartials(t *testing.T) {
	svc, states, stor := newTestService(t)

	orphan := writePartial(t, stor, "en-de.zip.part")
	kept := writePartial(t, stor, "en-es.zip.part")
	require.NoError(t, states.Save(&models.ResumeState{
		PackID:      "en-es",
		SourceURL:   "https://packs.invalid/en-es.zip",
		PartialPath: kept,
	}))

	stats, err := svc.Sweep()
	require.NoError(t, err)
	require.Equal(t, 1, stats.OrphanedPartials)

	require.NoFileExists(t, orphan)
	require.FileExists(t, kept)
}

func TestSweep_DropsRecordsWithoutPartial(t *testing.T) {
	svc, states, stor := newTestService(t)

	kept := writePartial(t, stor, "en-es.zip.part")
	require.NoError(t, states.Save(&models.ResumeState{
		PackID:      "en-es",
		SourceURL:   "https://packs.invalid/en-es.zip",
		PartialPath: kept,
	}))
	require.NoError(t, states.Save(&models.ResumeState{
		PackID:      "en-fr",
		SourceURL:   "https://packs.invalid/en-fr.zip",
		PartialPath: filepath.Join(t.TempDir(), "gone.part"),
	}))

	stats, err := svc.Sweep()
	require.NoError(t, err)
	require.Equal(t, 1, stats.StaleRecords)

	record, err := states.Get("en-fr")
	require.NoError(t, err)
	require.Nil(t, record)

	record, err = states.Get("en-es")
	require.NoError(t, err)
	require.NotNil(t, record)
}

func TestSweep_RemovesBrokenInstalls(t *testing.T) {
	svc, _, stor := newTestService(t)

	// A complete install holds the three model directories.
	goodDir, err := stor.PackDir("en-es")
	require.NoError(t, err)
	for _, sub := range []string{"stt", "translation", "tts"} {
		dir := filepath.Join(goodDir, sub)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "model.bin"), []byte("m"), 0o644))
	}

	// A crash mid-extraction leaves a pack directory missing pieces.
	brokenDir, err := stor.PackDir("en-fr")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(brokenDir, "stray.bin"), []byte("x"), 0o644))

	stats, err := svc.Sweep()
	require.NoError(t, err)
	require.Equal(t, 1, stats.BrokenInstalls)

	require.True(t, stor.IsPackInstalled("en-es"))
	require.False(t, stor.IsPackInstalled("en-fr"))
}

func TestSweep_CleanStateIsNoop(t *testing.T) {
	svc, _, _ := newTestService(t)

	stats, err := svc.Sweep()
	require.NoError(t, err)
	require.Zero(t, stats.OrphanedPartials)
	require.Zero(t, stats.StaleRecords)
	require.Zero(t, stats.BrokenInstalls)
}
