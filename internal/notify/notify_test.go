package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"langpack-manager/internal/catalog"
	"langpack-manager/pkg/models"
)

type recordingSink struct {
	mu        sync.Mutex
	shown     []Notification
	dismissed []string
}

func (s *recordingSink) Show(n Notification) {
	s.mu.Lock()
	s.shown = append(s.shown, n)
	s.mu.Unlock()
}

func (s *recordingSink) Dismiss(packID string) {
	s.mu.Lock()
	s.dismissed = append(s.dismissed, packID)
	s.mu.Unlock()
}

func (s *recordingSink) last(t *testing.T) Notification {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.shown)
	return s.shown[len(s.shown)-1]
}

func newTestPresenter() (*Presenter, *recordingSink) {
	sink := &recordingSink{}
	return NewPresenter(catalog.New("https://packs.invalid"), sink), sink
}

func TestPresenter_Downloading(t *testing.T) {
	p, sink := newTestPresenter()

	p.Present(models.DownloadProgress{
		PackID:          "en-es",
		Status:          models.StatusDownloading,
		Progress:        0.45,
		DownloadedBytes: 100 * 1024 * 1024,
		TotalBytes:      200 * 1024 * 1024,
		BytesPerSecond:  2 * 1024 * 1024,
	})

	n := sink.last(t)
	require.Equal(t, "Downloading English - Spanish", n.Title)
	require.Contains(t, n.Body, "100 MiB of 200 MiB")
	require.Contains(t, n.Body, "2.0 MiB/s")
	require.Equal(t, 45, n.Percent)
	require.True(t, n.Ongoing)
	require.False(t, n.Terminal)
}

func TestPresenter_Paused(t *testing.T) {
	p, sink := newTestPresenter()

	p.Present(models.DownloadProgress{
		PackID:   "en-fr",
		Status:   models.StatusPaused,
		Progress: 0.30,
	})

	n := sink.last(t)
	require.Equal(t, "English - French paused", n.Title)
	require.Equal(t, "30% downloaded", n.Body)
	require.True(t, n.Ongoing)
}

func TestPresenter_TerminalStates(t *testing.T) {
	p, sink := newTestPresenter()

	p.Present(models.DownloadProgress{PackID: "en-es", Status: models.StatusCompleted, Progress: 1.0})
	n := sink.last(t)
	require.Equal(t, "English - Spanish ready", n.Title)
	require.True(t, n.Terminal)

	p.Present(models.DownloadProgress{PackID: "en-es", Status: models.StatusFailed, ErrorMessage: "mirror returned status 503"})
	n = sink.last(t)
	require.Equal(t, "English - Spanish failed", n.Title)
	require.Equal(t, "mirror returned status 503", n.Body)
	require.True(t, n.Terminal)
}

func TestPresenter_CancelDismisses(t *testing.T) {
	p, sink := newTestPresenter()

	p.Present(models.DownloadProgress{PackID: "en-es", Status: models.StatusCancelled})

	require.Empty(t, sink.shown)
	require.Equal(t, []string{"en-es"}, sink.dismissed)
}

func TestPresenter_UnknownPackFallsBackToID(t *testing.T) {
	p, sink := newTestPresenter()

	p.Present(models.DownloadProgress{PackID: "xx-yy", Status: models.StatusExtracting})
	require.Equal(t, "Installing xx-yy", sink.last(t).Title)
}

func TestPresenter_RunConsumesStream(t *testing.T) {
	p, sink := newTestPresenter()

	events := make(chan models.DownloadProgress, 4)
	events <- models.DownloadProgress{PackID: "en-es", Status: models.StatusDownloading}
	events <- models.DownloadProgress{PackID: "en-es", Status: models.StatusCompleted}
	close(events)

	done := make(chan struct{})
	go func() {
		p.Run(context.Background(), events)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("presenter never drained the stream")
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.shown, 2)
}
