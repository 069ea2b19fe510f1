// Package notify renders download progress events into user-facing
// notifications
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"langpack-manager/pkg/models"
)

// Notification is one rendered user-facing message. Ongoing notifications
// update in place; terminal ones are final and dismissable.
type Notification struct {
	PackID   string
	Title    string
	Body     string
	Percent  int
	Ongoing  bool
	Terminal bool
}

// Sink receives rendered notifications. Implementations bridge to whatever
// the host platform shows the user.
type Sink interface {
	Show(n Notification)
	Dismiss(packID string)
}

// LogSink writes notifications to the structured log. It is the default
// sink on hosts without a notification surface.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink logging at info level.
func NewLogSink() *LogSink {
	return &LogSink{logger: slog.Default()}
}

func (s *LogSink) Show(n Notification) {
	s.logger.Info("Notification", "pack_id", n.PackID, "title", n.Title, "body", n.Body, "percent", n.Percent)
}

func (s *LogSink) Dismiss(packID string) {
	s.logger.Info("Notification dismissed", "pack_id", packID)
}

// PackNamer resolves pack IDs to their display metadata.
type PackNamer interface {
	Get(packID string) (models.LanguagePackInfo, error)
}

// Presenter consumes progress events and keeps one notification per pack
// current on the sink. Cancelled packs get their notification dismissed
// rather than replaced.
type Presenter struct {
	catalog PackNamer
	sink    Sink
	logger  *slog.Logger
}

// NewPresenter creates a Presenter rendering onto the given sink.
func NewPresenter(catalog PackNamer, sink Sink) *Presenter {
	return &Presenter{
		catalog: catalog,
		sink:    sink,
		logger:  slog.Default(),
	}
}

// Run consumes the event stream until the context is done or the stream
// closes. Meant to run on its own goroutine for the process lifetime.
func (p *Presenter) Run(ctx context.Context, events <-chan models.DownloadProgress) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			p.Present(ev)
		}
	}
}

// Present renders a single progress event onto the sink.
func (p *Presenter) Present(ev models.DownloadProgress) {
	if ev.Status == models.StatusCancelled {
		p.sink.Dismiss(ev.PackID)
		return
	}
	p.sink.Show(p.render(ev))
}

func (p *Presenter) render(ev models.DownloadProgress) Notification {
	name := ev.PackID
	if pack, err := p.catalog.Get(ev.PackID); err == nil {
		name = pack.Name
	}

	n := Notification{
		PackID:  ev.PackID,
		Percent: int(ev.Percent()),
	}

	switch ev.Status {
	case models.StatusDownloading:
		n.Title = fmt.Sprintf("Downloading %s", name)
		n.Body = fmt.Sprintf("%s of %s", humanize.IBytes(uint64(ev.DownloadedBytes)), humanize.IBytes(uint64(max64(ev.TotalBytes, 0))))
		if ev.BytesPerSecond > 0 {
			n.Body += fmt.Sprintf(" (%s/s)", humanize.IBytes(uint64(ev.BytesPerSecond)))
		}
		n.Ongoing = true
	case models.StatusPaused:
		n.Title = fmt.Sprintf("%s paused", name)
		n.Body = fmt.Sprintf("%d%% downloaded", int(ev.Percent()))
		n.Ongoing = true
	case models.StatusExtracting:
		n.Title = fmt.Sprintf("Installing %s", name)
		n.Body = "Extracting files"
		n.Ongoing = true
	case models.StatusVerifying:
		n.Title = fmt.Sprintf("Installing %s", name)
		n.Body = "Verifying files"
		n.Ongoing = true
	case models.StatusCompleted:
		n.Title = fmt.Sprintf("%s ready", name)
		n.Body = "Language pack installed"
		n.Terminal = true
	case models.StatusFailed:
		n.Title = fmt.Sprintf("%s failed", name)
		n.Body = ev.ErrorMessage
		if n.Body == "" {
			n.Body = "Download failed"
		}
		n.Terminal = true
	default:
		n.Title = name
	}
	return n
}

func max64(v, floor int64) int64 {
	if v < floor {
		return floor
	}
	return v
}
