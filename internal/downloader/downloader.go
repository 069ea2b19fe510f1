// Package downloader implements the language pack download and install pipeline
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"langpack-manager/internal/catalog"
	"langpack-manager/internal/extractor"
	"langpack-manager/internal/mirror"
	"langpack-manager/internal/progress"
	"langpack-manager/pkg/models"
)

var (
	ErrUnknownPack       = errors.New("unknown language pack")
	ErrAlreadyInstalled  = errors.New("language pack already installed")
	ErrAlreadyActive     = errors.New("download already in progress")
	ErrInsufficientSpace = errors.New("insufficient storage space")
	ErrNoResumeState     = errors.New("no resume state for pack")
	ErrNotDownloading    = errors.New("download is not in progress")
	ErrPaused            = errors.New("download paused")
	ErrCancelled         = errors.New("download cancelled")
)

const (
	copyBufferSize   = 32 * 1024
	progressInterval = 500 * time.Millisecond

	// The transfer occupies the first 90% of the progress range; extraction
	// and verification take the rest.
	downloadWeight     = 0.90
	extractingProgress = 0.90
	verifyingProgress  = 0.95

	DefaultEvictDelay  = 3 * time.Second
	DefaultIdleTimeout = 30 * time.Second

	// partialSuffix marks staged archive files.
	partialSuffix = ".part"
)

// entry is the in-memory registry record for one pack. At most one entry
// exists per pack ID; presence means the pack is being tracked.
type entry struct {
	progress models.DownloadProgress
	cancel   context.CancelFunc
	paused   bool
	url      string
	partial  string
	evict    *time.Timer
}

// Downloader orchestrates the full pack lifecycle: acquire, stream to disk
// with resume, extract, verify, finalize or roll back. All registry and
// resume-record mutations happen here; other components only read or
// trigger operations.
type Downloader struct {
	catalog   *catalog.Catalog
	storage   Storage
	states    StateStore
	extractor extractor.Extractor
	mirror    mirror.Client
	bus       *progress.Bus
	scheduler BackgroundScheduler
	logger    *slog.Logger

	evictDelay  time.Duration
	idleTimeout time.Duration

	mu      sync.Mutex
	entries map[string]*entry
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithScheduler attaches the background task bridge. Without one, downloads
// run foreground-only.
func WithScheduler(s BackgroundScheduler) Option {
	return func(d *Downloader) { d.scheduler = s }
}

// WithEvictDelay overrides the grace delay before terminal registry entries
// are evicted.
func WithEvictDelay(delay time.Duration) Option {
	return func(d *Downloader) { d.evictDelay = delay }
}

// WithIdleTimeout overrides the stall watchdog on the byte stream.
func WithIdleTimeout(timeout time.Duration) Option {
	return func(d *Downloader) { d.idleTimeout = timeout }
}

// New creates a Downloader with injected collaborators.
func New(cat *catalog.Catalog, stor Storage, states StateStore, extr extractor.Extractor, mir mirror.Client, bus *progress.Bus, opts ...Option) *Downloader {
	d := &Downloader{
		catalog:     cat,
		storage:     stor,
		states:      states,
		extractor:   extr,
		mirror:      mir,
		bus:         bus,
		logger:      slog.Default(),
		evictDelay:  DefaultEvictDelay,
		idleTimeout: DefaultIdleTimeout,
		entries:     make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download runs the full download-and-install pipeline for a pack. It
// blocks until the pack reaches a terminal state; callers wanting
// fire-and-forget run it in a goroutine and watch the progress bus.
func (d *Downloader) Download(ctx context.Context, packID string) error {
	pack, err := d.catalog.Get(packID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownPack, packID)
	}
	if d.storage.IsPackInstalled(packID) {
		return fmt.Errorf("%w: %s", ErrAlreadyInstalled, packID)
	}
	if !d.storage.HasEnoughSpace(pack.SizeBytes) {
		return fmt.Errorf("%w: pack %s needs %s", ErrInsufficientSpace, packID, pack.FormattedSize())
	}

	partial, err := d.partialPath(pack)
	if err != nil {
		return err
	}
	url, err := d.catalog.DownloadURL(packID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownPack, packID)
	}

	attemptCtx, err := d.register(ctx, pack, url, partial)
	if err != nil {
		return err
	}

	if d.scheduler != nil {
		if err := d.scheduler.ScheduleDownload(packID); err != nil {
			d.logger.Warn("Background task registration failed", "pack_id", packID, "error", err)
		}
	}

	d.logger.Info("Starting pack download", "pack_id", packID, "size", pack.FormattedSize())
	return d.execute(attemptCtx, pack, url, partial, 0)
}

// Pause cancels the active stream, persists the resume record and marks the
// registry entry paused. The partial file stays on disk; resume depends on it.
func (d *Downloader) Pause(packID string) error {
	d.mu.Lock()
	e, ok := d.entries[packID]
	if !ok || e.progress.Status != models.StatusDownloading {
		d.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotDownloading, packID)
	}
	e.paused = true
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	snapshot := e.progress
	sourceURL, partial := e.url, e.partial
	d.mu.Unlock()

	record := &models.ResumeState{
		PackID:          packID,
		SourceURL:       sourceURL,
		DownloadedBytes: snapshot.DownloadedBytes,
		TotalBytes:      snapshot.TotalBytes,
		PartialPath:     partial,
	}
	if err := d.states.Save(record); err != nil {
		return fmt.Errorf("failed to persist pause state: %w", err)
	}

	d.mu.Lock()
	if e, ok := d.entries[packID]; ok {
		e.progress.Status = models.StatusPaused
		e.progress.BytesPerSecond = 0
		d.publishLocked(e)
	}
	d.mu.Unlock()

	d.logger.Info("Download paused", "pack_id", packID, "downloaded_bytes", snapshot.DownloadedBytes)
	return nil
}

// Resume continues a paused download from its persisted resume record. The
// actual offset is taken from the partial file on disk; if the mirror
// ignores the range request the transfer restarts from byte zero.
func (d *Downloader) Resume(ctx context.Context, packID string) error {
	record, err := d.states.Get(packID)
	if err != nil {
		return fmt.Errorf("failed to read resume state: %w", err)
	}
	if record == nil {
		return fmt.Errorf("%w: %s", ErrNoResumeState, packID)
	}

	pack, err := d.catalog.Get(packID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownPack, packID)
	}

	var offset int64
	if stat, statErr := os.Stat(record.PartialPath); statErr == nil {
		offset = stat.Size()
	}

	// Ranged resume only makes sense when the mirror advertises range
	// support. The probe is advisory; a mirror that lies is still caught by
	// the 200-response fallback in the stream.
	if offset > 0 {
		if probe, probeErr := d.mirror.Probe(ctx, record.SourceURL); probeErr != nil {
			d.logger.Warn("Mirror probe failed, attempting ranged resume anyway",
				"pack_id", packID, "error", probeErr)
		} else if !probe.AcceptRanges {
			d.logger.Info("Mirror does not accept ranges, restarting from zero", "pack_id", packID)
			offset = 0
		}
	}

	attemptCtx, err := d.activate(ctx, record, offset)
	if err != nil {
		return err
	}

	if d.scheduler != nil {
		if err := d.scheduler.ScheduleResume(packID); err != nil {
			d.logger.Warn("Background task registration failed", "pack_id", packID, "error", err)
		}
	}

	d.logger.Info("Resuming pack download", "pack_id", packID, "resume_from", offset)
	return d.execute(attemptCtx, pack, record.SourceURL, record.PartialPath, offset)
}

// Cancel aborts any active stream, deletes the resume record and partial
// file, and evicts the registry entry immediately. Cancelling an absent
// download is a no-op returning false.
func (d *Downloader) Cancel(packID string) bool {
	d.mu.Lock()
	e, ok := d.entries[packID]
	var snapshot models.DownloadProgress
	if ok {
		if e.cancel != nil {
			e.cancel()
		}
		if e.evict != nil {
			e.evict.Stop()
		}
		snapshot = e.progress
		delete(d.entries, packID)
	}
	d.mu.Unlock()

	record, err := d.states.Get(packID)
	if err != nil {
		d.logger.Warn("Failed to read resume state during cancel", "pack_id", packID, "error", err)
		record = nil
	}

	had := ok || record != nil

	partials := make(map[string]struct{})
	if ok && e.partial != "" {
		partials[e.partial] = struct{}{}
	}
	if record != nil && record.PartialPath != "" {
		partials[record.PartialPath] = struct{}{}
	}
	for partial := range partials {
		if err := os.Remove(partial); err == nil {
			had = true
		} else if !os.IsNotExist(err) {
			d.logger.Warn("Failed to remove partial file", "path", partial, "error", err)
		}
	}

	if err := d.states.Delete(packID); err != nil {
		d.logger.Warn("Failed to delete resume state during cancel", "pack_id", packID, "error", err)
	}

	if d.scheduler != nil {
		if err := d.scheduler.CancelJob(packID); err != nil {
			d.logger.Warn("Background task cancellation failed", "pack_id", packID, "error", err)
		}
	}

	if had {
		snapshot.PackID = packID
		snapshot.Status = models.StatusCancelled
		snapshot.BytesPerSecond = 0
		d.bus.Publish(snapshot)
		d.logger.Info("Download cancelled", "pack_id", packID)
	}
	return had
}

// Uninstall removes an installed pack. Refuses while the pack has an active
// registry entry.
func (d *Downloader) Uninstall(packID string) (bool, error) {
	d.mu.Lock()
	_, active := d.entries[packID]
	d.mu.Unlock()

	if active {
		return false, fmt.Errorf("%w: %s", ErrAlreadyActive, packID)
	}
	return d.storage.DeletePack(packID), nil
}

// Rehydrate reads the resume-record store and recreates paused registry
// entries. Called once at process start so pause state survives restarts.
func (d *Downloader) Rehydrate() error {
	records, err := d.states.List()
	if err != nil {
		return fmt.Errorf("failed to list resume records: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	restored := 0
	for _, record := range records {
		if _, exists := d.entries[record.PackID]; exists {
			continue
		}
		e := &entry{
			paused:  true,
			url:     record.SourceURL,
			partial: record.PartialPath,
			progress: models.DownloadProgress{
				PackID:          record.PackID,
				Status:          models.StatusPaused,
				DownloadedBytes: record.DownloadedBytes,
				TotalBytes:      record.TotalBytes,
			},
		}
		if record.TotalBytes > 0 {
			e.progress.Progress = float64(record.DownloadedBytes) / float64(record.TotalBytes) * downloadWeight
		}
		d.entries[record.PackID] = e
		d.publishLocked(e)
		restored++
	}

	if restored > 0 {
		d.logger.Info("Rehydrated paused downloads", "count", restored)
	}
	return nil
}

// Progress returns the current registry snapshot for a pack.
func (d *Downloader) Progress(packID string) (models.DownloadProgress, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.entries[packID]; ok {
		return e.progress, true
	}
	return models.DownloadProgress{}, false
}

// Active returns snapshots of every tracked pack, sorted by pack ID.
func (d *Downloader) Active() []models.DownloadProgress {
	d.mu.Lock()
	defer d.mu.Unlock()

	snapshots := make([]models.DownloadProgress, 0, len(d.entries))
	for _, e := range d.entries {
		snapshots = append(snapshots, e.progress)
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].PackID < snapshots[j].PackID })
	return snapshots
}

// register creates the registry entry for a fresh download. Fails when any
// entry, paused included, already exists.
func (d *Downloader) register(ctx context.Context, pack models.LanguagePackInfo, url, partial string) (context.Context, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.entries[pack.ID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyActive, pack.ID)
	}

	attemptCtx, cancel := context.WithCancel(ctx)
	e := &entry{
		cancel:  cancel,
		url:     url,
		partial: partial,
		progress: models.DownloadProgress{
			PackID:     pack.ID,
			Status:     models.StatusDownloading,
			TotalBytes: pack.SizeBytes,
		},
	}
	d.entries[pack.ID] = e
	d.publishLocked(e)
	return attemptCtx, nil
}

// activate replaces a paused registry entry (or creates one after restart)
// with an active downloading entry.
func (d *Downloader) activate(ctx context.Context, record *models.ResumeState, offset int64) (context.Context, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.entries[record.PackID]; ok && e.progress.Status != models.StatusPaused {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyActive, record.PackID)
	}

	attemptCtx, cancel := context.WithCancel(ctx)
	e := &entry{
		cancel:  cancel,
		url:     record.SourceURL,
		partial: record.PartialPath,
		progress: models.DownloadProgress{
			PackID:          record.PackID,
			Status:          models.StatusDownloading,
			DownloadedBytes: offset,
			TotalBytes:      record.TotalBytes,
		},
	}
	if record.TotalBytes > 0 {
		e.progress.Progress = float64(offset) / float64(record.TotalBytes) * downloadWeight
	}
	d.entries[record.PackID] = e
	d.publishLocked(e)
	return attemptCtx, nil
}

// execute drives a registered attempt through stream, extract, verify and
// finalize. Every internal failure is converted to a Failed transition and
// an error result; nothing escapes as a panic.
func (d *Downloader) execute(ctx context.Context, pack models.LanguagePackInfo, url, partial string, offset int64) (err error) {
	packID := pack.ID

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error downloading pack %s: %v", packID, r)
			d.fail(packID, partial, err)
		}
	}()

	if err := d.stream(ctx, pack, url, partial, offset); err != nil {
		return d.streamOutcome(packID, partial, err)
	}

	// Transfer complete; the pause state is no longer meaningful.
	if err := d.states.Delete(packID); err != nil {
		d.logger.Warn("Failed to delete resume record", "pack_id", packID, "error", err)
	}

	if !d.transition(packID, models.StatusExtracting, extractingProgress) {
		return ErrCancelled
	}

	// The staged file becomes the finished archive. The rename also updates
	// the tracked path so a concurrent cancel removes the right file.
	archive := strings.TrimSuffix(partial, partialSuffix)
	if err := os.Rename(partial, archive); err != nil {
		return d.rollback(packID, partial, fmt.Errorf("failed to finalize archive: %w", err))
	}
	d.mu.Lock()
	if e, ok := d.entries[packID]; ok {
		e.partial = archive
	}
	d.mu.Unlock()

	packDir, err := d.storage.PackDir(packID)
	if err != nil {
		return d.rollback(packID, archive, fmt.Errorf("failed to prepare pack directory: %w", err))
	}

	if _, err := d.extractor.Extract(ctx, archive, packDir); err != nil {
		return d.rollback(packID, archive, fmt.Errorf("failed to extract pack archive: %w", err))
	}

	if !d.transition(packID, models.StatusVerifying, verifyingProgress) {
		d.storage.DeletePack(packID)
		return ErrCancelled
	}

	if !d.storage.VerifyPackIntegrity(packID) {
		return d.rollback(packID, archive, fmt.Errorf("pack %s failed integrity verification", packID))
	}

	if err := os.Remove(archive); err != nil && !os.IsNotExist(err) {
		d.logger.Warn("Failed to remove archive after install", "path", archive, "error", err)
	}

	d.complete(packID)
	return nil
}

// stream transfers the archive bytes to the partial file, honoring resume
// offsets and falling back to a full restart when the mirror ignores the
// range request.
func (d *Downloader) stream(ctx context.Context, pack models.LanguagePackInfo, url, partial string, offset int64) error {
	ctx, abort := context.WithCancel(ctx)
	defer abort()

	res, err := d.mirror.Fetch(ctx, url, offset)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		if offset > 0 {
			// The mirror ignored the Range header. Appending would corrupt
			// the file, so restart from byte zero.
			d.logger.Warn("Mirror ignored range request, restarting from zero",
				"pack_id", pack.ID, "requested_offset", offset)
			offset = 0
		}
	case http.StatusPartialContent:
		if offset == 0 {
			return fmt.Errorf("mirror returned partial content without a range request")
		}
	default:
		return fmt.Errorf("mirror returned status %d", res.StatusCode)
	}

	totalBytes := pack.SizeBytes
	if res.ContentLength > 0 {
		totalBytes = res.ContentLength + offset
	}

	var file *os.File
	if offset > 0 {
		file, err = os.OpenFile(partial, os.O_APPEND|os.O_WRONLY, 0o644)
	} else {
		file, err = os.Create(partial)
	}
	if err != nil {
		return fmt.Errorf("failed to open partial file: %w", err)
	}
	defer file.Close()

	// Reset counters for this attempt. On a range fallback this is the one
	// sanctioned progress regression: status stays Downloading while the
	// byte count drops to zero.
	d.mu.Lock()
	if e, ok := d.entries[pack.ID]; ok {
		e.progress.Status = models.StatusDownloading
		e.progress.DownloadedBytes = offset
		e.progress.TotalBytes = totalBytes
		if totalBytes > 0 {
			e.progress.Progress = float64(offset) / float64(totalBytes) * downloadWeight
		}
		d.publishLocked(e)
	}
	d.mu.Unlock()

	return d.copyWithProgress(ctx, abort, file, res.Body, pack.ID, offset, totalBytes)
}

// copyWithProgress copies the response stream to disk, advancing the
// registry entry on every chunk and emitting bus events at most once per
// progress interval. The chunk loop checks for cancellation cooperatively
// and aborts stalled connections via the idle watchdog.
func (d *Downloader) copyWithProgress(ctx context.Context, abort context.CancelFunc, dst *os.File, src io.Reader, packID string, offset, totalBytes int64) error {
	buffer := make([]byte, copyBufferSize)
	downloaded := offset
	speed := newSpeedTracker(offset)
	limiter := rate.NewLimiter(rate.Every(progressInterval), 1)

	// A stalled connection must not hold the registry slot forever.
	watchdog := time.AfterFunc(d.idleTimeout, abort)
	defer watchdog.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := src.Read(buffer)
		if n > 0 {
			watchdog.Reset(d.idleTimeout)

			if _, writeErr := dst.Write(buffer[:n]); writeErr != nil {
				return fmt.Errorf("failed to write partial file: %w", writeErr)
			}
			downloaded += int64(n)

			d.mu.Lock()
			e, ok := d.entries[packID]
			if !ok || e.paused {
				d.mu.Unlock()
				return context.Canceled
			}
			e.progress.DownloadedBytes = downloaded
			e.progress.TotalBytes = totalBytes
			if totalBytes > 0 {
				e.progress.Progress = float64(downloaded) / float64(totalBytes) * downloadWeight
			}
			if limiter.Allow() {
				e.progress.BytesPerSecond = speed.Update(downloaded)
				d.publishLocked(e)
			}
			d.mu.Unlock()
		}

		if err != nil {
			if err == io.EOF {
				if syncErr := dst.Sync(); syncErr != nil {
					return fmt.Errorf("failed to flush partial file: %w", syncErr)
				}
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to read from mirror: %w", err)
		}
	}
}

// streamOutcome classifies a stream error: pause and cancel are quiet
// outcomes handled by their own operations, anything else is a failure.
func (d *Downloader) streamOutcome(packID, partial string, cause error) error {
	d.mu.Lock()
	e, ok := d.entries[packID]
	paused := ok && e.paused
	d.mu.Unlock()

	if !ok {
		return ErrCancelled
	}
	if paused {
		return ErrPaused
	}

	d.fail(packID, partial, cause)
	return cause
}

// rollback removes the partially-installed pack directory so a failed
// install never looks installed, then records the failure. A concurrent
// cancel wins over the failure.
func (d *Downloader) rollback(packID, partial string, cause error) error {
	d.storage.DeletePack(packID)

	d.mu.Lock()
	_, tracked := d.entries[packID]
	d.mu.Unlock()

	if !tracked {
		return ErrCancelled
	}

	d.fail(packID, partial, cause)
	return cause
}

// fail removes the partial file, publishes the Failed state and schedules
// eviction of the registry entry.
func (d *Downloader) fail(packID, partial string, cause error) {
	if partial != "" {
		if err := os.Remove(partial); err != nil && !os.IsNotExist(err) {
			d.logger.Warn("Failed to remove partial file", "path", partial, "error", err)
		}
	}

	d.mu.Lock()
	if e, ok := d.entries[packID]; ok {
		e.progress.Status = models.StatusFailed
		e.progress.BytesPerSecond = 0
		e.progress.ErrorMessage = cause.Error()
		d.publishLocked(e)
		d.scheduleEvictLocked(packID, e)
	}
	d.mu.Unlock()

	d.logger.Error("Pack download failed", "pack_id", packID, "error", cause)
}

// complete publishes the Completed state and schedules eviction after the
// grace delay so final-state observers get a window to read it.
func (d *Downloader) complete(packID string) {
	d.mu.Lock()
	if e, ok := d.entries[packID]; ok {
		e.progress.Status = models.StatusCompleted
		e.progress.Progress = 1.0
		e.progress.BytesPerSecond = 0
		d.publishLocked(e)
		d.scheduleEvictLocked(packID, e)
	}
	d.mu.Unlock()

	d.logger.Info("Language pack installed", "pack_id", packID)
}

// transition moves a tracked pack to a new lifecycle phase. Returns false
// when the entry disappeared, which means a concurrent cancel.
func (d *Downloader) transition(packID string, status models.DownloadStatus, prog float64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.entries[packID]
	if !ok {
		return false
	}
	e.progress.Status = status
	e.progress.Progress = prog
	e.progress.BytesPerSecond = 0
	d.publishLocked(e)
	return true
}

func (d *Downloader) scheduleEvictLocked(packID string, e *entry) {
	if e.evict != nil {
		e.evict.Stop()
	}
	e.evict = time.AfterFunc(d.evictDelay, func() {
		d.mu.Lock()
		if cur, ok := d.entries[packID]; ok && cur == e {
			delete(d.entries, packID)
		}
		d.mu.Unlock()
	})
}

// publishLocked snapshots the entry's progress onto the bus. Caller holds mu.
func (d *Downloader) publishLocked(e *entry) {
	d.bus.Publish(e.progress)
}

func (d *Downloader) partialPath(pack models.LanguagePackInfo) (string, error) {
	tmpDir, err := d.storage.TempDir()
	if err != nil {
		return "", fmt.Errorf("failed to prepare staging directory: %w", err)
	}
	return filepath.Join(tmpDir, pack.RemoteFile+partialSuffix), nil
}
