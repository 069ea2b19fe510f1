// Package api exposes the language pack manager over a JSON HTTP surface
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"langpack-manager/internal/catalog"
	"langpack-manager/internal/downloader"
	"langpack-manager/internal/engine"
	"langpack-manager/internal/progress"
	"langpack-manager/internal/storage"
	"langpack-manager/pkg/models"
)

// Handlers carries the HTTP handler dependencies.
type Handlers struct {
	catalog *catalog.Catalog
	manager *downloader.Downloader
	storage *storage.Service
	engine  engine.Engine
	bus     *progress.Bus
	logger  *slog.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(cat *catalog.Catalog, manager *downloader.Downloader, stor *storage.Service, eng engine.Engine, bus *progress.Bus) *Handlers {
	return &Handlers{
		catalog: cat,
		manager: manager,
		storage: stor,
		engine:  eng,
		bus:     bus,
		logger:  slog.Default(),
	}
}

// packView is a catalog entry annotated with its install and download state.
type packView struct {
	models.LanguagePackInfo
	SizeHuman string                   `json:"size_human"`
	Installed bool                     `json:"installed"`
	Download  *models.DownloadProgress `json:"download,omitempty"`
}

func (h *Handlers) view(pack models.LanguagePackInfo) packView {
	v := packView{
		LanguagePackInfo: pack,
		SizeHuman:        pack.FormattedSize(),
		Installed:        h.storage.IsPackInstalled(pack.ID),
	}
	if prog, ok := h.manager.Progress(pack.ID); ok {
		v.Download = &prog
	}
	return v
}

// ListPacks returns the whole catalog, filtered by the optional q parameter.
func (h *Handlers) ListPacks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	var packs []models.LanguagePackInfo
	if query == "" {
		packs = h.catalog.All()
	} else {
		packs = h.catalog.Search(query)
	}

	views := make([]packView, 0, len(packs))
	for _, pack := range packs {
		views = append(views, h.view(pack))
	}
	h.writeJSON(w, http.StatusOK, views)
}

// GetPack returns one catalog entry with its current state.
func (h *Handlers) GetPack(w http.ResponseWriter, r *http.Request) {
	pack, err := h.catalog.Get(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusNotFound, "unknown language pack")
		return
	}
	h.writeJSON(w, http.StatusOK, h.view(pack))
}

// ListInstalled returns the installed packs.
func (h *Handlers) ListInstalled(w http.ResponseWriter, r *http.Request) {
	views := make([]packView, 0)
	for _, packID := range h.storage.InstalledPacks() {
		pack, err := h.catalog.Get(packID)
		if err != nil {
			// Directories not in the catalog are not packs we manage.
			continue
		}
		views = append(views, h.view(pack))
	}
	h.writeJSON(w, http.StatusOK, views)
}

// ListDownloads returns every tracked download.
func (h *Handlers) ListDownloads(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.manager.Active())
}

// StartDownload kicks off the download pipeline for a pack. The pipeline
// runs on its own goroutine; progress is observed on the event stream.
func (h *Handlers) StartDownload(w http.ResponseWriter, r *http.Request) {
	packID := r.PathValue("id")
	pack, err := h.catalog.Get(packID)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "unknown language pack")
		return
	}
	if h.storage.IsPackInstalled(packID) {
		h.writeError(w, http.StatusConflict, "language pack already installed")
		return
	}
	if !h.storage.HasEnoughSpace(pack.SizeBytes) {
		h.writeError(w, http.StatusInsufficientStorage, "not enough free space for "+pack.FormattedSize())
		return
	}
	if _, active := h.manager.Progress(packID); active {
		h.writeError(w, http.StatusConflict, "download already in progress")
		return
	}

	go func() {
		if err := h.manager.Download(context.Background(), packID); err != nil && !isQuietOutcome(err) {
			h.logger.Error("Download failed", "pack_id", packID, "error", err)
		}
	}()

	h.writeJSON(w, http.StatusAccepted, map[string]string{"pack_id": packID, "status": "accepted"})
}

// PauseDownload pauses an active transfer.
func (h *Handlers) PauseDownload(w http.ResponseWriter, r *http.Request) {
	packID := r.PathValue("id")
	if err := h.manager.Pause(packID); err != nil {
		if errors.Is(err, downloader.ErrNotDownloading) {
			h.writeError(w, http.StatusConflict, "download is not in progress")
			return
		}
		h.logger.Error("Pause failed", "pack_id", packID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to pause download")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"pack_id": packID, "status": "paused"})
}

// ResumeDownload continues a paused transfer on its own goroutine.
func (h *Handlers) ResumeDownload(w http.ResponseWriter, r *http.Request) {
	packID := r.PathValue("id")

	prog, ok := h.manager.Progress(packID)
	if !ok {
		h.writeError(w, http.StatusNotFound, "no paused download for pack")
		return
	}
	if prog.Status != models.StatusPaused {
		h.writeError(w, http.StatusConflict, "download is not paused")
		return
	}

	go func() {
		if err := h.manager.Resume(context.Background(), packID); err != nil && !isQuietOutcome(err) {
			h.logger.Error("Resume failed", "pack_id", packID, "error", err)
		}
	}()

	h.writeJSON(w, http.StatusAccepted, map[string]string{"pack_id": packID, "status": "accepted"})
}

// CancelDownload aborts a download and removes all its artifacts.
func (h *Handlers) CancelDownload(w http.ResponseWriter, r *http.Request) {
	packID := r.PathValue("id")
	if !h.manager.Cancel(packID) {
		h.writeError(w, http.StatusNotFound, "no download to cancel")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"pack_id": packID, "status": "cancelled"})
}

// UninstallPack deletes an installed pack.
func (h *Handlers) UninstallPack(w http.ResponseWriter, r *http.Request) {
	packID := r.PathValue("id")
	removed, err := h.manager.Uninstall(packID)
	if err != nil {
		if errors.Is(err, downloader.ErrAlreadyActive) {
			h.writeError(w, http.StatusConflict, "pack has an active download")
			return
		}
		h.logger.Error("Uninstall failed", "pack_id", packID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to uninstall pack")
		return
	}
	if !removed {
		h.writeError(w, http.StatusNotFound, "language pack is not installed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"pack_id": packID, "status": "uninstalled"})
}

// ActivatePack loads an installed pack into the inference engine.
func (h *Handlers) ActivatePack(w http.ResponseWriter, r *http.Request) {
	packID := r.PathValue("id")
	pack, err := h.catalog.Get(packID)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "unknown language pack")
		return
	}
	if !h.storage.IsPackInstalled(packID) {
		h.writeError(w, http.StatusConflict, "language pack is not installed")
		return
	}

	packDir, err := h.storage.PackDir(packID)
	if err != nil {
		h.logger.Error("Failed to resolve pack directory", "pack_id", packID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to activate pack")
		return
	}
	if err := h.engine.LoadPack(r.Context(), pack, packDir); err != nil {
		h.logger.Error("Failed to load pack into engine", "pack_id", packID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to activate pack")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"pack_id": packID, "status": "active"})
}

// GetStats reports install and download totals.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	installed := h.storage.InstalledPacks()

	var totalSize int64
	for _, packID := range installed {
		if dir, err := h.storage.PackDir(packID); err == nil {
			totalSize += h.storage.DirSize(dir)
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"installed_packs":  len(installed),
		"active_downloads": len(h.manager.Active()),
		"total_size_bytes": totalSize,
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// isQuietOutcome reports whether a pipeline error was caused by an operation
// the user explicitly requested.
func isQuietOutcome(err error) bool {
	return errors.Is(err, downloader.ErrPaused) || errors.Is(err, downloader.ErrCancelled)
}
