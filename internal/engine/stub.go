package engine

import (
	"context"
	"log/slog"
	"sync"

	"langpack-manager/pkg/models"
)

// Stub is the engine used in builds without an inference backend. LoadPack
// tracks the active pack so the management surface behaves normally, but
// every inference call reports ErrUnavailable.
type Stub struct {
	logger *slog.Logger

	mu     sync.Mutex
	loaded *models.LanguagePackInfo
}

// NewStub creates a stub engine.
func NewStub() *Stub {
	return &Stub{logger: slog.Default()}
}

func (s *Stub) LoadPack(_ context.Context, pack models.LanguagePackInfo, packDir string) error {
	s.mu.Lock()
	s.loaded = &pack
	s.mu.Unlock()

	s.logger.Info("Loaded language pack (stub engine)", "pack_id", pack.ID, "dir", packDir)
	return nil
}

// Loaded returns the currently loaded pack, if any.
func (s *Stub) Loaded() (models.LanguagePackInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded == nil {
		return models.LanguagePackInfo{}, false
	}
	return *s.loaded, true
}

func (s *Stub) Recognize(context.Context, []float32) (string, error) {
	if err := s.requireLoaded(); err != nil {
		return "", err
	}
	return "", ErrUnavailable
}

func (s *Stub) Translate(context.Context, string) (string, error) {
	if err := s.requireLoaded(); err != nil {
		return "", err
	}
	return "", ErrUnavailable
}

func (s *Stub) Synthesize(context.Context, string) ([]float32, error) {
	if err := s.requireLoaded(); err != nil {
		return nil, err
	}
	return nil, ErrUnavailable
}

func (s *Stub) Close() error {
	s.mu.Lock()
	s.loaded = nil
	s.mu.Unlock()
	return nil
}

func (s *Stub) requireLoaded() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded == nil {
		return ErrNoPackLoaded
	}
	return nil
}
