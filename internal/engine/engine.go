// Package engine defines the speech and translation runtime that consumes
// installed language packs
package engine

import (
	"context"
	"errors"

	"langpack-manager/pkg/models"
)

// ErrUnavailable is returned by the stub engine for every inference call.
var ErrUnavailable = errors.New("inference engine is not available in this build")

// ErrNoPackLoaded is returned when inference is attempted before LoadPack.
var ErrNoPackLoaded = errors.New("no language pack loaded")

// Engine runs speech recognition, translation and synthesis against the
// models of one loaded language pack.
type Engine interface {
	// LoadPack points the engine at an installed pack directory. Replaces
	// any previously loaded pack.
	LoadPack(ctx context.Context, pack models.LanguagePackInfo, packDir string) error
	// Recognize transcribes source-language audio samples.
	Recognize(ctx context.Context, samples []float32) (string, error)
	// Translate converts source-language text to the target language.
	Translate(ctx context.Context, text string) (string, error)
	// Synthesize renders target-language text to audio samples.
	Synthesize(ctx context.Context, text string) ([]float32, error)
	// Close releases any loaded models.
	Close() error
}
