// Package ocr abstracts the external text-recognition capability behind a
// narrow interface with swappable engine implementations. Recognition
// accuracy is the one thing the rest of the pipeline cannot control; engines
// are treated as black boxes that may return partial, noisy or case-garbled
// text.
package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"
)

// Engine identifies a recognizer implementation.
type Engine string

const (
	// EngineTesseract is the default engine, backed by gosseract.
	EngineTesseract Engine = "tesseract"
)

// Recognizer turns an image into recognized text lines. Implementations
// must be safe for concurrent invocation by multiple in-flight requests and
// must honor context cancellation as a normal failure, not a crash.
// Implementations may return a single blob; callers normalize either shape
// to newline-joined text.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, img image.Image) ([]string, error)
}

// Config carries engine selection and tuning shared by implementations.
type Config struct {
	// Engine selects the implementation; empty means EngineTesseract.
	Engine Engine

	// Languages passed to the engine, e.g. ["eng"].
	Languages []string

	// DPI is reported to the engine for images without density metadata.
	// Zero leaves the engine default in place.
	DPI int
}

// NewRecognizer builds the configured engine. The returned recognizer is a
// long-lived handle: create it once at process start and inject it, rather
// than recreating it per request.
func NewRecognizer(cfg Config) (Recognizer, error) {
	switch cfg.Engine {
	case EngineTesseract, "":
		return NewTesseract(cfg), nil
	default:
		return nil, fmt.Errorf("unknown OCR engine: %s (supported: %s)", cfg.Engine, EngineTesseract)
	}
}

// JoinLines normalizes recognizer output to one newline-joined string.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// SplitBlob normalizes a single opaque text blob to trimmed, non-empty
// lines.
func SplitBlob(blob string) []string {
	var lines []string
	for _, line := range strings.Split(blob, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
