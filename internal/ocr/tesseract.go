package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract recognizes text with a local Tesseract installation via
// gosseract. Each Recognize call owns a fresh client, so one Tesseract
// value may serve concurrent requests without external locking.
type Tesseract struct {
	languages     []string
	dpi           int
	clientFactory func() *gosseract.Client

	// recognize runs the blocking engine call. Tests swap it out since
	// the real engine needs a local Tesseract installation.
	recognize func(pngData []byte) (string, error)
}

// NewTesseract constructs the Tesseract-backed recognizer.
func NewTesseract(cfg Config) *Tesseract {
	languages := cfg.Languages
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	t := &Tesseract{
		languages:     languages,
		dpi:           cfg.DPI,
		clientFactory: gosseract.NewClient,
	}
	t.recognize = t.runEngine
	return t
}

// Name implements Recognizer.
func (t *Tesseract) Name() string { return string(EngineTesseract) }

// Recognize runs OCR over the image and returns the recognized text split
// into trimmed lines. The engine call honors ctx: when the deadline fires
// mid-recognition the context error is returned and the in-flight engine
// work is abandoned to finish in its own goroutine, which is acceptable
// since the pipeline has no side effects to roll back.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image for recognition: %w", err)
	}

	type recognition struct {
		text string
		err  error
	}

	// Buffered so the abandoned engine goroutine can always exit.
	done := make(chan recognition, 1)
	go func() {
		text, err := t.recognize(buf.Bytes())
		done <- recognition{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		return SplitBlob(r.text), nil
	}
}

// runEngine performs one blocking recognition with a fresh client.
func (t *Tesseract) runEngine(pngData []byte) (string, error) {
	client := t.clientFactory()
	defer client.Close()

	if err := client.SetImageFromBytes(pngData); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if err := client.SetLanguage(t.languages...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}
	if t.dpi > 0 {
		if err := client.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(t.dpi)); err != nil {
			return "", fmt.Errorf("set dpi: %w", err)
		}
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}
