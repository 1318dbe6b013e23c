package hcfa

import (
	"context"
	"errors"
	"fmt"

	"github.com/claimsight/hcfa-ocr/internal/document"
)

// Kind classifies pipeline failures for the transport boundary.
type Kind string

const (
	KindEmptyInput         Kind = "empty_input"
	KindUnsupportedFormat  Kind = "unsupported_format"
	KindNoPagesInDocument  Kind = "no_pages_in_document"
	KindRecognitionFailure Kind = "recognition_failure"
	KindExtractionError    Kind = "extraction_error"
	KindInternal           Kind = "internal"
)

// PipelineError wraps a failure with its kind and the pipeline operation
// that produced it.
type PipelineError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// ClientFacing reports whether the error is the caller's fault and safe to
// report verbatim. Anything else is logged for operator diagnosis and
// surfaced as a generic failure that omits internal detail.
func (e *PipelineError) ClientFacing() bool {
	switch e.Kind {
	case KindEmptyInput, KindUnsupportedFormat, KindNoPagesInDocument:
		return true
	default:
		return false
	}
}

// ClientMessage is the text shown to the caller. Recognition and internal
// failures deliberately collapse to one opaque message so stack traces and
// PHI-adjacent debug text never leave the process.
func (e *PipelineError) ClientMessage() string {
	if e.ClientFacing() {
		return e.Err.Error()
	}
	return "failed to read claim"
}

// newPipelineError classifies an error from a pipeline stage. Errors the
// classifier does not recognize fall back to the stage's default kind.
func newPipelineError(op string, err error, fallback Kind) *PipelineError {
	kind := fallback
	switch {
	case errors.Is(err, document.ErrEmptyInput):
		kind = KindEmptyInput
	case errors.Is(err, document.ErrUnsupportedFormat), errors.Is(err, document.ErrTooLarge):
		kind = KindUnsupportedFormat
	case errors.Is(err, document.ErrNoPages):
		kind = KindNoPagesInDocument
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		kind = KindRecognitionFailure
	}
	return &PipelineError{Kind: kind, Op: op, Err: err}
}
