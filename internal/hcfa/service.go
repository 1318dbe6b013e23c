// Package hcfa orchestrates the claim extraction pipeline: normalize the
// uploaded document, select the privacy-safe regions, recognize their text,
// parse it into a structured claim and audit the result.
package hcfa

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/claimsight/hcfa-ocr/internal/claim"
	"github.com/claimsight/hcfa-ocr/internal/document"
	"github.com/claimsight/hcfa-ocr/internal/extract"
	"github.com/claimsight/hcfa-ocr/internal/ocr"
)

// Options configures a Service.
type Options struct {
	// MaxFileSize caps uploads in bytes; zero disables the check.
	MaxFileSize int64

	// Strategy and Fractions configure region selection.
	Strategy  document.Strategy
	Fractions document.Fractions

	// ModifierPolicy and PointerPolicy configure the claim extractor.
	ModifierPolicy extract.ModifierPolicy
	PointerPolicy  extract.PointerPolicy

	// PreferNativeText extracts directly from a PDF text layer when one is
	// present, skipping recognition for born-digital documents.
	PreferNativeText bool

	// RecognizeTimeout bounds each document's recognition work. Zero means
	// no bound.
	RecognizeTimeout time.Duration
}

// Service processes claim documents. Each request is handled independently
// and statelessly; the injected recognizer is the only long-lived handle
// and must be safe for concurrent invocation.
type Service struct {
	opts       Options
	normalizer *document.Normalizer
	selector   *document.Selector
	recognizer ocr.Recognizer
	extractor  *extract.Extractor
	logger     zerolog.Logger
}

// NewService wires the pipeline components.
func NewService(opts Options, recognizer ocr.Recognizer, logger zerolog.Logger) (*Service, error) {
	if recognizer == nil {
		return nil, errors.New("recognizer cannot be nil")
	}

	selector, err := document.NewSelector(opts.Strategy, opts.Fractions)
	if err != nil {
		return nil, err
	}

	extractor, err := extract.NewExtractor(opts.ModifierPolicy, opts.PointerPolicy)
	if err != nil {
		return nil, err
	}

	return &Service{
		opts:       opts,
		normalizer: document.NewNormalizer(opts.MaxFileSize),
		selector:   selector,
		recognizer: recognizer,
		extractor:  extractor,
		logger:     logger,
	}, nil
}

// SubmitDocument runs the full extraction pipeline over one uploaded
// document. Extraction is all-or-nothing: no partial claim is returned on
// failure. Failures come back as *PipelineError; non-client kinds are
// logged here with operator detail.
func (s *Service) SubmitDocument(ctx context.Context, req SubmitDocumentRequest) (*SubmitDocumentResult, error) {
	started := time.Now()

	page, err := s.normalizer.Normalize(req.Data, req.Filename)
	if err != nil {
		return nil, s.fail("normalize", req.Filename, err, KindInternal)
	}

	var extracted *claim.Claim
	switch {
	case s.opts.PreferNativeText && document.HasMeaningfulText(page.TextRows):
		s.logger.Debug().Str("filename", req.Filename).Msg("using native PDF text layer")
		extracted = s.extractor.Extract(ocr.JoinLines(page.TextRows), page.TextRows)

	case page.Image == nil:
		return nil, s.fail("normalize", req.Filename, document.ErrUnsupportedFormat, KindInternal)

	default:
		extracted, err = s.recognizeAndExtract(ctx, page)
		if err != nil {
			return nil, s.fail("recognize", req.Filename, err, KindRecognitionFailure)
		}
	}

	s.logger.Debug().
		Str("filename", req.Filename).
		Int("lines", len(extracted.Lines)).
		Int("diagnoses", len(extracted.ICD10)).
		Bool("dob", extracted.HasDOB()).
		Dur("elapsed", time.Since(started)).
		Msg("document processed")

	return &SubmitDocumentResult{Claim: extracted}, nil
}

// recognizeAndExtract runs OCR per region (or once for the whole page) and
// parses the recognized text.
func (s *Service) recognizeAndExtract(ctx context.Context, page *document.Page) (*claim.Claim, error) {
	if s.opts.RecognizeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RecognizeTimeout)
		defer cancel()
	}

	regions, err := s.selector.Select(page.Image)
	if err != nil {
		return nil, err
	}

	if regions.FullPage != nil {
		lines, err := s.recognizer.Recognize(ctx, regions.FullPage)
		if err != nil {
			return nil, err
		}
		return s.extractor.Extract(ocr.JoinLines(lines), lines), nil
	}

	dobLines, err := s.recognizer.Recognize(ctx, regions.DOB)
	if err != nil {
		return nil, err
	}
	bodyLines, err := s.recognizer.Recognize(ctx, regions.Body)
	if err != nil {
		return nil, err
	}
	return s.extractor.Extract(ocr.JoinLines(dobLines), bodyLines), nil
}

// EvaluateClaim audits an already extracted claim and returns it unchanged
// alongside the ordered issue list.
func (s *Service) EvaluateClaim(req EvaluateClaimRequest) (*EvaluateClaimResult, error) {
	if req.Claim == nil {
		return nil, &PipelineError{
			Kind: KindExtractionError,
			Op:   "evaluate",
			Err:  errors.New("claim cannot be nil"),
		}
	}
	return &EvaluateClaimResult{
		Claim:  req.Claim,
		Issues: claim.Audit(req.Claim),
	}, nil
}

// SubmitAndEvaluate chains SubmitDocument into EvaluateClaim for
// single-call convenience.
func (s *Service) SubmitAndEvaluate(ctx context.Context, req SubmitDocumentRequest) (*EvaluateClaimResult, error) {
	submitted, err := s.SubmitDocument(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.EvaluateClaim(EvaluateClaimRequest{Claim: submitted.Claim})
}

// fail classifies an error and logs non-client failures with detail the
// caller never sees.
func (s *Service) fail(op, filename string, err error, fallback Kind) *PipelineError {
	perr := newPipelineError(op, err, fallback)
	if perr.ClientFacing() {
		s.logger.Debug().Str("op", op).Str("filename", filename).Err(err).Msg("rejected document")
	} else {
		s.logger.Error().Str("op", op).Str("filename", filename).Err(err).Msg("pipeline failure")
	}
	return perr
}
