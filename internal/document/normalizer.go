// Package document converts uploaded claim-form bytes into a normalized
// raster page and selects the privacy-safe regions used for recognition.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"path/filepath"
	"strings"

	// Raster decoders for the supported upload formats.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Sentinel errors surfaced by Normalize. Callers classify them with
// errors.Is to decide whether a failure is the client's fault.
var (
	ErrEmptyInput        = errors.New("uploaded document is empty")
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrNoPages           = errors.New("document contains no pages")
	ErrTooLarge          = errors.New("document exceeds the maximum file size")
)

// Format identifies the decode path an upload took.
type Format string

const (
	FormatImage Format = "image"
	FormatPDF   Format = "pdf"
)

// Page is a single normalized form page. For PDF uploads with a native text
// layer, TextRows carries the text rows of page one so callers can skip
// recognition entirely.
type Page struct {
	Image    *image.RGBA
	Source   Format
	TextRows []string
}

// Normalizer decodes uploaded bytes into a Page. It is stateless and safe
// for concurrent use.
type Normalizer struct {
	maxFileSize int64
}

// NewNormalizer creates a normalizer enforcing the given byte limit on
// uploads. A limit of zero disables the check.
func NewNormalizer(maxFileSize int64) *Normalizer {
	return &Normalizer{maxFileSize: maxFileSize}
}

// Normalize turns raw uploaded bytes plus a filename hint into a single
// normalized raster page. The filename extension (case-insensitive) decides
// the decode path. Multi-page PDFs are truncated to page one, silently.
// No recognition or metadata stripping happens here, only pixel decoding.
func (n *Normalizer) Normalize(data []byte, filename string) (*Page, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	if n.maxFileSize > 0 && int64(len(data)) > n.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(data), n.maxFileSize)
	}

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".pdf":
		return n.normalizePDF(data)
	case ".jpg", ".jpeg", ".png", ".tif", ".tiff":
		return n.normalizeRaster(data)
	default:
		return nil, fmt.Errorf("%w: %q (upload a JPG, PNG, TIFF or PDF of the form)", ErrUnsupportedFormat, ext)
	}
}

func (n *Normalizer) normalizeRaster(data []byte) (*Page, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return &Page{Image: toRGBA(img), Source: FormatImage}, nil
}

// normalizePDF renders page one of a PDF upload. Scanned claim forms arrive
// as a single full-page raster embedded in the PDF, so "rendering" extracts
// the largest image asset on page one. Born-digital PDFs additionally get
// their text rows probed so the pipeline can skip recognition.
func (n *Normalizer) normalizePDF(data []byte) (*Page, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: not a readable PDF: %v", ErrUnsupportedFormat, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if ctx.PageCount == 0 {
		return nil, ErrNoPages
	}

	page := &Page{Source: FormatPDF}
	page.TextRows = nativeTextRows(data)

	img, err := firstPageImage(data, conf)
	if err != nil {
		// A text-layer PDF without raster assets is still processable.
		if len(page.TextRows) > 0 {
			return page, nil
		}
		return nil, err
	}
	page.Image = img
	return page, nil
}

// firstPageImage extracts and decodes the largest raster asset on page one.
func firstPageImage(data []byte, conf *model.Configuration) (*image.RGBA, error) {
	pageImages, err := api.ExtractImagesRaw(bytes.NewReader(data), []string{"1"}, conf)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot extract page image: %v", ErrUnsupportedFormat, err)
	}

	var best image.Image
	for _, imgs := range pageImages {
		for _, asset := range imgs {
			decoded, _, err := image.Decode(asset)
			if err != nil {
				continue
			}
			if best == nil || area(decoded) > area(best) {
				best = decoded
			}
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no renderable image on page one", ErrUnsupportedFormat)
	}
	return toRGBA(best), nil
}

func area(img image.Image) int {
	b := img.Bounds()
	return b.Dx() * b.Dy()
}

// toRGBA converts a decoded image to the canonical 3-channel (plus alpha)
// color space all downstream components expect.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
