package document

import (
	"errors"
	"fmt"
	"image"
)

// Strategy selects how the page is divided before recognition.
type Strategy string

const (
	// StrategyWholePage passes the full page to the recognizer. Structured
	// extraction then runs over all recognized text, PHI included.
	StrategyWholePage Strategy = "whole-page"

	// StrategyCropped recognizes only two privacy-safe bands: the Box 3 DOB
	// area and the lower Box 21/24 diagnosis-and-procedure area. The top of
	// the form (name, address, insurance ID) never reaches the recognizer.
	StrategyCropped Strategy = "cropped"
)

// Fractions are the crop rectangles expressed as fractions of page width
// and height. They assume a proportionally standard CMS-1500 layout and can
// be tuned per scanner; skewed or rotated scans may miscrop, which surfaces
// later as empty extraction results rather than an error.
type Fractions struct {
	DOBX1  float64 `json:"dob_x1"`
	DOBX2  float64 `json:"dob_x2"`
	DOBY1  float64 `json:"dob_y1"`
	DOBY2  float64 `json:"dob_y2"`
	BodyY1 float64 `json:"body_y1"`
	BodyY2 float64 `json:"body_y2"`
}

// DefaultFractions returns the crop fractions for a standard CMS-1500 scan.
func DefaultFractions() Fractions {
	return Fractions{
		DOBX1:  0.28,
		DOBX2:  0.55,
		DOBY1:  0.18,
		DOBY2:  0.26,
		BodyY1: 0.40,
		BodyY2: 0.92,
	}
}

// Validate checks that the fractions describe non-degenerate rectangles
// inside the unit square.
func (f Fractions) Validate() error {
	ranges := []struct {
		name   string
		lo, hi float64
	}{
		{"dob x", f.DOBX1, f.DOBX2},
		{"dob y", f.DOBY1, f.DOBY2},
		{"body y", f.BodyY1, f.BodyY2},
	}
	for _, r := range ranges {
		if r.lo < 0 || r.hi > 1 || r.lo >= r.hi {
			return fmt.Errorf("invalid %s crop fractions: [%v, %v]", r.name, r.lo, r.hi)
		}
	}
	return nil
}

// Regions holds the sub-images produced by a Selector. Exactly one of
// FullPage or the DOB/Body pair is populated depending on strategy.
type Regions struct {
	FullPage *image.RGBA
	DOB      *image.RGBA
	Body     *image.RGBA
}

// Selector crops a normalized page into recognition regions. Selection is a
// pure function of the image bounds: the same dimensions always produce the
// same crop rectangles.
type Selector struct {
	strategy  Strategy
	fractions Fractions
}

// NewSelector builds a selector for the given strategy.
func NewSelector(strategy Strategy, fractions Fractions) (*Selector, error) {
	switch strategy {
	case StrategyWholePage, StrategyCropped:
	case "":
		strategy = StrategyCropped
	default:
		return nil, fmt.Errorf("unknown region strategy: %s", strategy)
	}
	if err := fractions.Validate(); err != nil {
		return nil, err
	}
	return &Selector{strategy: strategy, fractions: fractions}, nil
}

// Strategy returns the configured strategy.
func (s *Selector) Strategy() Strategy {
	return s.strategy
}

// Select crops the page according to the configured strategy. A bad crop is
// not an error: an empty or garbage sub-image is a valid return value and
// surfaces later as an empty extraction result.
func (s *Selector) Select(img *image.RGBA) (Regions, error) {
	if img == nil {
		return Regions{}, errors.New("nil page image")
	}

	if s.strategy == StrategyWholePage {
		return Regions{FullPage: img}, nil
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	dobRect := image.Rect(
		b.Min.X+int(s.fractions.DOBX1*float64(w)),
		b.Min.Y+int(s.fractions.DOBY1*float64(h)),
		b.Min.X+int(s.fractions.DOBX2*float64(w)),
		b.Min.Y+int(s.fractions.DOBY2*float64(h)),
	)
	bodyRect := image.Rect(
		b.Min.X,
		b.Min.Y+int(s.fractions.BodyY1*float64(h)),
		b.Max.X,
		b.Min.Y+int(s.fractions.BodyY2*float64(h)),
	)

	return Regions{
		DOB:  img.SubImage(dobRect.Intersect(b)).(*image.RGBA),
		Body: img.SubImage(bodyRect.Intersect(b)).(*image.RGBA),
	}, nil
}
