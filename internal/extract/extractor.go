// Package extract parses recognized CMS-1500 text into a structured claim
// record using layout-aware pattern rules.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/claimsight/hcfa-ocr/internal/claim"
)

// ModifierPolicy selects which tokens count as procedure modifiers on a
// claim line.
type ModifierPolicy string

const (
	// ModifierPolicyNumeric accepts any 2-digit token plus RT/LT/TC. This is
	// the permissive default and will occasionally pick up charge fragments.
	ModifierPolicyNumeric ModifierPolicy = "numeric"

	// ModifierPolicyEnumerated accepts only a fixed set of known modifiers.
	ModifierPolicyEnumerated ModifierPolicy = "enumerated"
)

// PointerPolicy selects how diagnosis pointers are assigned to claim lines.
// Neither policy reads actual Box 24E linkage from the form; see the
// documentation on Extractor for the tradeoff.
type PointerPolicy string

const (
	// PointerPolicyNone leaves every line's pointer list empty.
	PointerPolicyNone PointerPolicy = "none"

	// PointerPolicyDefaultA points every line at diagnosis "A" whenever at
	// least one diagnosis code was found anywhere on the form. This is a
	// known-imprecise heuristic: it asserts linkage without text-level
	// evidence and degenerates to empty pointers when no codes were found.
	PointerPolicyDefaultA PointerPolicy = "default-a"
)

// Extractor turns recognized text into a claim.Claim. Extraction operates
// per recognized line: modifier and charge tokens are only taken from lines
// that also carry a CPT match, which keeps unrelated amounts elsewhere on
// the form from attaching to a procedure.
type Extractor struct {
	modifierRegex *regexp.Regexp
	pointerPolicy PointerPolicy
}

// NewExtractor builds an extractor for the given policies.
func NewExtractor(modifiers ModifierPolicy, pointers PointerPolicy) (*Extractor, error) {
	var modifierRegex *regexp.Regexp
	switch modifiers {
	case ModifierPolicyNumeric, "":
		modifierRegex = numericModifierRegex
	case ModifierPolicyEnumerated:
		modifierRegex = enumeratedModifierRegex
	default:
		return nil, fmt.Errorf("unknown modifier policy: %s", modifiers)
	}

	switch pointers {
	case PointerPolicyNone, "", PointerPolicyDefaultA:
	default:
		return nil, fmt.Errorf("unknown pointer policy: %s", pointers)
	}

	return &Extractor{
		modifierRegex: modifierRegex,
		pointerPolicy: pointers,
	}, nil
}

// Extract parses the DOB-zone text and the body-zone lines into a claim.
// Absence of matches yields empty or absent fields, never an error: a scan
// of a blank page produces an empty claim, and the audit rules report the
// gaps. Running Extract twice on identical input yields identical output.
func (e *Extractor) Extract(dobText string, bodyLines []string) *claim.Claim {
	var (
		icdCodes []string
		icdSeen  = map[string]bool{}
		entries  []lineEntry
		cptSeen  = map[string]bool{}
	)

	for _, raw := range bodyLines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		for _, m := range icdRegex.FindAllStringSubmatch(line, -1) {
			code := m[1]
			if len(code) < minICDLength || icdSeen[code] {
				continue
			}
			icdSeen[code] = true
			icdCodes = append(icdCodes, code)
		}

		cptMatch := cptRegex.FindStringSubmatch(line)
		if cptMatch == nil {
			continue
		}
		cpt := cptMatch[1]
		if cptSeen[cpt] {
			continue
		}
		cptSeen[cpt] = true

		entries = append(entries, lineEntry{
			cpt:       cpt,
			modifiers: e.scanModifiers(line),
			charges:   scanCharge(line),
		})
	}

	return e.assemble(scanDOB(dobText), icdCodes, entries)
}

// ExtractBlob is the whole-page variant: it splits one opaque recognized
// text blob on newlines and runs line extraction over the result. Used for
// recognizers that do not report individual lines.
func (e *Extractor) ExtractBlob(dobText, bodyText string) *claim.Claim {
	return e.Extract(dobText, strings.Split(bodyText, "\n"))
}

type lineEntry struct {
	cpt       string
	modifiers []string
	charges   float64
}

func (e *Extractor) scanModifiers(line string) []string {
	var (
		mods []string
		seen = map[string]bool{}
	)
	for _, m := range e.modifierRegex.FindAllStringSubmatch(line, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		mods = append(mods, m[1])
	}
	return mods
}

func scanCharge(line string) float64 {
	m := chargeRegex.FindStringSubmatch(line)
	if m == nil {
		return 0.0
	}
	charge, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0.0
	}
	return charge
}

// scanDOB returns the first date-shaped token in the DOB-zone text, or ""
// when none matches.
func scanDOB(text string) string {
	return dobRegex.FindString(text)
}

func (e *Extractor) assemble(dob string, icdCodes []string, entries []lineEntry) *claim.Claim {
	icdMap := make(map[string]string, len(icdCodes))
	for i, code := range icdCodes {
		icdMap[string(rune('A'+i))] = code
	}

	lines := make([]claim.ClaimLine, 0, len(entries))
	for i, entry := range entries {
		pointers := []string{}
		if e.pointerPolicy == PointerPolicyDefaultA && len(icdMap) > 0 {
			pointers = []string{"A"}
		}
		lines = append(lines, claim.ClaimLine{
			LineNumber:        i + 1,
			CPT:               entry.cpt,
			Modifiers:         entry.modifiers,
			DiagnosisPointers: pointers,
			Units:             1,
			Charges:           entry.charges,
		})
	}

	return &claim.Claim{
		Payer:      "",
		POS:        "",
		Lines:      lines,
		ICD10:      icdMap,
		PatientDOB: dob,
	}
}
