package extract

import "regexp"

// Token patterns for CMS-1500 field recognition. These operate on noisy OCR
// output, so they trade precision for recall: a five-digit substring inside a
// longer number is accepted as a CPT false positive rather than attempting
// context disambiguation.
var (
	// cptRegex matches a 5-digit procedure code bounded by word boundaries.
	cptRegex = regexp.MustCompile(`\b(\d{5})\b`)

	// icdRegex matches ICD-10 shaped codes: a letter (A-T, V-Z), a digit,
	// then one to six alphanumerics with an optional dot-delimited suffix.
	icdRegex = regexp.MustCompile(`\b([A-TV-Z][0-9][A-Z0-9.]{1,6})\b`)

	// dobRegex matches MM/DD/YYYY style dates with /, - or . separators,
	// months 01-12, days 01-31 and years 19xx or 20xx.
	dobRegex = regexp.MustCompile(`\b(0[1-9]|1[0-2])[/\-.](0[1-9]|[12][0-9]|3[01])[/\-.](19|20)\d{2}\b`)

	// chargeRegex matches a decimal amount with exactly two fractional digits.
	chargeRegex = regexp.MustCompile(`(\d+\.\d{2})`)

	// numericModifierRegex matches any 2-digit token plus the letter
	// modifiers that appear on Box 24D (RT/LT/TC).
	numericModifierRegex = regexp.MustCompile(`\b(\d{2}|RT|LT|TC)\b`)

	// enumeratedModifierRegex restricts matching to a fixed set of common
	// procedure modifiers.
	enumeratedModifierRegex = regexp.MustCompile(`\b(RT|LT|TC|26|50|51|52|53|57|59|76|77)\b`)
)

// minICDLength discards spurious short matches before they enter the ICD map.
const minICDLength = 3
