// Package claim defines the structured record extracted from a CMS-1500
// ("HCFA") claim form and the audit rules evaluated against it.
package claim

// ClaimLine represents one billed procedure row from Box 24 of the form.
type ClaimLine struct {
	LineNumber        int      `json:"line_number"`
	CPT               string   `json:"cpt"`
	Modifiers         []string `json:"modifiers"`
	DiagnosisPointers []string `json:"diagnosis_pointers"`
	Units             int      `json:"units"`
	Charges           float64  `json:"charges"`
}

// Claim is the full extracted record for one form. It is built once per
// uploaded document and never mutated afterwards; audit issues are derived
// from it, not written back.
type Claim struct {
	// Payer and POS are reserved for future use and always empty today.
	Payer string `json:"payer"`
	POS   string `json:"pos"`

	// Lines holds the billed procedures in the order they appear on the form.
	Lines []ClaimLine `json:"lines"`

	// ICD10 maps diagnosis pointers ("A", "B", ...) to ICD-10 codes. Keys are
	// assigned contiguously from "A" in first-seen order of distinct codes.
	ICD10 map[string]string `json:"icd10"`

	// PatientDOB is the Box 3 date of birth in MM/DD/YYYY form (separators
	// may be /, - or .). Empty when no date was recognized.
	PatientDOB string `json:"patient_dob,omitempty"`
}

// HasDOB reports whether a date of birth was recognized.
func (c *Claim) HasDOB() bool {
	return c.PatientDOB != ""
}
