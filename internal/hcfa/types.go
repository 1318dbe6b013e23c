package hcfa

import "github.com/claimsight/hcfa-ocr/internal/claim"

// Request Types

// SubmitDocumentRequest carries one uploaded claim form. Data is the raw
// upload and Filename the client-supplied name whose extension selects the
// decode path.
type SubmitDocumentRequest struct {
	Data     []byte `json:"-"`
	Filename string `json:"filename"`
}

// EvaluateClaimRequest carries an already extracted claim for auditing.
type EvaluateClaimRequest struct {
	Claim *claim.Claim `json:"claim"`
}

// Response Types

// SubmitDocumentResult is the structured claim extracted from one document.
type SubmitDocumentResult struct {
	Claim *claim.Claim `json:"claim"`
}

// EvaluateClaimResult returns the claim unchanged alongside the ordered
// audit issues.
type EvaluateClaimResult struct {
	Claim  *claim.Claim `json:"claim"`
	Issues []string     `json:"issues"`
}
