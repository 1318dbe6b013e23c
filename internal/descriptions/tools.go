package descriptions

// Comprehensive tool descriptions with practical examples and use cases

const (
	HCFAParseFileDescription = `Extract structured billing data from a scanned CMS-1500 ("HCFA") claim form.

**When to use:** Need the CPT procedure codes, ICD-10 diagnosis codes, charges, and patient date of birth from a claim document as structured JSON.

**Why it's useful:** Handles the whole pipeline in one call: decodes the document (PDF, PNG, JPEG, or TIFF), recognizes only the billing-relevant regions of the form, and parses the text into a claim record. Born-digital PDFs with a text layer skip OCR entirely.

**Examples:**
• Intake automation: "Parse scans/claim-0042.pdf and return the billed procedures"
• Data entry replacement: "Extract the diagnosis codes from uploaded-claim.png"
• Charge capture: "Get line-level charges from faxed-claim.tiff"

**Common workflows:**
1. Claim Intake: Parse file → Review claim JSON → Feed to adjudication
2. Quality Review: Parse file → hcfa_audit_claim → Flag incomplete claims
3. Batch Processing: Parse each scan → Aggregate claims → Export

**Best practices:** Prefer hcfa_parse_and_audit when you also want compliance findings; the default cropped strategy keeps patient-identifying regions outside the DOB box away from recognition.`

	HCFAAuditClaimDescription = `Audit a structured claim record for completeness and compliance issues.

**When to use:** Have a claim (from hcfa_parse_file or another source) and need to know what is missing or invalid before submission.

**Why it's useful:** Applies a fixed, deterministic rule set: missing CPT codes, zero units, negative charges, unlinked or absent diagnoses, and missing patient DOB. The claim itself is never modified.

**Examples:**
• Pre-submission check: "Audit this claim JSON before it goes to the clearinghouse"
• Vendor QA: "Run the audit rules over claims produced by a third-party extractor"
• Regression testing: "Verify an edited claim still passes the audit"

**Common workflows:**
1. Extraction QA: hcfa_parse_file → hcfa_audit_claim → route clean claims forward
2. Manual Correction Loop: Audit → fix reported issues → re-audit until clean

**Best practices:** Pass the claim JSON exactly as produced by hcfa_parse_file; the issues list is ordered and stable, so diffs between audit runs are meaningful.`

	HCFAParseAndAuditDescription = `Extract billing data from a claim document and audit the result in one call.

**When to use:** The common intake path: you have a scanned claim form on disk and want both the structured claim and its compliance findings.

**Why it's useful:** Combines hcfa_parse_file and hcfa_audit_claim atomically, so the audit always reflects exactly what was extracted.

**Examples:**
• One-shot intake: "Parse and audit scans/claim-0042.pdf"
• Triage: "Process the day's claim scans and return the ones with audit issues"

**Common workflows:**
1. Straight-through Processing: Parse and audit → clean claims auto-forwarded, flagged claims queued for review
2. Monitoring: Track the issue rate over time to spot scanner or form-layout drift

**Best practices:** A "clean": true response means no audit rules fired, not that the extraction is guaranteed correct; spot-check low-confidence scans.`
)
