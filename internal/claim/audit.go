package claim

import "fmt"

// Audit evaluates the fixed consistency rule set against a claim and returns
// human-readable issue strings. The rule order is deterministic:
//
//  1. missing claim lines
//  2. per-line checks (missing CPT, non-positive units, negative charges)
//     nested in line-number order
//  3. missing diagnosis codes, or per-line missing diagnosis pointers
//  4. missing date of birth
//
// Audit is a pure function: it never fails and never mutates the claim.
func Audit(c *Claim) []string {
	issues := []string{}

	if len(c.Lines) == 0 {
		issues = append(issues, "no claim lines detected")
	}

	for _, line := range c.Lines {
		if line.CPT == "" {
			issues = append(issues, fmt.Sprintf("line %d: missing CPT code", line.LineNumber))
		}
		if line.Units <= 0 {
			issues = append(issues, fmt.Sprintf("line %d: units must be at least 1", line.LineNumber))
		}
		if line.Charges < 0 {
			issues = append(issues, fmt.Sprintf("line %d: negative charges", line.LineNumber))
		}
	}

	if len(c.ICD10) == 0 {
		issues = append(issues, "no diagnosis codes detected")
	} else {
		for _, line := range c.Lines {
			if len(line.DiagnosisPointers) == 0 {
				issues = append(issues, fmt.Sprintf("line %d: no diagnosis pointers linked", line.LineNumber))
			}
		}
	}

	if !c.HasDOB() {
		issues = append(issues, "patient DOB not detected")
	}

	return issues
}
