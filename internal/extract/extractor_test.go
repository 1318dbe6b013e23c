package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor(t *testing.T, modifiers ModifierPolicy, pointers PointerPolicy) *Extractor {
	t.Helper()
	ex, err := NewExtractor(modifiers, pointers)
	require.NoError(t, err)
	return ex
}

func TestNewExtractorRejectsUnknownPolicies(t *testing.T) {
	_, err := NewExtractor("fancy", PointerPolicyNone)
	assert.Error(t, err)

	_, err = NewExtractor(ModifierPolicyNumeric, "guess")
	assert.Error(t, err)
}

func TestExtractSingleProcedureLine(t *testing.T) {
	ex := newTestExtractor(t, ModifierPolicyNumeric, PointerPolicyNone)

	c := ex.Extract("", []string{"99213 25 LT 150.00"})

	require.Len(t, c.Lines, 1)
	line := c.Lines[0]
	assert.Equal(t, 1, line.LineNumber)
	assert.Equal(t, "99213", line.CPT)
	assert.Equal(t, 1, line.Units)
	assert.InDelta(t, 150.00, line.Charges, 0.001)

	// Numeric policy picks up 25 and LT in appearance order. The trailing
	// "00" comes from the charge's fractional digits, an accepted false
	// positive of the permissive modifier pattern.
	require.GreaterOrEqual(t, len(line.Modifiers), 2)
	assert.Equal(t, "25", line.Modifiers[0])
	assert.Equal(t, "LT", line.Modifiers[1])
}

func TestExtractEnumeratedModifierPolicy(t *testing.T) {
	ex := newTestExtractor(t, ModifierPolicyEnumerated, PointerPolicyNone)

	c := ex.Extract("", []string{"99213 25 LT 150.00"})

	require.Len(t, c.Lines, 1)
	// 25 is not part of the enumerated set; LT is.
	assert.Equal(t, []string{"LT"}, c.Lines[0].Modifiers)
}

func TestExtractDOB(t *testing.T) {
	ex := newTestExtractor(t, ModifierPolicyNumeric, PointerPolicyNone)

	tests := []struct {
		name    string
		dobText string
		want    string
	}{
		{name: "slash_separated", dobText: "DOB: 04/12/1985", want: "04/12/1985"},
		{name: "dash_separated", dobText: "3. PATIENT BIRTH 11-02-1971 SEX M", want: "11-02-1971"},
		{name: "dot_separated", dobText: "01.31.2003", want: "01.31.2003"},
		{name: "first_match_wins", dobText: "04/12/1985 05/06/1990", want: "04/12/1985"},
		{name: "month_out_of_range", dobText: "13/12/1985", want: ""},
		{name: "year_out_of_range", dobText: "04/12/1885", want: ""},
		{name: "no_date", dobText: "garbled text", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ex.Extract(tt.dobText, nil)
			assert.Equal(t, tt.want, c.PatientDOB)
		})
	}
}

func TestExtractICDMapKeysContiguous(t *testing.T) {
	ex := newTestExtractor(t, ModifierPolicyNumeric, PointerPolicyNone)

	c := ex.Extract("", []string{
		"21. DIAGNOSIS M54.5 E11.9",
		"more noise Z79.4",
		"M54.5 repeated on a later line",
	})

	assert.Equal(t, map[string]string{
		"A": "M54.5",
		"B": "E11.9",
		"C": "Z79.4",
	}, c.ICD10)
}

func TestExtractDeduplicatesCPTAcrossLines(t *testing.T) {
	ex := newTestExtractor(t, ModifierPolicyNumeric, PointerPolicyNone)

	c := ex.Extract("", []string{
		"99213 150.00",
		"99213 80.00",
		"93000 45.00",
	})

	require.Len(t, c.Lines, 2)
	assert.Equal(t, "99213", c.Lines[0].CPT)
	assert.InDelta(t, 150.00, c.Lines[0].Charges, 0.001)
	assert.Equal(t, "93000", c.Lines[1].CPT)
	assert.Equal(t, 2, c.Lines[1].LineNumber)
}

func TestExtractPointerPolicies(t *testing.T) {
	body := []string{"M54.5", "99213 150.00"}

	t.Run("none_leaves_pointers_empty", func(t *testing.T) {
		ex := newTestExtractor(t, ModifierPolicyNumeric, PointerPolicyNone)
		c := ex.Extract("", body)
		require.Len(t, c.Lines, 1)
		assert.Empty(t, c.Lines[0].DiagnosisPointers)
	})

	t.Run("default_a_links_every_line", func(t *testing.T) {
		ex := newTestExtractor(t, ModifierPolicyNumeric, PointerPolicyDefaultA)
		c := ex.Extract("", body)
		require.Len(t, c.Lines, 1)
		assert.Equal(t, []string{"A"}, c.Lines[0].DiagnosisPointers)
	})

	t.Run("default_a_degenerates_without_codes", func(t *testing.T) {
		ex := newTestExtractor(t, ModifierPolicyNumeric, PointerPolicyDefaultA)
		c := ex.Extract("", []string{"99213 150.00"})
		require.Len(t, c.Lines, 1)
		assert.Empty(t, c.Lines[0].DiagnosisPointers)
	})
}

func TestExtractEmptyInputYieldsEmptyClaim(t *testing.T) {
	ex := newTestExtractor(t, ModifierPolicyNumeric, PointerPolicyNone)

	c := ex.Extract("", nil)

	assert.Empty(t, c.Lines)
	assert.Empty(t, c.ICD10)
	assert.Empty(t, c.PatientDOB)
	assert.Equal(t, "", c.Payer)
	assert.Equal(t, "", c.POS)
}

func TestExtractDeterministic(t *testing.T) {
	ex := newTestExtractor(t, ModifierPolicyNumeric, PointerPolicyDefaultA)
	body := []string{
		"21. M54.5 E11.9",
		"24. 99213 25 150.00",
		"24. 93000 80.00",
	}

	first := ex.Extract("DOB 04/12/1985", body)
	second := ex.Extract("DOB 04/12/1985", body)

	assert.Equal(t, first, second)
}

func TestExtractBlobSplitsOnNewlines(t *testing.T) {
	ex := newTestExtractor(t, ModifierPolicyNumeric, PointerPolicyNone)

	c := ex.ExtractBlob("DOB 04/12/1985", "M54.5\n99213 25 150.00\n93000 80.00")

	assert.Equal(t, "04/12/1985", c.PatientDOB)
	require.Len(t, c.Lines, 2)
	assert.Equal(t, map[string]string{"A": "M54.5"}, c.ICD10)
}

func TestExtractChargeDefaultsToZero(t *testing.T) {
	ex := newTestExtractor(t, ModifierPolicyNumeric, PointerPolicyNone)

	c := ex.Extract("", []string{"99213 25"})

	require.Len(t, c.Lines, 1)
	assert.Zero(t, c.Lines[0].Charges)
}
