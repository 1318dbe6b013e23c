package document

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"
)

// minMeaningfulTextLength is the threshold below which a PDF text layer is
// treated as absent (scanner noise, producer watermarks).
const minMeaningfulTextLength = 50

// nativeTextRows probes page one of a PDF for a native text layer and
// returns its text rows in reading order. It returns nil when the PDF is
// scanned-only, encrypted or otherwise yields no rows; failures here are
// never fatal because the raster path remains available.
func nativeTextRows(data []byte) (rows []string) {
	defer func() {
		// The underlying parser panics on some malformed documents.
		if recover() != nil {
			rows = nil
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil || reader.NumPage() == 0 {
		return nil
	}

	page := reader.Page(1)
	if page.V.IsNull() {
		return nil
	}

	textRows, err := page.GetTextByRow()
	if err != nil {
		return nil
	}

	for _, row := range textRows {
		var b strings.Builder
		for _, word := range row.Content {
			b.WriteString(word.S)
		}
		if line := strings.TrimSpace(b.String()); line != "" {
			rows = append(rows, line)
		}
	}
	return rows
}

// HasMeaningfulText reports whether the probed text rows carry enough
// content to extract from directly, skipping recognition.
func HasMeaningfulText(rows []string) bool {
	total := 0
	for _, row := range rows {
		total += len(strings.TrimSpace(row))
	}
	return total >= minMeaningfulTextLength
}
