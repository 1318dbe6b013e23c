package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/claimsight/hcfa-ocr/internal/claim"
	"github.com/claimsight/hcfa-ocr/internal/config"
	"github.com/claimsight/hcfa-ocr/internal/document"
	"github.com/claimsight/hcfa-ocr/internal/extract"
	"github.com/claimsight/hcfa-ocr/internal/hcfa"
	"github.com/claimsight/hcfa-ocr/internal/logging"
	"github.com/claimsight/hcfa-ocr/internal/ocr"
)

var (
	outputFormat   = flag.String("format", "text", "Output format: text, json")
	strategy       = flag.String("strategy", "cropped", "Region strategy: cropped, whole-page")
	pointerPolicy  = flag.String("pointers", "none", "Diagnosis pointer assignment: none, default-a")
	modifierPolicy = flag.String("modifiers", "numeric", "Modifier detection: numeric, enumerated")
	languages      = flag.String("languages", "eng", "Comma-separated OCR languages")
	skipAudit      = flag.Bool("no-audit", false, "Skip the audit pass and print only the extracted claim")
	timeout        = flag.Duration("timeout", 60*time.Second, "Per-document recognition timeout")
	verbose        = flag.Bool("verbose", false, "Enable verbose output")
	help           = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: claim document path required\n\n")
		printUsage()
		os.Exit(1)
	}

	path := flag.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read file: %s\n", path)
		os.Exit(1)
	}

	level := "error"
	if *verbose {
		level = "debug"
	}
	logger := logging.Setup("text", level)

	recognizer, err := ocr.NewRecognizer(ocr.Config{
		Engine:    ocr.EngineTesseract,
		Languages: splitList(*languages),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	svc, err := hcfa.NewService(hcfa.Options{
		MaxFileSize:      config.DefaultMaxFileSize,
		Strategy:         document.Strategy(*strategy),
		Fractions:        document.DefaultFractions(),
		ModifierPolicy:   extract.ModifierPolicy(*modifierPolicy),
		PointerPolicy:    extract.PointerPolicy(*pointerPolicy),
		PreferNativeText: true,
		RecognizeTimeout: *timeout,
	}, recognizer, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	req := hcfa.SubmitDocumentRequest{
		Data:     data,
		Filename: filepath.Base(path),
	}

	ctx := context.Background()

	var (
		extracted *claim.Claim
		issues    []string
	)
	if *skipAudit {
		result, err := svc.SubmitDocument(ctx, req)
		if err != nil {
			fail(err)
		}
		extracted = result.Claim
	} else {
		result, err := svc.SubmitAndEvaluate(ctx, req)
		if err != nil {
			fail(err)
		}
		extracted = result.Claim
		issues = result.Issues
	}

	if err := outputResults(path, extracted, issues); err != nil {
		fmt.Fprintf(os.Stderr, "Error outputting results: %v\n", err)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error extracting claim: %v\n", err)
	os.Exit(1)
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// extractionReport is the JSON output shape.
type extractionReport struct {
	FilePath string       `json:"file_path"`
	Claim    *claim.Claim `json:"claim"`
	Issues   []string     `json:"issues,omitempty"`
	Clean    bool         `json:"clean"`
}

func outputResults(path string, c *claim.Claim, issues []string) error {
	if *outputFormat == "json" {
		report := extractionReport{
			FilePath: path,
			Claim:    c,
			Issues:   issues,
			Clean:    len(issues) == 0,
		}
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("Claim extracted from: %s\n", path)
	if c.PatientDOB != "" {
		fmt.Printf("Patient DOB: %s\n", c.PatientDOB)
	}

	if len(c.ICD10) > 0 {
		fmt.Printf("\nDiagnoses (%d):\n", len(c.ICD10))
		for i := 0; i < len(c.ICD10); i++ {
			key := string(rune('A' + i))
			fmt.Printf("  %s: %s\n", key, c.ICD10[key])
		}
	}

	fmt.Printf("\nProcedure lines (%d):\n", len(c.Lines))
	for _, line := range c.Lines {
		fmt.Printf("  %d. CPT %s", line.LineNumber, line.CPT)
		if len(line.Modifiers) > 0 {
			fmt.Printf(" modifiers=%v", line.Modifiers)
		}
		if len(line.DiagnosisPointers) > 0 {
			fmt.Printf(" pointers=%v", line.DiagnosisPointers)
		}
		fmt.Printf(" units=%d charges=%.2f\n", line.Units, line.Charges)
	}

	if !*skipAudit {
		if len(issues) == 0 {
			fmt.Println("\nAudit: clean")
		} else {
			fmt.Printf("\nAudit issues (%d):\n", len(issues))
			for _, issue := range issues {
				fmt.Printf("  - %s\n", issue)
			}
		}
	}

	return nil
}

func printHelp() {
	fmt.Println("HCFA Extract - pull billing data from scanned CMS-1500 claim forms")
	fmt.Println()
	fmt.Println("Reads a claim document (PDF, PNG, JPEG, or TIFF), recognizes the")
	fmt.Println("diagnosis and procedure regions, and prints the structured claim")
	fmt.Println("together with any audit findings.")
	fmt.Println()
	printUsage()
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -format        Output format: text (default), json")
	fmt.Println("  -strategy      Region strategy: cropped (default), whole-page")
	fmt.Println("  -pointers      Diagnosis pointer assignment: none (default), default-a")
	fmt.Println("  -modifiers     Modifier detection: numeric (default), enumerated")
	fmt.Println("  -languages     Comma-separated OCR languages (default eng)")
	fmt.Println("  -no-audit      Skip the audit pass")
	fmt.Println("  -timeout       Per-document recognition timeout (default 60s)")
	fmt.Println("  -verbose       Enable verbose output")
	fmt.Println("  -help          Show this help message")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  hcfa-extract claim.pdf")
	fmt.Println("  hcfa-extract -format json -pointers default-a scans/claim-0042.png")
	fmt.Println("  hcfa-extract -strategy whole-page -verbose claim.tiff")
}

func printUsage() {
	fmt.Println("USAGE:")
	fmt.Println("  hcfa-extract [OPTIONS] <claim_document>")
}
