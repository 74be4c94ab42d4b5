package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"horse.fit/seoguard/internal/fingerprint"
	"horse.fit/seoguard/internal/langdetect"
	"horse.fit/seoguard/internal/reader"
	"horse.fit/seoguard/internal/seotext"
)

type fingerprintReport struct {
	Source         string   `json:"source"`
	Title          string   `json:"title"`
	WordCount      int      `json:"word_count"`
	ExactHash      string   `json:"exact_hash"`
	SimilarityHash string   `json:"similarity_hash"`
	Bands          []uint16 `json:"bands"`
	Language       string   `json:"language,omitempty"`
	LanguageScore  float64  `json:"language_confidence,omitempty"`
}

func runFingerprint(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fingerprint", flag.ContinueOnError)
	fs.SetOutput(stderr)

	file := fs.String("file", "", "Request .json file")
	htmlFile := fs.String("html", "", "Rendered HTML page")
	pageURL := fs.String("url", "", "Page URL used to resolve links in --html mode")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid format: %v\n", err)
		return 2
	}

	var (
		content seotext.Content
		source  string
	)
	switch {
	case strings.TrimSpace(*file) != "" && strings.TrimSpace(*htmlFile) != "":
		fmt.Fprintln(stderr, "use either --file or --html, not both")
		return 2
	case strings.TrimSpace(*file) != "":
		source = strings.TrimSpace(*file)
		content, err = contentFromRequestFile(source)
	case strings.TrimSpace(*htmlFile) != "":
		source = strings.TrimSpace(*htmlFile)
		content, err = contentFromHTMLFile(source, *pageURL)
	default:
		fmt.Fprintln(stderr, "--file or --html is required")
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "Fingerprint failed: %v\n", err)
		return 1
	}

	report := buildFingerprintReport(source, content)
	if outputFormat == outputFormatJSON {
		if err := printJSON(stdout, report); err != nil {
			fmt.Fprintf(stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	bandValues := make([]string, len(report.Bands))
	for i, band := range report.Bands {
		bandValues[i] = strconv.Itoa(int(band))
	}
	rows := [][]string{
		{"source", report.Source},
		{"title", report.Title},
		{"word_count", strconv.Itoa(report.WordCount)},
		{"exact_hash", report.ExactHash},
		{"similarity_hash", report.SimilarityHash},
		{"bands", strings.Join(bandValues, ",")},
		{"language", report.Language},
		{"language_confidence", strconv.FormatFloat(report.LanguageScore, 'f', 2, 64)},
	}
	if err := writeTable(stdout, []string{"field", "value"}, rows); err != nil {
		fmt.Fprintf(stderr, "Failed to render table: %v\n", err)
		return 1
	}
	return 0
}

func buildFingerprintReport(source string, content seotext.Content) fingerprintReport {
	normalized := seotext.Normalize(content)
	fp := fingerprint.Compute(normalized)
	bands := fp.Bands()
	report := fingerprintReport{
		Source:         source,
		Title:          strings.TrimSpace(content.Title),
		WordCount:      fp.WordCount,
		ExactHash:      fp.ExactHash,
		SimilarityHash: fingerprint.FormatHash(fp.SimilarityHash),
		Bands:          bands[:],
	}
	if lang, ok := langdetect.Detect(normalized); ok {
		report.Language = lang.Code
		report.LanguageScore = lang.Confidence
	}
	return report
}

func contentFromRequestFile(path string) (seotext.Content, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return seotext.Content{}, fmt.Errorf("read %s: %w", path, err)
	}
	req, err := seotext.ParseRequest(raw, false)
	if err != nil {
		return seotext.Content{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return req.Content, nil
}

func contentFromHTMLFile(path, rawURL string) (seotext.Content, error) {
	f, err := os.Open(path)
	if err != nil {
		return seotext.Content{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var pageURL *url.URL
	if trimmed := strings.TrimSpace(rawURL); trimmed != "" {
		pageURL, err = url.Parse(trimmed)
		if err != nil {
			return seotext.Content{}, fmt.Errorf("parse --url: %w", err)
		}
	}

	content, err := reader.ContentFromHTML(f, pageURL)
	if err != nil {
		return seotext.Content{}, fmt.Errorf("extract content from %s: %w", path, err)
	}
	return content, nil
}
