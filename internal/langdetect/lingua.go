// Package langdetect reports the language of normalized page text. The
// detector is built once and is read-only afterwards.
package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

const (
	minLetters = 6
	// minConfidence is the lowest top-language confidence reported as a match.
	minConfidence = 0.4
)

// Languages the site publishes in. Models load lazily on first use.
var supportedLanguages = []lingua.Language{
	lingua.English,
	lingua.German,
	lingua.French,
	lingua.Spanish,
	lingua.Portuguese,
	lingua.Italian,
	lingua.Dutch,
	lingua.Polish,
	lingua.Russian,
	lingua.Japanese,
	lingua.Chinese,
	lingua.Korean,
}

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// Result is a detected language with its confidence in [0, 1].
type Result struct {
	Code       string  `json:"code"`
	Confidence float64 `json:"confidence"`
}

// Detect returns the most likely language of text. ok is false for short,
// letter-less or ambiguous input.
func Detect(text string) (Result, bool) {
	sample := strings.TrimSpace(text)
	if countLetters(sample) < minLetters {
		return Result{}, false
	}

	values := getDetector().ComputeLanguageConfidenceValues(sample)
	if len(values) == 0 {
		return Result{}, false
	}
	top := values[0]
	if top.Value() < minConfidence {
		return Result{}, false
	}

	code := strings.ToLower(top.Language().IsoCode639_1().String())
	if len(code) != 2 {
		return Result{}, false
	}
	return Result{Code: code, Confidence: top.Value()}, true
}

// DetectISO6391 returns the two letter code of the text's language, or "".
func DetectISO6391(text string) string {
	result, ok := Detect(text)
	if !ok {
		return ""
	}
	return result.Code
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(supportedLanguages...).
			Build()
	})
	return detector
}
