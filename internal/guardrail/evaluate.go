// Package guardrail decides whether a generated page may be indexed and which
// URL it declares canonical.
package guardrail

import (
	"context"
	"fmt"
	"strings"

	"horse.fit/seoguard/internal/dedup"
	"horse.fit/seoguard/internal/fingerprint"
	"horse.fit/seoguard/internal/seotext"
)

const (
	ReasonThinContent    = "thin_content"
	ReasonDuplicateExact = "duplicate_exact"
	ReasonDuplicateNear  = "duplicate_near"
)

// DuplicateFinder is satisfied by *dedup.Detector.
type DuplicateFinder interface {
	FindDuplicate(ctx context.Context, pageType, canonicalPath string, fp fingerprint.Fingerprint) (*dedup.Match, error)
}

type Input struct {
	CanonicalPath      string
	RequestedIndexable bool
	Content            seotext.Content
}

// Policy is the per page type indexing policy. MinWords <= 0 disables
// thin-content gating.
type Policy struct {
	PageType string
	MinWords int
}

type Decision struct {
	Indexable     bool                    `json:"indexable"`
	CanonicalPath string                  `json:"canonical_path"`
	Reasons       []string                `json:"reasons"`
	Fingerprint   fingerprint.Fingerprint `json:"fingerprint"`
}

// Evaluate fingerprints the page content and applies the thin-content and
// duplicate checks. A nil finder skips duplicate detection. Finder errors are
// returned as is; no decision is produced for them.
func Evaluate(ctx context.Context, in Input, policy Policy, finder DuplicateFinder) (Decision, error) {
	decision := Decision{
		Indexable:     in.RequestedIndexable,
		CanonicalPath: NormalizePath(in.CanonicalPath),
		Reasons:       []string{},
		Fingerprint:   fingerprint.Compute(seotext.Normalize(in.Content)),
	}

	if decision.Indexable && policy.MinWords > 0 && decision.Fingerprint.WordCount < policy.MinWords {
		decision.Indexable = false
		decision.Reasons = append(decision.Reasons, ReasonThinContent)
	}

	if !decision.Indexable || finder == nil {
		return decision, nil
	}

	match, err := finder.FindDuplicate(ctx, policy.PageType, decision.CanonicalPath, decision.Fingerprint)
	if err != nil {
		return Decision{}, fmt.Errorf("find duplicate for %s: %w", decision.CanonicalPath, err)
	}
	if match == nil {
		return decision, nil
	}

	decision.Indexable = false
	decision.CanonicalPath = match.CanonicalPath
	if match.Kind == dedup.MatchNear {
		decision.Reasons = append(decision.Reasons, ReasonDuplicateNear)
	} else {
		decision.Reasons = append(decision.Reasons, ReasonDuplicateExact)
	}
	return decision, nil
}

// NormalizePath trims the path and guarantees a leading slash.
func NormalizePath(raw string) string {
	path := strings.TrimSpace(raw)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
