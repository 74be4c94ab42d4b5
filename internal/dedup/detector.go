// Package dedup resolves canonical paths for fingerprinted page content by
// exact hash identity and banded SimHash near-duplicate search.
package dedup

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"horse.fit/seoguard/internal/db"
	"horse.fit/seoguard/internal/fingerprint"
	"horse.fit/seoguard/internal/logging"
)

const (
	DefaultCandidateLimit = 40
	maxDistance           = 64
)

type MatchKind string

const (
	MatchExact MatchKind = "exact"
	MatchNear  MatchKind = "near"
)

// Match reports that content already belongs to another canonical path.
type Match struct {
	Kind          MatchKind `json:"kind"`
	CanonicalPath string    `json:"canonical_path"`
	Distance      int       `json:"distance"`
}

// Store is the persistence the detector needs. *db.Pool implements it.
type Store interface {
	FindBandCandidates(ctx context.Context, pageType, excludeExactHash string, bands fingerprint.Bands, limit int) ([]db.FingerprintRecord, error)
	UpsertFingerprint(ctx context.Context, rec db.FingerprintRecord) (db.FingerprintRecord, error)
}

type Options struct {
	// MaxDistance is the largest Hamming distance treated as a near duplicate.
	// Zero or less disables near-duplicate search.
	MaxDistance    int
	CandidateLimit int
}

type Detector struct {
	store  Store
	logger zerolog.Logger
	opts   Options
}

type nearestCandidate struct {
	CanonicalPath string
	Distance      int
}

func NewDetector(store Store, logger zerolog.Logger, opts Options) *Detector {
	if opts.MaxDistance < 0 {
		opts.MaxDistance = 0
	}
	if opts.MaxDistance > maxDistance {
		opts.MaxDistance = maxDistance
	}
	if opts.CandidateLimit <= 0 {
		opts.CandidateLimit = DefaultCandidateLimit
	}
	return &Detector{
		store:  store,
		logger: logging.WithComponent(logger, "dedup"),
		opts:   opts,
	}
}

func (d *Detector) Options() Options {
	return d.opts
}

// FindDuplicate records fp for (pageType, canonicalPath) and reports whether
// the content is canonical elsewhere. It always writes the fingerprint; the
// stored canonical path for an exact hash never changes after the first write.
func (d *Detector) FindDuplicate(ctx context.Context, pageType, canonicalPath string, fp fingerprint.Fingerprint) (*Match, error) {
	if d == nil || d.store == nil {
		return nil, fmt.Errorf("duplicate detector is not initialized")
	}
	pageType = strings.ToLower(strings.TrimSpace(pageType))
	if pageType == "" {
		return nil, fmt.Errorf("page type is required")
	}

	nearest, err := d.findNearest(ctx, pageType, canonicalPath, fp)
	if err != nil {
		return nil, err
	}

	preferred := canonicalPath
	if nearest != nil {
		preferred = nearest.CanonicalPath
	}

	stored, err := d.store.UpsertFingerprint(ctx, db.NewFingerprintRecord(pageType, preferred, fp))
	if err != nil {
		return nil, fmt.Errorf("record fingerprint: %w", err)
	}

	event := d.logger.Debug().
		Str("page_type", pageType).
		Str("canonical_path", canonicalPath).
		Str("stored_canonical_path", stored.CanonicalPath).
		Str("exact_hash", shortHash(fp.ExactHash))

	if stored.CanonicalPath == canonicalPath {
		event.Msg("content is canonical")
		return nil, nil
	}

	match := &Match{
		Kind:          MatchExact,
		CanonicalPath: stored.CanonicalPath,
	}
	if nearest != nil && stored.CanonicalPath == nearest.CanonicalPath {
		match.Kind = MatchNear
		match.Distance = nearest.Distance
	}

	event.
		Str("match_kind", string(match.Kind)).
		Int("distance", match.Distance).
		Msg("duplicate content")
	return match, nil
}

func (d *Detector) findNearest(ctx context.Context, pageType, canonicalPath string, fp fingerprint.Fingerprint) (*nearestCandidate, error) {
	if d.opts.MaxDistance <= 0 {
		return nil, nil
	}

	candidates, err := d.store.FindBandCandidates(ctx, pageType, fp.ExactHash, fp.Bands(), d.opts.CandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("find near-duplicate candidates: %w", err)
	}

	var best *nearestCandidate
	for _, candidate := range candidates {
		if candidate.CanonicalPath == canonicalPath {
			continue
		}
		distance := fingerprint.Distance(fp.SimilarityHash, candidate.Hash())
		if distance > d.opts.MaxDistance {
			continue
		}
		if best == nil || distance < best.Distance {
			best = &nearestCandidate{
				CanonicalPath: candidate.CanonicalPath,
				Distance:      distance,
			}
		}
	}
	return best, nil
}

func shortHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}
