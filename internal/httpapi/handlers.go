package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"

	"horse.fit/seoguard/internal/db"
	"horse.fit/seoguard/internal/fingerprint"
	"horse.fit/seoguard/internal/guardrail"
	"horse.fit/seoguard/internal/langdetect"
	"horse.fit/seoguard/internal/seotext"
)

type evalCounters struct {
	evaluations atomic.Int64
	thin        atomic.Int64
	exact       atomic.Int64
	near        atomic.Int64
	errors      atomic.Int64
}

type counterSnapshot struct {
	Evaluations int64 `json:"evaluations"`
	Thin        int64 `json:"thin_content"`
	Exact       int64 `json:"duplicate_exact"`
	Near        int64 `json:"duplicate_near"`
	Errors      int64 `json:"errors"`
}

func (c *evalCounters) record(decision guardrail.Decision) {
	c.evaluations.Add(1)
	for _, reason := range decision.Reasons {
		switch reason {
		case guardrail.ReasonThinContent:
			c.thin.Add(1)
		case guardrail.ReasonDuplicateExact:
			c.exact.Add(1)
		case guardrail.ReasonDuplicateNear:
			c.near.Add(1)
		}
	}
}

func (c *evalCounters) snapshot() counterSnapshot {
	return counterSnapshot{
		Evaluations: c.evaluations.Load(),
		Thin:        c.thin.Load(),
		Exact:       c.exact.Load(),
		Near:        c.near.Load(),
		Errors:      c.errors.Load(),
	}
}

type fingerprintView struct {
	WordCount      int      `json:"word_count"`
	ExactHash      string   `json:"exact_hash"`
	SimilarityHash string   `json:"similarity_hash"`
	Bands          []uint16 `json:"bands"`
	Language       string   `json:"language,omitempty"`
	LanguageScore  float64  `json:"language_confidence,omitempty"`
}

type recordView struct {
	ID             int64     `json:"id"`
	PageType       string    `json:"page_type"`
	CanonicalPath  string    `json:"canonical_path"`
	ExactHash      string    `json:"exact_hash"`
	SimilarityHash string    `json:"similarity_hash"`
	Bands          []uint16  `json:"bands"`
	WordCount      int       `json:"word_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type statsResponse struct {
	PageTypes []db.PageTypeCount `json:"page_types"`
	Counters  counterSnapshot    `json:"counters"`
}

func (s *Server) handleHealth(c echo.Context) error {
	if err := s.store.Ping(c.Request().Context()); err != nil {
		s.logger.Error().Err(err).Msg("health check database ping failed")
		return internalError(c, "Database unavailable")
	}
	return success(c, map[string]string{"status": "ok"})
}

func (s *Server) handleEvaluate(c echo.Context) error {
	req, ok, err := s.bindRequest(c, true)
	if !ok {
		return err
	}

	decision, err := guardrail.Evaluate(
		c.Request().Context(),
		guardrail.Input{
			CanonicalPath:      req.CanonicalPath,
			RequestedIndexable: req.RequestedIndexable,
			Content:            req.Content,
		},
		guardrail.Policy{
			PageType: req.PageType,
			MinWords: s.opts.MinWords(req.PageType),
		},
		s.detector,
	)
	if err != nil {
		s.counters.errors.Add(1)
		s.logger.Error().
			Err(err).
			Str("page_type", req.PageType).
			Str("canonical_path", req.CanonicalPath).
			Msg("evaluate page failed")
		return internalError(c, "Failed to evaluate page")
	}

	s.counters.record(decision)
	return success(c, decision)
}

func (s *Server) handleFingerprint(c echo.Context) error {
	req, ok, err := s.bindRequest(c, false)
	if !ok {
		return err
	}

	normalized := seotext.Normalize(req.Content)
	view := newFingerprintView(fingerprint.Compute(normalized))
	if lang, ok := langdetect.Detect(normalized); ok {
		view.Language = lang.Code
		view.LanguageScore = lang.Confidence
	}
	return success(c, view)
}

func (s *Server) handleGetFingerprint(c echo.Context) error {
	pageType := strings.ToLower(strings.TrimSpace(c.Param("page_type")))
	exactHash := strings.ToLower(strings.TrimSpace(c.Param("exact_hash")))
	if pageType == "" || exactHash == "" {
		return fail(c, http.StatusBadRequest, "page_type and exact_hash are required")
	}

	rec, err := s.store.GetFingerprint(c.Request().Context(), pageType, exactHash)
	if err != nil {
		if db.IsNotFound(err) {
			return failNotFound(c, "Fingerprint not found")
		}
		s.logger.Error().Err(err).Str("page_type", pageType).Str("exact_hash", exactHash).Msg("get fingerprint failed")
		return internalError(c, "Failed to load fingerprint")
	}
	return success(c, newRecordView(rec))
}

func (s *Server) handleStats(c echo.Context) error {
	counts, err := s.store.CountFingerprintsByPageType(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("count fingerprints failed")
		return internalError(c, "Failed to load stats")
	}
	if counts == nil {
		counts = []db.PageTypeCount{}
	}
	return success(c, statsResponse{
		PageTypes: counts,
		Counters:  s.counters.snapshot(),
	})
}

// bindRequest reads and validates the request envelope. When ok is false the
// response has already been written and err is what the handler returns.
func (s *Server) bindRequest(c echo.Context, requirePageType bool) (*seotext.Request, bool, error) {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, false, fail(c, http.StatusBadRequest, "Failed to read request body")
	}

	req, err := seotext.ParseRequest(payload, requirePageType)
	if err != nil {
		var validationErr *seotext.ValidationError
		if errors.As(err, &validationErr) {
			return nil, false, failValidation(c, validationErr.Fields)
		}
		return nil, false, fail(c, http.StatusBadRequest, "Invalid JSON payload")
	}
	return req, true, nil
}

func newFingerprintView(fp fingerprint.Fingerprint) fingerprintView {
	bands := fp.Bands()
	return fingerprintView{
		WordCount:      fp.WordCount,
		ExactHash:      fp.ExactHash,
		SimilarityHash: fingerprint.FormatHash(fp.SimilarityHash),
		Bands:          bands[:],
	}
}

func newRecordView(rec db.FingerprintRecord) recordView {
	bands := rec.Bands()
	return recordView{
		ID:             rec.ID,
		PageType:       rec.PageType,
		CanonicalPath:  rec.CanonicalPath,
		ExactHash:      rec.ExactHash,
		SimilarityHash: fingerprint.FormatHash(rec.Hash()),
		Bands:          bands[:],
		WordCount:      rec.WordCount,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
}
