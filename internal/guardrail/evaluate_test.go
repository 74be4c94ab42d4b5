package guardrail

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"horse.fit/seoguard/internal/db"
	"horse.fit/seoguard/internal/dedup"
	"horse.fit/seoguard/internal/fingerprint"
	"horse.fit/seoguard/internal/seotext"
)

type recordingFinder struct {
	match *dedup.Match
	err   error
	calls int
	paths []string
}

func (f *recordingFinder) FindDuplicate(_ context.Context, _ string, canonicalPath string, _ fingerprint.Fingerprint) (*dedup.Match, error) {
	f.calls++
	f.paths = append(f.paths, canonicalPath)
	return f.match, f.err
}

func newSQLiteDetector(t *testing.T) *dedup.Detector {
	t.Helper()

	pool, err := db.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "guardrail.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = pool.Close() })
	return dedup.NewDetector(pool, zerolog.Nop(), dedup.Options{MaxDistance: 3, CandidateLimit: 40})
}

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "word"
	}
	return strings.Join(parts, " ")
}

func templateContent() seotext.Content {
	return seotext.Content{
		Title:   "Best single board computers",
		Heading: "Top picks",
		FAQs: []seotext.FAQ{
			{Question: "Which boards are supported?", Answer: "No boards have been verified yet."},
		},
		Body: "We have not tested any devices for this fork yet. Check back soon for verified results.",
	}
}

func TestEvaluate_ExactDuplicateScenario(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	detector := newSQLiteDetector(t)
	policy := Policy{PageType: "best"}

	first, err := Evaluate(ctx, Input{
		CanonicalPath:      "/best/sbc-for-openclaw",
		RequestedIndexable: true,
		Content:            templateContent(),
	}, policy, detector)
	if err != nil {
		t.Fatalf("evaluate A: %v", err)
	}
	if !first.Indexable || first.CanonicalPath != "/best/sbc-for-openclaw" || len(first.Reasons) != 0 {
		t.Fatalf("unexpected decision for A: %#v", first)
	}

	second, err := Evaluate(ctx, Input{
		CanonicalPath:      "/best/sbc-for-nanoclaw",
		RequestedIndexable: true,
		Content:            templateContent(),
	}, policy, detector)
	if err != nil {
		t.Fatalf("evaluate B: %v", err)
	}
	if second.Indexable {
		t.Fatalf("expected B to be non-indexable")
	}
	if second.CanonicalPath != "/best/sbc-for-openclaw" {
		t.Fatalf("expected B to canonicalize to A, got %q", second.CanonicalPath)
	}
	if len(second.Reasons) != 1 || second.Reasons[0] != ReasonDuplicateExact {
		t.Fatalf("unexpected reasons for B: %#v", second.Reasons)
	}

	// Re-evaluating A is still self-canonical.
	again, err := Evaluate(ctx, Input{
		CanonicalPath:      "best/sbc-for-openclaw",
		RequestedIndexable: true,
		Content:            templateContent(),
	}, policy, detector)
	if err != nil {
		t.Fatalf("re-evaluate A: %v", err)
	}
	if !again.Indexable || again.CanonicalPath != "/best/sbc-for-openclaw" {
		t.Fatalf("A must remain canonical, got %#v", again)
	}
}

func TestEvaluate_ThinContentScenario(t *testing.T) {
	t.Parallel()

	finder := &recordingFinder{}
	decision, err := Evaluate(context.Background(), Input{
		CanonicalPath:      "/guides/flash-sd-card",
		RequestedIndexable: true,
		Content:            seotext.Content{Title: words(5), Body: words(20)},
	}, Policy{PageType: "guides", MinWords: 40}, finder)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if decision.Fingerprint.WordCount != 25 {
		t.Fatalf("unexpected word count: %d", decision.Fingerprint.WordCount)
	}
	if decision.Indexable {
		t.Fatalf("thin content must not be indexable")
	}
	if len(decision.Reasons) != 1 || decision.Reasons[0] != ReasonThinContent {
		t.Fatalf("unexpected reasons: %#v", decision.Reasons)
	}
	if finder.calls != 0 {
		t.Fatalf("duplicate detection must be skipped for non-indexable pages, got %d calls", finder.calls)
	}
}

func TestEvaluate_MinWordsDisabled(t *testing.T) {
	t.Parallel()

	for _, minWords := range []int{0, -5} {
		decision, err := Evaluate(context.Background(), Input{
			CanonicalPath:      "/guides/x",
			RequestedIndexable: true,
			Content:            seotext.Content{Title: "short"},
		}, Policy{PageType: "guides", MinWords: minWords}, nil)
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if !decision.Indexable || len(decision.Reasons) != 0 {
			t.Fatalf("minWords=%d must disable gating, got %#v", minWords, decision)
		}
	}
}

func TestEvaluate_RequestedNonIndexable(t *testing.T) {
	t.Parallel()

	finder := &recordingFinder{match: &dedup.Match{Kind: dedup.MatchExact, CanonicalPath: "/other"}}
	decision, err := Evaluate(context.Background(), Input{
		CanonicalPath:      "/can/openclaw/unknown-board",
		RequestedIndexable: false,
		Content:            seotext.Content{Title: words(100)},
	}, Policy{PageType: "can", MinWords: 40}, finder)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if decision.Indexable || decision.CanonicalPath != "/can/openclaw/unknown-board" || len(decision.Reasons) != 0 {
		t.Fatalf("caller default must be kept without reasons, got %#v", decision)
	}
	if finder.calls != 0 {
		t.Fatalf("finder must not run for non-indexable pages")
	}
}

func TestEvaluate_NearDuplicateReason(t *testing.T) {
	t.Parallel()

	finder := &recordingFinder{match: &dedup.Match{Kind: dedup.MatchNear, CanonicalPath: "/compare/a-vs-b", Distance: 2}}
	decision, err := Evaluate(context.Background(), Input{
		CanonicalPath:      "compare/b-vs-a",
		RequestedIndexable: true,
		Content:            seotext.Content{Title: "A vs B"},
	}, Policy{PageType: "compare"}, finder)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if decision.Indexable || decision.CanonicalPath != "/compare/a-vs-b" {
		t.Fatalf("unexpected decision: %#v", decision)
	}
	if len(decision.Reasons) != 1 || decision.Reasons[0] != ReasonDuplicateNear {
		t.Fatalf("unexpected reasons: %#v", decision.Reasons)
	}
	if len(finder.paths) != 1 || finder.paths[0] != "/compare/b-vs-a" {
		t.Fatalf("finder must receive the normalized path, got %#v", finder.paths)
	}
}

func TestEvaluate_PropagatesFinderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("store unavailable")
	_, err := Evaluate(context.Background(), Input{
		CanonicalPath:      "/best/x",
		RequestedIndexable: true,
		Content:            seotext.Content{Title: "Title"},
	}, Policy{PageType: "best"}, &recordingFinder{err: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}

func TestEvaluate_DeterministicFingerprint(t *testing.T) {
	t.Parallel()

	in := Input{CanonicalPath: "/best/x", RequestedIndexable: true, Content: templateContent()}
	first, err := Evaluate(context.Background(), in, Policy{}, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	second, err := Evaluate(context.Background(), in, Policy{}, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if first.Fingerprint != second.Fingerprint {
		t.Fatalf("fingerprints differ: %#v vs %#v", first.Fingerprint, second.Fingerprint)
	}
	if first.Reasons == nil {
		t.Fatalf("reasons must be an empty list, not nil")
	}
}

func TestEvaluate_SelfCanonicalWithRelatedContentLater(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	detector := newSQLiteDetector(t)
	policy := Policy{PageType: "can", MinWords: 5}

	body := "openclaw installs cleanly on this board with the default image and runs at full speed"
	first, err := Evaluate(ctx, Input{
		CanonicalPath:      "/can/openclaw/rock-5b",
		RequestedIndexable: true,
		Content:            seotext.Content{Title: "Can OpenClaw run on Rock 5B", Body: body},
	}, policy, detector)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !first.Indexable || first.CanonicalPath != "/can/openclaw/rock-5b" {
		t.Fatalf("first page with its content must be self-canonical, got %#v", first)
	}
}

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"/best/x":   "/best/x",
		"best/x":    "/best/x",
		"  /can/y ": "/can/y",
		"":          "/",
	}
	for in, want := range cases {
		if got := NormalizePath(in); got != want {
			t.Fatalf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}
