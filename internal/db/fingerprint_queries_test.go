package db

import (
	"context"
	"path/filepath"
	"testing"

	"horse.fit/seoguard/internal/fingerprint"
)

func openTestPool(t *testing.T) *Pool {
	t.Helper()

	pool, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "seoguard.db"))
	if err != nil {
		t.Fatalf("open sqlite pool: %v", err)
	}
	t.Cleanup(func() { _ = pool.Close() })
	return pool
}

func TestUpsertFingerprint_KeepsFirstCanonicalPath(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := openTestPool(t)
	fp := fingerprint.Compute("openclaw runs on raspberry pi 5")

	first, err := pool.UpsertFingerprint(ctx, NewFingerprintRecord("best", "/best/sbc-for-openclaw", fp))
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if first.CanonicalPath != "/best/sbc-for-openclaw" {
		t.Fatalf("unexpected first canonical path: %q", first.CanonicalPath)
	}

	refreshed := NewFingerprintRecord("best", "/best/sbc-for-nanoclaw", fp)
	refreshed.WordCount = 99
	second, err := pool.UpsertFingerprint(ctx, refreshed)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.CanonicalPath != "/best/sbc-for-openclaw" {
		t.Fatalf("canonical path must not be overwritten, got %q", second.CanonicalPath)
	}
	if second.ID != first.ID {
		t.Fatalf("expected the same row, got ids %d and %d", first.ID, second.ID)
	}
	if second.WordCount != 99 {
		t.Fatalf("expected word count refresh, got %d", second.WordCount)
	}

	counts, err := pool.CountFingerprintsByPageType(ctx)
	if err != nil {
		t.Fatalf("count fingerprints: %v", err)
	}
	if len(counts) != 1 || counts[0].PageType != "best" || counts[0].Records != 1 {
		t.Fatalf("expected exactly one best record, got %#v", counts)
	}
}

func TestUpsertFingerprint_PartitionsByPageType(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := openTestPool(t)
	fp := fingerprint.Compute("same text on two page types")

	if _, err := pool.UpsertFingerprint(ctx, NewFingerprintRecord("best", "/best/a", fp)); err != nil {
		t.Fatalf("upsert best: %v", err)
	}
	guide, err := pool.UpsertFingerprint(ctx, NewFingerprintRecord("guides", "/guides/a", fp))
	if err != nil {
		t.Fatalf("upsert guides: %v", err)
	}
	if guide.CanonicalPath != "/guides/a" {
		t.Fatalf("page types must not share canonical paths, got %q", guide.CanonicalPath)
	}
}

func TestUpsertFingerprint_RoundTripsHighBitHash(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := openTestPool(t)
	fp := fingerprint.Fingerprint{WordCount: 3, ExactHash: "abc", SimilarityHash: 0xfedcba9876543210}

	stored, err := pool.UpsertFingerprint(ctx, NewFingerprintRecord("can", "/can/x", fp))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if stored.Hash() != fp.SimilarityHash {
		t.Fatalf("similarity hash did not round trip: got %x want %x", stored.Hash(), fp.SimilarityHash)
	}
	if stored.Band1 != 0xfedc || stored.Band4 != 0x3210 {
		t.Fatalf("unexpected stored bands: %d %d", stored.Band1, stored.Band4)
	}
}

func TestFindBandCandidates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := openTestPool(t)

	seed := []struct {
		pageType string
		path     string
		hash     string
		simhash  uint64
	}{
		{"best", "/best/shares-band2", "h1", 0x0000111100000000},
		{"best", "/best/no-shared-band", "h2", 0x0001000200030004},
		{"best", "/best/same-exact-hash", "target", 0xaaaa111100000000},
		{"guides", "/guides/other-type", "h3", 0x0000111100000000},
		{"best", "/best/shares-band4", "h4", 0x9999888877770000},
	}
	for _, s := range seed {
		fp := fingerprint.Fingerprint{ExactHash: s.hash, SimilarityHash: s.simhash}
		if _, err := pool.UpsertFingerprint(ctx, NewFingerprintRecord(s.pageType, s.path, fp)); err != nil {
			t.Fatalf("seed %s: %v", s.path, err)
		}
	}

	query := fingerprint.BandsOf(0xffff1111ffff0000)
	rows, err := pool.FindBandCandidates(ctx, "best", "target", query, 40)
	if err != nil {
		t.Fatalf("find candidates: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %#v", len(rows), rows)
	}
	if rows[0].CanonicalPath != "/best/shares-band2" || rows[1].CanonicalPath != "/best/shares-band4" {
		t.Fatalf("unexpected candidates or order: %q, %q", rows[0].CanonicalPath, rows[1].CanonicalPath)
	}

	capped, err := pool.FindBandCandidates(ctx, "best", "target", query, 1)
	if err != nil {
		t.Fatalf("find capped candidates: %v", err)
	}
	if len(capped) != 1 {
		t.Fatalf("expected candidate limit to cap rows, got %d", len(capped))
	}
}

func TestGetFingerprint_NotFound(t *testing.T) {
	t.Parallel()

	_, err := openTestPool(t).GetFingerprint(context.Background(), "best", "missing")
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
