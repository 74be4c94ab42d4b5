package db

import (
	"time"

	"horse.fit/seoguard/internal/fingerprint"
)

// FingerprintRecord maps seo_fingerprints. One row per (page_type, exact_hash);
// canonical_path is written once on insert and never updated.
type FingerprintRecord struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	PageType       string    `gorm:"column:page_type;type:text;not null;uniqueIndex:idx_seo_fingerprints_type_hash,priority:1;index:idx_seo_fingerprints_band1,priority:1;index:idx_seo_fingerprints_band2,priority:1;index:idx_seo_fingerprints_band3,priority:1;index:idx_seo_fingerprints_band4,priority:1"`
	CanonicalPath  string    `gorm:"column:canonical_path;type:text;not null"`
	ExactHash      string    `gorm:"column:exact_hash;type:text;not null;uniqueIndex:idx_seo_fingerprints_type_hash,priority:2"`
	SimilarityHash int64     `gorm:"column:similarity_hash;type:bigint;not null"`
	Band1          int32     `gorm:"column:band1;type:integer;not null;index:idx_seo_fingerprints_band1,priority:2"`
	Band2          int32     `gorm:"column:band2;type:integer;not null;index:idx_seo_fingerprints_band2,priority:2"`
	Band3          int32     `gorm:"column:band3;type:integer;not null;index:idx_seo_fingerprints_band3,priority:2"`
	Band4          int32     `gorm:"column:band4;type:integer;not null;index:idx_seo_fingerprints_band4,priority:2"`
	WordCount      int       `gorm:"column:word_count;type:integer;not null;default:0"`
	CreatedAt      time.Time `gorm:"column:created_at;not null"`
	UpdatedAt      time.Time `gorm:"column:updated_at;not null"`
}

func (FingerprintRecord) TableName() string { return "seo_fingerprints" }

// NewFingerprintRecord builds a row for fp. Bands are always derived from the
// similarity hash here and nowhere else.
func NewFingerprintRecord(pageType, canonicalPath string, fp fingerprint.Fingerprint) FingerprintRecord {
	rec := FingerprintRecord{
		PageType:       pageType,
		CanonicalPath:  canonicalPath,
		ExactHash:      fp.ExactHash,
		SimilarityHash: int64(fp.SimilarityHash),
		WordCount:      fp.WordCount,
	}
	rec.setBands(fp.SimilarityHash)
	return rec
}

// Hash returns the similarity hash as the unsigned value it was computed as.
func (r FingerprintRecord) Hash() uint64 {
	return uint64(r.SimilarityHash)
}

func (r FingerprintRecord) Bands() fingerprint.Bands {
	return fingerprint.BandsOf(r.Hash())
}

func (r *FingerprintRecord) setBands(h uint64) {
	b := fingerprint.BandsOf(h)
	r.Band1 = int32(b[0])
	r.Band2 = int32(b[1])
	r.Band3 = int32(b[2])
	r.Band4 = int32(b[3])
}

func autoMigrateModels() []any {
	return []any{
		&FingerprintRecord{},
	}
}
