package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"horse.fit/seoguard/internal/fingerprint"
)

// PageTypeCount is the number of stored fingerprints for one page type.
type PageTypeCount struct {
	PageType string `json:"page_type"`
	Records  int64  `json:"records"`
}

// UpsertFingerprint inserts rec or, when (page_type, exact_hash) already
// exists, refreshes its hash, bands and word count while keeping the stored
// canonical path. The returned row is read back after the write, so a loser of
// a concurrent first insert sees the winner's canonical path.
func (p *Pool) UpsertFingerprint(ctx context.Context, rec FingerprintRecord) (FingerprintRecord, error) {
	if p == nil || p.gdb == nil {
		return FingerprintRecord{}, fmt.Errorf("database pool is not initialized")
	}
	if strings.TrimSpace(rec.PageType) == "" || strings.TrimSpace(rec.ExactHash) == "" {
		return FingerprintRecord{}, fmt.Errorf("page_type and exact_hash are required")
	}
	rec.ID = 0
	rec.setBands(rec.Hash())

	err := p.gdb.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "page_type"}, {Name: "exact_hash"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"similarity_hash",
				"band1",
				"band2",
				"band3",
				"band4",
				"word_count",
				"updated_at",
			}),
		}).
		Create(&rec).Error
	if err != nil {
		return FingerprintRecord{}, fmt.Errorf("upsert fingerprint page_type=%s exact_hash=%s: %w", rec.PageType, rec.ExactHash, err)
	}

	stored, err := p.GetFingerprint(ctx, rec.PageType, rec.ExactHash)
	if err != nil {
		return FingerprintRecord{}, fmt.Errorf("read back fingerprint page_type=%s exact_hash=%s: %w", rec.PageType, rec.ExactHash, err)
	}
	return stored, nil
}

// FindBandCandidates returns up to limit records of pageType with a different
// exact hash that share at least one positional band. Rows come back oldest first.
func (p *Pool) FindBandCandidates(
	ctx context.Context,
	pageType string,
	excludeExactHash string,
	bands fingerprint.Bands,
	limit int,
) ([]FingerprintRecord, error) {
	if p == nil || p.gdb == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}
	if limit <= 0 {
		return nil, nil
	}

	var rows []FingerprintRecord
	err := p.gdb.WithContext(ctx).
		Where("page_type = ? AND exact_hash <> ?", pageType, excludeExactHash).
		Where(
			"(band1 = ? OR band2 = ? OR band3 = ? OR band4 = ?)",
			int32(bands[0]), int32(bands[1]), int32(bands[2]), int32(bands[3]),
		).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query band candidates page_type=%s: %w", pageType, err)
	}
	return rows, nil
}

func (p *Pool) GetFingerprint(ctx context.Context, pageType, exactHash string) (FingerprintRecord, error) {
	if p == nil || p.gdb == nil {
		return FingerprintRecord{}, fmt.Errorf("database pool is not initialized")
	}

	var rec FingerprintRecord
	err := p.gdb.WithContext(ctx).
		Where("page_type = ? AND exact_hash = ?", pageType, exactHash).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return FingerprintRecord{}, ErrNotFound
	}
	if err != nil {
		return FingerprintRecord{}, err
	}
	return rec, nil
}

func (p *Pool) CountFingerprintsByPageType(ctx context.Context) ([]PageTypeCount, error) {
	if p == nil || p.gdb == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}

	var counts []PageTypeCount
	err := p.gdb.WithContext(ctx).
		Model(&FingerprintRecord{}).
		Select("page_type, COUNT(*) AS records").
		Group("page_type").
		Order("page_type ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("count fingerprints by page type: %w", err)
	}
	return counts, nil
}
