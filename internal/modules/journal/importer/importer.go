package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openmat/rollbook-backend/internal/modules/journal"
	"github.com/openmat/rollbook-backend/internal/types"
	"github.com/openmat/rollbook-backend/internal/vocab"
)

// EntryReader is the storage collaborator contract. The builder only ever
// reads; committing an import is a separate, explicit action outside this
// package.
type EntryReader interface {
	ByContentHash(ctx context.Context, athleteID, hash string) ([]types.EntryRecord, error)
	RecentByAthlete(ctx context.Context, athleteID string, limit int) ([]types.EntryRecord, error)
}

// Builder turns raw legacy journal content into a LegacyImportPreview:
// split, extract, hash, classify against the athlete's existing entries.
type Builder struct {
	entries EntryReader
	tables  *vocab.Tables
	cfg     Config
	newID   func() string
	clock   func() time.Time
}

func NewBuilder(entries EntryReader, tables *vocab.Tables, cfg Config) *Builder {
	return &Builder{
		entries: entries,
		tables:  tables,
		cfg:     cfg,
		newID:   uuid.NewString,
		clock:   time.Now,
	}
}

// BuildPreview runs the full import pipeline. It performs no writes; the
// single suspend point is the entry lookup for dedup/conflict. A failed
// lookup propagates: the builder never fabricates a new/none verdict.
func (b *Builder) BuildPreview(ctx context.Context, athleteID string, req types.LegacyImportRequest) (*types.LegacyImportPreview, error) {
	if strings.TrimSpace(athleteID) == "" {
		return nil, fmt.Errorf("%w: missing athlete id", journal.ErrInvalidInput)
	}
	if !req.SourceType.Valid() {
		return nil, fmt.Errorf("%w: unsupported source type %q", journal.ErrInvalidInput, req.SourceType)
	}
	if strings.TrimSpace(req.RawContent) == "" {
		return nil, fmt.Errorf("%w: missing raw content", journal.ErrInvalidInput)
	}
	mode := req.Mode
	if mode == "" {
		mode = types.ModeHeuristic
	}
	if mode != types.ModeHeuristic && mode != types.ModeStrict {
		return nil, fmt.Errorf("%w: unsupported import mode %q", journal.ErrInvalidInput, mode)
	}
	if req.CapturedAt != "" {
		if _, err := time.Parse(time.RFC3339, req.CapturedAt); err != nil {
			return nil, fmt.Errorf("%w: captured_at is not ISO-8601: %v", journal.ErrInvalidInput, err)
		}
	}

	raw := req.RawContent
	var warnings []string
	if b.cfg.MaxContentBytes > 0 && len(raw) > b.cfg.MaxContentBytes {
		raw = raw[:b.cfg.MaxContentBytes]
		warnings = append(warnings, fmt.Sprintf("raw content truncated to %d bytes", b.cfg.MaxContentBytes))
	}

	secs, err := splitContent(req.SourceType, raw)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, secs.warnings...)

	// Fresh import: no prior structured state, no instructions.
	input := types.JournalInput{
		QuickAddNotes:  secs.quickAdd,
		SharedSection:  secs.shared,
		PrivateSection: secs.private,
		RawMentions:    secs.rawMentions,
	}
	result, err := journal.Run(input, b.tables, b.clock())
	if err != nil {
		return nil, err
	}
	if mode == types.ModeStrict {
		demoteForStrictReview(result)
	}

	hash := ContentHash(raw)
	dupes, err := b.entries.ByContentHash(ctx, athleteID, hash)
	if err != nil {
		return nil, fmt.Errorf("dedup lookup failed: %w", err)
	}

	preview := &types.LegacyImportPreview{
		ImportID:          b.newID(),
		Mode:              mode,
		DedupStatus:       types.DedupNew,
		DuplicateEntryIDs: []string{},
		ConflictStatus:    types.ConflictNone,
		Draft: types.DraftEntry{
			QuickAdd:       secs.quickAdd,
			SharedSection:  secs.shared,
			PrivateSection: secs.private,
			RawMentions:    secs.rawMentions,
			Structured:     result.Structured,
			Extraction:     *result,
		},
		Source: types.ImportSource{
			Type:        req.SourceType,
			CapturedAt:  req.CapturedAt,
			ContentHash: hash,
		},
		Warnings: warnings,
	}

	if len(dupes) > 0 {
		preview.DedupStatus = types.DedupDuplicate
		for _, d := range dupes {
			preview.DuplicateEntryIDs = append(preview.DuplicateEntryIDs, d.ID)
		}
		return preview, nil
	}

	recent, err := b.entries.RecentByAthlete(ctx, athleteID, b.cfg.RecentEntryLimit)
	if err != nil {
		return nil, fmt.Errorf("conflict lookup failed: %w", err)
	}
	status, review := detectConflict(b.cfg, result.Structured, req.CapturedAt, recent)
	preview.ConflictStatus = status
	preview.CoachReviewRequired = review
	return preview, nil
}

// demoteForStrictReview clears medium-confidence auto-fills from the
// structured draft so strict imports surface them for review instead.
func demoteForStrictReview(result *types.ExtractionResult) {
	for _, s := range result.Suggestions {
		if s.Status == types.StatusPending && s.Confidence == types.ConfidenceMedium {
			result.Structured.Set(s.Field, "")
			result.Flags = append(result.Flags, types.ConfidenceFlag{
				Field:  s.Field,
				Reason: types.FlagStrictMode,
			})
		}
	}
}
