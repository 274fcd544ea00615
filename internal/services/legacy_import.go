package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/openmat/rollbook-backend/internal/modules/journal"
	"github.com/openmat/rollbook-backend/internal/modules/journal/importer"
	"github.com/openmat/rollbook-backend/internal/platform/apierr"
	"github.com/openmat/rollbook-backend/internal/platform/logger"
	"github.com/openmat/rollbook-backend/internal/repos"
	"github.com/openmat/rollbook-backend/internal/types"
)

type LegacyImportService interface {
	Preview(ctx context.Context, athleteID string, req types.LegacyImportRequest) (*types.LegacyImportPreview, error)
	Commit(ctx context.Context, athleteID string, preview *types.LegacyImportPreview) (string, error)
}

type legacyImportService struct {
	builder   *importer.Builder
	entryRepo repos.TrainingEntryRepo
	log       *logger.Logger
}

func NewLegacyImportService(builder *importer.Builder, entryRepo repos.TrainingEntryRepo, baseLog *logger.Logger) LegacyImportService {
	return &legacyImportService{
		builder:   builder,
		entryRepo: entryRepo,
		log:       baseLog.With("service", "LegacyImportService"),
	}
}

func (s *legacyImportService) Preview(ctx context.Context, athleteID string, req types.LegacyImportRequest) (*types.LegacyImportPreview, error) {
	preview, err := s.builder.BuildPreview(ctx, athleteID, req)
	if err != nil {
		if errors.Is(err, journal.ErrInvalidInput) {
			return nil, apierr.BadRequest("invalid_input", err)
		}
		s.log.Error("Import preview failed", "athlete_id", athleteID, "error", err)
		return nil, apierr.Internal(err)
	}
	s.log.Info("Import preview built",
		"athlete_id", athleteID,
		"import_id", preview.ImportID,
		"dedup_status", string(preview.DedupStatus),
		"conflict_status", string(preview.ConflictStatus),
	)
	return preview, nil
}

// Commit persists a previewed draft. Duplicates are never committed and a
// conflicting preview needs the coach-review step first; the preview
// itself remains read-only.
func (s *legacyImportService) Commit(ctx context.Context, athleteID string, preview *types.LegacyImportPreview) (string, error) {
	if preview == nil {
		return "", apierr.BadRequest("invalid_input", fmt.Errorf("%w: missing preview", journal.ErrInvalidInput))
	}
	if preview.DedupStatus == types.DedupDuplicate {
		return "", apierr.BadRequest("duplicate_entry", fmt.Errorf("import %s duplicates entries %v", preview.ImportID, preview.DuplicateEntryIDs))
	}
	if preview.CoachReviewRequired {
		return "", apierr.BadRequest("coach_review_required", fmt.Errorf("import %s conflicts with an existing entry", preview.ImportID))
	}
	id, err := uuid.Parse(athleteID)
	if err != nil {
		return "", apierr.BadRequest("invalid_input", fmt.Errorf("%w: athlete id: %v", journal.ErrInvalidInput, err))
	}

	entry, err := entryFromPreview(id, preview)
	if err != nil {
		return "", apierr.Internal(err)
	}
	if err := s.entryRepo.Create(ctx, nil, entry); err != nil {
		s.log.Error("Import commit failed", "athlete_id", athleteID, "import_id", preview.ImportID, "error", err)
		return "", apierr.Internal(err)
	}
	s.log.Info("Import committed", "athlete_id", athleteID, "import_id", preview.ImportID, "entry_id", entry.ID.String())
	return entry.ID.String(), nil
}

func entryFromPreview(athleteID uuid.UUID, preview *types.LegacyImportPreview) (*types.TrainingEntry, error) {
	draft := preview.Draft
	entry := &types.TrainingEntry{
		ID:             uuid.New(),
		AthleteID:      athleteID,
		QuickAdd:       draft.QuickAdd,
		SharedSection:  draft.SharedSection,
		PrivateSection: draft.PrivateSection,
		Position:       draft.Structured.Position,
		Technique:      draft.Structured.Technique,
		Cue:            draft.Structured.Cue,
		Outcome:        draft.Structured.Outcome,
		ContentHash:    preview.Source.ContentHash,
		ImportedVia:    string(preview.Source.Type),
	}
	if preview.Source.CapturedAt != "" {
		at, err := time.Parse(time.RFC3339, preview.Source.CapturedAt)
		if err != nil {
			return nil, fmt.Errorf("parse captured_at: %w", err)
		}
		utc := at.UTC()
		entry.SessionAt = &utc
	}

	var err error
	if entry.RawMentions, err = marshalJSON(draft.RawMentions); err != nil {
		return nil, err
	}
	if entry.Concepts, err = marshalJSON(draft.Extraction.Concepts); err != nil {
		return nil, err
	}
	if entry.Failures, err = marshalJSON(draft.Extraction.Failures); err != nil {
		return nil, err
	}
	if entry.ConditioningIssues, err = marshalJSON(draft.Extraction.ConditioningIssues); err != nil {
		return nil, err
	}
	if entry.Suggestions, err = marshalJSON(draft.Extraction.Suggestions); err != nil {
		return nil, err
	}
	return entry, nil
}

func marshalJSON(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal entry json: %w", err)
	}
	return datatypes.JSON(raw), nil
}
