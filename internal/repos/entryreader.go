package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openmat/rollbook-backend/internal/modules/journal/importer"
	"github.com/openmat/rollbook-backend/internal/types"
)

// entryReaderAdapter exposes the training entry repo through the import
// builder's read-only collaborator contract. The core stays on opaque
// string ids; the uuid parse happens here.
type entryReaderAdapter struct {
	repo TrainingEntryRepo
}

func NewEntryReader(repo TrainingEntryRepo) importer.EntryReader {
	return &entryReaderAdapter{repo: repo}
}

func (a *entryReaderAdapter) ByContentHash(ctx context.Context, athleteID, hash string) ([]types.EntryRecord, error) {
	id, err := uuid.Parse(athleteID)
	if err != nil {
		return nil, fmt.Errorf("invalid athlete id %q: %w", athleteID, err)
	}
	rows, err := a.repo.ByContentHash(ctx, nil, id, hash)
	if err != nil {
		return nil, err
	}
	return toRecords(rows), nil
}

func (a *entryReaderAdapter) RecentByAthlete(ctx context.Context, athleteID string, limit int) ([]types.EntryRecord, error) {
	id, err := uuid.Parse(athleteID)
	if err != nil {
		return nil, fmt.Errorf("invalid athlete id %q: %w", athleteID, err)
	}
	rows, err := a.repo.RecentByAthlete(ctx, nil, id, limit)
	if err != nil {
		return nil, err
	}
	return toRecords(rows), nil
}

func toRecords(rows []types.TrainingEntry) []types.EntryRecord {
	out := make([]types.EntryRecord, 0, len(rows))
	for _, row := range rows {
		rec := types.EntryRecord{
			ID:          row.ID.String(),
			ContentHash: row.ContentHash,
			Position:    row.Position,
			Technique:   row.Technique,
			Outcome:     row.Outcome,
		}
		if row.SessionAt != nil {
			rec.SessionAt = row.SessionAt.UTC().Format(time.RFC3339)
		}
		out = append(out, rec)
	}
	return out
}
