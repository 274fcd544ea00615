package repos

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/openmat/rollbook-backend/internal/platform/logger"
	"github.com/openmat/rollbook-backend/internal/types"
)

func newTestRepo(t *testing.T) TrainingEntryRepo {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&types.TrainingEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewTrainingEntryRepo(db, log)
}

func seedEntry(t *testing.T, repo TrainingEntryRepo, athleteID uuid.UUID, hash string, sessionAt *time.Time) *types.TrainingEntry {
	t.Helper()
	entry := &types.TrainingEntry{
		AthleteID:   athleteID,
		QuickAdd:    "test session",
		Position:    "half guard bottom",
		Technique:   "armbar",
		Outcome:     "success",
		ContentHash: hash,
		SessionAt:   sessionAt,
	}
	if err := repo.Create(context.Background(), nil, entry); err != nil {
		t.Fatalf("create: %v", err)
	}
	return entry
}

func TestTrainingEntryRepo_CreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	athlete := uuid.New()
	entry := seedEntry(t, repo, athlete, "hash-a", nil)

	got, err := repo.GetByID(context.Background(), nil, entry.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.ID != entry.ID || got.Position != "half guard bottom" {
		t.Fatalf("unexpected row: %+v", got)
	}

	missing, err := repo.GetByID(context.Background(), nil, uuid.New())
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing id, got %+v", missing)
	}
}

func TestTrainingEntryRepo_ByContentHashScopedToAthlete(t *testing.T) {
	repo := newTestRepo(t)
	athlete := uuid.New()
	other := uuid.New()
	entry := seedEntry(t, repo, athlete, "hash-b", nil)
	seedEntry(t, repo, other, "hash-b", nil)

	rows, err := repo.ByContentHash(context.Background(), nil, athlete, "hash-b")
	if err != nil {
		t.Fatalf("by hash: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != entry.ID {
		t.Fatalf("expected only the athlete's row, got %+v", rows)
	}

	rows, err = repo.ByContentHash(context.Background(), nil, athlete, "hash-missing")
	if err != nil {
		t.Fatalf("by hash: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %+v", rows)
	}
}

func TestTrainingEntryRepo_RecentByAthleteHonorsLimit(t *testing.T) {
	repo := newTestRepo(t)
	athlete := uuid.New()
	for i := 0; i < 5; i++ {
		seedEntry(t, repo, athlete, fmt.Sprintf("hash-%d", i), nil)
	}

	rows, err := repo.RecentByAthlete(context.Background(), nil, athlete, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
}

func TestEntryReaderAdapter_ConvertsRecords(t *testing.T) {
	repo := newTestRepo(t)
	athlete := uuid.New()
	sessionAt := time.Date(2026, 8, 30, 19, 30, 0, 0, time.UTC)
	entry := seedEntry(t, repo, athlete, "hash-c", &sessionAt)

	reader := NewEntryReader(repo)
	records, err := reader.ByContentHash(context.Background(), athlete.String(), "hash-c")
	if err != nil {
		t.Fatalf("adapter: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %+v", records)
	}
	rec := records[0]
	if rec.ID != entry.ID.String() || rec.Position != "half guard bottom" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.SessionAt != "2026-08-30T19:30:00Z" {
		t.Fatalf("expected ISO-8601 session time, got %q", rec.SessionAt)
	}

	if _, err := reader.ByContentHash(context.Background(), "not-a-uuid", "hash-c"); err == nil {
		t.Fatalf("expected error for malformed athlete id")
	}
}
