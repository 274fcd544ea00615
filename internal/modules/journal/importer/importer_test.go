package importer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/openmat/rollbook-backend/internal/modules/journal"
	"github.com/openmat/rollbook-backend/internal/types"
	"github.com/openmat/rollbook-backend/internal/vocab"
)

const athleteID = "8f14e45f-ea8a-4f2a-b2d5-1c1e4f6f9a01"

type fakeEntryReader struct {
	byHash    []types.EntryRecord
	recent    []types.EntryRecord
	hashErr   error
	recentErr error
	calls     []string
}

func (f *fakeEntryReader) ByContentHash(_ context.Context, _, _ string) ([]types.EntryRecord, error) {
	f.calls = append(f.calls, "ByContentHash")
	return f.byHash, f.hashErr
}

func (f *fakeEntryReader) RecentByAthlete(_ context.Context, _ string, _ int) ([]types.EntryRecord, error) {
	f.calls = append(f.calls, "RecentByAthlete")
	return f.recent, f.recentErr
}

func testConfig() Config {
	return Config{
		ConflictWindowHours:   18,
		MinFieldDisagreements: 2,
		MaxContentBytes:       262144,
		RecentEntryLimit:      20,
	}
}

func newTestBuilder(t *testing.T, reader EntryReader) *Builder {
	t.Helper()
	tab, err := vocab.Load()
	if err != nil {
		t.Fatalf("load vocabulary: %v", err)
	}
	return NewBuilder(reader, tab, testConfig())
}

const markdownNote = `# Tuesday night gi

## Session notes
Started in half guard bottom. Got the tap late in the round.

## Private
Totally gassed by round three. My grips gave out.

## Techniques
- Armbar
`

func TestBuildPreview_MarkdownSplitAndExtraction(t *testing.T) {
	reader := &fakeEntryReader{}
	preview, err := newTestBuilder(t, reader).BuildPreview(context.Background(), athleteID, types.LegacyImportRequest{
		SourceType: types.SourceMarkdown,
		RawContent: markdownNote,
	})
	if err != nil {
		t.Fatalf("build preview: %v", err)
	}

	if preview.Draft.QuickAdd != "Tuesday night gi" {
		t.Fatalf("expected title as quick-add, got %q", preview.Draft.QuickAdd)
	}
	if len(preview.Draft.RawMentions) != 1 || preview.Draft.RawMentions[0] != "Armbar" {
		t.Fatalf("unexpected raw mentions: %v", preview.Draft.RawMentions)
	}
	if preview.Draft.Structured.Position != "half guard bottom" {
		t.Fatalf("expected half guard bottom, got %q", preview.Draft.Structured.Position)
	}
	if preview.Draft.Structured.Technique != "Armbar" {
		t.Fatalf("raw mention must win technique, got %q", preview.Draft.Structured.Technique)
	}
	if preview.Draft.Structured.Outcome != "success" {
		t.Fatalf("expected success outcome, got %q", preview.Draft.Structured.Outcome)
	}

	issues := preview.Draft.Extraction.ConditioningIssues
	if len(issues) != 2 || issues[0] != "cardio fatigue" || issues[1] != "grip fatigue" {
		t.Fatalf("unexpected conditioning issues: %v", issues)
	}

	if preview.DedupStatus != types.DedupNew {
		t.Fatalf("expected new, got %q", preview.DedupStatus)
	}
	if preview.DuplicateEntryIDs == nil || len(preview.DuplicateEntryIDs) != 0 {
		t.Fatalf("expected empty duplicate list, got %v", preview.DuplicateEntryIDs)
	}
	if preview.ImportID == "" || preview.Source.ContentHash == "" {
		t.Fatalf("expected import id and content hash, got %+v", preview)
	}
}

func TestBuildPreview_DuplicateByContentHash(t *testing.T) {
	reader := &fakeEntryReader{
		byHash: []types.EntryRecord{{ID: "entry-1", ContentHash: ContentHash(markdownNote)}},
	}
	preview, err := newTestBuilder(t, reader).BuildPreview(context.Background(), athleteID, types.LegacyImportRequest{
		SourceType: types.SourceMarkdown,
		RawContent: markdownNote,
	})
	if err != nil {
		t.Fatalf("build preview: %v", err)
	}
	if preview.DedupStatus != types.DedupDuplicate {
		t.Fatalf("expected duplicate, got %q", preview.DedupStatus)
	}
	if len(preview.DuplicateEntryIDs) != 1 || preview.DuplicateEntryIDs[0] != "entry-1" {
		t.Fatalf("unexpected duplicate ids: %v", preview.DuplicateEntryIDs)
	}
	// A confirmed duplicate is not checked for conflicts.
	for _, call := range reader.calls {
		if call == "RecentByAthlete" {
			t.Fatalf("duplicate import must not run the conflict lookup")
		}
	}
}

func TestBuildPreview_ConflictInsideSessionWindow(t *testing.T) {
	reader := &fakeEntryReader{
		recent: []types.EntryRecord{{
			ID:        "entry-2",
			Position:  "mount",
			Outcome:   "failure",
			SessionAt: "2026-08-30T10:00:00Z",
		}},
	}
	preview, err := newTestBuilder(t, reader).BuildPreview(context.Background(), athleteID, types.LegacyImportRequest{
		SourceType: types.SourceMarkdown,
		RawContent: markdownNote,
		CapturedAt: "2026-08-30T20:00:00Z",
	})
	if err != nil {
		t.Fatalf("build preview: %v", err)
	}
	if preview.ConflictStatus != types.ConflictDetected {
		t.Fatalf("expected conflict, got %q", preview.ConflictStatus)
	}
	if !preview.CoachReviewRequired {
		t.Fatalf("conflict must require coach review")
	}
}

func TestBuildPreview_OutsideWindowNoConflict(t *testing.T) {
	reader := &fakeEntryReader{
		recent: []types.EntryRecord{{
			ID:        "entry-2",
			Position:  "mount",
			Outcome:   "failure",
			SessionAt: "2026-08-27T10:00:00Z",
		}},
	}
	preview, err := newTestBuilder(t, reader).BuildPreview(context.Background(), athleteID, types.LegacyImportRequest{
		SourceType: types.SourceMarkdown,
		RawContent: markdownNote,
		CapturedAt: "2026-08-30T20:00:00Z",
	})
	if err != nil {
		t.Fatalf("build preview: %v", err)
	}
	if preview.ConflictStatus != types.ConflictNone || preview.CoachReviewRequired {
		t.Fatalf("expected no conflict outside the window, got %+v", preview)
	}
}

func TestBuildPreview_StorageFailurePropagates(t *testing.T) {
	reader := &fakeEntryReader{hashErr: fmt.Errorf("connection reset")}
	_, err := newTestBuilder(t, reader).BuildPreview(context.Background(), athleteID, types.LegacyImportRequest{
		SourceType: types.SourceMarkdown,
		RawContent: markdownNote,
	})
	if err == nil {
		t.Fatalf("a failed lookup must not silently report new")
	}

	reader = &fakeEntryReader{recentErr: fmt.Errorf("connection reset")}
	_, err = newTestBuilder(t, reader).BuildPreview(context.Background(), athleteID, types.LegacyImportRequest{
		SourceType: types.SourceMarkdown,
		RawContent: markdownNote,
	})
	if err == nil {
		t.Fatalf("a failed conflict lookup must not silently report none")
	}
}

func TestBuildPreview_InvalidInput(t *testing.T) {
	builder := newTestBuilder(t, &fakeEntryReader{})
	cases := []types.LegacyImportRequest{
		{SourceType: "pdf", RawContent: "hello"},
		{SourceType: types.SourceMarkdown, RawContent: "  "},
		{SourceType: types.SourceMarkdown, RawContent: "hello", Mode: "lenient"},
		{SourceType: types.SourceMarkdown, RawContent: "hello", CapturedAt: "yesterday"},
	}
	for _, req := range cases {
		if _, err := builder.BuildPreview(context.Background(), athleteID, req); !errors.Is(err, journal.ErrInvalidInput) {
			t.Fatalf("request %+v: expected ErrInvalidInput, got %v", req, err)
		}
	}
	if _, err := builder.BuildPreview(context.Background(), "", types.LegacyImportRequest{
		SourceType: types.SourceMarkdown, RawContent: "hello",
	}); !errors.Is(err, journal.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing athlete id, got %v", err)
	}
}

func TestBuildPreview_NeverWrites(t *testing.T) {
	reader := &fakeEntryReader{}
	_, err := newTestBuilder(t, reader).BuildPreview(context.Background(), athleteID, types.LegacyImportRequest{
		SourceType: types.SourceMarkdown,
		RawContent: markdownNote,
	})
	if err != nil {
		t.Fatalf("build preview: %v", err)
	}
	for _, call := range reader.calls {
		if call != "ByContentHash" && call != "RecentByAthlete" {
			t.Fatalf("unexpected storage call %q", call)
		}
	}
}

func TestBuildPreview_StrictModeDemotesMediumFields(t *testing.T) {
	content := "# Quick roll\n\n## Session notes\nWorked from bottom half most of the night.\n"
	builder := newTestBuilder(t, &fakeEntryReader{})

	heuristic, err := builder.BuildPreview(context.Background(), athleteID, types.LegacyImportRequest{
		SourceType: types.SourceMarkdown,
		RawContent: content,
	})
	if err != nil {
		t.Fatalf("build preview: %v", err)
	}
	if heuristic.Draft.Structured.Position != "half guard bottom" {
		t.Fatalf("heuristic mode should auto-fill, got %q", heuristic.Draft.Structured.Position)
	}

	strict, err := builder.BuildPreview(context.Background(), athleteID, types.LegacyImportRequest{
		SourceType: types.SourceMarkdown,
		RawContent: content,
		Mode:       types.ModeStrict,
	})
	if err != nil {
		t.Fatalf("build preview: %v", err)
	}
	if strict.Draft.Structured.Position != "" {
		t.Fatalf("strict mode must demote medium auto-fill, got %q", strict.Draft.Structured.Position)
	}
	var flagged bool
	for _, f := range strict.Draft.Extraction.Flags {
		if f.Field == types.FieldPosition && f.Reason == types.FlagStrictMode {
			flagged = true
		}
	}
	if !flagged {
		t.Fatalf("expected strict_review flag, got %+v", strict.Draft.Extraction.Flags)
	}
}

func TestContentHash_StableAcrossFormatting(t *testing.T) {
	a := ContentHash("Worked  Half guard!\n")
	b := ContentHash("worked half guard")
	if a != b {
		t.Fatalf("hash must be stable across formatting: %q vs %q", a, b)
	}
	if a == ContentHash("worked deep half guard") {
		t.Fatalf("different content must hash differently")
	}
}

func TestSplitContent_PlainTextAndQuickNote(t *testing.T) {
	secs, err := splitContent(types.SourcePlainText, "Friday no-gi\nLong rounds.\nFelt sharp.")
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if secs.quickAdd != "Friday no-gi" {
		t.Fatalf("expected first line as quick-add, got %q", secs.quickAdd)
	}
	if secs.shared != "Long rounds.\nFelt sharp." {
		t.Fatalf("unexpected shared text: %q", secs.shared)
	}

	secs, err = splitContent(types.SourceQuickNote, "  drilled arm drags  ")
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if secs.quickAdd != "drilled arm drags" || secs.shared != "" {
		t.Fatalf("unexpected quick-note split: %+v", secs)
	}
}

func TestSplitContent_UnrecognizedHeadingWarns(t *testing.T) {
	secs, err := splitContent(types.SourceMarkdown, "# Title\n\n## Grocery list\nmilk and eggs\n")
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(secs.warnings) == 0 {
		t.Fatalf("expected a warning for the unrecognized heading")
	}
	if secs.shared != "milk and eggs" {
		t.Fatalf("unrecognized section should fold into shared, got %q", secs.shared)
	}
}
