package types

type ImportSourceType string

const (
	SourceMarkdown  ImportSourceType = "markdown"
	SourcePlainText ImportSourceType = "plain_text"
	SourceQuickNote ImportSourceType = "quick_note"
)

func (t ImportSourceType) Valid() bool {
	switch t {
	case SourceMarkdown, SourcePlainText, SourceQuickNote:
		return true
	default:
		return false
	}
}

type ImportMode string

const (
	ModeHeuristic ImportMode = "heuristic"
	ModeStrict    ImportMode = "strict"
)

type DedupStatus string

const (
	DedupNew       DedupStatus = "new"
	DedupDuplicate DedupStatus = "duplicate"
)

type ConflictStatus string

const (
	ConflictNone     ConflictStatus = "none"
	ConflictDetected ConflictStatus = "conflict"
)

// LegacyImportRequest carries one pre-structured note to be previewed.
// CapturedAt, when present, is an ISO-8601 UTC timestamp.
type LegacyImportRequest struct {
	SourceType ImportSourceType `json:"source_type"`
	RawContent string           `json:"raw_content"`
	CapturedAt string           `json:"captured_at,omitempty"`
	Mode       ImportMode       `json:"mode,omitempty"`
}

// ImportSource describes where an imported note came from.
type ImportSource struct {
	Type        ImportSourceType `json:"type"`
	CapturedAt  string           `json:"captured_at,omitempty"`
	ContentHash string           `json:"content_hash"`
}

// DraftEntry is the not-yet-committed entry derived from legacy content.
type DraftEntry struct {
	QuickAdd       string           `json:"quick_add"`
	SharedSection  string           `json:"shared_section"`
	PrivateSection string           `json:"private_section"`
	RawMentions    []string         `json:"raw_mentions,omitempty"`
	Structured     StructuredFields `json:"structured"`
	Extraction     ExtractionResult `json:"extraction"`
}

// LegacyImportPreview is offered to the athlete before committing an
// import. Dedup and conflict status are computed, never caller-supplied.
type LegacyImportPreview struct {
	ImportID            string         `json:"import_id"`
	Mode                ImportMode     `json:"mode"`
	Draft               DraftEntry     `json:"draft"`
	DedupStatus         DedupStatus    `json:"dedup_status"`
	DuplicateEntryIDs   []string       `json:"duplicate_entry_ids"`
	ConflictStatus      ConflictStatus `json:"conflict_status"`
	CoachReviewRequired bool           `json:"coach_review_required"`
	Source              ImportSource   `json:"source"`
	Warnings            []string       `json:"warnings,omitempty"`
}

// EntryRecord is the storage-agnostic view of a persisted entry used for
// dedup and conflict comparison. SessionAt is ISO-8601 UTC when known.
type EntryRecord struct {
	ID          string `json:"id"`
	ContentHash string `json:"content_hash"`
	Position    string `json:"position,omitempty"`
	Technique   string `json:"technique,omitempty"`
	Outcome     string `json:"outcome,omitempty"`
	SessionAt   string `json:"session_at,omitempty"`
}
