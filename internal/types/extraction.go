package types

// Confidence is the qualitative strength of an extracted match, not a
// numeric probability.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Rank orders confidences for "strictly higher wins" comparisons.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

type SpanSource string

const (
	SourceQuickAdd   SpanSource = "quick_add"
	SourceShared     SpanSource = "shared"
	SourcePrivate    SpanSource = "private"
	SourceRawMention SpanSource = "raw_mention"
)

// Span is one normalized sentence-bounded slice of a text source. Text is
// lowercased with punctuation stripped; Raw keeps the original slice so
// marker-based lookups (cue:) can preserve the athlete's casing.
type Span struct {
	Source SpanSource `json:"source"`
	Text   string     `json:"text"`
	Raw    string     `json:"raw"`
	Start  int        `json:"start"`
	End    int        `json:"end"`
}

type Field string

const (
	FieldPosition  Field = "position"
	FieldTechnique Field = "technique"
	FieldCue       Field = "cue"
	FieldOutcome   Field = "outcome"
)

// SingleValueFields is the fixed resolution order for canonical fields.
var SingleValueFields = []Field{FieldPosition, FieldTechnique, FieldCue, FieldOutcome}

// FieldCandidate is one extraction pass's guess for one canonical field.
type FieldCandidate struct {
	Field      Field      `json:"field"`
	Value      string     `json:"value"`
	Confidence Confidence `json:"confidence"`
	Span       Span       `json:"span"`
}

type SuggestionStatus string

const (
	StatusPending   SuggestionStatus = "pending"
	StatusConfirmed SuggestionStatus = "confirmed"
	StatusCorrected SuggestionStatus = "corrected"
	StatusRejected  SuggestionStatus = "rejected"
)

// Resolved reports whether the athlete has already settled this status.
// Resolved suggestions are never overwritten without a new instruction.
func (s SuggestionStatus) Resolved() bool {
	return s == StatusConfirmed || s == StatusCorrected || s == StatusRejected
}

// FieldSuggestion is the durable, caller-facing record of the engine's
// belief about one field. When Status is corrected, Value keeps the
// original extracted guess for audit and CorrectionValue holds the
// athlete's value.
type FieldSuggestion struct {
	Field           Field            `json:"field"`
	Value           string           `json:"value"`
	Status          SuggestionStatus `json:"status"`
	Confidence      Confidence       `json:"confidence,omitempty"`
	CorrectionValue string           `json:"correction_value,omitempty"`
	Prompt          string           `json:"prompt,omitempty"`
	UpdatedAt       string           `json:"updated_at"`
}

// EffectiveValue is the value the suggestion currently stands for.
func (s FieldSuggestion) EffectiveValue() string {
	switch s.Status {
	case StatusCorrected:
		return s.CorrectionValue
	case StatusRejected:
		return ""
	default:
		return s.Value
	}
}

type InstructionAction string

const (
	ActionConfirm InstructionAction = "confirm"
	ActionCorrect InstructionAction = "correct"
	ActionReject  InstructionAction = "reject"
)

// Instruction is a caller-supplied confirmation/correction/rejection for
// one field in one run. Value carries the confirmed value (optional, the
// candidate value is used when empty) or the correction value (required).
type Instruction struct {
	Field  Field             `json:"field"`
	Action InstructionAction `json:"action"`
	Value  string            `json:"value,omitempty"`
}

// StructuredFields is the canonical single-value view of an entry.
type StructuredFields struct {
	Position  string `json:"position,omitempty"`
	Technique string `json:"technique,omitempty"`
	Cue       string `json:"cue,omitempty"`
	Outcome   string `json:"outcome,omitempty"`
}

func (f StructuredFields) Get(field Field) string {
	switch field {
	case FieldPosition:
		return f.Position
	case FieldTechnique:
		return f.Technique
	case FieldCue:
		return f.Cue
	case FieldOutcome:
		return f.Outcome
	default:
		return ""
	}
}

func (f *StructuredFields) Set(field Field, value string) {
	switch field {
	case FieldPosition:
		f.Position = value
	case FieldTechnique:
		f.Technique = value
	case FieldCue:
		f.Cue = value
	case FieldOutcome:
		f.Outcome = value
	}
}

// JournalInput is the raw material for one extraction run. Text fields may
// be empty; an absent PriorStructured means no canonical value exists yet.
type JournalInput struct {
	QuickAddNotes  string   `json:"quick_add_notes"`
	SharedSection  string   `json:"shared_section"`
	PrivateSection string   `json:"private_section"`
	RawMentions    []string `json:"raw_mentions,omitempty"`

	PriorSuggestions []FieldSuggestion `json:"prior_suggestions,omitempty"`
	PriorStructured  *StructuredFields `json:"prior_structured,omitempty"`
	Instructions     []Instruction     `json:"instructions,omitempty"`

	// Reevaluate re-opens resolved fields for flagging; resolved statuses
	// themselves still only change via an explicit instruction.
	Reevaluate bool `json:"reevaluate,omitempty"`
}

type FlagReason string

const (
	FlagNoMatch    FlagReason = "no_match"
	FlagLowMatch   FlagReason = "low_confidence"
	FlagConflict   FlagReason = "conflicting_sources"
	FlagStrictMode FlagReason = "strict_review"
)

// ConfidenceFlag signals that a field's extracted value is uncertain and
// should be surfaced for confirmation.
type ConfidenceFlag struct {
	Field  Field      `json:"field"`
	Reason FlagReason `json:"reason"`
	Detail string     `json:"detail,omitempty"`
}

// ExtractionResult is the full output of one engine run. Multi-value lists
// are deduplicated with first-occurrence order preserved.
type ExtractionResult struct {
	Structured         StructuredFields  `json:"structured"`
	Suggestions        []FieldSuggestion `json:"suggestions"`
	Concepts           []string          `json:"concepts"`
	Failures           []string          `json:"failures"`
	ConditioningIssues []string          `json:"conditioning_issues"`
	Flags              []ConfidenceFlag  `json:"flags"`
	GeneratedAt        string            `json:"generated_at"`
}
