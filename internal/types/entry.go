package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TrainingEntry is the persisted journal entry. Extraction output and the
// suggestion list are kept as JSON alongside the resolved canonical
// columns so the reconciler's prior state survives edits.
type TrainingEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AthleteID uuid.UUID `gorm:"type:uuid;column:athlete_id;not null;index" json:"athlete_id"`

	QuickAdd       string `gorm:"column:quick_add" json:"quick_add"`
	SharedSection  string `gorm:"column:shared_section" json:"shared_section"`
	PrivateSection string `gorm:"column:private_section" json:"private_section,omitempty"`

	Position  string `gorm:"column:position;index" json:"position,omitempty"`
	Technique string `gorm:"column:technique;index" json:"technique,omitempty"`
	Cue       string `gorm:"column:cue" json:"cue,omitempty"`
	Outcome   string `gorm:"column:outcome" json:"outcome,omitempty"`

	RawMentions        datatypes.JSON `gorm:"column:raw_mentions" json:"raw_mentions,omitempty"`
	Concepts           datatypes.JSON `gorm:"column:concepts" json:"concepts,omitempty"`
	Failures           datatypes.JSON `gorm:"column:failures" json:"failures,omitempty"`
	ConditioningIssues datatypes.JSON `gorm:"column:conditioning_issues" json:"conditioning_issues,omitempty"`
	Suggestions        datatypes.JSON `gorm:"column:suggestions" json:"suggestions,omitempty"`

	ContentHash string     `gorm:"column:content_hash;index:idx_entry_hash" json:"content_hash,omitempty"`
	ImportedVia string     `gorm:"column:imported_via" json:"imported_via,omitempty"`
	SessionAt   *time.Time `gorm:"column:session_at;index" json:"session_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (TrainingEntry) TableName() string { return "training_entry" }
