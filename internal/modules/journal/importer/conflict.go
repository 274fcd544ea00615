package importer

import (
	"strings"
	"time"

	"github.com/openmat/rollbook-backend/internal/types"
)

// detectConflict applies the configured policy: a non-duplicate import
// conflicts with an existing entry when both carry session timestamps
// inside the window and enough resolved fields disagree. Conflicts
// require coach review before commit.
func detectConflict(cfg Config, draft types.StructuredFields, capturedAt string, entries []types.EntryRecord) (types.ConflictStatus, bool) {
	captured, err := time.Parse(time.RFC3339, capturedAt)
	if err != nil {
		return types.ConflictNone, false
	}
	window := time.Duration(cfg.ConflictWindowHours) * time.Hour

	for _, entry := range entries {
		sessionAt, err := time.Parse(time.RFC3339, entry.SessionAt)
		if err != nil {
			continue
		}
		delta := captured.Sub(sessionAt)
		if delta < 0 {
			delta = -delta
		}
		if delta > window {
			continue
		}
		if fieldDisagreements(draft, entry) >= cfg.MinFieldDisagreements {
			return types.ConflictDetected, true
		}
	}
	return types.ConflictNone, false
}

// fieldDisagreements counts canonical fields that are non-empty on both
// sides and differ after case folding.
func fieldDisagreements(draft types.StructuredFields, entry types.EntryRecord) int {
	pairs := [][2]string{
		{draft.Position, entry.Position},
		{draft.Technique, entry.Technique},
		{draft.Outcome, entry.Outcome},
	}
	n := 0
	for _, p := range pairs {
		if p[0] != "" && p[1] != "" && !strings.EqualFold(p[0], p[1]) {
			n++
		}
	}
	return n
}
