package importer

import (
	"github.com/openmat/rollbook-backend/internal/platform/envutil"
)

// Config is the env-tunable import policy. The conflict threshold is
// policy, not extraction logic: two entries conflict when they sit inside
// the session window and at least MinFieldDisagreements resolved fields
// disagree.
type Config struct {
	ConflictWindowHours   int
	MinFieldDisagreements int
	MaxContentBytes       int
	RecentEntryLimit      int
}

func LoadConfigFromEnv() Config {
	return Config{
		ConflictWindowHours:   envutil.Int("IMPORT_CONFLICT_WINDOW_HOURS", 18),
		MinFieldDisagreements: envutil.Int("IMPORT_CONFLICT_MIN_FIELD_DISAGREEMENTS", 2),
		MaxContentBytes:       envutil.Int("IMPORT_MAX_CONTENT_BYTES", 262144),
		RecentEntryLimit:      envutil.Int("IMPORT_RECENT_ENTRY_LIMIT", 20),
	}
}
