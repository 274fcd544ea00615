package importer

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/openmat/rollbook-backend/internal/modules/journal/extract"
)

// ContentHash is the stable digest used for duplicate detection: sha256
// over content normalized the same way the extractor normalizes prose,
// so formatting-only edits do not defeat dedup.
func ContentHash(raw string) string {
	normalized := extract.NormalizeText(raw)
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
