package extract

import (
	"github.com/openmat/rollbook-backend/internal/types"
)

// Flags derives the confidence flags for one run. A field whose prior
// suggestion is already resolved is not second-guessed unless the caller
// asked for re-evaluation.
func Flags(scan ScanResult, prior []types.FieldSuggestion, reevaluate bool) []types.ConfidenceFlag {
	resolved := map[types.Field]bool{}
	for _, s := range prior {
		if s.Status.Resolved() {
			resolved[s.Field] = true
		}
	}
	skip := func(f types.Field) bool { return resolved[f] && !reevaluate }

	var flags []types.ConfidenceFlag
	for _, field := range types.SingleValueFields {
		if skip(field) {
			continue
		}
		cand, ok := scan.Candidates[field]
		if !ok {
			flags = append(flags, types.ConfidenceFlag{Field: field, Reason: types.FlagNoMatch})
			continue
		}
		if cand.Confidence == types.ConfidenceLow {
			flags = append(flags, types.ConfidenceFlag{Field: field, Reason: types.FlagLowMatch})
		}
	}
	for _, c := range scan.Conflicts {
		if skip(c.Field) {
			continue
		}
		flags = append(flags, c)
	}
	return flags
}
