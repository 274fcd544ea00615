package journal

import (
	"errors"
	"fmt"
	"time"

	"github.com/openmat/rollbook-backend/internal/modules/journal/extract"
	"github.com/openmat/rollbook-backend/internal/modules/journal/reconcile"
	"github.com/openmat/rollbook-backend/internal/types"
	"github.com/openmat/rollbook-backend/internal/vocab"
)

// ErrInvalidInput marks malformed caller input: unsupported source types,
// missing raw content, structurally invalid instructions. No partial
// extraction happens on invalid input.
var ErrInvalidInput = errors.New("invalid journal input")

// Run executes one full extraction pass: normalize, scan, flag,
// reconcile. Pure function of its input; resolution order is fixed so
// identical input always yields identical output.
func Run(in types.JournalInput, tab *vocab.Tables, now time.Time) (*types.ExtractionResult, error) {
	if err := validateInstructions(in.Instructions); err != nil {
		return nil, err
	}

	spans := extract.Normalize(in)
	scan := extract.Scan(spans, tab)
	flags := extract.Flags(scan, in.PriorSuggestions, in.Reevaluate)

	suggestions, err := reconcile.Apply(in.PriorSuggestions, in.PriorStructured, scan.Candidates, in.Instructions, now)
	if err != nil {
		return nil, err
	}

	return &types.ExtractionResult{
		Structured:         resolveStructured(suggestions),
		Suggestions:        suggestions,
		Concepts:           scan.Concepts,
		Failures:           scan.Failures,
		ConditioningIssues: scan.ConditioningIssues,
		Flags:              flags,
		GeneratedAt:        now.UTC().Format(time.RFC3339),
	}, nil
}

// validateInstructions enforces the closed {confirm, correct, reject}
// variant before anything runs.
func validateInstructions(instructions []types.Instruction) error {
	seen := map[types.Field]bool{}
	for _, ins := range instructions {
		if !knownField(ins.Field) {
			return fmt.Errorf("%w: instruction for unknown field %q", ErrInvalidInput, ins.Field)
		}
		if seen[ins.Field] {
			return fmt.Errorf("%w: multiple instructions for field %q", ErrInvalidInput, ins.Field)
		}
		seen[ins.Field] = true
		switch ins.Action {
		case types.ActionConfirm, types.ActionReject:
		case types.ActionCorrect:
			if ins.Value == "" {
				return fmt.Errorf("%w: correction for field %q has no value", ErrInvalidInput, ins.Field)
			}
		default:
			return fmt.Errorf("%w: unknown instruction action %q", ErrInvalidInput, ins.Action)
		}
	}
	return nil
}

func knownField(f types.Field) bool {
	for _, known := range types.SingleValueFields {
		if f == known {
			return true
		}
	}
	return false
}

// resolveStructured projects the suggestion list onto the canonical
// single-value object: corrections stand for their correction value,
// rejections leave the field unset.
func resolveStructured(suggestions []types.FieldSuggestion) types.StructuredFields {
	var out types.StructuredFields
	for _, s := range suggestions {
		if v := s.EffectiveValue(); v != "" {
			out.Set(s.Field, v)
		}
	}
	return out
}
