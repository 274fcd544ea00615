package reconcile

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openmat/rollbook-backend/internal/types"
)

// ErrInvariant marks reconciler misuse, e.g. an instruction for a field
// with no suggestion history and no fresh candidate. This fails loudly:
// guessing a safe default here is exactly the bug class the state machine
// exists to prevent.
var ErrInvariant = errors.New("suggestion state invariant violation")

// Apply merges fresh candidates into the prior suggestion state under the
// caller's instructions. Pure function: the caller persists the returned
// suggestions between runs.
//
// Precedence per field: explicit instruction, then a resolved prior
// status (carried over untouched), then the athlete's prior structured
// value, then a pending upgrade, then a fresh pending suggestion.
func Apply(
	prior []types.FieldSuggestion,
	priorStructured *types.StructuredFields,
	fresh map[types.Field]types.FieldCandidate,
	instructions []types.Instruction,
	now time.Time,
) ([]types.FieldSuggestion, error) {
	priorByField := map[types.Field]types.FieldSuggestion{}
	for _, s := range prior {
		priorByField[s.Field] = s
	}
	insByField := map[types.Field]types.Instruction{}
	for _, ins := range instructions {
		insByField[ins.Field] = ins
	}
	stamp := now.UTC().Format(time.RFC3339)

	var out []types.FieldSuggestion
	for _, field := range types.SingleValueFields {
		p, hasPrior := priorByField[field]
		c, hasCand := fresh[field]
		ins, hasIns := insByField[field]

		if hasIns {
			s, err := applyInstruction(field, ins, p, hasPrior, c, hasCand, stamp)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
			continue
		}

		// A resolved field is never silently overwritten by a new pass.
		if hasPrior && p.Status.Resolved() {
			out = append(out, p)
			continue
		}

		if sv := structuredValue(priorStructured, field); sv != "" && hasCand {
			s := types.FieldSuggestion{
				Field:      field,
				Confidence: c.Confidence,
				UpdatedAt:  stamp,
			}
			if strings.EqualFold(sv, c.Value) {
				// The extraction agrees with what the athlete already recorded.
				s.Status = types.StatusConfirmed
				s.Value = c.Value
			} else {
				// The athlete's stored value overrides the extracted guess;
				// the guess is retained as Value for audit.
				s.Status = types.StatusCorrected
				s.Value = c.Value
				s.CorrectionValue = sv
			}
			out = append(out, s)
			continue
		} else if sv != "" {
			out = append(out, types.FieldSuggestion{
				Field:     field,
				Value:     sv,
				Status:    types.StatusConfirmed,
				UpdatedAt: stamp,
			})
			continue
		}

		if hasPrior {
			// Pending prior: only a strictly higher-confidence candidate
			// replaces the held value.
			if hasCand && c.Confidence.Rank() > p.Confidence.Rank() {
				out = append(out, pendingSuggestion(field, c, stamp))
			} else {
				out = append(out, p)
			}
			continue
		}

		if hasCand {
			out = append(out, pendingSuggestion(field, c, stamp))
		}
	}
	return out, nil
}

func applyInstruction(
	field types.Field,
	ins types.Instruction,
	p types.FieldSuggestion, hasPrior bool,
	c types.FieldCandidate, hasCand bool,
	stamp string,
) (types.FieldSuggestion, error) {
	if !hasPrior && !hasCand && ins.Value == "" {
		return types.FieldSuggestion{}, fmt.Errorf("%w: %s instruction for field %q with no prior suggestion and no candidate", ErrInvariant, ins.Action, field)
	}

	base := types.FieldSuggestion{Field: field, UpdatedAt: stamp}
	if hasCand {
		base.Value = c.Value
		base.Confidence = c.Confidence
	} else if hasPrior {
		base.Value = p.Value
		base.Confidence = p.Confidence
	}

	switch ins.Action {
	case types.ActionConfirm:
		base.Status = types.StatusConfirmed
		if ins.Value != "" {
			base.Value = ins.Value
		}
	case types.ActionCorrect:
		base.Status = types.StatusCorrected
		base.CorrectionValue = ins.Value
	case types.ActionReject:
		base.Status = types.StatusRejected
	default:
		return types.FieldSuggestion{}, fmt.Errorf("%w: unknown instruction action %q", ErrInvariant, ins.Action)
	}
	return base, nil
}

func pendingSuggestion(field types.Field, c types.FieldCandidate, stamp string) types.FieldSuggestion {
	s := types.FieldSuggestion{
		Field:      field,
		Value:      c.Value,
		Status:     types.StatusPending,
		Confidence: c.Confidence,
		UpdatedAt:  stamp,
	}
	if c.Confidence != types.ConfidenceHigh {
		s.Prompt = fmt.Sprintf("Confirm %s %q?", field, c.Value)
	}
	return s
}

func structuredValue(f *types.StructuredFields, field types.Field) string {
	if f == nil {
		return ""
	}
	return f.Get(field)
}

