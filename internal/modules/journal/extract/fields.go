package extract

import (
	"regexp"
	"strings"

	"github.com/openmat/rollbook-backend/internal/types"
	"github.com/openmat/rollbook-backend/internal/vocab"
)

// ScanResult is the raw extraction pass over normalized spans: at most
// one candidate per single-value field plus the deduplicated multi-value
// lists. Conflicts records fields where two equally strong matches from
// different sources disagreed.
type ScanResult struct {
	Candidates map[types.Field]types.FieldCandidate
	Conflicts  []types.ConfidenceFlag

	Concepts           []string
	Failures           []string
	ConditioningIssues []string
}

// Scan runs every field's matcher set over the spans in source order.
func Scan(spans []types.Span, tab *vocab.Tables) ScanResult {
	res := ScanResult{Candidates: map[types.Field]types.FieldCandidate{}}

	prose := make([]types.Span, 0, len(spans))
	mentions := make([]types.Span, 0, 2)
	for _, s := range spans {
		if s.Source == types.SourceRawMention {
			mentions = append(mentions, s)
		} else {
			prose = append(prose, s)
		}
	}

	if cand, conflict := scanSingle(types.FieldPosition, spans, tab.Positions, true); cand != nil {
		res.Candidates[types.FieldPosition] = *cand
		if conflict != nil {
			res.Conflicts = append(res.Conflicts, *conflict)
		}
	}

	if cand := techniqueFromMentions(mentions, tab); cand != nil {
		res.Candidates[types.FieldTechnique] = *cand
	} else if cand, conflict := scanSingle(types.FieldTechnique, prose, tab.Techniques, false); cand != nil {
		res.Candidates[types.FieldTechnique] = *cand
		if conflict != nil {
			res.Conflicts = append(res.Conflicts, *conflict)
		}
	}

	if cand := cueFromMarkers(spans, tab.CueMarkers); cand != nil {
		res.Candidates[types.FieldCue] = *cand
	}

	outcomeSpans := make([]types.Span, 0, len(prose))
	for _, s := range prose {
		if s.Source == types.SourceShared || s.Source == types.SourcePrivate {
			outcomeSpans = append(outcomeSpans, s)
		}
	}
	if cand, conflict := scanSingle(types.FieldOutcome, outcomeSpans, tab.Outcomes, false); cand != nil {
		res.Candidates[types.FieldOutcome] = *cand
		if conflict != nil {
			res.Conflicts = append(res.Conflicts, *conflict)
		}
	}

	res.Concepts = scanMulti(spans, tab.Concepts)
	res.Failures = scanMulti(spans, tab.Failures)
	res.ConditioningIssues = scanMulti(spans, tab.ConditioningIssues)
	return res
}

type match struct {
	canonical string
	conf      types.Confidence
	spanIdx   int
	offset    int
	phraseLen int
	source    types.SpanSource
}

// scanSingle picks the single best vocabulary match across spans.
// Selection: longest phrase first when longestWins is set (compound
// positions out-rank their prefixes), then confidence, then first-matched
// span order. When a different canonical value matched equally strongly
// from another source, the winner is demoted to low confidence and a
// conflict is reported.
func scanSingle(field types.Field, spans []types.Span, entries []vocab.Entry, longestWins bool) (*types.FieldCandidate, *types.ConfidenceFlag) {
	var all []match
	for i, span := range spans {
		for _, e := range entries {
			if m, ok := bestEntryMatch(span, e, i); ok {
				all = append(all, m)
			}
		}
	}
	if len(all) == 0 {
		return nil, nil
	}

	best := all[0]
	for _, m := range all[1:] {
		if better(m, best, longestWins) {
			best = m
		}
	}

	var conflict *types.ConfidenceFlag
	conf := best.conf
	for _, m := range all {
		if m.canonical == best.canonical {
			continue
		}
		if equallyStrong(m, best, longestWins) && m.source != best.source {
			conf = types.ConfidenceLow
			conflict = &types.ConfidenceFlag{
				Field:  field,
				Reason: types.FlagConflict,
				Detail: best.canonical + " vs " + m.canonical,
			}
			break
		}
	}

	span := spans[best.spanIdx]
	return &types.FieldCandidate{
		Field:      field,
		Value:      best.canonical,
		Confidence: conf,
		Span:       span,
	}, conflict
}

// bestEntryMatch finds the strongest matcher of one entry within one span.
func bestEntryMatch(span types.Span, e vocab.Entry, spanIdx int) (match, bool) {
	out := match{spanIdx: -1}
	consider := func(phrase string, conf types.Confidence) {
		idx := phraseIndex(span.Text, phrase)
		if idx < 0 {
			return
		}
		m := match{
			canonical: e.Canonical,
			conf:      conf,
			spanIdx:   spanIdx,
			offset:    idx,
			phraseLen: len(NormalizeText(phrase)),
			source:    span.Source,
		}
		if out.spanIdx < 0 || better(m, out, true) {
			out = m
		}
	}
	for _, p := range e.Phrases {
		consider(p, types.ConfidenceHigh)
	}
	for _, s := range e.Synonyms {
		consider(s, types.ConfidenceMedium)
	}
	return out, out.spanIdx >= 0
}

func better(a, b match, longestWins bool) bool {
	if longestWins && a.phraseLen != b.phraseLen {
		return a.phraseLen > b.phraseLen
	}
	if a.conf.Rank() != b.conf.Rank() {
		return a.conf.Rank() > b.conf.Rank()
	}
	if a.spanIdx != b.spanIdx {
		return a.spanIdx < b.spanIdx
	}
	return a.offset < b.offset
}

func equallyStrong(a, b match, longestWins bool) bool {
	if a.conf.Rank() != b.conf.Rank() {
		return false
	}
	if longestWins && a.phraseLen != b.phraseLen {
		return false
	}
	return true
}

// techniqueFromMentions treats raw technique mentions as authoritative:
// the first non-empty mention wins at high confidence and keeps the
// athlete's own wording.
func techniqueFromMentions(mentions []types.Span, tab *vocab.Tables) *types.FieldCandidate {
	for _, m := range mentions {
		value := strings.TrimSpace(m.Raw)
		if value == "" {
			continue
		}
		return &types.FieldCandidate{
			Field:      types.FieldTechnique,
			Value:      value,
			Confidence: types.ConfidenceHigh,
			Span:       m,
		}
	}
	return nil
}

// cueFromMarkers resolves the cue field only via an explicit marker
// ("cue: elbow stays tight"). No marker means no candidate; a cue is
// never fabricated from plain prose.
func cueFromMarkers(spans []types.Span, markers []string) *types.FieldCandidate {
	if len(markers) == 0 {
		return nil
	}
	quoted := make([]string, 0, len(markers))
	for _, m := range markers {
		if m != "" {
			quoted = append(quoted, regexp.QuoteMeta(m))
		}
	}
	re := regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\s*:\s*(.+)`)
	for _, span := range spans {
		if span.Source == types.SourceRawMention {
			continue
		}
		groups := re.FindStringSubmatch(span.Raw)
		if groups == nil {
			continue
		}
		value := strings.TrimSpace(groups[1])
		if value == "" {
			continue
		}
		return &types.FieldCandidate{
			Field:      types.FieldCue,
			Value:      value,
			Confidence: types.ConfidenceHigh,
			Span:       span,
		}
	}
	return nil
}

// scanMulti collects every distinct matching canonical value across all
// spans, first occurrence order, case-insensitively deduplicated.
func scanMulti(spans []types.Span, entries []vocab.Entry) []string {
	var out []string
	seen := map[string]bool{}
	for _, span := range spans {
		for _, e := range entries {
			if seen[e.Canonical] {
				continue
			}
			if _, ok := bestEntryMatch(span, e, 0); ok {
				seen[e.Canonical] = true
				out = append(out, e.Canonical)
			}
		}
	}
	return out
}
