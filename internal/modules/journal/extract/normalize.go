package extract

import (
	"strings"
	"unicode"

	"github.com/openmat/rollbook-backend/internal/types"
)

// Normalize segments the input's text sources into ordered, sentence-
// bounded spans. Source order is fixed (quick-add, shared, private, raw
// mentions) so downstream resolution is deterministic. An empty source
// contributes zero spans.
func Normalize(in types.JournalInput) []types.Span {
	spans := make([]types.Span, 0, 8)
	spans = append(spans, segmentSource(types.SourceQuickAdd, in.QuickAddNotes)...)
	spans = append(spans, segmentSource(types.SourceShared, in.SharedSection)...)
	spans = append(spans, segmentSource(types.SourcePrivate, in.PrivateSection)...)
	for i, m := range in.RawMentions {
		text := NormalizeText(m)
		if text == "" {
			continue
		}
		spans = append(spans, types.Span{
			Source: types.SourceRawMention,
			Text:   text,
			Raw:    strings.TrimSpace(m),
			Start:  i,
			End:    i + 1,
		})
	}
	return spans
}

// segmentSource splits one text source on sentence-ending punctuation so a
// phrase match never crosses two unrelated sentences.
func segmentSource(source types.SpanSource, raw string) []types.Span {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	spans := make([]types.Span, 0, 4)
	start := 0
	flush := func(end int) {
		seg := raw[start:end]
		text := NormalizeText(seg)
		if text != "" {
			spans = append(spans, types.Span{
				Source: source,
				Text:   text,
				Raw:    strings.TrimSpace(seg),
				Start:  start,
				End:    end,
			})
		}
		start = end + 1
	}
	for i, r := range raw {
		switch r {
		case '.', '!', '?', '\n':
			if i >= start {
				flush(i)
			}
		}
	}
	if start < len(raw) {
		seg := raw[start:]
		text := NormalizeText(seg)
		if text != "" {
			spans = append(spans, types.Span{
				Source: source,
				Text:   text,
				Raw:    strings.TrimSpace(seg),
				Start:  start,
				End:    len(raw),
			})
		}
	}
	return spans
}

// NormalizeText folds a slice of journal prose for matching: lowercase,
// apostrophes removed, remaining punctuation treated as whitespace, runs
// of whitespace collapsed.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r == '\'' || r == '’':
			// "couldn't" matches the vocabulary's "couldnt"
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// phraseIndex reports the word-boundary position of phrase inside
// normalized text, or -1. The phrase itself is folded with the same rules
// before matching.
func phraseIndex(text, phrase string) int {
	p := NormalizeText(phrase)
	if p == "" || text == "" {
		return -1
	}
	padded := " " + text + " "
	idx := strings.Index(padded, " "+p+" ")
	if idx < 0 {
		return -1
	}
	return idx
}
