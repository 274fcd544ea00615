package extract

import (
	"testing"

	"github.com/openmat/rollbook-backend/internal/types"
)

func TestNormalize_SegmentsSourcesInOrder(t *testing.T) {
	spans := Normalize(types.JournalInput{
		QuickAddNotes:  "Worked half guard. Felt good!",
		PrivateSection: "Tough rounds tonight",
		RawMentions:    []string{"Armbar"},
	})
	if len(spans) != 4 {
		t.Fatalf("expected 4 spans, got %d: %+v", len(spans), spans)
	}
	if spans[0].Source != types.SourceQuickAdd || spans[0].Text != "worked half guard" {
		t.Fatalf("unexpected first span: %+v", spans[0])
	}
	if spans[1].Text != "felt good" {
		t.Fatalf("expected second sentence span, got %+v", spans[1])
	}
	if spans[2].Source != types.SourcePrivate {
		t.Fatalf("expected private span third, got %+v", spans[2])
	}
	if spans[3].Source != types.SourceRawMention || spans[3].Raw != "Armbar" {
		t.Fatalf("expected raw mention span last, got %+v", spans[3])
	}
}

func TestNormalize_EmptyInputYieldsZeroSpans(t *testing.T) {
	spans := Normalize(types.JournalInput{})
	if len(spans) != 0 {
		t.Fatalf("expected no spans, got %d", len(spans))
	}
}

func TestNormalize_BlankMentionSkipped(t *testing.T) {
	spans := Normalize(types.JournalInput{RawMentions: []string{"  ", "kimura"}})
	if len(spans) != 1 || spans[0].Text != "kimura" {
		t.Fatalf("expected single kimura span, got %+v", spans)
	}
}

func TestNormalizeText_FoldsPunctuationAndApostrophes(t *testing.T) {
	if got := NormalizeText("  Couldn't finish -- my grips  were SHOT!  "); got != "couldnt finish my grips were shot" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}

func TestPhraseIndex_WordBoundaries(t *testing.T) {
	if phraseIndex("worked the half guard sweep", "half guard") < 0 {
		t.Fatalf("expected phrase to match")
	}
	if phraseIndex("behalf guardian duty", "half guard") >= 0 {
		t.Fatalf("expected no match inside larger words")
	}
}
