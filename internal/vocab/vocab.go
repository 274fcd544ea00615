package vocab

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var tablesYAML []byte

// Entry maps one canonical value to its surface matchers. Phrases are
// exact canonical forms, Synonyms are weaker forms; the distinction
// drives the extractor's confidence level.
type Entry struct {
	Canonical string   `yaml:"canonical"`
	Phrases   []string `yaml:"phrases"`
	Synonyms  []string `yaml:"synonyms"`
}

// Tables holds the process-wide read-only vocabulary. Never mutated after
// load; new vocabulary is added here without touching extraction logic.
type Tables struct {
	Positions          []Entry  `yaml:"positions"`
	Techniques         []Entry  `yaml:"techniques"`
	Concepts           []Entry  `yaml:"concepts"`
	Failures           []Entry  `yaml:"failures"`
	ConditioningIssues []Entry  `yaml:"conditioning_issues"`
	Outcomes           []Entry  `yaml:"outcomes"`
	CueMarkers         []string `yaml:"cue_markers"`
}

var (
	loadOnce sync.Once
	loaded   *Tables
	loadErr  error
)

// Load parses the embedded vocabulary once and returns the shared tables.
func Load() (*Tables, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Parse(tablesYAML)
	})
	return loaded, loadErr
}

// Parse decodes and lints a vocabulary document. All matcher text is
// folded to lowercase so matching against normalized spans is direct.
func Parse(raw []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("parse vocabulary tables: %w", err)
	}
	if err := t.lint(); err != nil {
		return nil, err
	}
	t.fold()
	return &t, nil
}

func (t *Tables) lint() error {
	sections := map[string][]Entry{
		"positions":           t.Positions,
		"techniques":          t.Techniques,
		"concepts":            t.Concepts,
		"failures":            t.Failures,
		"conditioning_issues": t.ConditioningIssues,
		"outcomes":            t.Outcomes,
	}
	for name, entries := range sections {
		if len(entries) == 0 {
			return fmt.Errorf("vocabulary section %q is empty", name)
		}
		seen := map[string]bool{}
		for _, e := range entries {
			canonical := strings.ToLower(strings.TrimSpace(e.Canonical))
			if canonical == "" {
				return fmt.Errorf("vocabulary section %q has an entry with no canonical value", name)
			}
			if seen[canonical] {
				return fmt.Errorf("vocabulary section %q repeats canonical value %q", name, canonical)
			}
			seen[canonical] = true
			if len(e.Phrases) == 0 {
				return fmt.Errorf("vocabulary entry %q in %q has no phrases", canonical, name)
			}
		}
	}
	if len(t.CueMarkers) == 0 {
		return fmt.Errorf("vocabulary has no cue markers")
	}
	return nil
}

func (t *Tables) fold() {
	foldEntries := func(entries []Entry) {
		for i := range entries {
			entries[i].Canonical = strings.ToLower(strings.TrimSpace(entries[i].Canonical))
			for j, p := range entries[i].Phrases {
				entries[i].Phrases[j] = strings.ToLower(strings.TrimSpace(p))
			}
			for j, s := range entries[i].Synonyms {
				entries[i].Synonyms[j] = strings.ToLower(strings.TrimSpace(s))
			}
		}
	}
	foldEntries(t.Positions)
	foldEntries(t.Techniques)
	foldEntries(t.Concepts)
	foldEntries(t.Failures)
	foldEntries(t.ConditioningIssues)
	foldEntries(t.Outcomes)
	for i, m := range t.CueMarkers {
		t.CueMarkers[i] = strings.ToLower(strings.TrimSpace(m))
	}
}

// CanonicalTechnique returns the canonical value matching a raw mention,
// or "" when the mention is unknown to the vocabulary.
func (t *Tables) CanonicalTechnique(mention string) string {
	m := strings.ToLower(strings.TrimSpace(mention))
	if m == "" {
		return ""
	}
	for _, e := range t.Techniques {
		if e.Canonical == m {
			return e.Canonical
		}
		for _, p := range e.Phrases {
			if p == m {
				return e.Canonical
			}
		}
		for _, s := range e.Synonyms {
			if s == m {
				return e.Canonical
			}
		}
	}
	return ""
}
