package importer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/openmat/rollbook-backend/internal/modules/journal"
	"github.com/openmat/rollbook-backend/internal/types"
)

// sections is the lightweight split of legacy raw content into the
// shapes the extraction pipeline expects.
type sections struct {
	quickAdd    string
	shared      string
	private     string
	rawMentions []string
	warnings    []string
}

var (
	headingRE  = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*$`)
	listItemRE = regexp.MustCompile(`^\s*[-*+]\s+(.+?)\s*$`)
)

// splitContent derives quick-add, sections and raw mentions from legacy
// content. Markdown heading-based splitting is the reference behavior;
// plain text takes the first line as the quick-add, quick notes are all
// quick-add.
func splitContent(sourceType types.ImportSourceType, raw string) (sections, error) {
	switch sourceType {
	case types.SourceMarkdown:
		return splitMarkdown(raw), nil
	case types.SourcePlainText:
		return splitPlainText(raw), nil
	case types.SourceQuickNote:
		return sections{quickAdd: strings.TrimSpace(raw)}, nil
	default:
		return sections{}, fmt.Errorf("%w: unsupported source type %q", journal.ErrInvalidInput, sourceType)
	}
}

func splitMarkdown(raw string) sections {
	var out sections
	var sharedParts, privateParts []string

	// preamble | shared | private | mentions
	target := "preamble"
	var preamble []string

	for _, line := range strings.Split(raw, "\n") {
		if groups := headingRE.FindStringSubmatch(line); groups != nil {
			heading := strings.TrimSpace(groups[2])
			lower := strings.ToLower(heading)
			switch {
			case strings.Contains(lower, "private"):
				target = "private"
			case strings.Contains(lower, "technique"), strings.Contains(lower, "mention"), strings.Contains(lower, "drill"):
				target = "mentions"
			case strings.Contains(lower, "shared"), strings.Contains(lower, "note"), strings.Contains(lower, "session"), strings.Contains(lower, "summary"):
				target = "shared"
			case len(groups[1]) == 1 && out.quickAdd == "":
				// The document title doubles as the quick-add line.
				out.quickAdd = heading
				target = "shared"
			default:
				out.warnings = append(out.warnings, fmt.Sprintf("unrecognized heading %q folded into shared notes", heading))
				target = "shared"
			}
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		switch target {
		case "preamble":
			preamble = append(preamble, trimmed)
		case "shared":
			sharedParts = append(sharedParts, trimmed)
		case "private":
			privateParts = append(privateParts, trimmed)
		case "mentions":
			if groups := listItemRE.FindStringSubmatch(line); groups != nil {
				out.rawMentions = append(out.rawMentions, groups[1])
			} else {
				out.rawMentions = append(out.rawMentions, trimmed)
			}
		}
	}

	if len(preamble) > 0 {
		if out.quickAdd == "" {
			out.quickAdd = preamble[0]
			preamble = preamble[1:]
		}
		sharedParts = append(preamble, sharedParts...)
	}
	out.shared = strings.Join(sharedParts, "\n")
	out.private = strings.Join(privateParts, "\n")

	if out.shared == "" && out.private == "" && len(out.rawMentions) == 0 {
		out.warnings = append(out.warnings, "no section content found; only a quick-add line was derived")
	}
	return out
}

func splitPlainText(raw string) sections {
	var out sections
	lines := strings.Split(raw, "\n")
	var rest []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if out.quickAdd == "" {
			out.quickAdd = trimmed
			continue
		}
		rest = append(rest, trimmed)
	}
	out.shared = strings.Join(rest, "\n")
	return out
}
