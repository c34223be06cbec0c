// Package suggest turns detected bias signals into rule-based wording
// recommendations and neutral rewrites.
package suggest

import (
	"fmt"
	"strings"

	"github.com/adlens-ai/adlens/internal/contextual"
	"github.com/adlens-ai/adlens/internal/lexicon"
)

// Generate maps flagged terms and matched patterns to an ordered,
// deduplicated list of recommendations, at most max entries. One
// recommendation is produced per flagged term category, then one per
// direction of matched phrase pattern.
func Generate(terms []lexicon.FlaggedTerm, patterns []contextual.Pattern, max int) []string {
	if max <= 0 {
		return nil
	}

	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		if s != "" && !seen[s] && len(out) < max {
			seen[s] = true
			out = append(out, s)
		}
	}

	add(categorySuggestion(terms, lexicon.CategoryMasculine))
	add(categorySuggestion(terms, lexicon.CategoryFeminine))
	add(patternSuggestion(patterns, true))
	add(patternSuggestion(patterns, false))

	if len(terms) > 0 || len(patterns) > 0 {
		add("Read the advert aloud and check that requirements describe the role, not a persona.")
	}
	return out
}

func categorySuggestion(terms []lexicon.FlaggedTerm, category lexicon.Category) string {
	examples := distinctTerms(terms, category, 3)
	if len(examples) == 0 {
		return ""
	}
	switch category {
	case lexicon.CategoryMasculine:
		s := fmt.Sprintf("Replace masculine-coded terms such as %s with neutral alternatives", quoteList(examples))
		if repl, ok := wordReplacements[examples[0]]; ok {
			s += fmt.Sprintf(" (for example %q instead of %q)", repl, examples[0])
		}
		return s + "."
	case lexicon.CategoryFeminine:
		return fmt.Sprintf("Pair feminine-coded terms such as %s with concrete responsibilities so the role reads capable as well as caring.", quoteList(examples))
	default:
		return ""
	}
}

func patternSuggestion(patterns []contextual.Pattern, masculine bool) string {
	for _, p := range patterns {
		if masculine && p.Weight > 0 {
			s := fmt.Sprintf("Reword competitive phrasing like %q", p.Phrase)
			if repl, ok := phraseReplacement(p.Phrase); ok {
				s += fmt.Sprintf(" (try %q)", repl)
			}
			return s + "."
		}
		if !masculine && p.Weight < 0 {
			return fmt.Sprintf("Collaborative phrasing like %q reads well; keep it alongside clear performance expectations.", p.Phrase)
		}
	}
	return ""
}

func phraseReplacement(phrase string) (string, bool) {
	for _, r := range phraseReplacements {
		if r.From == phrase {
			return r.To, true
		}
	}
	// Fall back to a word-level replacement for the phrase head.
	if fields := strings.Fields(phrase); len(fields) > 0 {
		if repl, ok := wordReplacements[fields[0]]; ok {
			return repl + " " + strings.Join(fields[1:], " "), true
		}
	}
	return "", false
}

func distinctTerms(terms []lexicon.FlaggedTerm, category lexicon.Category, max int) []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range terms {
		if t.Category != category || seen[t.Term] {
			continue
		}
		seen[t.Term] = true
		out = append(out, t.Term)
		if len(out) == max {
			break
		}
	}
	return out
}

func quoteList(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = fmt.Sprintf("%q", t)
	}
	return strings.Join(quoted, ", ")
}
