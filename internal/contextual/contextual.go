// Package contextual scores job advertisement text by weighted phrase
// patterns and sentence structure, and adjusts lexicon term weights for
// nearby negation.
package contextual

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/adlens-ai/adlens/internal/lexicon"
)

//go:embed data/patterns.yaml
var defaultPatternsYAML []byte

// Pattern is a phrase with a signed bias weight. Positive weights lean
// masculine, negative lean feminine.
type Pattern struct {
	Phrase string  `yaml:"phrase" json:"phrase"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// Policy controls negation handling around flagged lexicon terms.
type Policy struct {
	// NegationWindow is how many tokens before a flagged term to scan
	// for a negation word.
	NegationWindow int
	// NegationFactor multiplies the weight of a negated term.
	NegationFactor float64
}

// AdjustedTerm is a flagged lexicon term with its weight after negation
// adjustment. AdjustedWeight equals Weight when no negation applies.
type AdjustedTerm struct {
	lexicon.FlaggedTerm
	AdjustedWeight float64 `json:"adjusted_weight"`
	Negated        bool    `json:"negated,omitempty"`
}

// Result is the contextual analysis of one document.
type Result struct {
	// Score is the raw contextual bias in [-100, 100].
	Score float64 `json:"score"`
	// Patterns are the matched phrase patterns in table order.
	Patterns []Pattern `json:"patterns,omitempty"`
	// StructuralScore is the sentence-structure contribution to Score.
	StructuralScore float64 `json:"structural_score"`
	// Terms carries negation-adjusted weights for the caller's flagged
	// lexicon terms, in the caller's order.
	Terms []AdjustedTerm `json:"terms,omitempty"`
}

// Analyzer detects weighted phrase patterns and structural cues.
type Analyzer struct {
	patterns []Pattern
	policy   Policy
}

type patternsFile struct {
	Version  int       `yaml:"version"`
	Patterns []Pattern `yaml:"patterns"`
}

// Default returns an analyzer backed by the built-in pattern table.
func Default(policy Policy) (*Analyzer, error) {
	return parse(defaultPatternsYAML, policy)
}

// LoadFile returns an analyzer backed by a pattern table read from path.
func LoadFile(path string, policy Policy) (*Analyzer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patterns: %w", err)
	}
	a, err := parse(raw, policy)
	if err != nil {
		return nil, fmt.Errorf("patterns %s: %w", path, err)
	}
	return a, nil
}

func parse(raw []byte, policy Policy) (*Analyzer, error) {
	var f patternsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse patterns: %w", err)
	}
	if len(f.Patterns) == 0 {
		return nil, fmt.Errorf("pattern table is empty")
	}
	seen := make(map[string]bool, len(f.Patterns))
	for _, p := range f.Patterns {
		phrase := strings.ToLower(strings.TrimSpace(p.Phrase))
		if phrase == "" {
			return nil, fmt.Errorf("pattern with empty phrase")
		}
		if seen[phrase] {
			return nil, fmt.Errorf("duplicate pattern %q", phrase)
		}
		seen[phrase] = true
	}
	patterns := make([]Pattern, len(f.Patterns))
	for i, p := range f.Patterns {
		patterns[i] = Pattern{Phrase: strings.ToLower(strings.TrimSpace(p.Phrase)), Weight: p.Weight}
	}
	if policy.NegationWindow <= 0 {
		policy.NegationWindow = 3
	}
	if policy.NegationFactor <= 0 {
		policy.NegationFactor = 0.5
	}
	return &Analyzer{patterns: patterns, policy: policy}, nil
}

// PatternCount reports the size of the loaded pattern table.
func (a *Analyzer) PatternCount() int { return len(a.patterns) }

// Structural modifier weights. Obligation and superlative language lean
// masculine, collective framing leans feminine.
const (
	obligationWeight  = 5
	superlativeWeight = 4
	individualWeight  = 3
	collectiveWeight  = -3
)

var obligationPhrases = []string{"must be", "must have", "should be", "required to", "expected to"}

var superlativeWords = map[string]bool{
	"best": true, "top": true, "leading": true, "premier": true,
	"superior": true, "excellent": true, "outstanding": true,
}

var individualPhrases = []string{"you will", "on your own", "by yourself", "independently", "individual"}

var collectivePhrases = []string{"our team", "together", "collaborate", "partnership"}

var negationWords = map[string]bool{
	"not": true, "no": true, "never": true, "without": true,
	"don't": true, "doesn't": true, "isn't": true, "aren't": true,
	"won't": true, "neither": true, "nor": true,
}

// Analyze scores text and applies negation adjustment to flagged, which
// must have been produced by the lexicon matcher over the same text.
func (a *Analyzer) Analyze(text string, flagged []lexicon.FlaggedTerm) Result {
	var res Result
	if strings.TrimSpace(text) == "" {
		return res
	}
	lower := strings.ToLower(text)

	var patternScore float64
	for _, p := range a.patterns {
		if strings.Contains(lower, p.Phrase) {
			res.Patterns = append(res.Patterns, p)
			patternScore += p.Weight
		}
	}

	res.StructuralScore = a.structuralScore(lower)
	res.Terms = a.adjustTerms(text, flagged)

	score := patternScore + res.StructuralScore
	res.Score = clamp(score, -100, 100)
	return res
}

// structuralScore applies sentence-level modifiers: obligation language,
// superlatives, and individual versus collective framing. Individual
// framing takes precedence over collective within a sentence.
func (a *Analyzer) structuralScore(lower string) float64 {
	var score float64
	for _, sentence := range splitSentences(lower) {
		if containsAny(sentence, obligationPhrases) {
			score += obligationWeight
		}
		if containsWord(sentence, superlativeWords) {
			score += superlativeWeight
		}
		switch {
		case containsAny(sentence, individualPhrases):
			score += individualWeight
		case containsAny(sentence, collectivePhrases) || containsWord(sentence, map[string]bool{"we": true}):
			score += collectiveWeight
		}
	}
	return score
}

// adjustTerms halves (by the configured factor) the weight of any token
// term preceded by a negation word within the policy window. Phrase
// terms carry no token index and are never adjusted.
func (a *Analyzer) adjustTerms(text string, flagged []lexicon.FlaggedTerm) []AdjustedTerm {
	if len(flagged) == 0 {
		return nil
	}
	tokens := lexicon.Tokenize(text)
	out := make([]AdjustedTerm, len(flagged))
	for i, ft := range flagged {
		adj := AdjustedTerm{FlaggedTerm: ft, AdjustedWeight: ft.Weight}
		if ft.TokenIndex >= 0 {
			lo := ft.TokenIndex - a.policy.NegationWindow
			if lo < 0 {
				lo = 0
			}
			for j := lo; j < ft.TokenIndex && j < len(tokens); j++ {
				if negationWords[tokens[j].Text] {
					adj.AdjustedWeight = ft.Weight * a.policy.NegationFactor
					adj.Negated = true
					break
				}
			}
		}
		out[i] = adj
	}
	return out
}

func splitSentences(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})
}

func containsAny(sentence string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(sentence, p) {
			return true
		}
	}
	return false
}

func containsWord(sentence string, words map[string]bool) bool {
	for _, tok := range lexicon.Tokenize(sentence) {
		if words[tok.Text] {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
