// Package lexicon matches job advertisement text against curated
// gender-coded word lists. The lists are static reference data, loaded once
// at startup; matching is a pure function of the input text.
package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category is the gender coding of a lexicon term.
type Category string

const (
	CategoryMasculine Category = "masculine"
	CategoryFeminine  Category = "feminine"
	CategoryNeutral   Category = "neutral"
)

// Entry is one reference word-list entry.
type Entry struct {
	Term     string
	Category Category
	Weight   float64
}

// FlaggedTerm is one match in the analyzed text. Position is the byte offset
// of the match start; TokenIndex is the index into the token stream (-1 for
// phrase entries spanning multiple tokens).
type FlaggedTerm struct {
	Term       string   `json:"term"`
	Category   Category `json:"category"`
	Weight     float64  `json:"weight"`
	Position   int      `json:"position"`
	TokenIndex int      `json:"-"`
}

// Lexicon holds the immutable word lists.
type Lexicon struct {
	words   map[string]Entry // single-token terms, lowercase
	phrases []Entry          // multi-token terms, matched as substrings
	size    int
}

//go:embed data/wordlists.yaml
var defaultWordLists []byte

type wordListFile struct {
	Version   int                `yaml:"version"`
	Masculine map[string]float64 `yaml:"masculine"`
	Feminine  map[string]float64 `yaml:"feminine"`
	Neutral   map[string]float64 `yaml:"neutral"`
}

// Default builds the lexicon from the embedded reference lists.
func Default() (*Lexicon, error) {
	return parse(defaultWordLists)
}

// LoadFile builds the lexicon from an external YAML file, replacing the
// embedded defaults entirely.
func LoadFile(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read word lists: %w", err)
	}
	lex, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse word lists %s: %w", path, err)
	}
	return lex, nil
}

func parse(data []byte) (*Lexicon, error) {
	var file wordListFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	lex := &Lexicon{
		words: make(map[string]Entry),
	}
	for cat, terms := range map[Category]map[string]float64{
		CategoryMasculine: file.Masculine,
		CategoryFeminine:  file.Feminine,
		CategoryNeutral:   file.Neutral,
	} {
		for term, weight := range terms {
			if err := lex.add(term, cat, weight); err != nil {
				return nil, err
			}
		}
	}
	if lex.size == 0 {
		return nil, fmt.Errorf("word lists contain no terms")
	}

	// Phrase order affects output order; keep it fixed regardless of the
	// yaml map iteration order.
	sort.Slice(lex.phrases, func(i, j int) bool {
		return lex.phrases[i].Term < lex.phrases[j].Term
	})
	return lex, nil
}

func (l *Lexicon) add(term string, cat Category, weight float64) error {
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" {
		return fmt.Errorf("empty term in %s list", cat)
	}
	if weight <= 0 {
		return fmt.Errorf("term %q has non-positive weight %v", t, weight)
	}
	entry := Entry{Term: t, Category: cat, Weight: weight}
	if strings.ContainsRune(t, ' ') {
		l.phrases = append(l.phrases, entry)
		l.size++
		return nil
	}
	if prev, dup := l.words[t]; dup {
		return fmt.Errorf("term %q appears in both %s and %s lists", t, prev.Category, cat)
	}
	l.words[t] = entry
	l.size++
	return nil
}

// Size reports the number of reference terms loaded.
func (l *Lexicon) Size() int {
	return l.size
}

// Lookup returns the entry for a single-token term, folding simple variants.
func (l *Lexicon) Lookup(token string) (Entry, bool) {
	t := strings.ToLower(token)
	if e, ok := l.words[t]; ok {
		return e, true
	}
	for _, stem := range variantStems(t) {
		if e, ok := l.words[stem]; ok {
			return e, true
		}
	}
	return Entry{}, false
}

// Match scans the text and returns every lexicon hit ordered by position.
// Empty input yields an empty sequence.
func (l *Lexicon) Match(text string) []FlaggedTerm {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var flagged []FlaggedTerm

	tokens := Tokenize(text)
	for _, tok := range tokens {
		entry, ok := l.Lookup(tok.Text)
		if !ok {
			continue
		}
		flagged = append(flagged, FlaggedTerm{
			Term:       entry.Term,
			Category:   entry.Category,
			Weight:     entry.Weight,
			Position:   tok.Start,
			TokenIndex: tok.Index,
		})
	}

	lower := strings.ToLower(text)
	for _, phrase := range l.phrases {
		from := 0
		for {
			idx := strings.Index(lower[from:], phrase.Term)
			if idx < 0 {
				break
			}
			pos := from + idx
			if boundedAt(lower, pos, len(phrase.Term)) {
				flagged = append(flagged, FlaggedTerm{
					Term:       phrase.Term,
					Category:   phrase.Category,
					Weight:     phrase.Weight,
					Position:   pos,
					TokenIndex: -1,
				})
			}
			from = pos + len(phrase.Term)
		}
	}

	sort.SliceStable(flagged, func(i, j int) bool {
		return flagged[i].Position < flagged[j].Position
	})
	return flagged
}

// variantStems folds simple inflections back onto a listed stem: plural "s"
// and "es", "ed", "ing", with the trailing-e spelling restored.
func variantStems(token string) []string {
	var stems []string
	add := func(s string) {
		if len(s) >= 3 {
			stems = append(stems, s)
		}
	}
	if s, ok := strings.CutSuffix(token, "es"); ok {
		add(s)
	}
	if s, ok := strings.CutSuffix(token, "s"); ok {
		add(s)
	}
	if s, ok := strings.CutSuffix(token, "ed"); ok {
		add(s)
		add(s + "e")
	}
	if s, ok := strings.CutSuffix(token, "ing"); ok {
		add(s)
		add(s + "e")
	}
	return stems
}

func boundedAt(lower string, pos, length int) bool {
	if pos > 0 && isWordByte(lower[pos-1]) {
		return false
	}
	end := pos + length
	if end < len(lower) && isWordByte(lower[end]) {
		return false
	}
	return true
}
