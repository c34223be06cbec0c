package lexicon

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func defaultLexicon(t *testing.T) *Lexicon {
	t.Helper()
	lex, err := Default()
	if err != nil {
		t.Fatalf("load default lexicon: %v", err)
	}
	return lex
}

func TestDefaultLexiconLoads(t *testing.T) {
	lex := defaultLexicon(t)
	if lex.Size() < 100 {
		t.Fatalf("expected a substantial lexicon, got %d terms", lex.Size())
	}
}

func TestMatchFlagsMasculineTerms(t *testing.T) {
	lex := defaultLexicon(t)

	flagged := lex.Match("We want a dominant, competitive and aggressive analyst.")
	want := []string{"dominant", "competitive", "aggressive"}
	if len(flagged) != len(want) {
		t.Fatalf("flagged %d terms, want %d: %+v", len(flagged), len(want), flagged)
	}
	for i, term := range want {
		if flagged[i].Term != term {
			t.Errorf("flagged[%d].Term = %q, want %q", i, flagged[i].Term, term)
		}
		if flagged[i].Category != CategoryMasculine {
			t.Errorf("flagged[%d].Category = %q, want masculine", i, flagged[i].Category)
		}
	}
}

func TestMatchOrderedByPosition(t *testing.T) {
	lex := defaultLexicon(t)

	flagged := lex.Match("A supportive team with a competitive edge and caring leadership.")
	for i := 1; i < len(flagged); i++ {
		if flagged[i].Position < flagged[i-1].Position {
			t.Fatalf("flagged terms out of order: %+v", flagged)
		}
	}
}

func TestMatchCaseInsensitive(t *testing.T) {
	lex := defaultLexicon(t)

	upper := lex.Match("COMPETITIVE environment")
	lower := lex.Match("competitive environment")
	if len(upper) != 1 || len(lower) != 1 {
		t.Fatalf("case sensitivity broke matching: upper=%d lower=%d", len(upper), len(lower))
	}
	if upper[0].Term != lower[0].Term {
		t.Fatalf("canonical terms differ: %q vs %q", upper[0].Term, lower[0].Term)
	}
}

func TestMatchFoldsSimpleVariants(t *testing.T) {
	lex := defaultLexicon(t)

	cases := map[string]string{
		"she leads the group":         "lead",
		"you will be managing a team": "manage",
		"hit all targets":             "targets",
		"many challenges ahead":       "challenge",
	}
	for text, wantTerm := range cases {
		flagged := lex.Match(text)
		found := false
		for _, f := range flagged {
			if f.Term == wantTerm {
				found = true
			}
		}
		if !found {
			t.Errorf("Match(%q) did not flag %q: %+v", text, wantTerm, flagged)
		}
	}
}

func TestMatchHyphenatedTerms(t *testing.T) {
	lex := defaultLexicon(t)

	flagged := lex.Match("A results-driven, self-motivated contributor.")
	terms := map[string]bool{}
	for _, f := range flagged {
		terms[f.Term] = true
	}
	if !terms["results-driven"] || !terms["self-motivated"] {
		t.Fatalf("hyphenated terms not flagged: %+v", flagged)
	}
}

func TestMatchPhraseEntries(t *testing.T) {
	lex := defaultLexicon(t)

	flagged := lex.Match("You will look after key accounts.")
	found := false
	for _, f := range flagged {
		if f.Term == "look after" && f.Category == CategoryFeminine {
			found = true
		}
	}
	if !found {
		t.Fatalf("phrase entry not flagged: %+v", flagged)
	}
}

func TestMatchEmptyInput(t *testing.T) {
	lex := defaultLexicon(t)
	if got := lex.Match(""); got != nil {
		t.Fatalf("expected nil for empty input, got %+v", got)
	}
	if got := lex.Match("   \n\t"); got != nil {
		t.Fatalf("expected nil for blank input, got %+v", got)
	}
}

func TestMatchDeterministic(t *testing.T) {
	lex := defaultLexicon(t)
	text := "A competitive, supportive, dominant team that will look after you."
	first := lex.Match(text)
	for i := 0; i < 10; i++ {
		if again := lex.Match(text); !reflect.DeepEqual(first, again) {
			t.Fatalf("match not deterministic:\n%+v\n%+v", first, again)
		}
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.yaml")
	doc := `
version: 1
masculine:
  rockstar: 1.5
feminine:
  friendly: 1.0
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	lex, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if lex.Size() != 2 {
		t.Fatalf("size = %d, want 2", lex.Size())
	}
	if flagged := lex.Match("a rockstar developer"); len(flagged) != 1 || flagged[0].Term != "rockstar" {
		t.Fatalf("override lexicon did not match: %+v", flagged)
	}
	if flagged := lex.Match("competitive"); len(flagged) != 0 {
		t.Fatalf("default terms should be replaced, got %+v", flagged)
	}
}

func TestLoadFileRejectsDuplicateAcrossCategories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.yaml")
	doc := `
masculine:
  driven: 1.0
feminine:
  driven: 1.0
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected duplicate-term error")
	}
}

func TestTokenizeOffsets(t *testing.T) {
	tokens := Tokenize("Not a dog-eat-dog culture.")
	want := []string{"not", "a", "dog-eat-dog", "culture"}
	if len(tokens) != len(want) {
		t.Fatalf("tokens = %+v", tokens)
	}
	for i, w := range want {
		if tokens[i].Text != w {
			t.Errorf("token[%d] = %q, want %q", i, tokens[i].Text, w)
		}
		if tokens[i].Index != i {
			t.Errorf("token[%d].Index = %d", i, tokens[i].Index)
		}
	}
	if tokens[2].Start != 6 {
		t.Errorf("hyphenated token start = %d, want 6", tokens[2].Start)
	}
}
