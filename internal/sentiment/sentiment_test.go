package sentiment

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

type stubToneModel struct {
	polarity     float64
	subjectivity float64
	delay        time.Duration
	err          error
}

func (m *stubToneModel) Infer(string) (float64, float64, error) {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	return m.polarity, m.subjectivity, m.err
}

func TestMarkerDetection(t *testing.T) {
	s := NewScorer(nil)
	res := s.Score("We need an aggressive and driven candidate.")
	if len(res.Markers) != 2 {
		t.Fatalf("markers = %v, want 2", res.Markers)
	}
	if res.Markers[0].Word != "aggressive" || res.Markers[1].Word != "driven" {
		t.Fatalf("unexpected marker order: %v", res.Markers)
	}
	if res.Score != 40 {
		t.Fatalf("score = %v, want 40", res.Score)
	}
	if res.ModelUsed {
		t.Fatal("no model attached, ModelUsed should be false")
	}
}

func TestFeminineMarkers(t *testing.T) {
	s := NewScorer(nil)
	res := s.Score("A caring and supportive team.")
	if res.Score != -27 {
		t.Fatalf("score = %v, want -27", res.Score)
	}
}

func TestToneAdjustment(t *testing.T) {
	cases := []struct {
		polarity, subjectivity, want float64
	}{
		{0.5, 0.7, 15},
		{-0.5, 0.7, 10},
		{0.1, 0.7, -10},
		{0.9, 0.5, 0},
		{0, 0, 0},
	}
	for _, c := range cases {
		if got := toneAdjustment(c.polarity, c.subjectivity); got != c.want {
			t.Errorf("toneAdjustment(%v, %v) = %v, want %v", c.polarity, c.subjectivity, got, c.want)
		}
	}
}

func TestHeuristicToneShiftsScore(t *testing.T) {
	s := NewScorer(nil)
	res := s.Score("An amazing, exciting, fantastic opportunity")
	if res.Polarity != 1 {
		t.Fatalf("polarity = %v, want 1", res.Polarity)
	}
	if res.Subjectivity != 1 {
		t.Fatalf("subjectivity = %v, want 1", res.Subjectivity)
	}
	if res.Score != 15 {
		t.Fatalf("score = %v, want 15 from tone adjustment alone", res.Score)
	}
}

func TestToneUnaffectedByNeutralPadding(t *testing.T) {
	s := NewScorer(nil)
	short := s.Score("An amazing and exciting role")
	padded := s.Score("An amazing and exciting role with several additional routine responsibilities listed below")
	if padded.Polarity != short.Polarity || padded.Subjectivity != short.Subjectivity {
		t.Fatalf("tone changed under padding: (%v, %v) -> (%v, %v)",
			short.Polarity, short.Subjectivity, padded.Polarity, padded.Subjectivity)
	}
	if padded.Score != short.Score {
		t.Fatalf("score changed under padding: %v -> %v", short.Score, padded.Score)
	}
}

func TestModelInferenceTimed(t *testing.T) {
	s := NewScorer(&stubToneModel{polarity: 0.8, subjectivity: 0.9, delay: time.Millisecond})
	res := s.Score("A role.")
	if !res.ModelUsed {
		t.Fatal("model tone should have been used")
	}
	if res.Score != 15 {
		t.Fatalf("score = %v, want 15 from the model tone adjustment", res.Score)
	}
	if res.InferenceMS <= 0 {
		t.Fatalf("inference duration not measured: %v", res.InferenceMS)
	}
}

func TestModelErrorFallsBackToHeuristic(t *testing.T) {
	s := NewScorer(&stubToneModel{err: errors.New("session run failed")})
	res := s.Score("An amazing and exciting role")
	if res.ModelUsed {
		t.Fatal("failed inference must not be reported as model tone")
	}
	if res.Polarity != 1 {
		t.Fatalf("polarity = %v, want heuristic fallback of 1", res.Polarity)
	}
}

func TestEmptyText(t *testing.T) {
	s := NewScorer(nil)
	res := s.Score("  \n\t")
	if !reflect.DeepEqual(res, Result{}) {
		t.Fatalf("empty text should produce a zero result, got %+v", res)
	}
}

func TestScoreClamped(t *testing.T) {
	s := NewScorer(nil)
	res := s.Score("aggressive exceptional hardcore superior competitive demanding outstanding tough powerful intense driven ambitious excellent strong rigorous challenging")
	if res.Score != 100 {
		t.Fatalf("score = %v, want clamped to 100", res.Score)
	}
}

func writeVocab(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vocab.txt")
	body := "[PAD]\n[UNK]\n[CLS]\n[SEP]\nhello\nworld\n##ing\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTokenizerEncode(t *testing.T) {
	tok, err := LoadWordPieceTokenizer(writeVocab(t))
	if err != nil {
		t.Fatalf("LoadWordPieceTokenizer: %v", err)
	}
	ids, attn := tok.Encode("Hello world", 8)
	wantIDs := []int64{2, 4, 5, 3, 0, 0, 0, 0}
	wantAttn := []int64{1, 1, 1, 1, 0, 0, 0, 0}
	if !reflect.DeepEqual(ids, wantIDs) {
		t.Fatalf("ids = %v, want %v", ids, wantIDs)
	}
	if !reflect.DeepEqual(attn, wantAttn) {
		t.Fatalf("attn = %v, want %v", attn, wantAttn)
	}
}

func TestTokenizerSubwordSplit(t *testing.T) {
	tok, err := LoadWordPieceTokenizer(writeVocab(t))
	if err != nil {
		t.Fatalf("LoadWordPieceTokenizer: %v", err)
	}
	ids, _ := tok.Encode("helloing", 8)
	wantIDs := []int64{2, 4, 6, 3, 0, 0, 0, 0}
	if !reflect.DeepEqual(ids, wantIDs) {
		t.Fatalf("ids = %v, want %v", ids, wantIDs)
	}
}

func TestTokenizerUnknownWord(t *testing.T) {
	tok, err := LoadWordPieceTokenizer(writeVocab(t))
	if err != nil {
		t.Fatalf("LoadWordPieceTokenizer: %v", err)
	}
	ids, _ := tok.Encode("zzz", 8)
	if ids[1] != 1 {
		t.Fatalf("unknown word should map to [UNK], got ids %v", ids)
	}
}
