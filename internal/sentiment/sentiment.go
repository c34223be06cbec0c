// Package sentiment scores the emotional register of job advertisement
// text. Intensity markers carry fixed signed weights; an optional ONNX
// tone model contributes a polarity and subjectivity adjustment, with a
// word-count heuristic standing in when no model is loaded.
package sentiment

import (
	"strings"
	"time"

	"github.com/adlens-ai/adlens/internal/lexicon"
)

// Marker is an intensity word with its signed weight. Positive weights
// lean masculine, negative lean feminine.
type Marker struct {
	Word   string  `json:"word"`
	Weight float64 `json:"weight"`
}

// intensityMarkers is scanned in order so detections are deterministic.
var intensityMarkers = []Marker{
	{"excellent", 12},
	{"outstanding", 18},
	{"exceptional", 22},
	{"superior", 20},
	{"strong", 10},
	{"powerful", 16},
	{"competitive", 20},
	{"intense", 16},
	{"aggressive", 25},
	{"driven", 15},
	{"ambitious", 14},
	{"demanding", 18},
	{"challenging", 12},
	{"rigorous", 14},
	{"tough", 16},
	{"hardcore", 22},
	{"supportive", -12},
	{"caring", -15},
	{"collaborative", -10},
	{"cooperative", -12},
	{"inclusive", -12},
	{"nurturing", -18},
	{"empathetic", -20},
	{"understanding", -10},
	{"patient", -8},
	{"kind", -10},
	{"gentle", -12},
	{"warm", -10},
	{"welcoming", -14},
	{"considerate", -8},
	{"thoughtful", -6},
	{"helpful", -8},
}

// Result is the sentiment analysis of one document.
type Result struct {
	// Score is the raw sentiment bias in [-100, 100].
	Score float64 `json:"score"`
	// Markers are the detected intensity markers in table order.
	Markers []Marker `json:"markers,omitempty"`
	// Polarity is the document tone in [-1, 1].
	Polarity float64 `json:"polarity"`
	// Subjectivity is the document subjectivity in [0, 1].
	Subjectivity float64 `json:"subjectivity"`
	// ModelUsed reports whether the ONNX tone model produced the
	// polarity and subjectivity, as opposed to the heuristic.
	ModelUsed bool `json:"model_used"`
	// InferenceMS is the wall-clock time spent in model inference in
	// milliseconds. Zero when no model ran.
	InferenceMS float64 `json:"-"`
}

// ToneModel produces a polarity and subjectivity estimate for a
// document. *Model implements it over an ONNX session.
type ToneModel interface {
	Infer(text string) (polarity, subjectivity float64, err error)
}

// Scorer computes sentiment scores. A nil model is valid and selects
// the heuristic tone estimate.
type Scorer struct {
	model ToneModel
}

// NewScorer returns a scorer backed by model, which may be nil.
func NewScorer(model ToneModel) *Scorer {
	return &Scorer{model: model}
}

// ModelLoaded reports whether an ONNX tone model is attached.
func (s *Scorer) ModelLoaded() bool { return s.model != nil }

// Score analyzes text. Model inference errors degrade to the heuristic
// rather than failing the analysis.
func (s *Scorer) Score(text string) Result {
	var res Result
	if strings.TrimSpace(text) == "" {
		return res
	}

	tokens := lexicon.Tokenize(text)
	present := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		present[tok.Text] = true
	}

	var markerScore float64
	for _, m := range intensityMarkers {
		if present[m.Word] {
			res.Markers = append(res.Markers, m)
			markerScore += m.Weight
		}
	}

	if s.model != nil {
		begin := time.Now()
		pol, subj, err := s.model.Infer(text)
		res.InferenceMS = float64(time.Since(begin)) / float64(time.Millisecond)
		if err == nil {
			res.Polarity, res.Subjectivity = pol, subj
			res.ModelUsed = true
		} else {
			res.Polarity, res.Subjectivity = heuristicTone(tokens)
		}
	} else {
		res.Polarity, res.Subjectivity = heuristicTone(tokens)
	}

	res.Score = clamp(markerScore+toneAdjustment(res.Polarity, res.Subjectivity), -100, 100)
	return res
}

// toneAdjustment converts polarity and subjectivity into a score shift.
// Highly subjective positive copy reads as hype and leans masculine;
// subjective but flat copy reads as measured and leans feminine.
func toneAdjustment(polarity, subjectivity float64) float64 {
	if subjectivity <= 0.6 {
		return 0
	}
	switch {
	case polarity > 0.3:
		return 15
	case polarity < -0.2:
		return 10
	default:
		return -10
	}
}

var positiveWords = map[string]bool{
	"great": true, "good": true, "excellent": true, "amazing": true,
	"exciting": true, "outstanding": true, "fantastic": true, "love": true,
	"passionate": true, "rewarding": true, "thriving": true, "vibrant": true,
	"best": true, "perfect": true, "ideal": true,
}

var negativeWords = map[string]bool{
	"bad": true, "poor": true, "stressful": true, "difficult": true,
	"hard": true, "grueling": true, "relentless": true, "brutal": true,
	"boring": true, "toxic": true,
}

// heuristicTone estimates polarity and subjectivity from sentiment word
// counts when no model is available. Subjectivity is derived from the
// sentiment words alone, not the document length, so wording that carries
// no tone cannot wash out an adjustment the tone words earned.
func heuristicTone(tokens []lexicon.Token) (polarity, subjectivity float64) {
	var pos, neg int
	for _, tok := range tokens {
		if positiveWords[tok.Text] {
			pos++
		}
		if negativeWords[tok.Text] {
			neg++
		}
	}
	total := pos + neg
	if total == 0 {
		return 0, 0
	}
	polarity = float64(pos-neg) / float64(total)
	subjectivity = clamp(float64(total)/3, 0, 1)
	return polarity, subjectivity
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
