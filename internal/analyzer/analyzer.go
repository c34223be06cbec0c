// Package analyzer orchestrates the scoring pipeline: lexicon matching,
// contextual analysis, sentiment scoring, aggregation, suggestions, and
// sector benchmarking.
package analyzer

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/adlens-ai/adlens/internal/benchmark"
	"github.com/adlens-ai/adlens/internal/config"
	"github.com/adlens-ai/adlens/internal/contextual"
	"github.com/adlens-ai/adlens/internal/lexicon"
	"github.com/adlens-ai/adlens/internal/sentiment"
	"github.com/adlens-ai/adlens/internal/suggest"
)

// Method selects which analysis technique drives the score.
type Method string

const (
	MethodLexicon       Method = "lexicon"
	MethodContextual    Method = "contextual"
	MethodSentiment     Method = "sentiment"
	MethodComprehensive Method = "comprehensive"
)

// Methods lists the recognized analysis methods in a stable order.
func Methods() []Method {
	return []Method{MethodLexicon, MethodContextual, MethodSentiment, MethodComprehensive}
}

// ParseMethod normalizes a method selector. Empty selects comprehensive.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return MethodComprehensive, nil
	case "lexicon", "lexicon only":
		return MethodLexicon, nil
	case "contextual":
		return MethodContextual, nil
	case "sentiment":
		return MethodSentiment, nil
	case "comprehensive", "comprehensive multi-method":
		return MethodComprehensive, nil
	default:
		return "", fmt.Errorf("unknown analysis method %q", s)
	}
}

// Direction reports which way a score leans.
type Direction string

const (
	DirectionMasculine Direction = "masculine"
	DirectionFeminine  Direction = "feminine"
	DirectionNeutral   Direction = "neutral"
)

// Classification bands the score magnitude without sector context.
type Classification string

const (
	ClassBalanced Classification = "balanced"
	ClassModerate Classification = "moderate_bias"
	ClassHigh     Classification = "high_bias"
)

// Input validation errors.
var (
	ErrTextEmpty   = errors.New("text is empty")
	ErrTextTooLong = errors.New("text exceeds the maximum length")
)

// Request is one analysis call.
type Request struct {
	Text   string
	Method Method
	// Sector optionally selects a benchmark sector. Unknown sectors
	// yield a result without a comparison, not an error.
	Sector string
}

// Result is the outcome of one analysis. It is fully derived from the
// request and static reference data.
type Result struct {
	ID     string `json:"id"`
	Method Method `json:"method"`
	// BiasScore is the published score in [0, 100]. 50 is the neutral
	// baseline; higher means more masculine-coded.
	BiasScore float64 `json:"bias_score"`
	// RawScore is the signed score in [-100, 100] behind BiasScore.
	RawScore       float64        `json:"raw_score"`
	Direction      Direction      `json:"direction"`
	Classification Classification `json:"classification"`
	// Confidence estimates evidence strength in [0, 100].
	Confidence float64 `json:"confidence"`
	// SubScores holds each technique's raw score. Only the comprehensive
	// method populates all three.
	SubScores        map[string]float64        `json:"sub_scores"`
	FlaggedTerms     []contextual.AdjustedTerm `json:"flagged_terms,omitempty"`
	Patterns         []contextual.Pattern      `json:"patterns,omitempty"`
	Suggestions      []string                  `json:"suggestions,omitempty"`
	SectorComparison *benchmark.Comparison     `json:"sector_comparison,omitempty"`
	WordCount        int                       `json:"word_count"`
	// SentimentInferMS is the time spent in tone model inference,
	// carried for instrumentation rather than the response body.
	SentimentInferMS float64 `json:"-"`
}

// Analyzer runs the pipeline over immutable reference data. It is safe
// for concurrent use.
type Analyzer struct {
	cfg   config.AnalysisConfig
	lex   *lexicon.Lexicon
	ctx   *contextual.Analyzer
	sent  *sentiment.Scorer
	bench *benchmark.Table
}

// New assembles an analyzer from loaded reference components.
func New(cfg config.AnalysisConfig, lex *lexicon.Lexicon, ctx *contextual.Analyzer, sent *sentiment.Scorer, bench *benchmark.Table) *Analyzer {
	return &Analyzer{cfg: cfg, lex: lex, ctx: ctx, sent: sent, bench: bench}
}

// Benchmarks exposes the sector table for listing endpoints.
func (a *Analyzer) Benchmarks() *benchmark.Table { return a.bench }

// SentimentModelLoaded reports whether the ONNX tone model is active.
func (a *Analyzer) SentimentModelLoaded() bool { return a.sent.ModelLoaded() }

// ValidateText rejects empty or over-length input.
func (a *Analyzer) ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrTextEmpty
	}
	if a.cfg.MaxTextBytes > 0 && len(text) > a.cfg.MaxTextBytes {
		return fmt.Errorf("%w: %d bytes over the %d byte limit", ErrTextTooLong, len(text), a.cfg.MaxTextBytes)
	}
	if a.cfg.MaxTextWords > 0 {
		if n := len(strings.Fields(text)); n > a.cfg.MaxTextWords {
			return fmt.Errorf("%w: %d words over the %d word limit", ErrTextTooLong, n, a.cfg.MaxTextWords)
		}
	}
	return nil
}

// Analyze runs the requested method over req.Text.
func (a *Analyzer) Analyze(req Request) (*Result, error) {
	if err := a.ValidateText(req.Text); err != nil {
		return nil, err
	}
	method := req.Method
	if method == "" {
		method = MethodComprehensive
	}

	flagged := a.lex.Match(req.Text)
	ctxRes := a.ctx.Analyze(req.Text, flagged)

	res := &Result{
		ID:           uuid.NewString(),
		Method:       method,
		SubScores:    make(map[string]float64, 3),
		FlaggedTerms: ctxRes.Terms,
		Patterns:     ctxRes.Patterns,
		WordCount:    len(strings.Fields(req.Text)),
	}

	var raw float64
	switch method {
	case MethodLexicon:
		raw = lexiconScore(ctxRes.Terms, false)
		res.SubScores[string(MethodLexicon)] = raw
		res.Confidence = confidence(60, 3, len(ctxRes.Terms), 90)
	case MethodContextual:
		raw = ctxRes.Score
		res.SubScores[string(MethodContextual)] = raw
		res.Confidence = confidence(65, 3, len(ctxRes.Patterns), 85)
	case MethodSentiment:
		sentRes := a.sent.Score(req.Text)
		raw = sentRes.Score
		res.SubScores[string(MethodSentiment)] = raw
		res.Confidence = confidence(50, 4, len(sentRes.Markers), 80)
		res.SentimentInferMS = sentRes.InferenceMS
	case MethodComprehensive:
		sentRes := a.sent.Score(req.Text)
		res.SentimentInferMS = sentRes.InferenceMS
		lexScore := lexiconScore(ctxRes.Terms, true)
		res.SubScores[string(MethodLexicon)] = lexScore
		res.SubScores[string(MethodContextual)] = ctxRes.Score
		res.SubScores[string(MethodSentiment)] = sentRes.Score
		w := a.cfg.Weights
		raw = w.Lexicon*lexScore + w.Contextual*ctxRes.Score + w.Sentiment*sentRes.Score
		mean := (confidence(60, 3, len(ctxRes.Terms), 90) +
			confidence(65, 3, len(ctxRes.Patterns), 85) +
			confidence(50, 4, len(sentRes.Markers), 80)) / 3
		res.Confidence = math.Min(95, mean)
	default:
		return nil, fmt.Errorf("unknown analysis method %q", method)
	}

	raw = clamp(raw, -100, 100)
	res.RawScore = raw
	res.BiasScore = (raw + 100) / 2
	res.Direction = direction(raw)
	res.Classification = classify(raw)
	res.Suggestions = suggest.Generate(flagged, ctxRes.Patterns, a.cfg.MaxSuggestions)

	if req.Sector != "" {
		if cmp, ok := a.bench.Compare(raw, req.Sector); ok {
			res.SectorComparison = &cmp
		}
	}
	return res, nil
}

// lexiconScore turns flagged terms into a signed ratio score: the
// masculine share of total distinct term weight, scaled to [-100, 100].
// With adjusted set, negation-adjusted weights are used.
func lexiconScore(terms []contextual.AdjustedTerm, adjusted bool) float64 {
	var masc, fem float64
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		if seen[t.Term] {
			continue
		}
		seen[t.Term] = true
		w := t.Weight
		if adjusted {
			w = t.AdjustedWeight
		}
		switch t.Category {
		case lexicon.CategoryMasculine:
			masc += w
		case lexicon.CategoryFeminine:
			fem += w
		}
	}
	total := masc + fem
	if total == 0 {
		return 0
	}
	return (masc - fem) / total * 100
}

// confidence grows with evidence count from a method-specific base,
// capped per method.
func confidence(base, perHit float64, hits int, limit float64) float64 {
	return math.Min(limit, base+perHit*float64(hits))
}

func direction(raw float64) Direction {
	switch {
	case raw > 0:
		return DirectionMasculine
	case raw < 0:
		return DirectionFeminine
	default:
		return DirectionNeutral
	}
}

func classify(raw float64) Classification {
	switch mag := math.Abs(raw); {
	case mag <= 20:
		return ClassBalanced
	case mag <= 40:
		return ClassModerate
	default:
		return ClassHigh
	}
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
