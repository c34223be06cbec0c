package main

import (
	"flag"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/adlens-ai/adlens/internal/analyzer"
	"github.com/adlens-ai/adlens/internal/benchmark"
	"github.com/adlens-ai/adlens/internal/config"
	"github.com/adlens-ai/adlens/internal/contextual"
	"github.com/adlens-ai/adlens/internal/lexicon"
	"github.com/adlens-ai/adlens/internal/sentiment"
)

func main() {
	cfgPath := flag.String("config", "", "path to config yaml (optional, defaults apply)")
	n := flag.Int("n", 200, "number of iterations")
	method := flag.String("method", "comprehensive", "analysis method to benchmark")
	text := flag.String("text", "We need a dominant, aggressive leader who will crush the competition and drive results in our fast-paced environment.", "job ad text to score")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}

	lex, err := lexicon.Default()
	if err != nil {
		log.Fatalf("load word lists: %v", err)
	}
	ctxAnalyzer, err := contextual.Default(contextual.Policy{
		NegationWindow: cfg.Analysis.Context.NegationWindow,
		NegationFactor: cfg.Analysis.Context.NegationFactor,
	})
	if err != nil {
		log.Fatalf("load context patterns: %v", err)
	}
	bench, err := benchmark.Default()
	if err != nil {
		log.Fatalf("load sector benchmarks: %v", err)
	}

	var scorer *sentiment.Scorer
	if cfg.Sentiment.ModelDir != "" {
		model, err := sentiment.LoadModel(cfg.Sentiment.ModelDir, cfg.Sentiment.SeqLen)
		if err != nil {
			log.Fatalf("load sentiment model: %v", err)
		}
		scorer = sentiment.NewScorer(model)
	} else {
		scorer = sentiment.NewScorer(nil)
	}

	m, err := analyzer.ParseMethod(*method)
	if err != nil {
		log.Fatalf("method: %v", err)
	}

	an := analyzer.New(cfg.Analysis, lex, ctxAnalyzer, scorer, bench)
	req := analyzer.Request{Text: *text, Method: m}

	// Warmup
	for i := 0; i < 5; i++ {
		if _, err := an.Analyze(req); err != nil {
			log.Fatalf("warmup analyze failed: %v", err)
		}
	}

	if *n <= 0 {
		*n = 1
	}

	durations := make([]time.Duration, 0, *n)
	var last *analyzer.Result
	for i := 0; i < *n; i++ {
		start := time.Now()
		res, err := an.Analyze(req)
		if err != nil {
			log.Fatalf("analyze failed: %v", err)
		}
		durations = append(durations, time.Since(start))
		last = res
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	var total time.Duration
	for _, d := range durations {
		total += d
	}

	avg := float64(total.Microseconds()) / 1000.0 / float64(len(durations))
	p50 := float64(durations[len(durations)/2].Microseconds()) / 1000.0
	p95 := float64(durations[int(float64(len(durations))*0.95)].Microseconds()) / 1000.0

	fmt.Printf("bench: n=%d avg_ms=%.3f p50_ms=%.3f p95_ms=%.3f method=%s bias_score=%.1f classification=%s terms=%d model=%t\n",
		len(durations),
		avg,
		p50,
		p95,
		last.Method,
		last.BiasScore,
		last.Classification,
		len(last.FlaggedTerms),
		scorer.ModelLoaded(),
	)
}
