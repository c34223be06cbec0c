package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adlens-ai/adlens/internal/analyzer"
	"github.com/adlens-ai/adlens/internal/audit"
	"github.com/adlens-ai/adlens/internal/auth"
	"github.com/adlens-ai/adlens/internal/benchmark"
	"github.com/adlens-ai/adlens/internal/config"
	"github.com/adlens-ai/adlens/internal/contextual"
	"github.com/adlens-ai/adlens/internal/lexicon"
	"github.com/adlens-ai/adlens/internal/sentiment"
	"github.com/adlens-ai/adlens/internal/server"
	"github.com/adlens-ai/adlens/internal/telemetry"
)

func main() {
	addrFlag := flag.String("addr", "", "HTTP listen address (overrides config)")
	configPath := flag.String("config", "adlens.yaml", "Path to adlens config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	addr := cfg.Server.Addr
	if *addrFlag != "" {
		addr = *addrFlag
	}

	// Reference data is fatal when missing: the scoring tables are the product.
	lex, err := loadLexicon(cfg)
	if err != nil {
		log.Fatalf("load word lists: %v", err)
	}
	ctxAnalyzer, err := loadPatterns(cfg)
	if err != nil {
		log.Fatalf("load context patterns: %v", err)
	}
	bench, err := loadBenchmarks(cfg)
	if err != nil {
		log.Fatalf("load sector benchmarks: %v", err)
	}

	scorer := loadSentiment(cfg)

	an := analyzer.New(cfg.Analysis, lex, ctxAnalyzer, scorer, bench)

	authz, err := auth.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("invalid project config: %v", err)
	}

	sinks, err := audit.NewSinksFromConfig(cfg.Audit)
	if err != nil {
		log.Fatalf("invalid audit config: %v", err)
	}
	emitter := audit.NewEmitter(audit.EmitterConfig{
		QueueSize: cfg.Audit.QueueSize,
		Workers:   cfg.Audit.Workers,
	}, sinks)

	tel, err := telemetryProvider(cfg)
	if err != nil {
		log.Fatalf("telemetry init: %v", err)
	}

	srv := server.New(cfg, authz, an, emitter, tel)

	// Flush audit events and telemetry on SIGINT/SIGTERM.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		log.Printf("received %s, shutting down", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		emitter.Close(ctx)
		tel.Shutdown(ctx)
		os.Exit(0)
	}()

	if err := srv.Start(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func loadLexicon(cfg *config.Config) (*lexicon.Lexicon, error) {
	if p := cfg.Reference.LexiconPath; p != "" {
		return lexicon.LoadFile(p)
	}
	return lexicon.Default()
}

func loadPatterns(cfg *config.Config) (*contextual.Analyzer, error) {
	policy := contextual.Policy{
		NegationWindow: cfg.Analysis.Context.NegationWindow,
		NegationFactor: cfg.Analysis.Context.NegationFactor,
	}
	if p := cfg.Reference.PatternsPath; p != "" {
		return contextual.LoadFile(p, policy)
	}
	return contextual.Default(policy)
}

func loadBenchmarks(cfg *config.Config) (*benchmark.Table, error) {
	if p := cfg.Reference.BenchmarksPath; p != "" {
		return benchmark.LoadFile(p)
	}
	return benchmark.Default()
}

func telemetryProvider(cfg *config.Config) (*telemetry.Provider, error) {
	return telemetry.NewProvider(context.Background(), telemetry.Config{
		Enabled:  cfg.Telemetry.Enabled,
		Endpoint: cfg.Telemetry.Endpoint,
		Protocol: cfg.Telemetry.Protocol,
		Service:  cfg.Telemetry.Service,
		Version:  cfg.Telemetry.Version,
	})
}

// loadSentiment tries the ONNX tone model and falls back to the word-count
// heuristic. Only require_model turns a load failure fatal.
func loadSentiment(cfg *config.Config) *sentiment.Scorer {
	if cfg.Sentiment.ModelDir == "" {
		if cfg.Sentiment.RequireModel {
			log.Fatalf("sentiment.require_model is set but sentiment.model_dir is empty")
		}
		return sentiment.NewScorer(nil)
	}

	model, err := sentiment.LoadModel(cfg.Sentiment.ModelDir, cfg.Sentiment.SeqLen)
	if err != nil {
		if cfg.Sentiment.RequireModel {
			log.Fatalf("load sentiment model: %v", err)
		}
		log.Printf("sentiment model unavailable (%v), using heuristic tone", err)
		return sentiment.NewScorer(nil)
	}
	log.Printf("sentiment model loaded from %s", cfg.Sentiment.ModelDir)
	return sentiment.NewScorer(model)
}
