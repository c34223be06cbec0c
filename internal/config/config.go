package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds adlens configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Reference ReferenceConfig `yaml:"reference"`
	Sentiment SentimentConfig `yaml:"sentiment"`
	Projects  []ProjectConfig `yaml:"projects"`
	Logging   LoggingConfig   `yaml:"logging"`
	Audit     AuditConfig     `yaml:"audit"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type ServerConfig struct {
	Addr                string        `yaml:"addr"` // HTTP listen address, e.g. ":8080"
	MaxRequestBodyBytes int64         `yaml:"max_request_body_bytes"`
	MaxInFlightRequests int           `yaml:"max_in_flight_requests"`
	ReadHeaderTimeout   time.Duration `yaml:"read_header_timeout"`
	ReadTimeout         time.Duration `yaml:"read_timeout"`
	WriteTimeout        time.Duration `yaml:"write_timeout"`
	IdleTimeout         time.Duration `yaml:"idle_timeout"`
}

// AnalysisConfig bounds inputs and tunes the scoring pipeline.
type AnalysisConfig struct {
	MaxTextBytes   int           `yaml:"max_text_bytes"`
	MaxTextWords   int           `yaml:"max_text_words"`
	Weights        WeightsConfig `yaml:"weights"`
	Context        ContextConfig `yaml:"context"`
	MaxSuggestions int           `yaml:"max_suggestions"`
	// RewriteThreshold is the minimum raw score magnitude before the rewrite
	// endpoint proposes an improved version.
	RewriteThreshold float64 `yaml:"rewrite_threshold"`
}

// WeightsConfig holds the ensemble weights for the comprehensive method.
type WeightsConfig struct {
	Lexicon    float64 `yaml:"lexicon"`
	Contextual float64 `yaml:"contextual"`
	Sentiment  float64 `yaml:"sentiment"`
}

// ContextConfig is the local-window adjustment policy. These are tunable
// policy values, not fixed logic.
type ContextConfig struct {
	NegationWindow int     `yaml:"negation_window"` // tokens to look back for a negation
	NegationFactor float64 `yaml:"negation_factor"` // weight multiplier inside the window
}

// ReferenceConfig points at reference-data files. Empty fields fall back to
// the embedded defaults shipped with the binary.
type ReferenceConfig struct {
	LexiconPath    string `yaml:"lexicon_path"`
	PatternsPath   string `yaml:"patterns_path"`
	BenchmarksPath string `yaml:"benchmarks_path"`
}

// SentimentConfig controls the optional ONNX polarity model. With the model
// disabled or missing, the marker lexicon runs alone.
type SentimentConfig struct {
	ModelDir     string `yaml:"model_dir"`
	SeqLen       int    `yaml:"seq_len"`
	RequireModel bool   `yaml:"require_model"` // readyz fails until the model is loaded
}

type ProjectConfig struct {
	ID      string   `yaml:"id"`
	APIKeys []string `yaml:"api_keys"`
}

type LoggingConfig struct {
	// CaptureLevel governs how much analyzed text may appear in audit
	// events: metadata | redacted | full. Default metadata: the service
	// keeps no copy of submitted text.
	CaptureLevel string `yaml:"capture_level"`
}

type AuditConfig struct {
	QueueSize int               `yaml:"queue_size"`
	Workers   int               `yaml:"workers"`
	Sinks     []AuditSinkConfig `yaml:"sinks"`
}

type AuditSinkConfig struct {
	Type string `yaml:"type"` // stdout | file_jsonl | webhook
	Path string `yaml:"path"` // file_jsonl
	URL  string `yaml:"url"`  // webhook
	// MaxCapture caps the capture level persisted by a file_jsonl sink,
	// independent of logging.capture_level. Empty means no cap.
	MaxCapture string `yaml:"max_capture"`
}

type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Protocol string `yaml:"protocol"` // grpc | http
	Service  string `yaml:"service"`
	Version  string `yaml:"version"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads configuration from a YAML file.
// If the file doesn't exist, it returns a default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config
		if os.IsNotExist(err) {
			cfg := &Config{}
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.MaxRequestBodyBytes <= 0 {
		cfg.Server.MaxRequestBodyBytes = 1 << 20 // 1 MiB
	}
	if cfg.Server.MaxInFlightRequests <= 0 {
		cfg.Server.MaxInFlightRequests = 64
	}
	if cfg.Server.ReadHeaderTimeout <= 0 {
		cfg.Server.ReadHeaderTimeout = 5 * time.Second
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}

	if cfg.Analysis.MaxTextBytes <= 0 {
		cfg.Analysis.MaxTextBytes = 256 << 10 // 256 KiB
	}
	if cfg.Analysis.MaxTextWords <= 0 {
		cfg.Analysis.MaxTextWords = 10000
	}
	if cfg.Analysis.Weights == (WeightsConfig{}) {
		cfg.Analysis.Weights = WeightsConfig{
			Lexicon:    0.40,
			Contextual: 0.35,
			Sentiment:  0.25,
		}
	}
	if cfg.Analysis.Context.NegationWindow <= 0 {
		cfg.Analysis.Context.NegationWindow = 3
	}
	if cfg.Analysis.Context.NegationFactor <= 0 {
		cfg.Analysis.Context.NegationFactor = 0.5
	}
	if cfg.Analysis.MaxSuggestions <= 0 {
		cfg.Analysis.MaxSuggestions = 5
	}
	if cfg.Analysis.RewriteThreshold <= 0 {
		cfg.Analysis.RewriteThreshold = 15
	}

	if cfg.Sentiment.SeqLen <= 0 {
		cfg.Sentiment.SeqLen = 256
	}

	if cfg.Logging.CaptureLevel == "" {
		cfg.Logging.CaptureLevel = "metadata"
	}

	if cfg.Audit.QueueSize <= 0 {
		cfg.Audit.QueueSize = 1000
	}
	if cfg.Audit.Workers <= 0 {
		cfg.Audit.Workers = 1
	}
}
