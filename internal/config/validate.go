package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"strings"
)

// Validate checks the loaded config for required fields and safe values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}

	w := cfg.Analysis.Weights
	if w.Lexicon < 0 || w.Contextual < 0 || w.Sentiment < 0 {
		return errors.New("analysis.weights must be non-negative")
	}
	if sum := w.Lexicon + w.Contextual + w.Sentiment; math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("analysis.weights must sum to 1.0, got %.3f", sum)
	}

	if cfg.Analysis.MaxTextBytes > int(cfg.Server.MaxRequestBodyBytes) {
		return errors.New("analysis.max_text_bytes exceeds server.max_request_body_bytes")
	}
	if cfg.Analysis.Context.NegationFactor > 1.0 {
		return fmt.Errorf("analysis.context.negation_factor must be <= 1.0, got %.2f", cfg.Analysis.Context.NegationFactor)
	}

	for i, p := range cfg.Projects {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("project %d has empty id", i)
		}
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Logging.CaptureLevel)) {
	case "metadata", "redacted", "full":
	default:
		return fmt.Errorf("logging.capture_level must be metadata, redacted or full, got %q", cfg.Logging.CaptureLevel)
	}

	if err := validateReferenceConfig(cfg.Reference); err != nil {
		return err
	}

	if err := validateAuditConfig(cfg.Audit); err != nil {
		return err
	}

	if err := validateTelemetryConfig(cfg.Telemetry); err != nil {
		return err
	}

	return nil
}

func validateReferenceConfig(r ReferenceConfig) error {
	for field, p := range map[string]string{
		"reference.lexicon_path":    r.LexiconPath,
		"reference.patterns_path":   r.PatternsPath,
		"reference.benchmarks_path": r.BenchmarksPath,
	} {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	return nil
}

func validateAuditConfig(a AuditConfig) error {
	for i, s := range a.Sinks {
		switch strings.ToLower(strings.TrimSpace(s.Type)) {
		case "stdout":
		case "file_jsonl":
			if strings.TrimSpace(s.Path) == "" {
				return fmt.Errorf("audit sink %d (file_jsonl) missing path", i)
			}
		case "webhook":
			if strings.TrimSpace(s.URL) == "" {
				return fmt.Errorf("audit sink %d (webhook) missing url", i)
			}
			u, err := url.Parse(s.URL)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("audit sink %d (webhook) has invalid url", i)
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return fmt.Errorf("audit sink %d (webhook) url must be http or https", i)
			}
		default:
			return fmt.Errorf("audit sink %d has unknown type %q", i, s.Type)
		}
		switch strings.ToLower(strings.TrimSpace(s.MaxCapture)) {
		case "", "metadata", "redacted", "full":
		default:
			return fmt.Errorf("audit sink %d max_capture must be metadata, redacted or full, got %q", i, s.MaxCapture)
		}
	}
	return nil
}

func validateTelemetryConfig(t TelemetryConfig) error {
	if !t.Enabled {
		return nil
	}
	if strings.TrimSpace(t.Endpoint) == "" {
		return errors.New("telemetry enabled but endpoint is empty")
	}
	if t.Protocol != "" {
		switch strings.ToLower(strings.TrimSpace(t.Protocol)) {
		case "grpc", "http":
		default:
			return fmt.Errorf("telemetry.protocol must be grpc or http, got %q", t.Protocol)
		}
	}
	return nil
}
