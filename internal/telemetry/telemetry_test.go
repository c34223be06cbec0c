package telemetry

import (
	"context"
	"testing"
)

func TestDisabledProviderIsNoop(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.Enabled {
		t.Fatal("provider should be disabled")
	}
	// Instruments must be usable without a collector.
	p.RecordAnalysis("comprehensive", "completed", "proj", 12.5, 3.1, 4)
	p.Shutdown(context.Background())
}

func TestNilProviderSafe(t *testing.T) {
	var p *Provider
	p.RecordAnalysis("lexicon", "completed", "", 1, 0, 0)
	p.Shutdown(context.Background())
	if p.Tracer() == nil || p.Meter() == nil {
		t.Fatal("nil provider should return no-op tracer and meter")
	}
}
