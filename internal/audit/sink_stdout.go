package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adlens-ai/adlens/internal/redact"
)

// StdoutSink writes audit events as single-line JSON to standard output.
type StdoutSink struct{}

func NewStdoutSink() *StdoutSink { return &StdoutSink{} }

func (s *StdoutSink) Name() string { return "stdout" }

func (s *StdoutSink) Deliver(_ context.Context, ev *Event) error {
	if ev == nil {
		return nil
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	fmt.Println(redact.String(string(data)))
	return nil
}

func (s *StdoutSink) Close(context.Context) error { return nil }
