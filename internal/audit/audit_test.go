package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adlens-ai/adlens/internal/config"
)

func configWithSink(kind string) config.AuditConfig {
	return config.AuditConfig{Sinks: []config.AuditSinkConfig{{Type: kind}}}
}

func TestBuildEventCaptureLevels(t *testing.T) {
	text := "Contact recruiter@example.com about this competitive role."

	ev := BuildEvent(BuildParams{Text: text, CaptureLevel: CaptureMetadata})
	if ev.TextPreview != "" {
		t.Fatalf("metadata level retained text: %q", ev.TextPreview)
	}

	ev = BuildEvent(BuildParams{Text: text, CaptureLevel: CaptureRedacted})
	if strings.Contains(ev.TextPreview, "recruiter@example.com") {
		t.Fatalf("redacted level kept the email: %q", ev.TextPreview)
	}
	if !strings.Contains(ev.TextPreview, "[REDACTED_EMAIL]") {
		t.Fatalf("redacted preview missing placeholder: %q", ev.TextPreview)
	}

	ev = BuildEvent(BuildParams{Text: text, CaptureLevel: CaptureFull})
	if ev.TextPreview != text {
		t.Fatalf("full level preview = %q", ev.TextPreview)
	}
}

func TestBuildEventTruncatesPreview(t *testing.T) {
	long := strings.Repeat("analyst ", 200)
	ev := BuildEvent(BuildParams{Text: long, CaptureLevel: CaptureFull})
	if len(ev.TextPreview) > 504 {
		t.Fatalf("preview length = %d, want truncated", len(ev.TextPreview))
	}
}

func TestBuildEventAssignsRequestID(t *testing.T) {
	ev := BuildEvent(BuildParams{Decision: DecisionCompleted})
	if ev.RequestID == "" {
		t.Fatal("request id not assigned")
	}
	ev = BuildEvent(BuildParams{RequestID: "req-1"})
	if ev.RequestID != "req-1" {
		t.Fatalf("request id = %q, want req-1", ev.RequestID)
	}
}

// captureSink records delivered events for assertions.
type captureSink struct {
	mu     sync.Mutex
	events []*Event
	block  chan struct{}
}

func (s *captureSink) Name() string { return "capture" }

func (s *captureSink) Deliver(_ context.Context, ev *Event) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *captureSink) Close(context.Context) error { return nil }

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestEmitterDelivers(t *testing.T) {
	sink := &captureSink{}
	em := NewEmitter(EmitterConfig{QueueSize: 8, Workers: 1}, []Sink{sink})

	for i := 0; i < 3; i++ {
		em.Emit(context.Background(), BuildEvent(BuildParams{Decision: DecisionCompleted}))
	}
	em.Close(context.Background())

	if got := sink.count(); got != 3 {
		t.Fatalf("delivered = %d, want 3", got)
	}
	m := em.MetricsSnapshot()
	if m.Enqueued() != 3 || m.Dropped() != 0 {
		t.Fatalf("enqueued=%d dropped=%d", m.Enqueued(), m.Dropped())
	}
	if m.SinkSuccess("capture") != 3 {
		t.Fatalf("sink success = %d", m.SinkSuccess("capture"))
	}
}

func TestEmitterDropsWhenFull(t *testing.T) {
	block := make(chan struct{})
	sink := &captureSink{block: block}
	em := NewEmitter(EmitterConfig{QueueSize: 1, Workers: 1, ShutdownTimeout: 100 * time.Millisecond}, []Sink{sink})

	// First event occupies the worker, second fills the queue, the
	// rest must be dropped without blocking.
	for i := 0; i < 5; i++ {
		em.Emit(context.Background(), BuildEvent(BuildParams{Decision: DecisionCompleted}))
	}
	close(block)
	em.Close(context.Background())

	m := em.MetricsSnapshot()
	if m.Dropped() == 0 {
		t.Fatal("expected drops with a full queue")
	}
	if m.Enqueued()+m.Dropped() != 5 {
		t.Fatalf("enqueued=%d dropped=%d, want total 5", m.Enqueued(), m.Dropped())
	}
}

func TestEmitterEmitAfterClose(t *testing.T) {
	em := NewEmitter(EmitterConfig{}, nil)
	em.Close(context.Background())
	em.Emit(context.Background(), BuildEvent(BuildParams{}))
	if m := em.MetricsSnapshot(); m.Dropped() != 1 {
		t.Fatalf("dropped = %d, want 1", m.Dropped())
	}
}

func TestFileSinkWritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "events.jsonl")
	sink, err := NewFileSink(path, "")
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := sink.Deliver(context.Background(), BuildEvent(BuildParams{Decision: DecisionCompleted, Method: "lexicon"})); err != nil {
			t.Fatalf("Deliver: %v", err)
		}
	}
	if err := sink.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var lines int
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev Event
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("line %d not valid JSON: %v", lines, err)
		}
		if ev.Method != "lexicon" {
			t.Fatalf("method = %q", ev.Method)
		}
		lines++
	}
	if lines != 2 {
		t.Fatalf("lines = %d, want 2", lines)
	}
}

func readEvents(t *testing.T, path string) []Event {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var events []Event
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev Event
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("line %d not valid JSON: %v", len(events), err)
		}
		events = append(events, ev)
	}
	return events
}

func TestFileSinkCapsCaptureLevel(t *testing.T) {
	text := "Contact recruiter@example.com about this competitive role."
	full := BuildEvent(BuildParams{Text: text, CaptureLevel: CaptureFull})

	path := filepath.Join(t.TempDir(), "events.jsonl")
	sink, err := NewFileSink(path, CaptureRedacted)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	if err := sink.Deliver(context.Background(), full); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if err := sink.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// The in-memory event keeps its full preview for other sinks.
	if full.TextPreview != text {
		t.Fatalf("delivered event mutated: %q", full.TextPreview)
	}

	events := readEvents(t, path)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].CaptureLevel != CaptureRedacted {
		t.Fatalf("persisted capture level = %q", events[0].CaptureLevel)
	}
	if strings.Contains(events[0].TextPreview, "recruiter@example.com") {
		t.Fatalf("persisted preview kept the email: %q", events[0].TextPreview)
	}
	if !strings.Contains(events[0].TextPreview, "[REDACTED_EMAIL]") {
		t.Fatalf("persisted preview missing placeholder: %q", events[0].TextPreview)
	}
}

func TestFileSinkMetadataCeilingDropsText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	sink, err := NewFileSink(path, CaptureMetadata)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	ev := BuildEvent(BuildParams{Text: "A competitive role.", CaptureLevel: CaptureFull})
	if err := sink.Deliver(context.Background(), ev); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if err := sink.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	events := readEvents(t, path)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].TextPreview != "" || events[0].CaptureLevel != CaptureMetadata {
		t.Fatalf("metadata ceiling kept text: %+v", events[0])
	}
}

func TestCapCaptureNoOpAtOrBelowCeiling(t *testing.T) {
	ev := BuildEvent(BuildParams{Text: "A competitive role.", CaptureLevel: CaptureMetadata})
	if got := ev.CapCapture(CaptureFull); got != ev {
		t.Fatal("capping above the event level should return the same event")
	}
	if got := ev.CapCapture(""); got != ev {
		t.Fatal("empty ceiling should return the same event")
	}
}

func TestWebhookSinkRetries(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink, err := NewWebhookSink(srv.URL, map[string]string{"X-Test": "1"}, time.Second)
	if err != nil {
		t.Fatalf("NewWebhookSink: %v", err)
	}
	if err := sink.Deliver(context.Background(), BuildEvent(BuildParams{})); err != nil {
		t.Fatalf("Deliver after retry: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
}

func TestNewSinksFromConfigUnknownType(t *testing.T) {
	_, err := NewSinksFromConfig(configWithSink("carrier_pigeon"))
	if err == nil {
		t.Fatal("expected error for unknown sink type")
	}
}

func TestNewSinksFromConfigStdout(t *testing.T) {
	sinks, err := NewSinksFromConfig(configWithSink("stdout"))
	if err != nil {
		t.Fatalf("NewSinksFromConfig: %v", err)
	}
	if len(sinks) != 1 || sinks[0].Name() != "stdout" {
		t.Fatalf("sinks = %v", sinks)
	}
}
