// Package audit records analysis activity to configurable sinks. What an
// event retains of the submitted text is governed by the capture level:
// the default metadata level keeps no text at all.
package audit

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"time"
)

// Decision is the outcome of an analysis request.
type Decision string

const (
	DecisionCompleted     Decision = "completed"
	DecisionRejectedInput Decision = "rejected_input"
	DecisionUnauthorized  Decision = "unauthorized"
)

// Capture levels.
const (
	CaptureMetadata = "metadata"
	CaptureRedacted = "redacted"
	CaptureFull     = "full"
)

// Event is the canonical audit payload.
type Event struct {
	Version     string    `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id"`
	ProjectID   string    `json:"project_id,omitempty"`
	Decision    Decision  `json:"decision"`
	Method      string    `json:"method,omitempty"`
	Sector      string    `json:"sector,omitempty"`
	BiasScore   float64   `json:"bias_score,omitempty"`
	Direction   string    `json:"direction,omitempty"`
	TermCount   int       `json:"term_count"`
	WordCount   int       `json:"word_count"`
	LatencyMs   float64   `json:"latency_ms"`
	TextPreview string    `json:"text_preview,omitempty"`
	// CaptureLevel records how much text the preview retains, so sinks
	// with a lower ceiling can downgrade it before persisting.
	CaptureLevel string `json:"capture_level"`
	Error        string `json:"error,omitempty"`
}

// BuildParams collects the inputs for one audit event.
type BuildParams struct {
	RequestID    string
	ProjectID    string
	Decision     Decision
	Method       string
	Sector       string
	BiasScore    float64
	Direction    string
	TermCount    int
	WordCount    int
	Latency      time.Duration
	Text         string
	CaptureLevel string
	Err          error
}

// BuildEvent assembles an audit event, applying the capture level to the
// text preview.
func BuildEvent(p BuildParams) *Event {
	ev := &Event{
		Version:      "1",
		Timestamp:    time.Now().UTC(),
		RequestID:    ensureRequestID(p.RequestID),
		ProjectID:    p.ProjectID,
		Decision:     p.Decision,
		Method:       p.Method,
		Sector:       p.Sector,
		BiasScore:    p.BiasScore,
		Direction:    p.Direction,
		TermCount:    p.TermCount,
		WordCount:    p.WordCount,
		LatencyMs:    float64(p.Latency) / float64(time.Millisecond),
		TextPreview:  buildPreview(p.CaptureLevel, p.Text),
		CaptureLevel: normalizeCapture(p.CaptureLevel),
	}
	if p.Err != nil {
		ev.Error = p.Err.Error()
	}
	return ev
}

func ensureRequestID(id string) string {
	if id != "" {
		return id
	}
	var buf [16]byte
	_, _ = rand.Read(buf[:])
	return hex.EncodeToString(buf[:])
}

var (
	emailRegex = regexp.MustCompile(`(?i)[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	tokenRegex = regexp.MustCompile(`[A-Za-z0-9_\-]{24,}`)
)

func buildPreview(level, text string) string {
	switch level {
	case CaptureFull:
		return truncate(text, 500)
	case CaptureRedacted:
		return truncate(simpleRedact(text), 500)
	default:
		// metadata-only: no text retained
		return ""
	}
}

func normalizeCapture(level string) string {
	switch level {
	case CaptureFull, CaptureRedacted:
		return level
	default:
		return CaptureMetadata
	}
}

// capRank orders capture levels from least to most text retained.
func capRank(level string) int {
	switch level {
	case CaptureFull:
		return 2
	case CaptureRedacted:
		return 1
	default:
		return 0
	}
}

// CapCapture returns the event with its text preview reduced to at most
// level. Events already at or below level are returned unchanged.
func (ev *Event) CapCapture(level string) *Event {
	if ev == nil || level == "" || capRank(level) >= capRank(ev.CaptureLevel) {
		return ev
	}
	c := *ev
	c.CaptureLevel = normalizeCapture(level)
	switch c.CaptureLevel {
	case CaptureRedacted:
		c.TextPreview = simpleRedact(c.TextPreview)
	default:
		c.TextPreview = ""
	}
	return &c
}

func simpleRedact(s string) string {
	s = emailRegex.ReplaceAllString(s, "[REDACTED_EMAIL]")
	s = tokenRegex.ReplaceAllString(s, "[REDACTED_TOKEN]")
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
