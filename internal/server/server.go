// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/adlens-ai/adlens/internal/analyzer"
	"github.com/adlens-ai/adlens/internal/audit"
	"github.com/adlens-ai/adlens/internal/auth"
	"github.com/adlens-ai/adlens/internal/benchmark"
	"github.com/adlens-ai/adlens/internal/config"
	"github.com/adlens-ai/adlens/internal/suggest"
	"github.com/adlens-ai/adlens/internal/telemetry"
)

// Server wraps the HTTP components for the analysis service.
type Server struct {
	mux       *http.ServeMux
	cfg       *config.Config
	auth      *auth.Auth
	analyzer  *analyzer.Analyzer
	audit     *audit.Emitter
	telemetry *telemetry.Provider
	inflight  chan struct{}
}

// New creates a server with all routes registered.
func New(cfg *config.Config, authz *auth.Auth, an *analyzer.Analyzer, emitter *audit.Emitter, tel *telemetry.Provider) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		cfg:       cfg,
		auth:      authz,
		analyzer:  an,
		audit:     emitter,
		telemetry: tel,
		inflight:  make(chan struct{}, cfg.Server.MaxInFlightRequests),
	}

	// Routes
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/readyz", s.handleReady)
	s.mux.HandleFunc("/v1/analyze", s.handleAnalyze)
	s.mux.HandleFunc("/v1/rewrite", s.handleRewrite)
	s.mux.HandleFunc("/v1/sectors", s.handleSectors)
	s.mux.HandleFunc("/v1/methods", s.handleMethods)

	return s
}

// Handler returns the route mux, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// Start runs the HTTP server on addr until it fails.
func (s *Server) Start(addr string) error {
	log.Printf("adlens analysis service running on %s", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: s.cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		IdleTimeout:       s.cfg.Server.IdleTimeout,
	}
	return srv.ListenAndServe()
}

// --- Handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Sentiment.RequireModel && !s.analyzer.SentimentModelLoaded() {
		writeAPIError(w, http.StatusServiceUnavailable, "sentiment model required but not loaded", "not_ready")
		return
	}
	fmt.Fprintln(w, "ok")
}

type analyzeRequest struct {
	Text   string `json:"text"`
	Method string `json:"method,omitempty"`
	Sector string `json:"sector,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.acquire() {
		writeAPIError(w, http.StatusTooManyRequests, "too many concurrent requests", "rate_limit_error")
		return
	}
	defer s.release()

	project, ok := s.authorize(w, r)
	if !ok {
		return
	}

	var reqBody analyzeRequest
	if !s.decodeBody(w, r, &reqBody) {
		return
	}

	method, err := analyzer.ParseMethod(reqBody.Method)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error(), "invalid_input")
		return
	}

	start := time.Now()
	res, err := s.analyzer.Analyze(analyzer.Request{
		Text:   reqBody.Text,
		Method: method,
		Sector: reqBody.Sector,
	})
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, analyzer.ErrTextTooLong) {
			status = http.StatusRequestEntityTooLarge
		}
		s.emitAudit(audit.BuildParams{
			ProjectID: project.ID,
			Decision:  audit.DecisionRejectedInput,
			Method:    string(method),
			Sector:    reqBody.Sector,
			WordCount: len(strings.Fields(reqBody.Text)),
			Latency:   time.Since(start),
			Text:      reqBody.Text,
			Err:       err,
		})
		s.telemetry.RecordAnalysis(string(method), string(audit.DecisionRejectedInput), project.ID, durMs(start), 0, 0)
		writeAPIError(w, status, err.Error(), "invalid_input")
		return
	}

	s.emitAudit(audit.BuildParams{
		RequestID: res.ID,
		ProjectID: project.ID,
		Decision:  audit.DecisionCompleted,
		Method:    string(res.Method),
		Sector:    reqBody.Sector,
		BiasScore: res.BiasScore,
		Direction: string(res.Direction),
		TermCount: len(res.FlaggedTerms),
		WordCount: res.WordCount,
		Latency:   time.Since(start),
		Text:      reqBody.Text,
	})
	s.telemetry.RecordAnalysis(string(res.Method), string(audit.DecisionCompleted), project.ID, durMs(start), res.SentimentInferMS, len(res.FlaggedTerms))

	writeJSON(w, res)
}

type rewriteRequest struct {
	Text string `json:"text"`
}

type rewriteResponse struct {
	Text            string           `json:"text"`
	Changes         []suggest.Change `json:"changes"`
	BiasScoreBefore float64          `json:"bias_score_before"`
	BiasScoreAfter  float64          `json:"bias_score_after"`
}

func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.acquire() {
		writeAPIError(w, http.StatusTooManyRequests, "too many concurrent requests", "rate_limit_error")
		return
	}
	defer s.release()

	project, ok := s.authorize(w, r)
	if !ok {
		return
	}

	var reqBody rewriteRequest
	if !s.decodeBody(w, r, &reqBody) {
		return
	}

	start := time.Now()
	before, err := s.analyzer.Analyze(analyzer.Request{Text: reqBody.Text, Method: analyzer.MethodComprehensive})
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, analyzer.ErrTextTooLong) {
			status = http.StatusRequestEntityTooLarge
		}
		s.emitAudit(audit.BuildParams{
			ProjectID: project.ID,
			Decision:  audit.DecisionRejectedInput,
			Method:    "rewrite",
			WordCount: len(strings.Fields(reqBody.Text)),
			Latency:   time.Since(start),
			Text:      reqBody.Text,
			Err:       err,
		})
		writeAPIError(w, status, err.Error(), "invalid_input")
		return
	}

	resp := rewriteResponse{
		Text:            reqBody.Text,
		Changes:         []suggest.Change{},
		BiasScoreBefore: before.BiasScore,
		BiasScoreAfter:  before.BiasScore,
	}

	// Below the threshold the text is already close to neutral and is
	// returned untouched.
	if math.Abs(before.RawScore) >= s.cfg.Analysis.RewriteThreshold {
		improved, changes := suggest.Rewrite(reqBody.Text)
		if len(changes) > 0 {
			after, err := s.analyzer.Analyze(analyzer.Request{Text: improved, Method: analyzer.MethodComprehensive})
			if err != nil {
				writeAPIError(w, http.StatusBadRequest, err.Error(), "invalid_input")
				return
			}
			resp.Text = improved
			resp.Changes = changes
			resp.BiasScoreAfter = after.BiasScore
		}
	}

	s.emitAudit(audit.BuildParams{
		ProjectID: project.ID,
		Decision:  audit.DecisionCompleted,
		Method:    "rewrite",
		BiasScore: resp.BiasScoreAfter,
		WordCount: len(strings.Fields(reqBody.Text)),
		TermCount: len(resp.Changes),
		Latency:   time.Since(start),
		Text:      reqBody.Text,
	})

	writeJSON(w, resp)
}

func (s *Server) handleSectors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, struct {
		Sectors []benchmark.Sector `json:"sectors"`
	}{Sectors: s.analyzer.Benchmarks().Sectors()})
}

func (s *Server) handleMethods(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, struct {
		Methods []analyzer.Method `json:"methods"`
	}{Methods: analyzer.Methods()})
}

// --- Request plumbing ---

// authorize resolves the caller's project. With no configured API keys
// the service is open and an anonymous project is returned.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) (auth.Project, bool) {
	if s.auth.Open() {
		return auth.Project{}, true
	}
	apiKey, ok := parseBearerToken(r.Header.Get("Authorization"))
	if !ok || apiKey == "" {
		writeAPIError(w, http.StatusUnauthorized, "Invalid or missing API key", "authentication_error")
		return auth.Project{}, false
	}
	project, ok := s.auth.Lookup(apiKey)
	if !ok {
		writeAPIError(w, http.StatusUnauthorized, "Invalid API key", "authentication_error")
		return auth.Project{}, false
	}
	return project, true
}

// decodeBody reads a size-capped JSON body into dst.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeAPIError(w, http.StatusRequestEntityTooLarge, "request body too large", "invalid_input")
			return false
		}
		writeAPIError(w, http.StatusBadRequest, "invalid JSON body", "invalid_input")
		return false
	}
	return true
}

func (s *Server) acquire() bool {
	select {
	case s.inflight <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Server) release() { <-s.inflight }

func (s *Server) emitAudit(p audit.BuildParams) {
	if s.audit == nil {
		return
	}
	p.CaptureLevel = s.cfg.Logging.CaptureLevel
	s.audit.Emit(context.Background(), audit.BuildEvent(p))
}

func durMs(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

// parseBearerToken extracts the token from an Authorization: Bearer header.
func parseBearerToken(h string) (string, bool) {
	if h == "" {
		return "", false
	}
	parts := strings.Fields(h)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

type apiErrorBody struct {
	Error apiErrorDetail `json:"error"`
}

type apiErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// writeAPIError writes the canonical error JSON.
func writeAPIError(w http.ResponseWriter, status int, message, typ string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiErrorBody{
		Error: apiErrorDetail{Message: message, Type: typ},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}
