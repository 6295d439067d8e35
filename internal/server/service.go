// Package server provides the HTTP projection service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/mrrcast/internal/cache"
	"github.com/theirongolddev/mrrcast/internal/model"
	"github.com/theirongolddev/mrrcast/internal/projection"
	"github.com/theirongolddev/mrrcast/internal/store"
)

// maxBodyBytes bounds a posted ParameterSet.
const maxBodyBytes = 1 << 20

// Config controls the service runtime behavior.
type Config struct {
	Addr         string
	RedisAddr    string
	CacheTTL     time.Duration
	EventsBuffer int
}

// Scenarios is the read side of the scenario store.
type Scenarios interface {
	Get(name string) (store.Scenario, error)
	List() ([]store.ScenarioInfo, error)
}

// Event is emitted whenever a projection is computed rather than served
// from cache.
type Event struct {
	ID          int64        `json:"id"`
	Type        string       `json:"type"`
	Timestamp   time.Time    `json:"timestamp"`
	Fingerprint string       `json:"fingerprint"`
	Scenario    string       `json:"scenario,omitempty"`
	LTV         model.Metric `json:"ltv"`
	EndingCash  float64      `json:"ending_cash"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	Requests        int64     `json:"requests"`
	Projections     int64     `json:"projections"`
	CacheHits       int64     `json:"cache_hits"`
	CacheTTLSec     int       `json:"cache_ttl_sec"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// fieldError is one entry of a 422 response.
type fieldError struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

type errorResponse struct {
	Error  string       `json:"error"`
	Fields []fieldError `json:"fields,omitempty"`
}

// Service provides the projection HTTP API.
type Service struct {
	cfg       Config
	cache     cache.Cache
	scenarios Scenarios

	mu          sync.RWMutex
	startedAt   time.Time
	requests    int64
	projections int64
	cacheHits   int64
	lastError   string
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a service that caches results in c. A nil cache uses an
// in-process cache; a nil scenarios disables the scenario endpoints.
func New(cfg Config, c cache.Cache, scenarios Scenarios) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8471"
	}
	if c == nil {
		c = cache.NewMemory()
	}

	return &Service{
		cfg:       cfg,
		cache:     c,
		scenarios: scenarios,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP routes.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("POST /v1/projections", s.handleProject)
	mux.HandleFunc("GET /v1/scenarios", s.handleScenarios)
	mux.HandleFunc("GET /v1/scenarios/{name}/projection", s.handleScenarioProjection)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)
	return s.count(mux)
}

// Run serves HTTP until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Printf("mrrcast serve: listening on %s", s.cfg.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

func (s *Service) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// project returns the JSON projection for p, computing it on a cache miss.
func (s *Service) project(ctx context.Context, p model.ParameterSet, scenario string) ([]byte, error) {
	fp, err := p.Fingerprint()
	if err != nil {
		return nil, fmt.Errorf("fingerprinting parameters: %w", err)
	}

	data, ok, err := s.cache.Get(ctx, fp)
	if err != nil {
		s.recordError(fmt.Errorf("cache get: %w", err))
	}
	if ok {
		s.mu.Lock()
		s.cacheHits++
		s.mu.Unlock()
		return data, nil
	}

	proj, err := projection.Project(p)
	if err != nil {
		return nil, err
	}
	data, err = json.Marshal(proj)
	if err != nil {
		return nil, fmt.Errorf("encoding projection: %w", err)
	}
	if err := s.cache.Set(ctx, fp, data, s.cfg.CacheTTL); err != nil {
		s.recordError(fmt.Errorf("cache set: %w", err))
	}

	s.mu.Lock()
	s.projections++
	s.nextEventID++
	ev := Event{
		ID:          s.nextEventID,
		Type:        "projection",
		Timestamp:   time.Now(),
		Fingerprint: fp,
		Scenario:    scenario,
		LTV:         proj.Summary.LTV,
		EndingCash:  proj.Rows[len(proj.Rows)-1].CumulativeCash,
	}
	s.mu.Unlock()
	s.publishEvent(ev)

	return data, nil
}

func (s *Service) recordError(err error) {
	log.Printf("mrrcast serve: %v", err)
	s.mu.Lock()
	s.lastError = err.Error()
	s.mu.Unlock()
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		Requests:        s.requests,
		Projections:     s.projections,
		CacheHits:       s.cacheHits,
		CacheTTLSec:     int(s.cfg.CacheTTL.Seconds()),
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleProject(w http.ResponseWriter, r *http.Request) {
	var p model.ParameterSet
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "decoding parameters: " + err.Error()})
		return
	}
	s.serveProjection(w, r, p, "")
}

func (s *Service) handleScenarios(w http.ResponseWriter, _ *http.Request) {
	if s.scenarios == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "scenario store not configured"})
		return
	}
	infos, err := s.scenarios.List()
	if err != nil {
		s.recordError(err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "listing scenarios"})
		return
	}
	if infos == nil {
		infos = []store.ScenarioInfo{}
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Service) handleScenarioProjection(w http.ResponseWriter, r *http.Request) {
	if s.scenarios == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "scenario store not configured"})
		return
	}
	name := r.PathValue("name")
	sc, err := s.scenarios.Get(name)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		s.recordError(err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "loading scenario"})
		return
	}
	s.serveProjection(w, r, sc.Params, name)
}

func (s *Service) serveProjection(w http.ResponseWriter, r *http.Request, p model.ParameterSet, scenario string) {
	data, err := s.project(r.Context(), p, scenario)
	if errors.Is(err, projection.ErrInvalidParameter) {
		resp := errorResponse{Error: "invalid parameters"}
		for _, pe := range projection.ParameterErrors(err) {
			resp.Fields = append(resp.Fields, fieldError{Field: pe.Field, Value: fmt.Sprint(pe.Value), Reason: pe.Reason})
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	if err != nil {
		s.recordError(err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "computing projection"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
