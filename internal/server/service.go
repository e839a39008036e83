// Package server provides the local HTTP API: funding plans, trip
// comparisons and a live event stream of trip changes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/palmvoyage/tripfund/internal/estimate"
	"github.com/palmvoyage/tripfund/internal/model"
	"github.com/palmvoyage/tripfund/internal/pipeline"
	"github.com/palmvoyage/tripfund/internal/planner"
	"github.com/palmvoyage/tripfund/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Config controls the server runtime behavior.
type Config struct {
	Addr         string
	Interval     time.Duration
	EventsBuffer int
	DBPath       string
	Planner      *planner.Planner
	// Today returns the current date. Defaults to estimate.Today.
	Today func() time.Time
	Log   *zap.Logger
}

// Snapshot is a compact portfolio state for status/event payloads.
type Snapshot struct {
	At           time.Time       `json:"at"`
	Trips        int             `json:"trips"`
	Dated        int             `json:"dated"`
	Planned      int             `json:"planned"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	AverageCost  decimal.Decimal `json:"average_cost"`
	AverageScore float64         `json:"average_score"`
	BestTrip     string          `json:"best_trip,omitempty"`
	BestScore    int             `json:"best_score"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Trips     int             `json:"trips"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// Event is emitted whenever the saved trips change.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Event types.
const (
	EventSnapshot     = "snapshot"
	EventTripsChanged = "trips_changed"
)

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DBPath          string    `json:"db_path"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the server runtime and HTTP API.
type Service struct {
	cfg   Config
	store *store.Store
	log   *zap.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	fingerprint store.Fingerprint
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new service reading trips from st.
func New(cfg Config, st *store.Store) *Service {
	if cfg.Interval < time.Second {
		cfg.Interval = 5 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Planner == nil {
		cfg.Planner = planner.New(planner.DefaultOptions())
	}
	if cfg.Today == nil {
		cfg.Today = estimate.Today
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		cfg:       cfg,
		store:     st,
		log:       log,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP routes of the service.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("POST /v1/plan", s.handlePlan)
	mux.HandleFunc("POST /v1/score", s.handleScore)
	mux.HandleFunc("GET /v1/trips", s.handleTrips)
	mux.HandleFunc("GET /v1/trips/{id}", s.handleTrip)
	mux.HandleFunc("GET /v1/compare", s.handleCompare)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)
	return mux
}

// Run starts HTTP endpoints and polling until ctx is canceled.
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
	s.log.Info("server listening", zap.String("addr", s.cfg.Addr))

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce()
		case err := <-errCh:
			return fmt.Errorf("http server: %w", err)
		}
	}
}

// pollOnce re-reads the trips when the store fingerprint changed and
// publishes an event for the new snapshot.
func (s *Service) pollOnce() {
	now := time.Now()
	fp, err := s.store.Fingerprint()
	if err != nil {
		s.recordPollError(now, err)
		return
	}

	s.mu.RLock()
	unchanged := s.hasSnapshot && fp == s.fingerprint
	s.mu.RUnlock()
	if unchanged {
		s.mu.Lock()
		s.lastPollAt = now
		s.pollCount++
		s.lastError = ""
		s.mu.Unlock()
		return
	}

	summaries, err := pipeline.Load(s.store, s.cfg.Today())
	if err != nil {
		s.recordPollError(now, err)
		return
	}
	snap := snapshotFromTotals(pipeline.Aggregate(summaries), now)
	if len(summaries) > 0 {
		snap.BestTrip = summaries[0].Trip.Name
		snap.BestScore = summaries[0].Score
	}

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.fingerprint = fp
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	s.nextEventID++
	ev := Event{
		ID:        s.nextEventID,
		Type:      EventSnapshot,
		Timestamp: now,
		Snapshot:  snap,
	}
	if prevExists {
		ev.Type = EventTripsChanged
		ev.Delta = diffSnapshots(prev, snap)
	}
	s.mu.Unlock()

	s.log.Debug("trips changed",
		zap.String("event", ev.Type),
		zap.Int("trips", snap.Trips))
	s.publishEvent(ev)
}

func (s *Service) recordPollError(at time.Time, err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.lastPollAt = at
	s.pollCount++
	s.mu.Unlock()
	s.log.Warn("poll failed", zap.Error(err))
}

func snapshotFromTotals(t model.Totals, at time.Time) Snapshot {
	return Snapshot{
		At:           at,
		Trips:        t.Trips,
		Dated:        t.Dated,
		Planned:      t.Planned,
		TotalCost:    t.TotalCost.Round(2),
		AverageCost:  t.AverageCost.Round(2),
		AverageScore: t.AverageScore,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Trips:     curr.Trips - prev.Trips,
		TotalCost: curr.TotalCost.Sub(prev.TotalCost),
	}
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
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DBPath:          s.cfg.DBPath,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
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

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

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

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
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
