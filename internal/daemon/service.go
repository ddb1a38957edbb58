// Package daemon provides the long-running background ledger monitor service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/theirongolddev/gemledger/internal/config"
	"github.com/theirongolddev/gemledger/internal/model"
	"github.com/theirongolddev/gemledger/internal/pipeline"
	"github.com/theirongolddev/gemledger/internal/store"
)

// Config controls the daemon runtime behavior.
type Config struct {
	DBPath string
	// ImportDir, when set, is imported incrementally before every poll.
	ImportDir    string
	Options      pipeline.ReportOptions
	Economy      config.Economy
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	Logger       zerolog.Logger
}

// Snapshot is a compact ledger state for status/event payloads.
type Snapshot struct {
	At                   time.Time `json:"at"`
	Balance              int64     `json:"balance"`
	BalanceWithPurchases int64     `json:"balance_with_purchases"`
	AvailablePulls       int64     `json:"available_pulls"`
	DailyRate            float64   `json:"daily_rate"`
	RateSource           string    `json:"rate_source"`
	ProjectedBalance     int64     `json:"projected_balance"`
	DaysToPity           int       `json:"days_to_pity"`
	Snapshots            int       `json:"snapshots"`
	Pulls                int       `json:"pulls"`
	Entries              int       `json:"entries"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Balance   int64   `json:"balance"`
	Snapshots int     `json:"snapshots"`
	Pulls     int     `json:"pulls"`
	Entries   int     `json:"entries"`
	DailyRate float64 `json:"daily_rate"`
}

func (d Delta) isZero() bool {
	return d.Balance == 0 &&
		d.Snapshots == 0 &&
		d.Pulls == 0 &&
		d.Entries == 0 &&
		d.DailyRate == 0
}

// Event is emitted whenever the ledger snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DBPath          string    `json:"db_path"`
	ImportDir       string    `json:"import_dir,omitempty"`
	LookbackDays    int       `json:"lookback_days"`
	ProjectionDays  int       `json:"projection_days"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg  Config
	log  zerolog.Logger
	now  func() time.Time
	load func() (model.Dataset, error)

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	report      *pipeline.Report
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}

	s := &Service{
		cfg:       cfg,
		log:       cfg.Logger.With().Str("component", "daemon").Logger(),
		now:       time.Now,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	s.load = s.loadFromStore
	return s
}

// Handler returns the daemon's HTTP routes.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	mux.HandleFunc("/v1/chart", s.handleChart)
	mux.HandleFunc("/v1/trends", s.handleTrends)
	mux.HandleFunc("/v1/log", s.handleLog)
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
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce() {
	start := s.now()
	ds, err := s.load()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = start
		s.pollCount++
		s.mu.Unlock()
		s.log.Error().Err(err).Msg("poll failed")
		return
	}

	now := s.now()
	report := pipeline.BuildReport(ds, s.cfg.Options, now, s.cfg.Economy)
	snap := snapshotFromReport(report, ds, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.report = &report
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "snapshot",
			Timestamp: now,
			Snapshot:  snap,
		}
		publish = true
	} else {
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() {
			s.nextEventID++
			ev = Event{
				ID:        s.nextEventID,
				Type:      "ledger_delta",
				Timestamp: now,
				Snapshot:  snap,
				Delta:     delta,
			}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}

	s.log.Debug().
		Dur("took", s.now().Sub(start)).
		Int64("balance", snap.Balance).
		Bool("changed", publish).
		Msg("poll complete")
}

// loadFromStore opens the ledger for the duration of one poll so the CLI
// can write to it between polls.
func (s *Service) loadFromStore() (model.Dataset, error) {
	st, err := store.Open(s.cfg.DBPath)
	if err != nil {
		return model.Dataset{}, err
	}
	defer func() { _ = st.Close() }()

	if s.cfg.ImportDir != "" {
		res, err := pipeline.Import(s.cfg.ImportDir, st, s.log, nil)
		if err != nil {
			return model.Dataset{}, fmt.Errorf("importing %s: %w", s.cfg.ImportDir, err)
		}
		if res.Imported > 0 {
			s.log.Info().
				Int("files", res.Imported).
				Int("pulls", res.NewPulls).
				Int("snapshots", res.NewSnapshots).
				Msg("imported exports")
		}
	}

	return st.LoadDataset()
}

func snapshotFromReport(r pipeline.Report, ds model.Dataset, at time.Time) Snapshot {
	snap := Snapshot{
		At:               at,
		Balance:          r.Outlook.Balance,
		AvailablePulls:   r.Outlook.AvailablePulls,
		DailyRate:        r.Rate.DailyRate,
		RateSource:       string(r.Rate.Source),
		ProjectedBalance: r.Outlook.ProjectedBalance,
		DaysToPity:       r.Outlook.DaysToPity,
		Snapshots:        len(ds.Snapshots),
		Pulls:            len(ds.Pulls),
		Entries:          len(ds.Purchases),
	}
	if n := len(r.History); n > 0 {
		snap.BalanceWithPurchases = r.History[n-1].BalanceWithPurchases
	}
	return snap
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Balance:   curr.Balance - prev.Balance,
		Snapshots: curr.Snapshots - prev.Snapshots,
		Pulls:     curr.Pulls - prev.Pulls,
		Entries:   curr.Entries - prev.Entries,
		DailyRate: curr.DailyRate - prev.DailyRate,
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
		ImportDir:       s.cfg.ImportDir,
		LookbackDays:    s.cfg.Options.LookbackDays,
		ProjectionDays:  s.cfg.Options.ProjectionDays,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) currentReport() *pipeline.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, events)
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
		Type:      "snapshot",
		Timestamp: s.now(),
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

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
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
