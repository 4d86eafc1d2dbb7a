// Package server exposes brief intake over HTTP: a webhook that starts a run
// in the background and a status endpoint that reports its outcome.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/ppiankov/brandlens/internal/intake"
	"github.com/ppiankov/brandlens/internal/model"
)

const maxBodyBytes = 1 << 20

// Runner runs one brief to completion
type Runner interface {
	RunBrief(ctx context.Context, brief *model.Brief) (*model.RunAggregate, error)
}

// Server accepts briefs and runs them in the background
type Server struct {
	runner  Runner
	tracker *Tracker
	config  model.ServerConfig
	logger  *log.Logger

	// runs outlive the request that started them
	baseCtx context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex // orders wg.Add against Close
	wg      sync.WaitGroup
}

// New creates a server. A nil logger discards output.
func New(runner Runner, cfg model.ServerConfig, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		runner:  runner,
		tracker: NewTracker(cfg.StatusTTL),
		config:  cfg,
		logger:  logger,
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// Router returns the HTTP handler with every endpoint mounted
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/runs", s.CreateRun).Methods("POST")
	v1.HandleFunc("/runs/{sessionID}", s.GetRun).Methods("GET")

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	return r
}

// CreateRun handles POST /v1/runs
func (s *Server) CreateRun(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	brief, err := intake.ParseWebhook(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !s.begin() {
		writeError(w, http.StatusServiceUnavailable, "server is shutting down")
		return
	}

	if !s.tracker.Start(brief) {
		s.wg.Done()
		writeError(w, http.StatusConflict, fmt.Sprintf("session %s already has a run in progress", brief.SessionID))
		return
	}

	s.logger.Printf("Accepted run %s for %s (session %s, %d questions)",
		brief.RunID, brief.BrandName, brief.SessionID, len(brief.Questions))

	go s.execute(brief)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":      StatusProcessing,
		"session_id":  brief.SessionID,
		"run_id":      brief.RunID,
		"customer_id": brief.CustomerID,
	})
}

// begin reserves a slot for a background run; false once Close has started
func (s *Server) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.baseCtx.Err() != nil {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *Server) execute(brief *model.Brief) {
	defer s.wg.Done()

	ctx := s.baseCtx
	if s.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RunTimeout)
		defer cancel()
	}

	start := time.Now()
	agg, err := s.runner.RunBrief(ctx, brief)
	if err != nil {
		s.logger.Printf("Run %s failed: %v", brief.RunID, err)
		s.tracker.Fail(brief.SessionID, err)
		return
	}

	s.logger.Printf("Run %s complete in %s (visibility %.1f)", brief.RunID, time.Since(start).Round(time.Millisecond), agg.VisibilityScore)
	s.tracker.Complete(brief.SessionID, agg)
}

// GetRun handles GET /v1/runs/{sessionID}
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionID"]

	status, ok := s.tracker.Get(sessionID)
	if !ok {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// ListenAndServe serves until ctx is done, then shuts down gracefully,
// gives in-flight runs the rest of the 30s budget and cancels the remainder
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("Server starting on %s", s.config.Addr)
		s.logger.Println("Endpoints:")
		s.logger.Println("  POST /v1/runs")
		s.logger.Println("  GET  /v1/runs/{session_id}")
		s.logger.Println("  GET  /healthz")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if !s.Drain(shutdownCtx) {
		s.logger.Println("Cancelling runs still in flight")
	}
	s.Close()
	s.logger.Println("Server exited")
	return err
}

// Close cancels in-flight runs and waits for them to record their status
func (s *Server) Close() {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()
	s.wg.Wait()
}

// Drain waits for background runs until ctx is done and reports whether
// every run finished
func (s *Server) Drain(ctx context.Context) bool {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
