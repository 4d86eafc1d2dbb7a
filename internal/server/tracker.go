package server

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/brandlens/internal/model"
)

// Run states reported by the status endpoint
const (
	StatusProcessing = "processing"
	StatusComplete   = "complete"
	StatusFailed     = "failed"
)

// RunStatus is the status record of one submitted run
type RunStatus struct {
	SessionID  string              `json:"session_id"`
	RunID      string              `json:"run_id"`
	CustomerID string              `json:"customer_id"`
	Status     string              `json:"status"`
	Error      string              `json:"error,omitempty"`
	Aggregate  *model.RunAggregate `json:"aggregate,omitempty"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt *time.Time          `json:"finished_at,omitempty"`
}

// Tracker keeps run statuses keyed by session ID; entries expire after ttl
type Tracker struct {
	mu    sync.Mutex
	cache *gocache.Cache
	now   func() time.Time
}

// NewTracker creates a tracker whose entries live for ttl
func NewTracker(ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Tracker{
		cache: gocache.New(ttl, ttl/2),
		now:   time.Now,
	}
}

// Start records a run as processing. It returns false when the session
// already has a run in progress.
func (t *Tracker) Start(brief *model.Brief) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if v, ok := t.cache.Get(brief.SessionID); ok && v.(RunStatus).Status == StatusProcessing {
		return false
	}

	t.cache.SetDefault(brief.SessionID, RunStatus{
		SessionID:  brief.SessionID,
		RunID:      brief.RunID,
		CustomerID: brief.CustomerID,
		Status:     StatusProcessing,
		StartedAt:  t.now(),
	})
	return true
}

// Complete marks a run finished with its aggregate
func (t *Tracker) Complete(sessionID string, agg *model.RunAggregate) {
	t.finish(sessionID, func(s *RunStatus) {
		s.Status = StatusComplete
		s.Aggregate = agg
	})
}

// Fail marks a run failed
func (t *Tracker) Fail(sessionID string, err error) {
	t.finish(sessionID, func(s *RunStatus) {
		s.Status = StatusFailed
		s.Error = err.Error()
	})
}

func (t *Tracker) finish(sessionID string, update func(*RunStatus)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.cache.Get(sessionID)
	if !ok {
		return
	}
	s := v.(RunStatus)
	update(&s)
	finished := t.now()
	s.FinishedAt = &finished
	t.cache.SetDefault(sessionID, s)
}

// Get returns the status of a session's latest run
func (t *Tracker) Get(sessionID string) (RunStatus, bool) {
	v, ok := t.cache.Get(sessionID)
	if !ok {
		return RunStatus{}, false
	}
	return v.(RunStatus), true
}
