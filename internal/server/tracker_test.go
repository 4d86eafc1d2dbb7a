package server

import (
	"errors"
	"testing"
	"time"

	"github.com/ppiankov/brandlens/internal/model"
)

func TestTracker_Lifecycle(t *testing.T) {
	tr := NewTracker(time.Hour)
	brief := &model.Brief{SessionID: "s1", RunID: "RUN_1", CustomerID: "CUST_1"}

	if !tr.Start(brief) {
		t.Fatal("Expected first start to succeed")
	}
	if tr.Start(brief) {
		t.Error("Expected second start to be rejected while processing")
	}

	tr.Fail("s1", errors.New("boom"))
	s, ok := tr.Get("s1")
	if !ok || s.Status != StatusFailed || s.Error != "boom" {
		t.Errorf("Unexpected status after failure: %+v", s)
	}

	// A finished session may be resubmitted
	if !tr.Start(&model.Brief{SessionID: "s1", RunID: "RUN_2"}) {
		t.Fatal("Expected restart after failure")
	}
	tr.Complete("s1", &model.RunAggregate{VisibilityScore: 10})
	s, _ = tr.Get("s1")
	if s.Status != StatusComplete || s.RunID != "RUN_2" || s.Error != "" || s.Aggregate.VisibilityScore != 10 {
		t.Errorf("Unexpected status after completion: %+v", s)
	}
}

func TestTracker_FinishUnknownIsNoop(t *testing.T) {
	tr := NewTracker(0)
	tr.Complete("missing", &model.RunAggregate{})
	if _, ok := tr.Get("missing"); ok {
		t.Error("Expected no entry for unknown session")
	}
}

func TestTracker_Expiry(t *testing.T) {
	tr := NewTracker(20 * time.Millisecond)
	tr.Start(&model.Brief{SessionID: "s1"})
	time.Sleep(40 * time.Millisecond)
	if _, ok := tr.Get("s1"); ok {
		t.Error("Expected entry to expire")
	}
}
