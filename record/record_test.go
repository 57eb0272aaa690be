package record

import (
	"testing"

	"github.com/signalsfoundry/crowdnav-simulator/model"
)

func TestAddAndGet(t *testing.T) {
	s := NewStore()
	ep := Episode{
		ID:       "ep-1",
		Phase:    model.PhaseTest,
		Scenario: model.ScenarioCircleCrossing,
		Seed:     1042,
		Outcome:  model.EventReachGoal,
		Steps:    37,
		SimTime:  9.25,
		Reward:   1.8,
	}
	if err := s.Add(ep); err != nil {
		t.Fatalf("add: %v", err)
	}

	got := s.Get("ep-1")
	if got == nil {
		t.Fatalf("expected stored episode")
	}
	if *got != ep {
		t.Errorf("stored episode mismatch: got %+v, want %+v", *got, ep)
	}

	// Mutating the returned copy must not touch the store.
	got.Reward = -99
	if s.Get("ep-1").Reward != 1.8 {
		t.Errorf("Get must return a copy")
	}

	if s.Get("no-such") != nil {
		t.Errorf("expected nil for unknown ID")
	}
}

func TestAddRejectsEmptyAndDuplicateIDs(t *testing.T) {
	s := NewStore()
	if err := s.Add(Episode{}); err == nil {
		t.Errorf("expected error for empty ID")
	}
	if err := s.Add(Episode{ID: "ep-1"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(Episode{ID: "ep-1"}); err == nil {
		t.Errorf("expected error for duplicate ID")
	}
}

func TestListPreservesCompletionOrder(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"c", "a", "b"} {
		if err := s.Add(Episode{ID: id}); err != nil {
			t.Fatalf("add %q: %v", id, err)
		}
	}
	got := s.List()
	if len(got) != 3 || s.Len() != 3 {
		t.Fatalf("expected 3 episodes, got %d", len(got))
	}
	for i, want := range []string{"c", "a", "b"} {
		if got[i].ID != want {
			t.Errorf("position %d: got %q, want %q", i, got[i].ID, want)
		}
	}
}

func TestTallyCountsByOutcomeWithinPhase(t *testing.T) {
	s := NewStore()
	add := func(id string, phase model.Phase, outcome model.EventType) {
		t.Helper()
		if err := s.Add(Episode{ID: id, Phase: phase, Outcome: outcome}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	add("1", model.PhaseTest, model.EventReachGoal)
	add("2", model.PhaseTest, model.EventReachGoal)
	add("3", model.PhaseTest, model.EventCollision)
	add("4", model.PhaseTrain, model.EventTimeout)

	tally := s.Tally(model.PhaseTest)
	if tally[model.EventReachGoal] != 2 || tally[model.EventCollision] != 1 {
		t.Errorf("unexpected tally: %v", tally)
	}
	if _, ok := tally[model.EventTimeout]; ok {
		t.Errorf("tally must not leak other phases")
	}
}

func TestSubscribeSeesEveryAdd(t *testing.T) {
	s := NewStore()
	var seen []string
	s.Subscribe(func(e Episode) { seen = append(seen, e.ID) })
	s.Subscribe(func(e Episode) { seen = append(seen, e.ID+"-again") })

	if err := s.Add(Episode{ID: "ep-1"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(seen) != 2 || seen[0] != "ep-1" || seen[1] != "ep-1-again" {
		t.Errorf("unexpected notifications: %v", seen)
	}

	// Failed adds must not notify.
	if err := s.Add(Episode{ID: "ep-1"}); err == nil {
		t.Fatalf("expected duplicate error")
	}
	if len(seen) != 2 {
		t.Errorf("duplicate add must not notify, got %v", seen)
	}
}
