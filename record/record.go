// Package record keeps an in-memory, thread-safe log of completed episodes
// so evaluation runs can be inspected and aggregated after the fact.
package record

import (
	"fmt"
	"sync"

	"github.com/signalsfoundry/crowdnav-simulator/model"
)

// Episode is the durable summary of one finished episode.
type Episode struct {
	ID       string
	Phase    model.Phase
	Scenario model.Scenario
	Seed     int64
	Outcome  model.EventType
	Steps    int
	SimTime  float64
	Reward   float64
}

// Store is an in-memory, thread-safe store of episode results. Subscribers
// are notified on every completed episode, which is how external sinks
// (metrics, logs) hang off the store without the simulator knowing them.
type Store struct {
	mu sync.RWMutex

	episodes map[string]*Episode
	order    []string

	subs []func(Episode)
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{episodes: make(map[string]*Episode)}
}

// Subscribe registers a callback invoked for every added episode.
// Callbacks run synchronously under no lock; they must not call back into
// the store's mutators.
func (s *Store) Subscribe(fn func(Episode)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Add stores a completed episode. It returns an error if the ID is empty or
// already present.
func (s *Store) Add(e Episode) error {
	if e.ID == "" {
		return fmt.Errorf("episode with empty ID")
	}

	s.mu.Lock()
	if _, exists := s.episodes[e.ID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("episode with ID %q already exists", e.ID)
	}
	stored := e
	s.episodes[e.ID] = &stored
	s.order = append(s.order, e.ID)
	subs := make([]func(Episode), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(e)
	}
	return nil
}

// Get returns the episode with the given ID, or nil if not found.
func (s *Store) Get(id string) *Episode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.episodes[id]; ok {
		out := *e
		return &out
	}
	return nil
}

// List returns a snapshot of all episodes in completion order.
func (s *Store) List() []Episode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Episode, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.episodes[id])
	}
	return out
}

// Len returns the number of stored episodes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Tally counts stored episodes by outcome for one phase.
func (s *Store) Tally(phase model.Phase) map[model.EventType]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[model.EventType]int)
	for _, e := range s.episodes {
		if e.Phase == phase {
			out[e.Outcome]++
		}
	}
	return out
}
