package core

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/signalsfoundry/crowdnav-simulator/model"
)

// SeedState owns the per-phase case counters that turn an episode index into
// a reproducible random seed. It is created once per training session and
// persists across resets; evaluation runs may inspect or rewind it.
type SeedState struct {
	baseSeed int64
	capacity CaseCapacity
	counters map[model.Phase]int
}

// NewSeedState builds seed bookkeeping for the given base seed and capacities.
func NewSeedState(baseSeed int64, capacity CaseCapacity) *SeedState {
	return &SeedState{
		baseSeed: baseSeed,
		capacity: capacity,
		counters: map[model.Phase]int{
			model.PhaseTrain: 0,
			model.PhaseVal:   0,
			model.PhaseTest:  0,
		},
	}
}

// Offset returns the phase's seed offset. Val episodes start at zero, test
// episodes after val's full capacity, and train after val+test, so the three
// seed ranges are pairwise disjoint.
func (s *SeedState) Offset(phase model.Phase) int {
	switch phase {
	case model.PhaseVal:
		return 0
	case model.PhaseTest:
		return s.capacity.Val
	default:
		return s.capacity.Val + s.capacity.Test
	}
}

// Capacity returns the phase's case capacity.
func (s *SeedState) Capacity(phase model.Phase) int {
	switch phase {
	case model.PhaseVal:
		return s.capacity.Val
	case model.PhaseTest:
		return s.capacity.Test
	default:
		return s.capacity.Train
	}
}

// Counter returns the phase's current case counter.
func (s *SeedState) Counter(phase model.Phase) int {
	return s.counters[phase]
}

// SetCounter pins the phase's case counter, wrapping into capacity. Used to
// replay a specific test case.
func (s *SeedState) SetCounter(phase model.Phase, v int) {
	size := s.Capacity(phase)
	v %= size
	if v < 0 {
		v += size
	}
	s.counters[phase] = v
}

// Seed derives the episode seed for the phase's current counter.
func (s *SeedState) Seed(phase model.Phase) int64 {
	return int64(s.Offset(phase)) + int64(s.counters[phase]) + s.baseSeed
}

// Advance moves the phase's counter forward by n cases, modulo capacity.
func (s *SeedState) Advance(phase model.Phase, n int) {
	s.counters[phase] = (s.counters[phase] + n) % s.Capacity(phase)
}

// EpisodeSetup is one generated episode: the chosen scenario, the seed it was
// drawn from, initial agent states (velocities zeroed), and the episode's
// random source for any in-episode randomness (goal changes, policy draws).
type EpisodeSetup struct {
	Scenario model.Scenario
	Seed     int64
	Robot    model.AgentState
	Humans   []model.AgentState
	Rng      *rand.Rand
}

// ScenarioGenerator instantiates initial agent states from per-phase scenario
// sets, deterministically given the seed state.
type ScenarioGenerator struct {
	cfg   Config
	seeds *SeedState

	// ScenarioCounter drives round-robin scenario selection when
	// deterministic evaluation is enabled. It increments on every Generate.
	ScenarioCounter int
}

// NewScenarioGenerator builds a generator over externally owned seed state.
func NewScenarioGenerator(cfg Config, seeds *SeedState) *ScenarioGenerator {
	return &ScenarioGenerator{cfg: cfg, seeds: seeds}
}

// Seeds exposes the underlying seed state for inspection and replay control.
func (g *ScenarioGenerator) Seeds() *SeedState { return g.seeds }

// Generate produces the next episode for the phase. A non-nil testCase pins
// the case counter first, so the same case always reproduces the same states.
func (g *ScenarioGenerator) Generate(phase model.Phase, testCase *int) (*EpisodeSetup, error) {
	if !phase.Valid() {
		return nil, fmt.Errorf("unknown phase %q", phase)
	}
	set := g.cfg.Sim.Scenarios[phase]
	if len(set) == 0 {
		return nil, fmt.Errorf("no scenarios configured for phase %q", phase)
	}

	if testCase != nil {
		g.seeds.SetCounter(phase, *testCase)
	}
	seed := g.seeds.Seed(phase)
	rng := rand.New(rand.NewSource(seed))

	var scenario model.Scenario
	if g.cfg.Sim.DeterministicEval {
		// Strict evaluation contract: the cycling set has exactly four
		// scenarios, visited in order.
		if len(set) != 4 {
			return nil, fmt.Errorf("deterministic evaluation requires exactly 4 scenarios for phase %q, got %d", phase, len(set))
		}
		scenario = set[g.ScenarioCounter%4]
	} else {
		scenario = set[rng.Intn(len(set))]
	}

	setup := &EpisodeSetup{
		Scenario: scenario,
		Seed:     seed,
		Rng:      rng,
	}
	setup.Robot = g.robotState()
	setup.Humans = g.humanStates(scenario, setup.Robot, rng)

	g.seeds.Advance(phase, g.cfg.Sim.NumEnvs)
	g.ScenarioCounter++
	return setup, nil
}

// robotState places the robot at the bottom of the crossing circle, headed up
// toward a goal on the far side.
func (g *ScenarioGenerator) robotState() model.AgentState {
	r := g.cfg.Sim.CircleRadius
	return model.AgentState{
		PX: 0, PY: -r,
		GX: 0, GY: r,
		Theta:      math.Pi / 2,
		Radius:     g.cfg.Robot.Radius,
		VPref:      g.cfg.Robot.VPref,
		Kinematics: g.cfg.Robot.Kinematics,
	}
}

func (g *ScenarioGenerator) humanStates(scenario model.Scenario, robot model.AgentState, rng *rand.Rand) []model.AgentState {
	humans := make([]model.AgentState, 0, g.cfg.Sim.HumanNum)
	for i := 0; i < g.cfg.Sim.HumanNum; i++ {
		humans = append(humans, g.placeHuman(scenario, robot, humans, rng))
	}
	return humans
}

// placeHuman samples start and goal positions for one human, rejecting
// placements that overlap the robot or already placed humans.
func (g *ScenarioGenerator) placeHuman(scenario model.Scenario, robot model.AgentState, placed []model.AgentState, rng *rand.Rand) model.AgentState {
	h := model.AgentState{
		Radius:     g.cfg.Humans.Radius,
		VPref:      g.cfg.Humans.VPref,
		Kinematics: model.KinematicsHolonomic,
	}

	for {
		switch scenario {
		case model.ScenarioSquareCrossing:
			w := g.cfg.Sim.SquareWidth
			sign := 1.0
			if rng.Float64() < 0.5 {
				sign = -1.0
			}
			h.PX = sign * (rng.Float64() * w / 2)
			h.PY = (rng.Float64() - 0.5) * w
			h.GX = -sign * (rng.Float64() * w / 2)
			h.GY = (rng.Float64() - 0.5) * w
		case model.ScenarioParallelTraffic:
			w := g.cfg.Sim.SquareWidth
			h.PX = 1 + rng.Float64()*(w/2-1)
			h.PY = (rng.Float64() - 0.5) * 4
			h.GX = -h.PX
			h.GY = h.PY
		case model.ScenarioPerpendicularTraffic:
			w := g.cfg.Sim.SquareWidth
			sign := 1.0
			if rng.Float64() < 0.5 {
				sign = -1.0
			}
			h.PX = (rng.Float64() - 0.5) * w
			h.PY = sign * (1 + rng.Float64()*(w/2-1))
			h.GX = h.PX
			h.GY = -h.PY
		default: // circle crossing
			r := g.cfg.Sim.CircleRadius
			angle := rng.Float64() * 2 * math.Pi
			// Small perturbation so agents do not start perfectly symmetric.
			noiseX := (rng.Float64() - 0.5) * h.VPref
			noiseY := (rng.Float64() - 0.5) * h.VPref
			h.PX = r*math.Cos(angle) + noiseX
			h.PY = r*math.Sin(angle) + noiseY
			h.GX = -h.PX
			h.GY = -h.PY
		}

		if g.placementFree(h, robot, placed) {
			break
		}
	}

	h.Theta = Vec2{X: h.GX - h.PX, Y: h.GY - h.PY}.Heading()
	return h
}

func (g *ScenarioGenerator) placementFree(h, robot model.AgentState, placed []model.AgentState) bool {
	const margin = 0.2
	others := append([]model.AgentState{robot}, placed...)
	for _, o := range others {
		minDist := h.Radius + o.Radius + margin
		start := Vec2{X: h.PX - o.PX, Y: h.PY - o.PY}.Norm()
		goal := Vec2{X: h.GX - o.GX, Y: h.GY - o.GY}.Norm()
		if start < minDist || goal < minDist {
			return false
		}
	}
	return true
}

// RandomGoal samples a fresh goal inside the placement square. Used by the
// episode loop when goal mutation flags are enabled.
func (g *ScenarioGenerator) RandomGoal(rng *rand.Rand) (float64, float64) {
	w := g.cfg.Sim.SquareWidth
	return (rng.Float64() - 0.5) * w, (rng.Float64() - 0.5) * w
}

// RandomHumanPolicy draws one of the human policy variants for per-episode
// policy re-randomization.
func (g *ScenarioGenerator) RandomHumanPolicy(rng *rand.Rand, walls []Segment) Policy {
	if rng.Float64() < 0.5 {
		return NewReciprocalPolicy()
	}
	return NewSocialForcePolicy(walls)
}
