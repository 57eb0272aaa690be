package core

import (
	"reflect"
	"testing"

	"github.com/signalsfoundry/crowdnav-simulator/model"
)

func TestSeedState_OffsetsDisjoint(t *testing.T) {
	s := NewSeedState(0, CaseCapacity{Val: 1000, Test: 1000, Train: 100000})

	if got := s.Offset(model.PhaseVal); got != 0 {
		t.Errorf("val offset: got %d, want 0", got)
	}
	if got := s.Offset(model.PhaseTest); got != 1000 {
		t.Errorf("test offset: got %d, want 1000", got)
	}
	if got := s.Offset(model.PhaseTrain); got != 2000 {
		t.Errorf("train offset: got %d, want 2000", got)
	}
}

func TestSeedState_AdvanceWraps(t *testing.T) {
	s := NewSeedState(7, CaseCapacity{Val: 5, Test: 5, Train: 5})
	s.Advance(model.PhaseTest, 3)
	s.Advance(model.PhaseTest, 3)
	if got := s.Counter(model.PhaseTest); got != 1 {
		t.Errorf("counter after 6 advances over capacity 5: got %d, want 1", got)
	}
	// Seed = offset + counter + base.
	if got := s.Seed(model.PhaseTest); got != 5+1+7 {
		t.Errorf("seed: got %d, want 13", got)
	}
}

func TestSeedState_SetCounterWrapsNegatives(t *testing.T) {
	s := NewSeedState(0, CaseCapacity{Val: 10, Test: 10, Train: 10})
	s.SetCounter(model.PhaseVal, -3)
	if got := s.Counter(model.PhaseVal); got != 7 {
		t.Errorf("negative test case must wrap into capacity: got %d, want 7", got)
	}
}

func testConfig() Config {
	cfg := Config{}
	cfg.Sim.HumanNum = 5
	return cfg.ApplyDefaults()
}

func TestGenerate_CounterAdvancesByNumEnvs(t *testing.T) {
	cfg := testConfig()
	cfg.Sim.NumEnvs = 4
	g := NewScenarioGenerator(cfg, NewSeedState(cfg.Sim.BaseSeed, cfg.Sim.CaseCapacity))

	for i := 0; i < 3; i++ {
		if _, err := g.Generate(model.PhaseTrain, nil); err != nil {
			t.Fatalf("generate: %v", err)
		}
	}
	if got := g.Seeds().Counter(model.PhaseTrain); got != 12 {
		t.Errorf("counter after 3 resets with 4 envs: got %d, want 12", got)
	}
}

func TestGenerate_SameTestCaseReproduces(t *testing.T) {
	cfg := testConfig()
	g := NewScenarioGenerator(cfg, NewSeedState(cfg.Sim.BaseSeed, cfg.Sim.CaseCapacity))

	tc := 42
	first, err := g.Generate(model.PhaseTest, &tc)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	// Intervening episodes move the counter; pinning the case must rewind it.
	if _, err := g.Generate(model.PhaseTest, nil); err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := g.Generate(model.PhaseTest, &tc)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if first.Seed != second.Seed {
		t.Fatalf("seeds differ: %d vs %d", first.Seed, second.Seed)
	}
	if !reflect.DeepEqual(first.Robot, second.Robot) {
		t.Errorf("robot states differ for the same test case")
	}
	if !reflect.DeepEqual(first.Humans, second.Humans) {
		t.Errorf("human states differ for the same test case")
	}
}

func TestGenerate_DeterministicEvalCycles(t *testing.T) {
	cfg := testConfig()
	cfg.Sim.DeterministicEval = true
	set := cfg.Sim.Scenarios[model.PhaseTest]
	if len(set) != 4 {
		t.Fatalf("default test phase must carry 4 scenarios, got %d", len(set))
	}
	g := NewScenarioGenerator(cfg, NewSeedState(cfg.Sim.BaseSeed, cfg.Sim.CaseCapacity))
	g.ScenarioCounter = 5

	setup, err := g.Generate(model.PhaseTest, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if setup.Scenario != set[1] {
		t.Errorf("counter 5 must pick set[1]=%q, got %q", set[1], setup.Scenario)
	}
	if g.ScenarioCounter != 6 {
		t.Errorf("scenario counter must advance, got %d", g.ScenarioCounter)
	}
}

func TestGenerate_DeterministicEvalRequiresFourScenarios(t *testing.T) {
	cfg := testConfig()
	cfg.Sim.DeterministicEval = true
	cfg.Sim.Scenarios[model.PhaseTest] = []model.Scenario{model.ScenarioCircleCrossing}
	g := NewScenarioGenerator(cfg, NewSeedState(cfg.Sim.BaseSeed, cfg.Sim.CaseCapacity))

	if _, err := g.Generate(model.PhaseTest, nil); err == nil {
		t.Errorf("expected error for a deterministic set that is not exactly 4 scenarios")
	}
}

func TestGenerate_RejectsUnknownPhase(t *testing.T) {
	cfg := testConfig()
	g := NewScenarioGenerator(cfg, NewSeedState(0, cfg.Sim.CaseCapacity))
	if _, err := g.Generate(model.Phase("deploy"), nil); err == nil {
		t.Errorf("expected error for unknown phase")
	}
}

func TestGenerate_PlacementsDoNotOverlap(t *testing.T) {
	cfg := testConfig()
	g := NewScenarioGenerator(cfg, NewSeedState(cfg.Sim.BaseSeed, cfg.Sim.CaseCapacity))

	setup, err := g.Generate(model.PhaseTrain, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(setup.Humans) != cfg.Sim.HumanNum {
		t.Fatalf("expected %d humans, got %d", cfg.Sim.HumanNum, len(setup.Humans))
	}

	all := append([]model.AgentState{setup.Robot}, setup.Humans...)
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			d := Vec2{X: all[i].PX - all[j].PX, Y: all[i].PY - all[j].PY}.Norm()
			if d < all[i].Radius+all[j].Radius {
				t.Errorf("agents %d and %d start overlapping at distance %v", i, j, d)
			}
		}
	}
}

func TestGenerate_RobotCrossesCircle(t *testing.T) {
	cfg := testConfig()
	g := NewScenarioGenerator(cfg, NewSeedState(cfg.Sim.BaseSeed, cfg.Sim.CaseCapacity))

	setup, err := g.Generate(model.PhaseTrain, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	r := cfg.Sim.CircleRadius
	if setup.Robot.PY != -r || setup.Robot.GY != r {
		t.Errorf("robot must cross from (0,-R) to (0,R), got start y=%v goal y=%v", setup.Robot.PY, setup.Robot.GY)
	}
}
