package core

import (
	"strings"
	"testing"

	"github.com/signalsfoundry/crowdnav-simulator/model"
)

func TestLoadConfig(t *testing.T) {
	doc := `{
		"sim": {
			"human_num": 8,
			"base_seed": 17,
			"deterministic_eval": true,
			"scenarios": {
				"test": ["circle_crossing", "square_crossing", "parallel_traffic", "perpendicular_traffic"]
			}
		},
		"reward": {"collision_penalty": -0.5},
		"robot": {"policy": "lidar_gru", "kinematics": "unicycle"},
		"lidar": {"num_beams": 90, "max_range": 4}
	}`

	cfg, err := LoadConfig(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Sim.HumanNum != 8 || cfg.Sim.BaseSeed != 17 {
		t.Errorf("sim fields not applied: %+v", cfg.Sim)
	}
	if !cfg.Sim.DeterministicEval {
		t.Errorf("deterministic flag not applied")
	}
	if got := cfg.Sim.Scenarios[model.PhaseTest]; len(got) != 4 {
		t.Errorf("test scenario set not applied: %v", got)
	}
	if cfg.Reward.CollisionPenalty != -0.5 {
		t.Errorf("collision penalty not applied: %v", cfg.Reward.CollisionPenalty)
	}
	if cfg.Robot.Policy != RobotPolicyLidarGRU || cfg.Robot.Kinematics != model.KinematicsUnicycle {
		t.Errorf("robot fields not applied: %+v", cfg.Robot)
	}
	if cfg.Lidar.NumBeams != 90 || cfg.Lidar.MaxRange != 4 {
		t.Errorf("lidar fields not applied: %+v", cfg.Lidar)
	}

	// Gaps fall back to defaults.
	if cfg.Sim.TimeStep != 0.25 || cfg.Reward.SuccessReward != 1 {
		t.Errorf("defaults not applied for absent fields")
	}
}

func TestLoadConfig_EmptyDocumentIsAllDefaults(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := DefaultConfig()
	if cfg.Sim.TimeStep != want.Sim.TimeStep || cfg.Sim.HumanNum != want.Sim.HumanNum {
		t.Errorf("empty document must yield defaults")
	}
}

func TestLoadConfig_RejectsMalformedJSON(t *testing.T) {
	if _, err := LoadConfig(strings.NewReader(`{"sim": `)); err == nil {
		t.Errorf("expected decode error")
	}
}

func TestLoadConfig_RejectsUnknownNames(t *testing.T) {
	if _, err := LoadConfig(strings.NewReader(`{"robot": {"kinematics": "hovercraft"}}`)); err == nil {
		t.Errorf("expected error for unknown kinematics")
	}
	if _, err := LoadConfig(strings.NewReader(`{"humans": {"policy": "teleport"}}`)); err == nil {
		t.Errorf("expected validation error for unknown human policy")
	}
	if _, err := LoadConfig(strings.NewReader(`{"sim": {"scenarios": {"test": ["moshpit"]}}}`)); err == nil {
		t.Errorf("expected validation error for unknown scenario")
	}
}
