package core

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/signalsfoundry/crowdnav-simulator/model"
)

// internal JSON shapes – kept unexported so the wire format can evolve
// independently of the Config structs. Absent fields fall back to defaults.
type configJSON struct {
	Sim    *simJSON    `json:"sim"`
	Reward *rewardJSON `json:"reward"`
	Robot  *robotJSON  `json:"robot"`
	Humans *humanJSON  `json:"humans"`
	Lidar  *lidarJSON  `json:"lidar"`
}

type simJSON struct {
	TimeStep  float64 `json:"time_step"`
	TimeLimit float64 `json:"time_limit"`
	HumanNum  int     `json:"human_num"`
	NumEnvs   int     `json:"num_envs"`
	BaseSeed  int64   `json:"base_seed"`

	CaseCapacity *caseCapacityJSON   `json:"case_capacity"`
	Scenarios    map[string][]string `json:"scenarios"`

	DeterministicEval bool `json:"deterministic_eval"`

	CircleRadius  float64 `json:"circle_radius"`
	SquareWidth   float64 `json:"square_width"`
	ArenaHalfSize float64 `json:"arena_half_size"`

	RandomGoalChanging   bool    `json:"random_goal_changing"`
	GoalChangePeriod     float64 `json:"goal_change_period"`
	EndGoalChanging      bool    `json:"end_goal_changing"`
	RandomPolicyChanging bool    `json:"random_policy_changing"`
}

type caseCapacityJSON struct {
	Val   int `json:"val"`
	Test  int `json:"test"`
	Train int `json:"train"`
}

type rewardJSON struct {
	SuccessReward           float64 `json:"success_reward"`
	CollisionPenalty        float64 `json:"collision_penalty"`
	DiscomfortDist          float64 `json:"discomfort_dist"`
	DiscomfortPenaltyFactor float64 `json:"discomfort_penalty_factor"`
	TimePenalty             float64 `json:"time_penalty"`
	PotentialWeight         float64 `json:"potential_weight"`
}

type robotJSON struct {
	Policy      string  `json:"policy"`
	Kinematics  string  `json:"kinematics"` // "holonomic" | "unicycle"
	Radius      float64 `json:"radius"`
	VPref       float64 `json:"v_pref"`
	FOV         float64 `json:"fov"`
	SensorRange float64 `json:"sensor_range"`
}

type humanJSON struct {
	Policy      string  `json:"policy"`
	Radius      float64 `json:"radius"`
	VPref       float64 `json:"v_pref"`
	FOV         float64 `json:"fov"`
	SensorRange float64 `json:"sensor_range"`
}

type lidarJSON struct {
	NumBeams int     `json:"num_beams"`
	MaxRange float64 `json:"max_range"`
}

// LoadConfig reads a JSON configuration from r, fills the gaps with defaults,
// and validates the result. Structural errors and unknown names fail here, so
// a bad file never reaches the episode loop.
func LoadConfig(r io.Reader) (Config, error) {
	var payload configJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return Config{}, fmt.Errorf("load config: decode failed: %w", err)
	}

	var cfg Config
	if s := payload.Sim; s != nil {
		cfg.Sim.TimeStep = s.TimeStep
		cfg.Sim.TimeLimit = s.TimeLimit
		cfg.Sim.HumanNum = s.HumanNum
		cfg.Sim.NumEnvs = s.NumEnvs
		cfg.Sim.BaseSeed = s.BaseSeed
		if s.CaseCapacity != nil {
			cfg.Sim.CaseCapacity = CaseCapacity{
				Val:   s.CaseCapacity.Val,
				Test:  s.CaseCapacity.Test,
				Train: s.CaseCapacity.Train,
			}
		}
		if s.Scenarios != nil {
			cfg.Sim.Scenarios = make(map[model.Phase][]model.Scenario, len(s.Scenarios))
			for phase, names := range s.Scenarios {
				set := make([]model.Scenario, len(names))
				for i, name := range names {
					set[i] = model.Scenario(name)
				}
				cfg.Sim.Scenarios[model.Phase(phase)] = set
			}
		}
		cfg.Sim.DeterministicEval = s.DeterministicEval
		cfg.Sim.CircleRadius = s.CircleRadius
		cfg.Sim.SquareWidth = s.SquareWidth
		cfg.Sim.ArenaHalfSize = s.ArenaHalfSize
		cfg.Sim.RandomGoalChanging = s.RandomGoalChanging
		cfg.Sim.GoalChangePeriod = s.GoalChangePeriod
		cfg.Sim.EndGoalChanging = s.EndGoalChanging
		cfg.Sim.RandomPolicyChanging = s.RandomPolicyChanging
	}
	if w := payload.Reward; w != nil {
		cfg.Reward = RewardConfig{
			SuccessReward:           w.SuccessReward,
			CollisionPenalty:        w.CollisionPenalty,
			DiscomfortDist:          w.DiscomfortDist,
			DiscomfortPenaltyFactor: w.DiscomfortPenaltyFactor,
			TimePenalty:             w.TimePenalty,
			PotentialWeight:         w.PotentialWeight,
		}
	}
	if rb := payload.Robot; rb != nil {
		kin, err := kinematicsFromString(rb.Kinematics)
		if err != nil {
			return Config{}, fmt.Errorf("load config: robot: %w", err)
		}
		cfg.Robot = RobotConfig{
			Policy:      rb.Policy,
			Kinematics:  kin,
			Radius:      rb.Radius,
			VPref:       rb.VPref,
			FOV:         rb.FOV,
			SensorRange: rb.SensorRange,
		}
	}
	if h := payload.Humans; h != nil {
		cfg.Humans = HumanConfig{
			Policy:      h.Policy,
			Radius:      h.Radius,
			VPref:       h.VPref,
			FOV:         h.FOV,
			SensorRange: h.SensorRange,
		}
	}
	if l := payload.Lidar; l != nil {
		cfg.Lidar = LidarConfig{NumBeams: l.NumBeams, MaxRange: l.MaxRange}
	}

	cfg = cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func kinematicsFromString(s string) (model.Kinematics, error) {
	switch s {
	case "", "holonomic":
		return model.KinematicsHolonomic, nil
	case "unicycle":
		return model.KinematicsUnicycle, nil
	default:
		return 0, fmt.Errorf("unknown kinematics %q", s)
	}
}
