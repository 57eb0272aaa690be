package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/crowdnav-simulator/model"
)

// CaseCapacity fixes how many distinct episodes each phase can generate.
// The per-phase seed offsets are derived from these, so val, test, and train
// episodes never share a seed.
type CaseCapacity struct {
	Val   int
	Test  int
	Train int
}

// SimConfig governs the episode loop and scenario generation.
type SimConfig struct {
	// TimeStep is the integration interval in seconds.
	TimeStep float64
	// TimeLimit bounds episode length in seconds of simulation time.
	TimeLimit float64
	// HumanNum is how many humans share the arena with the robot.
	HumanNum int
	// NumEnvs is the number of parallel environment instances the trainer
	// runs; the case counter advances by this much per reset.
	NumEnvs int
	// BaseSeed shifts every derived episode seed by a constant.
	BaseSeed int64

	CaseCapacity CaseCapacity
	// Scenarios lists the templates each phase samples from.
	Scenarios map[model.Phase][]model.Scenario
	// DeterministicEval cycles through a fixed four-scenario set in order
	// instead of sampling. Strict: the active set must have exactly four
	// entries.
	DeterministicEval bool

	// CircleRadius is the placement circle for circle-crossing scenarios.
	CircleRadius float64
	// SquareWidth is the placement square for square-crossing scenarios.
	SquareWidth float64
	// ArenaHalfSize is half the side of the square wall boundary.
	ArenaHalfSize float64

	// RandomGoalChanging periodically reassigns every human's goal.
	RandomGoalChanging bool
	// GoalChangePeriod is the interval, in seconds, between random goal
	// reassignments when RandomGoalChanging is on.
	GoalChangePeriod float64
	// EndGoalChanging gives a human a fresh goal once it reaches its
	// current one.
	EndGoalChanging bool
	// RandomPolicyChanging re-randomizes each human's policy per episode.
	RandomPolicyChanging bool
}

// RewardConfig is the tunable weighting of the reward terms. The structure
// of the reward (potential shaping, collision penalty, goal bonus, time
// penalty) is fixed; only the weights move.
type RewardConfig struct {
	SuccessReward           float64
	CollisionPenalty        float64
	DiscomfortDist          float64
	DiscomfortPenaltyFactor float64
	TimePenalty             float64
	PotentialWeight         float64
}

// RobotConfig describes the externally driven robot.
type RobotConfig struct {
	// Policy names the observation layout the consuming learned policy
	// expects: RobotPolicyGraphRNN or RobotPolicyLidarGRU.
	Policy      string
	Kinematics  model.Kinematics
	Radius      float64
	VPref       float64
	FOV         float64
	SensorRange float64
}

// HumanConfig describes the simulated crowd.
type HumanConfig struct {
	// Policy names the collision-avoidance policy humans run.
	Policy      string
	Radius      float64
	VPref       float64
	FOV         float64
	SensorRange float64
}

// LidarConfig describes the robot's range sensor.
type LidarConfig struct {
	NumBeams int
	MaxRange float64
}

// Config is the full, read-only configuration surface the simulator consumes.
type Config struct {
	Sim    SimConfig
	Reward RewardConfig
	Robot  RobotConfig
	Humans HumanConfig
	Lidar  LidarConfig
}

// DefaultConfig returns a configuration with the conventional crowd
// navigation setup: five humans on a four-metre crossing circle, a
// holonomic robot, and a 25-second episode budget.
func DefaultConfig() Config {
	return Config{}.ApplyDefaults()
}

// ApplyDefaults fills zero-valued fields with defaults and returns the
// completed configuration. Explicitly set fields are left alone.
func (c Config) ApplyDefaults() Config {
	if c.Sim.TimeStep <= 0 {
		c.Sim.TimeStep = 0.25
	}
	if c.Sim.TimeLimit <= 0 {
		c.Sim.TimeLimit = 25
	}
	if c.Sim.HumanNum <= 0 {
		c.Sim.HumanNum = 5
	}
	if c.Sim.NumEnvs <= 0 {
		c.Sim.NumEnvs = 1
	}
	if c.Sim.CaseCapacity.Val <= 0 {
		c.Sim.CaseCapacity.Val = 1000
	}
	if c.Sim.CaseCapacity.Test <= 0 {
		c.Sim.CaseCapacity.Test = 1000
	}
	if c.Sim.CaseCapacity.Train <= 0 {
		c.Sim.CaseCapacity.Train = 100000
	}
	if c.Sim.Scenarios == nil {
		c.Sim.Scenarios = map[model.Phase][]model.Scenario{
			model.PhaseTrain: {model.ScenarioCircleCrossing, model.ScenarioSquareCrossing},
			model.PhaseVal:   {model.ScenarioCircleCrossing, model.ScenarioSquareCrossing},
			model.PhaseTest: {
				model.ScenarioCircleCrossing,
				model.ScenarioSquareCrossing,
				model.ScenarioParallelTraffic,
				model.ScenarioPerpendicularTraffic,
			},
		}
	}
	if c.Sim.CircleRadius <= 0 {
		c.Sim.CircleRadius = 4
	}
	if c.Sim.SquareWidth <= 0 {
		c.Sim.SquareWidth = 10
	}
	if c.Sim.ArenaHalfSize <= 0 {
		c.Sim.ArenaHalfSize = 6
	}
	if c.Sim.GoalChangePeriod <= 0 {
		c.Sim.GoalChangePeriod = 5
	}

	if c.Reward.SuccessReward == 0 {
		c.Reward.SuccessReward = 1
	}
	if c.Reward.CollisionPenalty == 0 {
		c.Reward.CollisionPenalty = -0.25
	}
	if c.Reward.DiscomfortDist == 0 {
		c.Reward.DiscomfortDist = 0.2
	}
	if c.Reward.DiscomfortPenaltyFactor == 0 {
		c.Reward.DiscomfortPenaltyFactor = 0.5
	}
	if c.Reward.PotentialWeight == 0 {
		c.Reward.PotentialWeight = 2
	}

	if c.Robot.Policy == "" {
		c.Robot.Policy = RobotPolicyGraphRNN
	}
	if c.Robot.Radius <= 0 {
		c.Robot.Radius = 0.3
	}
	if c.Robot.VPref <= 0 {
		c.Robot.VPref = 1
	}
	if c.Robot.FOV <= 0 {
		c.Robot.FOV = 2 * math.Pi
	}

	if c.Humans.Policy == "" {
		c.Humans.Policy = PolicyReciprocal
	}
	if c.Humans.Radius <= 0 {
		c.Humans.Radius = 0.3
	}
	if c.Humans.VPref <= 0 {
		c.Humans.VPref = 1
	}
	if c.Humans.FOV <= 0 {
		c.Humans.FOV = 2 * math.Pi
	}

	if c.Robot.Policy == RobotPolicyLidarGRU {
		if c.Lidar.NumBeams <= 0 {
			c.Lidar.NumBeams = 180
		}
		if c.Lidar.MaxRange <= 0 {
			c.Lidar.MaxRange = 6
		}
	}

	return c
}

// Validate checks the configuration for contradictions that would otherwise
// only surface mid-episode. Sensor-dependent policies must declare a sensor
// here, not at first step.
func (c Config) Validate() error {
	switch c.Robot.Policy {
	case RobotPolicyGraphRNN:
	case RobotPolicyLidarGRU:
		if c.Lidar.NumBeams <= 0 {
			return fmt.Errorf("robot policy %q requires a positive lidar beam count", c.Robot.Policy)
		}
		if c.Lidar.MaxRange <= 0 {
			return fmt.Errorf("robot policy %q requires a positive lidar max range", c.Robot.Policy)
		}
	default:
		return fmt.Errorf("unknown robot policy %q", c.Robot.Policy)
	}

	if c.Humans.Policy != PolicyReciprocal && c.Humans.Policy != PolicySocialForce {
		return fmt.Errorf("unknown human policy %q", c.Humans.Policy)
	}

	for phase, set := range c.Sim.Scenarios {
		if !phase.Valid() {
			return fmt.Errorf("unknown phase %q in scenario table", phase)
		}
		if len(set) == 0 {
			return fmt.Errorf("phase %q has an empty scenario set", phase)
		}
		for _, s := range set {
			if !s.Valid() {
				return fmt.Errorf("unknown scenario %q for phase %q", s, phase)
			}
		}
	}

	return nil
}

// Walls returns the arena boundary as four wall segments.
func (c Config) Walls() []Segment {
	h := c.Sim.ArenaHalfSize
	return []Segment{
		{A: Vec2{X: -h, Y: -h}, B: Vec2{X: h, Y: -h}},
		{A: Vec2{X: h, Y: -h}, B: Vec2{X: h, Y: h}},
		{A: Vec2{X: h, Y: h}, B: Vec2{X: -h, Y: h}},
		{A: Vec2{X: -h, Y: h}, B: Vec2{X: -h, Y: -h}},
	}
}
