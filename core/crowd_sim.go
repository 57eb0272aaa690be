package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/signalsfoundry/crowdnav-simulator/internal/logging"
	"github.com/signalsfoundry/crowdnav-simulator/model"
)

var (
	// ErrRobotNotSet is returned when Reset or Step runs before SetRobot.
	ErrRobotNotSet = errors.New("robot has not been attached; call SetRobot first")
	// ErrEpisodeNotRunning is returned when Step is called on a finished or
	// never-started episode.
	ErrEpisodeNotRunning = errors.New("episode is not running; call Reset first")
)

// CrowdSim is the steppable world: one externally driven robot and a crowd of
// policy-driven humans moving toward individual goals in a shared 2D arena.
//
// A CrowdSim instance is single-threaded: one Step call fully integrates all
// agents and the sensor before returning. Vectorized trainers run one
// instance per parallel environment; instances share only the seed offset
// scheme, never mutable state.
type CrowdSim struct {
	cfg   Config
	log   logging.Logger
	gen   *ScenarioGenerator
	walls []Segment
	lidar *Lidar

	robot    *Agent
	humans   []*Agent
	obsSpace ObservationSpace

	rng       *rand.Rand
	running   bool
	episodeID string
	phase     model.Phase
	scenario  model.Scenario
	seed      int64

	globalTime float64
	// desiredSpeed is the persistent forward-speed accumulator for unicycle
	// kinematics. It survives across steps and is zeroed exactly at Reset.
	desiredSpeed float64
	// potential is the previous step's negative goal distance, the baseline
	// for potential-based reward shaping.
	potential float64

	// lastHumanStates keeps the most recent state the robot saw for each
	// human; humans outside the field of view retain their last sighting.
	lastHumanStates []model.ObservableState
	lidarInv        []float64
}

// NewCrowdSim builds a simulator from the configuration. Configuration
// contradictions surface here, never mid-episode.
func NewCrowdSim(cfg Config, log logging.Logger) (*CrowdSim, error) {
	cfg = cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("crowd sim config: %w", err)
	}
	if log == nil {
		log = logging.Noop()
	}
	seeds := NewSeedState(cfg.Sim.BaseSeed, cfg.Sim.CaseCapacity)
	return &CrowdSim{
		cfg:   cfg,
		log:   log,
		gen:   NewScenarioGenerator(cfg, seeds),
		walls: cfg.Walls(),
	}, nil
}

// SetRobot attaches the robot and fixes the observation space for the
// configured robot policy. It must be called once before the first Reset.
func (s *CrowdSim) SetRobot() error {
	switch s.cfg.Robot.Policy {
	case RobotPolicyLidarGRU:
		if s.cfg.Lidar.NumBeams <= 0 || s.cfg.Lidar.MaxRange <= 0 {
			return fmt.Errorf("robot policy %q: lidar is not configured", s.cfg.Robot.Policy)
		}
		s.lidar = NewLidar(s.cfg.Lidar.NumBeams, s.cfg.Lidar.MaxRange)
		s.lidar.ParseObstacles(wallPrimitives(s.walls), ObstacleClassWalls)
		s.obsSpace = LidarObservationSpace(s.cfg.Lidar.NumBeams)
	case RobotPolicyGraphRNN:
		s.obsSpace = GraphObservationSpace(s.cfg.Sim.HumanNum)
	default:
		return fmt.Errorf("unknown robot policy %q", s.cfg.Robot.Policy)
	}

	s.robot = NewAgent(model.AgentState{
		Radius:     s.cfg.Robot.Radius,
		VPref:      s.cfg.Robot.VPref,
		Kinematics: s.cfg.Robot.Kinematics,
	}, nil, s.cfg.Robot.FOV, s.cfg.Robot.SensorRange)
	return nil
}

// ObservationSpace returns the layout declared at SetRobot time.
func (s *CrowdSim) ObservationSpace() ObservationSpace { return s.obsSpace }

// Seeds exposes the per-phase case counters for inspection and replay.
func (s *CrowdSim) Seeds() *SeedState { return s.gen.Seeds() }

// Generator exposes the scenario generator, mainly for its cycling counter.
func (s *CrowdSim) Generator() *ScenarioGenerator { return s.gen }

// EpisodeID identifies the current episode in logs and records.
func (s *CrowdSim) EpisodeID() string { return s.episodeID }

// GlobalTime returns elapsed simulation time in the current episode.
func (s *CrowdSim) GlobalTime() float64 { return s.globalTime }

// Phase returns the phase of the current episode.
func (s *CrowdSim) Phase() model.Phase { return s.phase }

// Scenario returns the scenario of the current episode.
func (s *CrowdSim) Scenario() model.Scenario { return s.scenario }

// Seed returns the seed of the current episode.
func (s *CrowdSim) Seed() int64 { return s.seed }

// Running reports whether an episode is in progress.
func (s *CrowdSim) Running() bool { return s.running }

// Robot returns the robot agent. Nil before SetRobot.
func (s *CrowdSim) Robot() *Agent { return s.robot }

// Humans returns the current crowd.
func (s *CrowdSim) Humans() []*Agent { return s.humans }

// Reset starts a new episode for the phase. A non-nil testCase pins the case
// counter so a specific episode can be reproduced exactly.
func (s *CrowdSim) Reset(phase model.Phase, testCase *int) (Observation, error) {
	if s.robot == nil {
		return nil, ErrRobotNotSet
	}
	if !phase.Valid() {
		return nil, fmt.Errorf("unknown phase %q", phase)
	}

	setup, err := s.gen.Generate(phase, testCase)
	if err != nil {
		return nil, err
	}

	s.phase = phase
	s.scenario = setup.Scenario
	s.seed = setup.Seed
	s.rng = setup.Rng
	s.globalTime = 0
	s.desiredSpeed = 0
	s.running = true
	s.episodeID = uuid.NewString()

	s.robot.State = setup.Robot
	s.robot.FOV = s.cfg.Robot.FOV
	s.robot.SensorRange = s.cfg.Robot.SensorRange

	s.humans = make([]*Agent, len(setup.Humans))
	for i, hs := range setup.Humans {
		var policy Policy
		if s.cfg.Sim.RandomPolicyChanging {
			policy = s.gen.RandomHumanPolicy(s.rng, s.walls)
		} else {
			policy, err = NewPolicy(s.cfg.Humans.Policy, s.walls)
			if err != nil {
				return nil, err
			}
		}
		s.humans[i] = NewAgent(hs, policy, s.cfg.Humans.FOV, s.cfg.Humans.SensorRange)
	}

	s.lastHumanStates = make([]model.ObservableState, len(s.humans))
	for i := range s.lastHumanStates {
		// Humans the robot has never seen get a far-away placeholder.
		s.lastHumanStates[i] = model.ObservableState{PX: 15, PY: 15, Radius: s.cfg.Humans.Radius}
	}

	s.refreshSensor()
	s.potential = -s.robot.GoalDistance()

	s.log.Info(context.Background(), "episode reset",
		logging.String("episode_id", s.episodeID),
		logging.String("phase", string(phase)),
		logging.String("scenario", string(setup.Scenario)),
		logging.Int("seed", int(setup.Seed)),
		logging.Int("humans", len(s.humans)),
	)

	return s.buildObservation(), nil
}

// Step advances the world by one time step under the robot's proposed action.
// Reward and termination are judged on the pre-step state plus the proposal,
// then all agents are integrated, the sensor refreshed, and the next
// observation assembled.
func (s *CrowdSim) Step(action model.Action) (Observation, float64, bool, model.StepInfo, error) {
	if s.robot == nil {
		return nil, 0, false, model.StepInfo{}, ErrRobotNotSet
	}
	if !s.running {
		return nil, 0, false, model.StepInfo{}, ErrEpisodeNotRunning
	}

	action = ClipAction(action, s.robot.State)
	if s.robot.State.Kinematics == model.KinematicsUnicycle {
		// Merge the speed increment into the persistent accumulator before
		// heading integration; the accumulator models acceleration limits
		// through clipping.
		s.desiredSpeed = clamp(s.desiredSpeed+action.V, -s.robot.State.VPref, s.robot.State.VPref)
		action = model.ActionRot(s.desiredSpeed, action.R)
	}

	humanActions := make([]model.Action, len(s.humans))
	for i, h := range s.humans {
		humanActions[i] = h.Policy.Act(h.State, s.visibleNeighbors(i))
	}

	reward, info := s.scoreStep(action)
	done := info.Event.Terminal()

	s.robot.Step(action, s.cfg.Sim.TimeStep)
	for i, h := range s.humans {
		h.Step(humanActions[i], s.cfg.Sim.TimeStep)
	}

	s.refreshSensor()
	s.globalTime += s.cfg.Sim.TimeStep

	ob := s.buildObservation()

	if s.cfg.Sim.RandomGoalChanging && periodElapsed(s.globalTime, s.cfg.Sim.GoalChangePeriod) {
		s.randomizeHumanGoals()
	}
	if s.cfg.Sim.EndGoalChanging {
		for _, h := range s.humans {
			if h.ReachedGoal() {
				h.State.GX, h.State.GY = s.gen.RandomGoal(s.rng)
			}
		}
	}

	if done {
		s.running = false
		s.log.Info(context.Background(), "episode finished",
			logging.String("episode_id", s.episodeID),
			logging.String("outcome", info.Event.String()),
			logging.Any("sim_time", s.globalTime),
		)
	}

	return ob, reward, done, info, nil
}

// scoreStep computes reward and termination from the pre-step state plus the
// proposed (already merged and clipped) robot action.
func (s *CrowdSim) scoreStep(action model.Action) (float64, model.StepInfo) {
	dt := s.cfg.Sim.TimeStep
	robotVel := s.proposedVelocity(action)
	robotPos := s.robot.Position()
	nextPos := robotPos.Add(robotVel.Scale(dt))

	// Closest human approach over the step, assuming humans hold their
	// current velocities. Distances are between surfaces, not centres.
	dmin := math.Inf(1)
	for _, h := range s.humans {
		rel0 := h.Position().Sub(robotPos)
		relVel := h.Velocity().Sub(robotVel)
		rel1 := rel0.Add(relVel.Scale(dt))
		closest := pointToSegment(Vec2{}, rel0, rel1) - h.State.Radius - s.robot.State.Radius
		if closest < dmin {
			dmin = closest
		}
	}

	reachedGoal := nextPos.DistanceTo(s.robot.GoalPosition()) < s.robot.State.Radius

	switch {
	case s.globalTime >= s.cfg.Sim.TimeLimit-1:
		return 0, model.StepInfo{Event: model.EventTimeout}
	case dmin < 0:
		return s.cfg.Reward.CollisionPenalty, model.StepInfo{Event: model.EventCollision, MinSeparation: dmin}
	case reachedGoal:
		return s.cfg.Reward.SuccessReward, model.StepInfo{Event: model.EventReachGoal}
	}

	potentialCur := -nextPos.DistanceTo(s.robot.GoalPosition())
	reward := s.cfg.Reward.PotentialWeight*(potentialCur-s.potential) + s.cfg.Reward.TimePenalty
	s.potential = potentialCur

	if dmin < s.cfg.Reward.DiscomfortDist {
		reward += (dmin - s.cfg.Reward.DiscomfortDist) * s.cfg.Reward.DiscomfortPenaltyFactor * dt
		return reward, model.StepInfo{Event: model.EventDanger, MinSeparation: dmin}
	}
	return reward, model.StepInfo{Event: model.EventNothing}
}

// proposedVelocity converts the robot's action into the velocity it implies
// for the coming step, without mutating state.
func (s *CrowdSim) proposedVelocity(action model.Action) Vec2 {
	if s.robot.State.Kinematics == model.KinematicsUnicycle {
		theta := s.robot.State.Theta + action.R
		return Vec2{X: action.V * math.Cos(theta), Y: action.V * math.Sin(theta)}
	}
	return Vec2{X: action.VX, Y: action.VY}
}

// visibleNeighbors assembles the observable states human i is allowed to see:
// every other agent inside its field of view and sensing range.
func (s *CrowdSim) visibleNeighbors(i int) []model.ObservableState {
	self := s.humans[i]
	neighbors := make([]model.ObservableState, 0, len(s.humans))
	for j, other := range s.humans {
		if j == i || !self.CanSee(other) {
			continue
		}
		neighbors = append(neighbors, other.State.Observable())
	}
	if self.CanSee(s.robot) {
		neighbors = append(neighbors, s.robot.State.Observable())
	}
	return neighbors
}

// refreshSensor replaces the lidar's agent obstacles with current human
// positions and re-casts all beams from the robot's pose.
func (s *CrowdSim) refreshSensor() {
	if s.lidar == nil {
		return
	}
	circles := make([]Primitive, len(s.humans))
	for i, h := range s.humans {
		circles[i] = Circle{Centre: h.Position(), Radius: h.State.Radius}
	}
	s.lidar.ParseObstacles(circles, ObstacleClassAgents)

	heading := s.robot.Velocity().Heading()
	s.lidar.UpdateSensor(s.robot.Position(), heading)
	beams := s.lidar.SensorSpin(true)

	if s.lidarInv == nil {
		s.lidarInv = make([]float64, len(beams))
	}
	for i, b := range beams {
		// Inverted so nearby obstacles produce the strongest signal.
		s.lidarInv[i] = math.Abs(1 - b.Distance)
	}
}

// buildObservation updates the last-seen human states and assembles the
// variant declared at SetRobot time.
func (s *CrowdSim) buildObservation() Observation {
	for i, h := range s.humans {
		if s.robot.CanSee(h) {
			s.lastHumanStates[i] = h.State.Observable()
		}
	}
	if s.cfg.Robot.Policy == RobotPolicyLidarGRU {
		return newLidarObservation(s.robot.State, s.lidarInv, s.lidar.MaxRange())
	}
	return newGraphObservation(s.robot.State, s.lastHumanStates)
}

func (s *CrowdSim) randomizeHumanGoals() {
	for _, h := range s.humans {
		h.State.GX, h.State.GY = s.gen.RandomGoal(s.rng)
	}
}

// periodElapsed reports whether t sits on a multiple of period, within one
// floating-point hair. Time steps divide the period evenly in practice.
func periodElapsed(t, period float64) bool {
	if period <= 0 {
		return false
	}
	m := math.Mod(t, period)
	const eps = 1e-9
	return m < eps || period-m < eps
}

// pointToSegment returns the distance from p to the segment [a, b].
func pointToSegment(p, a, b Vec2) float64 {
	return p.DistanceTo(closestPointOnSegment(p, a, b))
}

func wallPrimitives(walls []Segment) []Primitive {
	out := make([]Primitive, len(walls))
	for i, w := range walls {
		out[i] = w
	}
	return out
}
