package core

import (
	"math"

	"github.com/signalsfoundry/crowdnav-simulator/model"
)

// Agent is one participant in the simulation: the robot or a human.
// It owns its kinematic state, the policy that drives it (nil for the robot,
// whose actions arrive from outside), and a sensing envelope used to decide
// which other agents it can see.
type Agent struct {
	State  model.AgentState
	Policy Policy

	// FOV is the total field-of-view angle in radians, centred on the
	// agent's heading. 2*pi means omnidirectional.
	FOV float64
	// SensorRange caps how far the agent can see other agents. Zero or
	// negative means unlimited.
	SensorRange float64

	integrator Integrator
}

// NewAgent builds an agent around an initial state.
func NewAgent(state model.AgentState, policy Policy, fov, sensorRange float64) *Agent {
	return &Agent{
		State:       state,
		Policy:      policy,
		FOV:         fov,
		SensorRange: sensorRange,
		integrator:  NewIntegrator(state.Kinematics),
	}
}

// Position returns the agent's position as a vector.
func (a *Agent) Position() Vec2 { return Vec2{X: a.State.PX, Y: a.State.PY} }

// GoalPosition returns the agent's goal as a vector.
func (a *Agent) GoalPosition() Vec2 { return Vec2{X: a.State.GX, Y: a.State.GY} }

// Velocity returns the agent's velocity as a vector.
func (a *Agent) Velocity() Vec2 { return Vec2{X: a.State.VX, Y: a.State.VY} }

// GoalDistance returns the distance from the agent to its goal.
func (a *Agent) GoalDistance() float64 {
	return a.Position().DistanceTo(a.GoalPosition())
}

// ReachedGoal reports whether the agent is within its own radius of its goal.
func (a *Agent) ReachedGoal() bool {
	return a.GoalDistance() < a.State.Radius
}

// Step integrates the action into the agent's state. The action is clipped
// to the agent's preferred speed before integration.
func (a *Agent) Step(action model.Action, dt float64) {
	if a.integrator == nil {
		a.integrator = NewIntegrator(a.State.Kinematics)
	}
	a.integrator.Integrate(&a.State, ClipAction(action, a.State), dt)
}

// CanSee reports whether other falls inside this agent's field of view and
// sensing range. The view axis is the agent's heading; agents moving with
// zero velocity keep their last heading.
func (a *Agent) CanSee(other *Agent) bool {
	rel := other.Position().Sub(a.Position())
	dist := rel.Norm()
	if a.SensorRange > 0 && dist > a.SensorRange {
		return false
	}
	if a.FOV >= 2*math.Pi || dist == 0 {
		return true
	}
	offset := math.Abs(NormalizeAngle(rel.Heading() - a.State.Theta))
	return offset <= a.FOV/2
}
