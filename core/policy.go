package core

import (
	"fmt"

	"github.com/signalsfoundry/crowdnav-simulator/model"
)

// Human policy names accepted by the configuration surface.
const (
	PolicyReciprocal  = "reciprocal"
	PolicySocialForce = "social_force"
)

// Robot policy names. These identify the observation layout an external
// learned policy consumes; the network itself lives outside the simulator.
const (
	RobotPolicyGraphRNN = "graph_rnn"
	RobotPolicyLidarGRU = "lidar_gru"
)

// Policy maps an agent's own state plus the states it can observe to an
// action for the next time step. Implementations must return actions already
// clipped to the agent's preferred speed.
type Policy interface {
	Act(self model.AgentState, neighbors []model.ObservableState) model.Action
}

// ClipAction bounds an action against the agent's preferred speed: holonomic
// velocities are rescaled to at most VPref, unicycle forward speeds are
// clamped into [-VPref, VPref]. Rotation is left untouched.
func ClipAction(action model.Action, s model.AgentState) model.Action {
	if s.Kinematics == model.KinematicsUnicycle {
		action.V = clamp(action.V, -s.VPref, s.VPref)
		return action
	}
	v := Vec2{X: action.VX, Y: action.VY}.ClampNorm(s.VPref)
	action.VX = v.X
	action.VY = v.Y
	return action
}

// NewPolicy builds a human collision-avoidance policy by name.
func NewPolicy(name string, walls []Segment) (Policy, error) {
	switch name {
	case PolicyReciprocal:
		return NewReciprocalPolicy(), nil
	case PolicySocialForce:
		return NewSocialForcePolicy(walls), nil
	default:
		return nil, fmt.Errorf("unknown human policy %q", name)
	}
}

// goalVelocity is the straight-to-goal preferred velocity shared by the
// concrete policies: full preferred speed toward the goal, or slower when
// one step would overshoot it.
func goalVelocity(self model.AgentState, dt float64) Vec2 {
	goal := Vec2{X: self.GX - self.PX, Y: self.GY - self.PY}
	dist := goal.Norm()
	if dist == 0 {
		return Vec2{}
	}
	speed := self.VPref
	if dt > 0 && dist/dt < speed {
		speed = dist / dt
	}
	return goal.Scale(speed / dist)
}
