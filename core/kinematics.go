package core

import (
	"math"

	"github.com/signalsfoundry/crowdnav-simulator/model"
)

// Integrator advances an agent's state by one time step under a clipped action.
type Integrator interface {
	Integrate(s *model.AgentState, action model.Action, dt float64)
}

// HolonomicIntegrator sets the velocity directly from the action and moves
// along it. Heading follows the velocity direction and is left unchanged
// when the commanded velocity is zero.
type HolonomicIntegrator struct{}

// Integrate applies a holonomic velocity action.
func (HolonomicIntegrator) Integrate(s *model.AgentState, action model.Action, dt float64) {
	v := Vec2{X: action.VX, Y: action.VY}.ClampNorm(s.VPref)
	s.PX += v.X * dt
	s.PY += v.Y * dt
	s.VX = v.X
	s.VY = v.Y
	if v.X != 0 || v.Y != 0 {
		s.Theta = v.Heading()
	}
}

// UnicycleIntegrator rotates first, then advances along the new heading at
// the commanded forward speed. The forward speed in action.V is expected to
// be an absolute speed already merged from the caller's running accumulator.
type UnicycleIntegrator struct{}

// Integrate applies a unicycle (speed, rotation) action.
func (UnicycleIntegrator) Integrate(s *model.AgentState, action model.Action, dt float64) {
	v := clamp(action.V, -s.VPref, s.VPref)
	s.Theta = NormalizeAngle(s.Theta + action.R)
	s.VX = v * math.Cos(s.Theta)
	s.VY = v * math.Sin(s.Theta)
	s.PX += s.VX * dt
	s.PY += s.VY * dt
}

// NewIntegrator chooses the integrator matching the agent's kinematics.
func NewIntegrator(k model.Kinematics) Integrator {
	if k == model.KinematicsUnicycle {
		return UnicycleIntegrator{}
	}
	return HolonomicIntegrator{}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
