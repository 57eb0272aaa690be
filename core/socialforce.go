package core

import (
	"math"

	"github.com/signalsfoundry/crowdnav-simulator/model"
)

// SocialForcePolicy drives the agent by summing an attractive force toward
// its goal with exponentially decaying repulsive forces from neighbors and
// static walls, then integrating the net force once into a velocity command.
type SocialForcePolicy struct {
	// RelaxationTime controls how quickly the agent's velocity relaxes
	// toward the goal-directed preferred velocity (seconds).
	RelaxationTime float64
	// AgentStrength and AgentRange shape repulsion from other agents:
	// magnitude AgentStrength * exp((combinedRadius - dist) / AgentRange).
	AgentStrength float64
	AgentRange    float64
	// WallStrength and WallRange shape repulsion from wall segments.
	WallStrength float64
	WallRange    float64
	// TimeStep is the force integration interval.
	TimeStep float64

	walls []Segment
}

// NewSocialForcePolicy returns a policy with the conventional parameter set
// and the given static wall geometry.
func NewSocialForcePolicy(walls []Segment) *SocialForcePolicy {
	return &SocialForcePolicy{
		RelaxationTime: 0.5,
		AgentStrength:  2.0,
		AgentRange:     0.4,
		WallStrength:   2.0,
		WallRange:      0.3,
		TimeStep:       0.25,
		walls:          walls,
	}
}

// Act integrates goal attraction and repulsion into the next velocity.
func (p *SocialForcePolicy) Act(self model.AgentState, neighbors []model.ObservableState) model.Action {
	selfPos := Vec2{X: self.PX, Y: self.PY}
	selfVel := Vec2{X: self.VX, Y: self.VY}

	desired := goalVelocity(self, p.TimeStep)
	force := desired.Sub(selfVel).Scale(1 / p.RelaxationTime)

	for _, n := range neighbors {
		away := selfPos.Sub(Vec2{X: n.PX, Y: n.PY})
		dist := away.Norm()
		if dist == 0 {
			continue
		}
		combined := self.Radius + n.Radius
		magnitude := p.AgentStrength * math.Exp((combined-dist)/p.AgentRange)
		force = force.Add(away.Scale(magnitude / dist))
	}

	for _, w := range p.walls {
		closest := closestPointOnSegment(selfPos, w.A, w.B)
		away := selfPos.Sub(closest)
		dist := away.Norm()
		if dist == 0 {
			continue
		}
		magnitude := p.WallStrength * math.Exp((self.Radius-dist)/p.WallRange)
		force = force.Add(away.Scale(magnitude / dist))
	}

	v := selfVel.Add(force.Scale(p.TimeStep)).ClampNorm(self.VPref)
	return ClipAction(model.ActionXY(v.X, v.Y), self)
}
