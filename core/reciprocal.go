package core

import (
	"math"

	"github.com/signalsfoundry/crowdnav-simulator/model"
)

// ReciprocalPolicy steers toward the goal while avoiding velocities that
// would collide with a neighbor within the time horizon, assuming neighbors
// share the avoidance effort symmetrically. Candidate velocities are scored
// on a fixed grid, so the policy is deterministic for a given input.
type ReciprocalPolicy struct {
	// TimeHorizon bounds how far ahead predicted collisions matter (seconds).
	TimeHorizon float64
	// NeighborDist is the responsibility radius: neighbors further away are
	// ignored and the policy degrades to straight-to-goal.
	NeighborDist float64
	// TimeStep is the lookahead used to damp the preferred velocity near
	// the goal.
	TimeStep float64
	// SafetyMargin inflates combined radii during collision prediction.
	SafetyMargin float64

	speedSamples int
	angleSamples int
}

// NewReciprocalPolicy returns a policy with the default avoidance envelope.
func NewReciprocalPolicy() *ReciprocalPolicy {
	return &ReciprocalPolicy{
		TimeHorizon:  5.0,
		NeighborDist: 10.0,
		TimeStep:     0.25,
		SafetyMargin: 0.05,
		speedSamples: 5,
		angleSamples: 16,
	}
}

// Act picks the candidate velocity closest to the preferred velocity among
// those that stay collision-free, trading goal progress against predicted
// time to collision when no free candidate exists.
func (p *ReciprocalPolicy) Act(self model.AgentState, neighbors []model.ObservableState) model.Action {
	prefVel := goalVelocity(self, p.TimeStep)

	near := neighbors[:0:0]
	selfPos := Vec2{X: self.PX, Y: self.PY}
	for _, n := range neighbors {
		if selfPos.DistanceTo(Vec2{X: n.PX, Y: n.PY}) <= p.NeighborDist {
			near = append(near, n)
		}
	}
	if len(near) == 0 {
		return ClipAction(model.ActionXY(prefVel.X, prefVel.Y), self)
	}

	best := prefVel
	bestCost := math.Inf(1)
	for _, cand := range p.candidates(self, prefVel) {
		cost := cand.DistanceTo(prefVel)
		ttc := p.minTimeToCollision(self, cand, near)
		if ttc < p.TimeHorizon {
			if ttc <= 0 {
				continue
			}
			cost += p.TimeHorizon / ttc
		}
		if cost < bestCost {
			bestCost = cost
			best = cand
		}
	}
	return ClipAction(model.ActionXY(best.X, best.Y), self)
}

// candidates enumerates the fixed velocity grid plus the preferred velocity
// and a full stop.
func (p *ReciprocalPolicy) candidates(self model.AgentState, prefVel Vec2) []Vec2 {
	out := make([]Vec2, 0, p.speedSamples*p.angleSamples+2)
	out = append(out, prefVel, Vec2{})
	for i := 1; i <= p.speedSamples; i++ {
		speed := self.VPref * float64(i) / float64(p.speedSamples)
		for j := 0; j < p.angleSamples; j++ {
			angle := 2 * math.Pi * float64(j) / float64(p.angleSamples)
			out = append(out, Vec2{X: speed * math.Cos(angle), Y: speed * math.Sin(angle)})
		}
	}
	return out
}

// minTimeToCollision predicts the earliest collision over all neighbors if
// the agent adopts cand. Under the reciprocal assumption the neighbor absorbs
// half of the velocity change, which is equivalent to testing the relative
// velocity 2*cand - vSelf - vNeighbor against the combined disc.
func (p *ReciprocalPolicy) minTimeToCollision(self model.AgentState, cand Vec2, neighbors []model.ObservableState) float64 {
	minTTC := math.Inf(1)
	selfPos := Vec2{X: self.PX, Y: self.PY}
	selfVel := Vec2{X: self.VX, Y: self.VY}
	for _, n := range neighbors {
		relPos := Vec2{X: n.PX, Y: n.PY}.Sub(selfPos)
		relVel := cand.Scale(2).Sub(selfVel).Sub(Vec2{X: n.VX, Y: n.VY})
		combined := self.Radius + n.Radius + p.SafetyMargin
		if ttc, ok := timeToCollision(relPos, relVel, combined); ok && ttc < minTTC {
			minTTC = ttc
		}
	}
	return minTTC
}

// timeToCollision solves |relPos - t*relVel| = radius for the smallest t >= 0.
func timeToCollision(relPos, relVel Vec2, radius float64) (float64, bool) {
	if relPos.Norm() <= radius {
		return 0, true
	}
	speed := relVel.Norm()
	if speed == 0 {
		return 0, false
	}
	ray := Ray{Origin: Vec2{}, Dir: relVel.Scale(1 / speed)}
	dist, ok := rayCircleDistance(ray, relPos, radius)
	if !ok {
		return 0, false
	}
	return dist / speed, true
}
