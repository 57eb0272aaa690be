package core

import (
	"math"
	"testing"
)

func TestRayCircleDistance_DirectHit(t *testing.T) {
	// Ray along +x aimed at a unit circle centred 5m away: the near surface
	// is at 4m.
	ray := Ray{Origin: Vec2{}, Dir: Vec2{X: 1}}
	dist, ok := rayCircleDistance(ray, Vec2{X: 5}, 1)
	if !ok {
		t.Fatalf("expected hit")
	}
	if math.Abs(dist-4) > 1e-9 {
		t.Errorf("expected distance 4, got %v", dist)
	}
}

func TestRayCircleDistance_Miss(t *testing.T) {
	ray := Ray{Origin: Vec2{}, Dir: Vec2{X: 1}}
	if _, ok := rayCircleDistance(ray, Vec2{X: 5, Y: 3}, 1); ok {
		t.Errorf("expected miss for circle offset beyond its radius")
	}
}

func TestRayCircleDistance_OriginInside(t *testing.T) {
	ray := Ray{Origin: Vec2{}, Dir: Vec2{X: 1}}
	dist, ok := rayCircleDistance(ray, Vec2{}, 2)
	if !ok {
		t.Fatalf("expected exit hit from inside the circle")
	}
	if math.Abs(dist-2) > 1e-9 {
		t.Errorf("expected exit at 2, got %v", dist)
	}
}

func TestRaySegmentDistance(t *testing.T) {
	ray := Ray{Origin: Vec2{}, Dir: Vec2{X: 1}}

	dist, ok := raySegmentDistance(ray, Vec2{X: 3, Y: -1}, Vec2{X: 3, Y: 1})
	if !ok || math.Abs(dist-3) > 1e-9 {
		t.Errorf("expected hit at 3, got %v (ok=%v)", dist, ok)
	}

	if _, ok := raySegmentDistance(ray, Vec2{X: 3, Y: 1}, Vec2{X: 3, Y: 2}); ok {
		t.Errorf("expected miss for segment off the ray's path")
	}

	// Segment behind the origin must not register.
	if _, ok := raySegmentDistance(ray, Vec2{X: -3, Y: -1}, Vec2{X: -3, Y: 1}); ok {
		t.Errorf("expected miss for segment behind the ray")
	}
}

func TestClampNorm(t *testing.T) {
	v := Vec2{X: 3, Y: 4}
	clipped := v.ClampNorm(1)
	if math.Abs(clipped.Norm()-1) > 1e-9 {
		t.Errorf("expected norm 1 after clamping, got %v", clipped.Norm())
	}
	same := Vec2{X: 0.3, Y: 0}.ClampNorm(1)
	if same != (Vec2{X: 0.3, Y: 0}) {
		t.Errorf("vectors within the limit must pass through unchanged, got %#v", same)
	}
}

func TestNormalizeAngle(t *testing.T) {
	if got := NormalizeAngle(3 * math.Pi); math.Abs(got-math.Pi) > 1e-9 {
		t.Errorf("expected pi, got %v", got)
	}
	if got := NormalizeAngle(-3 * math.Pi); math.Abs(got-math.Pi) > 1e-9 {
		t.Errorf("expected pi for -3pi, got %v", got)
	}
}

func TestClosestPointOnSegment(t *testing.T) {
	a, b := Vec2{X: -1, Y: 0}, Vec2{X: 1, Y: 0}
	got := closestPointOnSegment(Vec2{X: 0, Y: 2}, a, b)
	if got != (Vec2{}) {
		t.Errorf("expected projection onto origin, got %#v", got)
	}
	// Beyond the endpoint the answer clamps to it.
	got = closestPointOnSegment(Vec2{X: 5, Y: 2}, a, b)
	if got != b {
		t.Errorf("expected clamp to endpoint %#v, got %#v", b, got)
	}
}
