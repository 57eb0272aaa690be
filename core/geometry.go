package core

import "math"

// Vec2 is a planar vector in metres.
type Vec2 struct {
	X, Y float64
}

// DistanceTo returns the straight-line distance between two points.
func (v Vec2) DistanceTo(other Vec2) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Norm returns the Euclidean norm of the vector.
func (v Vec2) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Scale returns v scaled by f.
func (v Vec2) Scale(f float64) Vec2 {
	return Vec2{X: v.X * f, Y: v.Y * f}
}

// Dot returns the dot product of two vectors.
func (v Vec2) Dot(other Vec2) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Heading returns the direction of the vector in radians. The zero vector
// has no defined direction; callers get 0 and must treat it as "unchanged".
func (v Vec2) Heading() float64 {
	if v.X == 0 && v.Y == 0 {
		return 0
	}
	return math.Atan2(v.Y, v.X)
}

// Normalized returns a unit vector in the direction of v, or the zero vector
// when v has no direction.
func (v Vec2) Normalized() Vec2 {
	n := v.Norm()
	if n == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / n, Y: v.Y / n}
}

// ClampNorm rescales v so its norm does not exceed limit. Vectors already
// within the limit are returned unchanged.
func (v Vec2) ClampNorm(limit float64) Vec2 {
	if limit <= 0 {
		return Vec2{}
	}
	n := v.Norm()
	if n <= limit {
		return v
	}
	return v.Scale(limit / n)
}

// NormalizeAngle wraps an angle into (-pi, pi].
func NormalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// Ray is a half-line cast from Origin along the unit direction Dir.
type Ray struct {
	Origin Vec2
	Dir    Vec2
}

// rayCircleDistance returns the distance along the ray to the first
// intersection with the circle, or ok=false when the ray misses it.
func rayCircleDistance(r Ray, centre Vec2, radius float64) (float64, bool) {
	// Solve |o + t d - c|^2 = radius^2 for the smallest non-negative t.
	oc := r.Origin.Sub(centre)
	b := oc.Dot(r.Dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		// Origin inside the circle: the far root is the exit point.
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// raySegmentDistance returns the distance along the ray to its intersection
// with the segment [a, b], or ok=false when they do not meet.
func raySegmentDistance(r Ray, a, b Vec2) (float64, bool) {
	seg := b.Sub(a)
	denom := r.Dir.X*seg.Y - r.Dir.Y*seg.X
	if denom == 0 {
		// Parallel; treat collinear overlap as a miss.
		return 0, false
	}
	ao := a.Sub(r.Origin)
	t := (ao.X*seg.Y - ao.Y*seg.X) / denom
	u := (ao.X*r.Dir.Y - ao.Y*r.Dir.X) / denom
	if t < 0 || u < 0 || u > 1 {
		return 0, false
	}
	return t, true
}

// closestPointOnSegment returns the point on the segment [a, b] nearest to p.
func closestPointOnSegment(p, a, b Vec2) Vec2 {
	seg := b.Sub(a)
	l2 := seg.Dot(seg)
	if l2 == 0 {
		return a
	}
	t := p.Sub(a).Dot(seg) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.Add(seg.Scale(t))
}
