package core

import (
	"math"
)

// Obstacle labels used by the simulation core when refreshing the sensor.
const (
	ObstacleClassAgents = "agents"
	ObstacleClassWalls  = "walls"
)

// Primitive is one geometric obstacle the sensor can hit. The set of
// implementations is closed: circles for agents, segments for walls.
type Primitive interface {
	// Intersect returns the distance along the ray to the nearest hit,
	// or ok=false when the ray misses the primitive.
	Intersect(r Ray) (float64, bool)
}

// Circle is a disc-shaped obstacle, typically a moving agent.
type Circle struct {
	Centre Vec2
	Radius float64
}

// Intersect implements Primitive.
func (c Circle) Intersect(r Ray) (float64, bool) {
	return rayCircleDistance(r, c.Centre, c.Radius)
}

// Segment is a straight wall between two endpoints.
type Segment struct {
	A, B Vec2
}

// Intersect implements Primitive.
func (s Segment) Intersect(r Ray) (float64, bool) {
	return raySegmentDistance(r, s.A, s.B)
}

// Beam is the reading of a single lidar ray.
type Beam struct {
	// Angle is the absolute world-frame direction the ray was cast in.
	Angle float64
	// Distance is the range reading, possibly normalized by max range.
	Distance float64
	// Hit is the world-frame end point of the beam.
	Hit Vec2
}

// Lidar casts a fan of evenly spaced rays from a pose against labeled sets
// of obstacle primitives. Obstacle sets are replaced wholesale each step;
// the sensor tracks no identity across refreshes.
type Lidar struct {
	numBeams int
	maxRange float64

	obstacles map[string][]Primitive

	pose    Vec2
	heading float64
}

// NewLidar builds a sensor with the given beam count and maximum range.
func NewLidar(numBeams int, maxRange float64) *Lidar {
	return &Lidar{
		numBeams:  numBeams,
		maxRange:  maxRange,
		obstacles: make(map[string][]Primitive),
	}
}

// NumBeams returns the configured beam count.
func (l *Lidar) NumBeams() int { return l.numBeams }

// MaxRange returns the configured maximum range.
func (l *Lidar) MaxRange() float64 { return l.maxRange }

// ParseObstacles replaces the stored primitive set for the given class label.
func (l *Lidar) ParseObstacles(primitives []Primitive, label string) {
	l.obstacles[label] = primitives
}

// UpdateSensor moves the sensor to a new pose and heading. The first beam is
// cast along the heading; the fan covers a full revolution.
func (l *Lidar) UpdateSensor(pose Vec2, heading float64) {
	l.pose = pose
	l.heading = heading
}

// SensorSpin casts all beams and returns their readings. A beam that hits
// nothing reports the maximum range. With normalize=true, distances are
// rescaled by the maximum range into [0, 1].
func (l *Lidar) SensorSpin(normalize bool) []Beam {
	beams := make([]Beam, l.numBeams)
	for i := 0; i < l.numBeams; i++ {
		angle := NormalizeAngle(l.heading + 2*math.Pi*float64(i)/float64(l.numBeams))
		ray := Ray{
			Origin: l.pose,
			Dir:    Vec2{X: math.Cos(angle), Y: math.Sin(angle)},
		}

		dist := l.maxRange
		for _, set := range l.obstacles {
			for _, prim := range set {
				if d, ok := prim.Intersect(ray); ok && d < dist {
					dist = d
				}
			}
		}

		beams[i] = Beam{
			Angle:    angle,
			Distance: dist,
			Hit:      ray.Origin.Add(ray.Dir.Scale(dist)),
		}
		if normalize {
			beams[i].Distance = dist / l.maxRange
		}
	}
	return beams
}
