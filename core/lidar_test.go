package core

import (
	"math"
	"testing"
)

func TestLidar_HitsCircle(t *testing.T) {
	l := NewLidar(4, 10)
	l.ParseObstacles([]Primitive{Circle{Centre: Vec2{X: 5}, Radius: 1}}, ObstacleClassAgents)
	l.UpdateSensor(Vec2{}, 0)

	beams := l.SensorSpin(false)
	if len(beams) != 4 {
		t.Fatalf("expected 4 beams, got %d", len(beams))
	}
	// Beam 0 points along the heading straight at the circle.
	if math.Abs(beams[0].Distance-4) > 1e-9 {
		t.Errorf("expected range 4 on beam 0, got %v", beams[0].Distance)
	}
	// The opposite beam sees nothing.
	if math.Abs(beams[2].Distance-10) > 1e-9 {
		t.Errorf("expected max range on beam 2, got %v", beams[2].Distance)
	}
}

func TestLidar_HitsWall(t *testing.T) {
	l := NewLidar(4, 10)
	l.ParseObstacles([]Primitive{Segment{A: Vec2{X: 3, Y: -2}, B: Vec2{X: 3, Y: 2}}}, ObstacleClassWalls)
	l.UpdateSensor(Vec2{}, 0)

	beams := l.SensorSpin(false)
	if math.Abs(beams[0].Distance-3) > 1e-9 {
		t.Errorf("expected range 3 on beam 0, got %v", beams[0].Distance)
	}
}

func TestLidar_NearestAcrossClasses(t *testing.T) {
	l := NewLidar(1, 10)
	l.ParseObstacles([]Primitive{Circle{Centre: Vec2{X: 6}, Radius: 1}}, ObstacleClassAgents)
	l.ParseObstacles([]Primitive{Segment{A: Vec2{X: 2, Y: -1}, B: Vec2{X: 2, Y: 1}}}, ObstacleClassWalls)
	l.UpdateSensor(Vec2{}, 0)

	beams := l.SensorSpin(false)
	if math.Abs(beams[0].Distance-2) > 1e-9 {
		t.Errorf("the nearest hit across all classes wins, got %v", beams[0].Distance)
	}
}

func TestLidar_Normalize(t *testing.T) {
	l := NewLidar(1, 10)
	l.ParseObstacles([]Primitive{Circle{Centre: Vec2{X: 5}, Radius: 1}}, ObstacleClassAgents)
	l.UpdateSensor(Vec2{}, 0)

	beams := l.SensorSpin(true)
	if math.Abs(beams[0].Distance-0.4) > 1e-9 {
		t.Errorf("expected normalized reading 0.4, got %v", beams[0].Distance)
	}
	// Hit point stays in world units.
	if math.Abs(beams[0].Hit.X-4) > 1e-9 {
		t.Errorf("expected world-frame hit at x=4, got %v", beams[0].Hit.X)
	}
}

func TestLidar_ObstaclesReplacedWholesale(t *testing.T) {
	l := NewLidar(1, 10)
	l.ParseObstacles([]Primitive{Circle{Centre: Vec2{X: 5}, Radius: 1}}, ObstacleClassAgents)
	l.ParseObstacles(nil, ObstacleClassAgents)
	l.UpdateSensor(Vec2{}, 0)

	beams := l.SensorSpin(false)
	if beams[0].Distance != 10 {
		t.Errorf("replaced obstacle set must forget earlier primitives, got %v", beams[0].Distance)
	}
}

func TestLidar_FanFollowsHeading(t *testing.T) {
	l := NewLidar(4, 10)
	l.ParseObstacles([]Primitive{Circle{Centre: Vec2{Y: 5}, Radius: 1}}, ObstacleClassAgents)
	l.UpdateSensor(Vec2{}, math.Pi/2)

	beams := l.SensorSpin(false)
	if math.Abs(beams[0].Distance-4) > 1e-9 {
		t.Errorf("first beam must follow the heading, got %v", beams[0].Distance)
	}
}
