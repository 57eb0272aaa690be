package core

import (
	"github.com/signalsfoundry/crowdnav-simulator/model"
)

// TensorSpec describes one named tensor in an observation space.
type TensorSpec struct {
	Name  string
	Shape []int
}

// ObservationSpace declares the exact layout a robot policy will receive.
// It is fixed at SetRobot time; every observation produced afterwards matches
// it, or the consuming side is entitled to fail at the boundary.
type ObservationSpace struct {
	Policy  string
	Tensors []TensorSpec
}

// Observation is a single assembled robot observation.
type Observation interface {
	Space() ObservationSpace
}

// GraphObservation is the recurrent-graph layout: the robot's own state as a
// node, its velocity as a temporal edge, and one spatial edge per human
// holding that human's position relative to the robot.
type GraphObservation struct {
	// RobotNode is (px, py, radius, gx, gy, v_pref, theta).
	RobotNode [7]float64
	// TemporalEdge is the robot's (vx, vy).
	TemporalEdge [2]float64
	// SpatialEdges holds human position minus robot position, one entry per
	// configured human, in a fixed order.
	SpatialEdges [][2]float64
}

// Space implements Observation.
func (o GraphObservation) Space() ObservationSpace {
	return GraphObservationSpace(len(o.SpatialEdges))
}

// GraphObservationSpace declares the graph layout for a given human count.
func GraphObservationSpace(humanNum int) ObservationSpace {
	return ObservationSpace{
		Policy: RobotPolicyGraphRNN,
		Tensors: []TensorSpec{
			{Name: "robot_node", Shape: []int{1, 7}},
			{Name: "temporal_edges", Shape: []int{1, 2}},
			{Name: "spatial_edges", Shape: []int{humanNum, 2}},
		},
	}
}

// LidarObservation is the range-sensor-fused layout: the robot's state
// normalized by the sensor's max range, concatenated with the inverted
// normalized beam distances. The leading singleton dimension keeps the
// vector batch-compatible.
type LidarObservation struct {
	Vector [1][]float64
}

// Space implements Observation.
func (o LidarObservation) Space() ObservationSpace {
	return ObservationSpace{
		Policy: RobotPolicyLidarGRU,
		Tensors: []TensorSpec{
			{Name: "obs", Shape: []int{1, len(o.Vector[0])}},
		},
	}
}

// LidarObservationSpace declares the fused layout for a given beam count.
func LidarObservationSpace(numBeams int) ObservationSpace {
	return ObservationSpace{
		Policy: RobotPolicyLidarGRU,
		Tensors: []TensorSpec{
			{Name: "obs", Shape: []int{1, 7 + numBeams}},
		},
	}
}

// robotNodeVector flattens the robot's non-velocity state into the seven
// scalars both observation variants start from.
func robotNodeVector(s model.AgentState) [7]float64 {
	return [7]float64{s.PX, s.PY, s.Radius, s.GX, s.GY, s.VPref, s.Theta}
}

// newGraphObservation assembles the graph layout from the robot state and the
// last known state of every human (visible humans are current, occluded ones
// keep their last seen position).
func newGraphObservation(robot model.AgentState, lastHuman []model.ObservableState) GraphObservation {
	ob := GraphObservation{
		RobotNode:    robotNodeVector(robot),
		TemporalEdge: [2]float64{robot.VX, robot.VY},
		SpatialEdges: make([][2]float64, len(lastHuman)),
	}
	for i, h := range lastHuman {
		ob.SpatialEdges[i] = [2]float64{h.PX - robot.PX, h.PY - robot.PY}
	}
	return ob
}

// newLidarObservation assembles the fused layout. The robot state is scaled
// by the sensor's max range and clamped into [0, 1]; beam readings arrive
// already inverted and normalized.
func newLidarObservation(robot model.AgentState, invBeams []float64, maxRange float64) LidarObservation {
	node := robotNodeVector(robot)
	vec := make([]float64, 0, len(node)+len(invBeams))
	for _, v := range node {
		vec = append(vec, clamp(v/maxRange, 0, 1))
	}
	vec = append(vec, invBeams...)
	return LidarObservation{Vector: [1][]float64{vec}}
}
