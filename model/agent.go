package model

// Kinematics indicates how an agent's action is integrated into motion.
type Kinematics int

const (
	// KinematicsHolonomic lets the agent set its velocity freely in any direction.
	KinematicsHolonomic Kinematics = iota
	// KinematicsUnicycle restricts the agent to forward speed and turn rate.
	KinematicsUnicycle
)

func (k Kinematics) String() string {
	switch k {
	case KinematicsUnicycle:
		return "unicycle"
	default:
		return "holonomic"
	}
}

// AgentState is the full kinematic state of one agent.
// Positions and goals are planar coordinates in metres, Theta is the heading
// in radians, VPref is the preferred (maximum) speed in m/s.
type AgentState struct {
	PX, PY float64
	VX, VY float64
	Theta  float64

	Radius float64
	VPref  float64
	GX, GY float64

	Kinematics Kinematics
}

// Position returns the agent's current position.
func (s AgentState) Position() (float64, float64) { return s.PX, s.PY }

// Goal returns the agent's current goal position.
func (s AgentState) Goal() (float64, float64) { return s.GX, s.GY }

// ObservableState is the slice of AgentState other agents are allowed to see:
// position, velocity, and radius. Goals and preferred speeds stay private.
type ObservableState struct {
	PX, PY float64
	VX, VY float64
	Radius float64
}

// Observable projects the state down to what neighbors can perceive.
func (s AgentState) Observable() ObservableState {
	return ObservableState{PX: s.PX, PY: s.PY, VX: s.VX, VY: s.VY, Radius: s.Radius}
}
