package model

// Action is one agent's intended motion for a single time step. The fields
// that matter depend on the owning agent's kinematics:
//
//   - holonomic: (VX, VY) is a desired velocity vector;
//   - unicycle:  V is a forward-speed increment and R a heading increment.
//
// Actions are clipped against the agent's preferred speed before integration;
// out-of-range magnitudes are never rejected.
type Action struct {
	VX, VY float64
	V, R   float64
}

// ActionXY builds a holonomic velocity action.
func ActionXY(vx, vy float64) Action { return Action{VX: vx, VY: vy} }

// ActionRot builds a unicycle (speed, rotation) action.
func ActionRot(v, r float64) Action { return Action{V: v, R: r} }
