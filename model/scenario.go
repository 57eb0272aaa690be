package model

// Phase identifies which split of episodes is being generated. Each phase
// draws from its own seed range so train, val, and test never overlap.
type Phase string

const (
	PhaseTrain Phase = "train"
	PhaseVal   Phase = "val"
	PhaseTest  Phase = "test"
)

// Valid reports whether p is one of the three known phases.
func (p Phase) Valid() bool {
	return p == PhaseTrain || p == PhaseVal || p == PhaseTest
}

// Scenario names a template for initial agent placement and goals.
type Scenario string

const (
	// ScenarioCircleCrossing places agents on a circle with goals on the
	// opposite side, so every path crosses the centre.
	ScenarioCircleCrossing Scenario = "circle_crossing"
	// ScenarioSquareCrossing scatters agents in a square with goals on the
	// far side.
	ScenarioSquareCrossing Scenario = "square_crossing"
	// ScenarioParallelTraffic sends the crowd along the robot's own corridor.
	ScenarioParallelTraffic Scenario = "parallel_traffic"
	// ScenarioPerpendicularTraffic sends the crowd across the robot's corridor.
	ScenarioPerpendicularTraffic Scenario = "perpendicular_traffic"
)

// Valid reports whether s names a known scenario template.
func (s Scenario) Valid() bool {
	switch s {
	case ScenarioCircleCrossing, ScenarioSquareCrossing,
		ScenarioParallelTraffic, ScenarioPerpendicularTraffic:
		return true
	}
	return false
}

// EventType classifies what happened during one simulation step.
type EventType int

const (
	// EventNothing means the step was uneventful.
	EventNothing EventType = iota
	// EventDanger means the robot came closer to a human than the configured
	// discomfort distance, without colliding.
	EventDanger
	// EventReachGoal means the robot arrived within its radius of its goal.
	EventReachGoal
	// EventCollision means the robot overlapped a human.
	EventCollision
	// EventTimeout means the episode hit its time limit.
	EventTimeout
)

func (e EventType) String() string {
	switch e {
	case EventDanger:
		return "danger"
	case EventReachGoal:
		return "reached goal"
	case EventCollision:
		return "collision"
	case EventTimeout:
		return "timeout"
	default:
		return "nothing"
	}
}

// Terminal reports whether the event ends the episode.
func (e EventType) Terminal() bool {
	return e == EventReachGoal || e == EventCollision || e == EventTimeout
}

// StepInfo is the diagnostic payload returned alongside every step.
type StepInfo struct {
	Event EventType
	// MinSeparation is the smallest human-robot surface distance observed
	// during the step. Only meaningful for EventDanger.
	MinSeparation float64
}
