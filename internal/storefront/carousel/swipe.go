package carousel

import "math"

// Direction is the navigation a gesture asks for
type Direction int

const (
	None Direction = iota
	Forward
	Backward
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return "none"
	}
}

// Interpret classifies a drag by its net displacement. Dragging left by more than
// threshold moves forward, dragging right moves backward. Drags that are mostly
// vertical are scrolls and never navigate.
func Interpret(dx, dy, threshold float64) Direction {
	if math.Abs(dy) > math.Abs(dx) {
		return None
	}
	if math.Abs(dx) <= threshold {
		return None
	}
	if dx < 0 {
		return Forward
	}
	return Backward
}
