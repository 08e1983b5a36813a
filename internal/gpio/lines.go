package gpio

import "errors"

// Line identifies one binary I/O line.
type Line int

const (
	// Light is the light output; it doubles as the alarm LED.
	Light Line = iota + 1
	// Sensor is the door sensor input, high means open.
	Sensor
	// Buzzer is the buzzer output.
	Buzzer
)

// String implements fmt.Stringer.
func (l Line) String() string {
	switch l {
	case Light:
		return "light"
	case Sensor:
		return "sensor"
	case Buzzer:
		return "buzzer"
	default:
		return "unknown"
	}
}

var (
	// ErrUnknownLine is returned for a line the driver does not know.
	ErrUnknownLine = errors.New("unknown gpio line")
	// ErrNotOutput is returned when writing an input line.
	ErrNotOutput = errors.New("gpio line is not an output")
)

// Lines reads and writes the node lines.
type Lines interface {
	// Init configures directions and drives the outputs low.
	Init() error
	// SetLine drives an output line.
	SetLine(line Line, high bool) error
	// ReadLine samples a line.
	ReadLine(line Line) (bool, error)
}
