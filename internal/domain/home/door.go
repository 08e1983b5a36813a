package home

// DoorState is the last known position of the door.
type DoorState int

const (
	// DoorUnknown is only observed before the first sensor read.
	DoorUnknown DoorState = iota
	// DoorClosed means the sensor reads low.
	DoorClosed
	// DoorOpen means the sensor reads high.
	DoorOpen
)

// Door status values as they are published to the parameter sink.
const (
	DoorStatusOpened = "OPENED"
	DoorStatusClosed = "CLOSED"
)

// DoorFromSensor maps a raw sensor level to a door state.
func DoorFromSensor(high bool) DoorState {
	if high {
		return DoorOpen
	}

	return DoorClosed
}

// Status returns the value published for the "Door Status" parameter.
// UNKNOWN is never published, it is reported as closed.
func (d DoorState) Status() string {
	if d == DoorOpen {
		return DoorStatusOpened
	}

	return DoorStatusClosed
}

// String implements fmt.Stringer.
func (d DoorState) String() string {
	switch d {
	case DoorOpen:
		return "OPEN"
	case DoorClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// ParseDoorState is the inverse of DoorState.String.
func ParseDoorState(s string) (DoorState, bool) {
	switch s {
	case "OPEN":
		return DoorOpen, true
	case "CLOSED":
		return DoorClosed, true
	case "UNKNOWN":
		return DoorUnknown, true
	default:
		return DoorUnknown, false
	}
}
