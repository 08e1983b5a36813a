package home

// Snapshot is a copy of the node state at one point in time.
type Snapshot struct {
	// LightOn is the last commanded light state.
	LightOn bool
	// Armed tells whether the alarm is armed.
	Armed bool
	// Door is the last sensed door state.
	Door DoorState
	// AlertActive tells whether an intrusion alert is active for the current episode.
	AlertActive bool
	// NotificationSent tells whether the alert for the current episode was raised.
	NotificationSent bool
	// Blink is the blink sub-cycle phase, idle outside of an armed open tick.
	Blink string
	// Ticks is the number of completed scheduler ticks.
	Ticks int64
}

// Commanded holds the values set through the router, the part of the state
// worth persisting across restarts.
type Commanded struct {
	// LightOn is the last commanded light state.
	LightOn bool
	// Armed is the last commanded alarm state.
	Armed bool
}
