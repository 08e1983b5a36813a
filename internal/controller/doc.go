// Package controller is the core of the alarm node.
//
// Machine owns the shared state block (commanded light, armed flag, door
// state, alert and notification latches) behind one mutex. Tick reconciles
// the door sensor with that state and drives the buzzer, the LED blink and
// the one-shot alert. Apply is the command router. Scheduler runs Tick
// forever at a fixed interval.
//
// A disarmed tick re-asserts the full reset every time instead of only on
// the arm->disarm edge, so a sink mirror that dropped an update converges
// on the next tick.
package controller
