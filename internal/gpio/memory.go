package gpio

import (
	"fmt"
	"sync"
)

// Memory is an in-memory Lines driver. The sensor level is set by the test
// or simulation, writes can be made to fail per line.
type Memory struct {
	// mu guards every field below.
	mu sync.Mutex
	// levels holds the current level per line.
	levels map[Line]bool
	// failures holds an error returned by SetLine per line.
	failures map[Line]error
	// writes records every successful write in order.
	writes []Write
}

// Write is one recorded SetLine call.
type Write struct {
	Line Line
	High bool
}

var _ Lines = (*Memory)(nil)

// NewMemory creates a Memory driver with every line low.
func NewMemory() *Memory {
	return &Memory{
		levels:   make(map[Line]bool, 3), //nolint:mnd // Three lines.
		failures: make(map[Line]error),
	}
}

// Init drives the outputs low.
func (m *Memory) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.levels[Light] = false
	m.levels[Buzzer] = false

	return nil
}

// SetLine drives an output line unless a failure is injected for it.
func (m *Memory) SetLine(line Line, high bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch line {
	case Light, Buzzer:
	case Sensor:
		return fmt.Errorf("%s: %w", line, ErrNotOutput)
	default:
		return fmt.Errorf("%d: %w", line, ErrUnknownLine)
	}

	if err := m.failures[line]; err != nil {
		return err
	}

	m.levels[line] = high
	m.writes = append(m.writes, Write{Line: line, High: high})

	return nil
}

// ReadLine returns the current level of a line.
func (m *Memory) ReadLine(line Line) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if line != Light && line != Sensor && line != Buzzer {
		return false, fmt.Errorf("%d: %w", line, ErrUnknownLine)
	}

	return m.levels[line], nil
}

// SetSensor changes the sensed door level.
func (m *Memory) SetSensor(high bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.levels[Sensor] = high
}

// FailWrites makes every SetLine on line return err; nil clears it.
func (m *Memory) FailWrites(line Line, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		delete(m.failures, line)
		return
	}

	m.failures[line] = err
}

// Level returns the level of a line, ignoring errors.
func (m *Memory) Level(line Line) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.levels[line]
}

// Writes returns a copy of the recorded writes.
func (m *Memory) Writes() []Write {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Write(nil), m.writes...)
}

// ResetWrites forgets the recorded writes.
func (m *Memory) ResetWrites() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writes = nil
}
