package gpio

import (
	"errors"
	"fmt"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PinNames maps the node lines to periph pin names, e.g. "GPIO2".
type PinNames struct {
	Light  string
	Sensor string
	Buzzer string
}

// Periph drives real pins through periph.io.
type Periph struct {
	names PinNames
	pins  map[Line]pgpio.PinIO
}

var (
	_ Lines = (*Periph)(nil)

	// errPinNotFound is returned when the host has no pin of that name.
	errPinNotFound = errors.New("gpio pin not found")
)

// NewPeriph creates a driver for the named pins. Pins are resolved by Init.
func NewPeriph(names PinNames) *Periph {
	return &Periph{
		names: names,
		pins:  make(map[Line]pgpio.PinIO, 3), //nolint:mnd // Three lines.
	}
}

// Init loads the host drivers, resolves the pins, makes the sensor an input
// and drives the outputs low.
func (p *Periph) Init() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("init periph host: %w", err)
	}

	for line, name := range map[Line]string{
		Light:  p.names.Light,
		Sensor: p.names.Sensor,
		Buzzer: p.names.Buzzer,
	} {
		pin := gpioreg.ByName(name)
		if pin == nil {
			return fmt.Errorf("%s %q: %w", line, name, errPinNotFound)
		}

		p.pins[line] = pin
	}

	if err := p.pins[Sensor].In(pgpio.PullDown, pgpio.NoEdge); err != nil {
		return fmt.Errorf("configure sensor input: %w", err)
	}

	for _, line := range []Line{Light, Buzzer} {
		if err := p.pins[line].Out(pgpio.Low); err != nil {
			return fmt.Errorf("configure %s output: %w", line, err)
		}
	}

	return nil
}

// SetLine drives an output pin.
func (p *Periph) SetLine(line Line, high bool) error {
	if line == Sensor {
		return fmt.Errorf("%s: %w", line, ErrNotOutput)
	}

	pin, ok := p.pins[line]
	if !ok {
		return fmt.Errorf("%s: %w", line, ErrUnknownLine)
	}

	if err := pin.Out(pgpio.Level(high)); err != nil {
		return fmt.Errorf("drive %s: %w", line, err)
	}

	return nil
}

// ReadLine samples a pin.
func (p *Periph) ReadLine(line Line) (bool, error) {
	pin, ok := p.pins[line]
	if !ok {
		return false, fmt.Errorf("%s: %w", line, ErrUnknownLine)
	}

	return pin.Read() == pgpio.High, nil
}
