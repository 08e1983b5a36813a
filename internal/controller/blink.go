package controller

import (
	"context"

	"github.com/oshokin/alarm-node/internal/gpio"
	"github.com/oshokin/alarm-node/internal/logger"
)

// BlinkPhase is the sub-state of an armed open tick.
type BlinkPhase int32

const (
	// BlinkIdle is every moment outside of the blink sub-cycle.
	BlinkIdle BlinkPhase = iota
	// BlinkInverted drives the LED to the inverse of the commanded light.
	BlinkInverted
	// BlinkRestored drives the LED back to the commanded light.
	BlinkRestored
)

// String implements fmt.Stringer.
func (p BlinkPhase) String() string {
	switch p {
	case BlinkInverted:
		return "inverted"
	case BlinkRestored:
		return "restored"
	default:
		return "idle"
	}
}

// led returns the LED level of the phase for the commanded light state.
func (p BlinkPhase) led(lightOn bool) bool {
	if p == BlinkInverted {
		return !lightOn
	}

	return lightOn
}

// blink runs one full sub-cycle: two half periods, inverted then restored.
// Called with m.mu held.
func (m *Machine) blink(ctx context.Context) {
	defer m.phase.Store(int32(BlinkIdle))

	for _, phase := range []BlinkPhase{BlinkInverted, BlinkRestored} {
		m.phase.Store(int32(phase))
		m.drive(ctx, gpio.Light, phase.led(m.state.lightOn))

		if err := m.sleeper.Sleep(ctx, m.halfPeriod); err != nil {
			logger.DebugKV(ctx, "Blink interrupted", "phase", phase.String(), "error", err)
			m.drive(ctx, gpio.Light, m.state.lightOn)

			return
		}
	}
}

// Blink returns the current blink phase without waiting for a running tick.
func (m *Machine) Blink() BlinkPhase {
	return BlinkPhase(m.phase.Load())
}
