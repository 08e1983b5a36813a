package controller

import (
	"context"
	"fmt"

	"github.com/oshokin/alarm-node/internal/domain/home"
	"github.com/oshokin/alarm-node/internal/gpio"
	"github.com/oshokin/alarm-node/internal/logger"
)

// Apply routes an inbound command. Unrecognized commands succeed without effect.
// The only error is a light write that did not reach the hardware, which
// leaves the state and the mirrored value untouched.
func (m *Machine) Apply(ctx context.Context, cmd home.Command) error {
	switch c := cmd.(type) {
	case home.SetLightPower:
		return m.setLightPower(ctx, c.On)
	case home.SetAlarmArmed:
		m.setAlarmArmed(ctx, c.Armed)

		return nil
	case home.Unrecognized:
		logger.DebugKV(ctx, "Ignoring write to unknown parameter", "device", c.Device, "param", c.Field)

		return nil
	default:
		logger.DebugKV(ctx, "Ignoring unsupported command", "command", fmt.Sprintf("%T", cmd))

		return nil
	}
}

func (m *Machine) setLightPower(ctx context.Context, on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.lines.SetLine(gpio.Light, on); err != nil {
		logger.WarnKV(ctx, "Failed to apply power for Home Light", "power", on, "error", err)

		return fmt.Errorf("%w: light power %t: %w", ErrHardwareApply, on, err)
	}

	m.state.lightOn = on

	logger.Event(ctx, eventLight, "Light Power -> "+onOff(on))
	m.push(ctx, home.ParamLightPower, on)
	m.persist(ctx)

	return nil
}

func (m *Machine) setAlarmArmed(ctx context.Context, armed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.armed = armed

	logger.Event(ctx, eventAlarm, "Alarm System set to: "+onOff(armed))

	if !armed {
		m.reset(ctx)
	}

	m.push(ctx, home.ParamAlarmPower, armed)
	m.persist(ctx)
}

// persist saves the commanded values. Called with m.mu held.
func (m *Machine) persist(ctx context.Context) {
	if m.store == nil {
		return
	}

	values := &home.Commanded{
		LightOn: m.state.lightOn,
		Armed:   m.state.armed,
	}

	if err := m.store.Save(ctx, values); err != nil {
		logger.WarnKV(ctx, "Failed to persist commanded state", "error", err)
	}
}

func onOff(v bool) string {
	if v {
		return "ON"
	}

	return "OFF"
}

// Restore re-applies persisted commanded values. It is meant for boot, before the
// scheduler starts, and does not persist them again.
func (m *Machine) Restore(ctx context.Context, values *home.Commanded) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.lines.SetLine(gpio.Light, values.LightOn); err != nil {
		return fmt.Errorf("%w: restore light power %t: %w", ErrHardwareApply, values.LightOn, err)
	}

	m.state.lightOn = values.LightOn
	m.state.armed = values.Armed

	logger.InfoKV(ctx, "Restored commanded state", "light", onOff(values.LightOn), "alarm", onOff(values.Armed))
	m.push(ctx, home.ParamLightPower, values.LightOn)
	m.push(ctx, home.ParamAlarmPower, values.Armed)

	return nil
}
