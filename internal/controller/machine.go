package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/oshokin/alarm-node/internal/alert"
	"github.com/oshokin/alarm-node/internal/domain/home"
	"github.com/oshokin/alarm-node/internal/gpio"
	"github.com/oshokin/alarm-node/internal/logger"
	"github.com/oshokin/alarm-node/internal/sink"
)

const (
	// DefaultBlinkHalfPeriod is the length of each half of the alarm blink.
	DefaultBlinkHalfPeriod = 150 * time.Millisecond

	// DefaultAlertMessage is raised when no localized text is configured.
	DefaultAlertMessage = "Door opened while alarm is ON!"
)

// Diagnostic event names.
const (
	eventLight    = "LIGHT_ACTION"
	eventAlarm    = "ALARM_ACTION"
	eventDoor     = "DOOR_ACTION"
	eventSecurity = "SECURITY_ALERT"
)

// ErrHardwareApply is returned when a GPIO write requested by a command did not take effect.
var ErrHardwareApply = errors.New("hardware apply failed")

// Store persists the commanded values.
type Store interface {
	Save(ctx context.Context, values *home.Commanded) error
}

// state is the shared state block. Every field is guarded by Machine.mu.
type state struct {
	// lightOn is the last commanded light state.
	lightOn bool
	// armed is the alarm arm flag.
	armed bool
	// door is the last sensed door state.
	door home.DoorState
	// alertActive is set while an intrusion alert is active for the episode.
	alertActive bool
	// notified latches once the alert for the episode has been raised.
	notified bool
}

// Machine is the alarm/door state machine and the command router.
type Machine struct {
	// mu guards state; a tick holds it for its whole duration.
	mu    sync.Mutex
	state state

	lines      gpio.Lines
	sink       sink.Sink
	alerts     alert.Channel
	sleeper    Sleeper
	store      Store
	halfPeriod time.Duration
	message    string

	// phase is readable while a tick holds mu.
	phase atomic.Int32
	// ticks counts completed ticks.
	ticks atomic.Int64
}

// Option configures a Machine.
type Option func(*Machine)

// WithSleeper replaces the timer based sleeper used by the blink.
func WithSleeper(s Sleeper) Option {
	return func(m *Machine) {
		if s != nil {
			m.sleeper = s
		}
	}
}

// WithBlinkHalfPeriod sets the length of each blink half.
func WithBlinkHalfPeriod(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.halfPeriod = d
		}
	}
}

// WithAlertMessage sets the alert text.
func WithAlertMessage(message string) Option {
	return func(m *Machine) {
		if message != "" {
			m.message = message
		}
	}
}

// WithStore persists commanded values after every applied command.
func WithStore(s Store) Option {
	return func(m *Machine) {
		m.store = s
	}
}

// New creates a Machine in its boot state: light off, disarmed, door unknown.
func New(lines gpio.Lines, params sink.Sink, alerts alert.Channel, opts ...Option) *Machine {
	m := &Machine{
		lines:      lines,
		sink:       params,
		alerts:     alerts,
		sleeper:    TimerSleeper{},
		halfPeriod: DefaultBlinkHalfPeriod,
		message:    DefaultAlertMessage,
		state: state{
			door: home.DoorUnknown,
		},
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Init configures the GPIO lines: sensor as input, light and buzzer low.
func (m *Machine) Init(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.lines.Init(); err != nil {
		return err
	}

	logger.Info(ctx, "GPIO lines initialised")

	return nil
}

// Snapshot returns a copy of the current state. It waits for a running tick.
func (m *Machine) Snapshot() home.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return home.Snapshot{
		LightOn:          m.state.lightOn,
		Armed:            m.state.armed,
		Door:             m.state.door,
		AlertActive:      m.state.alertActive,
		NotificationSent: m.state.notified,
		Blink:            m.Blink().String(),
		Ticks:            m.ticks.Load(),
	}
}

// Ticks returns the number of completed ticks without waiting for a running tick.
func (m *Machine) Ticks() int64 {
	return m.ticks.Load()
}

// Tick runs one evaluation cycle. It reports whether the blink sub-cycle
// consumed the tick's time, in which case the scheduler skips its delay.
func (m *Machine) Tick(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.ticks.Inc()

	m.detectDoorEdge(ctx)

	switch {
	case !m.state.armed:
		m.reset(ctx)

		return false
	case m.state.door != home.DoorOpen:
		m.drive(ctx, gpio.Buzzer, false)
		m.drive(ctx, gpio.Light, m.state.lightOn)

		return false
	default:
		m.intrusion(ctx)

		return true
	}
}

// detectDoorEdge samples the sensor and records a door transition.
// On a read error the stored door state is kept.
func (m *Machine) detectDoorEdge(ctx context.Context) {
	high, err := m.lines.ReadLine(gpio.Sensor)
	if err != nil {
		logger.WarnKV(ctx, "Failed to read door sensor", "error", err)
		return
	}

	door := home.DoorFromSensor(high)
	if door == m.state.door {
		return
	}

	m.state.door = door
	m.state.notified = false

	logger.Event(ctx, eventDoor, "Door Sensor: "+door.Status())
	m.push(ctx, home.ParamDoorStatus, door.Status())

	if door == home.DoorClosed {
		m.state.alertActive = false
		m.push(ctx, home.ParamAlarmTriggered, false)
	}
}

// intrusion handles an armed tick with the door open.
func (m *Machine) intrusion(ctx context.Context) {
	m.state.alertActive = true
	m.push(ctx, home.ParamAlarmTriggered, true)
	m.drive(ctx, gpio.Buzzer, true)

	m.blink(ctx)

	if m.state.notified {
		return
	}

	if err := m.alerts.RaiseAlert(ctx, m.message); err != nil {
		logger.WarnKV(ctx, "Failed to deliver alert", "error", err)
	}

	logger.Event(ctx, eventSecurity, "Intrusion detected")

	m.state.notified = true
}

// reset forces the disarmed outputs: door reported closed, alert cleared,
// buzzer off and LED back to the commanded light.
func (m *Machine) reset(ctx context.Context) {
	m.push(ctx, home.ParamDoorStatus, home.DoorStatusClosed)
	m.push(ctx, home.ParamAlarmTriggered, false)

	m.state.alertActive = false
	m.state.notified = false

	m.drive(ctx, gpio.Buzzer, false)
	m.drive(ctx, gpio.Light, m.state.lightOn)
}

// drive writes an output line; failures are logged and otherwise ignored.
func (m *Machine) drive(ctx context.Context, line gpio.Line, high bool) {
	if err := m.lines.SetLine(line, high); err != nil {
		logger.WarnKV(ctx, "Failed to drive GPIO line", "line", line.String(), "level", high, "error", err)
	}
}

// push mirrors a value to the sink; failures are the sink's concern.
func (m *Machine) push(ctx context.Context, param home.Param, value any) {
	if err := m.sink.Push(ctx, param, value); err != nil {
		logger.WarnKV(ctx, "Failed to push parameter", "param", param.String(), "error", err)
	}
}

// Republish pushes every mirrored value as the sink last saw it to s: the
// commanded light and alarm, and the door and alert as reported by the last
// tick. It holds the state lock, so no tick or command interleaves its pushes.
func (m *Machine) Republish(ctx context.Context, s sink.Sink) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	door := home.DoorStatusClosed
	if m.state.armed {
		door = m.state.door.Status()
	}

	values := []struct {
		param home.Param
		value any
	}{
		{home.ParamLightPower, m.state.lightOn},
		{home.ParamAlarmPower, m.state.armed},
		{home.ParamDoorStatus, door},
		{home.ParamAlarmTriggered, m.state.alertActive},
	}

	var errs []error

	for _, v := range values {
		if err := s.Push(ctx, v.param, v.value); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
