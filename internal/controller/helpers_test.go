package controller

import (
	"context"
	"sync"
	"time"

	"github.com/oshokin/alarm-node/internal/alert"
	"github.com/oshokin/alarm-node/internal/domain/home"
	"github.com/oshokin/alarm-node/internal/gpio"
	"github.com/oshokin/alarm-node/internal/sink"
)

// sleepCall is one blink sleep with the outputs observed while sleeping.
type sleepCall struct {
	// d is the requested duration.
	d time.Duration
	// phase is the blink phase at the time of the call.
	phase BlinkPhase
	// led is the light line level at the time of the call.
	led bool
}

// sleepLog records sleeps instead of waiting.
type sleepLog struct {
	mu    sync.Mutex
	calls []sleepCall
}

func (l *sleepLog) all() []sleepCall {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]sleepCall(nil), l.calls...)
}

// fixture bundles a machine with in-memory collaborators.
type fixture struct {
	m      *Machine
	lines  *gpio.Memory
	params *sink.Recorder
	alerts *alert.Recorder
	sleeps *sleepLog
	store  *memoryStore
}

func newFixture(opts ...Option) *fixture {
	f := &fixture{
		lines:  gpio.NewMemory(),
		params: sink.NewRecorder(),
		alerts: new(alert.Recorder),
		sleeps: new(sleepLog),
		store:  new(memoryStore),
	}

	sleeper := SleeperFunc(func(_ context.Context, d time.Duration) error {
		f.sleeps.mu.Lock()
		defer f.sleeps.mu.Unlock()

		f.sleeps.calls = append(f.sleeps.calls, sleepCall{
			d:     d,
			phase: f.m.Blink(),
			led:   f.lines.Level(gpio.Light),
		})

		return nil
	})

	opts = append([]Option{WithSleeper(sleeper), WithStore(f.store)}, opts...)
	f.m = New(f.lines, f.params, f.alerts, opts...)

	if err := f.m.Init(context.Background()); err != nil {
		panic(err)
	}

	return f
}

// pushesOf returns the values pushed for one parameter, in order.
func (f *fixture) pushesOf(param home.Param) []any {
	var out []any

	for _, p := range f.params.Pushes() {
		if p.Param == param {
			out = append(out, p.Value)
		}
	}

	return out
}

// last returns the last value pushed for param.
func (f *fixture) last(param home.Param) any {
	v, _ := f.params.Last(param)
	return v
}

// memoryStore records persisted commanded values.
type memoryStore struct {
	mu    sync.Mutex
	saved []home.Commanded
	err   error
}

func (s *memoryStore) Save(_ context.Context, values *home.Commanded) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}

	s.saved = append(s.saved, *values)

	return nil
}

func (s *memoryStore) all() []home.Commanded {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]home.Commanded(nil), s.saved...)
}

// failingSensor wraps Memory and fails sensor reads.
type failingSensor struct {
	*gpio.Memory

	err error
}

func (f failingSensor) ReadLine(line gpio.Line) (bool, error) {
	if line == gpio.Sensor && f.err != nil {
		return false, f.err
	}

	return f.Memory.ReadLine(line)
}

func armed(v bool) home.SetAlarmArmed {
	return home.SetAlarmArmed{Armed: v}
}
