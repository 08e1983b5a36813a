package sink

import (
	"context"
	"sync"

	"github.com/oshokin/alarm-node/internal/domain/home"
)

// Push is one recorded value.
type Push struct {
	Param home.Param
	Value any
}

// Recorder keeps every pushed value in memory. It backs the gRPC snapshot of
// mirrored values and the tests.
type Recorder struct {
	mu     sync.Mutex
	pushes []Push
	last   map[home.Param]any
	// err, when set, is returned from Push after recording.
	err error
}

var _ Sink = (*Recorder)(nil)

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		last: make(map[home.Param]any, len(home.Params())),
	}
}

// Push implements Sink.
func (r *Recorder) Push(_ context.Context, param home.Param, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pushes = append(r.pushes, Push{Param: param, Value: value})
	r.last[param] = value

	return r.err
}

// Fail makes subsequent pushes return err after recording them.
func (r *Recorder) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.err = err
}

// Pushes returns a copy of the recorded pushes.
func (r *Recorder) Pushes() []Push {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Push(nil), r.pushes...)
}

// Last returns the last value pushed for param.
func (r *Recorder) Last(param home.Param) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.last[param]

	return v, ok
}

// Values returns the last value of every pushed parameter.
func (r *Recorder) Values() map[home.Param]any {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[home.Param]any, len(r.last))
	for k, v := range r.last {
		out[k] = v
	}

	return out
}

// Reset forgets the recorded pushes but keeps the last values.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pushes = nil
}
