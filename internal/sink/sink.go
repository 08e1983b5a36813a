package sink

import (
	"context"
	"errors"

	"github.com/oshokin/alarm-node/internal/domain/home"
)

// ErrUnavailable is returned when a push cannot be delivered.
var ErrUnavailable = errors.New("parameter sink unavailable")

// Sink receives parameter values. Push is fire-and-forget for the caller:
// a returned error is logged, never retried.
type Sink interface {
	Push(ctx context.Context, param home.Param, value any) error
}

// Fanout pushes to every sink and joins their errors.
type Fanout []Sink

// Push implements Sink.
func (f Fanout) Push(ctx context.Context, param home.Param, value any) error {
	var errs []error

	for _, s := range f {
		if err := s.Push(ctx, param, value); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Discard drops every value.
type Discard struct{}

// Push implements Sink.
func (Discard) Push(context.Context, home.Param, any) error { return nil }
