package mqtt

import (
	"context"
	"fmt"

	"github.com/oshokin/alarm-node/internal/alert"
	"github.com/oshokin/alarm-node/internal/domain/home"
	"github.com/oshokin/alarm-node/internal/sink"
)

// alertsTopic receives raised alerts.
const alertsTopic = "alerts"

// ParamTopic returns the relative topic of a parameter, e.g. "home_light/power".
func ParamTopic(param home.Param) string {
	return home.Slug(param.Device()) + "/" + home.Slug(param.Field())
}

// Sink mirrors parameter values as retained messages.
type Sink struct {
	client *Client
	// onFailure is told about values the broker did not accept.
	onFailure func(param home.Param, value any)
}

var _ sink.Sink = (*Sink)(nil)

// NewSink creates a sink publishing through client.
func NewSink(client *Client) *Sink {
	return &Sink{client: client}
}

// OnDeliveryFailure registers fn for pushes that were accepted locally but
// never confirmed by the broker. Call it before the first push.
func (s *Sink) OnDeliveryFailure(fn func(param home.Param, value any)) {
	s.onFailure = fn
}

// Push implements sink.Sink.
func (s *Sink) Push(_ context.Context, param home.Param, value any) error {
	var onFailure func(error)
	if s.onFailure != nil {
		onFailure = func(error) {
			s.onFailure(param, value)
		}
	}

	if err := s.client.publish(ParamTopic(param), value, true, onFailure); err != nil {
		return fmt.Errorf("%w: %s: %w", sink.ErrUnavailable, param, err)
	}

	return nil
}

// Alerts publishes alert events.
type Alerts struct {
	client *Client
}

var _ alert.Channel = (*Alerts)(nil)

// NewAlerts creates an alert channel publishing through client.
func NewAlerts(client *Client) *Alerts {
	return &Alerts{client: client}
}

// RaiseAlert implements alert.Channel.
func (a *Alerts) RaiseAlert(_ context.Context, message string) error {
	if err := a.client.Publish(alertsTopic, alert.NewEvent(message), false); err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}

	return nil
}
