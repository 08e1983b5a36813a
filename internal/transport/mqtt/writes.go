package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/oshokin/alarm-node/internal/domain/home"
	"github.com/oshokin/alarm-node/internal/logger"
)

// setSuffix ends every write topic.
const setSuffix = "set"

// writesFilter matches <device>/<param>/set below the root.
const writesFilter = "+/+/" + setSuffix

// Applier executes an identified write.
type Applier interface {
	Apply(ctx context.Context, cmd home.Command) error
}

// writeRequest is the object form of a write payload.
type writeRequest struct {
	// Value is the requested parameter value.
	Value any `mapstructure:"value"`
}

// SubscribeWrites feeds writes received on <device>/<param>/set into applier.
// Failures are logged, MQTT writes have nobody to report back to.
func SubscribeWrites(client *Client, applier Applier) error {
	return client.Subscribe(writesFilter, func(ctx context.Context, topic string, payload []byte) {
		cmd, err := decodeWrite(topic, payload)
		if err != nil {
			logger.WarnKV(ctx, "Rejected write", "topic", topic, "error", err)
			return
		}

		if err = applier.Apply(ctx, cmd); err != nil {
			logger.WarnKV(ctx, "Failed to apply write", "topic", topic, "error", err)
		}
	})
}

// decodeWrite identifies a write by its topic. The payload is either a bare JSON
// value or an object with a "value" key.
//
//nolint:ireturn // Command is a closed sum type.
func decodeWrite(topic string, payload []byte) (home.Command, error) {
	segments := strings.Split(topic, "/")
	if len(segments) != 3 || segments[2] != setSuffix {
		return nil, fmt.Errorf("unexpected write topic %q: %w", topic, home.ErrInvalidValue)
	}

	var raw any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decode payload: %w: %w", home.ErrInvalidValue, err)
	}

	value := raw

	if object, ok := raw.(map[string]any); ok {
		var req writeRequest

		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			ErrorUnused: true,
			Result:      &req,
		})
		if err != nil {
			return nil, fmt.Errorf("create payload decoder: %w", err)
		}

		if err = decoder.Decode(object); err != nil {
			return nil, fmt.Errorf("decode payload: %w: %w", home.ErrInvalidValue, err)
		}

		value = req.Value
	}

	return home.ParseSlugCommand(segments[0], segments[1], value)
}
