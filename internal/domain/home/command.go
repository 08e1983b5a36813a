package home

import (
	"errors"
	"fmt"
)

// ErrInvalidValue is returned when a write carries a payload of the wrong type.
var ErrInvalidValue = errors.New("invalid parameter value")

// Command is an inbound write request after it has been identified.
// The set of implementations is closed: SetLightPower, SetAlarmArmed and Unrecognized.
type Command interface {
	isCommand()
}

// SetLightPower commands the light on or off.
type SetLightPower struct {
	// On is the requested light state.
	On bool
}

// SetAlarmArmed arms or disarms the alarm.
type SetAlarmArmed struct {
	// Armed is the requested alarm state.
	Armed bool
}

// Unrecognized is a write to a parameter the node does not own.
type Unrecognized struct {
	// Device is the device name from the request.
	Device string
	// Field is the parameter name from the request.
	Field string
}

func (SetLightPower) isCommand() {}
func (SetAlarmArmed) isCommand() {}
func (Unrecognized) isCommand()  {}

// ParseCommand identifies a write by its device and parameter names and validates the payload.
// Unknown pairs are not an error, they become Unrecognized.
//
//nolint:ireturn // Command is a closed sum type.
func ParseCommand(device, field string, value any) (Command, error) {
	switch {
	case device == DeviceLight && field == FieldPower:
		on, err := boolValue(value)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", device, field, err)
		}

		return SetLightPower{On: on}, nil
	case device == DeviceAlarm && field == FieldPower:
		armed, err := boolValue(value)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", device, field, err)
		}

		return SetAlarmArmed{Armed: armed}, nil
	default:
		return Unrecognized{Device: device, Field: field}, nil
	}
}

// ParseSlugCommand is ParseCommand for topic-style identities ("home_light", "power").
//
//nolint:ireturn // Command is a closed sum type.
func ParseSlugCommand(deviceSlug, fieldSlug string, value any) (Command, error) {
	for _, p := range Params() {
		if Slug(p.Device()) == deviceSlug && Slug(p.Field()) == fieldSlug {
			return ParseCommand(p.Device(), p.Field(), value)
		}
	}

	return Unrecognized{Device: deviceSlug, Field: fieldSlug}, nil
}

func boolValue(value any) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("expected bool, got %T: %w", value, ErrInvalidValue)
	}

	return b, nil
}
