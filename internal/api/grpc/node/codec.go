package node

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/alarm-node/internal/domain/home"
)

// Document keys.
const (
	keyDevice   = "device"
	keyParam    = "param"
	keyValue    = "value"
	keyActor    = "actor"
	keyHostname = "hostname"
	keyUsername = "username"

	keyLightOn          = "light_on"
	keyArmed            = "armed"
	keyDoor             = "door"
	keyAlertActive      = "alert_active"
	keyNotificationSent = "notification_sent"
	keyBlink            = "blink"
	keyTicks            = "ticks"
)

// ErrMalformed is returned for documents missing a required key or carrying a wrong type.
var ErrMalformed = errors.New("malformed document")

// WriteRequest is a decoded Write request.
type WriteRequest struct {
	// Device is the device name, e.g. "Home Light".
	Device string
	// Param is the parameter name, e.g. "Power".
	Param string
	// Value is the requested value.
	Value any
	// Actor identifies the sender, it may be nil.
	Actor *home.Actor
}

// EncodeWrite builds the Write request document.
func EncodeWrite(req *WriteRequest) (*structpb.Struct, error) {
	fields := map[string]any{
		keyDevice: req.Device,
		keyParam:  req.Param,
		keyValue:  req.Value,
	}

	if req.Actor != nil {
		fields[keyActor] = map[string]any{
			keyHostname: req.Actor.Hostname,
			keyUsername: req.Actor.Username,
		}
	}

	doc, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode write request: %w", err)
	}

	return doc, nil
}

// DecodeWrite parses a Write request document.
func DecodeWrite(doc *structpb.Struct) (*WriteRequest, error) {
	fields := doc.GetFields()

	device := fields[keyDevice].GetStringValue()
	param := fields[keyParam].GetStringValue()

	if device == "" || param == "" {
		return nil, fmt.Errorf("%w: device and param are required", ErrMalformed)
	}

	value, ok := fields[keyValue]
	if !ok {
		return nil, fmt.Errorf("%w: value is required", ErrMalformed)
	}

	req := &WriteRequest{
		Device: device,
		Param:  param,
		Value:  value.AsInterface(),
	}

	if actor := fields[keyActor].GetStructValue(); actor != nil {
		req.Actor = &home.Actor{
			Hostname: actor.GetFields()[keyHostname].GetStringValue(),
			Username: actor.GetFields()[keyUsername].GetStringValue(),
		}
	}

	return req, nil
}

// EncodeSnapshot builds the snapshot document.
func EncodeSnapshot(s home.Snapshot) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			keyLightOn:          structpb.NewBoolValue(s.LightOn),
			keyArmed:            structpb.NewBoolValue(s.Armed),
			keyDoor:             structpb.NewStringValue(s.Door.String()),
			keyAlertActive:      structpb.NewBoolValue(s.AlertActive),
			keyNotificationSent: structpb.NewBoolValue(s.NotificationSent),
			keyBlink:            structpb.NewStringValue(s.Blink),
			keyTicks:            structpb.NewNumberValue(float64(s.Ticks)),
		},
	}
}

// DecodeSnapshot parses a snapshot document.
func DecodeSnapshot(doc *structpb.Struct) (home.Snapshot, error) {
	fields := doc.GetFields()

	door, ok := home.ParseDoorState(fields[keyDoor].GetStringValue())
	if !ok {
		return home.Snapshot{}, fmt.Errorf("%w: door %q", ErrMalformed, fields[keyDoor].GetStringValue())
	}

	return home.Snapshot{
		LightOn:          fields[keyLightOn].GetBoolValue(),
		Armed:            fields[keyArmed].GetBoolValue(),
		Door:             door,
		AlertActive:      fields[keyAlertActive].GetBoolValue(),
		NotificationSent: fields[keyNotificationSent].GetBoolValue(),
		Blink:            fields[keyBlink].GetStringValue(),
		Ticks:            int64(fields[keyTicks].GetNumberValue()),
	}, nil
}
