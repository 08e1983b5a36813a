package home

import "strings"

// Device names as registered with the sync layer.
const (
	DeviceLight      = "Home Light"
	DeviceAlarm      = "Alarm System"
	DeviceDoorSensor = "Door Sensor Status"
)

// Parameter names as registered with the sync layer.
const (
	FieldPower          = "Power"
	FieldDoorStatus     = "Door Status"
	FieldAlarmTriggered = "Alarm Triggered"
)

// Param identifies one externally observable value.
type Param int

const (
	// ParamLightPower mirrors the commanded light state (bool).
	ParamLightPower Param = iota + 1
	// ParamAlarmPower mirrors the armed flag (bool).
	ParamAlarmPower
	// ParamDoorStatus mirrors the door position (string, OPENED or CLOSED).
	ParamDoorStatus
	// ParamAlarmTriggered mirrors the alert flag (bool).
	ParamAlarmTriggered
)

// Params lists every parameter in registration order.
func Params() []Param {
	return []Param{
		ParamLightPower,
		ParamAlarmPower,
		ParamDoorStatus,
		ParamAlarmTriggered,
	}
}

// Device returns the name of the device owning the parameter.
func (p Param) Device() string {
	switch p {
	case ParamLightPower:
		return DeviceLight
	case ParamAlarmPower:
		return DeviceAlarm
	case ParamDoorStatus, ParamAlarmTriggered:
		return DeviceDoorSensor
	default:
		return ""
	}
}

// Field returns the parameter name within its device.
func (p Param) Field() string {
	switch p {
	case ParamLightPower, ParamAlarmPower:
		return FieldPower
	case ParamDoorStatus:
		return FieldDoorStatus
	case ParamAlarmTriggered:
		return FieldAlarmTriggered
	default:
		return ""
	}
}

// Writable reports whether the parameter accepts inbound writes.
func (p Param) Writable() bool {
	return p == ParamLightPower || p == ParamAlarmPower
}

// Initial returns the value the parameter is registered with.
func (p Param) Initial() any {
	if p == ParamDoorStatus {
		return DoorStatusClosed
	}

	return false
}

// String implements fmt.Stringer.
func (p Param) String() string {
	if p.Device() == "" {
		return "unknown"
	}

	return p.Device() + "/" + p.Field()
}

// Slug turns a device or parameter name into a topic segment,
// e.g. "Door Sensor Status" -> "door_sensor_status".
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}
