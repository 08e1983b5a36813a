package home

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParseCommand verifies identity routing and boolean payload validation.
func TestParseCommand(t *testing.T) {
	t.Parallel()

	cmd, err := ParseCommand(DeviceLight, FieldPower, true)
	require.NoError(t, err)
	require.Equal(t, SetLightPower{On: true}, cmd)

	cmd, err = ParseCommand(DeviceAlarm, FieldPower, false)
	require.NoError(t, err)
	require.Equal(t, SetAlarmArmed{Armed: false}, cmd)

	// Read-only and foreign parameters are not errors.
	cmd, err = ParseCommand(DeviceDoorSensor, FieldDoorStatus, "OPENED")
	require.NoError(t, err)
	require.Equal(t, Unrecognized{Device: DeviceDoorSensor, Field: FieldDoorStatus}, cmd)

	_, err = ParseCommand(DeviceLight, FieldPower, "on")
	require.ErrorIs(t, err, ErrInvalidValue)

	_, err = ParseCommand(DeviceAlarm, FieldPower, 1)
	require.ErrorIs(t, err, ErrInvalidValue)
}

// TestParseSlugCommand checks that topic segments resolve to the same commands.
func TestParseSlugCommand(t *testing.T) {
	t.Parallel()

	cmd, err := ParseSlugCommand("home_light", "power", true)
	require.NoError(t, err)
	require.Equal(t, SetLightPower{On: true}, cmd)

	cmd, err = ParseSlugCommand("alarm_system", "power", true)
	require.NoError(t, err)
	require.Equal(t, SetAlarmArmed{Armed: true}, cmd)

	cmd, err = ParseSlugCommand("garage", "power", true)
	require.NoError(t, err)
	require.IsType(t, Unrecognized{}, cmd)
}

// TestParamIdentity checks names, slugs and initial values of the registered parameters.
func TestParamIdentity(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Door Sensor Status/Door Status", ParamDoorStatus.String())
	require.Equal(t, "door_sensor_status", Slug(ParamAlarmTriggered.Device()))
	require.Equal(t, "alarm_triggered", Slug(ParamAlarmTriggered.Field()))
	require.Equal(t, DoorStatusClosed, ParamDoorStatus.Initial())
	require.Equal(t, false, ParamLightPower.Initial())
	require.True(t, ParamAlarmPower.Writable())
	require.False(t, ParamDoorStatus.Writable())
	require.Equal(t, "unknown", Param(0).String())
}

// TestDoorState covers sensor mapping, published status and parsing.
func TestDoorState(t *testing.T) {
	t.Parallel()

	require.Equal(t, DoorOpen, DoorFromSensor(true))
	require.Equal(t, DoorClosed, DoorFromSensor(false))
	require.Equal(t, DoorStatusOpened, DoorOpen.Status())
	require.Equal(t, DoorStatusClosed, DoorClosed.Status())
	require.Equal(t, DoorStatusClosed, DoorUnknown.Status())
	require.Equal(t, "UNKNOWN", DoorUnknown.String())

	for _, d := range []DoorState{DoorUnknown, DoorClosed, DoorOpen} {
		parsed, ok := ParseDoorState(d.String())
		require.True(t, ok)
		require.Equal(t, d, parsed)
	}

	_, ok := ParseDoorState("AJAR")
	require.False(t, ok)
}

// TestActorString formats actors for logs.
func TestActorString(t *testing.T) {
	t.Parallel()

	var nobody *Actor
	require.Equal(t, "unknown", nobody.String())
	require.Equal(t, "o.shokin@office-pc", (&Actor{Hostname: "office-pc", Username: "o.shokin"}).String())
}
