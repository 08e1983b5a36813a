package gpio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var errTestBus = errors.New("bus error")

// TestMemory_SetReadAndFailures covers writes, sensor simulation and failure injection.
func TestMemory_SetReadAndFailures(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	require.NoError(t, m.Init())

	require.NoError(t, m.SetLine(Light, true))
	high, err := m.ReadLine(Light)
	require.NoError(t, err)
	require.True(t, high)

	require.ErrorIs(t, m.SetLine(Sensor, true), ErrNotOutput)
	require.ErrorIs(t, m.SetLine(Line(42), true), ErrUnknownLine)

	m.SetSensor(true)
	high, err = m.ReadLine(Sensor)
	require.NoError(t, err)
	require.True(t, high)

	m.FailWrites(Light, errTestBus)
	require.ErrorIs(t, m.SetLine(Light, false), errTestBus)
	require.True(t, m.Level(Light))

	m.FailWrites(Light, nil)
	require.NoError(t, m.SetLine(Light, false))
	require.Equal(t, []Write{{Light, true}, {Light, false}}, m.Writes())
}
