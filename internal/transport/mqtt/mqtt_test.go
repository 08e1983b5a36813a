package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/oshokin/alarm-node/internal/alert"
	"github.com/oshokin/alarm-node/internal/config"
	"github.com/oshokin/alarm-node/internal/controller"
	"github.com/oshokin/alarm-node/internal/domain/home"
	"github.com/oshokin/alarm-node/internal/gpio"
	"github.com/oshokin/alarm-node/internal/sink"
)

var errTestRejected = errors.New("not authorized")

// TestSink_PublishesRetainedJSON checks topics and payloads of mirrored parameters.
func TestSink_PublishesRetainedJSON(t *testing.T) {
	t.Parallel()

	fake := newFakeClient()
	s := NewSink(newTestClient(fake))
	ctx := context.Background()

	require.NoError(t, s.Push(ctx, home.ParamLightPower, true))
	require.NoError(t, s.Push(ctx, home.ParamDoorStatus, home.DoorStatusOpened))

	require.Equal(t, []published{
		{topic: "home/alarm-node/home_light/power", retained: true, payload: "true"},
		{topic: "home/alarm-node/door_sensor_status/door_status", retained: true, payload: `"OPENED"`},
	}, fake.all())
}

// TestSink_Disconnected reports the sink as unavailable.
func TestSink_Disconnected(t *testing.T) {
	t.Parallel()

	fake := newFakeClient()
	fake.open = false

	err := NewSink(newTestClient(fake)).Push(context.Background(), home.ParamAlarmTriggered, true)
	require.ErrorIs(t, err, sink.ErrUnavailable)
	require.ErrorIs(t, err, ErrNotConnected)
	require.Empty(t, fake.all())
}

// TestSink_UnconfirmedPushIsNotCoalesced redelivers a value the broker rejected after Push returned.
func TestSink_UnconfirmedPushIsNotCoalesced(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := newFakeClient()
	fake.publishErr = errTestRejected

	published := NewSink(newTestClient(fake))
	coalescing := sink.NewCoalescing(published, time.Minute)

	var failed atomic.Int32

	published.OnDeliveryFailure(func(param home.Param, value any) {
		coalescing.Forget(param, value)
		failed.Inc()
	})

	require.NoError(t, coalescing.Push(ctx, home.ParamDoorStatus, home.DoorStatusClosed))
	require.Eventually(t, func() bool { return failed.Load() == 1 }, time.Second, time.Millisecond)

	fake.mu.Lock()
	fake.publishErr = nil
	fake.mu.Unlock()

	require.NoError(t, coalescing.Push(ctx, home.ParamDoorStatus, home.DoorStatusClosed))
	require.Len(t, fake.all(), 2)

	// Confirmed now, so the repeat is coalesced.
	require.NoError(t, coalescing.Push(ctx, home.ParamDoorStatus, home.DoorStatusClosed))
	require.Len(t, fake.all(), 2)
	require.Equal(t, int32(1), failed.Load())
}

// TestClient_RejectsAbsoluteTopics keeps every topic below the root.
func TestClient_RejectsAbsoluteTopics(t *testing.T) {
	t.Parallel()

	c := newTestClient(newFakeClient())

	require.ErrorIs(t, c.Publish("/abs", 1, false), errAbsoluteTopic)
	require.ErrorIs(t, c.Publish("", 1, false), errEmptyTopic)
}

// TestAlerts_PublishesEvent sends an identified alert event.
func TestAlerts_PublishesEvent(t *testing.T) {
	t.Parallel()

	fake := newFakeClient()
	require.NoError(t, NewAlerts(newTestClient(fake)).RaiseAlert(context.Background(), "Door opened while alarm is ON!"))

	msg, ok := fake.byTopic("home/alarm-node/alerts")
	require.True(t, ok)
	require.False(t, msg.retained)

	var event alert.Event
	require.NoError(t, json.Unmarshal([]byte(msg.payload), &event))
	require.Equal(t, "Door opened while alarm is ON!", event.Message)
	require.NotEmpty(t, event.ID)
	require.False(t, event.RaisedAt.IsZero())
}

// TestAnnouncer_RegistrationValues publishes the node and its registration values without a source.
func TestAnnouncer_RegistrationValues(t *testing.T) {
	t.Parallel()

	fake := newFakeClient()
	c := newTestClient(fake)
	a := NewAnnouncer("Smart Home Node", nil)

	a.OnConnect(c)

	status, ok := fake.byTopic("home/alarm-node/status")
	require.True(t, ok)
	require.Equal(t, statusOnline, status.payload)

	node, ok := fake.byTopic("home/alarm-node/node")
	require.True(t, ok)

	var info NodeInfo
	require.NoError(t, json.Unmarshal([]byte(node.payload), &info))
	require.Equal(t, "Smart Home Node", info.Name)
	require.Len(t, info.Params, len(home.Params()))
	require.Equal(t, ParamInfo{Device: "Home Light", Param: "Power", Topic: "home_light/power", Writable: true}, info.Params[0])

	door, ok := fake.byTopic("home/alarm-node/door_sensor_status/door_status")
	require.True(t, ok)
	require.Equal(t, `"CLOSED"`, door.payload)
}

// TestAnnouncer_RestoredValuesStayRetained checks that the retained light and
// alarm values match the machine whether the connect callback runs before or
// after the restore, and that a later write of the same value is not lost.
func TestAnnouncer_RestoredValuesStayRetained(t *testing.T) {
	t.Parallel()

	for _, announceFirst := range []bool{true, false} {
		ctx := context.Background()
		fake := newFakeClient()
		c := newTestClient(fake)
		machine := controller.New(
			gpio.NewMemory(),
			sink.NewCoalescing(NewSink(c), time.Minute),
			&alert.Recorder{},
		)
		a := NewAnnouncer("Smart Home Node", machine)

		if announceFirst {
			a.OnConnect(c)
		}

		require.NoError(t, machine.Restore(ctx, &home.Commanded{LightOn: true, Armed: true}))

		if !announceFirst {
			a.OnConnect(c)
		}

		require.NoError(t, machine.Apply(ctx, home.SetLightPower{On: true}))

		light, ok := fake.byTopic("home/alarm-node/home_light/power")
		require.True(t, ok)
		require.True(t, light.retained)
		require.Equal(t, "true", light.payload, "announce first: %t", announceFirst)

		alarm, ok := fake.byTopic("home/alarm-node/alarm_system/power")
		require.True(t, ok)
		require.Equal(t, "true", alarm.payload, "announce first: %t", announceFirst)
	}
}

// TestAnnouncer_ReconnectRepublishesLiveValues mirrors the reported door and alert on every connect.
func TestAnnouncer_ReconnectRepublishesLiveValues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := newFakeClient()
	c := newTestClient(fake)
	lines := gpio.NewMemory()
	machine := controller.New(lines, sink.Discard{}, &alert.Recorder{}, controller.WithSleeper(controller.SleeperFunc(
		func(context.Context, time.Duration) error { return nil },
	)))
	a := NewAnnouncer("Smart Home Node", machine)

	require.NoError(t, machine.Apply(ctx, home.SetAlarmArmed{Armed: true}))
	lines.SetSensor(true)
	require.True(t, machine.Tick(ctx))

	a.OnConnect(c)

	door, ok := fake.byTopic("home/alarm-node/door_sensor_status/door_status")
	require.True(t, ok)
	require.Equal(t, `"OPENED"`, door.payload)

	triggered, ok := fake.byTopic("home/alarm-node/door_sensor_status/alarm_triggered")
	require.True(t, ok)
	require.Equal(t, "true", triggered.payload)

	// Disarming reports the door closed even though the sensor still reads open.
	require.NoError(t, machine.Apply(ctx, home.SetAlarmArmed{Armed: false}))

	first := len(fake.all())
	a.OnConnect(c)
	require.Len(t, fake.all(), first+2+len(home.Params()))

	door, ok = fake.byTopic("home/alarm-node/door_sensor_status/door_status")
	require.True(t, ok)
	require.Equal(t, `"CLOSED"`, door.payload)
}

// recordingApplier keeps applied commands.
type recordingApplier struct {
	mu   sync.Mutex
	cmds []home.Command
}

func (r *recordingApplier) Apply(_ context.Context, cmd home.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cmds = append(r.cmds, cmd)

	return nil
}

// TestSubscribeWrites routes set topics to the applier.
func TestSubscribeWrites(t *testing.T) {
	t.Parallel()

	fake := newFakeClient()
	applier := new(recordingApplier)
	require.NoError(t, SubscribeWrites(newTestClient(fake), applier))

	filter := "home/alarm-node/+/+/set"
	require.Contains(t, fake.handlers, filter)

	fake.deliver(filter, "home/alarm-node/home_light/power/set", `{"value": true}`)
	fake.deliver(filter, "home/alarm-node/alarm_system/power/set", `false`)
	fake.deliver(filter, "home/alarm-node/garage/power/set", `true`)
	fake.deliver(filter, "home/alarm-node/home_light/power/set", `{"value": "on"}`)
	fake.deliver(filter, "home/alarm-node/home_light/power/set", `{"value": true, "extra": 1}`)
	fake.deliver(filter, "other/home_light/power/set", `true`)

	require.Equal(t, []home.Command{
		home.SetLightPower{On: true},
		home.SetAlarmArmed{Armed: false},
		home.Unrecognized{Device: "garage", Field: "power"},
	}, applier.cmds)
}

// TestDecodeWrite_Errors rejects malformed writes.
func TestDecodeWrite_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		topic   string
		payload string
	}{
		{name: "not json", topic: "home_light/power/set", payload: "on"},
		{name: "wrong type", topic: "home_light/power/set", payload: `"true"`},
		{name: "unused key", topic: "home_light/power/set", payload: `{"state": true}`},
		{name: "short topic", topic: "power/set", payload: `true`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd, err := decodeWrite(tt.topic, []byte(tt.payload))
			require.ErrorIs(t, err, home.ErrInvalidValue)
			require.Nil(t, cmd)
		})
	}
}

// TestNewClient_Options builds a real paho client without connecting.
func TestNewClient_Options(t *testing.T) {
	t.Parallel()

	cfg := config.Default().MQTT
	cfg.Broker = "tcp://127.0.0.1:1"
	cfg.TopicRoot = "home/alarm-node/"

	c := NewClient(context.Background(), &cfg, nil)
	require.Equal(t, "home/alarm-node/alerts", c.Topic(alertsTopic))
	require.False(t, c.client.IsConnectionOpen())
	require.ErrorIs(t, c.Publish("status", true, true), ErrNotConnected)

	c.Disconnect()
}
