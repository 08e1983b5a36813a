package integration

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	api "github.com/oshokin/alarm-node/internal/api/grpc/node"
	"github.com/oshokin/alarm-node/internal/config"
	"github.com/oshokin/alarm-node/internal/domain/home"
	"github.com/oshokin/alarm-node/internal/service/client"
	"github.com/oshokin/alarm-node/internal/service/common"
	"github.com/oshokin/alarm-node/internal/service/node"
)

// writeSettings stores a memory driver configuration with the given state file.
func writeSettings(t *testing.T, statePath string, restore bool) string {
	t.Helper()

	cfg := config.Default()
	cfg.GRPC.ListenAddress = "127.0.0.1:0"
	cfg.Node.StateFile = statePath
	cfg.Node.RestoreState = restore

	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, config.Save(cfgPath, cfg))

	return cfgPath
}

// startNode runs a node in the background and returns its API address.
// The returned stop function cancels the node and waits for Run to return.
func startNode(t *testing.T, cfgPath string) (addr string, stop func()) {
	t.Helper()

	// Create cancellable context for node lifecycle.
	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)

	go func() {
		done <- node.Run(ctx, &node.Options{
			ConfigPath:    cfgPath,
			AllowMultiple: true,
			Ready:         ready,
		})
	}()

	select {
	case addr = <-ready:
	case err := <-done:
		cancel()
		require.NoError(t, err)
		t.Fatal("node stopped before serving")
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("node did not start")
	}

	return addr, func() {
		cancel()
		require.NoError(t, <-done)
	}
}

// TestNode_WriteAndSnapshot drives a real node through the gRPC API.
func TestNode_WriteAndSnapshot(t *testing.T) {
	t.Parallel()

	statePath := filepath.Join(t.TempDir(), "state.json")
	addr, stop := startNode(t, writeSettings(t, statePath, false))

	defer stop()

	ctx := context.Background()

	c, err := common.Dial(ctx, addr, common.WithCallTimeout(3*time.Second))
	require.NoError(t, err)

	defer func() {
		_ = c.Close()
	}()

	actor := &home.Actor{Hostname: "test-hostname", Username: "test-user"}

	snap, err := c.Write(ctx, &api.WriteRequest{Device: home.DeviceLight, Param: home.FieldPower, Value: true, Actor: actor})
	require.NoError(t, err)
	require.True(t, snap.LightOn)

	snap, err = c.Write(ctx, &api.WriteRequest{Device: home.DeviceAlarm, Param: home.FieldPower, Value: true, Actor: actor})
	require.NoError(t, err)
	require.True(t, snap.Armed)

	// The memory sensor reads closed: armed and closed stays quiet.
	require.Eventually(t, func() bool {
		snap, err = c.Snapshot(ctx)
		return err == nil && snap.Ticks >= 2 && snap.Door == home.DoorClosed
	}, 3*time.Second, 50*time.Millisecond)

	require.False(t, snap.AlertActive)

	// Writes to unknown parameters are accepted.
	_, err = c.Write(ctx, &api.WriteRequest{Device: "Garage", Param: "Power", Value: true})
	require.NoError(t, err)
}

// TestNode_RestoresCommandedState restarts a node and expects the persisted values back.
func TestNode_RestoresCommandedState(t *testing.T) {
	t.Parallel()

	statePath := filepath.Join(t.TempDir(), "state.json")
	cfgPath := writeSettings(t, statePath, true)

	addr, stop := startNode(t, cfgPath)

	var out bytes.Buffer

	err := client.Set(context.Background(), &client.SetOptions{
		ConfigPath: cfgPath,
		Address:    addr,
		Device:     home.DeviceLight,
		Param:      home.FieldPower,
		Value:      "on",
		Output:     &out,
	})
	require.NoError(t, err)
	require.Contains(t, out.String(), "light: on")

	stop()

	addr, stop = startNode(t, cfgPath)
	defer stop()

	out.Reset()

	err = client.Status(context.Background(), &client.StatusOptions{
		ConfigPath: cfgPath,
		Address:    addr,
		Dump:       true,
		Output:     &out,
	})
	require.NoError(t, err)
	require.Contains(t, out.String(), "LightOn: true")
}
