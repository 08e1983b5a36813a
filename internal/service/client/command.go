package client

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sanity-io/litter"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	api "github.com/oshokin/alarm-node/internal/api/grpc/node"
	"github.com/oshokin/alarm-node/internal/config"
	"github.com/oshokin/alarm-node/internal/domain/home"
	"github.com/oshokin/alarm-node/internal/logger"
	"github.com/oshokin/alarm-node/internal/service/common"
)

// defaultPushInterval defines retry delay when the node is unreachable.
const defaultPushInterval = 1 * time.Second

// SetOptions configures the set command.
type SetOptions struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// Address overrides the node address from config when specified.
	Address string
	// Device is the device name, e.g. "Home Light".
	Device string
	// Param is the parameter name, e.g. "Power".
	Param string
	// Value is the raw value from the command line.
	Value string
	// Retry keeps trying while the node is unavailable.
	Retry bool
	// Output receives the resulting state.
	Output io.Writer
}

// StatusOptions configures the status command.
type StatusOptions struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// Address overrides the node address from config when specified.
	Address string
	// Dump prints the raw snapshot structure.
	Dump bool
	// Output receives the state.
	Output io.Writer
}

// Set sends one write to the node and prints the state after it.
func Set(ctx context.Context, opts *SetOptions) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "set")

	client, err := dial(ctx, opts.ConfigPath, opts.Address)
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	// Identify current user and hostname for the node's audit log.
	actor, err := common.DetectActor()
	if err != nil {
		return err
	}

	request := &api.WriteRequest{
		Device: opts.Device,
		Param:  opts.Param,
		Value:  ParseValue(opts.Value),
		Actor:  actor,
	}

	logger.InfoKV(ctx, "Sending write", "device", request.Device, "param", request.Param, "value", request.Value)

	// attempt tries once to write, returns (completed, error).
	attempt := func() (bool, error) {
		snapshot, err := client.Write(ctx, request)
		if err == nil {
			_, err = fmt.Fprintln(opts.Output, FormatSnapshot(snapshot))

			return true, err
		}

		if opts.Retry && status.Code(err) == codes.Unavailable {
			logger.WarnKV(ctx, "Node unavailable, retrying", "error", err)

			return false, nil
		}

		return false, err
	}

	// Attempt immediately before starting retry loop.
	if done, err := attempt(); err != nil || done {
		return err
	}

	ticker := time.NewTicker(defaultPushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if done, err := attempt(); err != nil || done {
				return err
			}
		}
	}
}

// Status prints the current node state.
func Status(ctx context.Context, opts *StatusOptions) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "status")

	client, err := dial(ctx, opts.ConfigPath, opts.Address)
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	snapshot, err := client.Snapshot(ctx)
	if err != nil {
		return err
	}

	if opts.Dump {
		_, err = fmt.Fprintln(opts.Output, litter.Sdump(snapshot))
	} else {
		_, err = fmt.Fprintln(opts.Output, FormatSnapshot(snapshot))
	}

	return err
}

func dial(ctx context.Context, configPath, address string) (*common.Client, error) {
	// Load settings from configuration file.
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	// Use node address from options if provided, otherwise use config.
	if address == "" {
		address = cfg.GRPC.ListenAddress
	}

	return common.Dial(ctx, address, common.WithCallTimeout(cfg.GRPC.Timeout))
}

// ParseValue turns a command line value into a write value: booleans
// (true/false, on/off, 1/0) become bool, anything else stays a string
// for the node to reject.
func ParseValue(raw string) any {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on":
		return true
	case "off":
		return false
	}

	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}

	return raw
}

// FormatSnapshot renders a snapshot on one line.
func FormatSnapshot(s home.Snapshot) string {
	return fmt.Sprintf(
		"light: %s, alarm: %s, door: %s, alert: %t, notified: %t, blink: %s, ticks: %d",
		onOff(s.LightOn), onOff(s.Armed), s.Door, s.AlertActive, s.NotificationSent, s.Blink, s.Ticks,
	)
}

func onOff(v bool) string {
	if v {
		return "on"
	}

	return "off"
}
