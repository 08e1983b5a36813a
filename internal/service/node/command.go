package node

import (
	"context"
	"errors"
	"fmt"
	"net"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	api "github.com/oshokin/alarm-node/internal/api/grpc/node"
	"github.com/oshokin/alarm-node/internal/config"
	"github.com/oshokin/alarm-node/internal/controller"
	"github.com/oshokin/alarm-node/internal/logger"
	repository "github.com/oshokin/alarm-node/internal/repository/state"
	"github.com/oshokin/alarm-node/internal/service/updater"
	"github.com/oshokin/alarm-node/internal/transport/mqtt"
)

// Options controls the node process.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress overrides grpc.listen_address when set.
	ListenAddress string
	// AllowMultiple skips the pid file check and does not write one.
	AllowMultiple bool
	// Ready, if set, receives the bound API address once the node is serving.
	Ready chan<- string
}

// Run boots the node and blocks until ctx is canceled or a component fails.
//
//nolint:funlen // Bootstrap reads best as one sequence.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-node")

	// Load configuration first, every component depends on it.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	applyLogLevel(ctx, cfg.LogLevel)

	if !opts.AllowMultiple {
		var release func()

		if release, err = updater.AcquirePIDFile(cfg.Node.PIDFile); err != nil {
			return err
		}

		defer release()
	}

	// Build the state machine with its collaborators.
	c, err := newComponents(ctx, cfg)
	if err != nil {
		return err
	}

	if err = c.machine.Init(ctx); err != nil {
		return fmt.Errorf("initialise gpio: %w", err)
	}

	// Every connect republishes the machine's current values under its lock,
	// so the restore below may run before or after the first announce.
	if c.mqtt != nil {
		if err = c.mqtt.Connect(); err != nil {
			return err
		}

		defer c.mqtt.Disconnect()
	}

	if cfg.Node.RestoreState {
		restore(ctx, c.machine, c.repo)
	}

	if c.mqtt != nil {
		if err = mqtt.SubscribeWrites(c.mqtt, c.machine); err != nil {
			return err
		}
	}

	// Setup TCP listener for the control API.
	listenAddress := cfg.GRPC.ListenAddress
	if opts.ListenAddress != "" {
		listenAddress = opts.ListenAddress
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer()
	api.RegisterNodeServiceServer(grpcServer, api.NewServer(c.machine))

	logger.InfoKV(ctx, "Node started",
		"name", cfg.Node.Name,
		"listen_address", lis.Addr().String(),
		"gpio_driver", cfg.GPIO.Driver,
		"mqtt", cfg.MQTT.Enabled(),
	)

	if opts.Ready != nil {
		opts.Ready <- lis.Addr().String()
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return controller.NewScheduler(c.machine, cfg.Node.TickInterval, nil).Run(groupCtx)
	})

	group.Go(func() error {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()

		return nil
	})

	err = group.Wait()

	logger.Info(ctx, "Node stopped")

	return err
}

func applyLogLevel(ctx context.Context, level string) {
	parsed, ok := logger.ParseLogLevel(level)
	if !ok {
		logger.WarnKV(ctx, "Unknown log level, using info", "log_level", level)
	}

	logger.SetLevel(parsed)
}

// restore re-applies persisted values. A missing or broken state file is not fatal.
func restore(ctx context.Context, machine *controller.Machine, repo repository.Repository) {
	values, err := repo.Load(ctx)

	switch {
	case errors.Is(err, repository.ErrNotFound):
		logger.Info(ctx, "No saved state, starting from defaults")
		return
	case err != nil:
		logger.WarnKV(ctx, "Failed to load saved state", "error", err)
		return
	}

	if err = machine.Restore(ctx, values); err != nil {
		logger.WarnKV(ctx, "Failed to restore saved state", "error", err)
	}
}
