package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-node/internal/service/client"
)

var (
	// address overrides the node address from config.
	address string
	// retry keeps sending a write while the node is unreachable.
	retry bool
	// dump prints the raw snapshot.
	dump bool

	// setCmd writes one parameter.
	setCmd = &cobra.Command{
		Use:   "set <device> <param> <value>",
		Short: "Write a node parameter.",
		Long: `Sends one parameter write to a running node and prints its state afterwards.

Device and parameter are the registered names, e.g.:
  alarm-node set "Home Light" Power on
  alarm-node set "Alarm System" Power off

Values on/off, true/false and 1/0 are booleans.`,
		Args: cobra.ExactArgs(3), //nolint:mnd // device, param, value.
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return client.Set(ctx, &client.SetOptions{
				ConfigPath: configPath,
				Address:    address,
				Device:     args[0],
				Param:      args[1],
				Value:      args[2],
				Retry:      retry,
				Output:     cmd.OutOrStdout(),
			})
		},
	}

	// statusCmd prints the node state.
	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Print the state of a running node.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.Status(cmd.Context(), &client.StatusOptions{
				ConfigPath: configPath,
				Address:    address,
				Dump:       dump,
				Output:     cmd.OutOrStdout(),
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	for _, c := range []*cobra.Command{setCmd, statusCmd} {
		c.Flags().StringVarP(&address, "address", "a", "", "node address, grpc.listen_address by default")
	}

	setCmd.Flags().BoolVarP(&retry, "retry", "r", false, "retry every second while the node is unreachable")
	statusCmd.Flags().BoolVarP(&dump, "dump", "d", false, "print the raw snapshot structure")
}
