package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-node/internal/config"
	"github.com/oshokin/alarm-node/internal/service/node"
	"github.com/oshokin/alarm-node/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// allowMultiple skips the single instance check.
	allowMultiple bool

	// rootCmd represents the base command running the node.
	rootCmd = &cobra.Command{
		Use:   "alarm-node [listen-address]",
		Short: "Run the alarm and door controller node.",
		Long: `Runs the smart home node controlling a light, a door sensor and a buzzer.

Every 200 ms the node samples the door sensor. While the alarm is armed and the door
is open the buzzer sounds, the light blinks and one alert is raised per opening.
Light and alarm power are written over MQTT (<root>/<device>/<param>/set) or the
gRPC control API; every parameter is mirrored back as a retained MQTT value.

Listen address can be provided as argument to override config (e.g., :50061).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			return node.Run(ctx, &node.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				AllowMultiple: allowMultiple,
			})
		},
	}
)

// Execute runs the alarm-node CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().BoolVar(&allowMultiple, "allow-multiple", false, "do not refuse to start next to another node")

	rootCmd.AddCommand(setCmd, statusCmd, updateCmd, checksumCmd)
}
