package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-node/internal/service/updater"
)

var (
	// updateURL overrides update.url.
	updateURL string
	// updateChecksum overrides update.checksum.
	updateChecksum string
	// restart stops the running node after the update.
	restart bool

	// updateCmd replaces the node binary.
	updateCmd = &cobra.Command{
		Use:   "update",
		Short: "Replace this binary with a published build.",
		Long: `Downloads the node binary from update.url, verifies its SHA-512 checksum
(update.checksum, base64) and atomically replaces the running executable.

With --restart the node recorded in node.pid_file is stopped afterwards so
its supervisor starts the new build.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return updater.Run(ctx, &updater.Options{
				ConfigPath: configPath,
				URL:        updateURL,
				Checksum:   updateChecksum,
				Restart:    restart,
			})
		},
	}

	// checksumCmd prints the checksum expected by update.checksum.
	checksumCmd = &cobra.Command{
		Use:   "checksum <file>",
		Short: "Print the update checksum of a file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sum, err := updater.FileChecksum(args[0])
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), sum)

			return err
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	updateCmd.Flags().StringVar(&updateURL, "url", "", "binary url, update.url by default")
	updateCmd.Flags().StringVar(&updateChecksum, "checksum", "", "base64 SHA-512 of the binary, update.checksum by default")
	updateCmd.Flags().BoolVar(&restart, "restart", false, "stop the running node after the update")
}
