package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/test-patience"
	"github.com/mvp-joe/test-patience/internal/handoff"
	"github.com/mvp-joe/test-patience/internal/launch"
)

var (
	notifyPort     uint16
	notifyPortFile string
	notifyTimeout  time.Duration
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send the startup notification to a waiting test",
	Long: `Send the startup notification to the process waiting on the session port.

The port is taken from, in order:
1. --port
2. --port-file (waits up to --timeout for the file to appear)
3. the environment variable named by handoff.port_env (TEST_PATIENCE_PORT)`,
	Example: `  ./server --background && patience notify`,
	Args:    cobra.NoArgs,
	RunE:    runNotify,
}

func init() {
	notifyCmd.Flags().Uint16Var(&notifyPort, "port", 0, "port of the waiting process")
	notifyCmd.Flags().StringVar(&notifyPortFile, "port-file", "", "read the port from this file")
	notifyCmd.Flags().DurationVar(&notifyTimeout, "timeout", 0, "maximum time to wait for the port file (default from config)")
	rootCmd.AddCommand(notifyCmd)
}

func runNotify(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeoutOrDefault(notifyTimeout))
	defer cancel()

	port, source, err := resolveNotifyPort(ctx)
	if err != nil {
		return err
	}
	logger.WithField("port", port).WithField("source", source).Debug("sending startup notification")

	if err := patience.NotifyContext(ctx, port); err != nil {
		if launch.IsConnectionError(err) {
			return fmt.Errorf("nobody is waiting on port %d: %w", port, err)
		}
		return fmt.Errorf("failed to send startup notification: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "notified port %d\n", port)
	return nil
}

func resolveNotifyPort(ctx context.Context) (uint16, string, error) {
	if notifyPort != 0 {
		return notifyPort, "flag", nil
	}

	if portFile := portFileOrDefault(notifyPortFile); portFile != "" {
		port, err := handoff.AwaitPortFile(ctx, portFile)
		if err != nil {
			return 0, "", fmt.Errorf("failed to read port file: %w", err)
		}
		return port, "file", nil
	}

	name := cfg.Handoff.PortEnv
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return 0, "", fmt.Errorf("no port given: use --port, --port-file or set %s", name)
	}
	port, err := patience.ParsePort(v)
	if err != nil {
		return 0, "", fmt.Errorf("%s: %w", name, err)
	}
	return port, "env", nil
}
