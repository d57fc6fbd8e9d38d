package cli

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/test-patience"
	"github.com/mvp-joe/test-patience/internal/handoff"
)

var (
	waitTimeout  time.Duration
	waitPortFile string
	waitProgress bool
)

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for an application's startup notification",
	Long: `Bind an ephemeral loopback port, print it, and block until an application
sends its startup notification to it or the timeout expires.

The port is printed on the first line of stdout and, with --port-file, also
written to a file that "patience notify --port-file" can pick up.

Exit status is non-zero if the application did not start in time or sent
an invalid notification.`,
	Example: `  patience wait --timeout 30s --port-file /tmp/app.port &
  TEST_PATIENCE_PORT=$(cat /tmp/app.port) ./server`,
	Args: cobra.NoArgs,
	RunE: runWait,
}

func init() {
	waitCmd.Flags().DurationVar(&waitTimeout, "timeout", 0, "maximum time to wait (default from config)")
	waitCmd.Flags().StringVar(&waitPortFile, "port-file", "", "also write the port to this file")
	waitCmd.Flags().BoolVar(&waitProgress, "progress", false, "show a spinner while waiting")
	rootCmd.AddCommand(waitCmd)
}

func runWait(cmd *cobra.Command, args []string) error {
	timeout := timeoutOrDefault(waitTimeout)

	l, err := patience.NewListener(patience.WithPollInterval(cfg.Wait.PollInterval))
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	defer l.Close()

	port, err := l.Port()
	if err != nil {
		return fmt.Errorf("failed to get listener port: %w", err)
	}

	if portFile := portFileOrDefault(waitPortFile); portFile != "" {
		if err := handoff.WritePortFile(portFile, port); err != nil {
			return err
		}
		defer handoff.RemovePortFile(portFile)
	}

	fmt.Fprintln(cmd.OutOrStdout(), port)

	log := logger.WithFields(logrus.Fields{
		"session": l.ID(),
		"port":    port,
		"timeout": timeout,
	})
	log.Debug("waiting for startup notification")

	stop := startSpinner(cmd.ErrOrStderr(), "Waiting for startup notification", !waitProgress)
	elapsed, err := l.Wait(timeout)
	stop()

	if err != nil {
		log.WithError(err).Debug("wait failed")
		switch {
		case patience.IsTimeout(err):
			return fmt.Errorf("application did not start within %v: %w", timeout, err)
		case patience.IsProtocolViolation(err):
			return fmt.Errorf("received invalid startup notification: %w", err)
		default:
			return fmt.Errorf("failed to wait for startup notification: %w", err)
		}
	}

	log.WithField("elapsed", elapsed).Info("application started")
	fmt.Fprintf(cmd.OutOrStdout(), "started after %s\n", elapsed.Round(time.Millisecond))
	return nil
}
