package cli

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/test-patience"
	"github.com/mvp-joe/test-patience/internal/launch"
)

var (
	runTimeout  time.Duration
	runPortFile string
	runProgress bool
)

var runCmd = &cobra.Command{
	Use:   "run [flags] -- command [args...]",
	Short: "Start an application and wait until it reports a successful start",
	Long: `Start an application with the session port in its environment and block
until it sends its startup notification.

The application keeps running in its own process group after patience
exits, so a test script can start a server and go on with its tests.
If the application does not start in time it is killed.`,
	Example: `  patience run --timeout 1m -- ./server --listen :8080
  go test ./integration/...`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "maximum time to wait (default from config)")
	runCmd.Flags().StringVar(&runPortFile, "port-file", "", "also write the port to this file while waiting")
	runCmd.Flags().BoolVar(&runProgress, "progress", false, "show a spinner while waiting")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	lc, err := launch.NewConfig(args, timeoutOrDefault(runTimeout))
	if err != nil {
		return err
	}
	lc.PollInterval = cfg.Wait.PollInterval
	lc.PortEnv = cfg.Handoff.PortEnv
	lc.PortFile = portFileOrDefault(runPortFile)
	lc.Stdout = passthrough(cmd.OutOrStdout())
	lc.Stderr = passthrough(cmd.ErrOrStderr())

	log := logger.WithFields(logrus.Fields{
		"command": lc.Name,
		"timeout": lc.Timeout,
	})
	log.Debug("starting application")

	stop := startSpinner(cmd.ErrOrStderr(), "Starting "+lc.Name, !runProgress)
	res, err := launch.Start(lc)
	stop()

	if err != nil {
		if patience.IsTimeout(err) {
			log.Warn("application did not start in time")
		}
		return err
	}

	log.WithFields(logrus.Fields{
		"pid":     res.PID,
		"port":    res.Port,
		"session": res.SessionID,
		"elapsed": res.Elapsed,
	}).Info("application started")

	fmt.Fprintf(cmd.OutOrStdout(), "started %s (PID %d) after %s\n",
		lc.Name, res.PID, res.Elapsed.Round(time.Millisecond))

	// Leave the application running; we only stop tracking it.
	return res.Cmd.Process.Release()
}
