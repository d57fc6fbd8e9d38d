package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/test-patience/internal/config"
)

var (
	cfgFile string
	verbose bool

	// cfg is loaded before any subcommand runs.
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "patience",
	Short: "Synchronize integration tests with application startup",
	Long: `patience lets an integration test block until the application under
test reports that it has started, instead of sleeping for a fixed time.

The waiting side binds an ephemeral loopback port and hands it to the
application (environment variable or port file). The application sends a
single "done" notification to that port once it is ready.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.patience/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads config file and PATIENCE_* environment variables and
// sets up logging.
func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	if err := configureLogging(cmd.ErrOrStderr(), cfg.Log.Level, verbose); err != nil {
		return err
	}
	logger.WithField("config", cfgFile).Debug("configuration loaded")
	return nil
}
