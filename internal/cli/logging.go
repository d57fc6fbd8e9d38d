package cli

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// logger is the CLI's logger. The patience library itself never logs.
var logger = logrus.New()

func configureLogging(w io.Writer, level string, verbose bool) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if verbose {
		lvl = logrus.DebugLevel
	}

	logger.SetOutput(w)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	return nil
}
