package launch

import (
	"errors"
	"io"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/mvp-joe/test-patience"
)

var (
	// ErrEmptyCommand indicates no command was given to start.
	ErrEmptyCommand = errors.New("command is required")

	// ErrInvalidTimeout indicates a non-positive startup timeout.
	ErrInvalidTimeout = errors.New("startup timeout must be positive")
)

// Config specifies how to start an application and wait for its startup
// notification.
//
// Example:
//
//	cfg, err := launch.NewConfig([]string{"./server", "--dev"}, 30*time.Second)
//	if err != nil {
//	    return err
//	}
//	cfg.PortFile = "/tmp/server.port"
//	res, err := launch.Start(cfg)
type Config struct {
	// Name identifies the application in error messages. Defaults to the
	// base name of the executable.
	Name string

	// Command is the executable and its arguments.
	Command []string

	// Dir is the working directory of the application. Empty means the
	// current directory.
	Dir string

	// Env holds extra KEY=value pairs on top of the current environment.
	Env []string

	// Timeout is the maximum time to wait for the startup notification.
	Timeout time.Duration

	// PollInterval overrides patience.DefaultPollInterval when positive.
	PollInterval time.Duration

	// PortEnv is the environment variable carrying the session port to the
	// application. Defaults to patience.PortEnv.
	PortEnv string

	// PortFile, when set, additionally receives the session port for the
	// duration of the wait.
	PortFile string

	// Stdout and Stderr receive the application's output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer
}

// NewConfig creates a validated Config with defaults for the optional fields.
func NewConfig(command []string, timeout time.Duration) (*Config, error) {
	if len(command) == 0 || command[0] == "" {
		return nil, ErrEmptyCommand
	}
	if timeout <= 0 {
		return nil, ErrInvalidTimeout
	}

	return &Config{
		Name:    filepath.Base(command[0]),
		Command: command,
		Timeout: timeout,
		PortEnv: patience.PortEnv,
	}, nil
}

// Result describes an application that signaled a successful start.
type Result struct {
	// Cmd is the running application. The caller owns it and is
	// responsible for stopping and reaping it.
	Cmd *exec.Cmd

	PID       int
	Port      uint16
	SessionID string

	// Elapsed is the time between the start of the wait and the
	// notification.
	Elapsed time.Duration
}
