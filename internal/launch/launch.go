// Package launch starts an application under test and blocks until it
// reports a successful start through a patience notification.
//
// The application receives the session port in the environment variable
// named by Config.PortEnv (and optionally in Config.PortFile) and is
// expected to call patience.Notify with it once it is ready.
//
// The application is started in its own process group so that it keeps
// running after the launching process exits, which lets shell-driven test
// suites start a server with `patience run` and go on with the tests.
package launch

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/mvp-joe/test-patience"
	"github.com/mvp-joe/test-patience/internal/handoff"
)

// Start spawns the application described by cfg and waits for its startup
// notification.
//
// On any failure after the process was spawned, the process is killed and
// reaped before Start returns. The returned error wraps the underlying
// patience error, so patience.IsTimeout and patience.IsProtocolViolation
// work on it.
//
// Flow:
//  1. Bind a patience.Listener and publish its port (env, port file)
//  2. Spawn the command in its own process group
//  3. Wait for the notification (bounded by cfg.Timeout)
func Start(cfg *Config) (*Result, error) {
	if cfg == nil || len(cfg.Command) == 0 || cfg.Command[0] == "" {
		return nil, ErrEmptyCommand
	}
	if cfg.Timeout <= 0 {
		return nil, ErrInvalidTimeout
	}
	portEnv := cfg.PortEnv
	if portEnv == "" {
		portEnv = patience.PortEnv
	}

	// 1. Listener and port handoff
	l, err := patience.NewListener(patience.WithPollInterval(cfg.PollInterval))
	if err != nil {
		return nil, fmt.Errorf("failed to create listener: %w", err)
	}
	defer l.Close()

	port, err := l.Port()
	if err != nil {
		return nil, fmt.Errorf("failed to get listener port: %w", err)
	}

	if cfg.PortFile != "" {
		if err := handoff.WritePortFile(cfg.PortFile, port); err != nil {
			return nil, err
		}
		defer handoff.RemovePortFile(cfg.PortFile)
	}

	// 2. Spawn (detached process group)
	cmd := exec.Command(cfg.Command[0], cfg.Command[1:]...)
	cmd.Dir = cfg.Dir
	cmd.Env = append(append(os.Environ(), cfg.Env...), l.EnvFor(portEnv))
	cmd.Stdout = cfg.Stdout
	cmd.Stderr = cfg.Stderr
	cmd.SysProcAttr = getSysProcAttr()

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", name(cfg), err)
	}

	// 3. Wait for the notification
	elapsed, err := l.Wait(cfg.Timeout)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()

		if patience.IsTimeout(err) {
			return nil, fmt.Errorf("%s failed to start within %v: %w", name(cfg), cfg.Timeout, err)
		}
		return nil, fmt.Errorf("%s startup notification failed: %w", name(cfg), err)
	}

	return &Result{
		Cmd:       cmd,
		PID:       cmd.Process.Pid,
		Port:      port,
		SessionID: l.ID(),
		Elapsed:   elapsed,
	}, nil
}

func name(cfg *Config) string {
	if cfg.Name != "" {
		return cfg.Name
	}
	return cfg.Command[0]
}
