package patience

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// PortEnv is the environment variable conventionally used to hand the
// session port from the test to the application.
const PortEnv = "TEST_PATIENCE_PORT"

// ParsePort parses a decimal port number. Port 0 is rejected since a
// Listener never ends up bound to it.
func ParsePort(s string) (uint16, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", s, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("invalid port %q: must be non-zero", s)
	}
	return uint16(n), nil
}

// PortFromEnv reads the session port from PortEnv.
func PortFromEnv() (uint16, error) {
	return portFromEnv(PortEnv)
}

func portFromEnv(name string) (uint16, error) {
	v, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(v) == "" {
		return 0, newError(KindSetup, "env", fmt.Errorf("%s is not set", name))
	}
	port, err := ParsePort(v)
	if err != nil {
		return 0, newError(KindSetup, "env", fmt.Errorf("%s: %w", name, err))
	}
	return port, nil
}

// NotifyFromEnv notifies the Listener whose port is found in PortEnv.
func NotifyFromEnv() error {
	return NotifyFromEnvVar(PortEnv)
}

// NotifyFromEnvVar notifies the Listener whose port is found in the
// environment variable name.
func NotifyFromEnvVar(name string) error {
	port, err := portFromEnv(name)
	if err != nil {
		return err
	}
	return Notify(port)
}

// EnvFor returns the name=<port> pair for a custom environment variable.
func (l *Listener) EnvFor(name string) string {
	port, _ := l.Port()
	return fmt.Sprintf("%s=%d", name, port)
}
