package cli

import (
	"io"
	"os"
	"time"
)

// timeoutOrDefault returns flagValue when the flag was given, otherwise the
// configured wait timeout.
func timeoutOrDefault(flagValue time.Duration) time.Duration {
	if flagValue != 0 {
		return flagValue
	}
	return cfg.Wait.Timeout
}

// portFileOrDefault returns flagValue when set, otherwise the configured port file.
func portFileOrDefault(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return cfg.Handoff.PortFile
}

// passthrough returns w if the child process can inherit it directly.
// Anything else would need a copying goroutine that dies with this process.
func passthrough(w io.Writer) io.Writer {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return nil
}
