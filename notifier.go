package patience

import (
	"context"
	"net"
	"strconv"
)

// Notify tells the Listener bound to port that the application has started.
// It returns once the payload has been written and the connection closed;
// there is no acknowledgment from the Listener.
func Notify(port uint16) error {
	return NotifyContext(context.Background(), port)
}

// NotifyContext is like Notify but aborts connecting when ctx is done.
func NotifyContext(ctx context.Context, port uint16) error {
	addr := net.JoinHostPort(loopback, strconv.Itoa(int(port)))

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp4", addr)
	if err != nil {
		return newError(KindIO, "dial", err)
	}

	if _, err := conn.Write([]byte(Payload)); err != nil {
		conn.Close()
		return newError(KindIO, "write", err)
	}
	// Close flushes the payload; a failure here means it may not have been sent.
	if err := conn.Close(); err != nil {
		return newError(KindIO, "write", err)
	}
	return nil
}
