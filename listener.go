package patience

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Payload is the complete wire message of a startup notification. It is
// sent without framing; closing the connection marks its end.
const Payload = "done"

// DefaultPollInterval bounds a single accept attempt of Wait. It is the
// granularity at which Wait rechecks its timeout.
const DefaultPollInterval = time.Millisecond

const loopback = "127.0.0.1"

// Option configures a Listener.
type Option func(*Listener)

// WithPollInterval overrides DefaultPollInterval. Non-positive values are ignored.
func WithPollInterval(d time.Duration) Option {
	return func(l *Listener) {
		if d > 0 {
			l.pollInterval = d
		}
	}
}

// Listener is the waiting side of a startup handshake. It owns a TCP socket
// bound to an ephemeral loopback port and is consumed by Wait.
//
// A Listener is meant to be used by a single goroutine.
type Listener struct {
	ln           *net.TCPListener
	id           string
	pollInterval time.Duration
	consumed     atomic.Bool
}

// NewListener binds a listening socket to 127.0.0.1 on a port chosen by the
// operating system.
func NewListener(opts ...Option) (*Listener, error) {
	ln, err := net.ListenTCP("tcp4", &net.TCPAddr{IP: net.ParseIP(loopback), Port: 0})
	if err != nil {
		return nil, newError(KindSetup, "listen", err)
	}

	l := &Listener{
		ln:           ln,
		id:           uuid.New().String(),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// ID returns a random identifier of this session, handy for correlating
// log output of the test and the application.
func (l *Listener) ID() string {
	return l.id
}

// Port returns the port the Listener is bound to. It has to be sent to the
// application that will call Notify.
func (l *Listener) Port() (uint16, error) {
	addr, ok := l.ln.Addr().(*net.TCPAddr)
	if !ok || addr == nil {
		return 0, newError(KindSetup, "port", fmt.Errorf("unexpected local address %v", l.ln.Addr()))
	}
	return uint16(addr.Port), nil
}

// Env returns the PortEnv=<port> pair to append to exec.Cmd.Env.
func (l *Listener) Env() string {
	return l.EnvFor(PortEnv)
}

// Close releases the socket without waiting. It is only needed when the
// session is abandoned before Wait; calling it after Wait is a no-op.
func (l *Listener) Close() error {
	if l.consumed.Swap(true) {
		return nil
	}
	return l.ln.Close()
}

// Wait blocks until the application has signaled its successful start or
// timeout has expired, and returns how long it waited.
//
// Wait consumes the Listener: the socket is closed when Wait returns, and
// any later call fails with ErrListenerConsumed. Only the first accepted
// connection is considered; if it carries anything but Payload the wait
// ends with a KindProtocol error right away. A non-positive timeout
// returns a KindTimeout error without accepting anything.
func (l *Listener) Wait(timeout time.Duration) (time.Duration, error) {
	if l.consumed.Swap(true) {
		return 0, newError(KindIO, "wait", ErrListenerConsumed)
	}
	defer l.ln.Close()

	start := time.Now()
	end := start.Add(timeout)
	for time.Since(start) < timeout {
		conn, err := l.tryAccept(l.nextDeadline(end))
		if err != nil {
			return 0, err
		}
		if conn == nil {
			continue
		}
		if err := l.receive(conn, l.readDeadline(end)); err != nil {
			return 0, err
		}
		return time.Since(start), nil
	}
	return 0, newError(KindTimeout, "wait", ErrTimeout)
}

// nextDeadline is one poll interval from now, capped at end.
func (l *Listener) nextDeadline(end time.Time) time.Time {
	d := time.Now().Add(l.pollInterval)
	if d.After(end) {
		return end
	}
	return d
}

// readDeadline is end, but leaves a connection accepted right at the
// edge of the window at least one poll interval to deliver its payload.
func (l *Listener) readDeadline(end time.Time) time.Time {
	if floor := time.Now().Add(l.pollInterval); floor.After(end) {
		return floor
	}
	return end
}

// tryAccept accepts a pending connection, giving up at deadline. Running
// into the deadline is the would-block case and yields (nil, nil).
func (l *Listener) tryAccept(deadline time.Time) (*net.TCPConn, error) {
	if err := l.ln.SetDeadline(deadline); err != nil {
		return nil, newError(KindIO, "accept", err)
	}
	conn, err := l.ln.AcceptTCP()
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, nil
		}
		return nil, newError(KindIO, "accept", err)
	}
	return conn, nil
}

// receive reads conn to end of stream and checks it against Payload.
// Reading stops one byte past the payload length, which is enough to tell
// a mismatch.
func (l *Listener) receive(conn *net.TCPConn, deadline time.Time) error {
	defer conn.Close()

	if err := conn.SetReadDeadline(deadline); err != nil {
		return newError(KindIO, "read", err)
	}
	buf, err := io.ReadAll(io.LimitReader(conn, int64(len(Payload))+1))
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return newError(KindTimeout, "read", fmt.Errorf("%w: peer did not close the connection", ErrTimeout))
		}
		return newError(KindIO, "read", err)
	}
	if !bytes.Equal(buf, []byte(Payload)) {
		return newError(KindProtocol, "read", fmt.Errorf("%w: %q", ErrInvalidNotification, buf))
	}
	return nil
}
