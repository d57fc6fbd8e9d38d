// Package patience synchronizes the startup of an application under test
// with the integration test that drives it.
//
// The test creates a Listener, which binds a TCP socket on an ephemeral
// loopback port. The port has to reach the application through some
// out-of-band channel: an environment variable (see PortEnv), an argument
// or a configuration file. After starting the application the test calls
// Wait, which blocks until the application has signaled a successful start
// or the timeout has expired.
//
// Once ready, the application calls Notify with the port it was given.
//
// Test side:
//
//	l, err := patience.NewListener()
//	if err != nil {
//	    t.Fatal(err)
//	}
//	cmd := exec.Command("./server")
//	cmd.Env = append(os.Environ(), l.Env())
//	if err := cmd.Start(); err != nil {
//	    t.Fatal(err)
//	}
//	elapsed, err := l.Wait(30 * time.Second)
//	if patience.IsTimeout(err) {
//	    t.Fatal("server did not start")
//	}
//
// Application side:
//
//	if err := patience.NotifyFromEnv(); err != nil {
//	    log.Printf("startup notification failed: %v", err)
//	}
//
// The protocol is single-shot: exactly one connection carrying the bytes
// "done" is accepted per Listener, and a Listener cannot be reused after
// Wait returns.
package patience
