//go:build unix

package launch

import "syscall"

// getSysProcAttr puts the application in its own process group so it
// outlives the launcher and does not receive the launcher's terminal signals.
func getSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
	}
}
