//go:build windows

package launch

import "syscall"

// getSysProcAttr starts the application in a new process group so console
// control events for the launcher do not reach it.
func getSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}
