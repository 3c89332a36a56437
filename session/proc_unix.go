// +build !windows

package session

import (
	"os"
	"syscall"
)

var procAttrs = &syscall.SysProcAttr{}

// terminateProc sends SIGINT and leaves it to the plugin to shut down
func terminateProc(process *os.Process) error {
	return process.Signal(syscall.SIGINT)
}

func defaultPluginTransport() string {
	return pluginTransportUnix
}
