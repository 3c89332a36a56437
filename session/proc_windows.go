// +build windows

package session

import (
	"os"
	"strconv"
	"syscall"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

var procAttrs = &windows.SysProcAttr{
	CreationFlags: windows.CREATE_UNICODE_ENVIRONMENT | windows.CREATE_NEW_PROCESS_GROUP,
}

// terminateProc interrupts the plugin process. SIGINT doesn't exist on Windows
// so the console of the process is attached and sent a CTRL+BREAK instead.
func terminateProc(process *os.Process) error {
	dll, err := windows.LoadDLL("kernel32.dll")
	if err != nil {
		return err
	}
	defer dll.Release()

	pid := uintptr(process.Pid)

	attach, err := dll.FindProc("AttachConsole")
	if err != nil {
		return err
	}
	if r1, _, err := attach.Call(pid); r1 == 0 && err != syscall.ERROR_ACCESS_DENIED {
		return err
	}

	setHandler, err := dll.FindProc("SetConsoleCtrlHandler")
	if err != nil {
		return err
	}
	if r1, _, err := setHandler.Call(0, 1); r1 == 0 {
		return err
	}

	ctrlEvent, err := dll.FindProc("GenerateConsoleCtrlEvent")
	if err != nil {
		return err
	}
	if r1, _, err := ctrlEvent.Call(windows.CTRL_BREAK_EVENT, pid); r1 == 0 {
		return err
	}
	return nil
}

// defaultPluginTransport returns unix when the Windows build supports AF_UNIX
// sockets (17063 and later), otherwise tcp.
// https://devblogs.microsoft.com/commandline/af_unix-comes-to-windows/
func defaultPluginTransport() string {
	if windowsBuild() >= 17063 {
		return pluginTransportUnix
	}
	return pluginTransportTCP
}

func windowsBuild() int {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, `SOFTWARE\Microsoft\Windows NT\CurrentVersion`, registry.READ)
	if err != nil {
		return 0
	}
	defer k.Close()
	s, _, err := k.GetStringValue("CurrentBuild")
	if err != nil {
		return 0
	}
	ver, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return ver
}
