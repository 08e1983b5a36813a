package updater

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/alarm-node/internal/config"
)

// linuxCommLength is how many characters of an executable name Linux reports.
const linuxCommLength = 15

// ErrAlreadyRunning is returned when the pid file names a live node.
var ErrAlreadyRunning = errors.New("another node instance is already running")

var errMalformedPID = errors.New("malformed pid file")

// AcquirePIDFile fails when path names another live process of this executable
// and otherwise records the current process in it. A stale or malformed file is
// overwritten. release removes the file if it still names this process.
func AcquirePIDFile(path string) (release func(), err error) {
	name, err := executableName()
	if err != nil {
		return nil, err
	}

	pid, err := runningNode(path, name)
	if err != nil {
		return nil, err
	}

	if pid != 0 {
		return nil, fmt.Errorf("%w: %s (pid %d, %s)", ErrAlreadyRunning, name, pid, path)
	}

	self := os.Getpid()

	err = os.WriteFile(filepath.Clean(path), []byte(strconv.Itoa(self)+"\n"), config.DefaultFilePermissions)
	if err != nil {
		return nil, fmt.Errorf("write pid file: %w", err)
	}

	release = func() {
		if recorded, err := readPID(path); err == nil && recorded == self {
			_ = os.Remove(path)
		}
	}

	return release, nil
}

// terminateNode kills the node recorded in the pid file and reports whether
// one was running. Other processes of the same executable, such as CLI calls,
// are left alone.
func terminateNode(path, name string) (bool, error) {
	pid, err := runningNode(path, name)
	if err != nil || pid == 0 {
		return false, err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false, err
	}

	if err = process.Kill(); err != nil {
		return false, fmt.Errorf("kill pid %d: %w", pid, err)
	}

	return true, nil
}

// runningNode returns the pid recorded at path if it is a live process, other
// than this one, running the named executable. Otherwise it returns 0.
func runningNode(path, name string) (int, error) {
	pid, err := readPID(path)

	switch {
	case errors.Is(err, os.ErrNotExist), errors.Is(err, errMalformedPID):
		return 0, nil
	case err != nil:
		return 0, err
	}

	if pid == os.Getpid() {
		return 0, nil
	}

	process, err := ps.FindProcess(pid)
	if err != nil {
		return 0, fmt.Errorf("find process %d: %w", pid, err)
	}

	if process == nil || !sameExecutable(process.Executable(), name) {
		return 0, nil
	}

	return pid, nil
}

func readPID(path string) (int, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return 0, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("%s: %w", path, errMalformedPID)
	}

	return pid, nil
}

// sameExecutable compares a reported process name with an executable name,
// allowing for the truncated names Linux reports.
func sameExecutable(reported, name string) bool {
	if strings.EqualFold(reported, name) {
		return true
	}

	return len(reported) == linuxCommLength &&
		len(name) > linuxCommLength &&
		strings.EqualFold(reported, name[:linuxCommLength])
}

func executableName() (string, error) {
	self, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}

	return filepath.Base(self), nil
}
