package bus

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

const SockName = "control.sock"
const PidName = "captiond.pid"
const ProtoVer = "0.1"

// Control commands. One command byte per connection, optionally
// followed by a space and an argument, terminated by a newline.
const (
	CmdToggle     = 't'
	CmdStatus     = 's'
	CmdLanguage   = 'l'
	CmdCopy       = 'y'
	CmdClear      = 'x'
	CmdTranscript = 'd'
	CmdVersion    = 'v'
	CmdQuit       = 'q'
)

type socketManager struct {
	path string
}

type pidManager struct {
	path string
}

func getSockPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "captiond", SockName), nil
}

func getPidPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "captiond", PidName), nil
}

// SockPath returns ~/.cache/captiond/control.sock
func SockPath() (string, error) {
	return getSockPath()
}

func (sm *socketManager) listen() (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(sm.path), 0o700); err != nil {
		return nil, err
	}
	_ = os.Remove(sm.path) // stale socket from last run
	return net.Listen("unix", sm.path)
}

func (sm *socketManager) dial() (net.Conn, error) {
	return net.Dial("unix", sm.path)
}

func (sm *socketManager) sendCommand(cmd byte, arg string) (string, error) {
	c, err := sm.dial()
	if err != nil {
		return "", err
	}
	defer c.Close()

	line := string(cmd)
	if arg != "" {
		line += " " + arg
	}
	if _, err := c.Write([]byte(line + "\n")); err != nil {
		return "", err
	}

	// The server closes the connection after writing, so read until
	// EOF. Responses like the transcript dump span multiple lines.
	resp, err := io.ReadAll(c)
	if err != nil {
		return "", err
	}
	return string(resp), nil
}

func (pm *pidManager) create() error {
	if err := os.MkdirAll(filepath.Dir(pm.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(pm.path, []byte(strconv.Itoa(os.Getpid())), 0o600)
}

func (pm *pidManager) remove() error {
	return os.Remove(pm.path)
}

func (pm *pidManager) checkExisting() error {
	pidData, err := os.ReadFile(pm.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(pidData)))
	if err != nil {
		_ = pm.remove() // invalid pid file, assume stale
		return nil
	}

	if !pm.isProcessAlive(pid) {
		_ = pm.remove()
		return nil
	}

	return fmt.Errorf("daemon already running with PID %d", pid)
}

func (pm *pidManager) isProcessAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

func Listen() (net.Listener, error) {
	sp, err := getSockPath()
	if err != nil {
		return nil, err
	}
	sm := &socketManager{path: sp}
	return sm.listen()
}

func Dial() (net.Conn, error) {
	sp, err := getSockPath()
	if err != nil {
		return nil, err
	}
	sm := &socketManager{path: sp}
	return sm.dial()
}

// SendCommand connects to the running daemon, sends one command and
// returns the full response.
func SendCommand(cmd byte, arg string) (string, error) {
	sp, err := getSockPath()
	if err != nil {
		return "", err
	}
	sm := &socketManager{path: sp}
	return sm.sendCommand(cmd, arg)
}

// ParseCommand splits a received request line into the command byte
// and its optional argument.
func ParseCommand(line string) (byte, string) {
	line = strings.TrimRight(line, "\n")
	if line == "" {
		return 0, ""
	}
	cmd := line[0]
	arg := ""
	if len(line) > 2 && line[1] == ' ' {
		arg = strings.TrimSpace(line[2:])
	}
	return cmd, arg
}

func CheckExistingDaemon() error {
	pp, err := getPidPath()
	if err != nil {
		return err
	}
	pm := &pidManager{path: pp}
	return pm.checkExisting()
}

func CreatePidFile() error {
	pp, err := getPidPath()
	if err != nil {
		return err
	}
	pm := &pidManager{path: pp}
	return pm.create()
}

func RemovePidFile() error {
	pp, err := getPidPath()
	if err != nil {
		return err
	}
	pm := &pidManager{path: pp}
	return pm.remove()
}
