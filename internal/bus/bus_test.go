package bus

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func TestPidManagerBasics(t *testing.T) {
	testPidManager := &pidManager{
		path: filepath.Join(t.TempDir(), PidName),
	}

	t.Run("create and remove PID file", func(t *testing.T) {
		if err := testPidManager.create(); err != nil {
			t.Fatalf("create failed: %v", err)
		}

		pidData, err := os.ReadFile(testPidManager.path)
		if err != nil {
			t.Fatalf("failed to read PID file: %v", err)
		}
		if string(pidData) != strconv.Itoa(os.Getpid()) {
			t.Errorf("PID file contains %q, expected current pid", string(pidData))
		}

		if err := testPidManager.remove(); err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if _, err := os.Stat(testPidManager.path); !os.IsNotExist(err) {
			t.Error("PID file should not exist after removal")
		}
	})

	t.Run("checkExisting with no PID file", func(t *testing.T) {
		if err := testPidManager.checkExisting(); err != nil {
			t.Errorf("checkExisting should not error when no PID file exists: %v", err)
		}
	})

	t.Run("checkExisting with current process", func(t *testing.T) {
		if err := testPidManager.create(); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		defer testPidManager.remove()

		if err := testPidManager.checkExisting(); err == nil {
			t.Error("checkExisting should fail when process is running")
		}
	})

	t.Run("checkExisting with stale PID file", func(t *testing.T) {
		if err := os.WriteFile(testPidManager.path, []byte("99999"), 0o600); err != nil {
			t.Fatalf("failed to write stale PID file: %v", err)
		}

		if err := testPidManager.checkExisting(); err != nil {
			t.Errorf("checkExisting should succeed with stale PID: %v", err)
		}
		if _, err := os.Stat(testPidManager.path); !os.IsNotExist(err) {
			t.Error("stale PID file should be removed")
		}
	})

	t.Run("checkExisting with invalid PID file", func(t *testing.T) {
		if err := os.WriteFile(testPidManager.path, []byte("invalid"), 0o600); err != nil {
			t.Fatalf("failed to write invalid PID file: %v", err)
		}

		if err := testPidManager.checkExisting(); err != nil {
			t.Errorf("checkExisting should succeed with invalid PID: %v", err)
		}
		if _, err := os.Stat(testPidManager.path); !os.IsNotExist(err) {
			t.Error("invalid PID file should be removed")
		}
	})
}

func TestIsProcessAlive(t *testing.T) {
	pm := &pidManager{}

	if !pm.isProcessAlive(os.Getpid()) {
		t.Error("current process should be alive")
	}
	if pm.isProcessAlive(99999) {
		t.Error("non-existent process should not be alive")
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line    string
		wantCmd byte
		wantArg string
	}{
		{"t\n", 't', ""},
		{"l es\n", 'l', "es"},
		{"l auto\n", 'l', "auto"},
		{"s", 's', ""},
		{"", 0, ""},
		{"l \n", 'l', ""},
	}

	for _, tt := range tests {
		cmd, arg := ParseCommand(tt.line)
		if cmd != tt.wantCmd || arg != tt.wantArg {
			t.Errorf("ParseCommand(%q) = (%q, %q), want (%q, %q)",
				tt.line, cmd, arg, tt.wantCmd, tt.wantArg)
		}
	}
}

func TestSocketManagerBasics(t *testing.T) {
	testSocketManager := &socketManager{
		path: filepath.Join(t.TempDir(), SockName),
	}

	t.Run("listen and dial", func(t *testing.T) {
		listener, err := testSocketManager.listen()
		if err != nil {
			t.Fatalf("listen failed: %v", err)
		}
		defer listener.Close()

		connCh := make(chan error, 1)
		go func() {
			conn, err := listener.Accept()
			if err != nil {
				connCh <- err
				return
			}
			defer conn.Close()

			buf := make([]byte, 1024)
			n, err := conn.Read(buf)
			if err != nil {
				connCh <- err
				return
			}
			_, err = conn.Write(buf[:n])
			connCh <- err
		}()

		time.Sleep(10 * time.Millisecond)

		conn, err := testSocketManager.dial()
		if err != nil {
			t.Fatalf("dial failed: %v", err)
		}
		defer conn.Close()

		if _, err := conn.Write([]byte("hello")); err != nil {
			t.Fatalf("write failed: %v", err)
		}

		buf := make([]byte, 1024)
		n, err := conn.Read(buf)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if string(buf[:n]) != "hello" {
			t.Errorf("got %q, expected %q", string(buf[:n]), "hello")
		}

		if err := <-connCh; err != nil {
			t.Errorf("background connection error: %v", err)
		}
	})

	t.Run("dial without listener", func(t *testing.T) {
		sm := &socketManager{path: filepath.Join(t.TempDir(), SockName)}
		if _, err := sm.dial(); err == nil {
			t.Error("dial should fail when no listener exists")
		}
	})
}

func TestSendCommandIntegration(t *testing.T) {
	testSocketManager := &socketManager{
		path: filepath.Join(t.TempDir(), SockName),
	}

	listener, err := testSocketManager.listen()
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	defer listener.Close()

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()

				line, err := bufio.NewReader(c).ReadString('\n')
				if err != nil {
					return
				}
				cmd, arg := ParseCommand(line)

				switch cmd {
				case CmdToggle:
					fmt.Fprint(c, "OK recording\n")
				case CmdStatus:
					fmt.Fprint(c, "STATUS recording=false language=auto\n")
				case CmdLanguage:
					fmt.Fprintf(c, "OK language=%s\n", arg)
				case CmdTranscript:
					fmt.Fprint(c, "Hello there.\n\nTranslation:\nHola.\n")
				case CmdVersion:
					fmt.Fprintf(c, "STATUS proto=%s\n", ProtoVer)
				default:
					fmt.Fprintf(c, "ERR unknown=%q\n", cmd)
				}
			}(conn)
		}
	}()

	time.Sleep(10 * time.Millisecond)

	tests := []struct {
		cmd      byte
		arg      string
		expected string
	}{
		{CmdToggle, "", "OK recording\n"},
		{CmdStatus, "", "STATUS recording=false language=auto\n"},
		{CmdLanguage, "es", "OK language=es\n"},
		{CmdTranscript, "", "Hello there.\n\nTranslation:\nHola.\n"},
		{CmdVersion, "", fmt.Sprintf("STATUS proto=%s\n", ProtoVer)},
		{'z', "", "ERR unknown='z'\n"},
	}

	for _, tt := range tests {
		resp, err := testSocketManager.sendCommand(tt.cmd, tt.arg)
		if err != nil {
			t.Errorf("sendCommand(%c) failed: %v", tt.cmd, err)
			continue
		}
		if resp != tt.expected {
			t.Errorf("command %c: got %q, expected %q", tt.cmd, resp, tt.expected)
		}
	}
}

func TestPathFunctions(t *testing.T) {
	sockPath, err := getSockPath()
	if err != nil {
		t.Fatalf("getSockPath failed: %v", err)
	}
	if !filepath.IsAbs(sockPath) {
		t.Error("getSockPath should return absolute path")
	}
	if filepath.Base(sockPath) != SockName {
		t.Errorf("getSockPath should end with %s, got %s", SockName, filepath.Base(sockPath))
	}

	pidPath, err := getPidPath()
	if err != nil {
		t.Fatalf("getPidPath failed: %v", err)
	}
	if filepath.Base(pidPath) != PidName {
		t.Errorf("getPidPath should end with %s, got %s", PidName, filepath.Base(pidPath))
	}
}
