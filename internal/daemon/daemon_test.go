package daemon

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/dkrauss/captiond/internal/notify"
	"github.com/dkrauss/captiond/internal/recognizer"
	"github.com/dkrauss/captiond/internal/session"
)

type fakeTranslator struct{}

func (fakeTranslator) Translate(_ context.Context, text, target string) (string, error) {
	return "[" + target + "]" + text, nil
}

type fakeClip struct {
	written string
}

func (f *fakeClip) Write(_ context.Context, text string) error {
	f.written = text
	return nil
}

func newTestDaemon(t *testing.T, factory session.RecognizerFactory) (*Daemon, *fakeClip) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	controller := session.New(session.Config{
		Recognizer:     factory,
		Translator:     fakeTranslator{},
		TargetLanguage: session.AutoLanguage,
	})
	controller.Run(ctx)

	clip := &fakeClip{}
	d := &Daemon{
		notifier:   notify.Nop{},
		clip:       clip,
		controller: controller,
		ctx:        ctx,
		cancel:     cancel,
	}
	t.Cleanup(func() {
		cancel()
		controller.Shutdown()
	})
	return d, clip
}

func request(t *testing.T, d *Daemon, cmd byte, arg string) string {
	t.Helper()

	client, server := net.Pipe()
	go d.handle(server)

	line := string(cmd)
	if arg != "" {
		line += " " + arg
	}
	if _, err := client.Write([]byte(line + "\n")); err != nil {
		t.Fatalf("write request: %v", err)
	}
	resp, err := io.ReadAll(client)
	client.Close()
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return string(resp)
}

func unavailableFactory() (recognizer.Recognizer, error) {
	return nil, errors.New("service down")
}

func TestStatusCommand(t *testing.T) {
	d, _ := newTestDaemon(t, unavailableFactory)

	resp := request(t, d, 's', "")
	want := "STATUS recording=false language=auto transcript_chars=0 translation_chars=0\n"
	if resp != want {
		t.Errorf("status = %q, want %q", resp, want)
	}
}

func TestLanguageCommand(t *testing.T) {
	d, _ := newTestDaemon(t, unavailableFactory)

	resp := request(t, d, 'l', "es")
	if resp != "OK language=es\n" {
		t.Errorf("language = %q, want OK language=es", resp)
	}

	status := request(t, d, 's', "")
	if !strings.Contains(status, "language=es") {
		t.Errorf("status after language change = %q, want language=es", status)
	}
}

func TestLanguageCommandRejectsUnknownCode(t *testing.T) {
	d, _ := newTestDaemon(t, unavailableFactory)

	resp := request(t, d, 'l', "xx")
	if !strings.HasPrefix(resp, "ERR") {
		t.Errorf("language xx = %q, want ERR", resp)
	}
}

func TestToggleWithRecognizerUnavailable(t *testing.T) {
	d, _ := newTestDaemon(t, unavailableFactory)

	resp := request(t, d, 't', "")
	if resp != "ERR recognition unavailable\n" {
		t.Errorf("toggle = %q, want ERR recognition unavailable", resp)
	}

	status := request(t, d, 's', "")
	if !strings.Contains(status, "recording=false") {
		t.Errorf("status = %q, want recording=false after failed start", status)
	}
}

func TestCopyWithEmptyBuffers(t *testing.T) {
	d, clip := newTestDaemon(t, unavailableFactory)

	resp := request(t, d, 'y', "")
	if resp != "ERR nothing to copy\n" {
		t.Errorf("copy = %q, want ERR nothing to copy", resp)
	}
	if clip.written != "" {
		t.Errorf("clipboard written %q, want untouched", clip.written)
	}
}

func TestClearCommand(t *testing.T) {
	d, _ := newTestDaemon(t, unavailableFactory)

	resp := request(t, d, 'x', "")
	if resp != "OK cleared\n" {
		t.Errorf("clear = %q, want OK cleared", resp)
	}
}

func TestTranscriptCommandEmpty(t *testing.T) {
	d, _ := newTestDaemon(t, unavailableFactory)

	resp := request(t, d, 'd', "")
	if resp != "ERR empty\n" {
		t.Errorf("transcript = %q, want ERR empty", resp)
	}
}

func TestVersionCommand(t *testing.T) {
	d, _ := newTestDaemon(t, unavailableFactory)

	resp := request(t, d, 'v', "")
	if !strings.HasPrefix(resp, "STATUS proto=") {
		t.Errorf("version = %q, want STATUS proto=...", resp)
	}
}

func TestUnknownCommand(t *testing.T) {
	d, _ := newTestDaemon(t, unavailableFactory)

	resp := request(t, d, 'z', "")
	if !strings.HasPrefix(resp, "ERR unknown=") {
		t.Errorf("unknown command = %q, want ERR unknown=", resp)
	}
}
