package notify

import (
	"fmt"
	"log"
	"os/exec"
)

// Notifier surfaces session state changes to the user
type Notifier interface {
	RecordingStarted()
	RecordingStopped()
	RecognitionStatus(msg string)
}

// New creates a Notifier by type: "desktop", "log", anything else is a nop
func New(kind string) Notifier {
	switch kind {
	case "desktop":
		return Desktop{}
	case "log":
		return Log{}
	default:
		return Nop{}
	}
}

// Desktop sends notifications via notify-send
type Desktop struct{}

func (Desktop) RecordingStarted() {
	send("Captiond: Recording Started", false)
}

func (Desktop) RecordingStopped() {
	send("Captiond: Recording Stopped", false)
}

func (Desktop) RecognitionStatus(msg string) {
	send(fmt.Sprintf("Captiond: %s", msg), true)
}

func send(msg string, critical bool) {
	args := []string{"-a", "Captiond"}
	if critical {
		args = append(args, "-u", "critical")
	}
	args = append(args, msg)
	if err := exec.Command("notify-send", args...).Run(); err != nil {
		log.Printf("notify: failed to send notification: %v", err)
	}
}

// Log writes notifications to the daemon log only
type Log struct{}

func (Log) RecordingStarted()            { log.Printf("notify: recording started") }
func (Log) RecordingStopped()            { log.Printf("notify: recording stopped") }
func (Log) RecognitionStatus(msg string) { log.Printf("notify: %s", msg) }

// Nop does absolutely nothing. Useful in unit tests or headless builds.
type Nop struct{}

func (Nop) RecordingStarted()        {}
func (Nop) RecordingStopped()        {}
func (Nop) RecognitionStatus(string) {}
