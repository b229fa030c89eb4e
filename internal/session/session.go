package session

import (
	"time"

	"github.com/dkrauss/captiond/internal/recognizer"
	"github.com/dkrauss/captiond/internal/translate"
)

// AutoLanguage disables translation dispatch
const AutoLanguage = "auto"

// Snapshot is a point-in-time view of the session for display
type Snapshot struct {
	Recording      bool
	TargetLanguage string
	Transcript     string // final segments joined, live interim appended
	Translation    string // flushed translations in utterance order
}

// Sink receives finalized transcript segments and their translations as
// they are committed. Used for the optional history store.
type Sink interface {
	FinalSegment(text string)
	Translation(text string)
}

// Notifier surfaces recognition status messages. Translation failures
// are log-only and never reach the notifier.
type Notifier interface {
	RecognitionStatus(msg string)
}

// RecognizerFactory creates a fresh recognizer per recording session.
// Recognizers are single-use: one Start, one Close.
type RecognizerFactory func() (recognizer.Recognizer, error)

// Config wires the controller's collaborators
type Config struct {
	Recognizer       RecognizerFactory
	Translator       translate.Translator
	TargetLanguage   string        // initial target, "auto" disables translation
	RestartDelay     time.Duration // delay before the single automatic recognition restart
	TranslateTimeout time.Duration
	Sink             Sink     // optional
	Notifier         Notifier // optional
}

const (
	defaultRestartDelay     = 2 * time.Second
	defaultTranslateTimeout = 15 * time.Second
)

// internal event types for the controller's single event loop

type evStart struct{ reply chan bool }
type evStop struct{ reply chan struct{} }
type evSetLanguage struct {
	code  string
	reply chan struct{}
}
type evClear struct{ reply chan struct{} }
type evCopyAll struct{ reply chan string }
type evSnapshot struct{ reply chan Snapshot }
type evAudio struct{ data []byte }
type evRecognition struct {
	res   recognizer.Result
	epoch uint64
}
type evRecognizerDone struct{ epoch uint64 }
type evRestart struct{ epoch uint64 }
type evTranslation struct {
	seq   uint64
	epoch uint64
	text  string
	err   error
}

type nopNotifier struct{}

func (nopNotifier) RecognitionStatus(string) {}
