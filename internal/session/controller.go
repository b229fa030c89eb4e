package session

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/dkrauss/captiond/internal/recognizer"
)

// Controller owns the recording state, the transcript and translation
// buffers, and the translation dispatch. All state is confined to a
// single event-loop goroutine: recognition results, translation
// completions and commands arrive as events on one queue.
type Controller struct {
	cfg    Config
	events chan any

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// event-loop state, touched only by run()
	recording   bool
	targetLang  string
	finals      []string
	interim     string
	translated  []string
	rec         recognizer.Recognizer
	recGen      uint64 // recognizer generation, bumped per start
	clearGen    uint64 // bumped on clear to invalidate in-flight translations
	restartUsed bool

	// translation ordering: completions are held back until every
	// earlier dispatch has completed or failed
	seqNext   uint64
	seqFlush  uint64
	completed map[uint64]evTranslation
}

func New(cfg Config) *Controller {
	if cfg.RestartDelay <= 0 {
		cfg.RestartDelay = defaultRestartDelay
	}
	if cfg.TranslateTimeout <= 0 {
		cfg.TranslateTimeout = defaultTranslateTimeout
	}
	if cfg.Notifier == nil {
		cfg.Notifier = nopNotifier{}
	}
	target := cfg.TargetLanguage
	if target == "" {
		target = AutoLanguage
	}
	return &Controller{
		cfg:        cfg,
		events:     make(chan any, 128),
		targetLang: target,
		completed:  make(map[uint64]evTranslation),
	}
}

// Run starts the event loop. It returns immediately; Shutdown tears it
// down. All other methods require Run to have been called.
func (c *Controller) Run(ctx context.Context) {
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.run()
}

// Shutdown stops the event loop and closes any active recognizer
func (c *Controller) Shutdown() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

// Start transitions the session to recording. Returns whether the
// session is recording afterwards; recognizer failures are surfaced as
// status messages only.
func (c *Controller) Start() bool {
	reply := make(chan bool, 1)
	if !c.post(evStart{reply: reply}) {
		return false
	}
	return <-reply
}

// Stop transitions the session to not-recording and discards the live
// interim segment. The recognizer is asked to halt; finals it flushes
// while closing are still accepted.
func (c *Controller) Stop() {
	reply := make(chan struct{}, 1)
	if c.post(evStop{reply: reply}) {
		<-reply
	}
}

// SetLanguage changes the translation target. "auto" disables dispatch.
func (c *Controller) SetLanguage(code string) {
	reply := make(chan struct{}, 1)
	if c.post(evSetLanguage{code: code, reply: reply}) {
		<-reply
	}
}

// Clear empties both buffers. In-flight translation requests are not
// cancelled; their results are discarded when they complete.
func (c *Controller) Clear() {
	reply := make(chan struct{}, 1)
	if c.post(evClear{reply: reply}) {
		<-reply
	}
}

// CopyAll renders both buffers into one string for clipboard export
func (c *Controller) CopyAll() string {
	reply := make(chan string, 1)
	if !c.post(evCopyAll{reply: reply}) {
		return ""
	}
	return <-reply
}

// Snapshot returns the current display state
func (c *Controller) Snapshot() Snapshot {
	reply := make(chan Snapshot, 1)
	if !c.post(evSnapshot{reply: reply}) {
		return Snapshot{}
	}
	return <-reply
}

// SendAudio forwards a captured audio frame to the active recognizer.
// Frames arriving while not recording are dropped.
func (c *Controller) SendAudio(data []byte) {
	c.post(evAudio{data: data})
}

func (c *Controller) post(ev any) bool {
	if c.ctx == nil {
		return false
	}
	select {
	case c.events <- ev:
		return true
	case <-c.ctx.Done():
		return false
	}
}

func (c *Controller) run() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			c.closeRecognizer()
			return
		case ev := <-c.events:
			c.handle(ev)
		}
	}
}

func (c *Controller) handle(ev any) {
	switch e := ev.(type) {
	case evStart:
		c.handleStart()
		e.reply <- c.recording
	case evStop:
		c.handleStop()
		e.reply <- struct{}{}
	case evSetLanguage:
		log.Printf("session: target language %q -> %q", c.targetLang, e.code)
		c.targetLang = e.code
		e.reply <- struct{}{}
	case evClear:
		c.handleClear()
		e.reply <- struct{}{}
	case evCopyAll:
		e.reply <- c.renderCopyAll()
	case evSnapshot:
		e.reply <- Snapshot{
			Recording:      c.recording,
			TargetLanguage: c.targetLang,
			Transcript:     c.renderTranscript(),
			Translation:    strings.Join(c.translated, " "),
		}
	case evAudio:
		c.handleAudio(e.data)
	case evRecognition:
		c.handleRecognition(e)
	case evRecognizerDone:
		c.handleRecognizerDone(e.epoch)
	case evRestart:
		c.handleRestart(e.epoch)
	case evTranslation:
		c.handleTranslation(e)
	}
}

func (c *Controller) handleStart() {
	if c.recording {
		return
	}
	if !c.startRecognizer() {
		return
	}
	c.recording = true
	c.restartUsed = false
	log.Printf("session: recording started")
}

// startRecognizer creates and starts a fresh recognizer and its pump
// goroutine. Failure is reported as a status message, never an error.
func (c *Controller) startRecognizer() bool {
	if c.cfg.Recognizer == nil {
		c.cfg.Notifier.RecognitionStatus("recognition unavailable: no backend configured")
		return false
	}
	rec, err := c.cfg.Recognizer()
	if err != nil {
		log.Printf("session: recognizer unavailable: %v", err)
		c.cfg.Notifier.RecognitionStatus("recognition unavailable: " + err.Error())
		return false
	}
	if err := rec.Start(c.ctx); err != nil {
		log.Printf("session: recognizer start failed: %v", err)
		c.cfg.Notifier.RecognitionStatus("recognition failed to start: " + err.Error())
		return false
	}

	c.rec = rec
	c.recGen++
	gen := c.recGen

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for res := range rec.Results() {
			select {
			case c.events <- evRecognition{res: res, epoch: gen}:
			case <-c.ctx.Done():
				return
			}
		}
		select {
		case c.events <- evRecognizerDone{epoch: gen}:
		case <-c.ctx.Done():
		}
	}()
	return true
}

func (c *Controller) handleStop() {
	if !c.recording {
		return
	}
	c.recording = false
	c.interim = ""
	c.closeRecognizer()
	log.Printf("session: recording stopped")
}

func (c *Controller) closeRecognizer() {
	if c.rec == nil {
		return
	}
	rec := c.rec
	c.rec = nil
	// Close may block flushing pending audio; don't stall the loop
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := rec.Close(); err != nil {
			log.Printf("session: recognizer close: %v", err)
		}
	}()
}

func (c *Controller) handleClear() {
	c.finals = nil
	c.interim = ""
	c.translated = nil
	// invalidate in-flight translations so their completions are
	// discarded instead of resurrecting cleared text
	c.clearGen++
	c.seqNext = 0
	c.seqFlush = 0
	c.completed = make(map[uint64]evTranslation)
	log.Printf("session: buffers cleared")
}

func (c *Controller) handleAudio(data []byte) {
	if !c.recording || c.rec == nil {
		return
	}
	if err := c.rec.SendAudio(data); err != nil {
		log.Printf("session: send audio: %v", err)
	}
}

func (c *Controller) handleRecognition(e evRecognition) {
	if e.res.Error != nil {
		log.Printf("session: recognition error: %v", e.res.Error)
		return
	}
	if e.res.Final {
		// finals are accepted even after stop: a halting backend may
		// still flush its last committed utterance
		if e.res.Text == "" {
			return
		}
		c.finals = append(c.finals, e.res.Text)
		c.interim = ""
		if c.cfg.Sink != nil {
			c.cfg.Sink.FinalSegment(e.res.Text)
		}
		if c.targetLang != AutoLanguage {
			c.dispatchTranslation(e.res.Text, c.targetLang)
		}
		return
	}
	// the interim segment is replaced wholesale; interims from a
	// superseded recognizer or after stop are discarded
	if c.recording && e.epoch == c.recGen {
		c.interim = e.res.Text
	}
}

// handleRecognizerDone fires when a recognizer's results channel closes.
// While still recording this means the backend died: retry once after a
// fixed delay, then give up and mark the session not-recording.
func (c *Controller) handleRecognizerDone(gen uint64) {
	if !c.recording || gen != c.recGen {
		return
	}
	if c.restartUsed {
		c.recording = false
		c.interim = ""
		c.cfg.Notifier.RecognitionStatus("recognition stopped: restart failed")
		return
	}
	c.restartUsed = true
	log.Printf("session: recognizer lost, restarting in %v", c.cfg.RestartDelay)

	delay := c.cfg.RestartDelay
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		select {
		case <-time.After(delay):
		case <-c.ctx.Done():
			return
		}
		select {
		case c.events <- evRestart{epoch: gen}:
		case <-c.ctx.Done():
		}
	}()
}

func (c *Controller) handleRestart(gen uint64) {
	if !c.recording || gen != c.recGen {
		return
	}
	c.closeRecognizer()
	if !c.startRecognizer() {
		c.recording = false
		c.interim = ""
		c.cfg.Notifier.RecognitionStatus("recognition stopped: restart failed")
		return
	}
	log.Printf("session: recognizer restarted")
}

// dispatchTranslation fires a translation request without waiting.
// Completions re-enter the event loop tagged with a sequence number so
// the translation buffer preserves utterance order even when network
// latency reorders responses.
func (c *Controller) dispatchTranslation(text, target string) {
	if c.cfg.Translator == nil {
		return
	}
	seq := c.seqNext
	c.seqNext++
	gen := c.clearGen
	timeout := c.cfg.TranslateTimeout
	translator := c.cfg.Translator

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(c.ctx, timeout)
		defer cancel()

		translated, err := translator.Translate(ctx, text, target)
		select {
		case c.events <- evTranslation{seq: seq, epoch: gen, text: translated, err: err}:
		case <-c.ctx.Done():
		}
	}()
}

func (c *Controller) handleTranslation(e evTranslation) {
	if e.epoch != c.clearGen {
		return // completed after a clear, discard
	}
	if e.err != nil {
		// failed translations are logged and dropped; the sequence
		// slot is still consumed so later completions can flush
		log.Printf("session: translation failed (seq %d): %v", e.seq, e.err)
	}
	c.completed[e.seq] = e

	for {
		done, ok := c.completed[c.seqFlush]
		if !ok {
			return
		}
		delete(c.completed, c.seqFlush)
		c.seqFlush++
		if done.err != nil || done.text == "" {
			continue
		}
		c.translated = append(c.translated, done.text)
		if c.cfg.Sink != nil {
			c.cfg.Sink.Translation(done.text)
		}
	}
}

func (c *Controller) renderTranscript() string {
	if c.interim == "" {
		return strings.Join(c.finals, " ")
	}
	parts := append(append([]string{}, c.finals...), c.interim)
	return strings.Join(parts, " ")
}

// renderCopyAll concatenates both buffers for clipboard export. The
// translation section appears only when the translation buffer is
// non-empty.
func (c *Controller) renderCopyAll() string {
	transcript := c.renderTranscript()
	if len(c.translated) == 0 {
		return transcript
	}
	return transcript + "\n\nTranslation:\n" + strings.Join(c.translated, " ")
}
