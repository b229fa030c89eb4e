package daemon

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dkrauss/captiond/internal/bus"
	"github.com/dkrauss/captiond/internal/clipboard"
	"github.com/dkrauss/captiond/internal/config"
	"github.com/dkrauss/captiond/internal/history"
	"github.com/dkrauss/captiond/internal/language"
	"github.com/dkrauss/captiond/internal/notify"
	"github.com/dkrauss/captiond/internal/recognizer"
	"github.com/dkrauss/captiond/internal/recording"
	"github.com/dkrauss/captiond/internal/session"
	"github.com/dkrauss/captiond/internal/translate"
)

// Daemon owns the session controller, the audio recorder and the
// control socket. One daemon per user; the pid file enforces it.
type Daemon struct {
	manager    *config.Manager
	notifier   notify.Notifier
	clip       clipboard.Writer
	store      *history.Store
	controller *session.Controller

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	recorder  *recording.Recorder
	recording bool
}

func New() (*Daemon, error) {
	manager, err := config.NewManager()
	if err != nil {
		return nil, err
	}
	cfg := manager.GetConfig()

	notifier := notifierFromConfig(cfg)

	translator, err := translate.New(translate.Config{
		Provider: cfg.Translation.Provider,
		APIKey:   cfg.APIKey(cfg.Translation.Provider),
		Model:    cfg.Translation.Model,
		Timeout:  cfg.Translation.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create translator: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Daemon{
		manager:  manager,
		notifier: notifier,
		clip:     clipboard.New(clipboard.Config{Timeout: cfg.Clipboard.Timeout}),
		ctx:      ctx,
		cancel:   cancel,
	}

	var sink session.Sink
	if cfg.History.Enabled {
		path := cfg.History.Path
		if path == "" {
			path, err = history.DefaultPath()
			if err != nil {
				cancel()
				return nil, fmt.Errorf("resolve history path: %w", err)
			}
		}
		store, err := history.Open(ctx, path, cfg.History.RetentionDays)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("open history store: %w", err)
		}
		d.store = store
		sink = store
	}

	d.controller = session.New(session.Config{
		Recognizer:       d.newRecognizer,
		Translator:       translator,
		TargetLanguage:   cfg.Translation.TargetLanguage,
		RestartDelay:     cfg.Recognition.RestartDelay,
		TranslateTimeout: cfg.Translation.Timeout,
		Sink:             sink,
		Notifier:         notifier,
	})

	return d, nil
}

func notifierFromConfig(cfg *config.Config) notify.Notifier {
	if !cfg.Notifications.Enabled {
		return notify.Nop{}
	}
	return notify.New(cfg.Notifications.Type)
}

// newRecognizer reads the live configuration so provider changes take
// effect on the next recording without a daemon restart.
func (d *Daemon) newRecognizer() (recognizer.Recognizer, error) {
	cfg := d.manager.GetConfig()
	return recognizer.New(recognizer.Config{
		Provider:   cfg.Recognition.Provider,
		APIKey:     cfg.APIKey(cfg.Recognition.Provider),
		Model:      cfg.Recognition.Model,
		Language:   cfg.Recognition.Language,
		SampleRate: cfg.Recording.SampleRate,
	})
}

func (d *Daemon) Run() error {
	if err := bus.CheckExistingDaemon(); err != nil {
		return err
	}

	ln, err := bus.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	if err := bus.CreatePidFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer bus.RemovePidFile()

	d.controller.Run(d.ctx)
	defer d.controller.Shutdown()

	if err := d.manager.StartWatching(d.ctx); err != nil {
		log.Printf("daemon: config watching disabled: %v", err)
	}
	defer d.manager.Stop()

	if d.store != nil {
		defer d.store.Close()
	}
	defer d.stopRecording()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	go func() {
		sig := <-sigCh
		log.Printf("daemon: received signal %v, shutting down", sig)
		d.cancel()
	}()

	// Close the listener when context is done
	go func() {
		<-d.ctx.Done()
		ln.Close()
	}()

	log.Printf("daemon: started, listening on socket")

	for {
		c, err := ln.Accept()
		if err != nil {
			if d.ctx.Err() != nil {
				log.Printf("daemon: shutdown requested")
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}
		go d.handle(c)
	}
}

func (d *Daemon) handle(c net.Conn) {
	defer c.Close()

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		log.Printf("daemon: client read error: %v", err)
		fmt.Fprintf(c, "ERR read_error: %v\n", err)
		return
	}
	cmd, arg := bus.ParseCommand(line)

	switch cmd {
	case bus.CmdToggle:
		fmt.Fprint(c, d.toggle())

	case bus.CmdStatus:
		snap := d.controller.Snapshot()
		fmt.Fprintf(c, "STATUS recording=%t language=%s transcript_chars=%d translation_chars=%d\n",
			snap.Recording, snap.TargetLanguage, len(snap.Transcript), len(snap.Translation))

	case bus.CmdLanguage:
		if !language.IsValidCode(arg) {
			fmt.Fprintf(c, "ERR unsupported language %q\n", arg)
			return
		}
		d.controller.SetLanguage(arg)
		fmt.Fprintf(c, "OK language=%s\n", arg)

	case bus.CmdCopy:
		text := d.controller.CopyAll()
		if text == "" {
			fmt.Fprint(c, "ERR nothing to copy\n")
			return
		}
		if err := d.clip.Write(d.ctx, text); err != nil {
			log.Printf("daemon: clipboard write failed: %v", err)
			fmt.Fprintf(c, "ERR clipboard: %v\n", err)
			return
		}
		fmt.Fprintf(c, "OK copied %d chars\n", len(text))

	case bus.CmdClear:
		d.controller.Clear()
		fmt.Fprint(c, "OK cleared\n")

	case bus.CmdTranscript:
		text := d.controller.CopyAll()
		if text == "" {
			fmt.Fprint(c, "ERR empty\n")
			return
		}
		fmt.Fprintf(c, "%s\n", text)

	case bus.CmdVersion:
		fmt.Fprintf(c, "STATUS proto=%s\n", bus.ProtoVer)

	case bus.CmdQuit:
		fmt.Fprint(c, "OK quitting\n")
		d.cancel()

	default:
		log.Printf("daemon: unknown command: %c", cmd)
		fmt.Fprintf(c, "ERR unknown=%q\n", cmd)
	}
}

// toggle flips the recording state and returns the response line
func (d *Daemon) toggle() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.recording {
		d.stopLocked()
		go d.notifier.RecordingStopped()
		return "OK stopped\n"
	}

	if !d.controller.Start() {
		return "ERR recognition unavailable\n"
	}

	cfg := d.manager.GetConfig()
	rec := recording.NewRecorder(recording.Config{
		SampleRate:        cfg.Recording.SampleRate,
		Channels:          cfg.Recording.Channels,
		Format:            cfg.Recording.Format,
		BufferSize:        cfg.Recording.BufferSize,
		Device:            cfg.Recording.Device,
		ChannelBufferSize: cfg.Recording.ChannelBufferSize,
	})

	frames, errs, err := rec.Start(d.ctx)
	if err != nil {
		d.controller.Stop()
		log.Printf("daemon: audio capture failed: %v", err)
		return fmt.Sprintf("ERR capture: %v\n", err)
	}

	go func() {
		for f := range frames {
			d.controller.SendAudio(f.Data)
		}
	}()
	go func() {
		for err := range errs {
			log.Printf("daemon: capture error: %v", err)
		}
	}()

	d.recorder = rec
	d.recording = true
	go d.notifier.RecordingStarted()
	return "OK recording\n"
}

func (d *Daemon) stopRecording() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

func (d *Daemon) stopLocked() {
	if !d.recording {
		return
	}
	if d.recorder != nil {
		if err := d.recorder.Stop(); err != nil {
			log.Printf("daemon: recorder stop: %v", err)
		}
		d.recorder = nil
	}
	d.controller.Stop()
	d.recording = false
}
