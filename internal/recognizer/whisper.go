package recognizer

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
)

// WhisperRecognizer implements Recognizer over the OpenAI audio
// transcription API. Whisper has no streaming mode: audio accumulates
// in memory and a single final result is emitted on Close.
type WhisperRecognizer struct {
	client     *openai.Client
	model      string
	language   string
	sampleRate int

	mu        sync.Mutex
	audio     bytes.Buffer
	resultsCh chan Result
	ctx       context.Context
	cancel    context.CancelFunc
	started   bool
}

func NewWhisperRecognizer(cfg Config) *WhisperRecognizer {
	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperRecognizer{
		client:     openai.NewClient(cfg.APIKey),
		model:      model,
		language:   cfg.Language,
		sampleRate: cfg.SampleRate,
		resultsCh:  make(chan Result, 1),
	}
}

func (r *WhisperRecognizer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("recognizer already started")
	}
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.started = true
	r.audio.Reset()
	return nil
}

func (r *WhisperRecognizer) SendAudio(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return fmt.Errorf("recognizer not started")
	}
	_, err := r.audio.Write(data)
	return err
}

func (r *WhisperRecognizer) Results() <-chan Result {
	return r.resultsCh
}

func (r *WhisperRecognizer) Close() error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return nil
	}
	r.started = false
	audio := make([]byte, r.audio.Len())
	copy(audio, r.audio.Bytes())
	r.audio.Reset()
	ctx := r.ctx
	cancel := r.cancel
	r.mu.Unlock()

	defer cancel()
	defer close(r.resultsCh)

	if len(audio) == 0 {
		return nil
	}

	transcribeCtx, transcribeCancel := context.WithTimeout(ctx, 60*time.Second)
	defer transcribeCancel()

	wavData := pcmToWAV(audio, r.sampleRate)
	req := openai.AudioRequest{
		Model:    r.model,
		Reader:   bytes.NewReader(wavData),
		FilePath: "audio.wav",
		Language: r.language,
	}

	start := time.Now()
	resp, err := r.client.CreateTranscription(transcribeCtx, req)
	if err != nil {
		log.Printf("whisper: transcription failed after %v: %v", time.Since(start), err)
		r.resultsCh <- Result{Error: fmt.Errorf("whisper transcription: %w", err)}
		return nil
	}

	log.Printf("whisper: transcribed %d bytes in %v", len(audio), time.Since(start))
	if resp.Text != "" {
		r.resultsCh <- Result{Text: resp.Text, Final: true}
	}
	return nil
}
