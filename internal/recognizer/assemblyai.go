package recognizer

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const assemblyAIBaseURL = "wss://api.assemblyai.com/v2/realtime/ws"

// AssemblyAIRecognizer implements Recognizer over the AssemblyAI
// realtime websocket API. Partial transcripts arrive continuously and
// are superseded by a final transcript per utterance.
type AssemblyAIRecognizer struct {
	baseURL    string
	apiKey     string
	language   string
	sampleRate int

	conn      *websocket.Conn
	resultsCh chan Result
	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	started   bool
}

// assemblyAI websocket messages (outgoing)
type assemblyAIAudioMessage struct {
	AudioData string `json:"audio_data"`
}

type assemblyAITerminateMessage struct {
	TerminateSession bool `json:"terminate_session"`
}

// assemblyAI websocket messages (incoming)
type assemblyAIResponse struct {
	MessageType string  `json:"message_type"`
	Text        string  `json:"text"`
	Confidence  float64 `json:"confidence"`
	Error       string  `json:"error"`
}

func NewAssemblyAIRecognizer(cfg Config) *AssemblyAIRecognizer {
	return &AssemblyAIRecognizer{
		baseURL:    assemblyAIBaseURL,
		apiKey:     cfg.APIKey,
		language:   cfg.Language,
		sampleRate: cfg.SampleRate,
		resultsCh:  make(chan Result, 100),
	}
}

func (r *AssemblyAIRecognizer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("recognizer already started")
	}

	r.ctx, r.cancel = context.WithCancel(ctx)

	wsURL, err := r.buildURL()
	if err != nil {
		return fmt.Errorf("build websocket url: %w", err)
	}

	headers := http.Header{}
	headers.Set("Authorization", r.apiKey)

	conn, resp, err := websocket.DefaultDialer.DialContext(r.ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			log.Printf("assemblyai: dial failed with status %d", resp.StatusCode)
		}
		r.cancel()
		return fmt.Errorf("websocket dial: %w", err)
	}
	r.conn = conn
	r.started = true

	r.wg.Add(1)
	go r.readLoop()

	log.Printf("assemblyai: connected, sample_rate=%d, language=%q", r.sampleRate, r.language)
	return nil
}

func (r *AssemblyAIRecognizer) buildURL() (string, error) {
	u, err := url.Parse(r.baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("sample_rate", strconv.Itoa(r.sampleRate))
	if r.language != "" {
		q.Set("language_code", r.language)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (r *AssemblyAIRecognizer) readLoop() {
	defer r.wg.Done()
	defer close(r.resultsCh)

	for {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		var msg assemblyAIResponse
		if err := r.conn.ReadJSON(&msg); err != nil {
			if r.ctx.Err() != nil {
				return // expected close
			}
			r.emit(Result{Error: fmt.Errorf("assemblyai read: %w", err)})
			return
		}

		switch msg.MessageType {
		case "PartialTranscript":
			if msg.Text != "" {
				r.emit(Result{Text: msg.Text, Final: false})
			}
		case "FinalTranscript":
			if msg.Text != "" {
				r.emit(Result{Text: msg.Text, Final: true})
			}
		case "SessionTerminated":
			return
		case "SessionBegins", "":
			// ignore
		default:
			if msg.Error != "" {
				r.emit(Result{Error: fmt.Errorf("assemblyai: %s", msg.Error)})
			}
		}
	}
}

// emit delivers a result without blocking the read loop. The channel is
// generously buffered; if a consumer stalls that long, drop.
func (r *AssemblyAIRecognizer) emit(res Result) {
	select {
	case r.resultsCh <- res:
	default:
		log.Printf("assemblyai: results channel full, dropping result")
	}
}

func (r *AssemblyAIRecognizer) SendAudio(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started || r.conn == nil {
		return fmt.Errorf("recognizer not started")
	}

	msg := assemblyAIAudioMessage{
		AudioData: base64.StdEncoding.EncodeToString(data),
	}
	if err := r.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("assemblyai send audio: %w", err)
	}
	return nil
}

func (r *AssemblyAIRecognizer) Results() <-chan Result {
	return r.resultsCh
}

func (r *AssemblyAIRecognizer) Close() error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return nil
	}
	r.started = false

	// ask the service to flush remaining audio before we cancel
	if r.conn != nil {
		_ = r.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		_ = r.conn.WriteJSON(assemblyAITerminateMessage{TerminateSession: true})
	}
	r.mu.Unlock()

	// give the read loop a moment to drain the SessionTerminated ack
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		log.Printf("assemblyai: timed out waiting for session termination")
	}

	if r.cancel != nil {
		r.cancel()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil {
		err := r.conn.Close()
		r.conn = nil
		return err
	}
	return nil
}
