package recognizer

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestAssemblyAIRecognizer_ImplementsRecognizer(t *testing.T) {
	var _ Recognizer = (*AssemblyAIRecognizer)(nil)
	var _ Recognizer = (*WhisperRecognizer)(nil)
}

func TestAssemblyAIRecognizer_BuildURL(t *testing.T) {
	tests := []struct {
		name     string
		language string
		wantURL  []string
	}{
		{
			name:     "auto-detect",
			language: "",
			wantURL:  []string{"sample_rate=16000"},
		},
		{
			name:     "explicit language",
			language: "en",
			wantURL:  []string{"sample_rate=16000", "language_code=en"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewAssemblyAIRecognizer(Config{APIKey: "test-key", Language: tt.language, SampleRate: 16000})

			u, err := r.buildURL()
			if err != nil {
				t.Fatalf("buildURL() error = %v", err)
			}
			for _, want := range tt.wantURL {
				if !strings.Contains(u, want) {
					t.Errorf("buildURL() = %q, want to contain %q", u, want)
				}
			}
		})
	}
}

func TestAssemblyAIRecognizer_SendAudioNotStarted(t *testing.T) {
	r := NewAssemblyAIRecognizer(Config{APIKey: "test-key", SampleRate: 16000})

	err := r.SendAudio([]byte("audio data"))
	if err == nil {
		t.Error("SendAudio() should return error when recognizer not started")
	}
	if !strings.Contains(err.Error(), "not started") {
		t.Errorf("error should mention 'not started', got: %v", err)
	}
}

func TestAssemblyAIRecognizer_CloseNotStarted(t *testing.T) {
	r := NewAssemblyAIRecognizer(Config{APIKey: "test-key", SampleRate: 16000})
	if err := r.Close(); err != nil {
		t.Errorf("Close() on unstarted recognizer should be a no-op, got: %v", err)
	}
}

// fakeAssemblyAIServer upgrades the connection and replays scripted
// responses, echoing terminate requests with SessionTerminated.
func fakeAssemblyAIServer(t *testing.T, responses []string) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		for _, resp := range responses {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(resp)); err != nil {
				return
			}
		}

		// read until terminate request or client close
		for {
			var msg map[string]any
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if term, ok := msg["terminate_session"].(bool); ok && term {
				_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"message_type":"SessionTerminated"}`))
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestAssemblyAIRecognizer_Streaming(t *testing.T) {
	srv := fakeAssemblyAIServer(t, []string{
		`{"message_type":"SessionBegins"}`,
		`{"message_type":"PartialTranscript","text":"hello"}`,
		`{"message_type":"PartialTranscript","text":"hello wor"}`,
		`{"message_type":"FinalTranscript","text":"Hello world."}`,
	})
	defer srv.Close()

	r := NewAssemblyAIRecognizer(Config{APIKey: "test-key", SampleRate: 16000})
	r.baseURL = wsURL(srv)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer r.Close()

	var results []Result
	timeout := time.After(3 * time.Second)
	for len(results) < 3 {
		select {
		case res, ok := <-r.Results():
			if !ok {
				t.Fatalf("results channel closed early, got %d results", len(results))
			}
			if res.Error != nil {
				t.Fatalf("unexpected result error: %v", res.Error)
			}
			results = append(results, res)
		case <-timeout:
			t.Fatalf("timed out waiting for results, got %d", len(results))
		}
	}

	if results[0].Final || results[1].Final {
		t.Error("first two results should be interim")
	}
	if !results[2].Final {
		t.Error("third result should be final")
	}
	if results[2].Text != "Hello world." {
		t.Errorf("final text = %q, want %q", results[2].Text, "Hello world.")
	}
}

func TestAssemblyAIRecognizer_SendAudioEncodesBase64(t *testing.T) {
	audioCh := make(chan string, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var msg map[string]any
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if data, ok := msg["audio_data"].(string); ok {
				select {
				case audioCh <- data:
				default:
				}
			}
			if term, ok := msg["terminate_session"].(bool); ok && term {
				return
			}
		}
	}))
	defer srv.Close()

	r := NewAssemblyAIRecognizer(Config{APIKey: "test-key", SampleRate: 16000})
	r.baseURL = wsURL(srv)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer r.Close()

	raw := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	if err := r.SendAudio(raw); err != nil {
		t.Fatalf("SendAudio failed: %v", err)
	}

	select {
	case got := <-audioCh:
		want := base64.StdEncoding.EncodeToString(raw)
		if got != want {
			t.Errorf("audio_data = %q, want %q", got, want)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for audio message")
	}
}
