package recognizer

import (
	"context"
	"fmt"
)

// Result is a single recognition callback from a streaming backend.
// Final results will not be revised further; an interim result replaces
// the previous interim result wholesale.
type Result struct {
	Text  string
	Final bool
	Error error // non-nil if the backend reported an error
}

// Recognizer is the recognition collaborator contract. Audio frames go
// in, incremental results come out on the Results channel.
type Recognizer interface {
	// Start opens the connection to the recognition backend.
	Start(ctx context.Context) error

	// SendAudio forwards a chunk of raw PCM audio to the backend.
	SendAudio(data []byte) error

	// Results delivers interim and final recognition results.
	Results() <-chan Result

	// Close flushes pending audio and tears down the connection.
	Close() error
}

// Config selects and configures a recognition backend
type Config struct {
	Provider   string // "assemblyai", "whisper"
	APIKey     string
	Model      string // whisper only
	Language   string // source language hint, "" = auto-detect
	SampleRate int
}

func DefaultConfig() Config {
	return Config{
		Provider:   "assemblyai",
		SampleRate: 16000,
	}
}

// New creates a Recognizer for the configured provider
func New(cfg Config) (Recognizer, error) {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}

	switch cfg.Provider {
	case "assemblyai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("AssemblyAI API key required")
		}
		return NewAssemblyAIRecognizer(cfg), nil
	case "whisper":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		return NewWhisperRecognizer(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported recognition provider: %s", cfg.Provider)
	}
}
