package translate

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Translator is the translation collaborator contract: one request, one
// response. Implementations must be safe for concurrent use because the
// session controller dispatches translations fire-and-forget.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Config selects and configures a translation backend
type Config struct {
	Provider string        // "google-web", "mymemory", "deepl", "openai"
	APIKey   string        // required for deepl and openai
	Model    string        // openai only
	Timeout  time.Duration // per-request timeout
}

const defaultTimeout = 10 * time.Second

// New creates a Translator for the configured provider
func New(cfg Config) (Translator, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &http.Client{Timeout: timeout}

	switch cfg.Provider {
	case "google-web":
		return NewGoogleWebTranslator(client), nil
	case "mymemory":
		return NewMyMemoryTranslator(client), nil
	case "deepl":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("DeepL API key required")
		}
		return NewDeepLTranslator(client, cfg.APIKey), nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		return NewOpenAITranslator(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", cfg.Provider)
	}
}
