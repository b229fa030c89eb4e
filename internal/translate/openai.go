package translate

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAITranslator translates text via chat completions. Slower than the
// dedicated translation APIs but reuses a key most users already have.
type OpenAITranslator struct {
	client *openai.Client
	model  string
}

func NewOpenAITranslator(cfg Config) *OpenAITranslator {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAITranslator{
		client: openai.NewClient(cfg.APIKey),
		model:  model,
	}
}

func (t *OpenAITranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	systemPrompt := fmt.Sprintf(
		"You are a translation engine. Translate the user's text into the language with ISO 639-1 code %q. "+
			"Output only the translated text, nothing else.", targetLang)

	req := openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.2,
	}

	start := time.Now()
	resp, err := t.client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Printf("openai-translator: API call failed after %v: %v", time.Since(start), err)
		return "", fmt.Errorf("openai translate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai translate: no response choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
