package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const googleWebBaseURL = "https://translate.googleapis.com/translate_a/single"

// GoogleWebTranslator uses the unauthenticated Google Translate web
// endpoint (client=gtx). No API key, no rate-limit contract: upstream
// rejections are reported as ordinary errors and callers drop them.
type GoogleWebTranslator struct {
	client  *http.Client
	baseURL string
}

func NewGoogleWebTranslator(client *http.Client) *GoogleWebTranslator {
	return &GoogleWebTranslator{client: client, baseURL: googleWebBaseURL}
}

func (t *GoogleWebTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", "auto")
	q.Set("tl", targetLang)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("google-web translate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("google-web translate: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	// Response is a nested array: [[["translated","original",...],...],...].
	// Sentence translations are the first element of each inner array.
	var payload []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("google-web translate: decode: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("google-web translate: empty response")
	}

	var sentences [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &sentences); err != nil {
		return "", fmt.Errorf("google-web translate: decode sentences: %w", err)
	}

	var sb strings.Builder
	for _, s := range sentences {
		if len(s) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(s[0], &part); err != nil {
			continue
		}
		sb.WriteString(part)
	}

	result := sb.String()
	log.Printf("google-web-translator: translated %d chars to %s in %v", len(text), targetLang, time.Since(start))
	return result, nil
}
