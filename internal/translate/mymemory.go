package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const myMemoryBaseURL = "https://api.mymemory.translated.net/get"

// MyMemoryTranslator uses the free MyMemory translation API.
// Unauthenticated; source language is auto-detected by the service.
type MyMemoryTranslator struct {
	client  *http.Client
	baseURL string
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string  `json:"translatedText"`
		Match          float64 `json:"match"`
	} `json:"responseData"`
	ResponseStatus  any    `json:"responseStatus"` // int on success, string on some errors
	ResponseDetails string `json:"responseDetails"`
}

func NewMyMemoryTranslator(client *http.Client) *MyMemoryTranslator {
	return &MyMemoryTranslator{client: client, baseURL: myMemoryBaseURL}
}

func (t *MyMemoryTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", "Autodetect|"+targetLang)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("mymemory translate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("mymemory translate: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload myMemoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("mymemory translate: decode: %w", err)
	}

	translated := payload.ResponseData.TranslatedText
	if translated == "" {
		return "", fmt.Errorf("mymemory translate: empty result: %s", payload.ResponseDetails)
	}
	return translated, nil
}
