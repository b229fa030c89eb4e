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

const deepLBaseURL = "https://api-free.deepl.com/v2/translate"

// DeepLTranslator uses the DeepL v2 REST API (free tier endpoint).
type DeepLTranslator struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// deepLCodes maps ISO 639-1 codes to DeepL target codes, which are
// uppercase and differ for a few languages.
var deepLCodes = map[string]string{
	"en": "EN-US",
	"pt": "PT-PT",
	"zh": "ZH-HANS",
	"no": "NB",
}

type deepLResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
	Message string `json:"message"`
}

func NewDeepLTranslator(client *http.Client, apiKey string) *DeepLTranslator {
	return &DeepLTranslator{client: client, apiKey: apiKey, baseURL: deepLBaseURL}
}

// DeepLTargetCode converts an ISO 639-1 code to the DeepL target code
func DeepLTargetCode(code string) string {
	if mapped, ok := deepLCodes[code]; ok {
		return mapped
	}
	return strings.ToUpper(code)
}

func (t *DeepLTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("target_lang", DeepLTargetCode(targetLang))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+t.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepl translate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("deepl translate: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload deepLResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("deepl translate: decode: %w", err)
	}
	if len(payload.Translations) == 0 {
		return "", fmt.Errorf("deepl translate: no translations in response")
	}
	return payload.Translations[0].Text, nil
}
