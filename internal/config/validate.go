package config

import (
	"fmt"
	"strings"

	"github.com/dkrauss/captiond/internal/language"
)

var recognitionProviders = []string{"assemblyai", "whisper"}
var translationProviders = []string{"google-web", "mymemory", "deepl", "openai"}

// Validate checks the configuration for values the daemon cannot run with
func (c *Config) Validate() error {
	var errs []string

	if c.Recording.SampleRate <= 0 {
		errs = append(errs, fmt.Sprintf("recording.sample_rate must be positive, got %d", c.Recording.SampleRate))
	}
	if c.Recording.Channels <= 0 {
		errs = append(errs, fmt.Sprintf("recording.channels must be positive, got %d", c.Recording.Channels))
	}
	if c.Recording.BufferSize <= 0 {
		errs = append(errs, fmt.Sprintf("recording.buffer_size must be positive, got %d", c.Recording.BufferSize))
	}
	if c.Recording.ChannelBufferSize <= 0 {
		errs = append(errs, fmt.Sprintf("recording.channel_buffer_size must be positive, got %d", c.Recording.ChannelBufferSize))
	}
	if c.Recording.Format == "" {
		errs = append(errs, "recording.format must not be empty")
	}

	if !contains(recognitionProviders, c.Recognition.Provider) {
		errs = append(errs, fmt.Sprintf("recognition.provider must be one of %v, got %q",
			recognitionProviders, c.Recognition.Provider))
	}

	if !contains(translationProviders, c.Translation.Provider) {
		errs = append(errs, fmt.Sprintf("translation.provider must be one of %v, got %q",
			translationProviders, c.Translation.Provider))
	}
	if !language.IsValidCode(c.Translation.TargetLanguage) {
		errs = append(errs, fmt.Sprintf("translation.target_language %q is not a supported language code",
			c.Translation.TargetLanguage))
	}

	switch c.Notifications.Type {
	case "", "desktop", "log", "none":
	default:
		errs = append(errs, fmt.Sprintf("notifications.type must be desktop, log or none, got %q",
			c.Notifications.Type))
	}

	if c.History.Enabled && c.History.RetentionDays < 0 {
		errs = append(errs, fmt.Sprintf("history.retention_days must not be negative, got %d",
			c.History.RetentionDays))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
