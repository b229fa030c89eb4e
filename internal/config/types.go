package config

import "time"

type Config struct {
	Recording     RecordingConfig           `toml:"recording"`
	Recognition   RecognitionConfig         `toml:"recognition"`
	Translation   TranslationConfig         `toml:"translation"`
	Clipboard     ClipboardConfig           `toml:"clipboard"`
	Notifications NotificationsConfig       `toml:"notifications"`
	History       HistoryConfig             `toml:"history"`
	Providers     map[string]ProviderConfig `toml:"providers"`
}

// ProviderConfig holds the API key for a provider
type ProviderConfig struct {
	APIKey string `toml:"api_key"`
}

type RecordingConfig struct {
	SampleRate        int    `toml:"sample_rate"`
	Channels          int    `toml:"channels"`
	Format            string `toml:"format"`
	BufferSize        int    `toml:"buffer_size"`
	Device            string `toml:"device"`
	ChannelBufferSize int    `toml:"channel_buffer_size"`
}

type RecognitionConfig struct {
	Provider     string        `toml:"provider"`
	Model        string        `toml:"model"`    // whisper only
	Language     string        `toml:"language"` // source language hint, "" = auto-detect
	RestartDelay time.Duration `toml:"restart_delay"`
}

type TranslationConfig struct {
	Provider       string        `toml:"provider"`
	Model          string        `toml:"model"` // openai only
	TargetLanguage string        `toml:"target_language"`
	Timeout        time.Duration `toml:"timeout"`
}

type ClipboardConfig struct {
	Timeout time.Duration `toml:"timeout"`
}

type NotificationsConfig struct {
	Enabled bool   `toml:"enabled"`
	Type    string `toml:"type"` // "desktop", "log", "none"
}

type HistoryConfig struct {
	Enabled       bool   `toml:"enabled"`
	Path          string `toml:"path"` // defaults to <cache dir>/captiond/history.db
	RetentionDays int    `toml:"retention_days"`
}
