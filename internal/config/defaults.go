package config

import "time"

// DefaultConfig returns the initial configuration used for onboarding
func DefaultConfig() *Config {
	return &Config{
		Recording: RecordingConfig{
			SampleRate:        16000,
			Channels:          1,
			Format:            "s16",
			BufferSize:        4096,
			Device:            "",
			ChannelBufferSize: 30,
		},
		Recognition: RecognitionConfig{
			Provider:     "assemblyai",
			Language:     "",
			RestartDelay: 2 * time.Second,
		},
		Translation: TranslationConfig{
			Provider:       "google-web",
			TargetLanguage: "auto",
			Timeout:        10 * time.Second,
		},
		Clipboard: ClipboardConfig{
			Timeout: 3 * time.Second,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Type:    "desktop",
		},
		History: HistoryConfig{
			Enabled:       false,
			RetentionDays: 30,
		},
		Providers: make(map[string]ProviderConfig),
	}
}
