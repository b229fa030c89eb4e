package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// createTestConfig returns a valid configuration for testing
func createTestConfig() *Config {
	return &Config{
		Recording: RecordingConfig{
			SampleRate:        16000,
			Channels:          1,
			Format:            "s16",
			BufferSize:        4096,
			ChannelBufferSize: 30,
		},
		Recognition: RecognitionConfig{
			Provider:     "assemblyai",
			RestartDelay: 2 * time.Second,
		},
		Translation: TranslationConfig{
			Provider:       "google-web",
			TargetLanguage: "es",
			Timeout:        10 * time.Second,
		},
		Clipboard: ClipboardConfig{
			Timeout: 3 * time.Second,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Type:    "log",
		},
		Providers: map[string]ProviderConfig{
			"assemblyai": {APIKey: "test-key"},
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "zero sample rate",
			mutate:  func(c *Config) { c.Recording.SampleRate = 0 },
			wantErr: "sample_rate",
		},
		{
			name:    "unknown recognition provider",
			mutate:  func(c *Config) { c.Recognition.Provider = "siri" },
			wantErr: "recognition.provider",
		},
		{
			name:    "unknown translation provider",
			mutate:  func(c *Config) { c.Translation.Provider = "babelfish" },
			wantErr: "translation.provider",
		},
		{
			name:    "invalid target language",
			mutate:  func(c *Config) { c.Translation.TargetLanguage = "xx" },
			wantErr: "target_language",
		},
		{
			name:   "auto target language is valid",
			mutate: func(c *Config) { c.Translation.TargetLanguage = "auto" },
		},
		{
			name:    "invalid notifications type",
			mutate:  func(c *Config) { c.Notifications.Type = "carrier-pigeon" },
			wantErr: "notifications.type",
		},
		{
			name:    "negative history retention",
			mutate:  func(c *Config) { c.History.Enabled = true; c.History.RetentionDays = -1 },
			wantErr: "retention_days",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error mentioning %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig() must validate: %v", err)
	}
}

func TestLoadFrom(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
		if err == nil {
			t.Fatal("LoadFrom() should fail for a missing file")
		}
		if !strings.Contains(err.Error(), "config not found") {
			t.Errorf("error = %v, want config not found", err)
		}
	})

	t.Run("valid file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[recognition]
provider = "whisper"
model = "whisper-1"

[translation]
provider = "deepl"
target_language = "de"

[providers.deepl]
api_key = "secret"
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("write temp config: %v", err)
		}

		cfg, err := LoadFrom(path)
		if err != nil {
			t.Fatalf("LoadFrom() failed: %v", err)
		}
		if cfg.Recognition.Provider != "whisper" {
			t.Errorf("Recognition.Provider = %q, want whisper", cfg.Recognition.Provider)
		}
		if cfg.Translation.TargetLanguage != "de" {
			t.Errorf("TargetLanguage = %q, want de", cfg.Translation.TargetLanguage)
		}
		// defaults survive for unspecified sections
		if cfg.Recording.SampleRate != 16000 {
			t.Errorf("Recording.SampleRate = %d, want default 16000", cfg.Recording.SampleRate)
		}
		if got := cfg.APIKey("deepl"); got != "secret" {
			t.Errorf("APIKey(deepl) = %q, want secret", got)
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("not [valid toml"), 0600); err != nil {
			t.Fatalf("write temp config: %v", err)
		}
		if _, err := LoadFrom(path); err == nil {
			t.Error("LoadFrom() should fail for malformed TOML")
		}
	})
}

func TestAPIKeyEnvFallback(t *testing.T) {
	cfg := DefaultConfig()
	t.Setenv("ASSEMBLYAI_API_KEY", "from-env")

	if got := cfg.APIKey("assemblyai"); got != "from-env" {
		t.Errorf("APIKey(assemblyai) = %q, want env fallback", got)
	}

	cfg.Providers["assemblyai"] = ProviderConfig{APIKey: "from-file"}
	if got := cfg.APIKey("assemblyai"); got != "from-file" {
		t.Errorf("APIKey(assemblyai) = %q, config file must win over env", got)
	}

	if got := cfg.APIKey("unknown-provider"); got != "" {
		t.Errorf("APIKey(unknown) = %q, want empty", got)
	}
}
