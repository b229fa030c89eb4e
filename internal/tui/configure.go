package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dkrauss/captiond/internal/config"
	"github.com/dkrauss/captiond/internal/language"
	"github.com/muesli/termenv"
)

// ConfigureResult holds the configuration result from the TUI
type ConfigureResult struct {
	Config    *config.Config
	Cancelled bool
}

var recognitionProviderNames = map[string]string{
	"assemblyai": "AssemblyAI (streaming)",
	"whisper":    "OpenAI Whisper (batch)",
}

var translationProviderNames = map[string]string{
	"google-web": "Google Translate (no key)",
	"mymemory":   "MyMemory (no key)",
	"deepl":      "DeepL",
	"openai":     "OpenAI",
}

// keyedProviders need an API key entered during configuration
var keyedProviders = map[string]string{
	"assemblyai": "assemblyai",
	"whisper":    "whisper",
	"deepl":      "deepl",
	"openai":     "openai",
}

// ConfigSection represents a configuration section
type ConfigSection string

const (
	SectionRecognition   ConfigSection = "recognition"
	SectionTranslation   ConfigSection = "translation"
	SectionNotifications ConfigSection = "notifications"
	SectionHistory       ConfigSection = "history"
	SectionSaveExit      ConfigSection = "save_exit"
	SectionDiscardExit   ConfigSection = "discard_exit"
)

// Run starts the configuration wizard. A nil existing config starts
// from the defaults.
func Run(existingConfig *config.Config) (*ConfigureResult, error) {
	cfg := existingConfig
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]config.ProviderConfig)
	}

	for {
		clearScreen()
		fmt.Println(Logo())
		fmt.Println()

		section, err := selectSection(cfg)
		if err != nil {
			return &ConfigureResult{Cancelled: true}, nil
		}

		switch section {
		case SectionSaveExit:
			if err := cfg.Validate(); err != nil {
				fmt.Println(StyleError.Render(err.Error()))
				if !confirm("Configuration has problems. Save anyway?") {
					continue
				}
			}
			return &ConfigureResult{Config: cfg}, nil

		case SectionDiscardExit:
			return &ConfigureResult{Cancelled: true}, nil

		case SectionRecognition:
			if err := editRecognition(cfg); err != nil {
				continue
			}

		case SectionTranslation:
			if err := editTranslation(cfg); err != nil {
				continue
			}

		case SectionNotifications:
			if err := editNotifications(cfg); err != nil {
				continue
			}

		case SectionHistory:
			if err := editHistory(cfg); err != nil {
				continue
			}
		}
	}
}

func selectSection(cfg *config.Config) (ConfigSection, error) {
	options := []huh.Option[ConfigSection]{
		huh.NewOption(fmt.Sprintf("Recognition (%s)", recognitionProviderNames[cfg.Recognition.Provider]), SectionRecognition),
		huh.NewOption(fmt.Sprintf("Translation (%s → %s)", translationProviderNames[cfg.Translation.Provider], targetLabel(cfg)), SectionTranslation),
		huh.NewOption(fmt.Sprintf("Notifications (%s)", notificationsLabel(cfg)), SectionNotifications),
		huh.NewOption(fmt.Sprintf("History (%s)", historyLabel(cfg)), SectionHistory),
		huh.NewOption("Save & Exit", SectionSaveExit),
		huh.NewOption("Discard & Exit", SectionDiscardExit),
	}

	var selected ConfigSection
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[ConfigSection]().
				Title("Configuration Menu").
				Description("↑/↓ navigate • enter select • esc cancel").
				Options(options...).
				Value(&selected),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return "", err
	}
	return selected, nil
}

func editRecognition(cfg *config.Config) error {
	provider := cfg.Recognition.Provider
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Recognition Provider").
				Options(
					huh.NewOption(recognitionProviderNames["assemblyai"], "assemblyai"),
					huh.NewOption(recognitionProviderNames["whisper"], "whisper"),
				).
				Value(&provider),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}
	cfg.Recognition.Provider = provider
	return inputAPIKey(cfg, provider)
}

func editTranslation(cfg *config.Config) error {
	provider := cfg.Translation.Provider
	target := cfg.Translation.TargetLanguage

	langOptions := []huh.Option[string]{
		huh.NewOption(language.Auto.Name, language.Auto.Code),
	}
	for _, l := range language.List() {
		langOptions = append(langOptions, huh.NewOption(fmt.Sprintf("%s (%s)", l.Name, l.Code), l.Code))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Translation Provider").
				Options(
					huh.NewOption(translationProviderNames["google-web"], "google-web"),
					huh.NewOption(translationProviderNames["mymemory"], "mymemory"),
					huh.NewOption(translationProviderNames["deepl"], "deepl"),
					huh.NewOption(translationProviderNames["openai"], "openai"),
				).
				Value(&provider),
			huh.NewSelect[string]().
				Title("Target Language").
				Description("Auto disables translation").
				Options(langOptions...).
				Value(&target),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	cfg.Translation.Provider = provider
	cfg.Translation.TargetLanguage = target
	return inputAPIKey(cfg, provider)
}

func inputAPIKey(cfg *config.Config, provider string) error {
	keyName, ok := keyedProviders[provider]
	if !ok {
		return nil
	}

	existing := cfg.APIKey(keyName)
	key := existing
	desc := "Stored in the config file"
	if existing != "" {
		desc = fmt.Sprintf("Current: %s", maskAPIKey(existing))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("%s API Key", provider)).
				Description(desc).
				EchoMode(huh.EchoModePassword).
				Value(&key),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	if key != "" {
		cfg.Providers[keyName] = config.ProviderConfig{APIKey: key}
	}
	return nil
}

func editNotifications(cfg *config.Config) error {
	enabled := cfg.Notifications.Enabled
	kind := cfg.Notifications.Type
	if kind == "" {
		kind = "desktop"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Enable notifications?").
				Value(&enabled),
			huh.NewSelect[string]().
				Title("Notification Type").
				Options(
					huh.NewOption("Desktop (notify-send)", "desktop"),
					huh.NewOption("Log only", "log"),
					huh.NewOption("None", "none"),
				).
				Value(&kind),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	cfg.Notifications.Enabled = enabled
	cfg.Notifications.Type = kind
	return nil
}

func editHistory(cfg *config.Config) error {
	enabled := cfg.History.Enabled
	retention := fmt.Sprintf("%d", cfg.History.RetentionDays)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Keep transcript history?").
				Description("Stored in a local SQLite database").
				Value(&enabled),
			huh.NewInput().
				Title("Retention (days)").
				Description("0 keeps history forever").
				Value(&retention),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	cfg.History.Enabled = enabled
	var days int
	if _, err := fmt.Sscanf(retention, "%d", &days); err == nil && days >= 0 {
		cfg.History.RetentionDays = days
	}
	return nil
}

func confirm(title string) bool {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title(title).Value(&ok),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return false
	}
	return ok
}

func targetLabel(cfg *config.Config) string {
	if cfg.Translation.TargetLanguage == language.Auto.Code {
		return "off"
	}
	return language.FromCode(cfg.Translation.TargetLanguage).Name
}

func notificationsLabel(cfg *config.Config) string {
	if !cfg.Notifications.Enabled {
		return "off"
	}
	return cfg.Notifications.Type
}

func historyLabel(cfg *config.Config) string {
	if !cfg.History.Enabled {
		return "off"
	}
	if cfg.History.RetentionDays > 0 {
		return fmt.Sprintf("%d days", cfg.History.RetentionDays)
	}
	return "forever"
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

// clearScreen clears the terminal screen
func clearScreen() {
	output := termenv.NewOutput(os.Stdout)
	output.ClearScreen()
}

func getTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Focused.Base = lipgloss.NewStyle().BorderForeground(ColorPrimary)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(ColorSecondary)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(ColorText)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Blurred.Description = lipgloss.NewStyle().Foreground(ColorSubtle)

	return t
}
