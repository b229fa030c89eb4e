package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dkrauss/captiond/internal/bus"
	"github.com/dkrauss/captiond/internal/config"
	"github.com/dkrauss/captiond/internal/daemon"
	"github.com/dkrauss/captiond/internal/history"
	"github.com/dkrauss/captiond/internal/language"
	"github.com/dkrauss/captiond/internal/tui"
	"github.com/spf13/cobra"
)

func main() {
	_ = rootCmd.Execute()
}

var rootCmd = &cobra.Command{
	Use:   "captiond",
	Short: "Live captions with translation for your desktop",
}

func init() {
	rootCmd.AddCommand(
		serveCmd(),
		toggleCmd(),
		statusCmd(),
		languageCmd(),
		copyCmd(),
		clearCmd(),
		transcriptCmd(),
		historyCmd(),
		versionCmd(),
		stopCmd(),
		configureCmd(),
	)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := daemon.New()
			if err != nil {
				return fmt.Errorf("failed to create daemon: %w", err)
			}
			return d.Run()
		},
	}
}

func toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Toggle recording on/off",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(bus.CmdToggle, "")
			if err != nil {
				return fmt.Errorf("failed to toggle recording: %w", err)
			}
			fmt.Print(resp)
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get current session status",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(bus.CmdStatus, "")
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}
			fmt.Print(resp)
			return nil
		},
	}
}

func languageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "language <code>",
		Short: "Set the translation target language",
		Long: `Set the translation target language for the running session.
Use "auto" to disable translation. Run without arguments to list
supported codes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Printf("auto\t%s\n", language.Auto.Name)
				for _, l := range language.List() {
					fmt.Printf("%s\t%s\n", l.Code, l.Name)
				}
				return nil
			}

			code := strings.ToLower(args[0])
			if !language.IsValidCode(code) {
				return fmt.Errorf("unsupported language code %q, run captiond language to list codes", code)
			}

			resp, err := bus.SendCommand(bus.CmdLanguage, code)
			if err != nil {
				return fmt.Errorf("failed to set language: %w", err)
			}
			fmt.Print(resp)
			return nil
		},
	}
}

func copyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "copy",
		Short: "Copy transcript and translation to the clipboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(bus.CmdCopy, "")
			if err != nil {
				return fmt.Errorf("failed to copy: %w", err)
			}
			fmt.Print(resp)
			return nil
		},
	}
}

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the transcript and translation buffers",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(bus.CmdClear, "")
			if err != nil {
				return fmt.Errorf("failed to clear: %w", err)
			}
			fmt.Print(resp)
			return nil
		},
	}
}

func transcriptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transcript",
		Short: "Print the current transcript and translation",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(bus.CmdTranscript, "")
			if err != nil {
				return fmt.Errorf("failed to get transcript: %w", err)
			}
			fmt.Print(resp)
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent transcript history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return errors.New("history is disabled, enable it with captiond configure")
			}

			path := cfg.History.Path
			if path == "" {
				path, err = history.DefaultPath()
				if err != nil {
					return err
				}
			}

			ctx := context.Background()
			store, err := history.Open(ctx, path, cfg.History.RetentionDays)
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			defer store.Close()

			entries, err := store.Recent(ctx, limit)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Printf("%s  [%s]  %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Kind, e.Text)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of entries to show")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Get protocol version",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(bus.CmdVersion, "")
			if err != nil {
				return fmt.Errorf("failed to get version: %w", err)
			}
			fmt.Print(resp)
			return nil
		},
	}
}

func stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(bus.CmdQuit, "")
			if err != nil {
				return fmt.Errorf("failed to stop daemon: %w", err)
			}
			fmt.Print(resp)
			return nil
		},
	}
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration wizard for captiond.
This will guide you through setting up:
- Recognition provider and API key
- Translation provider and target language
- Notification and history preferences`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure()
		},
	}
}

func runConfigure() error {
	cfg, err := config.Load()
	if err != nil {
		if !errors.Is(err, config.ErrConfigNotFound) {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = nil // first run, wizard starts from defaults
	}

	result, err := tui.Run(cfg)
	if err != nil {
		return fmt.Errorf("configuration wizard error: %w", err)
	}
	if result.Cancelled {
		fmt.Println("Configuration cancelled.")
		return nil
	}

	if err := config.Save(result.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("Configuration saved successfully!")
	fmt.Println()
	fmt.Println("Next Steps:")
	fmt.Println("1. Start the daemon: captiond serve")
	fmt.Println("2. Toggle captions: captiond toggle")
	fmt.Println("3. Copy the result: captiond copy")
	return nil
}
