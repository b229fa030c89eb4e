package clipboard

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/atotto/clipboard"
)

// Writer exports text to the system clipboard
type Writer interface {
	Write(ctx context.Context, text string) error
}

type Config struct {
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{Timeout: 3 * time.Second}
}

type writer struct {
	config Config
}

func New(config Config) Writer {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	return &writer{config: config}
}

func NewDefault() Writer {
	return New(DefaultConfig())
}

// Write copies text to the clipboard. Tries wl-copy first (Wayland),
// then xclip, then the portable library fallback.
func (w *writer) Write(ctx context.Context, text string) error {
	if text == "" {
		return fmt.Errorf("cannot copy empty text")
	}

	ctx, cancel := context.WithTimeout(ctx, w.config.Timeout)
	defer cancel()

	if _, err := exec.LookPath("wl-copy"); err == nil {
		return runCopyTool(ctx, text, "wl-copy")
	}
	if _, err := exec.LookPath("xclip"); err == nil {
		return runCopyTool(ctx, text, "xclip", "-selection", "clipboard")
	}

	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}
	return nil
}

func runCopyTool(ctx context.Context, text, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}
