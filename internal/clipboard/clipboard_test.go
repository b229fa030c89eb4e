package clipboard

import (
	"context"
	"testing"
	"time"
)

func TestWriteEmptyText(t *testing.T) {
	w := NewDefault()
	if err := w.Write(context.Background(), ""); err == nil {
		t.Error("Write() should reject empty text")
	}
}

func TestNewAppliesDefaultTimeout(t *testing.T) {
	w := New(Config{Timeout: 0}).(*writer)
	if w.config.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want default 3s", w.config.Timeout)
	}
}
