package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"nutritrack_backend/internal/config"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: info\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	w := New(path)
	w.Debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *config.Config, 1)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(cfg *config.Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// 等待监听建立后再修改文件
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case cfg := <-reloaded:
			if cfg.Log.Level != "warn" {
				t.Fatalf("level = %s, want warn", cfg.Log.Level)
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Run: %v", err)
			}
			return
		case <-tick.C:
			os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o644)
		case <-deadline:
			t.Fatalf("config was not reloaded")
		}
	}
}
