package configwatcher

import (
	"context"
	"nutritrack_backend/internal/config"
	"nutritrack_backend/pkg/logger"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

type ConfigReloader func(cfg *config.Config)

// Watcher 监听配置文件所在目录，编辑器以重命名方式保存时也能收到事件
type Watcher struct {
	Path     string
	Debounce time.Duration
	Load     func(dir string) (*config.Config, error)
}

func New(configPath string) *Watcher {
	return &Watcher{
		Path:     configPath,
		Debounce: time.Second,
		Load:     config.LoadConfig,
	}
}

// Run 阻塞直到 ctx 结束。重新加载失败时保留旧配置并记录日志
func (w *Watcher) Run(ctx context.Context, reloader ConfigReloader) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(w.Path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return err
	}

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				// 防抖处理
				timer.Reset(w.Debounce)
			}
		case <-timer.C:
			newCfg, err := w.Load(filepath.Dir(absPath))
			if err != nil {
				logger.Log.Error("Failed to reload config", zap.Error(err))
				continue
			}
			logger.Log.Info("Config reloaded", zap.String("path", absPath))
			reloader(newCfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Log.Error("Config watcher error", zap.Error(err))
		}
	}
}
