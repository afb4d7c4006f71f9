package retention

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Расширения файлов, которые создаёт сборщик подкастов.
var podcastExts = []string{".wav", ".json"}

// Cleaner удаляет готовые подкасты старше TTL в заданной директории.
type Cleaner struct {
	dir    string
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewCleaner(dir string, ttl time.Duration, logger *zap.SugaredLogger) *Cleaner {
	return &Cleaner{dir: dir, ttl: ttl, logger: logger}
}

// Run чистит директорию каждые interval до отмены контекста. ttl <= 0 — очистка отключена.
func (c *Cleaner) Run(ctx context.Context, interval time.Duration) error {
	if c.ttl <= 0 || c.dir == "" {
		return nil
	}
	if interval <= 0 {
		interval = c.ttl / 4
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			c.Clean(time.Now())
		}
	}
}

// Clean удаляет файлы подкастов с временем изменения раньше now-ttl. Возвращает число удалённых.
func (c *Cleaner) Clean(now time.Time) int {
	if c.ttl <= 0 || c.dir == "" {
		return 0
	}
	deadline := now.Add(-c.ttl)

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0
		}
		c.logger.Warnw("Не удалось прочитать директорию для очистки", "dir", c.dir, "error", err)
		return 0
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		lower := strings.ToLower(name)
		if slices.IndexFunc(podcastExts, func(ext string) bool { return strings.HasSuffix(lower, ext) }) == -1 {
			continue
		}
		fi, statErr := e.Info()
		if statErr != nil {
			c.logger.Warnw("Не удалось получить информацию о файле при очистке", "name", name, "error", statErr)
			continue
		}
		if fi.ModTime().Before(deadline) {
			full := filepath.Join(c.dir, name)
			if err := os.Remove(full); err != nil {
				c.logger.Warnw("Не удалось удалить старый файл", "path", full, "error", err)
				continue
			}
			removed++
		}
	}
	if removed > 0 {
		c.logger.Infow("Очистка старых подкастов выполнена", "dir", c.dir, "removed", removed, "before", deadline.Format(time.RFC3339))
	}
	return removed
}
