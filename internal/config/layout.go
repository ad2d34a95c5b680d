package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"routinebot/internal/logger"
	"routinebot/internal/slides"
)

// LoadLayout читает YAML раскладки поверх значений по умолчанию.
// Отсутствующий файл не ошибка: возвращается DefaultLayout.
func LoadLayout(path string) (slides.Layout, error) {
	layout := slides.DefaultLayout()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return layout, nil
	}
	if err != nil {
		return slides.Layout{}, fmt.Errorf("чтение %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return slides.Layout{}, fmt.Errorf("разбор %s: %w", path, err)
	}
	if err := layout.Validate(); err != nil {
		return slides.Layout{}, fmt.Errorf("проверка %s: %w", path, err)
	}
	return layout, nil
}

// Layout раскладка из LayoutConfigPath; ROUTINE_LAYOUT_ID важнее файла
func (c *Config) Layout() (slides.Layout, error) {
	layout, err := LoadLayout(c.LayoutConfigPath)
	if err != nil {
		return slides.Layout{}, err
	}
	if c.RoutineLayoutID != "" {
		layout.SlideLayoutID = c.RoutineLayoutID
	}
	return layout, nil
}

// layoutDebounce события записи одного сохранения приходят пачкой
const layoutDebounce = 500 * time.Millisecond

// WatchLayout следит за файлом раскладки и вызывает onChange с новой валидной раскладкой.
// Невалидный файл логируется, текущая раскладка остаётся. Блокирует до отмены ctx.
func WatchLayout(ctx context.Context, path string, log *logger.Logger, onChange func(slides.Layout)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("ошибка создания наблюдателя: %w", err)
	}
	defer watcher.Close()

	// редакторы заменяют файл целиком, поэтому следим за каталогом
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("ошибка добавления %s в наблюдатель: %w", dir, err)
	}
	target := filepath.Clean(path)
	log.Info("Наблюдение за раскладкой запущено", "path", target)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(layoutDebounce)
			} else {
				timer.Reset(layoutDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			layout, err := LoadLayout(target)
			if err != nil {
				log.Warn("Раскладка не применена", "path", target, "error", err)
				continue
			}
			log.Info("Раскладка обновлена", "path", target)
			onChange(layout)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("Ошибка наблюдателя", "error", err)
		}
	}
}
