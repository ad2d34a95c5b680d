package session

import (
	"fmt"
	"time"

	"github.com/robfig/cron"

	"routinebot/internal/logger"
)

// sweepSpec период очистки устаревших рутин
const sweepSpec = "@every 10m"

// StartSweeper запускает cron-задачу, удаляющую рутины старше ttl.
// Вызывающий останавливает её через Stop.
func StartSweeper(store *Store, ttl time.Duration, log *logger.Logger) (*cron.Cron, error) {
	c := cron.New()
	err := c.AddFunc(sweepSpec, func() {
		if n := store.Sweep(ttl); n > 0 {
			log.Info("Удалены устаревшие рутины", "count", n, "ttl", ttl.String())
		}
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка планирования очистки: %w", err)
	}
	c.Start()
	return c, nil
}
