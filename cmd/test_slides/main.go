package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"routinebot/internal/config"
	"routinebot/internal/logger"
	"routinebot/internal/models"
	"routinebot/internal/slides"
)

// Проверка доступа к шаблону презентации с текущими GOOGLE_CREDENTIALS / GOOGLE_TOKEN_PATH
func main() {
	cfg, err := config.LoadOffline(".env")
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}
	if cfg.TemplatePresentationID == "" {
		log.Fatalf("TEMPLATE_PRESENTATION_ID не задан")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc, err := slides.NewGoogleService(ctx, cfg.GoogleCredentials, cfg.GoogleTokenPath, logger.Nop())
	if err != nil {
		log.Fatalf("Ошибка инициализации: %v", err)
	}

	fmt.Println("Google Slides клиент инициализирован!")

	pages, err := svc.PageCount(ctx, cfg.TemplatePresentationID)
	if err != nil {
		log.Fatalf("Шаблон недоступен: %v", err)
	}

	fmt.Printf("Шаблон доступен: %s%s (слайдов: %d)\n", models.PresentationURLPrefix, cfg.TemplatePresentationID, pages)
}
