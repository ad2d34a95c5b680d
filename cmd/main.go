package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"routinebot/clients/ai"
	"routinebot/clients/chatwoot"
	"routinebot/internal/bot"
	"routinebot/internal/config"
	"routinebot/internal/logger"
	"routinebot/internal/routine"
	"routinebot/internal/server"
	"routinebot/internal/session"
	"routinebot/internal/slides"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("ошибка инициализации логгера: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	structurer, err := newStructurer(ctx, cfg, log)
	if err != nil {
		return err
	}
	pipeline := routine.NewPipeline(structurer, log)

	var creator bot.PresentationCreator
	generator := newGenerator(ctx, cfg, log)
	if generator != nil {
		creator = generator
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return fmt.Errorf("ошибка подключения к Telegram: %w", err)
	}
	log.Info("Авторизован в Telegram", "username", api.Self.UserName)

	store := session.NewStore()
	sweeper, err := session.StartSweeper(store, cfg.PendingTTL, log)
	if err != nil {
		return err
	}
	defer sweeper.Stop()

	conversations := chatwoot.New(cfg.Chatwoot, log)
	handler := bot.NewHandler(pipeline, creator, store, bot.NewTelegramNotifier(api, log), log).
		WithConversations(conversations)
	tg := bot.New(api, handler, log)

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: server.New(server.Deps{
			Parser:     pipeline,
			Generator:  creator,
			Updates:    handler,
			Webhook:    tg,
			WebhookURL: cfg.WebhookURL,
			AppName:    cfg.AppName,
			Version:    cfg.Version,
		}, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP сервер запущен", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ошибка HTTP сервера: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.UseWebhook() {
		g.Go(func() error { return tg.SetWebhook(cfg.WebhookURL) })
	} else {
		g.Go(func() error { return tg.Run(gctx) })
	}

	if generator != nil {
		g.Go(func() error {
			err := config.WatchLayout(gctx, cfg.LayoutConfigPath, log, func(layout slides.Layout) {
				if cfg.RoutineLayoutID != "" {
					layout.SlideLayoutID = cfg.RoutineLayoutID
				}
				generator.SetLayout(layout)
			})
			if err != nil {
				log.Warn("Горячая перезагрузка раскладки отключена", "error", err)
			}
			return nil
		})
	}

	log.Info("Бот запущен",
		"app", cfg.AppName,
		"version", cfg.Version,
		"provider", ai.GetProviderName(cfg.AIProvider),
		"webhook", cfg.UseWebhook(),
		"slides", generator != nil,
		"chatwoot", conversations.Enabled(),
	)

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Бот остановлен")
	return nil
}

// newStructurer модель по AI_PROVIDER; rules работает без модели
func newStructurer(ctx context.Context, cfg *config.Config, log *logger.Logger) (routine.Structurer, error) {
	backend, err := ai.NewBackend(ctx, cfg.ProviderConfig())
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации модели: %w", err)
	}
	if backend == nil {
		log.Warn("Модель не используется, разбор по правилам")
		return routine.NewRuleStructurer(), nil
	}
	log.Info("Модель подключена", "provider", ai.GetProviderName(cfg.AIProvider), "model", backend.Model())
	return routine.NewLLMStructurer(backend, log), nil
}

// newGenerator nil, если шаблон или ключ Google не настроены: бот работает без презентаций
func newGenerator(ctx context.Context, cfg *config.Config, log *logger.Logger) *slides.Generator {
	if cfg.TemplatePresentationID == "" {
		log.Warn("TEMPLATE_PRESENTATION_ID не задан, презентации отключены")
		return nil
	}

	layout, err := cfg.Layout()
	if err != nil {
		log.Warn("Раскладка не загружена, используются значения по умолчанию", "error", err)
		layout = slides.DefaultLayout()
		if cfg.RoutineLayoutID != "" {
			layout.SlideLayoutID = cfg.RoutineLayoutID
		}
	}

	svc, err := slides.NewGoogleService(ctx, cfg.GoogleCredentials, cfg.GoogleTokenPath, log)
	if err != nil {
		log.Warn("Google Slides не инициализирован", "error", err)
		return nil
	}
	return slides.NewGenerator(svc, cfg.TemplatePresentationID, layout, log)
}
