// routinecli разбирает рутину из файла или stdin без Telegram.
//
//	routinecli -file rutina.txt -offline
//	cat rutina.txt | routinecli -xlsx rutina.xlsx
//	routinecli -file rutina.txt -slides
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"routinebot/clients/ai"
	"routinebot/internal/config"
	"routinebot/internal/excel"
	"routinebot/internal/logger"
	"routinebot/internal/routine"
	"routinebot/internal/slides"
)

func main() {
	file := flag.String("file", "", "Файл с текстом рутины (по умолчанию stdin)")
	envPath := flag.String("env", ".env", "Путь к .env")
	offline := flag.Bool("offline", false, "Разбор по правилам, без модели")
	xlsxPath := flag.String("xlsx", "", "Сохранить рутину в xlsx")
	makeSlides := flag.Bool("slides", false, "Создать презентацию Google Slides")
	verbose := flag.Bool("v", false, "Подробный лог")
	timeout := flag.Duration("timeout", 2*time.Minute, "Общий таймаут")
	flag.Parse()

	if err := run(*file, *envPath, *offline, *xlsxPath, *makeSlides, *verbose, *timeout); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func run(file, envPath string, offline bool, xlsxPath string, makeSlides, verbose bool, timeout time.Duration) error {
	log := logger.Nop()
	if verbose {
		var err error
		if log, err = logger.New("dev"); err != nil {
			return err
		}
		defer log.Sync()
	}

	cfg, err := config.LoadOffline(envPath)
	if err != nil {
		return err
	}
	if offline {
		cfg.AIProvider = ai.ProviderRules
	}

	text, err := readInput(file)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var structurer routine.Structurer = routine.NewRuleStructurer()
	backend, err := ai.NewBackend(ctx, cfg.ProviderConfig())
	if err != nil {
		return err
	}
	if backend != nil {
		structurer = routine.NewLLMStructurer(backend, log)
	}

	days, err := routine.NewPipeline(structurer, log).Parse(ctx, text)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(days); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✅ %d días, %d ejercicios\n", len(days), days.TotalExercises())

	if xlsxPath != "" {
		out, err := os.Create(xlsxPath)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := excel.WriteRoutine(out, days); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "📄", xlsxPath)
	}

	if makeSlides {
		if cfg.TemplatePresentationID == "" {
			return fmt.Errorf("TEMPLATE_PRESENTATION_ID не задан")
		}
		layout, err := cfg.Layout()
		if err != nil {
			return err
		}
		svc, err := slides.NewGoogleService(ctx, cfg.GoogleCredentials, cfg.GoogleTokenPath, log)
		if err != nil {
			return err
		}
		result, err := slides.NewGenerator(svc, cfg.TemplatePresentationID, layout, log).Create(ctx, days)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "🔗", result.URL)
	}
	return nil
}

func readInput(file string) (string, error) {
	if file == "" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("чтение %s: %w", file, err)
	}
	return string(data), nil
}
