// oauth_setup получает OAuth-токен пользователя Google для работы с презентациями
// от его имени (копии шаблона ложатся в его Drive, а не в Drive сервисного аккаунта).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"routinebot/internal/slides"
)

func main() {
	credFile := flag.String("creds", "oauth-credentials.json", "OAuth client (Desktop app) из Google Cloud Console")
	tokenFile := flag.String("token", "google-token.json", "Куда сохранить токен")
	addr := flag.String("addr", "localhost:8090", "Адрес локального callback-сервера")
	flag.Parse()

	config, err := slides.OAuthConfig(*credFile, "http://"+*addr+"/callback")
	if err != nil {
		log.Fatalf("Ошибка чтения credentials: %v", err)
	}

	state := uuid.NewString()
	codeCh := make(chan string, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state не совпадает", http.StatusBadRequest)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			fmt.Fprintf(w, "Ошибка: код не получен")
			return
		}
		fmt.Fprintf(w, "<h1>Авторизация успешна!</h1><p>Можете закрыть эту вкладку и вернуться в терминал.</p>")
		select {
		case codeCh <- code:
		default:
		}
	})
	srv := &http.Server{Addr: *addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("HTTP сервер: %v", err)
		}
	}()

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Printf("\n=== Google OAuth2 Setup ===\n\n")
	fmt.Printf("Откройте эту ссылку в браузере:\n\n%s\n\n", authURL)
	fmt.Println("Ожидаю авторизации...")

	code := <-codeCh
	srv.Shutdown(context.Background())

	token, err := config.Exchange(context.Background(), code)
	if err != nil {
		log.Fatalf("Ошибка обмена кода на токен: %v", err)
	}
	if token.RefreshToken == "" {
		log.Fatalf("Google не вернул refresh_token, отзовите доступ приложения и повторите")
	}

	if err := slides.SaveToken(*tokenFile, token); err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Printf("\n=== Токен получен! ===\n\n")
	fmt.Printf("Токен сохранён в: %s (истекает %s, обновляется автоматически)\n", *tokenFile, token.Expiry.Format(time.RFC3339))
	fmt.Println("\nДобавьте в .env:")
	fmt.Printf("GOOGLE_CREDENTIALS=%s\n", *credFile)
	fmt.Printf("GOOGLE_TOKEN_PATH=%s\n", *tokenFile)
}
