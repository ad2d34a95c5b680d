package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"
)

// Language представляет поддерживаемый язык
type Language string

const (
	LangSpanish Language = "es"
	LangEnglish Language = "en"
	DefaultLang Language = LangSpanish
)

//go:embed locales/*.json
var locales embed.FS

// translations хранит все переводы
var translations = struct {
	sync.RWMutex
	data map[Language]map[string]string
}{data: make(map[Language]map[string]string)}

func init() {
	if err := Load(locales); err != nil {
		panic(err)
	}
}

// Load загружает переводы из locales/<lang>.json в fsys
func Load(fsys fs.FS) error {
	loaded := make(map[Language]map[string]string)

	for _, lang := range []Language{LangSpanish, LangEnglish} {
		filePath := "locales/" + string(lang) + ".json"
		data, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return fmt.Errorf("ошибка чтения файла локализации %s: %w", filePath, err)
		}

		var langData map[string]string
		if err := json.Unmarshal(data, &langData); err != nil {
			return fmt.Errorf("ошибка парсинга файла локализации %s: %w", filePath, err)
		}
		loaded[lang] = langData
	}

	translations.Lock()
	translations.data = loaded
	translations.Unlock()
	return nil
}

// T возвращает перевод для указанного ключа и языка
func T(key string, lang Language) string {
	translations.RLock()
	defer translations.RUnlock()

	if langData, ok := translations.data[lang]; ok {
		if text, ok := langData[key]; ok {
			return text
		}
	}

	// Fallback на испанский
	if lang != DefaultLang {
		if text, ok := translations.data[DefaultLang][key]; ok {
			return text
		}
	}

	// Если ключ не найден, возвращаем сам ключ
	return key
}

// Tf возвращает форматированный перевод
func Tf(key string, lang Language, args ...interface{}) string {
	template := T(key, lang)
	if len(args) == 0 {
		return template
	}
	return fmt.Sprintf(template, args...)
}

// Keys ключи каталога языка (для проверки полноты переводов)
func Keys(lang Language) []string {
	translations.RLock()
	defer translations.RUnlock()

	keys := make([]string, 0, len(translations.data[lang]))
	for k := range translations.data[lang] {
		keys = append(keys, k)
	}
	return keys
}

// ParseLanguage преобразует language_code Telegram ("en", "en-US") в Language
func ParseLanguage(code string) Language {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	switch Language(code) {
	case LangEnglish:
		return LangEnglish
	default:
		return LangSpanish
	}
}
