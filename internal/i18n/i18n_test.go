package i18n

import (
	"sort"
	"strings"
	"testing"
	"testing/fstest"
)

func TestCatalogsHaveSameKeys(t *testing.T) {
	es := Keys(LangSpanish)
	en := Keys(LangEnglish)
	sort.Strings(es)
	sort.Strings(en)
	if strings.Join(es, ",") != strings.Join(en, ",") {
		t.Errorf("catalog keys differ:\nes=%v\nen=%v", es, en)
	}
	for _, key := range []string{"error_empty_input", "error_parse", "error_empty_routine", "error_slides"} {
		if T(key, LangSpanish) == key {
			t.Errorf("missing key %q", key)
		}
	}
}

func TestT(t *testing.T) {
	if got := T("no_pending", LangSpanish); got != "📭 No tienes ninguna rutina pendiente." {
		t.Errorf("T(no_pending, es) = %q", got)
	}
	if got := T("button_cancel", LangEnglish); got != "❌ Cancel" {
		t.Errorf("T(button_cancel, en) = %q", got)
	}
	if got := T("missing_key", LangEnglish); got != "missing_key" {
		t.Errorf("T(missing_key) = %q", got)
	}
	if got := Tf("preview_day", LangSpanish, 2, 5); got != "*Día 2* (5 ejercicios)" {
		t.Errorf("Tf(preview_day) = %q", got)
	}
}

func TestFallbackToSpanish(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/es.json": {Data: []byte(`{"only_es": "hola"}`)},
		"locales/en.json": {Data: []byte(`{}`)},
	}
	if err := Load(fsys); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	t.Cleanup(func() {
		if err := Load(locales); err != nil {
			t.Fatal(err)
		}
	})

	if got := T("only_es", LangEnglish); got != "hola" {
		t.Errorf("T(only_es, en) = %q, want fallback", got)
	}
}

func TestLoadErrors(t *testing.T) {
	if err := Load(fstest.MapFS{}); err == nil {
		t.Error("Load() with no files: error = nil")
	}
	broken := fstest.MapFS{
		"locales/es.json": {Data: []byte(`{`)},
		"locales/en.json": {Data: []byte(`{}`)},
	}
	if err := Load(broken); err == nil {
		t.Error("Load() with broken json: error = nil")
	}
}

func TestParseLanguage(t *testing.T) {
	tests := map[string]Language{
		"en":    LangEnglish,
		"en-US": LangEnglish,
		"EN":    LangEnglish,
		"es":    LangSpanish,
		"ru":    LangSpanish,
		"":      LangSpanish,
	}
	for in, want := range tests {
		if got := ParseLanguage(in); got != want {
			t.Errorf("ParseLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}
