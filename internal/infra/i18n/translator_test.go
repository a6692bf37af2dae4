//go:build !integration

package i18n

import (
	"testing"
	"testing/fstest"
)

func synthFS(t *testing.T) fstest.MapFS {
	t.Helper()
	return fstest.MapFS{
		"locales/uz.yaml": &fstest.MapFile{Data: []byte(
			"code.real: \"Kod haqiqiy\"\ngreeting: \"Salom, %s!\"\n")},
		"locales/ru.yaml": &fstest.MapFile{Data: []byte(
			"code.real: \"Код настоящий\"\n")},
	}
}

func TestTranslatorT(t *testing.T) {
	tr, err := NewTranslator(synthFS(t), "uz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tr.T("code.real"); got != "Kod haqiqiy" {
		t.Errorf("expected translation, got %q", got)
	}
	if got := tr.T("greeting", "Dilnoza"); got != "Salom, Dilnoza!" {
		t.Errorf("expected formatted translation, got %q", got)
	}
	if got := tr.T("missing.key"); got != "missing.key" {
		t.Errorf("expected verbatim key for missing translation, got %q", got)
	}
}

func TestTranslatorMissingLocale(t *testing.T) {
	if _, err := NewTranslator(synthFS(t), "fr"); err == nil {
		t.Error("expected an error for a missing locale file")
	}
}

func TestBundleFallback(t *testing.T) {
	b, err := NewBundle(synthFS(t), "uz", "ru")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := b.For("ru").T("code.real"); got != "Код настоящий" {
		t.Errorf("expected ru translation, got %q", got)
	}
	if got := b.For("en").T("code.real"); got != "Kod haqiqiy" {
		t.Errorf("expected fallback to uz, got %q", got)
	}
}

func TestEmbeddedLocalesLoad(t *testing.T) {
	b, err := NewBundle(LocalesFS, "uz", "ru")
	if err != nil {
		t.Fatalf("embedded locales failed to load: %v", err)
	}
	// Every outcome key every handler can emit must exist in every locale.
	keys := []string{
		"code.fake", "code.used", "code.real",
		"code.gift.premium", "code.gift.standard", "code.gift.economy", "code.gift.symbolic",
		"code.limit",
		"auth.requestName", "auth.requestPhoneNumber", "auth.sendContact",
		"validation.invalidPhoneNumber", "menu.main", "error.generic",
	}
	for _, lang := range []string{"uz", "ru"} {
		tr := b.For(lang)
		for _, k := range keys {
			if tr.T(k) == k {
				t.Errorf("locale %s: key %q has no translation", lang, k)
			}
		}
	}
}
