package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedHasExpectedLocales(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	if !bundle.HasLocale(BaseLocale) {
		t.Fatalf("expected base locale %s", BaseLocale)
	}
	if !bundle.HasLocale("pt-BR") {
		t.Fatalf("expected locale pt-BR")
	}
	if got := len(bundle.NamespaceMessages("en-US", "report")); got == 0 {
		t.Fatalf("expected en-US report namespace messages")
	}
	if got := len(bundle.NamespaceMessages("pt-BR", "move")); got == 0 {
		t.Fatalf("expected pt-BR move namespace messages")
	}
}

// TestEmbeddedLocalesAreComplete keeps every shipped locale in step with the
// base locale.
func TestEmbeddedLocalesAreComplete(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	for _, locale := range bundle.Locales() {
		if missing := bundle.MissingKeys(locale); len(missing) > 0 {
			t.Fatalf("locale %s is missing %v", locale, missing)
		}
	}
}

func TestLoadFromFSRejectsKeyOutsideNamespace(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/report.yaml"), `locale: "en-US"
namespace: "report"
messages:
  "move.rock": "Rock"
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadFromFSRejectsLocaleMismatch(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/move.yaml"), `locale: "pt-BR"
namespace: "move"
messages:
  "move.rock": "Pedra"
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected locale mismatch error")
	}
}

func TestLoadFromFSRequiresBaseLocale(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/pt-BR/move.yaml"), `locale: "pt-BR"
namespace: "move"
messages:
  "move.rock": "Pedra"
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected missing base locale error")
	}
}

func TestLoadFromFSRejectsMalformedYAML(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/move.yaml"), "locale: [\n")

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestMessageFallsBackToBaseLocale(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/move.yaml"), `locale: "en-US"
namespace: "move"
messages:
  "move.rock": "Rock"
  "move.paper": "Paper"
`)
	mustWriteFile(t, filepath.Join(tempDir, "locales/pt-BR/move.yaml"), `locale: "pt-BR"
namespace: "move"
messages:
  "move.rock": "Pedra"
`)

	bundle, err := LoadFromFS(os.DirFS(tempDir))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tcs := []struct {
		locale string
		key    string
		want   string
	}{
		{locale: "pt-BR", key: "move.rock", want: "Pedra"},
		{locale: "pt-BR", key: "move.paper", want: "Paper"},
		{locale: "fr-FR", key: "move.rock", want: "Rock"},
	}
	for _, tc := range tcs {
		got, ok := bundle.Message(tc.locale, tc.key)
		if !ok || got != tc.want {
			t.Fatalf("Message(%q, %q) = %q, %v, want %q", tc.locale, tc.key, got, ok, tc.want)
		}
	}
	if _, ok := bundle.Message("en-US", "move.lizard"); ok {
		t.Fatal("expected missing key")
	}
	if got := bundle.MissingKeys("pt-BR"); len(got) != 1 || got[0] != "move.paper" {
		t.Fatalf("MissingKeys = %v, want [move.paper]", got)
	}
}

func TestPrinterUsesRegisteredMessages(t *testing.T) {
	bundle := Default()

	if got := bundle.Printer("pt-BR").Sprintf("report.rounds", 1500); got != "Rodadas jogadas: 1.500" {
		t.Fatalf("pt-BR rounds = %q", got)
	}
	if got := bundle.Printer("fr-FR").Sprintf("report.rounds", 1500); got != "Rounds played: 1,500" {
		t.Fatalf("fallback rounds = %q", got)
	}
	if got := bundle.Resolve(" pt-BR "); got != "pt-BR" {
		t.Fatalf("Resolve = %q, want pt-BR", got)
	}
}

func mustWriteFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
