package commands

import (
	"os"
	"path/filepath"
	"testing"

	"GophShare/internal/config"
)

// withTempConfig возвращает конфиг с файлом токена во временном каталоге,
// чтобы артефакты тестов не попадали в домашний каталог.
func withTempConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{ServerURL: serverURL, TokenFile: filepath.Join(dir, "token")}
}

// loggedIn то же, но с уже сохранённым токеном.
func loggedIn(t *testing.T, serverURL string) *config.Config {
	t.Helper()
	cfg := withTempConfig(t, serverURL)
	if err := os.WriteFile(cfg.TokenFile, []byte("tok-1"), 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}
	return cfg
}
