package main

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/go-news-backend/internal/config"
	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/repo"
)

func sqliteConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		DB:              config.DBConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "news.db")},
		ShutdownTimeout: time.Second,
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out.String(), "newsapi dev (commit: none") {
		t.Fatalf("unexpected version output %q", out.String())
	}
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	if err := os.WriteFile(env, []byte("API_BASE_PATH=/news\nRATE_RPS=3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("API_BASE_PATH", "")
	t.Setenv("RATE_RPS", "")
	os.Unsetenv("API_BASE_PATH")
	os.Unsetenv("RATE_RPS")

	cfg, err := loadConfig(env)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.APIBasePath != "/news" || cfg.RateRPS != 3 {
		t.Fatalf("dotenv values not applied: base=%q rps=%v", cfg.APIBasePath, cfg.RateRPS)
	}

	if _, err := loadConfig(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing env file should be ignored: %v", err)
	}
}

func TestLoadConfig_InvalidEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "chatty")
	if _, err := loadConfig(""); err == nil {
		t.Fatalf("expected config error")
	}
}

func TestMigrateAndSeed(t *testing.T) {
	cfg := sqliteConfig(t)

	if err := migrate(cfg); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := seed(context.Background(), cfg, filepath.Join("..", "..", "data", "test-data.yaml")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	db, err := repo.Open(cfg.DB)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer closeStore(db)
	var n int64
	if err := db.Model(&domain.Article{}).Count(&n).Error; err != nil || n != 6 {
		t.Fatalf("articles after seed = %d (err %v)", n, err)
	}

	if err := seed(context.Background(), cfg, filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing fixture")
	}
}

func TestOpenStore_MissingDir(t *testing.T) {
	cfg := config.Config{DB: config.DBConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "missing", "news.db")}}
	if _, err := openStore(cfg, true); err == nil {
		t.Fatalf("expected open error")
	}
}

func TestRun_ServesUntilCancelled(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := newServer(config.Config{ReadTimeout: time.Second, WriteTimeout: time.Second}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "pong")
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, srv, ln, time.Second) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "pong" {
		t.Fatalf("body = %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("run did not stop after cancel")
	}
}
