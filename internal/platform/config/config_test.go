package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("FILES_DRIVER", "")
	os.Unsetenv("FILES_DRIVER")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Addr() != ":8080" {
		t.Fatalf("expected :8080, got %s", cfg.Addr())
	}
	if cfg.OnlineWindow != 2*time.Minute {
		t.Fatalf("expected 2m online window, got %s", cfg.OnlineWindow)
	}
	if cfg.Files.Driver != FilesDriverMemory {
		t.Fatalf("expected memory driver, got %s", cfg.Files.Driver)
	}
}

func TestParse_S3RequiresBucket(t *testing.T) {
	t.Setenv("FILES_DRIVER", "s3")
	t.Setenv("FILES_S3_BUCKET", "")

	if _, err := Parse(); err == nil {
		t.Fatalf("expected error without bucket")
	}

	t.Setenv("FILES_S3_BUCKET", "shelter")
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Files.S3Bucket != "shelter" || cfg.Files.S3Region != "us-east-1" {
		t.Fatalf("unexpected files config: %+v", cfg.Files)
	}
}

func TestParse_IAMRequiresAPIKey(t *testing.T) {
	t.Setenv("IAM_BASE_URL", "https://iam.shelter.test")
	t.Setenv("IAM_API_KEY", "")

	if _, err := Parse(); err == nil {
		t.Fatalf("expected error without IAM api key")
	}

	t.Setenv("IAM_API_KEY", "k")
	if _, err := Parse(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestParse_InvalidDuration(t *testing.T) {
	t.Setenv("ONLINE_WINDOW", "soon")
	if _, err := Parse(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("PORT=9191\nREDIS_ADDR=localhost:6380\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("ENV_FILE", path)
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")
	t.Setenv("REDIS_ADDR", "")
	os.Unsetenv("REDIS_ADDR")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Addr() != ":9191" {
		t.Fatalf("expected :9191, got %s", cfg.Addr())
	}
	if cfg.Redis.Addr != "localhost:6380" {
		t.Fatalf("expected redis addr from file, got %q", cfg.Redis.Addr)
	}
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	if _, err := Load(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}
