package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	FilesDriverMemory = "memory"
	FilesDriverS3     = "s3"
)

// Config del proceso. Todo viene de env vars (opcionalmente desde un .env).
type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	AppName string `env:"APP_NAME" envDefault:"noahs-ark"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Vacío => repos in-memory.
	DBDSN string `env:"DB_DSN"`

	Redis RedisConfig `envPrefix:"REDIS_"`

	IAM     IAMConfig     `envPrefix:"IAM_"`
	Traccar TraccarConfig `envPrefix:"TRACCAR_"`
	Files   FilesConfig   `envPrefix:"FILES_"`

	RealtimePublishTimeout time.Duration `env:"REALTIME_PUBLISH_TIMEOUT" envDefault:"2s"`
	OnlineWindow           time.Duration `env:"ONLINE_WINDOW" envDefault:"2m"`

	HTTPReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5s"`
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type IAMConfig struct {
	BaseURL string        `env:"BASE_URL"`
	APIKey  string        `env:"API_KEY"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"5s"`
}

type TraccarConfig struct {
	BaseURL string        `env:"BASE_URL"`
	Token   string        `env:"TOKEN"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type FilesConfig struct {
	Driver      string `env:"DRIVER" envDefault:"memory"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3PathStyle bool   `env:"S3_PATH_STYLE" envDefault:"false"`
}

// Load lee un .env si existe (ruta en ENV_FILE, default ".env") y luego parsea el entorno.
func Load() (Config, error) {
	path := strings.TrimSpace(os.Getenv("ENV_FILE"))
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}
	return Parse()
}

// Parse solo mira el entorno actual (útil en tests con t.Setenv).
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Files.Driver {
	case FilesDriverMemory:
	case FilesDriverS3:
		if strings.TrimSpace(c.Files.S3Bucket) == "" {
			return errors.New("config: FILES_S3_BUCKET required for s3 driver")
		}
	default:
		return fmt.Errorf("config: unknown FILES_DRIVER %q", c.Files.Driver)
	}
	if strings.TrimSpace(c.IAM.BaseURL) != "" && strings.TrimSpace(c.IAM.APIKey) == "" {
		return errors.New("config: IAM_API_KEY required when IAM_BASE_URL is set")
	}
	if c.OnlineWindow <= 0 {
		return errors.New("config: ONLINE_WINDOW must be positive")
	}
	if c.RealtimePublishTimeout <= 0 {
		return errors.New("config: REALTIME_PUBLISH_TIMEOUT must be positive")
	}
	return nil
}

func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}
