package config

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server-side settings
	DatabaseDSN string `env:"DATABASE_URI"`
	AuthSecret  string `env:"AUTH_SECRET"`
	PublicURL   string `env:"PUBLIC_URL"` // внешний адрес для ссылок /s/{token} и /blobs/{token}

	// Blob storage
	BlobStore         string        `env:"BLOB_STORE"` // memory | fs | badger | s3
	BlobDir           string        `env:"BLOB_DIR"`
	S3Bucket          string        `env:"S3_BUCKET"`
	S3Region          string        `env:"S3_REGION"`
	S3Endpoint        string        `env:"S3_ENDPOINT"`
	S3AccessKeyID     string        `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string        `env:"S3_SECRET_ACCESS_KEY"`
	S3KeyPrefix       string        `env:"S3_KEY_PREFIX"`
	BlobURLTTL        time.Duration `env:"BLOB_URL_TTL"`

	// Upload policy
	UploadMaxMB      int64    `env:"UPLOAD_MAX_MB"`
	UploadMaxFiles   int      `env:"UPLOAD_MAX_FILES"`
	AllowedMimeTypes []string `env:"ALLOWED_MIME_TYPES" envSeparator:","`
	UploadPolicyFile string   `env:"UPLOAD_POLICY_FILE"`

	// Share links
	ShareDefaultTTL    time.Duration `env:"SHARE_DEFAULT_TTL"`
	SharePurgeInterval time.Duration `env:"SHARE_PURGE_INTERVAL"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// Client-side settings
	ServerURL string `env:"-"`
	TokenFile string `env:"TOKEN_FILE"`
	Version   bool   `env:"-"` // show client version and exit (flag only)
}

var hostPortRe = regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	// Server flags
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.StringVar(&cfg.PublicURL, "public-url", cfg.PublicURL, "внешний адрес сервера для публичных ссылок")
	flag.StringVar(&cfg.BlobStore, "blob-store", cfg.BlobStore, "хранилище содержимого файлов: memory, fs, badger, s3")
	flag.StringVar(&cfg.BlobDir, "blob-dir", cfg.BlobDir, "каталог для fs/badger хранилища")
	flag.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "S3 bucket")
	flag.StringVar(&cfg.S3Endpoint, "s3-endpoint", cfg.S3Endpoint, "S3-совместимый endpoint (MinIO, Localstack)")
	flag.StringVar(&cfg.UploadPolicyFile, "upload-policy", cfg.UploadPolicyFile, "файл с политикой загрузки (yaml/toml/json)")
	flag.DurationVar(&cfg.SharePurgeInterval, "share-purge", cfg.SharePurgeInterval, "период удаления истёкших ссылок, 0: выключено")
	// Shared/client flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "base URL of the GophShare server (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (client: prefer https scheme for BaseURL)")
	// Client flags
	flag.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "path to auth token file (client)")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "gophshare.db"
	}
	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}
	if cfg.PublicURL == "" {
		cfg.PublicURL = cfg.ServerURL
	}
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")

	if cfg.BlobStore == "" {
		cfg.BlobStore = "fs"
	}
	if cfg.BlobDir == "" {
		cfg.BlobDir = "blobs"
	}
	if cfg.S3Region == "" {
		cfg.S3Region = "us-east-1"
	}
	if cfg.BlobURLTTL <= 0 {
		cfg.BlobURLTTL = 15 * time.Minute
	}

	if cfg.UploadMaxMB <= 0 {
		cfg.UploadMaxMB = 50
	}
	if cfg.UploadMaxFiles <= 0 {
		cfg.UploadMaxFiles = 10
	}
	if cfg.ShareDefaultTTL <= 0 {
		cfg.ShareDefaultTTL = 7 * 24 * time.Hour
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	// Fill client defaults if empty
	if cfg.TokenFile == "" {
		home, _ := os.UserHomeDir()
		cfg.TokenFile = filepath.Join(home, ".gs_token")
	}
}
