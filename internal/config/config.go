package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppPort string `mapstructure:"APP_PORT"`

	// --- Сторидж артефактов ---
	StorageBackend string `mapstructure:"STORAGE_BACKEND"` // disk | s3
	StorageRoot    string `mapstructure:"STORAGE_ROOT"`

	// --- Политики пайплайна ---
	RetentionTTLMs    int64  `mapstructure:"RETENTION_TTL_MS"`
	StreamChunkBytes  int64  `mapstructure:"STREAM_CHUNK_BYTES"`
	MaxUploadBytes    int64  `mapstructure:"MAX_UPLOAD_BYTES"`
	AcceptedMediaType string `mapstructure:"ACCEPTED_MEDIA_TYPE"`
	MetaCacheTTLS     int    `mapstructure:"META_CACHE_TTL_S"`

	// --- Метаданные (необязательный Postgres) ---
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     int    `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBScheme   string `mapstructure:"DB_SCHEME"`

	// --- Кеш (необязательный Redis) ---
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	// --- S3 (для STORAGE_BACKEND=s3) ---
	S3Endpoint  string `mapstructure:"S3_ENDPOINT"`
	S3Region    string `mapstructure:"S3_REGION"`
	S3Bucket    string `mapstructure:"S3_BUCKET"`
	S3AccessKey string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey string `mapstructure:"S3_SECRET_KEY"`
	S3UseSSL    bool   `mapstructure:"S3_USE_SSL"`
	S3PathStyle bool   `mapstructure:"S3_PATH_STYLE"`
}

// Дефолты по референсному поведению: TTL 24ч, чанк 1МБ, потолок 1ГиБ+1.
const (
	DefaultAppPort           = ":8080"
	DefaultStorageBackend    = "disk"
	DefaultStorageRoot       = "data/uploads"
	DefaultRetentionTTLMs    = 86_400_000
	DefaultStreamChunkBytes  = 1_000_000
	DefaultMaxUploadBytes    = 1_073_741_825
	DefaultAcceptedMediaType = "video/mp4"
	DefaultMetaCacheTTLS     = 60
)

// String реализует интерфейс Stringer
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  AppPort: %s\n", c.AppPort))
	sb.WriteString(fmt.Sprintf("  StorageBackend: %s\n", c.StorageBackend))
	sb.WriteString(fmt.Sprintf("  StorageRoot: %s\n", c.StorageRoot))
	sb.WriteString(fmt.Sprintf("  RetentionTTLMs: %d\n", c.RetentionTTLMs))
	sb.WriteString(fmt.Sprintf("  StreamChunkBytes: %d\n", c.StreamChunkBytes))
	sb.WriteString(fmt.Sprintf("  MaxUploadBytes: %d\n", c.MaxUploadBytes))
	sb.WriteString(fmt.Sprintf("  AcceptedMediaType: %s\n", c.AcceptedMediaType))
	sb.WriteString(fmt.Sprintf("  MetaCacheTTLS: %d\n", c.MetaCacheTTLS))

	sb.WriteString(fmt.Sprintf("  DBHost: %s\n", c.DBHost))
	sb.WriteString(fmt.Sprintf("  DBPort: %d\n", c.DBPort))
	sb.WriteString(fmt.Sprintf("  DBUser: %s\n", c.DBUser))
	sb.WriteString(fmt.Sprintf("  DBName: %s\n", c.DBName))
	sb.WriteString(fmt.Sprintf("  DBScheme: %s\n", c.DBScheme))

	// пароли и ключи маскируем
	if c.DBPassword != "" {
		sb.WriteString("  DBPassword: ********\n")
	} else {
		sb.WriteString("  DBPassword: (empty)\n")
	}

	sb.WriteString(fmt.Sprintf("  RedisAddr: %s\n", c.RedisAddr))
	sb.WriteString(fmt.Sprintf("  RedisDB: %d\n", c.RedisDB))
	if c.RedisPassword != "" {
		sb.WriteString("  RedisPassword: ********\n")
	} else {
		sb.WriteString("  RedisPassword: (empty)\n")
	}

	sb.WriteString(fmt.Sprintf("  S3Endpoint: %s\n", c.S3Endpoint))
	sb.WriteString(fmt.Sprintf("  S3Region: %s\n", c.S3Region))
	sb.WriteString(fmt.Sprintf("  S3Bucket: %s\n", c.S3Bucket))
	if c.S3AccessKey != "" {
		sb.WriteString("  S3AccessKey: ********\n")
	} else {
		sb.WriteString("  S3AccessKey: (empty)\n")
	}
	if c.S3SecretKey != "" {
		sb.WriteString("  S3SecretKey: ********\n")
	} else {
		sb.WriteString("  S3SecretKey: (empty)\n")
	}
	sb.WriteString(fmt.Sprintf("  S3UseSSL: %v\n", c.S3UseSSL))
	sb.WriteString(fmt.Sprintf("  S3PathStyle: %v\n", c.S3PathStyle))

	return sb.String()
}

// LoadFromEnv загружает конфигурацию из переменных окружения
func LoadFromEnv() (*Config, error) {
	// Загружаем .env только для локальной разработки
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, errors.New("failed to load .env")
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	// Регистрируем интересующие ключи окружения
	keys := []string{
		"APP_ENV", "APP_PORT",
		"STORAGE_BACKEND", "STORAGE_ROOT",
		"RETENTION_TTL_MS", "STREAM_CHUNK_BYTES", "MAX_UPLOAD_BYTES",
		"ACCEPTED_MEDIA_TYPE", "META_CACHE_TTL_S",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SCHEME",
		"REDIS_ADDR", "REDIS_DB", "REDIS_PASSWORD",
		"S3_ENDPOINT", "S3_REGION", "S3_BUCKET", "S3_ACCESS_KEY", "S3_SECRET_KEY",
		"S3_USE_SSL", "S3_PATH_STYLE",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	v.SetDefault("APP_PORT", DefaultAppPort)
	v.SetDefault("STORAGE_BACKEND", DefaultStorageBackend)
	v.SetDefault("STORAGE_ROOT", DefaultStorageRoot)
	v.SetDefault("RETENTION_TTL_MS", DefaultRetentionTTLMs)
	v.SetDefault("STREAM_CHUNK_BYTES", DefaultStreamChunkBytes)
	v.SetDefault("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)
	v.SetDefault("ACCEPTED_MEDIA_TYPE", DefaultAcceptedMediaType)
	v.SetDefault("META_CACHE_TTL_S", DefaultMetaCacheTTLS)
	v.SetDefault("DB_SCHEME", "mp4ium")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.StorageBackend != "disk" && c.StorageBackend != "s3" {
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.RetentionTTLMs <= 0 {
		return errors.New("RETENTION_TTL_MS must be positive")
	}
	if c.StreamChunkBytes <= 0 {
		return errors.New("STREAM_CHUNK_BYTES must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	if c.AcceptedMediaType == "" {
		return errors.New("ACCEPTED_MEDIA_TYPE must not be empty")
	}
	return nil
}

// HasDB/HasRedis: коллабораторы включаются наличием адреса.
func (c *Config) HasDB() bool    { return c.DBHost != "" }
func (c *Config) HasRedis() bool { return c.RedisAddr != "" }

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
