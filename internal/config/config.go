// Package config загружает конфигурацию сервера из YAML файла,
// .env файла и переменных окружения.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/iudanet/blogapi/internal/server/jwt"
)

// Переменные окружения, перекрывающие значения из файла
const (
	EnvHTTPAddr  = "BLOG_HTTP_ADDR"
	EnvDBPath    = "BLOG_DB_PATH"
	EnvJWTSecret = "BLOG_JWT_SECRET"
	EnvAccessTTL = "BLOG_JWT_ACCESS_TTL"
	EnvLogLevel  = "BLOG_LOG_LEVEL"
)

// Config корневая конфигурация сервера
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Logging  LoggingConfig  `yaml:"logging"`
	Seed     SeedConfig     `yaml:"seed"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPAddr           string     `yaml:"http_addr"`
	ReadTimeoutRaw     string     `yaml:"read_timeout"`
	WriteTimeoutRaw    string     `yaml:"write_timeout"`
	ShutdownTimeoutRaw string     `yaml:"shutdown_timeout"`
	CORS               CORSConfig `yaml:"cors"`

	ReadTimeout     time.Duration `yaml:"-"`
	WriteTimeout    time.Duration `yaml:"-"`
	ShutdownTimeout time.Duration `yaml:"-"`
}

// CORSConfig список origin, которым разрешены cross-origin запросы
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig настройки SQLite
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// JWTConfig настройки выпуска access токенов.
// Secret хранится в base64, декодированный ключ доступен через SecretKey.
type JWTConfig struct {
	Secret                    string `yaml:"secret"`
	AccessTokenExpirationRaw  string `yaml:"access_token_expiration"`
	RefreshTokenExpirationRaw string `yaml:"refresh_token_expiration"`

	AccessTokenTTL time.Duration `yaml:"-"`
	// RefreshTokenTTL читается и проверяется, но refresh токены сервер не выпускает
	RefreshTokenTTL time.Duration `yaml:"-"`
	SecretKey       []byte        `yaml:"-"`
}

// LoggingConfig настройки slog
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SeedConfig путь к YAML файлу с начальными данными, пустой путь отключает загрузку
type SeedConfig struct {
	Path string `yaml:"path"`
}

// Default возвращает конфигурацию со значениями по умолчанию.
// JWT секрет по умолчанию не задан.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:           ":8080",
			ReadTimeoutRaw:     "15s",
			WriteTimeoutRaw:    "15s",
			ShutdownTimeoutRaw: "10s",
			CORS: CORSConfig{
				AllowedOrigins: []string{"http://localhost:5173"},
			},
		},
		Database: DatabaseConfig{
			Path: "blog.db",
		},
		JWT: JWTConfig{
			AccessTokenExpirationRaw:  "24h",
			RefreshTokenExpirationRaw: "168h",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load читает конфигурацию. Порядок применения: значения по умолчанию,
// YAML файл (если path не пустой), переменные окружения.
// Переменные из .env в текущем каталоге подгружаются до разбора файла,
// уже заданные в окружении переменные не перезаписываются.
// Шаблоны ${VAR_NAME} в файле заменяются значениями переменных окружения.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Finalize разбирает производные поля (длительности, ключ) и проверяет конфигурацию.
// Нужно вызывать повторно после ручного изменения сырых полей, например флагами.
func (c *Config) Finalize() error {
	if err := parseDurations(c); err != nil {
		return fmt.Errorf("parsing durations: %w", err)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	return nil
}

// Validate проверяет обязательные поля и возвращает первую найденную ошибку.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	timeouts := []struct {
		name  string
		value time.Duration
	}{
		{"server.read_timeout", c.Server.ReadTimeout},
		{"server.write_timeout", c.Server.WriteTimeout},
		{"server.shutdown_timeout", c.Server.ShutdownTimeout},
	}
	for _, t := range timeouts {
		if t.value <= 0 {
			return fmt.Errorf("%s must be positive", t.name)
		}
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required (or set %s)", EnvJWTSecret)
	}
	key, err := jwt.DecodeSecret(c.JWT.Secret)
	if err != nil {
		return fmt.Errorf("jwt.secret: %w", err)
	}
	if len(key) < jwt.MinSecretLen {
		return fmt.Errorf("jwt.secret must decode to at least %d bytes, got %d", jwt.MinSecretLen, len(key))
	}
	c.JWT.SecretKey = key

	if c.JWT.AccessTokenTTL <= 0 {
		return fmt.Errorf("jwt.access_token_expiration must be positive")
	}
	if c.JWT.AccessTokenTTL < jwt.MinTTL {
		return fmt.Errorf("jwt.access_token_expiration must be at least %s", jwt.MinTTL)
	}
	if c.JWT.RefreshTokenTTL <= 0 {
		return fmt.Errorf("jwt.refresh_token_expiration must be positive")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars заменяет ${VAR_NAME} значением переменной окружения,
// незаданная переменная заменяется пустой строкой.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvHTTPAddr); v != "" {
		cfg.Server.HTTPAddr = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv(EnvAccessTTL); v != "" {
		cfg.JWT.AccessTokenExpirationRaw = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
}

// parseDurations переводит строковые длительности в time.Duration
func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"server.read_timeout", cfg.Server.ReadTimeoutRaw, &cfg.Server.ReadTimeout},
		{"server.write_timeout", cfg.Server.WriteTimeoutRaw, &cfg.Server.WriteTimeout},
		{"server.shutdown_timeout", cfg.Server.ShutdownTimeoutRaw, &cfg.Server.ShutdownTimeout},
		{"jwt.access_token_expiration", cfg.JWT.AccessTokenExpirationRaw, &cfg.JWT.AccessTokenTTL},
		{"jwt.refresh_token_expiration", cfg.JWT.RefreshTokenExpirationRaw, &cfg.JWT.RefreshTokenTTL},
	}

	for _, f := range fields {
		if f.raw == "" {
			*f.dst = 0
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}

	return nil
}
