package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPath     string

	RedisHost     string
	RedisPort     string
	SessionStore  string
	SessionSecret string
	JWTSecret     string
	SessionTTL    time.Duration

	GinMode   string
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	AvatarDir       string
	AvatarURLPrefix string

	OpenAIAPIKey string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// DefaultSessionSecret is the development-only signing secret.
const DefaultSessionSecret = "default-secret-key-change-me"

// ErrInsecureSecret is returned in release mode when a signing secret is
// unset or left at its development default.
var ErrInsecureSecret = errors.New("SESSION_SECRET and JWT_SECRET must be set to non-default values in release mode")

var defaults = map[string]any{
	"DB_DRIVER":           "mysql",
	"DB_HOST":             "localhost",
	"DB_PORT":             "3306",
	"DB_USER":             "todouser",
	"DB_PASSWORD":         "todopassword",
	"DB_NAME":             "todo_app",
	"DB_PATH":             "todo.db",
	"REDIS_HOST":          "localhost",
	"REDIS_PORT":          "6379",
	"SESSION_STORE":       "redis",
	"SESSION_SECRET":      DefaultSessionSecret,
	"JWT_SECRET":          "",
	"SESSION_TTL":         "168h",
	"GIN_MODE":            "debug",
	"HTTP_ADDR":           ":8080",
	"LOG_LEVEL":           "info",
	"LOG_FORMAT":          "json",
	"AVATAR_DIR":          "public/avatars",
	"AVATAR_URL_PREFIX":   "/avatars/",
	"OPENAI_API_KEY":      "",
	"SMTP_HOST":           "",
	"SMTP_PORT":           587,
	"SMTP_USER":           "",
	"SMTP_PASS":           "",
	"SMTP_FROM":           "",
	"RATE_LIMIT_REQUESTS": 10,
	"RATE_LIMIT_WINDOW":   "1m",
}

// Load reads configuration from defaults, an optional file named by
// CONFIG_FILE, and environment variables (highest priority).
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		DBDriver:          v.GetString("DB_DRIVER"),
		DBHost:            v.GetString("DB_HOST"),
		DBPort:            v.GetString("DB_PORT"),
		DBUser:            v.GetString("DB_USER"),
		DBPassword:        v.GetString("DB_PASSWORD"),
		DBName:            v.GetString("DB_NAME"),
		DBPath:            v.GetString("DB_PATH"),
		RedisHost:         v.GetString("REDIS_HOST"),
		RedisPort:         v.GetString("REDIS_PORT"),
		SessionStore:      v.GetString("SESSION_STORE"),
		SessionSecret:     v.GetString("SESSION_SECRET"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		SessionTTL:        v.GetDuration("SESSION_TTL"),
		GinMode:           v.GetString("GIN_MODE"),
		HTTPAddr:          v.GetString("HTTP_ADDR"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
		AvatarDir:         v.GetString("AVATAR_DIR"),
		AvatarURLPrefix:   v.GetString("AVATAR_URL_PREFIX"),
		OpenAIAPIKey:      v.GetString("OPENAI_API_KEY"),
		SMTPHost:          v.GetString("SMTP_HOST"),
		SMTPPort:          v.GetInt("SMTP_PORT"),
		SMTPUser:          v.GetString("SMTP_USER"),
		SMTPPass:          v.GetString("SMTP_PASS"),
		SMTPFrom:          v.GetString("SMTP_FROM"),
		RateLimitRequests: v.GetInt("RATE_LIMIT_REQUESTS"),
		RateLimitWindow:   v.GetDuration("RATE_LIMIT_WINDOW"),
	}

	// The session cookie secret doubles as the token signing key unless a
	// dedicated one is configured.
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = cfg.SessionSecret
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}

	// Tokens signed with a public secret can be minted by anyone.
	if cfg.IsProduction() && (insecureSecret(cfg.SessionSecret) || insecureSecret(cfg.JWTSecret)) {
		return nil, ErrInsecureSecret
	}

	return cfg, nil
}

func insecureSecret(secret string) bool {
	return secret == "" || secret == DefaultSessionSecret
}

// IsProduction reports whether the server runs in gin release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// MailEnabled reports whether SMTP settings are complete enough to send mail.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPFrom != ""
}
