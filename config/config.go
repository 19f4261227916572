package config

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Host is fixed: the service always listens on every interface.
const Host = "0.0.0.0"

const (
	DefaultMessagePrefix = "🚨 TradingView Alert:\n"
	DefaultMessage       = "📈 تنبيه جديد من TradingView 🚨"
)

// Config holds every setting of the process. Load builds it once at startup and
// it is passed by value from there on.
type Config struct {
	TelegramBotToken string
	TelegramUserID   string
	TelegramEndpoint string
	TelegramTimeout  time.Duration
	TelegramVerify   bool

	SessionSecret string
	Debug         bool
	Port          int
	MetricsPort   int
	MetricsDBPath string
	MaxBodyBytes  int64

	Lang           string
	LocalesDir     string
	MessagePrefix  string
	DefaultMessage string
	LogFormat      string
}

// Addr is the listen address of the webhook server.
func (c Config) Addr() string {
	return net.JoinHostPort(Host, strconv.Itoa(c.Port))
}

// MetricsAddr is the listen address of the metrics server, empty when disabled.
func (c Config) MetricsAddr() string {
	if c.MetricsPort == 0 {
		return ""
	}
	return net.JoinHostPort(Host, strconv.Itoa(c.MetricsPort))
}

// Load reads the optional env file and the environment into a Config.
func Load() (Config, error) {
	if err := loadEnvFile(envFilePath()); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.AutomaticEnv()

	v.BindEnv("telegram_bot_token", "TELEGRAM_BOT_TOKEN")
	v.BindEnv("telegram_user_id", "TELEGRAM_USER_ID", "TELEGRAM_CHAT_ID")
	v.BindEnv("telegram_api_endpoint", "TELEGRAM_API_ENDPOINT")
	v.BindEnv("telegram_timeout", "TELEGRAM_TIMEOUT")
	v.BindEnv("telegram_verify", "TELEGRAM_VERIFY")
	v.BindEnv("session_secret", "SESSION_SECRET")
	v.BindEnv("debug", "DEBUG", "FLASK_DEBUG")
	v.BindEnv("port", "PORT")
	v.BindEnv("metrics_port", "METRICS_PORT")
	v.BindEnv("metrics_db_path", "METRICS_DB_PATH")
	v.BindEnv("max_body_bytes", "MAX_BODY_BYTES")
	v.BindEnv("lang", "LANG")
	v.BindEnv("locales_dir", "LOCALES_DIR")
	v.BindEnv("message_prefix", "MESSAGE_PREFIX")
	v.BindEnv("default_message", "DEFAULT_MESSAGE")
	v.BindEnv("log_format", "LOG_FORMAT")

	v.SetDefault("telegram_api_endpoint", tgbotapi.APIEndpoint)
	v.SetDefault("telegram_timeout", "10s")
	v.SetDefault("telegram_verify", false)
	v.SetDefault("debug", false)
	v.SetDefault("port", 8000)
	v.SetDefault("metrics_port", 9090)
	v.SetDefault("max_body_bytes", 1<<20)
	v.SetDefault("lang", "en")
	v.SetDefault("locales_dir", "locales")
	v.SetDefault("message_prefix", DefaultMessagePrefix)
	v.SetDefault("default_message", DefaultMessage)
	v.SetDefault("log_format", "text")

	timeout, err := parseTimeout(v.GetString("telegram_timeout"))
	if err != nil {
		return Config{}, err
	}

	c := Config{
		TelegramBotToken: strings.TrimSpace(v.GetString("telegram_bot_token")),
		TelegramUserID:   strings.TrimSpace(v.GetString("telegram_user_id")),
		TelegramEndpoint: v.GetString("telegram_api_endpoint"),
		TelegramTimeout:  timeout,
		TelegramVerify:   v.GetBool("telegram_verify"),
		SessionSecret:    v.GetString("session_secret"),
		Debug:            v.GetBool("debug"),
		Port:             v.GetInt("port"),
		MetricsPort:      v.GetInt("metrics_port"),
		MetricsDBPath:    v.GetString("metrics_db_path"),
		MaxBodyBytes:     v.GetInt64("max_body_bytes"),
		Lang:             v.GetString("lang"),
		LocalesDir:       v.GetString("locales_dir"),
		MessagePrefix:    unescapeNewlines(v.GetString("message_prefix")),
		DefaultMessage:   unescapeNewlines(v.GetString("default_message")),
		LogFormat:        strings.ToLower(v.GetString("log_format")),
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.TelegramBotToken == "":
		return errors.New("TELEGRAM_BOT_TOKEN is not set")
	case c.TelegramUserID == "":
		return errors.New("TELEGRAM_USER_ID is not set")
	case !strings.Contains(c.TelegramEndpoint, "%s"):
		return errors.Errorf("TELEGRAM_API_ENDPOINT must contain token and method placeholders: %q", c.TelegramEndpoint)
	case c.TelegramTimeout <= 0:
		return errors.Errorf("TELEGRAM_TIMEOUT must be positive, got %s", c.TelegramTimeout)
	case c.Port < 1 || c.Port > 65535:
		return errors.Errorf("PORT out of range: %d", c.Port)
	case c.MetricsPort < 0 || c.MetricsPort > 65535:
		return errors.Errorf("METRICS_PORT out of range: %d", c.MetricsPort)
	case c.MetricsPort == c.Port:
		return errors.Errorf("METRICS_PORT must differ from PORT (%d)", c.Port)
	case c.MaxBodyBytes <= 0:
		return errors.Errorf("MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return errors.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

func envFilePath() string {
	if p := os.Getenv("ENV_FILE"); p != "" {
		return p
	}
	return ".env"
}

// loadEnvFile loads the env file if it exists. Variables already present in the
// environment are not overridden.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return errors.Wrapf(godotenv.Load(path), "could not load env file %s", path)
}

// parseTimeout accepts a Go duration or a bare number of seconds.
func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(n * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid TELEGRAM_TIMEOUT %q", s)
	}
	return d, nil
}

func unescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
