package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPHost    string
	HTTPPort    string
	MySQLDSN    string
	FrontendURL string

	JWT     JWTConfig
	OTP     OTPConfig
	Mail    MailConfig
	Google  GoogleConfig
	Uploads UploadConfig

	LogLevel  string
	LogFormat string
}

// JWTConfig holds the four independent signing contexts. Each has its
// own secret: a leaked invite token must never be usable as a session
// credential.
type JWTConfig struct {
	AccessSecret    string
	RefreshSecret   string
	InviteSecret    string
	ResetSecret     string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	InviteTokenTTL  time.Duration
	ResetTokenTTL   time.Duration
}

type OTPConfig struct {
	Digits int
	TTL    time.Duration
	// PersistOnMailFailure keeps the generated OTP on the user record
	// even when delivery fails, allowing alternate delivery. Disable to
	// abort the operation instead.
	PersistOnMailFailure bool
}

// MailConfig lists delivery configurations tried in order per send.
type MailConfig struct {
	Senders []MailSender
	DevMode bool
}

type MailSender struct {
	APIKey string
	From   string
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type UploadConfig struct {
	Dir     string
	BaseURL string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignores error if not found)
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	jwt, err := loadJWTConfig()
	if err != nil {
		return nil, err
	}

	mail, err := loadMailConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		HTTPHost:    getEnv("HTTP_HOST", ""),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		MySQLDSN:    mysqlDSN,
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		JWT:         jwt,
		OTP: OTPConfig{
			Digits:               getIntEnv("OTP_DIGITS", 6),
			TTL:                  getDurationEnv("OTP_TTL", 10*time.Minute),
			PersistOnMailFailure: getBoolEnv("OTP_PERSIST_ON_MAIL_FAILURE", true),
		},
		Mail: mail,
		Google: GoogleConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		},
		Uploads: UploadConfig{
			Dir:     getEnv("UPLOAD_DIR", "uploads"),
			BaseURL: getEnv("UPLOAD_BASE_URL", "http://localhost:8080/uploads"),
		},
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}, nil
}

func (c *Config) DSN() string {
	return c.MySQLDSN
}

func loadJWTConfig() (JWTConfig, error) {
	cfg := JWTConfig{
		AccessSecret:    os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshSecret:   os.Getenv("REFRESH_TOKEN_SECRET"),
		InviteSecret:    os.Getenv("INVITE_TOKEN_SECRET"),
		ResetSecret:     os.Getenv("RESET_TOKEN_SECRET"),
		AccessTokenTTL:  getDurationEnv("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getDurationEnv("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		InviteTokenTTL:  getDurationEnv("INVITE_TOKEN_TTL", 7*24*time.Hour),
		ResetTokenTTL:   getDurationEnv("RESET_TOKEN_TTL", 15*time.Minute),
	}

	var missing []string
	if cfg.AccessSecret == "" {
		missing = append(missing, "ACCESS_TOKEN_SECRET")
	}
	if cfg.RefreshSecret == "" {
		missing = append(missing, "REFRESH_TOKEN_SECRET")
	}
	if cfg.InviteSecret == "" {
		missing = append(missing, "INVITE_TOKEN_SECRET")
	}
	if cfg.ResetSecret == "" {
		missing = append(missing, "RESET_TOKEN_SECRET")
	}
	if len(missing) > 0 {
		return JWTConfig{}, errors.New("missing required environment variables: " + strings.Join(missing, ", "))
	}

	return cfg, nil
}

func loadMailConfig() (MailConfig, error) {
	devMode := getBoolEnv("MAIL_DEV_MODE", false)

	var senders []MailSender
	if key := os.Getenv("RESEND_API_KEY"); key != "" {
		senders = append(senders, MailSender{
			APIKey: key,
			From:   getEnv("MAIL_FROM", "no-reply@localhost"),
		})
	}
	if key := os.Getenv("RESEND_FALLBACK_API_KEY"); key != "" {
		senders = append(senders, MailSender{
			APIKey: key,
			From:   getEnv("MAIL_FALLBACK_FROM", getEnv("MAIL_FROM", "no-reply@localhost")),
		})
	}

	if len(senders) == 0 && !devMode {
		return MailConfig{}, errors.New("RESEND_API_KEY environment variable is required unless MAIL_DEV_MODE is set")
	}

	return MailConfig{Senders: senders, DevMode: devMode}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
