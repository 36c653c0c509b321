package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the runtime configuration of the API.
type Config struct {
	AppEnv          string        `mapstructure:"app_env"`
	AppPort         string        `mapstructure:"app_port"`
	AppURL          string        `mapstructure:"app_url"`
	DatabaseURL     string        `mapstructure:"database_url"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	JWTSecret string `mapstructure:"jwt_secret"`
	JWTIssuer string `mapstructure:"jwt_issuer"`
	// AdminEmails is the comma separated allowlist promoted to ADMIN.
	AdminEmails string `mapstructure:"admin_emails"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`

	StripeSecretKey       string `mapstructure:"stripe_secret_key"`
	IdentityWebhookSecret string `mapstructure:"identity_webhook_secret"`

	CloudinaryCloudName    string `mapstructure:"cloudinary_cloud_name"`
	CloudinaryAPIKey       string `mapstructure:"cloudinary_api_key"`
	CloudinaryAPISecret    string `mapstructure:"cloudinary_api_secret"`
	CloudinaryUploadFolder string `mapstructure:"cloudinary_upload_folder"`
}

var defaults = map[string]any{
	"app_env":                  "development",
	"app_port":                 "8080",
	"app_url":                  "http://localhost:3000",
	"database_url":             "",
	"auto_migrate":             false,
	"shutdown_timeout":         "15s",
	"jwt_secret":               "",
	"jwt_issuer":               "",
	"admin_emails":             "",
	"redis_addr":               "",
	"redis_password":           "",
	"stripe_secret_key":        "",
	"identity_webhook_secret":  "",
	"cloudinary_cloud_name":    "",
	"cloudinary_api_key":       "",
	"cloudinary_api_secret":    "",
	"cloudinary_upload_folder": "my-print-shop/user_uploads",
}

// Load reads .env (when present), an optional config file named by
// PRINTA_CONFIG, and the environment, in increasing precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if path := os.Getenv("PRINTA_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// AdminAllowlist returns the normalised admin emails.
func (c *Config) AdminAllowlist() []string {
	var out []string
	for _, e := range strings.Split(c.AdminEmails, ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.AppEnv != "development" && c.IdentityWebhookSecret == "" {
		return errors.New("IDENTITY_WEBHOOK_SECRET is required outside development")
	}
	return nil
}
