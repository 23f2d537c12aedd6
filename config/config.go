// Package config loads server settings from .env, an optional YAML file and
// the process environment, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileEnv names the YAML file to read, if any.
const FileEnv = "STOREFRONT_CONFIG"

type Database struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// DSN returns URL when set, otherwise a postgres key/value DSN.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		d.Host, d.User, d.Password, d.Name, d.Port,
	)
}

type WhatsApp struct {
	APIURL        string `yaml:"api_url"`
	APIKey        string `yaml:"api_key"`
	PhoneNumberID string `yaml:"phone_number_id"`
}

type Config struct {
	Port           string        `yaml:"port"`
	Database       Database      `yaml:"database"`
	JWTSecret      string        `yaml:"jwt_secret"`
	AdminAPIKey    string        `yaml:"admin_api_key"`
	RedisURL       string        `yaml:"redis_url"`
	OTPTTL         time.Duration `yaml:"otp_ttl"`
	OTPCountryCode string        `yaml:"otp_country_code"`
	WhatsApp       WhatsApp      `yaml:"whatsapp"`
	CORSOrigins    []string      `yaml:"cors_origins"`
	LogLevel       string        `yaml:"log_level"`
	Development    bool          `yaml:"development"`
}

func defaults() *Config {
	return &Config{
		Port:           "8080",
		OTPTTL:         5 * time.Minute,
		OTPCountryCode: "91",
		CORSOrigins:    []string{"*"},
		LogLevel:       "info",
	}
}

// Load reads .env (if present), then the YAML file named by STOREFRONT_CONFIG
// (if set), then environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) LoadFile(path string) error {
	ext := filepath.Ext(path)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config file extension %q", ext)
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.Port, "DB_PORT")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Name, "DB_NAME")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.AdminAPIKey, "ADMIN_API_KEY")
	setString(&c.RedisURL, "REDIS_URL")
	setString(&c.OTPCountryCode, "OTP_COUNTRY_CODE")
	setString(&c.WhatsApp.APIURL, "WHATSAPP_API_URL")
	setString(&c.WhatsApp.APIKey, "WHATSAPP_API_KEY")
	setString(&c.WhatsApp.PhoneNumberID, "WHATSAPP_PHONE_NUMBER_ID")
	setString(&c.LogLevel, "LOG_LEVEL")

	if v := os.Getenv("OTP_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid OTP_TTL %q: %w", v, err)
		}
		c.OTPTTL = ttl
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.CORSOrigins = append(c.CORSOrigins, origin)
			}
		}
	}
	if v := os.Getenv("DEV_MODE"); v != "" {
		c.Development = v == "true" || v == "1"
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.OTPTTL <= 0 {
		return fmt.Errorf("invalid otp ttl: %s", c.OTPTTL)
	}
	if c.Database.URL == "" && c.Database.Host == "" {
		return fmt.Errorf("DATABASE_URL or DB_HOST is required")
	}
	return nil
}
