package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"clinic-automation/pkg/logger"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// SMS providers
const (
	ProviderTwilio  = "twilio"
	ProviderGateway = "gateway"
)

// Config holds all configuration settings
type Config struct {
	Server struct {
		Port       int    `json:"port" env:"PORT"`
		Host       string `json:"host" env:"HOST"`
		ForceHTTPS bool   `json:"force_https" env:"FORCE_HTTPS"`
	} `json:"server"`
	Database struct {
		DSN string `json:"dsn" env:"DATABASE_URL"`
	} `json:"database"`
	JWT struct {
		Secret      string        `json:"secret" env:"JWT_SECRET"`
		TokenExpiry time.Duration `json:"token_expiry" env:"JWT_TOKEN_EXPIRY"`
		OperatorKey string        `json:"operator_key" env:"OPERATOR_API_KEY"`
	} `json:"jwt"`
	Logging struct {
		Level string `json:"level" env:"LOG_LEVEL"`
		Path  string `json:"path" env:"LOG_PATH"`
	} `json:"logging"`
	Clinic struct {
		Name           string `json:"name" env:"CLINIC_NAME"`
		DoctorName     string `json:"doctor_name" env:"CLINIC_DOCTOR_NAME"`
		ContactPhone   string `json:"contact_phone" env:"CLINIC_CONTACT_PHONE"`
		Timezone       string `json:"timezone" env:"CLINIC_TIMEZONE"`
		DefaultChatID  string `json:"default_chat_id" env:"TELEGRAM_CHAT_ID"`
		DefaultGroupID string `json:"default_group_id" env:"TELEGRAM_GROUP_ID"`
	} `json:"clinic"`
	SMS struct {
		Provider            string `json:"provider" env:"SMS_PROVIDER"`
		BaseURL             string `json:"base_url" env:"TWILIO_BASE_URL"`
		AccountSID          string `json:"account_sid" env:"TWILIO_ACCOUNT_SID"`
		APIKey              string `json:"api_key" env:"TWILIO_API_KEY"`
		APISecret           string `json:"api_secret" env:"TWILIO_API_SECRET"`
		AuthToken           string `json:"auth_token" env:"TWILIO_AUTH_TOKEN"`
		MessagingServiceSID string `json:"messaging_service_sid" env:"TWILIO_MESSAGING_SERVICE_SID"`
		FromNumber          string `json:"from_number" env:"TWILIO_PHONE_NUMBER"`
		GatewayURL          string `json:"gateway_url" env:"SMS_GATEWAY_URL"`
		GatewayAPIKey       string `json:"gateway_api_key" env:"SMS_GATEWAY_API_KEY"`
		GatewaySenderID     string `json:"gateway_sender_id" env:"SMS_GATEWAY_SENDER_ID"`
	} `json:"sms"`
	Chat struct {
		Token  string `json:"token" env:"TELEGRAM_BOT_TOKEN"`
		APIURL string `json:"api_url" env:"TELEGRAM_API_URL"`
	} `json:"chat"`
	Content struct {
		APIKey  string `json:"api_key" env:"OPENAI_API_KEY"`
		Model   string `json:"model" env:"OPENAI_MODEL"`
		BaseURL string `json:"base_url" env:"OPENAI_BASE_URL"`
	} `json:"content"`
}

// LoadConfig loads configuration from a JSON file
func LoadConfig(path string) (*Config, error) {
	// Validate path to prevent directory traversal
	cleanPath := filepath.Clean(path)
	if !filepath.IsAbs(cleanPath) {
		return nil, fmt.Errorf("config path must be absolute")
	}

	// Check if file exists and is a regular file
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("config file error: %w", err)
	}
	if !fileInfo.Mode().IsRegular() {
		return nil, fmt.Errorf("config path is not a regular file")
	}

	file, err := os.Open(cleanPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			logger.Warn("Failed to close config file", zap.Error(closeErr))
		}
	}()

	config := DefaultConfig()
	if err := json.NewDecoder(file).Decode(config); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	config := &Config{}
	config.Server.Port = 8080
	config.Server.Host = "localhost"
	config.Database.DSN = "file:clinic.db?cache=shared&mode=rwc"
	config.JWT.TokenExpiry = 24 * time.Hour
	config.Logging.Level = "info"
	config.Logging.Path = "server.log"
	config.Clinic.Name = "HOMA Healthcare Center"
	config.Clinic.DoctorName = "Dr. Sharma"
	config.Clinic.Timezone = "Asia/Kolkata"
	config.SMS.Provider = ProviderTwilio
	config.Content.Model = "gpt-4o-mini"
	return config
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; existing variables win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides config values with any environment variables that are set
func ApplyEnv(config *Config) error {
	if err := env.Parse(config); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Location returns the clinic time zone
func (c *Config) Location() (*time.Location, error) {
	if c.Clinic.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Clinic.Timezone)
}

// SMSEnabled reports whether any SMS credential is configured
func (c *Config) SMSEnabled() bool {
	switch c.SMS.Provider {
	case ProviderGateway:
		return c.SMS.GatewayURL != "" || c.SMS.GatewayAPIKey != ""
	default:
		return c.SMS.AccountSID != "" || c.SMS.APIKey != "" || c.SMS.AuthToken != ""
	}
}

// ChatEnabled reports whether a bot token is configured
func (c *Config) ChatEnabled() bool {
	return c.Chat.Token != ""
}

// ContentEnabled reports whether a language model API key is configured
func (c *Config) ContentEnabled() bool {
	return c.Content.APIKey != ""
}

// Validate checks the configuration before the server starts. A channel
// that is partly configured is an error, as is having no channel at all.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}
	if strings.TrimSpace(c.Logging.Path) == "" {
		errs = append(errs, errors.New("logging path is required"))
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		errs = append(errs, errors.New("database dsn is required"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("clinic timezone: %w", err))
	}

	if c.JWT.OperatorKey != "" && c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required when OPERATOR_API_KEY is set"))
	}
	if c.JWT.Secret != "" && c.JWT.TokenExpiry <= 0 {
		errs = append(errs, errors.New("JWT token expiry must be positive"))
	}

	switch c.SMS.Provider {
	case ProviderTwilio, "":
		if c.SMSEnabled() {
			if c.SMS.AccountSID == "" {
				errs = append(errs, errors.New("TWILIO_ACCOUNT_SID is required"))
			}
			hasKey := c.SMS.APIKey != "" && c.SMS.APISecret != ""
			if !hasKey && c.SMS.AuthToken == "" {
				errs = append(errs, errors.New("TWILIO_API_KEY and TWILIO_API_SECRET, or TWILIO_AUTH_TOKEN, are required"))
			}
			if c.SMS.MessagingServiceSID == "" && c.SMS.FromNumber == "" {
				errs = append(errs, errors.New("TWILIO_MESSAGING_SERVICE_SID or TWILIO_PHONE_NUMBER is required"))
			}
		}
	case ProviderGateway:
		if c.SMSEnabled() && (c.SMS.GatewayURL == "" || c.SMS.GatewayAPIKey == "") {
			errs = append(errs, errors.New("SMS_GATEWAY_URL and SMS_GATEWAY_API_KEY are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown sms provider %q", c.SMS.Provider))
	}

	if !c.SMSEnabled() && !c.ChatEnabled() {
		errs = append(errs, errors.New("no delivery channel configured: set SMS credentials or TELEGRAM_BOT_TOKEN"))
	}

	return errors.Join(errs...)
}
