package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App      *AppConfig      `json:"app"`
	API      *APIConfig      `json:"api"`
	Realtime *RealtimeConfig `json:"realtime"`
	Payment  *PaymentConfig  `json:"payment"`
	Session  *SessionConfig  `json:"session"`
}

type AppConfig struct {
	Name           string `json:"name"`
	Version        string `json:"version"`
	Environment    string `json:"environment"`
	LogLevel       string `json:"log_level"`
	LogFormat      string `json:"log_format"`
	CurrencySymbol string `json:"currency_symbol"`
}

type APIConfig struct {
	BaseURL string        `json:"base_url"`
	Timeout time.Duration `json:"timeout"`
}

type RealtimeConfig struct {
	URL               string        `json:"url"`
	HandshakeTimeout  time.Duration `json:"handshake_timeout"`
	MaxBackoff        time.Duration `json:"max_backoff"`
	ReconnectAttempts int           `json:"reconnect_attempts"`
}

type PaymentConfig struct {
	CommissionRate   float64       `json:"commission_rate"`
	SimulatorEnabled bool          `json:"simulator_enabled"`
	ProcessingDelay  time.Duration `json:"processing_delay"`
	SettlementDelay  time.Duration `json:"settlement_delay"`
}

type SessionConfig struct {
	TokenFile string `json:"token_file"`
}

func Load() (*Config, error) {
	config := &Config{
		App:      loadAppConfig(),
		API:      loadAPIConfig(),
		Realtime: loadRealtimeConfig(),
		Payment:  loadPaymentConfig(),
		Session:  loadSessionConfig(),
	}

	return config, nil
}

func loadAppConfig() *AppConfig {
	return &AppConfig{
		Name:           getEnv("APP_NAME", "roadside"),
		Version:        getEnv("APP_VERSION", "1.0.0"),
		Environment:    getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "৳"),
	}
}

func loadAPIConfig() *APIConfig {
	return &APIConfig{
		BaseURL: getEnv("API_BASE_URL", "http://localhost:5002/api"),
		Timeout: getEnvAsDuration("API_TIMEOUT", 30*time.Second),
	}
}

func loadRealtimeConfig() *RealtimeConfig {
	return &RealtimeConfig{
		URL:               getEnv("REALTIME_URL", deriveRealtimeURL(getEnv("API_BASE_URL", "http://localhost:5002/api"))),
		HandshakeTimeout:  getEnvAsDuration("REALTIME_HANDSHAKE_TIMEOUT", 10*time.Second),
		MaxBackoff:        getEnvAsDuration("REALTIME_MAX_BACKOFF", 30*time.Second),
		ReconnectAttempts: getEnvAsInt("REALTIME_RECONNECT_ATTEMPTS", 10),
	}
}

func loadPaymentConfig() *PaymentConfig {
	return &PaymentConfig{
		CommissionRate:   getEnvAsFloat64("COMMISSION_RATE", 0.10),
		SimulatorEnabled: getEnvAsBool("PAYMENT_SIMULATOR", true),
		ProcessingDelay:  getEnvAsDuration("PAYMENT_PROCESSING_DELAY", 2*time.Second),
		SettlementDelay:  getEnvAsDuration("PAYMENT_SETTLEMENT_DELAY", 1500*time.Millisecond),
	}
}

func loadSessionConfig() *SessionConfig {
	return &SessionConfig{
		TokenFile: getEnv("TOKEN_FILE", defaultTokenFile()),
	}
}

// deriveRealtimeURL turns the HTTP API base into the websocket endpoint
// served by the same host.
func deriveRealtimeURL(base string) string {
	ws := base
	if strings.HasPrefix(ws, "https://") {
		ws = "wss://" + strings.TrimPrefix(ws, "https://")
	} else if strings.HasPrefix(ws, "http://") {
		ws = "ws://" + strings.TrimPrefix(ws, "http://")
	}
	ws = strings.TrimSuffix(ws, "/api")
	return ws + "/ws"
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "roadside", "token")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func IsProduction() bool {
	return getEnv("APP_ENV", "development") == "production"
}

func IsDevelopment() bool {
	return getEnv("APP_ENV", "development") == "development"
}
