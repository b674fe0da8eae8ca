package config

import (
	"os"
	"strings"
	"time"
)

// Config holds application configuration. Provider credentials are not part
// of it: they are looked up per request through a CredentialSource.
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	LogFormat          string
	CORSAllowedOrigins []string
	DefaultMessage     string
	CredentialsFile    string

	// Outbound provider endpoints
	ProviderHTTPTimeout time.Duration
	MetaGraphBaseURL    string
	MetaGraphAPIVersion string
	TwilioAPIBaseURL    string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:                getEnv("PORT", "8080"),
		Env:                 getEnv("ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "json"),
		CORSAllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		DefaultMessage:      getEnv("DEFAULT_MESSAGE", "AmbuTrack – mensaje"),
		CredentialsFile:     getEnv("CREDENTIALS_FILE", ""),
		ProviderHTTPTimeout: getEnvAsDuration("PROVIDER_HTTP_TIMEOUT", 10*time.Second),
		MetaGraphBaseURL:    strings.TrimRight(getEnv("META_GRAPH_BASE_URL", "https://graph.facebook.com"), "/"),
		MetaGraphAPIVersion: getEnv("META_GRAPH_API_VERSION", "v20.0"),
		TwilioAPIBaseURL:    strings.TrimRight(getEnv("TWILIO_API_BASE_URL", "https://api.twilio.com"), "/"),
	}
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
