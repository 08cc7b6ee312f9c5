package config

import (
	"os"
	"strings"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string

	// Volkern CRM upstream (credential is held by the proxy only)
	VolkernBaseURL string
	VolkernAPIKey  string

	// IANA timezone the tenant's calendar is anchored to. Availability
	// slots from the CRM are floating timestamps in this zone.
	TenantTimezone string

	CORSAllowedOrigins []string

	// SendGrid email configuration
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	ConsultantEmail   string

	// Public CRM URL used in consultant notification emails
	PublicCRMURL string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		VolkernBaseURL: getEnv("VOLKERN_BASE_URL", "https://volkern.app/api"),
		VolkernAPIKey:  os.Getenv("VOLKERN_API_KEY"),

		TenantTimezone: getEnv("TENANT_TIMEZONE", "Europe/Madrid"),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", "appointments@dimensionexpert.com"),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Volkern"),
		ConsultantEmail:   getEnv("CONSULTANT_EMAIL", "noreply@dimensionexpert.com"),

		PublicCRMURL: getEnv("PUBLIC_CRM_URL", "https://volkern.app"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated environment variable into a slice,
// dropping empty entries.
func getEnvAsList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
