package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	Port             string
	DatabaseURL      string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPassword     string
	SMTPFromEmail    string
	OpenAIAPIKey     string
	PlacesAPIKey     string
	GoogleCredsFile  string
	LocalTimezone    *time.Location
}

// Load reads configuration values and prepares defaults where applicable.
func Load() *Config {
	_ = godotenv.Load()

	smtpFrom := os.Getenv("SMTP_FROM_EMAIL")
	if smtpFrom == "" {
		smtpFrom = os.Getenv("SMTP_USER")
	}

	timezoneName := getenvDefault("LOCAL_TIMEZONE", "Local")
	location, err := time.LoadLocation(timezoneName)
	if err != nil {
		log.Printf("config: invalid LOCAL_TIMEZONE %q, defaulting to system local: %v", timezoneName, err)
		location = time.Local
	}

	return &Config{
		Port:             getenvDefault("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_FROM_NUMBER"),
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         ParseIntEnv("SMTP_PORT", 587),
		SMTPUser:         os.Getenv("SMTP_USER"),
		SMTPPassword:     os.Getenv("SMTP_PASSWORD"),
		SMTPFromEmail:    smtpFrom,
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		PlacesAPIKey:     os.Getenv("GOOGLE_PLACES_API_KEY"),
		GoogleCredsFile:  os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		LocalTimezone:    location,
	}
}

// SMSConfigured reports whether every Twilio setting needed for SMS is present.
func (c *Config) SMSConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFromNumber != ""
}

// EmailConfigured reports whether every SMTP setting needed for email is present.
func (c *Config) EmailConfigured() bool {
	return c.SMTPHost != "" && c.SMTPPort != 0 && c.SMTPUser != "" && c.SMTPPassword != "" && c.SMTPFromEmail != ""
}

func getenvDefault(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	return value
}

// ParseIntEnv returns the integer value for an environment variable or the provided default.
func ParseIntEnv(key string, def int) int {
	value := os.Getenv(key)
	if value == "" {
		return def
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("config: unable to parse %s=%q as int: %v", key, value, err)
		return def
	}
	return parsed
}
