package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port    string
	LogMode string

	DBDriver   string
	DBDSN      string
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	JWTKey            string
	SessionCookieName string
	SessionTTL        time.Duration
	SaltRound         int

	CorsOrigins string

	SendgridAPIKey  string
	EmailSender     string
	EmailSenderName string

	PaymentGatewayURL string
	PaymentGatewayKey string

	CertificatePrefix     string
	CertificateDelay      time.Duration
	CertificateNotifyCron string

	AdminEmail    string
	AdminPassword string

	// Warnings collects insecure-default notices; they are logged once the
	// logger exists.
	Warnings []string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from .env and the environment.
func LoadConfig() {
	var warnings []string
	if err := godotenv.Load(); err != nil {
		warnings = append(warnings, ".env file not found, using system environment variables")
	}

	AppConfig = &Config{
		Port:    getEnv("PORT", "3000"),
		LogMode: getEnv("LOG_MODE", "development"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBDSN:      getEnv("DB_DSN", ""),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "academy"),
		DBPort:     getEnv("DB_PORT", "5432"),

		JWTKey:            getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "academy_session"),
		SessionTTL:        time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		SaltRound:         getEnvInt("SALT_ROUND", 10),

		CorsOrigins: getEnv("CORS_ORIGINS", "*"),

		SendgridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailSender:     getEnv("EMAIL_SENDER", "no-reply@academy.local"),
		EmailSenderName: getEnv("EMAIL_SENDER_NAME", "Practitioner Academy"),

		PaymentGatewayURL: getEnv("PAYMENT_GATEWAY_URL", ""),
		PaymentGatewayKey: getEnv("PAYMENT_GATEWAY_KEY", ""),

		CertificatePrefix:     getEnv("CERTIFICATE_PREFIX", "CERT"),
		CertificateDelay:      time.Duration(getEnvInt("CERTIFICATE_DELAY_HOURS", 48)) * time.Hour,
		CertificateNotifyCron: getEnv("CERTIFICATE_NOTIFY_CRON", "*/15 * * * *"),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}

	if AppConfig.JWTKey == "defaultSecret" {
		warnings = append(warnings, "using default JWT_SECRET_KEY, update it in your environment")
	}
	if AppConfig.CorsOrigins == "*" {
		warnings = append(warnings, "CORS allows every origin")
	}
	if AppConfig.PaymentGatewayURL == "" {
		warnings = append(warnings, "PAYMENT_GATEWAY_URL not set, enrollments stay pending until an administrator confirms payment")
	}
	if AppConfig.SendgridAPIKey == "" {
		warnings = append(warnings, "SENDGRID_API_KEY not set, emails are written to the log")
	}
	AppConfig.Warnings = warnings
}

// DSN returns DB_DSN when set, otherwise builds one for the configured driver.
func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	switch c.DBDriver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	case "sqlite":
		return c.DBName + ".db"
	default:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}
