package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string

	DBUser string
	DBPass string
	DBHost string
	DBName string

	JWTSecret string

	FlutterwaveSecretKey string
	FlutterwaveBaseURL   string
	PaymentRedirectURL   string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	SMSAPIURL string
	SMSAPIKey string
	SMSSender string
}

// LoadEnv reads configuration from the environment. A .env file is honored
// when present but never required.
func LoadEnv() Env {
	_ = godotenv.Load()

	return Env{
		AppAddr: envOrDefault("APP_ADDR", ":8080"),
		GinMode: strings.TrimSpace(os.Getenv("GIN_MODE")),

		DBUser: envOrDefault("DB_USER", "root"),
		DBPass: strings.TrimSpace(os.Getenv("DB_PASS")),
		DBHost: envOrDefault("DB_HOST", "127.0.0.1:3306"),
		DBName: envOrDefault("DB_NAME", "rental_app"),

		JWTSecret: envOrDefault("JWT_SECRET", "super-secret-key-change-me"),

		FlutterwaveSecretKey: strings.TrimSpace(os.Getenv("FLW_SECRET_KEY")),
		FlutterwaveBaseURL:   envOrDefault("FLW_BASE_URL", "https://api.flutterwave.com/v3"),
		PaymentRedirectURL:   envOrDefault("PAYMENT_REDIRECT_URL", "http://localhost:3000/payments/callback"),

		SMTPHost: strings.TrimSpace(os.Getenv("SMTP_HOST")),
		SMTPPort: envOrDefault("SMTP_PORT", "587"),
		SMTPUser: strings.TrimSpace(os.Getenv("SMTP_USERNAME")),
		SMTPPass: strings.TrimSpace(os.Getenv("SMTP_PASSWORD")),
		SMTPFrom: envOrDefault("SMTP_FROM_NAME", "Rental App"),

		SMSAPIURL: strings.TrimSpace(os.Getenv("SMS_API_URL")),
		SMSAPIKey: strings.TrimSpace(os.Getenv("SMS_API_KEY")),
		SMSSender: envOrDefault("SMS_SENDER_ID", "RENTAL"),
	}
}

func envOrDefault(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}
