package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	Razorpay RazorpayConfig
	Cashfree CashfreeConfig
	Pixel    PixelConfig
	Invoice  InvoiceConfig
	Checkout CheckoutConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

type RazorpayConfig struct {
	BaseURL   string
	KeyID     string
	KeySecret string
}

type CashfreeConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	APIVersion   string
}

type PixelConfig struct {
	Endpoint    string
	AccessToken string
}

type InvoiceConfig struct {
	OutputDir string
}

type CheckoutConfig struct {
	// FrontendBaseURL is the site the set-password link points at.
	FrontendBaseURL string
	ResetTokenTTL   time.Duration
	GatewayRetries  uint
	GatewayTimeout  time.Duration
}

func Load() *Config {
	_ = godotenv.Load()
	return &Config{
		Server: ServerConfig{
			Port:         getenv("PORT", "8080"),
			Env:          getenv("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             getenv("DB_DSN", "coursio:coursio@tcp(localhost:3306)/coursio?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret: getenv("JWT_ACCESS_SECRET", "change-me-in-production"),
			AccessExpiry: 24 * time.Hour,
			Issuer:       "coursio",
		},
		SMTP: SMTPConfig{
			Host: getenv("SMTP_HOST", "localhost"),
			Port: getenv("SMTP_PORT", "587"),
			User: os.Getenv("SMTP_USER"),
			Pass: os.Getenv("SMTP_PASS"),
			From: getenv("SMTP_FROM", "Coursio <no-reply@coursio.in>"),
		},
		Razorpay: RazorpayConfig{
			BaseURL:   getenv("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"),
			KeyID:     os.Getenv("RAZORPAY_KEY_ID"),
			KeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		},
		Cashfree: CashfreeConfig{
			BaseURL:      getenv("CASHFREE_BASE_URL", "https://api.cashfree.com/pg"),
			ClientID:     os.Getenv("CASHFREE_CLIENT_ID"),
			ClientSecret: os.Getenv("CASHFREE_CLIENT_SECRET"),
			APIVersion:   getenv("CASHFREE_API_VERSION", "2023-08-01"),
		},
		Pixel: PixelConfig{
			Endpoint:    os.Getenv("PIXEL_ENDPOINT"),
			AccessToken: os.Getenv("PIXEL_ACCESS_TOKEN"),
		},
		Invoice: InvoiceConfig{
			OutputDir: getenv("INVOICE_DIR", "invoices"),
		},
		Checkout: CheckoutConfig{
			FrontendBaseURL: getenv("FRONTEND_BASE_URL", "https://coursio.in"),
			ResetTokenTTL:   15 * time.Minute,
			GatewayRetries:  3,
			GatewayTimeout:  20 * time.Second,
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
