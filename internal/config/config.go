// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBURL       string
	RabbitMQURL string
	ListenAddr  string
	BaseURL     string
	CompanyName string

	R2AccountID string
	R2Bucket    string
	R2AccessKey string
	R2SecretKey string
	R2BaseURL   string

	GoogleAPIKey string
	GeminiModel  string
	UseGemini    bool

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFromName string
	SMTPFromAddr string

	Workers int
	Debug   bool
	LogJSON bool
}

// Load reads .env if present and validates the required variables,
// failing fast on anything missing.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBURL:        os.Getenv("DB_URL"),
		RabbitMQURL:  os.Getenv("RABBITMQ_URL"),
		ListenAddr:   getDefault("LISTEN_ADDR", ":8080"),
		BaseURL:      getDefault("BASE_URL", "http://localhost:8080"),
		CompanyName:  getDefault("COMPANY_NAME", "TalentHireAI"),
		R2AccountID:  os.Getenv("R2_ACCOUNT_ID"),
		R2Bucket:     os.Getenv("R2_BUCKET"),
		R2AccessKey:  os.Getenv("R2_ACCESS_KEY"),
		R2SecretKey:  os.Getenv("R2_SECRET_KEY"),
		R2BaseURL:    os.Getenv("R2_BASE_URL"),
		GoogleAPIKey: os.Getenv("GOOGLE_API_KEY"),
		GeminiModel:  getDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		UseGemini:    os.Getenv("USE_GEMINI_SCORER") == "true",
		SMTPHost:     getDefault("SMTP_HOST", "smtp.gmail.com"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASS"),
		SMTPFromName: getDefault("SMTP_FROM_NAME", "TalentHireAI"),
		SMTPFromAddr: os.Getenv("SMTP_FROM_EMAIL"),
		Debug:        os.Getenv("DEBUG") == "true",
		LogJSON:      os.Getenv("LOG_JSON") == "true",
	}

	var err error
	if cfg.SMTPPort, err = intDefault("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	if cfg.Workers, err = intDefault("WORKERS", 3); err != nil {
		return nil, err
	}

	required := map[string]string{
		"DB_URL":        cfg.DBURL,
		"RABBITMQ_URL":  cfg.RabbitMQURL,
		"R2_ACCOUNT_ID": cfg.R2AccountID,
		"R2_BUCKET":     cfg.R2Bucket,
		"R2_ACCESS_KEY": cfg.R2AccessKey,
		"R2_SECRET_KEY": cfg.R2SecretKey,
	}
	for name, value := range required {
		if value == "" {
			return nil, fmt.Errorf("empty %s in environment", name)
		}
	}

	if cfg.UseGemini && cfg.GoogleAPIKey == "" {
		return nil, fmt.Errorf("USE_GEMINI_SCORER is set but GOOGLE_API_KEY is empty")
	}

	return cfg, nil
}

func getDefault(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func intDefault(name string, fallback int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return n, nil
}
