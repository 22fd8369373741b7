package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment    string
	HTTPAddr       string
	DBDSN          string
	MigrationsPath string

	// ConfirmBaseURL is the front-end base the emailed confirmation link points at.
	ConfirmBaseURL string
	TokenTTL       time.Duration

	// ParserBackend selects the slot parser: rules, llm or remote.
	ParserBackend string
	ParserURL     string
	GeminiAPIKey  string
	GeminiModel   string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	CORSAllowedOrigins []string
}

func Load() (*Config, error) {
	// .env is optional; real deployments set plain environment variables.
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Environment:    getEnv("ENV", "development"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		DBDSN:          os.Getenv("DB_DSN"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		ConfirmBaseURL: getEnv("CONFIRM_BASE_URL", "http://localhost:3000"),
		ParserBackend:  getEnv("PARSER_BACKEND", "rules"),
		ParserURL:      os.Getenv("PARSER_URL"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPUsername:   os.Getenv("SMTP_USERNAME"),
		SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:       getEnv("SMTP_FROM", "no-reply@hireai.app"),
	}

	cfg.TokenTTL = 7 * 24 * time.Hour
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL %q: %w", raw, err)
		}
		cfg.TokenTTL = ttl
	}

	cfg.SMTPPort = 587
	if raw := os.Getenv("SMTP_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", raw, err)
		}
		cfg.SMTPPort = port
	}

	if raw := os.Getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
			}
		}
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	switch cfg.ParserBackend {
	case "rules":
	case "llm":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for PARSER_BACKEND=llm")
		}
	case "remote":
		if cfg.ParserURL == "" {
			return nil, fmt.Errorf("PARSER_URL is required for PARSER_BACKEND=remote")
		}
	default:
		return nil, fmt.Errorf("unknown PARSER_BACKEND %q", cfg.ParserBackend)
	}

	return cfg, nil
}

// SMTPEnabled reports whether outbound email is configured. Without it the
// service runs with the nop notifier.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
