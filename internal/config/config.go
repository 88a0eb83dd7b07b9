package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	Env      string
	Port     string
	LogLevel string

	StoreBackend string
	DBDriver     string
	DatabaseURL  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AMQPURL string

	MailHost string
	MailPort int
	MailUser string
	MailPass string
	MailFrom string

	KommoAPIToken string
	KommoBaseURL  string

	CORSAllowedOrigins []string
	RateLimitPerMinute int
	TrustProxy         bool
}

// Load lê o .env (se existir) e depois as variáveis de ambiente.
func Load(files ...string) (*Config, error) {
	// .env é opcional; em produção tudo vem do ambiente.
	_ = godotenv.Load(files...)

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", BackendMemory)),
		DBDriver:     getEnv("DB_DRIVER", "pgx"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		AMQPURL: os.Getenv("AMQP_URL"),

		MailHost: os.Getenv("MAIL_HOST"),
		MailUser: os.Getenv("MAIL_USER"),
		MailPass: os.Getenv("MAIL_PASS"),
		MailFrom: getEnv("MAIL_FROM", "nao-responda@leads.local"),

		KommoAPIToken: os.Getenv("KOMMO_API_TOKEN"),
		KommoBaseURL:  getEnv("KOMMO_BASE_URL", "https://api-c.kommo.com/api/v4"),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.MailPort, err = getInt("MAIL_PORT", 587); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 60); err != nil {
		return nil, err
	}
	if cfg.TrustProxy, err = getBool("TRUST_PROXY", false); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL é obrigatório com STORE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("STORE_BACKEND inválido: %q", c.StoreBackend)
	}

	if c.DBDriver != "pgx" && c.DBDriver != "postgres" {
		return fmt.Errorf("DB_DRIVER inválido: %q", c.DBDriver)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) EventsEnabled() bool {
	return c.AMQPURL != ""
}

func (c *Config) MailEnabled() bool {
	return c.MailHost != ""
}

func (c *Config) KommoEnabled() bool {
	return c.KommoAPIToken != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s inválido: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s inválido: %w", key, err)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
