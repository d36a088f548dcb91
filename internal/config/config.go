package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port    string
	Env     string // "dev" | "prod"
	BaseURL string

	MongoURI string
	MongoDB  string

	JWTSecret     string
	TokenTTLHours int

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	RedisAddr       string
	RateLimitPerMin int

	RabbitURL      string
	RabbitExchange string

	OrdersAPIURL string
	OrdersAPIKey string

	PublicDir string
	TmpDir    string
}

func Load() Config {
	return Config{
		Port:    getenv("APP_PORT", "8080"),
		Env:     getenv("APP_ENV", "dev"),
		BaseURL: getenv("BASE_URL", "http://localhost:8080"),

		MongoURI: getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getenv("MONGO_DB", "account_db"),

		JWTSecret:     getenv("JWT_SECRET", "default_secret_key"),
		TokenTTLHours: atoi(getenv("TOKEN_TTL_HOURS", "23")),

		SMTPHost:     getenv("SMTP_HOST", ""),
		SMTPPort:     getenv("SMTP_PORT", "587"),
		SMTPUser:     getenv("SMTP_USER", ""),
		SMTPPassword: getenv("SMTP_PASSWORD", ""),
		MailFrom:     getenv("MAIL_FROM", "no-reply@localhost"),

		RedisAddr:       getenv("REDIS_ADDR", ""),
		RateLimitPerMin: atoi(getenv("RATE_LIMIT_PER_MIN", "10")),

		RabbitURL:      getenv("RABBIT_URL", ""),
		RabbitExchange: getenv("RABBIT_EXCHANGE", "account.events"),

		OrdersAPIURL: getenv("ORDERS_API_URL", "https://openapi.keycrm.app/v1/order"),
		OrdersAPIKey: getenv("ORDERS_API_KEY", ""),

		PublicDir: getenv("PUBLIC_DIR", "public"),
		TmpDir:    getenv("TMP_DIR", "tmp"),
	}
}

func atoi(s string) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return 0
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
