package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sheikh-saqib/account-ledger-system/internal/models"
)

// Config is the process configuration, read from the environment with an
// optional .env file.
type Config struct {
	HTTPAddr    string
	MetricsAddr string
	// PostgresDSN selects the durable store; empty runs in-memory.
	PostgresDSN string
	// KafkaBrokers enables the event publisher; empty disables it.
	KafkaBrokers []string
	KafkaTopic   string
	LockTimeout  time.Duration
	// SupportedCurrencies is the allow-list. By policy it defaults to SEK
	// only, even though the currency type knows more codes.
	SupportedCurrencies []models.Currency
}

// Load reads configuration from the environment. A missing .env file is
// not an error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:            getenv("LEDGER_HTTP_ADDR", ":8080"),
		MetricsAddr:         getenv("LEDGER_METRICS_ADDR", ":9090"),
		PostgresDSN:         os.Getenv("LEDGER_POSTGRES_DSN"),
		KafkaBrokers:        splitList(os.Getenv("LEDGER_KAFKA_BROKERS")),
		KafkaTopic:          getenv("LEDGER_KAFKA_TOPIC", "transaction_completed"),
		LockTimeout:         getDuration("LEDGER_LOCK_TIMEOUT", 5*time.Second),
		SupportedCurrencies: getCurrencies("LEDGER_SUPPORTED_CURRENCIES", []models.Currency{models.DefaultCurrency}),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getCurrencies(key string, fallback []models.Currency) []models.Currency {
	var result []models.Currency
	for _, code := range splitList(os.Getenv(key)) {
		if c, ok := models.CurrencyFromCode(code); ok {
			result = append(result, c)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
