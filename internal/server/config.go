package server

import (
	"os"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Port            int
	LedgerURL       string // external ledger service; takes precedence
	DatabaseURL     string // Postgres-backed ledger store
	RateLimitPerSec int
}

func LoadConfig() Config {
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080
	}

	rate, _ := strconv.Atoi(os.Getenv("RATE_LIMIT_PER_SEC"))
	if rate <= 0 {
		rate = 20
	}

	return Config{
		Port:            port,
		LedgerURL:       os.Getenv("LEDGER_URL"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RateLimitPerSec: rate,
	}
}
