package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DBDriver       string
	DatabaseDSN    string
	LogLevel       string
	GinMode        string
	SeedSampleData bool
}

const defaultDSN = "host=localhost user=postgres password=postgres dbname=erp_inventory port=5432 sslmode=disable"

// Load reads .env (if present) and then the process environment.
// Explicit env vars win over .env values.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseDSN:    getEnv("DATABASE_DSN", defaultDSN),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		GinMode:        getEnv("GIN_MODE", "release"),
		SeedSampleData: parseBool("SEED_SAMPLE_DATA", false),
	}
	if cfg.DBDriver == "postgres" && cfg.DatabaseDSN == defaultDSN {
		log.Println("[WARN] DATABASE_DSN not set, using local postgres default")
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("invalid boolean for %s: %s", key, v)
		return def
	}
	return b
}
