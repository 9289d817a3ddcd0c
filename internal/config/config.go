package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	CanonicalPrefix string
	VocabularyPath  string
	LogDir          string
	LogLevel        string
	WorkerCount     int
	DryRun          bool
	DatabaseURL     string
	Neo4jURI        string
	Neo4jUser       string
	Neo4jPassword   string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		CanonicalPrefix: getEnv("TAGSYNC_CANONICAL_PREFIX", "english_"),
		VocabularyPath:  getEnv("TAGSYNC_VOCABULARY", ""),
		LogDir:          getEnv("TAGSYNC_LOG_DIR", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		WorkerCount:     getEnvInt("TAGSYNC_WORKERS", 4),
		DryRun:          getEnvBool("TAGSYNC_DRY_RUN", false),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		Neo4jURI:        getEnv("NEO4J_URI", ""),
		Neo4jUser:       getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:   getEnv("NEO4J_PASSWORD", ""),
	}
}

// LedgerEnabled reports whether removals are mirrored to PostgreSQL.
func (c *Config) LedgerEnabled() bool { return c.DatabaseURL != "" }

// GraphEnabled reports whether a Neo4j instance is configured.
func (c *Config) GraphEnabled() bool { return c.Neo4jURI != "" }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
