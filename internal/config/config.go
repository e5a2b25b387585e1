package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Keys remembered between runs.
const (
	KeySystem  = "ABILITYLST_SYSTEM"
	KeyDataDir = "PCGEN_DATA_DIR"
)

type Config struct {
	System              string
	DataDir             string
	CatalogDriver       string
	CatalogDSN          string
	DatabaseURL         string
	Neo4jURI            string
	Neo4jUser           string
	Neo4jPassword       string
	EmbeddingAPIKey     string
	EmbeddingModel      string
	EmbeddingBaseURL    string
	EmbeddingDimensions int
	WorkerCount         int
	BatchSize           int
}

// Load reads a .env file when present, then the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}
	return fromEnv()
}

// LoadFile is Load with an explicit dotenv file, which must exist.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return fromEnv(), nil
}

func fromEnv() *Config {
	return &Config{
		System:              getEnv(KeySystem, "pf1e"),
		DataDir:             getEnv(KeyDataDir, ""),
		CatalogDriver:       getEnv("CATALOG_DRIVER", "sqlite"),
		CatalogDSN:          getEnv("CATALOG_DSN", "sqlite://abilities.db"),
		DatabaseURL:         getEnv("DATABASE_URL", "postgres://localhost:5432/ability_lst?sslmode=disable"),
		Neo4jURI:            getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:           getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:       getEnv("NEO4J_PASSWORD", "password"),
		EmbeddingAPIKey:     getEnv("EMBEDDING_API_KEY", ""),
		EmbeddingModel:      getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingBaseURL:    getEnv("EMBEDDING_BASE_URL", "https://api.openai.com/v1"),
		EmbeddingDimensions: getEnvInt("EMBEDDING_DIMENSIONS", 1024),
		WorkerCount:         getEnvInt("WORKER_COUNT", 8),
		BatchSize:           getEnvInt("BATCH_SIZE", 32),
	}
}

// Remember merges values into the dotenv file at path, creating it if
// needed, so later runs start from them.
func Remember(path string, values map[string]string) error {
	existing, err := godotenv.Read(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if existing == nil {
		existing = make(map[string]string, len(values))
	}
	for k, v := range values {
		existing[k] = v
	}
	if err := godotenv.Write(existing, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Remembered returns the values stored at path, or none when the file does
// not exist.
func Remembered(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return values, nil
}

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
