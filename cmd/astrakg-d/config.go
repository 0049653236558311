package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultAddr         = "127.0.0.1:8091"
	defaultQueryTimeout = 5 * time.Second
	defaultCacheTTL     = 5 * time.Minute
)

type Config struct {
	DBPath       string
	SchemaPath   string
	Addr         string
	QueryTimeout time.Duration
	RedisAddr    string
	CacheTTL     time.Duration
}

func LoadConfig(args []string) (Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("failed to get cwd: %w", err)
	}

	defaultDBPath := filepath.Join(cwd, "astrakg.db")

	dbPath := envOrDefault("ASTRAKG_DB_PATH", defaultDBPath)
	schemaPath := os.Getenv("ASTRAKG_SCHEMA_PATH")
	addr := addrFromEnv(defaultAddr)
	redisAddr := os.Getenv("ASTRAKG_REDIS_ADDR")

	queryTimeout := defaultQueryTimeout
	if env := os.Getenv("ASTRAKG_QUERY_TIMEOUT"); env != "" {
		parsed, err := time.ParseDuration(env)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ASTRAKG_QUERY_TIMEOUT: %w", err)
		}
		queryTimeout = parsed
	}
	cacheTTL := defaultCacheTTL
	if env := os.Getenv("ASTRAKG_CACHE_TTL"); env != "" {
		parsed, err := time.ParseDuration(env)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ASTRAKG_CACHE_TTL: %w", err)
		}
		cacheTTL = parsed
	}

	flagSet := flag.NewFlagSet("astrakg-d", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagDB := flagSet.String("db", dbPath, "path to SQLite database")
	flagSchema := flagSet.String("schema", schemaPath, "path to schema JSON (empty uses the built-in catalog)")
	flagAddr := flagSet.String("addr", addr, "HTTP listen address")
	flagQueryTimeout := flagSet.String("query-timeout", queryTimeout.String(), "per-query execution bound")
	flagRedis := flagSet.String("redis", redisAddr, "redis address for the result cache (empty disables caching)")
	flagCacheTTL := flagSet.String("cache-ttl", cacheTTL.String(), "result cache entry lifetime")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			flagSet.SetOutput(os.Stdout)
			flagSet.PrintDefaults()
			return Config{}, err
		}
		return Config{}, err
	}

	queryTimeoutParsed, err := time.ParseDuration(*flagQueryTimeout)
	if err != nil {
		return Config{}, fmt.Errorf("invalid query timeout: %w", err)
	}
	cacheTTLParsed, err := time.ParseDuration(*flagCacheTTL)
	if err != nil {
		return Config{}, fmt.Errorf("invalid cache ttl: %w", err)
	}

	config := Config{
		DBPath:       resolvePath(*flagDB, cwd),
		SchemaPath:   resolvePath(*flagSchema, cwd),
		Addr:         strings.TrimSpace(*flagAddr),
		QueryTimeout: queryTimeoutParsed,
		RedisAddr:    strings.TrimSpace(*flagRedis),
		CacheTTL:     cacheTTLParsed,
	}

	if config.Addr == "" {
		return Config{}, errors.New("addr cannot be empty")
	}
	if config.QueryTimeout < 0 {
		return Config{}, errors.New("query timeout cannot be negative")
	}

	return config, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func addrFromEnv(fallback string) string {
	if value := os.Getenv("ASTRAKG_ADDR"); value != "" {
		return value
	}
	if port := os.Getenv("ASTRAKG_PORT"); port != "" {
		return fmt.Sprintf("127.0.0.1:%s", port)
	}
	return fallback
}

func resolvePath(path string, cwd string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return trimmed
	}
	if filepath.IsAbs(trimmed) {
		return trimmed
	}
	return filepath.Join(cwd, trimmed)
}
