package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the matsearch configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Completion CompletionConfig `yaml:"completion"`
	Index      IndexConfig      `yaml:"index"`
	Search     SearchConfig     `yaml:"search"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds admin API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis/Valkey connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// CatalogConfig holds the SQLite catalog settings.
type CatalogConfig struct {
	Path       string `yaml:"path"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider         string `yaml:"provider"`
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`
	TimeoutSec       int    `yaml:"timeout_sec"`
	RetryAttempts    int    `yaml:"retry_attempts"`
	RetryWaitSec     int    `yaml:"retry_wait_sec"`
	CacheTTLHours    int    `yaml:"cache_ttl_hours"`
}

// CompletionConfig holds chat completion settings.
type CompletionConfig struct {
	Enabled    bool   `yaml:"enabled"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// IndexConfig holds vector index settings.
type IndexConfig struct {
	Name            string `yaml:"name"`
	KeyPrefix       string `yaml:"key_prefix"`
	HNSWM           int    `yaml:"hnsw_m"`
	HNSWEFConstruct int    `yaml:"hnsw_ef_construction"`
}

// SearchConfig holds search pipeline settings.
type SearchConfig struct {
	SemanticTopK       int `yaml:"semantic_top_k"`
	MaxResults         int `yaml:"max_results"`
	WordLimit          int `yaml:"word_limit"`
	ExtractorCacheSize int `yaml:"extractor_cache_size"`
}

// IngestConfig holds vector ingest settings.
type IngestConfig struct {
	PageSize        int     `yaml:"page_size"`
	ChunkSize       int     `yaml:"chunk_size"`
	Parallelism     int     `yaml:"parallelism"`
	ChunksPerSecond float64 `yaml:"chunks_per_second"`
}

// Load reads config/<env>.yaml, expands ${VAR} and ${VAR:-default} references,
// applies defaults and validates the result.
func Load(env string) (Config, error) {
	path, err := configPath(env)
	if err != nil {
		return Config{}, err
	}
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(expandEnvVars(raw), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// GetEnv returns $ENV, or "local" when unset.
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = "data/catalog.db"
	}
	if c.Catalog.TimeoutSec <= 0 {
		c.Catalog.TimeoutSec = 10
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 15
	}
	if c.Embedding.RetryAttempts <= 0 {
		c.Embedding.RetryAttempts = 3
	}
	if c.Embedding.RetryWaitSec <= 0 {
		c.Embedding.RetryWaitSec = 60
	}
	if c.Embedding.CacheTTLHours <= 0 {
		c.Embedding.CacheTTLHours = 24 * 7
	}
	if c.Completion.TimeoutSec <= 0 {
		c.Completion.TimeoutSec = 30
	}
	if c.Index.Name == "" {
		c.Index.Name = "matsearch:products"
	}
	if c.Index.KeyPrefix == "" {
		c.Index.KeyPrefix = "matsearch:"
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
	if c.Search.SemanticTopK <= 0 {
		c.Search.SemanticTopK = 10
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 100
	}
	if c.Search.WordLimit <= 0 {
		c.Search.WordLimit = 50
	}
	if c.Search.ExtractorCacheSize <= 0 {
		c.Search.ExtractorCacheSize = 1024
	}
	if c.Ingest.PageSize <= 0 {
		c.Ingest.PageSize = 100
	}
	if c.Ingest.ChunkSize <= 0 {
		c.Ingest.ChunkSize = 10
	}
	if c.Ingest.Parallelism <= 0 {
		c.Ingest.Parallelism = 2
	}
	if c.Ingest.ChunksPerSecond <= 0 {
		c.Ingest.ChunksPerSecond = 1
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.HTTP.Port > 0 && c.HTTP.Port <= 65535, "http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	check(len(c.Database.Addrs) > 0, "database.addrs is required")
	check(c.Embedding.Model != "", "embedding.model is required")
	check(c.Embedding.Dimensions >= 0, "embedding.dimensions must not be negative, got %d", c.Embedding.Dimensions)
	check(!c.Completion.Enabled || c.Completion.Model != "", "completion.model is required when completion is enabled")
	check(c.Search.MaxResults <= 1000, "search.max_results must be at most 1000, got %d", c.Search.MaxResults)

	return errors.Join(errs...)
}

// configPath looks in ./config first, then in the config directory of the source tree
// so tests and `go run` work from any package directory.
func configPath(env string) (string, error) {
	if env == "" || strings.ContainsAny(env, `/\`) {
		return "", fmt.Errorf("invalid environment name %q", env)
	}
	name := env + ".yaml"

	candidates := []string{filepath.Join("config", name)}
	if _, src, _, ok := runtime.Caller(0); ok {
		root := filepath.Dir(filepath.Dir(filepath.Dir(src)))
		candidates = append(candidates, filepath.Join(root, "config", name))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("config for environment %q not found in %v", env, candidates)
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default}. An unset variable without default expands to "".
func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		name, def, hasDef := strings.Cut(string(match[2:len(match)-1]), ":-")
		if v := os.Getenv(name); v != "" || !hasDef {
			return []byte(v)
		}
		return []byte(def)
	})
}
