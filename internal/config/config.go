package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const defaultReportBaseURL = "https://www.calgary.ca/content/dam/www/csps/cns/documents/community_social_statistics/community-profiles"

// Config holds all tool settings, populated from environment variables with an
// optional YAML file supplying defaults.
type Config struct {
	CommunityList string
	CacheDir      string
	OutputDir     string
	OutputName    string

	ReportBaseURL     string
	ReportPage        int
	HTTPTimeout       time.Duration
	FetchRateLimit    float64 // requests per second, 0 = unlimited
	ValidateDocuments bool

	// Workers caps the pool size; 0 selects the CPU-based heuristic.
	Workers int

	LogLevel   string
	LogFormat  string
	LogFetch   bool
	LogExtract bool

	// Optional row publication and metrics push.
	KafkaBrokers   []string
	KafkaTopic     string
	PushgatewayURL string
}

// OutputPath is the CSV file a compile run writes to.
func (c *Config) OutputPath() string {
	return filepath.Join(c.OutputDir, c.OutputName+".csv")
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is loaded first when present, and CONFIG_FILE
// may point at a YAML file whose keys (lowercased variable names) act as defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	src, err := newSource(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}

	reportPage, err := src.positiveInt("REPORT_PAGE", 8)
	if err != nil {
		return nil, err
	}
	workers, err := src.nonNegativeInt("WORKERS", 0)
	if err != nil {
		return nil, err
	}
	httpTimeout, err := src.duration("HTTP_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	rateLimit, err := src.rateLimit("FETCH_RATE_LIMIT")
	if err != nil {
		return nil, err
	}
	validate, err := src.boolean("VALIDATE_DOCUMENTS", true)
	if err != nil {
		return nil, err
	}
	logFetch, err := src.boolean("LOG_FETCH", true)
	if err != nil {
		return nil, err
	}
	logExtract, err := src.boolean("LOG_EXTRACT", true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		CommunityList:     src.get("COMMUNITY_LIST", "community-names.txt"),
		CacheDir:          src.get("CACHE_DIR", "pdf_files"),
		OutputDir:         src.get("OUTPUT_DIR", "csv_files"),
		OutputName:        src.get("OUTPUT_NAME", "calgary-immigrants-by-community"),
		ReportBaseURL:     strings.TrimRight(src.get("REPORT_BASE_URL", defaultReportBaseURL), "/"),
		ReportPage:        reportPage,
		HTTPTimeout:       httpTimeout,
		FetchRateLimit:    rateLimit,
		ValidateDocuments: validate,
		Workers:           workers,
		LogLevel:          src.get("LOG_LEVEL", "info"),
		LogFormat:         src.get("LOG_FORMAT", "text"),
		LogFetch:          logFetch,
		LogExtract:        logExtract,
		KafkaBrokers:      parseBrokers(src.get("KAFKA_BROKERS", "")),
		KafkaTopic:        src.get("KAFKA_TOPIC", "community-immigration-stats"),
		PushgatewayURL:    src.get("PUSHGATEWAY_URL", ""),
	}

	if cfg.CommunityList == "" {
		return nil, errors.New("COMMUNITY_LIST is required")
	}
	if cfg.CacheDir == "" {
		return nil, errors.New("CACHE_DIR is required")
	}
	if cfg.OutputDir == "" || cfg.OutputName == "" {
		return nil, errors.New("OUTPUT_DIR and OUTPUT_NAME are required")
	}
	if cfg.ReportBaseURL == "" {
		return nil, errors.New("REPORT_BASE_URL is required")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_BROKERS is set but KAFKA_TOPIC is empty")
	}

	return cfg, nil
}

// source resolves a setting from the environment, then the YAML file, then the default.
type source struct {
	file map[string]string
}

func newSource(path string) (*source, error) {
	s := &source{file: map[string]string{}}
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read CONFIG_FILE: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.file); err != nil {
		return nil, fmt.Errorf("parse CONFIG_FILE: %w", err)
	}
	return s, nil
}

func (s *source) get(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	if v, ok := s.file[strings.ToLower(key)]; ok {
		return v
	}
	return fallback
}

func (s *source) positiveInt(key string, fallback int) (int, error) {
	n, err := s.integer(key, fallback)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func (s *source) nonNegativeInt(key string, fallback int) (int, error) {
	n, err := s.integer(key, fallback)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: must be zero or a positive integer", key)
	}
	return n, nil
}

func (s *source) integer(key string, fallback int) (int, error) {
	v := s.get(key, "")
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func (s *source) duration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(s.get(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func (s *source) rateLimit(key string) (float64, error) {
	v := s.get(key, "")
	if v == "" {
		return 0, nil
	}
	r, err := strconv.ParseFloat(v, 64)
	if err != nil || r < 0 {
		return 0, fmt.Errorf("invalid %s: must be a non-negative number", key)
	}
	return r, nil
}

func (s *source) boolean(key string, fallback bool) (bool, error) {
	v := s.get(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: must be true or false", key)
	}
	return b, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
