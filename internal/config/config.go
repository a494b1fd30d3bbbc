package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultSearchURL     = "https://indexer.highstakes.ch/demo/api/transactions/bymessagetype"
	defaultExplorerTxURL = "https://testnet.ping.pub/elys/tx/{hash}"
)

type Config struct {
	SearchURL     string
	ExplorerTxURL string
	FetchTimeout  time.Duration
	HTTPAddr      string
	OtelEndpoint  string
	SnapshotOut   string
	LogLevel      string
	LogFormat     string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
}

type EnvSource interface {
	Lookup(key string) (string, bool)
}

type EnvMap map[string]string

func (e EnvMap) Lookup(key string) (string, bool) {
	value, ok := e[key]
	return value, ok
}

func FromEnviron() EnvSource {
	env := make(EnvMap)
	for _, entry := range os.Environ() {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		env[parts[0]] = parts[1]
	}
	return env
}

func Load(source EnvSource) (Config, error) {
	if source == nil {
		return Config{}, errors.New("env source is required")
	}

	searchURL := lookupString(source, "SEARCH_URL", defaultSearchURL)
	if err := validateHTTPURL("SEARCH_URL", searchURL); err != nil {
		return Config{}, err
	}
	explorerTxURL := lookupString(source, "EXPLORER_TX_URL", defaultExplorerTxURL)
	if err := validateHTTPURL("EXPLORER_TX_URL", strings.ReplaceAll(explorerTxURL, "{hash}", "x")); err != nil {
		return Config{}, err
	}

	var fetchTimeout time.Duration
	if raw, ok := source.Lookup("FETCH_TIMEOUT"); ok && strings.TrimSpace(raw) != "" {
		duration, err := time.ParseDuration(strings.TrimSpace(raw))
		if err != nil {
			return Config{}, fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
		}
		if duration < 0 {
			return Config{}, errors.New("invalid FETCH_TIMEOUT: must not be negative")
		}
		fetchTimeout = duration
	}

	logMaxSizeMB, err := parseIntEnv(source, "LOG_MAX_SIZE_MB", 100)
	if err != nil {
		return Config{}, err
	}
	logMaxBackups, err := parseIntEnv(source, "LOG_MAX_BACKUPS", 3)
	if err != nil {
		return Config{}, err
	}

	logFormat := strings.ToLower(lookupString(source, "LOG_FORMAT", "text"))
	if logFormat != "text" && logFormat != "json" {
		return Config{}, fmt.Errorf("invalid LOG_FORMAT %q", logFormat)
	}

	otelEndpoint, _ := source.Lookup("OTEL_EXPORTER_OTLP_ENDPOINT")
	snapshotOut, _ := source.Lookup("SNAPSHOT_OUT")
	logFile, _ := source.Lookup("LOG_FILE")

	return Config{
		SearchURL:     searchURL,
		ExplorerTxURL: explorerTxURL,
		FetchTimeout:  fetchTimeout,
		HTTPAddr:      lookupString(source, "HTTP_ADDR", ":8080"),
		OtelEndpoint:  strings.TrimSpace(otelEndpoint),
		SnapshotOut:   strings.TrimSpace(snapshotOut),
		LogLevel:      lookupString(source, "LOG_LEVEL", "info"),
		LogFormat:     logFormat,
		LogFile:       strings.TrimSpace(logFile),
		LogMaxSizeMB:  logMaxSizeMB,
		LogMaxBackups: logMaxBackups,
	}, nil
}

func lookupString(source EnvSource, key, defaultValue string) string {
	raw, ok := source.Lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return defaultValue
	}
	return strings.TrimSpace(raw)
}

func parseIntEnv(source EnvSource, key string, defaultValue int) (int, error) {
	raw, ok := source.Lookup(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return value, nil
}

func validateHTTPURL(key, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid %s: scheme must be http or https", key)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid %s: host is required", key)
	}
	return nil
}
