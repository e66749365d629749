package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultNetwork          = "testnet"
	DefaultDBDir            = "db"
	DefaultMonitorFrequency = 60
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
)

type Config struct {
	RPCURL           string
	L1Address        string
	ScannerURL       string
	Network          string
	DBDir            string
	TokenList        string
	WorkerIDs        []int
	MonitorFrequency int // in sec
	AutoUnlock       bool
	AlertWebhookURL  string
	InfoWebhookURL   string
	SentryDSN        string
	LogLevel         string
	LogFormat        string
}

// Load reads the given .env files (".env" when none is given) into the
// process environment and builds the config from it. Missing files are
// skipped so the environment alone can configure the binary.
func Load(filenames ...string) (*Config, error) {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, filename := range filenames {
		err := godotenv.Load(filename)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("Error loading %v file: %w", filename, err)
		}
	}
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		RPCURL:          getenv("RPC_URL"),
		L1Address:       getenv("L1_ADDRESS"),
		ScannerURL:      getenv("SCANNER_URL"),
		Network:         withDefault(getenv("NETWORK"), DefaultNetwork),
		DBDir:           withDefault(getenv("DB_DIR"), DefaultDBDir),
		TokenList:       getenv("TOKEN_LIST"),
		AlertWebhookURL: getenv("ALERT_WEBHOOK_URL"),
		InfoWebhookURL:  getenv("INFO_WEBHOOK_URL"),
		SentryDSN:       getenv("SENTRY_DSN"),
		LogLevel:        withDefault(getenv("LOG_LEVEL"), DefaultLogLevel),
		LogFormat:       withDefault(getenv("LOG_FORMAT"), DefaultLogFormat),
	}

	if cfg.RPCURL == "" {
		return nil, errors.New("RPC_URL is required")
	}
	if cfg.L1Address == "" {
		return nil, errors.New("L1_ADDRESS is required")
	}

	var err error
	cfg.MonitorFrequency, err = parseInt("MONITOR_FREQUENCY", getenv("MONITOR_FREQUENCY"), DefaultMonitorFrequency)
	if err != nil {
		return nil, err
	}
	if cfg.MonitorFrequency <= 0 {
		return nil, fmt.Errorf("MONITOR_FREQUENCY must be positive, got %v", cfg.MonitorFrequency)
	}

	if v := getenv("AUTO_UNLOCK"); v != "" {
		cfg.AutoUnlock, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("AUTO_UNLOCK: %w", err)
		}
	}

	cfg.WorkerIDs, err = parseIDs(withDefault(getenv("WORKER_IDS"), "1"))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Printable lists the settings with secrets masked.
func (c *Config) Printable() map[string]string {
	ids := make([]string, 0, len(c.WorkerIDs))
	for _, id := range c.WorkerIDs {
		ids = append(ids, strconv.Itoa(id))
	}
	return map[string]string{
		"RPC_URL":           c.RPCURL,
		"L1_ADDRESS":        c.L1Address,
		"SCANNER_URL":       c.ScannerURL,
		"NETWORK":           c.Network,
		"DB_DIR":            c.DBDir,
		"TOKEN_LIST":        c.TokenList,
		"WORKER_IDS":        strings.Join(ids, ","),
		"MONITOR_FREQUENCY": strconv.Itoa(c.MonitorFrequency),
		"AUTO_UNLOCK":       strconv.FormatBool(c.AutoUnlock),
		"ALERT_WEBHOOK_URL": mask(c.AlertWebhookURL),
		"INFO_WEBHOOK_URL":  mask(c.InfoWebhookURL),
		"SENTRY_DSN":        mask(c.SentryDSN),
		"LOG_LEVEL":         c.LogLevel,
		"LOG_FORMAT":        c.LogFormat,
	}
}

func withDefault(v string, def string) string {
	if v == "" {
		return def
	}
	return v
}

func mask(v string) string {
	if v == "" {
		return ""
	}
	return "***"
}

func parseInt(name string, v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%v: %w", name, err)
	}
	return n, nil
}

func parseIDs(v string) ([]int, error) {
	ids := []int{}
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("WORKER_IDS: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
