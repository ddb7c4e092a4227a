// Package config provides centralized configuration management for juryclean.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
// Command-line flags override the loaded values.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Input   InputConfig
	Output  OutputConfig
	Clean   CleanConfig
	Split   SplitConfig
	Server  ServerConfig
	Logging LoggingConfig
}

// InputConfig holds settings for locating and reading source CSVs.
type InputConfig struct {
	// Dir is the directory whose *.csv files are cleaned (default: structure_samples)
	Dir string `env:"JURYCLEAN_INPUT_DIR" default:"structure_samples"`

	// DetectHeader searches the leading rows for the header instead of
	// using the first row (default: false)
	DetectHeader bool `env:"JURYCLEAN_INPUT_DETECT_HEADER" default:"false"`
}

// OutputConfig holds settings for the cleaned table and its log.
type OutputConfig struct {
	// File is the cleaned CSV path (default: juror_cleaned_output.csv)
	File string `env:"JURYCLEAN_OUTPUT_FILE" default:"juror_cleaned_output.csv"`

	// LogFile is the per-table log CSV path (default: clean_log.csv)
	LogFile string `env:"JURYCLEAN_LOG_FILE" default:"clean_log.csv"`

	// BOM prefixes written CSVs with a UTF-8 byte order mark for Excel (default: false)
	BOM bool `env:"JURYCLEAN_OUTPUT_BOM" default:"false"`
}

// CleanConfig holds header resolution and derivation settings.
type CleanConfig struct {
	// RulesFile is an optional YAML file overriding the built-in column rules
	RulesFile string `env:"JURYCLEAN_RULES_FILE"`

	// Mode is the header normalization mode: exact or fold (default: exact)
	Mode string `env:"JURYCLEAN_MODE" default:"exact"`

	// UsedPolicy decides where Jurors Used comes from: source, derive or flag (default: flag)
	UsedPolicy string `env:"JURYCLEAN_USED_POLICY" default:"flag"`

	// Precision is the number of decimals Utilization Rate is rounded to (default: 4)
	Precision int `env:"JURYCLEAN_PRECISION" default:"4"`

	// Workers is the number of tables processed concurrently (default: 1)
	Workers int `env:"JURYCLEAN_WORKERS" default:"1"`
}

// SplitConfig holds workbook splitting settings.
type SplitConfig struct {
	// Workbook is the master workbook to split (default: juror_master.xlsx)
	Workbook string `env:"JURYCLEAN_WORKBOOK" default:"juror_master.xlsx"`

	// OutputDir receives one CSV per sheet (default: structure_samples)
	OutputDir string `env:"JURYCLEAN_SPLIT_DIR" default:"structure_samples"`

	// LogFile is the per-sheet log CSV path (default: structure_log.csv)
	LogFile string `env:"JURYCLEAN_SPLIT_LOG_FILE" default:"structure_log.csv"`

	// ScanRows is how many leading rows are searched for a header (default: 10)
	ScanRows int `env:"JURYCLEAN_SPLIT_SCAN_ROWS" default:"10"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"JURYCLEAN_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"JURYCLEAN_PORT" envAlt:"PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 30s)
	ReadTimeout time.Duration `env:"JURYCLEAN_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"JURYCLEAN_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"JURYCLEAN_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"JURYCLEAN_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"JURYCLEAN_REQUEST_TIMEOUT" default:"60s"`

	// MaxUploadSize is the maximum request body in bytes (default: 32MB)
	MaxUploadSize int64 `env:"JURYCLEAN_MAX_UPLOAD_SIZE" default:"33554432"`

	// MaxConcurrent is the maximum number of clean requests in flight (default: 4)
	MaxConcurrent int `env:"JURYCLEAN_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a request waits for a free slot (default: 10s)
	MaxWaitTime time.Duration `env:"JURYCLEAN_MAX_WAIT_TIME" default:"10s"`

	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"JURYCLEAN_TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"JURYCLEAN_LOG_LEVEL" envAlt:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"JURYCLEAN_LOG_FORMAT" envAlt:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
