package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/tools"
	"gopkg.in/yaml.v3"
)

// Transport names.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Settings is the process-wide adapter configuration. It is built once at
// startup and treated as read-only afterwards.
type Settings struct {
	Transport     string        `yaml:"transport"`
	Addr          string        `yaml:"addr"`
	LogLevel      string        `yaml:"log_level"`
	CallTimeout   time.Duration `yaml:"call_timeout"`
	MaxConcurrent int64         `yaml:"max_concurrent"`
	Mock          bool          `yaml:"mock"`

	Tools struct {
		Allow []string `yaml:"allow"`
		Deny  []string `yaml:"deny"`
	} `yaml:"tools"`

	HTTP struct {
		APIKeys   string  `yaml:"api_keys"`
		RateLimit float64 `yaml:"rate_limit"`
		Burst     int     `yaml:"burst"`
	} `yaml:"http"`

	Provider struct {
		RateLimit float64       `yaml:"rate_limit"`
		Retries   int           `yaml:"retries"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"provider"`

	Audit struct {
		PostgresDSN string `yaml:"postgres_dsn"`
		SQLitePath  string `yaml:"sqlite_path"`
	} `yaml:"audit"`

	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// DefaultSettings returns the settings used when neither the file nor the
// environment says otherwise.
func DefaultSettings() Settings {
	var s Settings
	s.Transport = TransportStdio
	s.Addr = ":8080"
	s.LogLevel = "info"
	s.CallTimeout = 55 * time.Second
	s.HTTP.RateLimit = 20
	s.HTTP.Burst = 40
	s.Provider.Retries = 2
	s.Provider.Timeout = 30 * time.Second
	return s
}

// LoadSettings layers defaults, the optional YAML file named by
// ADAPTER_CONFIG, and environment variables, in that order.
func LoadSettings() (Settings, error) {
	s := DefaultSettings()
	if path := os.Getenv("ADAPTER_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return s, fmt.Errorf("config.LoadSettings read %s: %w", path, err)
		}
		if err := ParseSettings(raw, &s); err != nil {
			return s, err
		}
	}
	s.applyEnv()
	return s, s.Validate()
}

// ParseSettings decodes YAML onto s, keeping any field the document omits.
func ParseSettings(raw []byte, s *Settings) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config.ParseSettings: %w", err)
	}
	return nil
}

func (s *Settings) applyEnv() {
	s.Transport = strings.ToLower(EnvOr("ADAPTER_TRANSPORT", s.Transport))
	s.Addr = EnvOr("ADAPTER_ADDR", s.Addr)
	s.LogLevel = EnvOr("LOG_LEVEL", s.LogLevel)
	s.CallTimeout = EnvOrDuration("ADAPTER_CALL_TIMEOUT", s.CallTimeout)
	s.MaxConcurrent = int64(EnvOrInt("ADAPTER_MAX_CONCURRENT", int(s.MaxConcurrent)))
	s.Mock = EnvOrBool("MOCK_CONNECTORS", s.Mock)
	if v := os.Getenv("ADAPTER_TOOLS_ALLOW"); v != "" {
		s.Tools.Allow = tools.ParsePatterns(v)
	}
	if v := os.Getenv("ADAPTER_TOOLS_DENY"); v != "" {
		s.Tools.Deny = tools.ParsePatterns(v)
	}
	s.HTTP.APIKeys = EnvOr("ADAPTER_API_KEYS", s.HTTP.APIKeys)
	s.HTTP.RateLimit = envOrFloat("ADAPTER_RATE_LIMIT", s.HTTP.RateLimit)
	s.Provider.RateLimit = envOrFloat("PROVIDER_RATE_LIMIT", s.Provider.RateLimit)
	s.Provider.Retries = EnvOrInt("PROVIDER_RETRIES", s.Provider.Retries)
	s.Audit.PostgresDSN = EnvOr("AUDIT_POSTGRES_DSN", s.Audit.PostgresDSN)
	s.Audit.SQLitePath = EnvOr("AUDIT_SQLITE_PATH", s.Audit.SQLitePath)
	s.OTLPEndpoint = EnvOr("OTEL_EXPORTER_OTLP_ENDPOINT", s.OTLPEndpoint)
}

// Validate rejects settings the shell cannot start with.
func (s Settings) Validate() error {
	switch s.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("config: unknown transport %q (want stdio or http)", s.Transport)
	}
	if s.CallTimeout < 0 {
		return fmt.Errorf("config: call_timeout must not be negative")
	}
	if s.MaxConcurrent < 0 {
		return fmt.Errorf("config: max_concurrent must not be negative")
	}
	if s.Provider.Retries < 0 {
		return fmt.Errorf("config: provider retries must not be negative")
	}
	return nil
}
