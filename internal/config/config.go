// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/MeepoTu/rooch/internal/address"
)

const (
	EnvPrefix = "ROOCH_PORTAL"

	DefaultDisplayPrecision   = 4
	DefaultRequestTimeoutMS   = 15000
	DefaultRetries            = 3
	DefaultLogFile            = "portal.log"
	DefaultAppName            = "rooch-portal"
	DefaultMaxInactiveSeconds = 1200
	DefaultCLIPath            = "rooch"
)

// DefaultScopes lets a session key call any function of the framework package at 0x3.
var DefaultScopes = []string{"0x3::*::*"}

// Config holds portal settings loaded from a YAML/JSON file and ROOCH_PORTAL_* env vars.
type Config struct {
	RPCURL           string        `mapstructure:"rpc_url"`
	Owner            string        `mapstructure:"owner"`
	DisplayPrecision int           `mapstructure:"display_precision"`
	RequestTimeout   time.Duration `mapstructure:"-"`
	RequestTimeoutMS int           `mapstructure:"request_timeout"`
	Retries          int           `mapstructure:"retries"`
	DebugLogging     bool          `mapstructure:"debug_logging"`
	LogFile          string        `mapstructure:"log_file"`
	MetricsAddr      string        `mapstructure:"metrics_addr"`
	Session          SessionConfig `mapstructure:"session"`
	Wallet           WalletConfig  `mapstructure:"wallet"`
}

// SessionConfig describes the session keys the portal asks for.
type SessionConfig struct {
	AppName            string        `mapstructure:"app_name"`
	Scopes             []string      `mapstructure:"scopes"`
	MaxInactive        time.Duration `mapstructure:"-"`
	MaxInactiveSeconds int           `mapstructure:"max_inactive_interval"`
}

// WalletConfig points at the rooch CLI that holds the signing keys.
type WalletConfig struct {
	CLIPath string `mapstructure:"cli_path"`
	Sender  string `mapstructure:"sender"`
}

// LoadConfig reads configuration from path, applies env overrides and validates it.
// An empty path loads from the environment only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"rpc_url":                       "",
		"owner":                         "",
		"display_precision":             DefaultDisplayPrecision,
		"request_timeout":               DefaultRequestTimeoutMS,
		"retries":                       DefaultRetries,
		"debug_logging":                 false,
		"log_file":                      DefaultLogFile,
		"metrics_addr":                  "",
		"session.app_name":              DefaultAppName,
		"session.scopes":                DefaultScopes,
		"session.max_inactive_interval": DefaultMaxInactiveSeconds,
		"wallet.cli_path":               DefaultCLIPath,
		"wallet.sender":                 "",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config error: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutMS) * time.Millisecond
	cfg.Session.MaxInactive = time.Duration(cfg.Session.MaxInactiveSeconds) * time.Second
	cfg.Session.Scopes = cleanList(cfg.Session.Scopes)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate checks required fields and applies defaults if necessary.
func (c *Config) validate() error {
	if c.RPCURL == "" {
		return errors.New("rpc_url is required")
	}
	if err := validateURL(c.RPCURL, "http"); err != nil {
		return fmt.Errorf("invalid rpc_url: %w", err)
	}
	if c.Owner == "" {
		return errors.New("owner is required")
	}
	if !address.IsValidAddress(c.Owner) {
		return fmt.Errorf("owner %q is not a valid address", c.Owner)
	}
	if c.DisplayPrecision < 0 || c.DisplayPrecision > 255 {
		return errors.New("invalid display_precision")
	}
	if c.RequestTimeoutMS < 0 {
		return errors.New("invalid request_timeout")
	}
	if c.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if c.Session.MaxInactiveSeconds < 0 {
		return errors.New("invalid session.max_inactive_interval")
	}

	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeoutMS * time.Millisecond
	}
	if c.Retries == 0 {
		c.Retries = DefaultRetries
	}
	if len(c.Session.Scopes) == 0 {
		c.Session.Scopes = append([]string(nil), DefaultScopes...)
	}
	if c.Session.AppName == "" {
		c.Session.AppName = DefaultAppName
	}
	if c.Wallet.CLIPath == "" {
		c.Wallet.CLIPath = DefaultCLIPath
	}
	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}
	return nil
}

// MaskedRPCURL returns the RPC URL without credentials or query, for logging.
func (c *Config) MaskedRPCURL() string {
	parsed, err := url.Parse(c.RPCURL)
	if err != nil {
		return "invalid-url"
	}
	if parsed.User != nil {
		parsed.User = url.User("***")
	}
	if parsed.RawQuery != "" {
		parsed.RawQuery = "masked"
	}
	return parsed.String()
}

func validateURL(rawURL string, protocol string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) || parsed.Host == "" {
		return errors.New("invalid URL protocol")
	}
	return nil
}

func cleanList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if clean := strings.TrimSpace(part); clean != "" {
				out = append(out, clean)
			}
		}
	}
	return out
}
