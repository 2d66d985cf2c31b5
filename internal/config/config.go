// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

// Package config loads VenueShare configuration from defaults, an optional
// YAML file and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/venueshare/venueshare/internal/logging"
	"github.com/venueshare/venueshare/internal/xdg"
)

// Config is the complete VenueShare configuration.
type Config struct {
	LogFormat    string          `koanf:"log_format"`
	LogLevel     string          `koanf:"log_level"`
	ZonesFile    string          `koanf:"zones_file"`
	SnapshotFile string          `koanf:"snapshot_file"`
	Sharing      SharingConfig   `koanf:"sharing"`
	Directory    DirectoryConfig `koanf:"directory"`
	Server       ServerConfig    `koanf:"server"`
}

// SharingConfig configures the notification endpoint.
type SharingConfig struct {
	Enabled   bool          `koanf:"enabled"`
	BaseURL   string        `koanf:"base_url"`
	ChannelID string        `koanf:"channel_id"`
	Token     string        `koanf:"token"`
	Timeout   time.Duration `koanf:"timeout"`
}

// DirectoryConfig configures the public venue directory.
type DirectoryConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// ServerConfig configures the webhook receiver started by "serve".
type ServerConfig struct {
	ListenAddr      string            `koanf:"listen_addr"`
	MetricsAddr     string            `koanf:"metrics_addr"`
	Token           string            `koanf:"token"`
	RefreshInterval time.Duration     `koanf:"refresh_interval"`
	Channels        map[string]string `koanf:"channels"`
	RateLimit       RateLimitConfig   `koanf:"rate_limit"`
}

// RateLimitConfig limits venue searches per client. A zero burst disables it.
type RateLimitConfig struct {
	Burst int     `koanf:"burst"`
	Rate  float64 `koanf:"rate"`
}

// Default values.
const (
	DefaultLogFormat       = logging.FormatJSON
	DefaultLogLevel        = "info"
	DefaultDirectoryURL    = "https://ffxivvenues.com"
	DefaultTimeout         = 10 * time.Second
	DefaultListenAddr      = ":8080"
	DefaultMetricsAddr     = "127.0.0.1:9100"
	DefaultRefreshInterval = 30 * time.Minute
	DefaultRateLimitBurst  = 10
	DefaultRateLimitRate   = 2.0
)

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		LogFormat:    DefaultLogFormat,
		LogLevel:     DefaultLogLevel,
		SnapshotFile: xdg.SnapshotFile(),
		Sharing: SharingConfig{
			Enabled: true,
			Timeout: DefaultTimeout,
		},
		Directory: DirectoryConfig{
			BaseURL: DefaultDirectoryURL,
			Timeout: DefaultTimeout,
		},
		Server: ServerConfig{
			ListenAddr:      DefaultListenAddr,
			MetricsAddr:     DefaultMetricsAddr,
			RefreshInterval: DefaultRefreshInterval,
			Channels:        map[string]string{},
			RateLimit: RateLimitConfig{
				Burst: DefaultRateLimitBurst,
				Rate:  DefaultRateLimitRate,
			},
		},
	}
}

func defaultValues() map[string]any {
	d := Default()
	return map[string]any{
		"log_format":              d.LogFormat,
		"log_level":               d.LogLevel,
		"zones_file":              d.ZonesFile,
		"snapshot_file":           d.SnapshotFile,
		"sharing.enabled":         d.Sharing.Enabled,
		"sharing.base_url":        d.Sharing.BaseURL,
		"sharing.channel_id":      d.Sharing.ChannelID,
		"sharing.token":           d.Sharing.Token,
		"sharing.timeout":         d.Sharing.Timeout.String(),
		"directory.base_url":      d.Directory.BaseURL,
		"directory.timeout":       d.Directory.Timeout.String(),
		"server.listen_addr":      d.Server.ListenAddr,
		"server.metrics_addr":     d.Server.MetricsAddr,
		"server.token":            d.Server.Token,
		"server.refresh_interval": d.Server.RefreshInterval.String(),
		"server.rate_limit.burst": d.Server.RateLimit.Burst,
		"server.rate_limit.rate":  d.Server.RateLimit.Rate,
	}
}

// FlagKeys maps command-line flag names to configuration keys. Flags not
// listed here are not configuration.
var FlagKeys = map[string]string{
	"log-format":    "log_format",
	"log-level":     "log_level",
	"zones-file":    "zones_file",
	"snapshot":      "snapshot_file",
	"base-url":      "sharing.base_url",
	"channel":       "sharing.channel_id",
	"token":         "sharing.token",
	"timeout":       "sharing.timeout",
	"directory-url": "directory.base_url",
	"listen-addr":   "server.listen_addr",
	"metrics-addr":  "server.metrics_addr",
	"server-token":  "server.token",
	"refresh":       "server.refresh_interval",
}

// LoadOptions controls Load.
type LoadOptions struct {
	// Path is an explicit config file. When empty the XDG default is tried
	// and may be absent.
	Path string
	// Flags, if set, override file values for every flag the user changed.
	Flags *pflag.FlagSet
}

// Load builds a validated Config.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaultValues() {
		if err := k.Set(key, value); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("key", key).Wrap(err)
		}
	}

	path, explicit := opts.Path, opts.Path != ""
	if !explicit {
		path = xdg.ConfigFile()
	}
	if err := loadFile(k, path, explicit); err != nil {
		return nil, err
	}

	if opts.Flags != nil {
		provider := posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := FlagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
	}
	if cfg.Server.Channels == nil {
		cfg.Server.Channels = map[string]string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(k *koanf.Koanf, path string, explicit bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrapf(err, "parse config file")
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := logging.ValidateFormat(c.LogFormat); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if err := validateURL("sharing.base_url", c.Sharing.BaseURL, false); err != nil {
		return err
	}
	if err := validateURL("directory.base_url", c.Directory.BaseURL, true); err != nil {
		return err
	}
	if c.Sharing.ChannelID != "" && !numeric(c.Sharing.ChannelID) {
		return invalid("sharing.channel_id", c.Sharing.ChannelID, "must be a numeric channel id")
	}
	for key, d := range map[string]time.Duration{
		"sharing.timeout":         c.Sharing.Timeout,
		"directory.timeout":       c.Directory.Timeout,
		"server.refresh_interval": c.Server.RefreshInterval,
	} {
		if d <= 0 {
			return invalid(key, d.String(), "must be positive")
		}
	}
	if c.Server.RateLimit.Burst < 0 {
		return invalid("server.rate_limit.burst", strconv.Itoa(c.Server.RateLimit.Burst), "must not be negative")
	}
	if c.Server.RateLimit.Burst > 0 && c.Server.RateLimit.Rate <= 0 {
		return invalid("server.rate_limit.rate", strconv.FormatFloat(c.Server.RateLimit.Rate, 'g', -1, 64), "must be positive")
	}
	if c.Server.ListenAddr == "" {
		return invalid("server.listen_addr", "", "is required")
	}
	for channel, webhook := range c.Server.Channels {
		if !numeric(channel) {
			return invalid("server.channels", channel, "channel ids must be numeric")
		}
		if err := validateURL("server.channels."+channel, webhook, true); err != nil {
			return err
		}
	}
	return nil
}

func validateURL(key, raw string, required bool) error {
	if raw == "" {
		if required {
			return invalid(key, raw, "is required")
		}
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid(key, raw, "must be an absolute http(s) URL")
	}
	return nil
}

func numeric(s string) bool {
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}

func invalid(key, value, reason string) error {
	return oops.Code("CONFIG_INVALID").With("key", key).With("value", value).Errorf("%s %s", key, reason)
}
