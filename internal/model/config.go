package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// GeneralConfig holds behaviour settings.
type GeneralConfig struct {
	// SortMode is one of newest_first, oldest_first, message_id, unsorted.
	SortMode string `mapstructure:"sort_mode" yaml:"sort_mode"`

	// RefreshView re-runs the active search periodically and when new mail
	// arrives.
	RefreshView bool `mapstructure:"refresh_view" yaml:"refresh_view"`

	RefreshInterval time.Duration `mapstructure:"refresh_interval" yaml:"refresh_interval"`

	// AddSigDashes inserts "-- " before the signature in new messages.
	AddSigDashes bool `mapstructure:"add_sig_dashes" yaml:"add_sig_dashes"`
}

// ColorConfig overrides one color role.
type ColorConfig struct {
	Fg string `mapstructure:"fg" yaml:"fg"`
	Bg string `mapstructure:"bg" yaml:"bg"`
}

// IMAPConfig describes an optional IMAP account mirrored into the maildir.
type IMAPConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	Mailbox  string `mapstructure:"mailbox" yaml:"mailbox"`
	TLS      bool   `mapstructure:"tls" yaml:"tls"`

	// PollIntervalSec is how often (in seconds) to fetch new mail.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`

	// SinceDays limits the first fetch to recent mail.
	SinceDays int `mapstructure:"since_days" yaml:"since_days"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	General         GeneralConfig          `mapstructure:"general" yaml:"general"`
	Database        string                 `mapstructure:"database" yaml:"database"`
	Maildir         string                 `mapstructure:"maildir" yaml:"maildir"`
	Searches        []SavedSearch          `mapstructure:"searches" yaml:"searches"`
	Colors          map[string]ColorConfig `mapstructure:"colors" yaml:"colors"`
	Identities      []Identity             `mapstructure:"identities" yaml:"identities"`
	DefaultIdentity string                 `mapstructure:"default_identity" yaml:"default_identity"`
	IMAP            IMAPConfig             `mapstructure:"imap" yaml:"imap"`
}

// SortOrder returns the configured sort order.
func (c *AppConfig) SortOrder() SortOrder {
	order, err := ParseSortOrder(c.General.SortMode)
	if err != nil {
		return SortNewestFirst
	}
	return order
}

// Identity returns the default identity, if any are configured.
func (c *AppConfig) Identity() (Identity, error) {
	return FindIdentity(c.Identities, c.DefaultIdentity)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(p string) string {
	if p == "~" {
		return homeDir()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(homeDir(), p[2:])
	}
	return p
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/ner/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "ner", "config.yaml")
}

// LegacyConfigPath is the single-file location older setups use.
func LegacyConfigPath() string {
	return filepath.Join(homeDir(), ".ner.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		General: GeneralConfig{
			SortMode:        SortNewestFirst.String(),
			RefreshView:     true,
			RefreshInterval: 60 * time.Second,
			AddSigDashes:    true,
		},
		Database: filepath.Join(homeDir(), ".local", "share", "ner", "index.db"),
		Maildir:  filepath.Join(homeDir(), "Mail"),
		Searches: DefaultSearches(),
		Colors:   map[string]ColorConfig{},
		IMAP: IMAPConfig{
			Port:            "993",
			Mailbox:         "INBOX",
			TLS:             true,
			PollIntervalSec: 300,
			SinceDays:       30,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	def := defaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("general.sort_mode", def.General.SortMode)
	v.SetDefault("general.refresh_view", def.General.RefreshView)
	v.SetDefault("general.refresh_interval", def.General.RefreshInterval)
	v.SetDefault("general.add_sig_dashes", def.General.AddSigDashes)
	v.SetDefault("database", def.Database)
	v.SetDefault("maildir", def.Maildir)
	v.SetDefault("imap.port", def.IMAP.Port)
	v.SetDefault("imap.mailbox", def.IMAP.Mailbox)
	v.SetDefault("imap.tls", def.IMAP.TLS)
	v.SetDefault("imap.poll_interval_sec", def.IMAP.PollIntervalSec)
	v.SetDefault("imap.since_days", def.IMAP.SinceDays)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return def, nil
		}
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return def, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	cfg.Searches = nil
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if len(cfg.Searches) == 0 {
		cfg.Searches = DefaultSearches()
	}
	if _, err := ParseSortOrder(cfg.General.SortMode); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.General.RefreshInterval <= 0 {
		cfg.General.RefreshInterval = def.General.RefreshInterval
	}

	cfg.Database = ExpandPath(cfg.Database)
	cfg.Maildir = ExpandPath(cfg.Maildir)
	for i := range cfg.Identities {
		cfg.Identities[i].SignaturePath = ExpandPath(cfg.Identities[i].SignaturePath)
		cfg.Identities[i].Drafts = ExpandPath(cfg.Identities[i].Drafts)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("general", map[string]any{
		"sort_mode":        cfg.General.SortMode,
		"refresh_view":     cfg.General.RefreshView,
		"refresh_interval": cfg.General.RefreshInterval.String(),
		"add_sig_dashes":   cfg.General.AddSigDashes,
	})
	v.Set("database", cfg.Database)
	v.Set("maildir", cfg.Maildir)
	v.Set("searches", cfg.Searches)
	v.Set("colors", cfg.Colors)
	v.Set("identities", cfg.Identities)
	v.Set("default_identity", cfg.DefaultIdentity)
	v.Set("imap", cfg.IMAP)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *AppConfig {
	return defaultAppConfig()
}
