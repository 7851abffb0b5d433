package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the full service configuration. Loading is handled by viper in
// viper_config.go.
type Config struct {
	Server  ServerSettings  `mapstructure:"server"`
	SWUDB   UpstreamConfig  `mapstructure:"swudb"`
	Deck    DeckSettings    `mapstructure:"deck"`
	Storage StorageSettings `mapstructure:"storage"`
	Log     LogSettings     `mapstructure:"log"`
}

type ServerSettings struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"readTimeout"`
	WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`

	// Per-client limit on /download, golang.org/x/time/rate semantics.
	RateLimit      float64 `mapstructure:"rateLimit"`
	RateLimitBurst int     `mapstructure:"rateLimitBurst"`
}

// UpstreamConfig points at the swudb.com deck and image services.
type UpstreamConfig struct {
	DeckAPIBase  string        `mapstructure:"deckAPIBase"`
	ImageBase    string        `mapstructure:"imageBase"`
	DeckPageBase string        `mapstructure:"deckPageBase"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type DeckSettings struct {
	// IDAlphabet is "letters" or "alphanumeric".
	IDAlphabet  string `mapstructure:"idAlphabet"`
	MaxIDLength int    `mapstructure:"maxIDLength"`
}

type StorageSettings struct {
	ScratchDir string `mapstructure:"scratchDir"`
	ArchiveDir string `mapstructure:"archiveDir"`
}

type LogSettings struct {
	Verbose bool `mapstructure:"verbose"`
	Debug   bool `mapstructure:"debug"`
}

// DefaultConfig returns a configuration that talks to the public swudb.com
// endpoints.
func DefaultConfig() *Config {
	scratch := filepath.Join(os.TempDir(), "swuproxy")
	return &Config{
		Server: ServerSettings{
			Host:            "0.0.0.0",
			Port:            "5000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    5 * time.Minute,
			ShutdownTimeout: 30 * time.Second,
			RateLimit:       0.5,
			RateLimitBurst:  3,
		},
		SWUDB: UpstreamConfig{
			DeckAPIBase:  "https://swudb.com/api/deck/",
			ImageBase:    "https://swudb.com/cdn-cgi/image/quality=100/images",
			DeckPageBase: "https://swudb.com/deck/",
			Timeout:      10 * time.Second,
		},
		Deck: DeckSettings{
			IDAlphabet:  "letters",
			MaxIDLength: 32,
		},
		Storage: StorageSettings{
			ScratchDir: filepath.Join(scratch, "work"),
			ArchiveDir: filepath.Join(scratch, "archives"),
		},
	}
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port must be set")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rateLimit cannot be negative")
	}
	if c.Server.RateLimit > 0 && c.Server.RateLimitBurst < 1 {
		return fmt.Errorf("server.rateLimitBurst must be at least 1 when rate limiting is enabled")
	}
	if c.SWUDB.DeckAPIBase == "" || c.SWUDB.ImageBase == "" {
		return fmt.Errorf("swudb.deckAPIBase and swudb.imageBase must be set")
	}
	if c.SWUDB.Timeout <= 0 {
		return fmt.Errorf("swudb.timeout must be positive")
	}
	switch c.Deck.IDAlphabet {
	case "letters", "alphanumeric":
	default:
		return fmt.Errorf("deck.idAlphabet must be letters or alphanumeric, got %q", c.Deck.IDAlphabet)
	}
	if c.Deck.MaxIDLength < 1 {
		return fmt.Errorf("deck.maxIDLength must be at least 1")
	}
	if c.Storage.ScratchDir == "" || c.Storage.ArchiveDir == "" {
		return fmt.Errorf("storage.scratchDir and storage.archiveDir must be set")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
