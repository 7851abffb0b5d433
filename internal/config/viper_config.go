package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration using viper.
// Priority order: environment variables > config file > defaults.
// An empty configPath searches ./config, . and /etc/swuproxy for swuproxy.yaml.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("swuproxy")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/swuproxy")
	}

	// SWUPROXY_SWUDB_TIMEOUT=5s and friends
	v.SetEnvPrefix("swuproxy")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bare PORT/HOST work too, for container platforms.
	v.BindEnv("server.port", "SWUPROXY_SERVER_PORT", "PORT")
	v.BindEnv("server.host", "SWUPROXY_SERVER_HOST", "HOST")

	setDefaults(v, DefaultConfig())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.readTimeout", d.Server.ReadTimeout)
	v.SetDefault("server.writeTimeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdownTimeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.rateLimit", d.Server.RateLimit)
	v.SetDefault("server.rateLimitBurst", d.Server.RateLimitBurst)

	v.SetDefault("swudb.deckAPIBase", d.SWUDB.DeckAPIBase)
	v.SetDefault("swudb.imageBase", d.SWUDB.ImageBase)
	v.SetDefault("swudb.deckPageBase", d.SWUDB.DeckPageBase)
	v.SetDefault("swudb.timeout", d.SWUDB.Timeout)

	v.SetDefault("deck.idAlphabet", d.Deck.IDAlphabet)
	v.SetDefault("deck.maxIDLength", d.Deck.MaxIDLength)

	v.SetDefault("storage.scratchDir", d.Storage.ScratchDir)
	v.SetDefault("storage.archiveDir", d.Storage.ArchiveDir)

	v.SetDefault("log.verbose", d.Log.Verbose)
	v.SetDefault("log.debug", d.Log.Debug)
}
