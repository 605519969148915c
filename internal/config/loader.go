package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spencerchil/spencerbot/internal/drill"
)

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Anki.Profile == "" {
		cfg.Anki.Profile = "User 1"
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Discord
	if cfg.Discord.Token == "" {
		errs = append(errs, errors.New("discord.token is required"))
	}
	if cfg.Discord.GuildID == "" {
		errs = append(errs, errors.New("discord.guild_id is required"))
	}
	if len(cfg.Discord.Channels) == 0 {
		errs = append(errs, errors.New("discord.channels must list at least one learning channel"))
	}
	channelsSeen := make(map[string]string, len(cfg.Discord.Channels))
	for kind, channelID := range cfg.Discord.Channels {
		if !drill.Kind(kind).IsValid() {
			errs = append(errs, fmt.Errorf("discord.channels key %q is not a known exercise kind", kind))
		}
		if channelID == "" {
			errs = append(errs, fmt.Errorf("discord.channels.%s must not be empty", kind))
			continue
		}
		if prev, ok := channelsSeen[channelID]; ok {
			errs = append(errs, fmt.Errorf("discord.channels.%s reuses channel %s already bound to %s", kind, channelID, prev))
		}
		channelsSeen[channelID] = kind
	}

	// OpenAI
	if cfg.OpenAI.APIKey == "" {
		errs = append(errs, errors.New("openai.api_key is required"))
	}
	if cfg.OpenAI.Timeout < 0 {
		errs = append(errs, fmt.Errorf("openai.timeout %s must not be negative", cfg.OpenAI.Timeout))
	}

	// Anki
	if cfg.Session.MaxIdle < 0 {
		errs = append(errs, fmt.Errorf("session.max_idle %s must not be negative", cfg.Session.MaxIdle))
	}
	if (cfg.Anki.Sync.Username == "") != (cfg.Anki.Sync.Password == "") {
		errs = append(errs, errors.New("anki.sync requires both username and password"))
	}
	if cfg.Anki.Sync.Username == "" {
		slog.Warn("anki.sync credentials are not configured; the !sync command will be disabled")
	}

	return errors.Join(errs...)
}

// KindChannels inverts the configured channel table into a channel-ID to
// exercise-kind lookup for message routing.
func (c *DiscordConfig) KindChannels() map[string]drill.Kind {
	out := make(map[string]drill.Kind, len(c.Channels))
	for kind, channelID := range c.Channels {
		if channelID == "" {
			continue
		}
		out[channelID] = drill.Kind(kind)
	}
	return out
}
