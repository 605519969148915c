// Package config provides the configuration schema and loader for the
// SpencerBot Korean learning bot.
package config

import "time"

// LogLevel controls log verbosity for the bot.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for SpencerBot.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Discord DiscordConfig `yaml:"discord"`
	Anki    AnkiConfig    `yaml:"anki"`
	OpenAI  OpenAIConfig  `yaml:"openai"`
	Session SessionConfig `yaml:"session"`
}

// ServerConfig holds network and logging settings for the health/metrics
// endpoint.
type ServerConfig struct {
	// ListenAddr is the TCP address the HTTP server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// DiscordConfig holds gateway credentials and the channel-to-exercise-kind
// routing table.
type DiscordConfig struct {
	// Token is the bot token used to authenticate with the Discord gateway.
	Token string `yaml:"token"`

	// GuildID restricts the bot to a single guild. Messages from any other
	// guild are ignored.
	GuildID string `yaml:"guild_id"`

	// Channels maps exercise kind names to Discord channel IDs. Each listed
	// channel becomes a learning channel bound to that kind. Valid keys:
	// vocab, translate_en_kr, translate_kr_en, audio, dictation, cloze,
	// reading, write, build.
	Channels map[string]string `yaml:"channels"`
}

// AnkiConfig locates the local Anki collection and the optional AnkiWeb
// sync credentials.
type AnkiConfig struct {
	// CollectionPath is the path to collection.anki2. When empty the
	// default location for Profile under ~/.local/share/Anki2 is used.
	CollectionPath string `yaml:"collection_path"`

	// Profile is the Anki profile name. Defaults to "User 1".
	Profile string `yaml:"profile"`

	// Binary is the path to the anki executable used by the !sync command.
	// When empty the binary is looked up on PATH and in common install
	// locations.
	Binary string `yaml:"binary"`

	// Sync holds AnkiWeb credentials for the !sync command. When empty,
	// !sync is disabled.
	Sync AnkiSyncConfig `yaml:"sync"`
}

// AnkiSyncConfig holds AnkiWeb credentials passed to the sync subprocess.
type AnkiSyncConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// OpenAIConfig holds credentials and model selection for exercise
// generation, grading, and speech synthesis.
type OpenAIConfig struct {
	// APIKey authenticates all OpenAI requests.
	APIKey string `yaml:"api_key"`

	// Model selects the chat model for generation and grading.
	// Defaults to "gpt-5-mini".
	Model string `yaml:"model"`

	// Voice selects the TTS voice. Defaults to "nova".
	Voice string `yaml:"voice"`

	// BaseURL overrides the default API endpoint. Leave empty for the
	// public OpenAI API.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds each API request. Zero means no client-side timeout.
	Timeout time.Duration `yaml:"timeout"`
}

// SessionConfig tunes the in-memory session store.
type SessionConfig struct {
	// MaxIdle evicts sessions untouched for longer than this duration.
	// Zero disables eviction.
	MaxIdle time.Duration `yaml:"max_idle"`
}
