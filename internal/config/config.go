// Package config builds the runtime configuration for the topic sender.
//
// The environment is the authoritative source. An optional YAML file can
// supply the same values as defaults; any environment variable always wins.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Defaults for the optional knobs.
const (
	DefaultModel       = "gpt-4o-mini"
	DefaultMaxTokens   = 600
	DefaultTemperature = 0.4
	DefaultDBPath      = "topics.db"
	DefaultLogLevel    = "info"
)

// Config is constructed once at startup and passed by reference to each
// component. Nothing in this program reads the environment after Load.
type Config struct {
	OpenAIKey   string
	Model       string
	MaxTokens   int
	Temperature float32

	BotToken string
	// ChatID is passed to Telegram verbatim: a numeric chat id or "@username".
	ChatID         string
	SendAsMarkdown bool

	DBPath   string
	LogLevel string

	// Endpoint overrides, used by tests. Not settable from the environment.
	OpenAIBaseURL  string
	TelegramAPIURL string
}

// LookupFunc mirrors os.LookupEnv so tests can inject an environment.
type LookupFunc func(key string) (string, bool)

// Load builds the configuration from the optional YAML file at path (empty
// means no file) and the given environment. It fails when any required
// credential is missing, before any network activity.
func Load(path string, lookup LookupFunc) (*Config, error) {
	cfg := &Config{
		Model:          DefaultModel,
		MaxTokens:      DefaultMaxTokens,
		Temperature:    DefaultTemperature,
		DBPath:         DefaultDBPath,
		SendAsMarkdown: true,
		LogLevel:       DefaultLogLevel,
	}

	if path != "" {
		fc, err := parseFile(path)
		if err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		fc.applyTo(cfg)
	}

	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}

	var missing []string
	if strings.TrimSpace(cfg.OpenAIKey) == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if strings.TrimSpace(cfg.BotToken) == "" {
		missing = append(missing, "TG_BOT_TOKEN")
	}
	if strings.TrimSpace(cfg.ChatID) == "" {
		missing = append(missing, "TG_CHAT_ID")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup LookupFunc) error {
	if v, ok := lookup("OPENAI_API_KEY"); ok {
		cfg.OpenAIKey = v
	}
	if v, ok := lookup("OPENAI_MODEL"); ok && strings.TrimSpace(v) != "" {
		cfg.Model = v
	}
	if v, ok := lookup("TG_BOT_TOKEN"); ok {
		cfg.BotToken = v
	}
	if v, ok := lookup("TG_CHAT_ID"); ok {
		cfg.ChatID = v
	}
	if v, ok := lookup("MAX_TOKENS"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			return fmt.Errorf("MAX_TOKENS: invalid value %q", v)
		}
		cfg.MaxTokens = n
	}
	// An explicit TEMPERATURE=0 is meaningful and distinct from "unset".
	if v, ok := lookup("TEMPERATURE"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
		if err != nil || f < 0 {
			return fmt.Errorf("TEMPERATURE: invalid value %q", v)
		}
		cfg.Temperature = float32(f)
	}
	if v, ok := lookup("DB_PATH"); ok && strings.TrimSpace(v) != "" {
		cfg.DBPath = v
	}
	if v, ok := lookup("SEND_AS_MARKDOWN"); ok {
		cfg.SendAsMarkdown = parseBool(v)
	}
	if v, ok := lookup("LOG_LEVEL"); ok && strings.TrimSpace(v) != "" {
		cfg.LogLevel = v
	}
	return nil
}

// parseBool accepts the "1"-style flags the original tooling used plus the
// usual spellings. Anything else is false.
func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
