package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	yaml "go.yaml.in/yaml/v3"
)

// fileConfig mirrors the environment keys. Pointer fields distinguish
// "omitted" from an explicit zero value.
type fileConfig struct {
	OpenAIKey      *string  `json:"openai_api_key,omitempty"`
	Model          *string  `json:"openai_model,omitempty"`
	BotToken       *string  `json:"tg_bot_token,omitempty"`
	ChatID         *string  `json:"tg_chat_id,omitempty"`
	MaxTokens      *int     `json:"max_tokens,omitempty"`
	Temperature    *float32 `json:"temperature,omitempty"`
	DBPath         *string  `json:"db_path,omitempty"`
	SendAsMarkdown *bool    `json:"send_as_markdown,omitempty"`
	LogLevel       *string  `json:"log_level,omitempty"`
}

// parseFile reads a YAML config file. The YAML is coerced to JSON so one
// strict decoder (DisallowUnknownFields) covers the whole format.
func parseFile(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	jb, err := json.Marshal(normalizeYAML(v))
	if err != nil {
		return nil, fmt.Errorf("yaml->json marshal: %w", err)
	}

	var fc fileConfig
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return nil, err
	}
	// reject trailing tokens (e.g. concatenated documents)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("trailing data")
		}
		return nil, err
	}
	return &fc, nil
}

func (f *fileConfig) applyTo(cfg *Config) {
	if f == nil {
		return
	}
	if f.OpenAIKey != nil {
		cfg.OpenAIKey = *f.OpenAIKey
	}
	if f.Model != nil {
		cfg.Model = *f.Model
	}
	if f.BotToken != nil {
		cfg.BotToken = *f.BotToken
	}
	if f.ChatID != nil {
		cfg.ChatID = *f.ChatID
	}
	if f.MaxTokens != nil {
		cfg.MaxTokens = *f.MaxTokens
	}
	if f.Temperature != nil {
		cfg.Temperature = *f.Temperature
	}
	if f.DBPath != nil {
		cfg.DBPath = *f.DBPath
	}
	if f.SendAsMarkdown != nil {
		cfg.SendAsMarkdown = *f.SendAsMarkdown
	}
	if f.LogLevel != nil {
		cfg.LogLevel = *f.LogLevel
	}
}

// normalizeYAML ensures all map keys are strings so the result can be
// JSON-marshaled.
func normalizeYAML(in any) any {
	switch x := in.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[fmt.Sprint(k)] = normalizeYAML(v)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[k] = normalizeYAML(v)
		}
		return m
	case []any:
		for i := range x {
			x[i] = normalizeYAML(x[i])
		}
		return x
	default:
		return in
	}
}
