// Package generator issues one chat-completion request per run and
// extracts the reply text.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"topicbot/pkg/logx"
)

const requestTimeout = 60 * time.Second

type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32

	// BaseURL overrides the API endpoint. Tests point this at a local server.
	BaseURL string
}

// Result is the outcome of one generation call.
//
// Raw marks the soft-degradation path: the response carried no choices, so
// Text holds a pretty-printed dump of the whole response instead of a reply.
// The pipeline still logs and sends it.
type Result struct {
	Text string
	Raw  bool
}

type Generator struct {
	client *openai.Client
	cfg    Config
	log    logx.Logger
}

func New(cfg Config, log logx.Logger) *Generator {
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	return &Generator{client: openai.NewClientWithConfig(cc), cfg: cfg, log: log}
}

// Generate sends the prompt as a single user message and returns the first
// choice's text, whitespace-trimmed. Transport failures and non-success
// statuses are returned as errors; an unexpected response shape is not.
func (g *Generator) Generate(ctx context.Context, prompt string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: g.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		dump, merr := json.MarshalIndent(resp, "", "  ")
		if merr != nil {
			return Result{}, fmt.Errorf("dump unexpected response: %w", merr)
		}
		g.log.Warn("response has no choices; using raw dump",
			logx.String("model", g.cfg.Model),
			logx.Duration("took", time.Since(start)),
		)
		return Result{Text: string(dump), Raw: true}, nil
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	g.log.Debug("topic generated",
		logx.String("model", g.cfg.Model),
		logx.Int("chars", len(text)),
		logx.Duration("took", time.Since(start)),
	)
	return Result{Text: text}, nil
}
