// Package app wires the pipeline: ensure store -> generate -> persist ->
// format -> notify.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"topicbot/internal/config"
	"topicbot/internal/generator"
	"topicbot/internal/history"
	"topicbot/internal/notify"
	"topicbot/pkg/logx"
)

type App struct {
	log logx.Logger

	// mu guards the components; schedule mode swaps them on config reload.
	mu       sync.Mutex
	cfg      *config.Config
	gen      *generator.Generator
	store    *history.Store
	notifier *notify.Notifier
}

func New(cfg *config.Config, log logx.Logger) (*App, error) {
	a := &App{log: log}
	if err := a.apply(cfg); err != nil {
		return nil, err
	}
	return a, nil
}

// apply builds the components for cfg and swaps them in. The previous
// store, if any, is closed.
func (a *App) apply(cfg *config.Config) error {
	gen := generator.New(generator.Config{
		APIKey:      cfg.OpenAIKey,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		BaseURL:     cfg.OpenAIBaseURL,
	}, a.log)

	notifier, err := notify.New(notify.Config{
		Token:    cfg.BotToken,
		ChatID:   cfg.ChatID,
		Markdown: cfg.SendAsMarkdown,
		APIURL:   cfg.TelegramAPIURL,
	}, a.log)
	if err != nil {
		return fmt.Errorf("notifier: %w", err)
	}

	store, err := history.Open(cfg.DBPath, a.log)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}

	a.mu.Lock()
	old := a.store
	a.cfg, a.gen, a.store, a.notifier = cfg, gen, store, notifier
	a.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return nil
}

func (a *App) components() (*generator.Generator, *history.Store, *notify.Notifier) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gen, a.store, a.notifier
}

// RunOnce executes one full pipeline pass. The first failing step aborts
// the run; the history row is committed before the notification goes out,
// so a send failure leaves a logged-but-unsent topic behind.
func (a *App) RunOnce(ctx context.Context) error {
	gen, store, notifier := a.components()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	res, err := gen.Generate(ctx, generator.Prompt)
	if err != nil {
		a.log.Error("topic generation failed", logx.Err(err))
		return fmt.Errorf("generate topic: %w", err)
	}

	if err := store.Append(ctx, res.Text); err != nil {
		return err
	}

	if err := notifier.Send(ctx, notify.Header(time.Now()), res.Text); err != nil {
		a.log.Error("notification failed", logx.Err(err))
		return err
	}

	a.log.Info("topic sent and logged", logx.Bool("raw_fallback", res.Raw), logx.Int("chars", len(res.Text)))
	return nil
}

func (a *App) Close() error {
	a.mu.Lock()
	store := a.store
	a.store = nil
	a.mu.Unlock()
	if store != nil {
		return store.Close()
	}
	return nil
}
