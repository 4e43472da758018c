// Package notify formats the generated topic and delivers it to one
// Telegram chat.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"topicbot/pkg/logx"
)

const sendTimeout = 20 * time.Second

type Config struct {
	Token string
	// ChatID is forwarded verbatim: a numeric chat id or "@username".
	ChatID   string
	Markdown bool

	// APIURL overrides the Telegram Bot API endpoint. Tests point this at a
	// local server.
	APIURL string
}

type Notifier struct {
	bot *tele.Bot
	cfg Config
	log logx.Logger
}

// chatRecipient passes the raw chat target through to the Bot API, so both
// numeric ids and @usernames work without parsing.
type chatRecipient string

func (r chatRecipient) Recipient() string { return string(r) }

func New(cfg Config, log logx.Logger) (*Notifier, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if strings.TrimSpace(cfg.ChatID) == "" {
		return nil, errors.New("telegram chat id is empty")
	}
	settings := tele.Settings{
		Token:  cfg.Token,
		Client: &http.Client{Timeout: sendTimeout},
		// Send-only bot: skip the getMe round-trip at startup.
		Offline: true,
	}
	if cfg.APIURL != "" {
		settings.URL = cfg.APIURL
	}
	b, err := tele.NewBot(settings)
	if err != nil {
		return nil, err
	}
	return &Notifier{bot: b, cfg: cfg, log: log}, nil
}

// Send concatenates header and body, applies the length guard, escapes
// Markdown metacharacters when markdown mode is on, and issues one
// sendMessage call. A non-success response is returned as an error.
//
// ctx is accepted for interface symmetry; the per-call ceiling is enforced
// by the HTTP client timeout.
func (n *Notifier) Send(ctx context.Context, header, body string) error {
	msg := EnsureLength(header + body)

	opts := &tele.SendOptions{DisableWebPagePreview: true}
	if n.cfg.Markdown {
		msg = EscapeMarkdown(msg)
		opts.ParseMode = tele.ModeMarkdown
	}

	start := time.Now()
	if _, err := n.bot.Send(chatRecipient(n.cfg.ChatID), msg, opts); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	n.log.Debug("notification sent",
		logx.String("chat", n.cfg.ChatID),
		logx.Int("chars", len(msg)),
		logx.Duration("took", time.Since(start)),
	)
	return nil
}
