// Package notify delivers run reports to a chat.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	tele "gopkg.in/telebot.v4"

	logx "jobwatch-engine/pkg/logx"
)

// MaxMessageLen is Telegram's limit for one text message, in characters.
const MaxMessageLen = 4096

// DeliveryError means the report did not reach the destination.
type DeliveryError struct {
	Destination string
	Err         error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to %s: %v", e.Destination, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

type TelegramConfig struct {
	Token string
	// APIURL overrides https://api.telegram.org.
	APIURL  string
	Timeout time.Duration
}

// Telegram sends Markdown text messages through the Bot API. It never polls
// for updates.
type Telegram struct {
	bot *tele.Bot
	log logx.Logger
}

func NewTelegram(cfg TelegramConfig, log logx.Logger) (*Telegram, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		URL:     cfg.APIURL,
		Token:   cfg.Token,
		Offline: true,
		Client:  &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	return &Telegram{bot: b, log: log.Component("notify")}, nil
}

// Send delivers text to destination, a numeric chat id or an @channel name.
// Text longer than MaxMessageLen goes out as several messages split on line
// boundaries; any failed part fails the whole send.
func (t *Telegram) Send(ctx context.Context, destination, text string) error {
	to, err := recipient(destination)
	if err != nil {
		return &DeliveryError{Destination: destination, Err: err}
	}

	parts := Split(text, MaxMessageLen)
	for i, part := range parts {
		if err := t.send(ctx, to, part); err != nil {
			return &DeliveryError{Destination: destination, Err: err}
		}
		t.log.Debug("message part sent", logx.Int("part", i+1), logx.Int("parts", len(parts)))
	}
	t.log.Info("report delivered", logx.String("chat", destination), logx.Int("chars", utf8.RuneCountInString(text)))
	return nil
}

// send posts one part as Markdown. A title with stray Markdown characters
// makes Telegram reject the whole message; that part is resent unformatted
// so the report still arrives.
func (t *Telegram) send(ctx context.Context, to tele.Recipient, text string) error {
	err := t.sendAs(ctx, to, text, tele.ModeMarkdown)
	if err != nil && isEntityError(err) {
		t.log.Warn("markdown rejected, resending as plain text", logx.Err(err))
		err = t.sendAs(ctx, to, text, tele.ModeDefault)
	}
	return err
}

func isEntityError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "can't parse entities")
}

func (t *Telegram) sendAs(ctx context.Context, to tele.Recipient, text string, mode tele.ParseMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	opts := &tele.SendOptions{ParseMode: mode, DisableWebPagePreview: true}

	// telebot has no context support, so the call is raced against ctx.
	done := make(chan error, 1)
	go func() {
		_, err := t.bot.Send(to, text, opts)
		done <- err
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type chatName string

func (c chatName) Recipient() string { return string(c) }

func recipient(destination string) (tele.Recipient, error) {
	d := strings.TrimSpace(destination)
	if d == "" {
		return nil, errors.New("empty chat id")
	}
	if id, err := strconv.ParseInt(d, 10, 64); err == nil {
		return tele.ChatID(id), nil
	}
	if strings.HasPrefix(d, "@") {
		return chatName(d), nil
	}
	return nil, fmt.Errorf("invalid chat id %q", d)
}

// Split breaks text into chunks of at most limit characters, preferring line
// boundaries. A single line longer than limit is cut mid-line.
func Split(text string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var out []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if curLen > 0 {
			out = append(out, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		n := utf8.RuneCountInString(line)
		if curLen+n > limit {
			flush()
		}
		for n > limit {
			r := []rune(line)
			out = append(out, string(r[:limit]))
			line = string(r[limit:])
			n -= limit
		}
		cur.WriteString(line)
		curLen += n
	}
	flush()
	return out
}
