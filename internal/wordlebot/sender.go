package wordlebot

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bloops-games/wordlebot/internal/fetch"
	"github.com/bloops-games/wordlebot/internal/logging"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"golang.org/x/time/rate"
)

const (
	textTooManyRequests = "Too Many Requests"
	textCantParse       = "can't parse entities"
)

var retryAfterRe = regexp.MustCompile(`retry after (\d+)`)

// classify turns a Telegram throttling reply into a fetch.ThrottledError so
// the fetch retry policy applies to it.
func classify(err error) error {
	if err == nil || !strings.Contains(err.Error(), textTooManyRequests) {
		return err
	}

	te := &fetch.ThrottledError{}
	if m := retryAfterRe.FindStringSubmatch(err.Error()); m != nil {
		if n, convErr := strconv.Atoi(m[1]); convErr == nil {
			te.RetryAfter = time.Duration(n) * time.Second
		}
	}

	return te
}

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

func NewSender(tg messageSender, config *Config) *Sender {
	return &Sender{
		tg:      tg,
		limiter: rate.NewLimiter(rate.Limit(config.SendRate), config.SendBurst),
		backoff: config.Backoff,
	}
}

// Sender posts messages through a shared rate limit and retries throttled
// sends.
type Sender struct {
	tg      messageSender
	limiter *rate.Limiter
	backoff fetch.Backoff
}

// Post sends a Markdown message to chatID.
func (s *Sender) Post(ctx context.Context, chatID int64, text string) error {
	return s.Reply(ctx, chatID, 0, text, true)
}

// Reply sends text to chatID as a reply to message replyTo, when non zero.
// A Markdown message Telegram cannot parse is resent as plain text.
func (s *Sender) Reply(ctx context.Context, chatID int64, replyTo int, text string, markdown bool) error {
	logger := logging.FromContext(ctx).Named("sender.Reply")

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo
	msg.DisableWebPagePreview = true
	if markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}

	err := s.send(ctx, msg)
	if err != nil && markdown && strings.Contains(err.Error(), textCantParse) {
		logger.Warnf("markdown rejected, resending as plain text: %v", err)
		msg.ParseMode = ""
		err = s.send(ctx, msg)
	}

	return err
}

func (s *Sender) send(ctx context.Context, c tgbotapi.Chattable) error {
	return fetch.Retry(ctx, func(ctx context.Context) error {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		_, err := s.tg.Send(c)
		return classify(err)
	}, s.backoff)
}
