package wordlebot

import (
	"fmt"
	"time"

	"github.com/bloops-games/wordlebot/internal/database"
	"github.com/bloops-games/wordlebot/internal/fetch"
)

type Config struct {
	// Logging all requests and responses from telegram
	Debug bool `envconfig:"WORDLE_DEBUG" default:"false"`

	// Number of items in the cache
	CacheSize int `envconfig:"WORDLE_CACHE_SIZE" default:"1024"`

	// Port on which health check, metrics and command registration are served
	Port string `envconfig:"WORDLE_PORT" default:"1234"`

	// profile port
	ProfPort string `envconfig:"WORDLE_PROF_PORT" default:"8888"`

	// Telegram bot token
	BotToken string `envconfig:"WORDLE_BOT_TOKEN"`

	// Group chat the summaries are posted in. Zero accepts every chat and
	// disables the scheduled report.
	ChatID int64 `envconfig:"WORDLE_CHAT_ID"`

	// Shared secret for POST /commands. Empty rejects every request.
	RegisterSecret string `envconfig:"WORDLE_REGISTER_SECRET"`

	// cron expression of the daily report, evaluated in TimeZone
	Schedule string `envconfig:"WORDLE_SCHEDULE" default:"0 9 * * *"`
	TimeZone string `envconfig:"WORDLE_TIME_ZONE" default:"UTC"`

	// Trailing window of inbox messages ingested by a scheduled run
	Window time.Duration `envconfig:"WORDLE_WINDOW" default:"12h"`

	// The summary posted on day D reports the results of D minus this
	ResultsOffsetDays int `envconfig:"WORDLE_RESULTS_OFFSET_DAYS" default:"1"`

	// Captured messages older than this are pruned after a scheduled run
	InboxRetention time.Duration `envconfig:"WORDLE_INBOX_RETENTION" default:"720h"`
	PageSize       int           `envconfig:"WORDLE_PAGE_SIZE" default:"50"`

	// Outbound messages per second and burst
	SendRate  float64 `envconfig:"WORDLE_SEND_RATE" default:"1"`
	SendBurst int     `envconfig:"WORDLE_SEND_BURST" default:"3"`

	Backoff          fetch.Backoff   `envconfig:"WORDLE_BACKOFF"`
	TgBotPollTimeout time.Duration   `envconfig:"WORDLE_TG_BOT_POLL_TIMEOUT" default:"60s"`
	Db               database.Config `envconfig:"WORDLE_DB"`
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", c.TimeZone, err)
	}
	return loc, nil
}
