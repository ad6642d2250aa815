package wordlebot

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	inboxModel "github.com/bloops-games/wordlebot/internal/database/inbox/model"
	userDb "github.com/bloops-games/wordlebot/internal/database/user/database"
	userModel "github.com/bloops-games/wordlebot/internal/database/user/model"
	"github.com/bloops-games/wordlebot/internal/logging"
	"github.com/bloops-games/wordlebot/internal/metrics"
	"github.com/bloops-games/wordlebot/internal/wordle"
	"github.com/bloops-games/wordlebot/internal/wordlebot/resource"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/robfig/cron/v3"
)

// users are written again at most this often when nothing changed
const lastSeenResolution = 24 * time.Hour

type updatesSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) (tgbotapi.UpdatesChannel, error)
	StopReceivingUpdates()
}

type userStore interface {
	Fetch(ctx context.Context, userID int64) (userModel.User, error)
	Store(ctx context.Context, m userModel.User) error
}

type messageStore interface {
	Add(ctx context.Context, m inboxModel.Message) error
}

type replier interface {
	Reply(ctx context.Context, chatID int64, replyTo int, text string, markdown bool) error
}

func NewManager(
	tg updatesSource,
	config *Config,
	users userStore,
	inbox messageStore,
	workflow *Workflow,
	sender replier,
	commands []Command,
) *Manager {
	return &Manager{
		tg:       tg,
		config:   config,
		users:    users,
		inbox:    inbox,
		workflow: workflow,
		sender:   sender,
		commands: newCommandTable(commands),
		now:      time.Now,
	}
}

// Manager reads bot updates, captures summaries into the inbox, answers
// commands and triggers the daily report.
type Manager struct {
	tg       updatesSource
	config   *Config
	users    userStore
	inbox    messageStore
	workflow *Workflow
	sender   replier
	commands commandTable
	now      func() time.Time
}

func (m *Manager) Run(ctx context.Context) error {
	logger := logging.FromContext(ctx).Named("manager.Run")

	upd := tgbotapi.NewUpdate(0)
	upd.Timeout = int(m.config.TgBotPollTimeout.Seconds())
	updates, err := m.tg.GetUpdatesChan(upd)
	if err != nil {
		return fmt.Errorf("tg get updates chan: %w", err)
	}

	var sched *cron.Cron
	if m.config.ChatID != 0 {
		loc, err := m.config.Location()
		if err != nil {
			return err
		}

		sched, err = NewScheduler(ctx, m.config.Schedule, loc, logger, m.workflow.RunDaily)
		if err != nil {
			return err
		}
		sched.Start()
		logger.Infof("daily report scheduled at %q %s", m.config.Schedule, loc)
	} else {
		logger.Warnf("chat id is not set, daily report disabled")
	}

	wg := &sync.WaitGroup{}
	poolWorkerNum := runtime.NumCPU()
	wg.Add(poolWorkerNum)

	for i := 0; i < poolWorkerNum; i++ {
		go m.pool(ctx, wg, updates)
	}

	wg.Wait()
	m.tg.StopReceivingUpdates()

	if sched != nil {
		<-sched.Stop().Done()
	}

	return nil
}

func (m *Manager) pool(ctx context.Context, wg *sync.WaitGroup, updCh tgbotapi.UpdatesChannel) {
	defer wg.Done()
	for {
		select {
		case update, ok := <-updCh:
			if !ok {
				return
			}
			m.handleUpdate(ctx, update)
		case <-ctx.Done():
			// shutdown
			return
		}
	}
}

func (m *Manager) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	logger := logging.FromContext(ctx).Named("manager.handleUpdate")

	msg := update.Message
	if msg == nil {
		msg = update.EditedMessage
	}
	if msg == nil || !m.allowedChat(msg.Chat) {
		return
	}

	if err := m.recvUser(ctx, msg.From); err != nil {
		logger.Errorf("recv user: %v", err)
	}

	if msg.IsCommand() {
		if update.Message == nil {
			return
		}
		if err := m.handleCommand(ctx, msg); err != nil {
			logger.Errorf("handle command: %v", err)
		}
		return
	}

	if isGroup(msg.Chat) {
		if err := m.capture(ctx, msg); err != nil {
			logger.Errorf("capture message: %v", err)
		}
	}
}

func (m *Manager) capture(ctx context.Context, msg *tgbotapi.Message) error {
	text := mentionText(msg)
	if !wordle.LooksLikeSummary(text) {
		return nil
	}

	if err := m.inbox.Add(ctx, inboxModel.Message{
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		Date:      int64(msg.Date),
		Text:      text,
	}); err != nil {
		return fmt.Errorf("inbox add: %w", err)
	}

	metrics.MessagesCaptured.Inc()

	return nil
}

func (m *Manager) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	cmd, ok := m.commands[msg.Command()]
	if !ok {
		return nil
	}

	metrics.Commands.WithLabelValues(cmd.Name()).Inc()

	rewritten := *msg
	rewritten.Text = mentionText(msg)

	markdown := true
	text, err := cmd.Execute(ctx, &rewritten)
	if err != nil {
		text = fmt.Sprintf(resource.TextCommandFailed, cmd.Name(), err)
		markdown = false
	}

	if err := m.sender.Reply(ctx, msg.Chat.ID, msg.MessageID, text, markdown); err != nil {
		return fmt.Errorf("reply %s: %w", cmd.Name(), err)
	}

	return nil
}

// recvUser keeps the users bucket, which the roster is built from, current.
func (m *Manager) recvUser(ctx context.Context, tgUser *tgbotapi.User) error {
	if tgUser == nil || tgUser.IsBot {
		return nil
	}

	now := m.now()
	u, err := m.users.Fetch(ctx, int64(tgUser.ID))
	switch {
	case errors.Is(err, userDb.ErrNotFound):
		u = userModel.User{ID: int64(tgUser.ID), CreatedAt: now}
	case err != nil:
		return fmt.Errorf("userdb fetch: %w", err)
	case u.Username == tgUser.UserName &&
		u.FirstName == tgUser.FirstName &&
		u.LastName == tgUser.LastName &&
		now.Sub(u.LastSeenAt) < lastSeenResolution:
		return nil
	}

	u.Username = tgUser.UserName
	u.FirstName = tgUser.FirstName
	u.LastName = tgUser.LastName
	u.LastSeenAt = now

	if err := m.users.Store(ctx, u); err != nil {
		return fmt.Errorf("userdb store: %w", err)
	}

	return nil
}
