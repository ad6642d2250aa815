package wordlebot

import (
	"context"
	"strconv"
	"strings"

	userModel "github.com/bloops-games/wordlebot/internal/database/user/model"
	"github.com/bloops-games/wordlebot/internal/fetch"
	"github.com/bloops-games/wordlebot/internal/logging"
	"github.com/bloops-games/wordlebot/internal/wordle"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

type userPager interface {
	Page(ctx context.Context, cursor string, limit int) (fetch.Page[userModel.User], error)
}

type adminLister interface {
	GetChatAdministrators(config tgbotapi.ChatConfig) ([]tgbotapi.ChatMember, error)
}

// Snapshot is the roster of one workflow run.
type Snapshot struct {
	Entries []wordle.RosterEntry
	Names   map[wordle.UserRef]string
}

// NewRoster builds the roster from the stored users and, when admins is set,
// the administrators of chatID.
func NewRoster(users userPager, admins adminLister, chatID int64, pageSize int, backoff fetch.Backoff) *Roster {
	return &Roster{users: users, admins: admins, chatID: chatID, pageSize: pageSize, backoff: backoff}
}

type Roster struct {
	users    userPager
	admins   adminLister
	chatID   int64
	pageSize int
	backoff  fetch.Backoff
}

func (r *Roster) Snapshot(ctx context.Context) Snapshot {
	logger := logging.FromContext(ctx).Named("roster.Snapshot")

	users := fetch.Collect(ctx, func(ctx context.Context, cursor string) (fetch.Page[userModel.User], error) {
		return r.users.Page(ctx, cursor, r.pageSize)
	}, r.backoff)

	seen := make(map[int64]struct{}, len(users))
	for _, u := range users {
		seen[u.ID] = struct{}{}
	}

	if r.admins != nil && r.chatID != 0 {
		var members []tgbotapi.ChatMember
		if err := fetch.Retry(ctx, func(context.Context) error {
			var err error
			members, err = r.admins.GetChatAdministrators(tgbotapi.ChatConfig{ChatID: r.chatID})
			return classify(err)
		}, r.backoff); err != nil {
			logger.Warnf("chat administrators: %v", err)
		}

		for _, m := range members {
			if m.User == nil {
				continue
			}
			if _, ok := seen[int64(m.User.ID)]; ok {
				continue
			}
			seen[int64(m.User.ID)] = struct{}{}
			users = append(users, userModel.User{
				ID:        int64(m.User.ID),
				Username:  m.User.UserName,
				FirstName: m.User.FirstName,
				LastName:  m.User.LastName,
			})
		}
	}

	s := Snapshot{
		Entries: make([]wordle.RosterEntry, 0, len(users)),
		Names:   make(map[wordle.UserRef]string, len(users)),
	}
	for _, u := range users {
		ref := wordle.UserRef(strconv.FormatInt(u.ID, 10))
		s.Entries = append(s.Entries, wordle.RosterEntry{
			ID:       ref,
			Username: strings.TrimPrefix(u.Username, "@"),
			Nickname: u.Nickname(),
		})
		s.Names[ref] = u.DisplayName()
	}

	logger.Debugf("roster of %d users", len(s.Entries))

	return s
}
