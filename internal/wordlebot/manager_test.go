package wordlebot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf16"

	"github.com/bloops-games/wordlebot/internal/database/databasetest"
	userDb "github.com/bloops-games/wordlebot/internal/database/user/database"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

type reply struct {
	chatID   int64
	replyTo  int
	text     string
	markdown bool
}

type fakeReplier struct {
	mu      sync.Mutex
	replies []reply
}

func (f *fakeReplier) Reply(_ context.Context, chatID int64, replyTo int, text string, markdown bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, reply{chatID: chatID, replyTo: replyTo, text: text, markdown: markdown})
	return nil
}

type fakeUpdates struct {
	ch      chan tgbotapi.Update
	stopped bool
}

func (f *fakeUpdates) GetUpdatesChan(tgbotapi.UpdateConfig) (tgbotapi.UpdatesChannel, error) {
	return f.ch, nil
}

func (f *fakeUpdates) StopReceivingUpdates() {
	f.stopped = true
}

type managerEnv struct {
	*testEnv
	m       *Manager
	users   *userDb.DB
	replier *fakeReplier
}

func newManagerEnv(t *testing.T, updates updatesSource) *managerEnv {
	t.Helper()

	env := newTestEnv(t)
	users := userDb.New(databasetest.NewDB(t), nil)
	replier := &fakeReplier{}

	config := testConfig()
	config.Schedule = "0 9 * * *"
	m := NewManager(updates, config, users, env.inbox, env.w, replier, NewCommands(env.w, testRoster, nil))
	m.now = func() time.Time { return testNow }

	return &managerEnv{testEnv: env, m: m, users: users, replier: replier}
}

func groupMsg(chatID int64, id int, from int, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: id,
		Date:      int(testNow.Add(-time.Hour).Unix()),
		Text:      text,
		From:      &tgbotapi.User{ID: from, UserName: "player", FirstName: "Pat"},
		Chat:      &tgbotapi.Chat{ID: chatID, Type: "supergroup"},
	}
}

// utf16Offset is the entity offset of the first sub in text.
func utf16Offset(text, sub string) int {
	return len(utf16.Encode([]rune(text[:strings.Index(text, sub)])))
}

func (e *managerEnv) captured(t *testing.T) int {
	t.Helper()
	page, err := e.inbox.Page(context.Background(), testNow.Add(-24*time.Hour), testNow, "", 100)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	return len(page.Items)
}

func TestHandleUpdateCapture(t *testing.T) {
	t.Parallel()

	env := newManagerEnv(t, nil)
	ctx := context.Background()

	summaryMsg := groupMsg(testChatID, 1, 7, summary("3", "2/6: @Sam Lee"))
	summaryMsg.Entities = &[]tgbotapi.MessageEntity{
		{Type: "text_mention", Offset: utf16Offset(summaryMsg.Text, "@Sam"), Length: 8, User: &tgbotapi.User{ID: 55}},
	}

	env.m.handleUpdate(ctx, tgbotapi.Update{Message: summaryMsg})
	env.m.handleUpdate(ctx, tgbotapi.Update{Message: groupMsg(testChatID, 2, 7, "good morning")})
	env.m.handleUpdate(ctx, tgbotapi.Update{Message: groupMsg(-999, 3, 8, summary("3", "2/6: <@1>"))})

	page, err := env.inbox.Page(ctx, testNow.Add(-24*time.Hour), testNow, "", 10)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("expected only the summary to be captured got %#v", page.Items)
	}
	if !strings.HasSuffix(page.Items[0].Text, "2/6: <@55>") {
		t.Errorf("expected the text mention to be rewritten got %q", page.Items[0].Text)
	}

	if _, err := env.users.Fetch(ctx, 7); err != nil {
		t.Errorf("expected the author to be stored: %v", err)
	}
	if _, err := env.users.Fetch(ctx, 8); err == nil {
		t.Error("expected users of other chats to be ignored")
	}
}

func TestHandleUpdateEditedSummary(t *testing.T) {
	t.Parallel()

	env := newManagerEnv(t, nil)
	ctx := context.Background()

	env.m.handleUpdate(ctx, tgbotapi.Update{Message: groupMsg(testChatID, 1, 7, summary("3", "2/6: <@1>"))})
	env.m.handleUpdate(ctx, tgbotapi.Update{EditedMessage: groupMsg(testChatID, 1, 7, summary("3", "3/6: <@1>"))})

	if n := env.captured(t); n != 1 {
		t.Errorf("expected the edit to replace the message got %d", n)
	}
}

func TestHandleUpdateCommands(t *testing.T) {
	t.Parallel()

	env := newManagerEnv(t, nil)
	ctx := context.Background()

	env.m.handleUpdate(ctx, tgbotapi.Update{Message: commandMsg("/help", 7)})
	env.m.handleUpdate(ctx, tgbotapi.Update{Message: commandMsg("/backfill", 7)})
	env.m.handleUpdate(ctx, tgbotapi.Update{Message: commandMsg("/unknown", 7)})

	if len(env.replier.replies) != 2 {
		t.Fatalf("expected two replies got %#v", env.replier.replies)
	}

	help := env.replier.replies[0]
	if help.chatID != testChatID || help.replyTo != 10 || !help.markdown || !strings.Contains(help.text, "/stats") {
		t.Errorf("unexpected help reply %#v", help)
	}

	failed := env.replier.replies[1]
	if failed.markdown || !strings.Contains(failed.text, "Could not backfill") {
		t.Errorf("expected a plain text failure reply got %#v", failed)
	}

	if n := env.captured(t); n != 0 {
		t.Errorf("expected commands not to be captured got %d", n)
	}
}

func TestRecvUser(t *testing.T) {
	t.Parallel()

	env := newManagerEnv(t, nil)
	ctx := context.Background()

	if err := env.m.recvUser(ctx, &tgbotapi.User{ID: 1, UserName: "alice", FirstName: "Alice"}); err != nil {
		t.Fatalf("recv user: %v", err)
	}
	if err := env.m.recvUser(ctx, &tgbotapi.User{ID: 1, UserName: "alice2", FirstName: "Alice"}); err != nil {
		t.Fatalf("recv user: %v", err)
	}
	if err := env.m.recvUser(ctx, &tgbotapi.User{ID: 2, IsBot: true}); err != nil {
		t.Fatalf("recv user: %v", err)
	}

	u, err := env.users.Fetch(ctx, 1)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if u.Username != "alice2" || !u.CreatedAt.Equal(testNow) {
		t.Errorf("unexpected user %#v", u)
	}

	if _, err := env.users.Fetch(ctx, 2); err == nil {
		t.Error("expected bots not to be stored")
	}
}

func TestManagerRun(t *testing.T) {
	t.Parallel()

	updates := &fakeUpdates{ch: make(chan tgbotapi.Update)}
	env := newManagerEnv(t, updates)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- env.m.Run(ctx)
	}()

	updates.ch <- tgbotapi.Update{Message: groupMsg(testChatID, 1, 7, summary("3", "2/6: <@1>"))}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("manager did not stop")
	}

	if !updates.stopped {
		t.Error("expected updates to be stopped")
	}
	if n := env.captured(t); n != 1 {
		t.Errorf("expected the summary to be captured got %d", n)
	}
}
