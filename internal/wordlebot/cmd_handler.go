package wordlebot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	userDb "github.com/bloops-games/wordlebot/internal/database/user/database"
	userModel "github.com/bloops-games/wordlebot/internal/database/user/model"
	"github.com/bloops-games/wordlebot/internal/report"
	"github.com/bloops-games/wordlebot/internal/util"
	"github.com/bloops-games/wordlebot/internal/wordle"
	"github.com/bloops-games/wordlebot/internal/wordlebot/resource"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

var ErrUsage = errors.New("bad arguments")

type usernameLookup interface {
	FetchByUsername(ctx context.Context, username string) (userModel.User, error)
}

// Command is one slash command. Execute returns the Markdown reply.
type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, msg *tgbotapi.Message) (string, error)
}

// NewCommands returns every command in help order. users, when set, resolves
// usernames the roster snapshot does not know.
func NewCommands(w *Workflow, roster RosterSource, users usernameLookup) []Command {
	cmds := []Command{
		&backfillCmd{w: w},
		&reportCmd{w: w},
		&statsCmd{w: w, roster: roster, users: users},
	}

	help := &helpCmd{}
	cmds = append(cmds, help)
	for _, c := range cmds {
		help.commands = append(help.commands, c)
	}

	return cmds
}

type commandTable map[string]Command

func newCommandTable(cmds []Command) commandTable {
	t := make(commandTable, len(cmds))
	for _, c := range cmds {
		t[c.Name()] = c
	}
	return t
}

type backfillCmd struct {
	w *Workflow
}

func (c *backfillCmd) Name() string        { return resource.CmdBackfill }
func (c *backfillCmd) Description() string { return resource.DescBackfill }

func (c *backfillCmd) Execute(ctx context.Context, msg *tgbotapi.Message) (string, error) {
	date := strings.TrimSpace(msg.CommandArguments())
	if date == "" {
		return "", fmt.Errorf("%w, %s", ErrUsage, resource.TextBackfillUsage)
	}

	res, text, err := c.w.Backfill(ctx, date)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		resource.TextBackfillResult,
		date,
		res.Messages,
		util.Noun(res.Messages, "message", "messages"),
		res.Parsed,
		res.Inserted,
		res.Duplicates,
	) + text, nil
}

type reportCmd struct {
	w *Workflow
}

func (c *reportCmd) Name() string        { return resource.CmdReport }
func (c *reportCmd) Description() string { return resource.DescReport }

func (c *reportCmd) Execute(ctx context.Context, _ *tgbotapi.Message) (string, error) {
	return c.w.Report(ctx)
}

type statsCmd struct {
	w      *Workflow
	roster RosterSource
	users  usernameLookup
}

func (c *statsCmd) Name() string        { return resource.CmdStats }
func (c *statsCmd) Description() string { return resource.DescStats }

// target picks the player: an argument mention first, then the author of the
// replied message, then the caller.
func (c *statsCmd) target(ctx context.Context, msg *tgbotapi.Message) (wordle.UserRef, error) {
	if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
		if !strings.HasPrefix(arg, "@") && !strings.HasPrefix(arg, "<@") {
			arg = "@" + arg
		}
		if id, ok := wordle.ResolveMention(arg, c.roster.Snapshot(ctx).Entries); ok {
			return id, nil
		}
		return c.lookup(ctx, arg)
	}

	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil {
		return wordle.UserRef(strconv.Itoa(msg.ReplyToMessage.From.ID)), nil
	}

	if msg.From != nil {
		return wordle.UserRef(strconv.Itoa(msg.From.ID)), nil
	}

	return "", ErrUsage
}

// lookup finds a plain @username in the users bucket.
func (c *statsCmd) lookup(ctx context.Context, arg string) (wordle.UserRef, error) {
	if c.users == nil || !strings.HasPrefix(arg, "@") {
		return "", fmt.Errorf(resource.TextStatsNotFound, arg)
	}

	u, err := c.users.FetchByUsername(ctx, strings.TrimSpace(strings.TrimPrefix(arg, "@")))
	switch {
	case errors.Is(err, userDb.ErrNotFound):
		return "", fmt.Errorf(resource.TextStatsNotFound, arg)
	case err != nil:
		return "", fmt.Errorf("userdb fetch by username: %w", err)
	}

	return wordle.UserRef(u.Ref()), nil
}

func (c *statsCmd) Execute(ctx context.Context, msg *tgbotapi.Message) (string, error) {
	id, err := c.target(ctx, msg)
	if err != nil {
		return "", err
	}
	return c.w.UserReport(ctx, id)
}

type helpCmd struct {
	commands []report.Describer
}

func (c *helpCmd) Name() string        { return resource.CmdHelp }
func (c *helpCmd) Description() string { return resource.DescHelp }

func (c *helpCmd) Execute(context.Context, *tgbotapi.Message) (string, error) {
	return report.Help(c.commands), nil
}
