package resource

import "github.com/enescakir/emoji"

// command names as typed after the slash
const (
	CmdBackfill = "backfill"
	CmdReport   = "report"
	CmdStats    = "stats"
	CmdHelp     = "help"
)

var (
	DescBackfill = "ingest the results of YYYY-MM-DD and post the report"
	DescReport   = "post the current report"
	DescStats    = "show a player card: /stats @user, or reply to a message"
	DescHelp     = "list the commands"
)

var (
	TextCommandFailed  = emoji.BrokenHeart.String() + " Could not %s: %v"
	TextBackfillUsage  = "usage: /" + CmdBackfill + " YYYY-MM-DD"
	TextBackfillResult = emoji.CheckMarkButton.String() + " %s: %d %s read, %d parsed, %d stored, %d already known\n\n"
	TextStatsNotFound  = "player %s not found"
)
