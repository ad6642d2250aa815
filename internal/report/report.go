// Package report renders aggregated statistics as Telegram Markdown.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bloops-games/wordlebot/internal/strpool"
	"github.com/bloops-games/wordlebot/internal/util"
	"github.com/bloops-games/wordlebot/internal/wordle"
	"github.com/enescakir/emoji"
)

const (
	barRune  = "▇"
	barWidth = 12
)

var (
	TextNoResults   = emoji.CrossMark.String() + " No results stored yet"
	TextUserUnknown = emoji.CrossMark.String() + " No games recorded for this player"
)

var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)

// Escape makes s safe inside a Markdown message.
func Escape(s string) string {
	return markdownEscaper.Replace(s)
}

func medalIcon(m wordle.Medal) string {
	switch m {
	case wordle.Gold:
		return emoji.FirstPlaceMedal.String()
	case wordle.Silver:
		return emoji.SecondPlaceMedal.String()
	default:
		return emoji.ThirdPlaceMedal.String()
	}
}

func scoreIcon(s wordle.Score) string {
	switch s {
	case 1:
		return emoji.Keycap1.String()
	case 2:
		return emoji.Keycap2.String()
	case 3:
		return emoji.Keycap3.String()
	case 4:
		return emoji.Keycap4.String()
	case 5:
		return emoji.Keycap5.String()
	case 6:
		return emoji.Keycap6.String()
	default:
		return emoji.CrossMark.String()
	}
}

// buckets lists distribution keys in display order.
var buckets = []wordle.Score{1, 2, 3, 4, 5, 6, wordle.ScoreFailed}

func resultName(stats wordle.Stats, r wordle.Result) string {
	if r.ID.Resolved() {
		if us, ok := stats.Users[r.ID]; ok {
			return us.Username
		}
		return string(r.ID)
	}
	if r.Name != "" {
		return r.Name
	}
	return "?"
}

func formatAverage(avg *float64) string {
	if avg == nil {
		return "-"
	}
	return strconv.FormatFloat(*avg, 'f', 2, 64)
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 0, 64) + "%"
}

func writeBars(buf *strings.Builder, dist map[wordle.Score]int) {
	peak := 0
	for _, n := range dist {
		if n > peak {
			peak = n
		}
	}

	for _, s := range buckets {
		n := dist[s]
		width := 0
		if peak > 0 {
			width = n * barWidth / peak
		}
		if n > 0 && width == 0 {
			width = 1
		}
		_, _ = fmt.Fprintf(buf, "%s %s %d\n", scoreIcon(s), strings.Repeat(barRune, width), n)
	}
}

func writeBoard(
	buf *strings.Builder,
	title string,
	board []*wordle.UserStats,
	value func(*wordle.UserStats) (float64, bool),
	format func(float64) string,
	lowerWins bool,
) {
	podiums := wordle.AssignMedals(board, value, lowerWins)
	if len(podiums) == 0 {
		return
	}

	_, _ = fmt.Fprintf(buf, "\n*%s*\n", title)
	for _, p := range podiums {
		names := make([]string, 0, len(p.Entries))
		for _, us := range p.Entries {
			names = append(names, Escape(us.Username))
		}
		_, _ = fmt.Fprintf(buf, "%s %s %s\n", medalIcon(p.Medal), format(p.Value), strings.Join(names, ", "))
	}
}

// Daily renders the latest day of play followed by the all-time boards.
func Daily(stats wordle.Stats) string {
	d := stats.Daily
	if d == nil {
		return TextNoResults
	}

	buf := strpool.Get()
	defer strpool.Put(buf)

	_, _ = fmt.Fprintf(buf, "%s *Wordle", emoji.BarChart.String())
	if d.PuzzleNumber != nil {
		_, _ = fmt.Fprintf(buf, " %d", *d.PuzzleNumber)
	}
	_, _ = fmt.Fprintf(buf, "* %s\n\n", d.Date)

	_, _ = fmt.Fprintf(
		buf,
		"%s %d %s, %s %s solved, %s avg %s\n",
		emoji.BustsInSilhouette.String(),
		d.TotalPlayers,
		util.Noun(d.TotalPlayers, "player", "players"),
		emoji.CheckMarkButton.String(),
		formatPercent(d.SuccessRate),
		emoji.DirectHit.String(),
		formatAverage(d.AverageScore),
	)

	podiums := wordle.AssignMedals(d.Winners, func(r wordle.Result) (float64, bool) {
		return float64(r.Score), r.Score.Solved()
	}, true)
	if len(podiums) > 0 {
		_, _ = fmt.Fprintf(buf, "\n%s *Podium*\n", emoji.Trophy.String())
		for _, p := range podiums {
			names := make([]string, 0, len(p.Entries))
			for _, r := range p.Entries {
				names = append(names, Escape(resultName(stats, r)))
			}
			_, _ = fmt.Fprintf(buf, "%s %d/6 %s\n", medalIcon(p.Medal), int(p.Value), strings.Join(names, ", "))
		}
	}

	var failed []string
	for _, r := range d.Results {
		if !r.Score.Solved() {
			failed = append(failed, Escape(resultName(stats, r)))
		}
	}
	if len(failed) > 0 {
		_, _ = fmt.Fprintf(buf, "%s X/6 %s\n", emoji.CrossMark.String(), strings.Join(failed, ", "))
	}

	buf.WriteString("\n*Distribution*\n")
	writeBars(buf, d.Distribution)

	lb := stats.Leaderboards
	writeBoard(buf, emoji.Fire.String()+" Longest streak", lb.LongestStreak, func(us *wordle.UserStats) (float64, bool) {
		return float64(us.MaxStreak), us.MaxStreak > 0
	}, func(v float64) string {
		n := int(v)
		return strconv.Itoa(n) + " " + util.Noun(n, "day", "days")
	}, false)
	writeBoard(buf, emoji.Star.String()+" Best win rate", lb.BestWinRate, func(us *wordle.UserStats) (float64, bool) {
		return us.WinRate, true
	}, func(v float64) string {
		return formatPercent(v * 100)
	}, false)
	writeBoard(buf, emoji.DirectHit.String()+" Best average", lb.BestAverageScore, func(us *wordle.UserStats) (float64, bool) {
		if us.AverageScore == nil {
			return 0, false
		}
		return *us.AverageScore, true
	}, func(v float64) string {
		return formatAverage(&v)
	}, true)

	return buf.String()
}

// User renders the card of one player.
func User(stats wordle.Stats, id wordle.UserRef) string {
	us, ok := stats.Users[id]
	if !ok || us.GamesPlayed == 0 {
		return TextUserUnknown
	}

	buf := strpool.Get()
	defer strpool.Put(buf)

	_, _ = fmt.Fprintf(buf, "%s *%s*\n\n", emoji.Alien.String(), Escape(us.Username))
	_, _ = fmt.Fprintf(buf, "%s Played: %d\n", emoji.VideoGame.String(), us.GamesPlayed)
	_, _ = fmt.Fprintf(buf, "%s Solved: %d (%s)\n", emoji.CheckMarkButton.String(), us.GamesSolved, formatPercent(us.WinRate*100))
	_, _ = fmt.Fprintf(buf, "%s Average: %s\n", emoji.DirectHit.String(), formatAverage(us.AverageScore))
	_, _ = fmt.Fprintf(
		buf,
		"%s Streak: %d, best %d\n\n",
		emoji.Fire.String(),
		us.CurrentStreak,
		us.MaxStreak,
	)

	buf.WriteString("*Guesses*\n")
	writeBars(buf, us.Distribution)

	return buf.String()
}

// Describer is a command that can list itself in the help text.
type Describer interface {
	Name() string
	Description() string
}

// Help renders the command list.
func Help(commands []Describer) string {
	buf := strpool.Get()
	defer strpool.Put(buf)

	_, _ = fmt.Fprintf(buf, "%s *Wordle stats bot*\n\n", emoji.Robot.String())
	buf.WriteString("I collect the daily Wordle summaries posted in this chat and keep score.\n\n")
	buf.WriteString("*Commands:*\n")
	for _, c := range commands {
		_, _ = fmt.Fprintf(buf, "/%s - %s\n", Escape(c.Name()), c.Description())
	}

	return buf.String()
}
