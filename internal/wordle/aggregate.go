package wordle

import (
	"sort"
	"time"
)

const LeaderboardSize = 5

type game struct {
	date  string
	score Score
}

// Aggregator recomputes every statistic from the full history on each call.
// The cost is linear in the number of stored results.
type Aggregator struct {
	loc *time.Location
	now func() time.Time
}

func NewAggregator(loc *time.Location, now func() time.Time) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Aggregator{loc: loc, now: now}
}

// Aggregate uses the wall clock in the local time zone.
func Aggregate(batches []Batch, names map[UserRef]string) Stats {
	return NewAggregator(time.Local, time.Now).Aggregate(batches, names)
}

func (a *Aggregator) Aggregate(batches []Batch, names map[UserRef]string) Stats {
	stats := Stats{
		Users: map[UserRef]*UserStats{},
		Order: []UserRef{},
		Leaderboards: Leaderboards{
			LongestStreak:    []*UserStats{},
			BestWinRate:      []*UserStats{},
			BestAverageScore: []*UserStats{},
		},
	}

	games := map[UserRef][]game{}
	var latest string
	for _, b := range batches {
		if b.Date > latest {
			latest = b.Date
		}
		for _, r := range b.Results {
			if !r.ID.Resolved() {
				continue
			}
			if _, ok := games[r.ID]; !ok {
				stats.Order = append(stats.Order, r.ID)
			}
			games[r.ID] = append(games[r.ID], game{date: b.Date, score: r.Score})
		}
	}

	now := a.now().In(a.loc)
	today, yesterday := now.Format(DateLayout), now.AddDate(0, 0, -1).Format(DateLayout)

	players := make([]*UserStats, 0, len(stats.Order))
	for _, id := range stats.Order {
		username := names[id]
		if username == "" {
			username = string(id)
		}
		us := userStats(id, username, games[id], today, yesterday)
		stats.Users[id] = us
		players = append(players, us)
	}

	if len(batches) > 0 {
		stats.Daily = dailySummary(batches, latest)
	}

	stats.Leaderboards.LongestStreak = top(players, func(a, b *UserStats) bool {
		return a.MaxStreak > b.MaxStreak
	})
	stats.Leaderboards.BestWinRate = top(players, func(a, b *UserStats) bool {
		return a.WinRate > b.WinRate
	})

	averaged := make([]*UserStats, 0, len(players))
	for _, us := range players {
		if us.AverageScore != nil {
			averaged = append(averaged, us)
		}
	}
	stats.Leaderboards.BestAverageScore = top(averaged, func(a, b *UserStats) bool {
		return *a.AverageScore < *b.AverageScore
	})

	return stats
}

func userStats(id UserRef, username string, games []game, today, yesterday string) *UserStats {
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].date < games[j].date
	})

	us := &UserStats{
		ID:           id,
		Username:     username,
		Distribution: map[Score]int{},
		GuessCounts:  map[int]int{},
	}

	var sum, run int
	for i, g := range games {
		us.GamesPlayed++
		us.Distribution[g.score]++
		if g.score.Failed() {
			run = 0
			continue
		}

		us.GamesSolved++
		sum += int(g.score)
		if g.score.Solved() {
			us.GuessCounts[int(g.score)]++
		}

		if i > 0 && run > 0 && dayGap(games[i-1].date, g.date) == 1 {
			run++
		} else {
			run = 1
		}
		if run > us.MaxStreak {
			us.MaxStreak = run
		}
	}

	if us.GamesPlayed > 0 {
		us.WinRate = float64(us.GamesSolved) / float64(us.GamesPlayed)
	}
	if us.GamesSolved > 0 {
		avg := float64(sum) / float64(us.GamesSolved)
		us.AverageScore = &avg
	}

	us.CurrentStreak = currentStreak(games, today, yesterday)

	return us
}

func currentStreak(games []game, today, yesterday string) int {
	if len(games) == 0 {
		return 0
	}

	last := games[len(games)-1]
	if last.score.Failed() || last.date != today && last.date != yesterday {
		return 0
	}

	streak := 1
	for i := len(games) - 2; i >= 0; i-- {
		if games[i].score.Failed() || dayGap(games[i].date, games[i+1].date) != 1 {
			break
		}
		streak++
	}

	return streak
}

// dayGap returns the number of calendar days from a to b, or -1 when either
// date is malformed.
func dayGap(a, b string) int {
	ta, err := time.Parse(DateLayout, a)
	if err != nil {
		return -1
	}
	tb, err := time.Parse(DateLayout, b)
	if err != nil {
		return -1
	}
	return int(tb.Sub(ta).Hours() / 24)
}

// dailySummary describes the first batch dated date.
func dailySummary(batches []Batch, date string) *DailySummary {
	var day Batch
	for _, b := range batches {
		if b.Date == date {
			day = b
			break
		}
	}

	d := &DailySummary{
		Date:         date,
		PuzzleNumber: day.PuzzleNumber,
		TotalPlayers: len(day.Results),
		Distribution: map[Score]int{},
		Winners:      []Result{},
		Results:      append([]Result{}, day.Results...),
	}
	if d.PuzzleNumber == nil {
		d.PuzzleNumber = PuzzleNumber(date)
	}

	var sum int
	for _, r := range day.Results {
		if !r.Score.Solved() {
			d.Distribution[ScoreFailed]++
			continue
		}
		d.Distribution[r.Score]++
		d.Winners = append(d.Winners, r)
		sum += int(r.Score)
	}

	if d.TotalPlayers > 0 {
		d.SuccessRate = 100 * float64(len(d.Winners)) / float64(d.TotalPlayers)
	}
	if len(d.Winners) > 0 {
		avg := float64(sum) / float64(len(d.Winners))
		d.AverageScore = &avg
	}

	return d
}

func top(in []*UserStats, better func(a, b *UserStats) bool) []*UserStats {
	out := make([]*UserStats, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return better(out[i], out[j])
	})
	if len(out) > LeaderboardSize {
		out = out[:LeaderboardSize]
	}
	return out
}
