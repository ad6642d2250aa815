package wordle

import (
	"testing"
	"time"
)

// testNow is 2024-01-03, so 2024-01-02 is yesterday.
var testNow = time.Date(2024, time.January, 3, 12, 0, 0, 0, time.UTC)

func testAggregator() *Aggregator {
	return NewAggregator(time.UTC, func() time.Time { return testNow })
}

func batch(date string, results ...Result) Batch {
	return Batch{Date: date, Results: results}
}

func res(id UserRef, score Score) Result {
	return Result{ID: id, Score: score}
}

func TestAggregateEmpty(t *testing.T) {
	t.Parallel()

	stats := testAggregator().Aggregate(nil, map[UserRef]string{})
	if stats.Daily != nil {
		t.Errorf("expected nil daily summary got %#v", stats.Daily)
	}
	if stats.Users == nil || len(stats.Users) != 0 {
		t.Errorf("expected empty user map got %#v", stats.Users)
	}

	lb := stats.Leaderboards
	for name, board := range map[string][]*UserStats{
		"longest":  lb.LongestStreak,
		"win_rate": lb.BestWinRate,
		"average":  lb.BestAverageScore,
	} {
		if board == nil || len(board) != 0 {
			t.Errorf("%s: expected empty non-nil board got %#v", name, board)
		}
	}
}

func TestAggregateScenario(t *testing.T) {
	t.Parallel()

	batches := []Batch{
		batch("2024-01-01", res("1", 3), res("2", ScoreFailed)),
		batch("2024-01-02", res("1", 2)),
	}
	stats := testAggregator().Aggregate(batches, map[UserRef]string{"1": "alice"})

	u1 := stats.Users["1"]
	if u1 == nil {
		t.Fatal("user 1 missing")
	}
	if u1.Username != "alice" {
		t.Errorf("expected username alice got %s", u1.Username)
	}
	if u1.GamesPlayed != 2 || u1.GamesSolved != 2 {
		t.Errorf("expected 2/2 games got %d/%d", u1.GamesPlayed, u1.GamesSolved)
	}
	if u1.AverageScore == nil || *u1.AverageScore != 2.5 {
		t.Errorf("expected average 2.5 got %v", u1.AverageScore)
	}
	if u1.MaxStreak != 2 || u1.CurrentStreak != 2 {
		t.Errorf("expected streaks 2/2 got max %d current %d", u1.MaxStreak, u1.CurrentStreak)
	}
	if u1.GuessCounts[2] != 1 || u1.GuessCounts[3] != 1 {
		t.Errorf("unexpected guess counts %v", u1.GuessCounts)
	}

	u2 := stats.Users["2"]
	if u2 == nil {
		t.Fatal("user 2 missing")
	}
	if u2.Username != "2" {
		t.Errorf("expected identity as fallback name got %s", u2.Username)
	}
	if u2.GamesPlayed != 1 || u2.WinRate != 0 || u2.AverageScore != nil {
		t.Errorf("unexpected stats for user 2: %#v", u2)
	}
	if u2.Distribution[ScoreFailed] != 1 {
		t.Errorf("expected fail bucket 1 got %v", u2.Distribution)
	}

	d := stats.Daily
	if d == nil {
		t.Fatal("daily summary missing")
	}
	if d.Date != "2024-01-02" || d.TotalPlayers != 1 || d.SuccessRate != 100 {
		t.Errorf("unexpected daily summary %#v", d)
	}
	if d.PuzzleNumber == nil || *d.PuzzleNumber != 927 {
		t.Errorf("expected puzzle 927 got %v", d.PuzzleNumber)
	}
}

func TestAggregateStreaks(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		games   []Batch
		max     int
		current int
	}{
		{
			name: "three_days_ending_today",
			games: []Batch{
				batch("2024-01-01", res("u", 4)),
				batch("2024-01-02", res("u", 3)),
				batch("2024-01-03", res("u", 5)),
			},
			max:     3,
			current: 3,
		},
		{
			name: "unordered_input",
			games: []Batch{
				batch("2024-01-03", res("u", 4)),
				batch("2024-01-01", res("u", 3)),
				batch("2024-01-02", res("u", 5)),
			},
			max:     3,
			current: 3,
		},
		{
			name: "last_game_failed",
			games: []Batch{
				batch("2024-01-01", res("u", 4)),
				batch("2024-01-02", res("u", 3)),
				batch("2024-01-03", res("u", ScoreFailed)),
			},
			max:     2,
			current: 0,
		},
		{
			name: "gap_breaks_streak",
			games: []Batch{
				batch("2024-01-01", res("u", 4)),
				batch("2024-01-03", res("u", 3)),
			},
			max:     1,
			current: 1,
		},
		{
			name: "stale_anchor",
			games: []Batch{
				batch("2023-12-28", res("u", 4)),
				batch("2023-12-29", res("u", 3)),
			},
			max:     2,
			current: 0,
		},
		{
			name: "failure_resets_run",
			games: []Batch{
				batch("2023-12-28", res("u", 4)),
				batch("2023-12-29", res("u", 3)),
				batch("2023-12-30", res("u", ScoreFailed)),
				batch("2023-12-31", res("u", 2)),
				batch("2024-01-01", res("u", 2)),
				batch("2024-01-02", res("u", 6)),
			},
			max:     3,
			current: 3,
		},
		{
			name: "failure_inside_current_run",
			games: []Batch{
				batch("2023-12-31", res("u", 2)),
				batch("2024-01-01", res("u", ScoreFailed)),
				batch("2024-01-02", res("u", 6)),
			},
			max:     1,
			current: 1,
		},
		{
			name: "month_boundary",
			games: []Batch{
				batch("2023-12-31", res("u", 2)),
				batch("2024-01-01", res("u", 2)),
			},
			max:     2,
			current: 0,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			us := testAggregator().Aggregate(tc.games, nil).Users["u"]
			if us == nil {
				t.Fatal("user missing")
			}
			if us.MaxStreak != tc.max {
				t.Errorf("expected max streak %d got %d", tc.max, us.MaxStreak)
			}
			if us.CurrentStreak != tc.current {
				t.Errorf("expected current streak %d got %d", tc.current, us.CurrentStreak)
			}
		})
	}
}

func TestAggregateOutOfRangeScoreCountsAsSolve(t *testing.T) {
	t.Parallel()

	batches := []Batch{
		batch("2024-01-01", res("u", 0)),
		batch("2024-01-02", res("u", 3)),
	}
	stats := testAggregator().Aggregate(batches, nil)

	us := stats.Users["u"]
	if us == nil {
		t.Fatal("user missing")
	}
	if us.GamesPlayed != 2 || us.GamesSolved != 2 {
		t.Errorf("expected 2/2 games got %d/%d", us.GamesPlayed, us.GamesSolved)
	}
	if us.MaxStreak != 2 || us.CurrentStreak != 2 {
		t.Errorf("expected streaks 2/2 got max %d current %d", us.MaxStreak, us.CurrentStreak)
	}
	if us.Distribution[0] != 1 || us.Distribution[ScoreFailed] != 0 {
		t.Errorf("unexpected distribution %v", us.Distribution)
	}
	if len(us.GuessCounts) != 1 || us.GuessCounts[3] != 1 {
		t.Errorf("expected only in-range guesses counted got %v", us.GuessCounts)
	}

	// the daily summary still puts a missing score in the fail bucket
	d := testAggregator().Aggregate([]Batch{batch("2024-01-02", res("u", 0))}, nil).Daily
	if d.Distribution[ScoreFailed] != 1 || len(d.Winners) != 0 {
		t.Errorf("unexpected daily summary %#v", d)
	}
}

func TestAggregateUnresolvedCountsInDaily(t *testing.T) {
	t.Parallel()

	batches := []Batch{
		batch("2024-01-02", res("1", 2), Result{Score: 4, Name: "ghost"}, Result{Score: ScoreFailed, Name: "nobody"}),
	}
	stats := testAggregator().Aggregate(batches, nil)

	if len(stats.Users) != 1 {
		t.Errorf("expected only the resolved user got %v", stats.Order)
	}

	d := stats.Daily
	if d.TotalPlayers != 3 || len(d.Winners) != 2 || len(d.Results) != 3 {
		t.Errorf("unexpected daily totals %#v", d)
	}
	if d.AverageScore == nil || *d.AverageScore != 3 {
		t.Errorf("expected average 3 got %v", d.AverageScore)
	}
	if d.Distribution[ScoreFailed] != 1 || d.Distribution[2] != 1 || d.Distribution[4] != 1 {
		t.Errorf("unexpected distribution %v", d.Distribution)
	}
}

func TestAggregateDailyUsesLatestDate(t *testing.T) {
	t.Parallel()

	batches := []Batch{
		batch("2024-01-01", res("1", 2)),
		batch("2024-01-02", res("1", ScoreFailed), res("2", ScoreFailed)),
		batch("2023-12-31", res("1", 3)),
	}
	d := testAggregator().Aggregate(batches, nil).Daily
	if d.Date != "2024-01-02" {
		t.Fatalf("expected 2024-01-02 got %s", d.Date)
	}
	if d.SuccessRate != 0 || d.AverageScore != nil || len(d.Winners) != 0 {
		t.Errorf("expected nobody solved got %#v", d)
	}
}

func TestAggregateLeaderboards(t *testing.T) {
	t.Parallel()

	var batches []Batch
	// a..g play on 2024-01-01; a, b, c also on 2024-01-02.
	day1 := batch("2024-01-01",
		res("a", 4), res("b", 4), res("c", ScoreFailed), res("d", 2),
		res("e", 5), res("f", 3), res("g", ScoreFailed),
	)
	day2 := batch("2024-01-02", res("a", 4), res("b", 2), res("c", 3))
	batches = append(batches, day1, day2)

	lb := testAggregator().Aggregate(batches, nil).Leaderboards

	ids := func(board []*UserStats) []UserRef {
		out := make([]UserRef, 0, len(board))
		for _, us := range board {
			out = append(out, us.ID)
		}
		return out
	}

	assertIDs(t, "longest streak", ids(lb.LongestStreak), []UserRef{"a", "b", "c", "d", "e"})
	assertIDs(t, "win rate", ids(lb.BestWinRate), []UserRef{"a", "b", "d", "e", "f"})
	// b averages 3, c 3, d 2, f 3, a 4, e 5; g never solved.
	assertIDs(t, "average", ids(lb.BestAverageScore), []UserRef{"d", "b", "c", "f", "a"})
}

func assertIDs(t *testing.T, name string, got, expected []UserRef) {
	t.Helper()
	if len(got) != len(expected) {
		t.Fatalf("%s: expected %v got %v", name, expected, got)
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Fatalf("%s: expected %v got %v", name, expected, got)
		}
	}
}

func TestDayGap(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b     string
		expected int
	}{
		{"2024-01-01", "2024-01-02", 1},
		{"2024-02-28", "2024-03-01", 2},
		{"2024-01-02", "2024-01-01", -1},
		{"garbage", "2024-01-01", -1},
		{"2024-01-01", "2024-01-01", 0},
	}

	for _, tc := range cases {
		if got := dayGap(tc.a, tc.b); got != tc.expected {
			t.Errorf("dayGap(%s, %s): expected %d got %d", tc.a, tc.b, tc.expected, got)
		}
	}
}
