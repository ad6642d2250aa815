package wordle

import (
	"encoding/json"
	"strconv"
	"time"
)

// DateLayout is the zero-padded ISO date used for batch keys. Lexicographic
// order of such strings is chronological order.
const DateLayout = "2006-01-02"

const (
	ScoreFailed Score = -1
	MaxGuesses        = 6
)

// Score is the number of guesses used to solve, or ScoreFailed.
type Score int

// Solved reports a score within 1..MaxGuesses.
func (s Score) Solved() bool {
	return s >= 1 && s <= MaxGuesses
}

// Failed reports the fail marker. Per-user history counts every other score as
// a solve, out of range ones included.
func (s Score) Failed() bool {
	return s == ScoreFailed
}

func (s Score) String() string {
	if s == ScoreFailed {
		return "X"
	}
	return strconv.Itoa(int(s))
}

// UserRef is an opaque user identity. The empty value means the user could
// not be resolved.
type UserRef string

func (r UserRef) Resolved() bool {
	return r != ""
}

type RosterEntry struct {
	ID       UserRef
	Username string
	Nickname string
}

type ParsedResult struct {
	ID          UserRef
	DisplayName string
	Score       Score
}

type Summary struct {
	Streak   int
	Results  []ParsedResult
	Solved   *int
	Unsolved *int
	Warnings []string
}

// Batch is every result parsed from one summary message, attributed to one
// calendar day.
type Batch struct {
	Date         string
	PuzzleNumber *int
	Results      []Result
}

type Result struct {
	ID    UserRef
	Score Score
	// Name is only kept for unresolved results.
	Name string
}

type jsonResult struct {
	ID    *string `json:"id"`
	Score int     `json:"score"`
	Name  string  `json:"name,omitempty"`
}

// MarshalJSON writes an unresolved identity as null.
func (r Result) MarshalJSON() ([]byte, error) {
	out := jsonResult{Score: int(r.Score)}
	if r.ID.Resolved() {
		id := string(r.ID)
		out.ID = &id
	} else {
		out.Name = r.Name
	}
	return json.Marshal(out)
}

func (r *Result) UnmarshalJSON(b []byte) error {
	var in jsonResult
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	r.Score = Score(in.Score)
	r.Name = in.Name
	r.ID = ""
	if in.ID != nil {
		r.ID = UserRef(*in.ID)
	}
	return nil
}

// NewBatch converts a parsed summary into a storable batch for date.
func NewBatch(date string, s *Summary) Batch {
	b := Batch{Date: date, PuzzleNumber: PuzzleNumber(date), Results: make([]Result, 0, len(s.Results))}
	for _, r := range s.Results {
		res := Result{ID: r.ID, Score: r.Score}
		if !r.ID.Resolved() {
			res.Name = r.DisplayName
		}
		b.Results = append(b.Results, res)
	}
	return b
}

// puzzleZero is the release date of puzzle number 0.
var puzzleZero = time.Date(2021, time.June, 19, 0, 0, 0, 0, time.UTC)

// PuzzleNumber returns the puzzle number published on date, or nil when the
// date is malformed or predates the first puzzle.
func PuzzleNumber(date string) *int {
	t, err := time.Parse(DateLayout, date)
	if err != nil || t.Before(puzzleZero) {
		return nil
	}
	n := int(t.Sub(puzzleZero).Hours() / 24)
	return &n
}

type UserStats struct {
	ID            UserRef
	Username      string
	GamesPlayed   int
	GamesSolved   int
	WinRate       float64
	AverageScore  *float64
	CurrentStreak int
	MaxStreak     int
	Distribution  map[Score]int
	GuessCounts   map[int]int
}

type DailySummary struct {
	Date         string
	PuzzleNumber *int
	TotalPlayers int
	SuccessRate  float64
	AverageScore *float64
	Distribution map[Score]int
	Winners      []Result
	Results      []Result
}

type Leaderboards struct {
	LongestStreak    []*UserStats
	BestWinRate      []*UserStats
	BestAverageScore []*UserStats
}

type Stats struct {
	Daily *DailySummary
	Users map[UserRef]*UserStats
	// Order lists users in the order they first appear in the history.
	Order        []UserRef
	Leaderboards Leaderboards
}
