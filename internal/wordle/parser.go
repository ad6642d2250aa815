package wordle

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bloops-games/wordlebot/internal/logging"
	"github.com/enescakir/emoji"
)

const failMarker = "X"

var (
	ErrNoStreak  = errors.New("streak line not found")
	ErrNoResults = errors.New("no result lines found")
)

var (
	streakRe     = regexp.MustCompile(`(\d+) day streak`)
	resultLineRe = regexp.MustCompile(`^(?:` + regexp.QuoteMeta(emoji.Crown.String()) + `\s*)?([1-6]|` + failMarker + `)/6:\s*(.*)$`)
	solvedRe     = regexp.MustCompile(`(\d+) solved and (\d+) unsolved`)
	mentionRe    = regexp.MustCompile(`^<@!?(\d+)>`)
)

// LooksLikeSummary is a cheap filter for messages worth keeping for a later
// Parse.
func LooksLikeSummary(text string) bool {
	return streakRe.MatchString(text) && strings.Contains(text, "/6:")
}

// Parse extracts the results of one daily summary. A nil summary is returned
// together with ErrNoStreak or ErrNoResults when text is not a summary.
func Parse(ctx context.Context, text string, roster []RosterEntry) (*Summary, error) {
	logger := logging.FromContext(ctx).Named("wordle.Parse")
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	m := streakRe.FindStringSubmatch(lines[0])
	if m == nil {
		logger.Debugf("no streak in first line %q", lines[0])
		return nil, ErrNoStreak
	}

	streak, err := strconv.Atoi(m[1])
	if err != nil {
		logger.Debugf("streak %q: %v", m[1], err)
		return nil, ErrNoStreak
	}

	s := &Summary{Streak: streak}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if m := resultLineRe.FindStringSubmatch(line); m != nil {
			score := decodeScore(m[1])
			for _, token := range splitMentions(m[2]) {
				r, ok := s.resolve(token, roster)
				if !ok {
					continue
				}
				r.Score = score
				s.Results = append(s.Results, r)
			}
		}

		if m := solvedRe.FindStringSubmatch(line); m != nil {
			solved, _ := strconv.Atoi(m[1])
			unsolved, _ := strconv.Atoi(m[2])
			s.Solved, s.Unsolved = &solved, &unsolved
		}
	}

	for _, w := range s.Warnings {
		logger.Warn(w)
	}

	if len(s.Results) == 0 {
		logger.Debugf("streak %d found but no result lines", streak)
		return nil, ErrNoResults
	}

	return s, nil
}

func decodeScore(token string) Score {
	if token == failMarker {
		return ScoreFailed
	}
	n, _ := strconv.Atoi(token)
	return Score(n)
}

// splitMentions cuts rest before every "@" and every "<@", keeping "<@...>"
// in one piece.
func splitMentions(rest string) []string {
	var tokens []string
	start := 0
	for i := 0; i < len(rest); i++ {
		boundary := rest[i] == '<' && i+1 < len(rest) && rest[i+1] == '@' ||
			rest[i] == '@' && (i == 0 || rest[i-1] != '<')
		if boundary && i > start {
			tokens = append(tokens, rest[start:i])
			start = i
		}
	}
	if start < len(rest) {
		tokens = append(tokens, rest[start:])
	}

	return tokens
}

func (s *Summary) resolve(token string, roster []RosterEntry) (ParsedResult, bool) {
	token = strings.TrimSpace(token)
	if m := mentionRe.FindStringSubmatch(token); m != nil {
		return ParsedResult{ID: UserRef(m[1])}, true
	}

	if !strings.HasPrefix(token, "@") {
		return ParsedResult{}, false
	}

	name := strings.TrimSpace(strings.TrimPrefix(token, "@"))
	if name == "" {
		return ParsedResult{}, false
	}

	var matches []RosterEntry
	for _, e := range roster {
		if strings.EqualFold(e.Username, name) || e.Nickname != "" && strings.EqualFold(e.Nickname, name) {
			matches = append(matches, e)
		}
	}

	switch len(matches) {
	case 0:
		s.Warnings = append(s.Warnings, fmt.Sprintf("user %q not found in roster", name))
		return ParsedResult{DisplayName: name}, true
	case 1:
	default:
		s.Warnings = append(s.Warnings, fmt.Sprintf("user %q is ambiguous (%d matches), using %s", name, len(matches), matches[0].ID))
	}

	return ParsedResult{ID: matches[0].ID, DisplayName: name}, true
}

// ResolveMention maps one "<@id>" or "@name" token to an identity with the
// same rules Parse applies to result lines.
func ResolveMention(token string, roster []RosterEntry) (UserRef, bool) {
	var s Summary
	r, ok := s.resolve(token, roster)
	if !ok || !r.ID.Resolved() {
		return "", false
	}
	return r.ID, true
}
