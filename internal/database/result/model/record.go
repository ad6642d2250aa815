package model

import (
	"sort"
	"strings"
	"time"

	"github.com/bloops-games/wordlebot/internal/hashutil"
	"github.com/bloops-games/wordlebot/internal/wordle"
	"github.com/google/uuid"
)

const unresolvedMarker = "?"

// namespace seeds the name based batch ids.
var namespace = uuid.MustParse("8f6c1f0e-54a1-4d8e-9a57-2b9d1c4e7a10")

// Record is the persisted form of one result batch.
type Record struct {
	ID           uuid.UUID       `json:"id"`
	Key          string          `json:"-"`
	Date         string          `json:"date"`
	Results      []wordle.Result `json:"results"`
	WordleNumber *int            `json:"wordleNumber,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func NewRecord(b wordle.Batch, now time.Time) Record {
	key := IdempotencyKey(b)
	return Record{
		ID:           uuid.NewSHA1(namespace, []byte(key)),
		Key:          key,
		Date:         b.Date,
		Results:      b.Results,
		WordleNumber: b.PuzzleNumber,
		CreatedAt:    now,
	}
}

func (r Record) Batch() wordle.Batch {
	return wordle.Batch{Date: r.Date, PuzzleNumber: r.WordleNumber, Results: r.Results}
}

// IdempotencyKey identifies a batch by its date and the sorted multiset of its
// participants, so the same summary fetched twice maps to the same key.
func IdempotencyKey(b wordle.Batch) string {
	return b.Date + "|" + hashutil.Sha1Parts(Participants(b))
}

// Participants lists the identities of b sorted. An unresolved result is
// written as "?" followed by its lower-cased name, so batches that differ only
// in which unknown users took part stay distinct.
func Participants(b wordle.Batch) []string {
	out := make([]string, 0, len(b.Results))
	for _, r := range b.Results {
		if r.ID.Resolved() {
			out = append(out, string(r.ID))
			continue
		}
		out = append(out, unresolvedMarker+strings.ToLower(r.Name))
	}
	sort.Strings(out)
	return out
}
