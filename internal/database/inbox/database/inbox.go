package database

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bloops-games/wordlebot/internal/byteutil"
	"github.com/bloops-games/wordlebot/internal/database"
	"github.com/bloops-games/wordlebot/internal/database/inbox/model"
	"github.com/bloops-games/wordlebot/internal/fetch"
	"github.com/bloops-games/wordlebot/internal/logging"
	bolt "go.etcd.io/bbolt"
)

// DefaultPageSize is used when Page is asked for a non positive limit.
const DefaultPageSize = 50

var (
	bucket = []byte("inbox")

	ErrInvalidCursor = errors.New("invalid cursor")
)

func New(db *database.DB) *DB {
	return &DB{sDB: db}
}

type DB struct {
	sDB *database.DB
}

// key orders messages by time, then chat, then message id.
func key(m model.Message) []byte {
	k := make([]byte, 0, 24)
	k = append(k, byteutil.EncodeInt64ToBytes(m.Date)...)
	k = append(k, byteutil.EncodeInt64ToBytes(m.ChatID)...)
	k = append(k, byteutil.EncodeInt64ToBytes(int64(m.MessageID))...)
	return k
}

// Add stores m. Storing the same message again replaces its text, which is
// how edits are picked up.
func (db *DB) Add(ctx context.Context, m model.Message) error {
	bytes, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b, err := database.Bucket(tx, bucket)
		if err != nil {
			return err
		}

		if err := b.Put(key(m), bytes); err != nil {
			return fmt.Errorf("put to bucket error: %w", err)
		}

		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %w", err)
	}

	logging.FromContext(ctx).Named("inbox.Add").Debugf("captured message %d from chat %d", m.MessageID, m.ChatID)

	return nil
}

// Page returns up to limit messages dated in [since, until), starting at
// cursor. The returned Next cursor is empty once the window is exhausted.
func (db *DB) Page(_ context.Context, since, until time.Time, cursor string, limit int) (fetch.Page[model.Message], error) {
	var page fetch.Page[model.Message]

	if limit <= 0 {
		limit = DefaultPageSize
	}

	start := byteutil.EncodeInt64ToBytes(since.Unix())
	if cursor != "" {
		c, err := hex.DecodeString(cursor)
		if err != nil || len(c) != 24 {
			return page, ErrInvalidCursor
		}
		start = c
	}
	end := until.Unix()

	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b, err := database.Bucket(tx, bucket)
		if err != nil {
			return err
		}

		c := b.Cursor()
		for k, v := c.Seek(start); k != nil; k, v = c.Next() {
			if byteutil.DecodeBytesToInt64(k) >= end {
				break
			}

			if len(page.Items) == limit {
				page.Next = hex.EncodeToString(k)
				break
			}

			var m model.Message
			if err := json.Unmarshal(v, &m); err != nil {
				return fmt.Errorf("json unmarshal error, %w", err)
			}
			page.Items = append(page.Items, m)
		}

		return nil
	}); err != nil && !errors.Is(err, database.ErrBucketNotFound) {
		return page, fmt.Errorf("view transaction error: %w", err)
	}

	return page, nil
}

// Prune deletes every message dated before t and returns how many went.
func (db *DB) Prune(ctx context.Context, t time.Time) (int, error) {
	var n int
	end := t.Unix()

	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b, err := database.Bucket(tx, bucket)
		if err != nil {
			return err
		}

		c := b.Cursor()
		for k, _ := c.First(); k != nil && byteutil.DecodeBytesToInt64(k) < end; k, _ = c.First() {
			if err := c.Delete(); err != nil {
				return fmt.Errorf("delete: %w", err)
			}
			n++
		}

		return nil
	}); err != nil {
		return n, fmt.Errorf("update transaction error: %w", err)
	}

	logging.FromContext(ctx).Named("inbox.Prune").Infof("pruned %d messages", n)

	return n, nil
}
