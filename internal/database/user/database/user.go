package database

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bloops-games/wordlebot/internal/byteutil"
	"github.com/bloops-games/wordlebot/internal/cache"
	"github.com/bloops-games/wordlebot/internal/database"
	"github.com/bloops-games/wordlebot/internal/database/user/model"
	"github.com/bloops-games/wordlebot/internal/fetch"
	bolt "go.etcd.io/bbolt"
)

var ErrNotFound = errors.New("not found")

// DefaultPageSize is used when Page is asked for a non positive limit.
const DefaultPageSize = 100

var bucket = []byte("users")

func New(db *database.DB, cache cache.Cache) *DB {
	return &DB{sDB: db, cache: cache}
}

type DB struct {
	sDB *database.DB

	cache cache.Cache
}

type fetchFn func(key int64) ([]byte, error)

func (db *DB) cachedValue(key int64, fn fetchFn) (model.User, error) {
	if u, ok := cache.Lookup[model.User](db.cache, key); ok {
		return u, nil
	}

	var u model.User
	bytes, err := fn(key)
	if err != nil {
		return u, fmt.Errorf("fetch: %w", err)
	}

	if len(bytes) == 0 {
		return u, ErrNotFound
	}

	if err := json.Unmarshal(bytes, &u); err != nil {
		return u, fmt.Errorf("unmarshal: %w", err)
	}

	if db.cache != nil {
		db.cache.Add(key, u)
	}

	return u, nil
}

// FetchByUsername matches username case-insensitively.
func (db *DB) FetchByUsername(_ context.Context, username string) (model.User, error) {
	var user model.User
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b, err := database.Bucket(tx, bucket)
		if err != nil {
			return ErrNotFound
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var u model.User
			if err := json.Unmarshal(v, &u); err != nil {
				return fmt.Errorf("json unmarshal error, %w", err)
			}
			if u.Username != "" && strings.EqualFold(u.Username, username) {
				user = u

				return nil
			}
		}
		return ErrNotFound
	}); err != nil {
		return user, fmt.Errorf("view transaction error: %w", err)
	}
	return user, nil
}

func (db *DB) Fetch(_ context.Context, userID int64) (model.User, error) {
	pk := byteutil.EncodeInt64ToBytes(userID)
	u, err := db.cachedValue(userID, func(key int64) ([]byte, error) {
		var bytes []byte

		if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
			b, err := database.Bucket(tx, bucket)
			if err != nil {
				return nil
			}
			if v := b.Get(pk); v != nil {
				bytes = append([]byte(nil), v...)
			}
			return nil
		}); err != nil {
			return nil, fmt.Errorf("view transaction error: %w", err)
		}

		return bytes, nil
	})

	if err != nil {
		return u, fmt.Errorf("cached value: %w", err)
	}

	return u, nil
}

func (db *DB) Store(_ context.Context, m model.User) error {
	bytes, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	pk := byteutil.EncodeInt64ToBytes(m.ID)
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b, err := database.Bucket(tx, bucket)
		if err != nil {
			return err
		}

		if err := b.Put(pk, bytes); err != nil {
			return fmt.Errorf("put to bucket error: %w", err)
		}

		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %w", err)
	}

	if db.cache != nil {
		db.cache.Add(m.ID, m)
	}

	return nil
}

// Page lists users in id order, limit at a time. cursor is the Next value
// of the previous page.
func (db *DB) Page(_ context.Context, cursor string, limit int) (fetch.Page[model.User], error) {
	var page fetch.Page[model.User]

	if limit <= 0 {
		limit = DefaultPageSize
	}

	var start []byte
	if cursor != "" {
		c, err := hex.DecodeString(cursor)
		if err != nil {
			return page, fmt.Errorf("decode cursor: %w", err)
		}
		start = c
	}

	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b, err := database.Bucket(tx, bucket)
		if err != nil {
			return err
		}

		c := b.Cursor()
		k, v := c.First()
		if start != nil {
			k, v = c.Seek(start)
		}
		for ; k != nil; k, v = c.Next() {
			if len(page.Items) == limit {
				page.Next = hex.EncodeToString(k)
				break
			}

			var u model.User
			if err := json.Unmarshal(v, &u); err != nil {
				return fmt.Errorf("json unmarshal error, %w", err)
			}
			page.Items = append(page.Items, u)
		}

		return nil
	}); err != nil && !errors.Is(err, database.ErrBucketNotFound) {
		return page, fmt.Errorf("view transaction error: %w", err)
	}

	return page, nil
}
