package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bloops-games/wordlebot/internal/byteutil"
	"github.com/bloops-games/wordlebot/internal/cache"
	"github.com/bloops-games/wordlebot/internal/database"
	"github.com/bloops-games/wordlebot/internal/database/result/model"
	"github.com/bloops-games/wordlebot/internal/logging"
	"github.com/bloops-games/wordlebot/internal/wordle"
	bolt "go.etcd.io/bbolt"
)

var (
	// records keyed by date + sequence, in insertion order within a date
	bucketRecords = []byte("results")
	// idempotency key -> records key
	bucketKeys = []byte("results_keys")

	cacheKey = "results"
)

func New(db *database.DB, cache cache.Cache) *DB {
	return &DB{sDB: db, cache: cache, now: time.Now}
}

type DB struct {
	sDB *database.DB

	cache cache.Cache
	now   func() time.Time

	// gen counts committed inserts. FetchAll only caches a list read at the
	// current generation.
	mu  sync.Mutex
	gen uint64

	// afterRead runs between the read transaction and caching, nil outside tests
	afterRead func()
}

// FetchAll returns every batch, most recent date first. Batches of the same
// date keep their insertion order.
func (db *DB) FetchAll(ctx context.Context) ([]wordle.Batch, error) {
	if list, ok := cache.Lookup[[]wordle.Batch](db.cache, cacheKey); ok {
		return append([]wordle.Batch(nil), list...), nil
	}

	db.mu.Lock()
	gen := db.gen
	db.mu.Unlock()

	var list []wordle.Batch
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b, err := database.Bucket(tx, bucketRecords)
		if err != nil {
			return err
		}

		return b.ForEach(func(k, v []byte) error {
			var r model.Record
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("json unmarshal error, %w", err)
			}
			list = append(list, r.Batch())
			return nil
		})
	}); err != nil && !errors.Is(err, database.ErrBucketNotFound) {
		return nil, fmt.Errorf("view transaction error: %w", err)
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Date > list[j].Date
	})

	if db.afterRead != nil {
		db.afterRead()
	}

	if db.cache != nil {
		db.mu.Lock()
		if db.gen == gen {
			db.cache.Add(cacheKey, list)
		}
		db.mu.Unlock()
	}

	logging.FromContext(ctx).Named("result.FetchAll").Debugf("loaded %d batches", len(list))

	return append([]wordle.Batch(nil), list...), nil
}

func (db *DB) FetchByDate(_ context.Context, date string) ([]wordle.Batch, error) {
	var list []wordle.Batch
	prefix := []byte(date + "|")

	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b, err := database.Bucket(tx, bucketRecords)
		if err != nil {
			return err
		}

		c := b.Cursor()
		for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
			var r model.Record
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("json unmarshal error, %w", err)
			}
			list = append(list, r.Batch())
		}
		return nil
	}); err != nil && !errors.Is(err, database.ErrBucketNotFound) {
		return nil, fmt.Errorf("view transaction error: %w", err)
	}

	return list, nil
}

// Insert stores batch unless one with the same idempotency key exists. The
// check and the write happen in one read-write transaction.
func (db *DB) Insert(ctx context.Context, batch wordle.Batch) (bool, error) {
	logger := logging.FromContext(ctx).Named("result.Insert")
	r := model.NewRecord(batch, db.now())

	tx, err := db.sDB.DB.Begin(true)
	if err != nil {
		return false, fmt.Errorf("starting transaction: %w", err)
	}

	defer tx.Rollback() //nolint

	keys, err := database.Bucket(tx, bucketKeys)
	if err != nil {
		return false, err
	}

	if keys.Get([]byte(r.Key)) != nil {
		logger.Debugf("batch %s already stored", r.Key)
		return false, nil
	}

	records, err := database.Bucket(tx, bucketRecords)
	if err != nil {
		return false, err
	}

	seq, err := records.NextSequence()
	if err != nil {
		return false, fmt.Errorf("next sequence: %w", err)
	}

	recordKey := append([]byte(r.Date+"|"), byteutil.EncodeInt64ToBytes(int64(seq))...)

	bytes, err := json.Marshal(r)
	if err != nil {
		return false, fmt.Errorf("marshal: %w", err)
	}

	if err := records.Put(recordKey, bytes); err != nil {
		return false, fmt.Errorf("put to bucket error: %w", err)
	}

	if err := keys.Put([]byte(r.Key), recordKey); err != nil {
		return false, fmt.Errorf("put to bucket error: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing transaction: %w", err)
	}

	db.mu.Lock()
	db.gen++
	if db.cache != nil {
		db.cache.Delete(cacheKey)
	}
	db.mu.Unlock()

	return true, nil
}

func hasPrefix(k, prefix []byte) bool {
	return len(k) >= len(prefix) && byteutil.BytesToString(k[:len(prefix)]) == byteutil.BytesToString(prefix)
}
