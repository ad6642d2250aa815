package sqldb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bloops-games/wordlebot/internal/database"
	"github.com/bloops-games/wordlebot/internal/database/result/model"
	"github.com/bloops-games/wordlebot/internal/wordle"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type batchRow struct {
	Seq            uint   `gorm:"primaryKey;autoIncrement"`
	ID             string `gorm:"size:36;not null"`
	IdempotencyKey string `gorm:"size:64;not null;uniqueIndex"`
	Date           string `gorm:"size:10;not null;index"`
	WordleNumber   *int
	Results        string `gorm:"type:text;not null"`
	CreatedAt      time.Time
}

func (batchRow) TableName() string {
	return "result_batches"
}

// Open connects to the SQL backend named by config.Driver and migrates the
// schema.
func Open(ctx context.Context, config *database.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch config.Driver {
	case database.DriverSQLite:
		dsn := config.DSN
		if dsn == "" {
			dsn = config.FilePath + ".sqlite"
		}
		dialector = sqlite.Open(dsn)
	case database.DriverPostgres:
		dialector = postgres.Open(config.DSN)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", config.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", config.Driver, err)
	}

	if config.Driver == database.DriverSQLite {
		db.Exec("PRAGMA journal_mode=WAL;")
		db.Exec("PRAGMA busy_timeout=5000;")
	}

	if err := db.WithContext(ctx).AutoMigrate(&batchRow{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return db, nil
}

func New(db *gorm.DB) *DB {
	return &DB{db: db, now: time.Now}
}

type DB struct {
	db  *gorm.DB
	now func() time.Time
}

func (db *DB) FetchAll(ctx context.Context) ([]wordle.Batch, error) {
	var rows []batchRow
	if err := db.db.WithContext(ctx).Order("date DESC").Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select batches: %w", err)
	}

	return toBatches(rows)
}

func (db *DB) FetchByDate(ctx context.Context, date string) ([]wordle.Batch, error) {
	var rows []batchRow
	if err := db.db.WithContext(ctx).Where("date = ?", date).Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select batches by date: %w", err)
	}

	return toBatches(rows)
}

// Insert relies on the unique idempotency key: a conflicting row is skipped
// by the database and reported as not inserted.
func (db *DB) Insert(ctx context.Context, batch wordle.Batch) (bool, error) {
	r := model.NewRecord(batch, db.now())

	results, err := json.Marshal(r.Results)
	if err != nil {
		return false, fmt.Errorf("marshal results: %w", err)
	}

	row := batchRow{
		ID:             r.ID.String(),
		IdempotencyKey: r.Key,
		Date:           r.Date,
		WordleNumber:   r.WordleNumber,
		Results:        string(results),
		CreatedAt:      r.CreatedAt,
	}

	create := db.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "idempotency_key"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return false, fmt.Errorf("insert batch: %w", create.Error)
	}

	return create.RowsAffected == 1, nil
}

func toBatches(rows []batchRow) ([]wordle.Batch, error) {
	list := make([]wordle.Batch, 0, len(rows))
	for _, row := range rows {
		var results []wordle.Result
		if err := json.Unmarshal([]byte(row.Results), &results); err != nil {
			return nil, fmt.Errorf("json unmarshal error, %w", err)
		}
		list = append(list, wordle.Batch{Date: row.Date, PuzzleNumber: row.WordleNumber, Results: results})
	}
	return list, nil
}

func (db *DB) Close() error {
	sqlDB, err := db.db.DB()
	if err != nil {
		return fmt.Errorf("sql db: %w", err)
	}
	return sqlDB.Close()
}
