package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/bloops-games/wordlebot/internal/buildinfo"
	"github.com/bloops-games/wordlebot/internal/cache"
	"github.com/bloops-games/wordlebot/internal/database"
	inboxDb "github.com/bloops-games/wordlebot/internal/database/inbox/database"
	"github.com/bloops-games/wordlebot/internal/database/result"
	userDb "github.com/bloops-games/wordlebot/internal/database/user/database"
	"github.com/bloops-games/wordlebot/internal/logging"
	"github.com/bloops-games/wordlebot/internal/shutdown"
	"github.com/bloops-games/wordlebot/internal/wordle"
	"github.com/bloops-games/wordlebot/internal/wordlebot"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var version = buildinfo.DefaultVersion

var (
	backfill = flag.String("backfill", "", "ingest the captured summaries reporting on `date` (YYYY-MM-DD) and print the report")
	daily    = flag.Bool("report", false, "print the report of the stored history")
	show     = flag.String("show", "", "print the stored batches of `date` as json")
	player   = flag.String("user", "", "print the card of the user with this `id`")
)

// stdoutPoster prints what the scheduled run would post.
type stdoutPoster struct{}

func (stdoutPoster) Post(_ context.Context, _ int64, text string) error {
	_, err := fmt.Fprintln(os.Stdout, text)
	return err
}

func main() {
	flag.Parse()

	_, _ = fmt.Fprint(os.Stderr, buildinfo.Graffiti)
	_, _ = fmt.Fprintf(os.Stderr, buildinfo.GreetingCLI, buildinfo.ProjectName, version, buildinfo.GithubURL)

	ctx, done := shutdown.New()
	defer done()

	if err := realMain(ctx); err != nil {
		logging.FromContext(ctx).Fatalf("main.realMain: %v", err)
	}
}

func realMain(ctx context.Context) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	config := wordlebot.Config{}
	if err := envconfig.Process("", &config); err != nil {
		return fmt.Errorf("processing the config: %w", err)
	}

	logger := logging.NewLogger(config.Debug)
	defer func() { _ = logger.Sync() }()
	ctx = logging.WithLogger(ctx, logger)

	db, err := database.NewFromEnv(ctx, &config.Db)
	if err != nil {
		return fmt.Errorf("new database from env: %w", err)
	}

	defer func() {
		if err := db.Close(ctx); err != nil {
			logger.Errorf("close database: %v", err)
		}
	}()

	userCache, err := cache.NewLRU(config.CacheSize)
	if err != nil {
		return fmt.Errorf("can not create lru cache: %w", err)
	}

	resultCache, err := cache.NewLRU(config.CacheSize)
	if err != nil {
		return fmt.Errorf("can not create lru cache: %w", err)
	}

	results, closeResults, err := result.Open(ctx, &config.Db, db, resultCache)
	if err != nil {
		return fmt.Errorf("open result store: %w", err)
	}

	defer func() {
		if err := closeResults(); err != nil {
			logger.Errorf("close result store: %v", err)
		}
	}()

	roster := wordlebot.NewRoster(userDb.New(db, userCache), nil, config.ChatID, config.PageSize, config.Backoff)

	workflow, err := wordlebot.NewWorkflow(&config, results, inboxDb.New(db), roster, stdoutPoster{})
	if err != nil {
		return fmt.Errorf("new workflow: %w", err)
	}

	switch {
	case *show != "":
		batches, err := results.FetchByDate(ctx, *show)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", *show, err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(batches); err != nil {
			return fmt.Errorf("encode batches: %w", err)
		}
	case *backfill != "":
		res, text, err := workflow.Backfill(ctx, *backfill)
		if err != nil {
			return fmt.Errorf("backfill %s: %w", *backfill, err)
		}

		summary := color.New(color.FgGreen)
		if res.Failed > 0 {
			summary = color.New(color.FgYellow)
		}
		_, _ = summary.Fprintf(os.Stderr, "%d read, %d parsed, %d stored, %d already known, %d failed\n",
			res.Messages, res.Parsed, res.Inserted, res.Duplicates, res.Failed)
		_, _ = fmt.Fprintln(os.Stdout, text)
	case *player != "":
		text, err := workflow.UserReport(ctx, wordle.UserRef(*player))
		if err != nil {
			return fmt.Errorf("user report: %w", err)
		}
		_, _ = fmt.Fprintln(os.Stdout, text)
	case *daily:
		text, err := workflow.Report(ctx)
		if err != nil {
			return fmt.Errorf("report: %w", err)
		}
		_, _ = fmt.Fprintln(os.Stdout, text)
	default:
		flag.Usage()
	}

	return nil
}
