package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/bloops-games/wordlebot/internal/buildinfo"
	"github.com/bloops-games/wordlebot/internal/cache"
	"github.com/bloops-games/wordlebot/internal/database"
	inboxDb "github.com/bloops-games/wordlebot/internal/database/inbox/database"
	"github.com/bloops-games/wordlebot/internal/database/result"
	userDb "github.com/bloops-games/wordlebot/internal/database/user/database"
	"github.com/bloops-games/wordlebot/internal/logging"
	"github.com/bloops-games/wordlebot/internal/server"
	"github.com/bloops-games/wordlebot/internal/shutdown"
	"github.com/bloops-games/wordlebot/internal/wordlebot"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/sync/errgroup"
)

var version = buildinfo.DefaultVersion

func main() {
	_, _ = fmt.Fprint(os.Stdout, buildinfo.Graffiti)
	_, _ = fmt.Fprintf(os.Stdout, buildinfo.GreetingCLI, buildinfo.ProjectName, version, buildinfo.GithubURL)

	ctx, done := shutdown.New()
	defer done()

	if err := realMain(ctx); err != nil {
		logging.FromContext(ctx).Fatalf("main.realMain: %v", err)
	}
}

func realMain(ctx context.Context) error {
	// .env is optional, the environment wins
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

	if config.BotToken == "" {
		return fmt.Errorf(
			"bot token not found, please visit %s to register your bot and get a token",
			buildinfo.BotFatherURL,
		)
	}

	tg, err := tgbotapi.NewBotAPI(config.BotToken)
	if err != nil {
		return fmt.Errorf("bot api: %w", err)
	}

	tg.Debug = config.Debug
	logger.Infof("authorization in telegram was successful: %s", tg.Self.UserName)

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

	users := userDb.New(db, userCache)
	inbox := inboxDb.New(db)
	sender := wordlebot.NewSender(tg, &config)
	roster := wordlebot.NewRoster(users, tg, config.ChatID, config.PageSize, config.Backoff)

	workflow, err := wordlebot.NewWorkflow(&config, results, inbox, roster, sender)
	if err != nil {
		return fmt.Errorf("new workflow: %w", err)
	}

	commands := wordlebot.NewCommands(workflow, roster, users)

	srv, err := server.New(config.Port)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	prof := &http.Server{Addr: ":" + config.ProfPort, ReadHeaderTimeout: 10 * time.Second}

	manager := wordlebot.NewManager(tg, &config, users, inbox, workflow, sender, commands)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ServeHTTP(ctx, &http.Server{
			Handler:           wordlebot.Routes(ctx, tg, commands, &config),
			ReadHeaderTimeout: 10 * time.Second,
		})
	})
	g.Go(func() error {
		if err := prof.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("pprof default server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return prof.Close()
	})
	g.Go(func() error {
		if err := manager.Run(ctx); err != nil {
			return fmt.Errorf("run: %w", err)
		}
		return nil
	})

	logger.Infof("listening on :%s", srv.Port())

	return g.Wait()
}
