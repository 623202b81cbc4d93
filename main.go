package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/homucards/homucards"
	"github.com/ellavondegurechaff/homucards/homucards/commands"
	"github.com/ellavondegurechaff/homucards/homucards/database"
	"github.com/ellavondegurechaff/homucards/homucards/database/repositories"
	"github.com/ellavondegurechaff/homucards/homucards/gacha"
	"github.com/ellavondegurechaff/homucards/homucards/handlers"
	"github.com/ellavondegurechaff/homucards/homucards/ingest"
	"github.com/ellavondegurechaff/homucards/homucards/logger"
	"github.com/ellavondegurechaff/homucards/homucards/services"
	"github.com/ellavondegurechaff/homucards/homucards/utils"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	skipIngest := flag.Bool("skip-ingest", false, "Skip catalog ingestion on startup")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := homucards.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}

	slog.SetDefault(slog.New(logger.NewHandler(cfg.Log.Level)))

	slog.Info("Starting HomuCards",
		slog.String("version", version),
		slog.String("commit", commit))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	dbStartTime := time.Now()
	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	slog.Info("Database connected",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema", slog.Any("error", err))
		os.Exit(-1)
	}

	b := homucards.New(*cfg, version, commit)
	b.DB = db

	b.UserRepository = repositories.NewUserRepository(db.BunDB())
	b.SeriesRepository = repositories.NewSeriesRepository(db.BunDB())
	b.CardRepository = repositories.NewCardRepository(db.BunDB())
	b.UserCardRepository = repositories.NewUserCardRepository(db.BunDB())

	store, err := newAssetStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize asset store", slog.Any("error", err))
		os.Exit(-1)
	}

	cacheSize := cfg.Assets.CacheSize
	if cacheSize <= 0 {
		cacheSize = 100
	}
	assets, err := services.NewImageCache(store, cacheSize)
	if err != nil {
		slog.Error("Failed to initialize image cache", slog.Any("error", err))
		os.Exit(-1)
	}
	b.Assets = assets

	engine := gacha.NewEngine(b.SeriesRepository, b.CardRepository)
	b.Gacha = gacha.NewService(engine, b.UserRepository, b.UserCardRepository, utils.CardsPerPage)

	// The catalog must be loaded before any pull can land, so ingestion
	// runs to completion before the gateway opens.
	if !*skipIngest {
		ingester := ingest.New(store, b.SeriesRepository, b.CardRepository, cfg.Assets.IngestWorkers)
		if _, err := ingester.Run(ctx); err != nil {
			slog.Error("Catalog ingestion failed", slog.Any("error", err))
			os.Exit(-1)
		}
	}

	h := handler.New()
	h.Command("/pull", handlers.WrapWithLogging("pull", commands.PullHandler(b)))
	h.Autocomplete("/pull", commands.PullAutocompleteHandler(b))
	h.Component("/pull/", handlers.WrapComponentWithLogging("pull", commands.PullComponentHandler(b)))
	h.Command("/inventory", handlers.WrapWithLogging("inventory", commands.InventoryHandler(b)))
	h.Command("/username", handlers.WrapWithLogging("username", commands.UsernameHandler(b)))
	h.Command("/profile", handlers.WrapWithLogging("profile", commands.ProfileHandler(b)))
	h.Command("/help", handlers.WrapWithLogging("help", commands.HelpHandler()))
	h.Command("/removecard", handlers.WrapWithLogging("removecard", commands.RemoveCardHandler(b)))

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady)); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)),
		)
		os.Exit(-1)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds),
		)
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err),
			)
		}
	}

	gatewayCtx, gatewayCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer gatewayCancel()
	if err = b.Client.OpenGateway(gatewayCtx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err),
		)
		os.Exit(-1)
	}

	slog.Info("Bot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down bot...")
}

func newAssetStore(cfg *homucards.Config) (services.AssetStore, error) {
	switch cfg.Assets.Backend {
	case "", "local":
		return services.NewLocalStore(cfg.Assets.Root), nil
	case "spaces":
		return services.NewSpacesStore(
			cfg.Spaces.Key,
			cfg.Spaces.Secret,
			cfg.Spaces.Region,
			cfg.Spaces.Bucket,
			cfg.Spaces.CardRoot,
		)
	default:
		return nil, fmt.Errorf("unknown asset backend: %q", cfg.Assets.Backend)
	}
}
