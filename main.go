package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/commands"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/repositories"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/handlers"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/logger"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/migration"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/pikagacha/balls"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/pikagacha/battle"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/pikagacha/gacha"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/pikagacha/jackpot"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/pikagacha/progression"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/pikagacha/rewards"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/pikagacha/session"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/pikagacha/trade"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/services"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	slog.SetDefault(slog.New(logger.NewHandler()))

	slog.Info("Starting SenpaiBot",
		slog.String("version", version),
		slog.String("commit", commit))

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	migrateLegacy := flag.Bool("migrate-legacy", false, "Import the legacy MongoDB database on startup")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := senpaibot.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	dbStart := time.Now()
	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Database connection failed",
			slog.Any("error", err),
			slog.Duration("attempted_for", time.Since(dbStart)))
		os.Exit(-1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Database ready",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStart)))

	if err := balls.ValidateTables(); err != nil {
		slog.Error("Ball tables are inconsistent", slog.Any("error", err))
		os.Exit(-1)
	}

	b := senpaibot.New(*cfg, version, commit)
	b.DB = db

	b.PokemonRepository = repositories.NewPokemonRepository(db.BunDB())
	b.TrainerRepository = repositories.NewTrainerRepository(db.BunDB())
	b.CollectionRepository = repositories.NewCollectionRepository(db.BunDB())
	b.BallRepository = repositories.NewBallRepository(db.BunDB())
	b.JackpotRepository = repositories.NewJackpotRepository(db.BunDB())

	b.GachaEngine = gacha.NewEngine(db.BunDB(), b.PokemonRepository, gacha.Config{
		RollCost:       cfg.Gacha.RollCost,
		JackpotPerRoll: cfg.Gacha.JackpotPerRoll,
	})
	b.BallOpener = balls.NewOpener(db.BunDB(), b.BallRepository, b.PokemonRepository)
	b.JackpotPool = jackpot.NewPool(db.BunDB(), b.JackpotRepository, jackpot.Config{
		PerRoll:   cfg.Gacha.JackpotPerRoll,
		Threshold: cfg.Gacha.JackpotThreshold,
	})
	b.BattleResolver = battle.NewResolver(db.BunDB(), b.PokemonRepository, b.CollectionRepository)
	b.TradeSettlement = trade.NewSettlement(db.BunDB(), b.PokemonRepository, trade.Config{
		RatePerTier: cfg.Gacha.TradeRatePerTier,
		MinBalance:  cfg.Gacha.MinBalance,
	})
	b.Progression = progression.NewService(db.BunDB(), progression.Config{
		TeamSwitchCost: cfg.Gacha.TeamSwitchCost,
		MinBalance:     cfg.Gacha.MinBalance,
	})
	b.Rewards = rewards.NewService(db.BunDB(), rewards.Config{
		VoiceIntervalSecs: cfg.Gacha.VoiceIntervalSecs,
		VoiceReward:       cfg.Gacha.VoiceReward,
	})
	b.SessionManager = session.NewManager()
	b.SessionManager.StartCleanupRoutine(context.Background())

	b.PokedexSearch = services.NewPokedexSearch(b.PokemonRepository)
	b.CatalogSeeder = services.NewCatalogSeeder(b.PokemonRepository)

	if cfg.Spaces.Key != "" {
		sprites, err := services.NewSpriteService(
			cfg.Spaces.Key,
			cfg.Spaces.Secret,
			cfg.Spaces.Region,
			cfg.Spaces.Bucket,
			cfg.Spaces.SpriteRoot,
		)
		if err != nil {
			slog.Error("Failed to initialize sprite storage", slog.Any("error", err))
			os.Exit(-1)
		}
		b.SpriteService = sprites
	} else {
		slog.Warn("Sprite storage not configured, embeds will have no images")
	}

	// Warm the catalog cache and load the rank ladder in parallel; both only
	// read tables the schema init just guaranteed.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.Progression.LoadLadder(gctx)
	})
	g.Go(func() error {
		_, err := b.PokemonRepository.GetAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Error("Startup loading failed", slog.Any("error", err))
		os.Exit(-1)
	}

	if *migrateLegacy {
		if err := runLegacyMigration(ctx, cfg, db); err != nil {
			slog.Error("Legacy migration failed", slog.Any("error", err))
			os.Exit(-1)
		}
	}

	voiceTracker := handlers.NewVoiceTracker(b.Rewards, b.TrainerRepository)
	quizListener := handlers.NewQuizListener(b.Rewards, b.TrainerRepository,
		handlers.NewStaticQuestionProvider(handlers.DefaultQuestions))

	h := handler.New()
	h.Command("/register", handlers.WrapWithLogging("register", commands.RegisterHandler(b)))
	h.Command("/balance", handlers.WrapWithLogging("balance", commands.BalanceHandler(b)))
	h.Command("/roll", handlers.WrapWithLogging("roll", commands.RollHandler(b)))
	h.Command("/pokedex", handlers.WrapWithLogging("pokedex", commands.PokedexHandler(b)))
	h.Command("/collection", handlers.WrapWithLogging("collection", commands.CollectionHandler(b)))
	h.Command("/openball", handlers.WrapWithLogging("openball", commands.OpenBallHandler(b)))
	h.Command("/trade", handlers.WrapWithLogging("trade", commands.TradeHandler(b)))
	h.Command("/battle", handlers.WrapWithLogging("battle", commands.BattleHandler(b)))
	h.Command("/rank", handlers.WrapWithLogging("rank", commands.RankHandler(b)))
	h.Command("/team", handlers.WrapWithLogging("team", commands.TeamHandler(b)))
	h.Command("/release", handlers.WrapWithLogging("release", commands.ReleaseHandler(b)))
	h.Command("/favorite", handlers.WrapWithLogging("favorite", commands.FavoriteHandler(b)))
	h.Command("/jackpot", handlers.WrapWithLogging("jackpot", commands.JackpotHandler(b)))
	h.Command("/leaderboard", handlers.WrapWithLogging("leaderboard", commands.LeaderboardHandler(b)))
	h.Command("/reseed", handlers.WrapWithLogging("reseed", commands.ReseedHandler(b)))
	h.Autocomplete("/pokedex", commands.PokedexAutocompleteHandler(b))

	if err := b.SetupBot(h,
		bot.NewListenerFunc(b.OnReady),
		bot.NewListenerFunc(voiceTracker.OnVoiceStateUpdate),
		bot.NewListenerFunc(quizListener.OnMessageCreate),
	); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err))
		os.Exit(-1)
	}

	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer closeCancel()
		b.Client.Close(closeCtx)
	}()

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds))
		if err := handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err))
		}
	}

	gatewayCtx, gatewayCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer gatewayCancel()
	if err := b.Client.OpenGateway(gatewayCtx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err))
		os.Exit(-1)
	}

	quizCtx, quizCancel := context.WithCancel(context.Background())
	defer quizCancel()
	if cfg.Bot.QuizChannel != 0 {
		quizListener.StartQuizRoutine(quizCtx, b.Client, cfg.Bot.QuizChannel, 15*time.Minute)
	}

	slog.Info("Bot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down bot...")
}

func runLegacyMigration(ctx context.Context, cfg *senpaibot.Config, db *database.DB) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Legacy.MongoURI))
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	return migration.NewMigrator(db.BunDB(), client, cfg.Legacy.Database).MigrateAll(ctx)
}
