package senpaibot

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"
	"github.com/disgoorg/snowflake/v2"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/repositories"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/pikagacha/balls"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/pikagacha/battle"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/pikagacha/gacha"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/pikagacha/jackpot"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/pikagacha/progression"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/pikagacha/rewards"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/pikagacha/session"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/pikagacha/trade"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/services"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Version:   version,
		Commit:    commit,
	}
}

type Bot struct {
	Cfg       Config
	Client    bot.Client
	Paginator *paginator.Manager
	Version   string
	Commit    string
	DB        *database.DB

	PokemonRepository    repositories.PokemonRepository
	TrainerRepository    repositories.TrainerRepository
	CollectionRepository repositories.CollectionRepository
	BallRepository       repositories.BallRepository
	JackpotRepository    repositories.JackpotRepository

	GachaEngine     *gacha.Engine
	BallOpener      *balls.Opener
	JackpotPool     *jackpot.Pool
	BattleResolver  *battle.Resolver
	TradeSettlement *trade.Settlement
	Progression     *progression.Service
	Rewards         *rewards.Service
	SessionManager  *session.Manager

	SpriteService *services.SpriteService
	PokedexSearch *services.PokedexSearch
	CatalogSeeder *services.CatalogSeeder
}

// IsAdmin is the capability check consumed by administrative commands.
func (b *Bot) IsAdmin(userID snowflake.ID) bool {
	for _, admin := range b.Cfg.Bot.AdminIDs {
		if admin == userID {
			return true
		}
	}
	return false
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(
			gateway.IntentGuilds,
			gateway.IntentGuildMessages,
			gateway.IntentGuildVoiceStates,
			gateway.IntentMessageContent,
		)),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds, cache.FlagVoiceStates)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	return nil
}

func (b *Bot) OnReady(_ *events.Ready) {
	slog.Info("SenpaiBot is now ready",
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithPlayingActivity("PikaGacha"),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence", slog.Any("error", err))
	}
}
