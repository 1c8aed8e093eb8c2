package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/repositories"
)

const (
	successColor = 0x57F287
	errorColor   = 0xED4245
	infoColor    = 0x5865F2
	goldColor    = 0xF1C40F
)

// Commands is every slash command the bot registers.
var Commands = []discord.ApplicationCommandCreate{
	Register,
	Balance,
	Roll,
	Pokedex,
	Collection,
	OpenBall,
	Trade,
	Battle,
	Rank,
	Team,
	Release,
	Favorite,
	Jackpot,
	Leaderboard,
	Reseed,
}

func errorMessage(e *handler.CommandEvent, description string) error {
	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       "Error",
			Description: description,
			Color:       errorColor,
		}},
	})
}

func successMessage(e *handler.CommandEvent, title, description string) error {
	now := time.Now()
	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       title,
			Description: description,
			Color:       successColor,
			Footer: &discord.EmbedFooter{
				Text: fmt.Sprintf("Requested by %s", e.User().Username),
			},
			Timestamp: &now,
		}},
	})
}

func updateErrorMessage(e *handler.CommandEvent, description string) error {
	embeds := []discord.Embed{{
		Title:       "Error",
		Description: description,
		Color:       errorColor,
	}}
	_, err := e.UpdateInteractionResponse(discord.MessageUpdate{Embeds: &embeds})
	return err
}

func updateSuccessMessage(e *handler.CommandEvent, title, description string, color int) error {
	now := time.Now()
	embeds := []discord.Embed{{
		Title:       title,
		Description: description,
		Color:       color,
		Footer: &discord.EmbedFooter{
			Text: fmt.Sprintf("Requested by %s", e.User().Username),
		},
		Timestamp: &now,
	}}
	_, err := e.UpdateInteractionResponse(discord.MessageUpdate{Embeds: &embeds})
	return err
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func rarityStars(rarity int) string {
	stars := ""
	for i := 0; i < rarity && i < models.RarityLegendary; i++ {
		stars += "★"
	}
	if rarity >= models.RarityEvent {
		stars = "✦ event"
	}
	return stars
}

// resolveEntry turns a name or dex-number argument into a catalog entry.
func resolveEntry(ctx context.Context, repo repositories.PokemonRepository, arg string) (*models.Pokemon, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return repo.GetByID(ctx, id)
	}
	return repo.GetByName(ctx, arg)
}
