package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/repositories"
)

var Release = discord.SlashCommandCreate{
	Name:        "release",
	Description: "🕊️ Release Pokémon back into the wild",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "dupes",
			Description: "Release all duplicates of a rarity tier, keeping one of each",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "rarity",
					Description: "Rarity tier to thin out",
					Required:    true,
					MinValue:    ptr(models.RarityMin),
					MaxValue:    ptr(models.RarityMax),
				},
				discord.ApplicationCommandOptionString{
					Name:        "region",
					Description: "Limit to one region",
					Choices:     regionChoices(),
				},
				discord.ApplicationCommandOptionBool{
					Name:        "keep-favorites",
					Description: "Skip favorited Pokémon (default true)",
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "entry",
			Description: "Release copies of one Pokémon",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "pokemon",
					Description: "Name or dex number",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "mode",
					Description: "How much to release",
					Required:    true,
					Choices: []discord.ApplicationCommandOptionChoiceString{
						{Name: "duplicates only", Value: "dupes"},
						{Name: "every copy", Value: "all"},
					},
				},
			},
		},
	},
}

func ReleaseHandler(b *senpaibot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		data := e.SlashCommandInteractionData()
		userID := e.User().ID.String()

		switch *data.SubCommandName {
		case "dupes":
			rarity := data.Int("rarity")
			region := data.String("region")
			req := repositories.ReleaseRequest{RespectFavorites: true}
			if keep, ok := data.OptBool("keep-favorites"); ok {
				req.RespectFavorites = keep
			}

			released, err := b.CollectionRepository.ReleaseDuplicates(ctx, userID, rarity, region, req)
			if err != nil {
				return errorMessage(e, "The release failed. Please try again later.")
			}
			recordReleases(b, ctx, userID, released)
			if released == 0 {
				return errorMessage(e, "Nothing to release at that tier")
			}
			return successMessage(e, "🕊️ Released",
				fmt.Sprintf("Released **%d** duplicate %s Pokémon. One of each was kept.",
					released, rarityStars(rarity)))

		case "entry":
			arg := data.String("pokemon")
			pokemon, err := resolveEntry(ctx, b.PokemonRepository, arg)
			if err != nil {
				return errorMessage(e, fmt.Sprintf("Unknown Pokémon: %s", arg))
			}

			req := repositories.ReleaseRequest{RespectFavorites: true}
			var released int64
			if data.String("mode") == "all" {
				released, err = b.CollectionRepository.ReleaseAllOfEntry(ctx, userID, pokemon.ID, req)
			} else {
				released, err = b.CollectionRepository.ReleaseDupesOfEntry(ctx, userID, pokemon.ID, req)
			}
			if err != nil {
				if errors.Is(err, repositories.ErrProtectedFavorite) {
					return errorMessage(e, fmt.Sprintf("**%s** is favorited, unfavorite it first", pokemon.Name))
				}
				return errorMessage(e, "The release failed. Please try again later.")
			}
			recordReleases(b, ctx, userID, released)
			if released == 0 {
				return errorMessage(e, fmt.Sprintf("No copies of **%s** to release", pokemon.Name))
			}
			return successMessage(e, "🕊️ Released",
				fmt.Sprintf("Released **%d** cop%s of **%s**.",
					released, pluralYies(released), pokemon.Name))

		default:
			return errorMessage(e, "Unknown subcommand")
		}
	}
}

func recordReleases(b *senpaibot.Bot, ctx context.Context, userID string, n int64) {
	if err := b.TrainerRepository.IncrementReleases(ctx, userID, n); err != nil {
		slog.Error("Failed to record releases",
			slog.String("type", "cmd"),
			slog.String("user_id", userID),
			slog.Any("error", err))
	}
}

func pluralYies(n int64) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
